package campaign

import (
	"github.com/kfarkas-hq/dripfeed/internal/model"
)

// Catalog is the read-only day-index → template lookup for one run.
// When the source rows carry duplicate days, the first row wins.
type Catalog struct {
	byDay map[int]model.Template
}

func NewCatalog(rows []model.Template) *Catalog {
	byDay := make(map[int]model.Template, len(rows))
	for _, t := range rows {
		if t.Day < 0 {
			continue
		}
		if _, ok := byDay[t.Day]; ok {
			continue
		}
		byDay[t.Day] = t
	}
	return &Catalog{byDay: byDay}
}

// Lookup returns the template for a day index. A miss is a normal outcome
// (a day past the end of the sequence), not an error.
func (c *Catalog) Lookup(day int) (model.Template, bool) {
	t, ok := c.byDay[day]
	return t, ok
}

func (c *Catalog) Len() int {
	return len(c.byDay)
}
