// Package replies is the inbound-reply collaborator. Reply parsing lives
// outside this service; the processor here only accounts for the poll so
// the recurring job has a real target.
package replies

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type Processor struct {
	polls atomic.Int64
}

func New() *Processor {
	return &Processor{}
}

func (p *Processor) Poll(ctx context.Context) {
	n := p.polls.Add(1)
	slog.Debug("inbound reply poll", "count", n)
}

func (p *Processor) Polls() int64 {
	return p.polls.Load()
}
