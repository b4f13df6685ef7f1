package model

import "time"

// Subscriber is one enrolled recipient, keyed by email. A subscriber is
// never hard-deleted; unsubscribing flips the flag and leaves the row.
type Subscriber struct {
	Email        string
	Name         string
	Phone        string
	Track        string
	Enrolled     bool
	SubscribedOn time.Time
	LastSentOn   *time.Time
	Unsubscribed bool
}

// Signup is the raw enrollment event as submitted. Enrolled carries the
// original "Yes"/other answer; parsing it is the enrollment handler's job.
type Signup struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Enrolled string `json:"enrolled"`
	Track    string `json:"track"`
}
