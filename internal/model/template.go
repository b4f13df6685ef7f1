package model

// Template is one entry of the drip sequence. Day 0 is the immediate
// welcome message; days 1..21 are the weekly messages.
type Template struct {
	Day      int
	Subject  string
	SMSText  string
	HTMLBody string
}
