package domain

// Category groups tickets for reporting and triage.
type Category struct {
	ID   int64
	Name string
}
