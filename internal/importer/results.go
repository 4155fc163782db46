package importer

import "time"

// Outcome is the result of submitting one field.
type Outcome struct {
	Label     string
	Success   bool
	Error     error
	Timestamp time.Time
}

// Results accumulates outcomes for one run. Outcomes are only appended.
type Results struct {
	Successful []Outcome
	Failed     []Outcome
}

// AddSuccess records a successful submission.
func (r *Results) AddSuccess(label string) {
	r.Successful = append(r.Successful, Outcome{
		Label:     label,
		Success:   true,
		Timestamp: time.Now(),
	})
}

// AddFailure records a failed submission.
func (r *Results) AddFailure(label string, err error) {
	r.Failed = append(r.Failed, Outcome{
		Label:     label,
		Error:     err,
		Timestamp: time.Now(),
	})
}

// Total returns the number of recorded outcomes.
func (r *Results) Total() int {
	return len(r.Successful) + len(r.Failed)
}
