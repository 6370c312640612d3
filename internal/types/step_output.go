package types

import "time"

// StepOutput is the persisted result of one pipeline step.
type StepOutput struct {
	Step      int       `json:"step"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
