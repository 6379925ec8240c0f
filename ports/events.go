package ports

import "context"

// SubjectRunCompleted is published once a run's results are persisted.
const SubjectRunCompleted = "goimpact.run.completed"

// RunCompleted is the payload of SubjectRunCompleted.
type RunCompleted struct {
	RunID        string `json:"run_id"`
	ScenarioRows int    `json:"scenario_rows"`
	OutcomeRows  int    `json:"outcome_rows"`
	Warnings     int    `json:"warnings"`
}

// EventPublisher emits pipeline notifications.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
	Close()
}
