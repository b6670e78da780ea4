package entity

import "time"

// CycleResult summarizes one batch cycle.
type CycleResult struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`

	Processed      int `json:"processed"`
	LexicalRows    int `json:"lexical_rows"`
	ReputationRows int `json:"reputation_rows"`
	BehavioralRows int `json:"behavioral_rows"`

	BehavioralDegraded bool `json:"behavioral_degraded"`

	Joined   int `json:"joined"`
	Dropped  int `json:"dropped"`
	Phishing int `json:"phishing"`
	Inserted int `json:"inserted"`
	Bumped   int `json:"bumped"`

	Published    bool   `json:"published"`
	PublishError string `json:"publish_error,omitempty"`
}
