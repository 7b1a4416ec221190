package dto

import (
	"time"

	"iot-console-be/pkg/recommend"
)

type StartJobRequest struct {
	EntityKey string `json:"entity_key" validate:"required"`
	Force     bool   `json:"force"`
}

type StartJobResponse struct {
	Started bool   `json:"started"`
	State   string `json:"state"`
	Message string `json:"message"`
}

type JobStatusResponse struct {
	EntityKey string     `json:"entity_key"`
	State     string     `json:"state"`
	Message   string     `json:"message"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

type RecommendationViewResponse struct {
	View    recommend.ViewModel `json:"view"`
	Summary recommend.Counts    `json:"summary"`
}

// PublishJobEventMessage is the payload carried on the internal event bus
// when a regeneration job changes state.
type PublishJobEventMessage struct {
	EntityKey string `json:"entity_key"`
	State     string `json:"state"`
	Message   string `json:"message"`
}
