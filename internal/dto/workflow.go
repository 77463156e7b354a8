package dto

import "github.com/johnnyphung-laccd/calricula/internal/models"

// TransitionRequest carries the optional reviewer comment.
type TransitionRequest struct {
	Comment string `json:"comment"`
}

// TransitionResponse reports an applied transition.
type TransitionResponse struct {
	RecordType models.RecordType       `json:"record_type"`
	RecordID   string                  `json:"record_id"`
	FromStatus models.RecordStatus     `json:"from_status"`
	ToStatus   models.RecordStatus     `json:"to_status"`
	Version    int                     `json:"version"`
	History    models.TransitionRecord `json:"history"`
}
