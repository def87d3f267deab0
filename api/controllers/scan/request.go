package scan

import (
	"github.com/angelmondragon/scancart-backend/internal/catalog"
	"github.com/angelmondragon/scancart-backend/internal/session"
)

// DecodeRequest is posted by a client-side decoder for each code it reads.
type DecodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// DecodeResult reports whether the code was the one the session accepted.
type DecodeResult struct {
	Accepted  bool             `json:"accepted"`
	Candidate *catalog.Product `json:"candidate,omitempty"`
	Session   session.State    `json:"session"`
}
