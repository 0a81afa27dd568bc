package dto

import (
	"time"

	"github.com/polkiloo/codguard/internal/domain/model"
)

// QueueStatusResponse describes pending bundled sync state.
type QueueStatusResponse struct {
	Pending     int        `json:"pending"`
	NextFlushAt *time.Time `json:"next_flush_at,omitempty"`
}

// BlockEventResponse describes a blocked attempt.
type BlockEventResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Email     string    `json:"email"`
	Rating    float64   `json:"rating"`
}

// BlockStatsResponse describes block statistics.
type BlockStatsResponse struct {
	Today  int                  `json:"today"`
	Week   int                  `json:"week"`
	Month  int                  `json:"month"`
	All    int                  `json:"all"`
	Recent []BlockEventResponse `json:"recent"`
}

// NewBlockStatsResponse maps statistics onto the response.
func NewBlockStatsResponse(s model.BlockStats) BlockStatsResponse {
	recent := make([]BlockEventResponse, 0, len(s.Recent))
	for _, e := range s.Recent {
		recent = append(recent, BlockEventResponse{Timestamp: e.Timestamp, Email: e.Email, Rating: e.Rating})
	}
	return BlockStatsResponse{Today: s.Today, Week: s.Week, Month: s.Month, All: s.All, Recent: recent}
}

// ErrorResponse carries a failure description.
type ErrorResponse struct {
	Error string `json:"error"`
}
