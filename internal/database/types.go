package database

import (
	"time"

	"github.com/kozaktomas/makeup-coach/internal/makeup"
)

// StoredAnalysis represents a makeup analysis stored in the database
type StoredAnalysis struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id,omitempty"` // empty for anonymous analyses
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Format     string         `json:"format"`
	Confidence float64        `json:"confidence"`
	Result     *makeup.Result `json:"result"`
	CreatedAt  time.Time      `json:"created_at"`
}
