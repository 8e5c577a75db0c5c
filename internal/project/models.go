// Package project persists editing projects: a named timeline plus the
// asset list its clips reference. Timeline and assets are stored as JSON
// documents so the editable structure can evolve without schema churn.
package project

import (
	"time"

	"github.com/cutroom/cutroom-agent/internal/timeline"
)

type Project struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Timeline  timeline.Timeline `json:"timeline"`
	Assets    []timeline.Asset  `json:"assets"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Summary is the list-view shape: everything but the timeline document.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
