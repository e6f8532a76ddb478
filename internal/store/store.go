// Package store persists onboarding sessions, their transcripts, and the
// vehicles collected along the way.
package store

import (
	"context"
	"errors"

	"github.com/zhouzirui/onboard/internal/model/onboarding"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// ListFilter narrows ListSessions. A nil Complete lists everything.
type ListFilter struct {
	Complete *bool
}

func (f ListFilter) match(s onboarding.Session) bool {
	return f.Complete == nil || *f.Complete == s.IsComplete
}

// Repository defines how the agent stores onboarding data.
type Repository interface {
	// CreateSession starts a new session positioned at the first step.
	CreateSession(ctx context.Context) (onboarding.Session, error)

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, sessionID string) (onboarding.Session, error)

	// UpdateSession overwrites the stored fields of an existing session.
	UpdateSession(ctx context.Context, session onboarding.Session) error

	// ListSessions returns sessions in start order.
	ListSessions(ctx context.Context, filter ListFilter) ([]onboarding.Session, error)

	// SaveRecord appends one conversation turn.
	SaveRecord(ctx context.Context, record onboarding.Record) error

	// LoadTranscript returns the turns of a session in the order they were saved.
	LoadTranscript(ctx context.Context, sessionID string) ([]onboarding.Record, error)

	// SaveVehicle attaches a completed vehicle to a session.
	SaveVehicle(ctx context.Context, sessionID string, vehicle onboarding.Vehicle) error

	// ListVehicles returns the vehicles of a session in the order they were saved.
	ListVehicles(ctx context.Context, sessionID string) ([]onboarding.Vehicle, error)

	// Close releases underlying resources.
	Close() error
}
