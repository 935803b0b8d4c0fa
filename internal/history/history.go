// Package history keeps the append-only log of verdicts per user.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRecord = errors.New("invalid history record")

// Record is one persisted classification.
type Record struct {
	ID        uuid.UUID         `json:"id"`
	UserID    string            `json:"user_id"`
	Disease   string            `json:"disease"`
	Inputs    map[string]string `json:"inputs"`
	Verdict   string            `json:"verdict"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewRecord stamps a record with a fresh id and the current UTC time.
func NewRecord(userID, disease, verdict string, inputs map[string]string) Record {
	return Record{
		ID:        uuid.New(),
		UserID:    userID,
		Disease:   disease,
		Inputs:    inputs,
		Verdict:   verdict,
		CreatedAt: time.Now().UTC(),
	}
}

func (r Record) validate() error {
	switch {
	case r.ID == uuid.Nil:
		return errors.Join(ErrInvalidRecord, errors.New("missing id"))
	case r.UserID == "":
		return errors.Join(ErrInvalidRecord, errors.New("missing user id"))
	case r.Disease == "" || r.Verdict == "":
		return errors.Join(ErrInvalidRecord, errors.New("missing disease or verdict"))
	}
	return nil
}

// Store persists records. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, rec Record) error
	// ListByUser returns the user's records newest first. limit <= 0 means
	// no limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
	Ping(ctx context.Context) error
	Close() error
}
