// Package session persists report wizard sessions. The server is the only
// writer for a given session, so stores provide last-write-wins saves rather
// than transactions.
package session

import (
	"context"
	"errors"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/models"
)

// ErrNotFound is returned when no session exists under the requested ID.
var ErrNotFound = errors.New("session not found")

// Store persists whole sessions. Every mutation replaces the stored
// document.
type Store interface {
	Create(ctx context.Context, s *models.ReportSession) error
	Get(ctx context.Context, id string) (*models.ReportSession, error)
	Save(ctx context.Context, s *models.ReportSession) error
	Delete(ctx context.Context, id string) error
}
