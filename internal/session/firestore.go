package session

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/models"
)

// FirestoreStore persists sessions as documents in a single collection,
// for deployments where the dashboard must survive restarts.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

func (f *FirestoreStore) doc(id string) *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(id)
}

func (f *FirestoreStore) Create(ctx context.Context, s *models.ReportSession) error {
	_, err := f.doc(s.ID).Create(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to create session document: %w", err)
	}
	return nil
}

func (f *FirestoreStore) Get(ctx context.Context, id string) (*models.ReportSession, error) {
	snap, err := f.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read session document: %w", err)
	}
	var s models.ReportSession
	if err := snap.DataTo(&s); err != nil {
		return nil, fmt.Errorf("failed to decode session document: %w", err)
	}
	return &s, nil
}

func (f *FirestoreStore) Save(ctx context.Context, s *models.ReportSession) error {
	_, err := f.doc(s.ID).Set(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to save session document: %w", err)
	}
	return nil
}

func (f *FirestoreStore) Delete(ctx context.Context, id string) error {
	_, err := f.doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete session document: %w", err)
	}
	return nil
}
