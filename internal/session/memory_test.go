package session

import (
	"context"
	"errors"
	"testing"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/models"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/transcript"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := &models.ReportSession{ID: "abc", Phase: models.PhaseIntake}
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, s); err == nil {
		t.Fatal("duplicate Create should fail")
	}

	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Phase != models.PhaseIntake {
		t.Errorf("phase = %q, want intake", got.Phase)
	}

	got.Phase = models.PhaseVerification
	got.Conversation = append(got.Conversation, transcript.Message{Role: transcript.RoleUser, Content: "안녕하세요"})
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reread, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get after Save: %v", err)
	}
	if reread.Phase != models.PhaseVerification || len(reread.Conversation) != 1 {
		t.Errorf("saved state not persisted: %+v", reread)
	}

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := &models.ReportSession{
		ID:            "abc",
		UploadedTexts: []string{"원본"},
	}
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	s.UploadedTexts[0] = "변조"
	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UploadedTexts[0] != "원본" {
		t.Errorf("stored session mutated through caller slice: %q", got.UploadedTexts[0])
	}

	// And mutating a returned copy must not change stored state either.
	got.UploadedTexts[0] = "변조2"
	again, _ := store.Get(ctx, "abc")
	if again.UploadedTexts[0] != "원본" {
		t.Errorf("stored session mutated through returned copy: %q", again.UploadedTexts[0])
	}
}

func TestSaveUnknownSession(t *testing.T) {
	store := NewMemoryStore()
	err := store.Save(context.Background(), &models.ReportSession{ID: "ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Save = %v, want ErrNotFound", err)
	}
}
