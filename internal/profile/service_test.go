package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/blob"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/logging"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/user"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/wallet"
)

// failingBlob simulates an unavailable blob store.
type failingBlob struct {
	calls int
}

func (f *failingBlob) Upload(context.Context, string, []byte) (string, error) {
	f.calls++
	return "", errors.New("blob store unavailable")
}

func seedUser(t *testing.T, repo user.Repository) user.User {
	t.Helper()
	name := "Original Name"
	u := user.User{ID: uuid.NewString(), FID: 7, Username: "alice", DisplayName: &name}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func newTestService(repo user.Repository, blobs blob.Store) *Service {
	logger := logging.Discard()
	ks := wallet.NewKeystore(wallet.NewMemoryStore(), nil, logger)
	return NewService(repo, blobs, ks, nil, logger)
}

func TestUpdateReplacesDisplayName(t *testing.T) {
	repo := user.NewMemoryRepository()
	u := seedUser(t, repo)
	svc := newTestService(repo, blob.NewMemoryStore())

	updated, err := svc.Update(context.Background(), u.ID, Changes{DisplayName: user.Replace("New Name")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DisplayName == nil || *updated.DisplayName != "New Name" {
		t.Fatalf("expected display name replaced, got %v", updated.DisplayName)
	}
}

func TestUpdateClearVersusOmit(t *testing.T) {
	repo := user.NewMemoryRepository()
	u := seedUser(t, repo)
	svc := newTestService(repo, blob.NewMemoryStore())
	ctx := context.Background()

	// Omitted field leaves the stored value untouched.
	updated, err := svc.Update(ctx, u.ID, Changes{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if updated.DisplayName == nil || *updated.DisplayName != "Original Name" {
		t.Fatalf("expected untouched display name, got %v", updated.DisplayName)
	}

	// Explicit clear stores null.
	updated, err = svc.Update(ctx, u.ID, Changes{DisplayName: user.Clear()})
	if err != nil {
		t.Fatalf("clear update: %v", err)
	}
	if updated.DisplayName != nil {
		t.Fatalf("expected cleared display name, got %q", *updated.DisplayName)
	}
}

func TestUpdateAvatarUploadsAndStoresURL(t *testing.T) {
	repo := user.NewMemoryRepository()
	u := seedUser(t, repo)
	svc := newTestService(repo, blob.NewMemoryStore())

	updated, err := svc.Update(context.Background(), u.ID, Changes{
		Avatar: AvatarChange{Set: true, Payload: []byte("png-bytes")},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AvatarURL == nil || *updated.AvatarURL != "memory://avatars/"+u.ID {
		t.Fatalf("expected stored avatar url, got %v", updated.AvatarURL)
	}
}

func TestUpdateAvatarClearSkipsBlobStore(t *testing.T) {
	repo := user.NewMemoryRepository()
	u := seedUser(t, repo)
	blobs := &failingBlob{}
	svc := newTestService(repo, blobs)

	updated, err := svc.Update(context.Background(), u.ID, Changes{
		Avatar: AvatarChange{Set: true},
	})
	if err != nil {
		t.Fatalf("clear avatar: %v", err)
	}
	if updated.AvatarURL != nil {
		t.Fatalf("expected avatar cleared, got %v", *updated.AvatarURL)
	}
	if blobs.calls != 0 {
		t.Fatalf("expected no blob-store call on clear, got %d", blobs.calls)
	}
}

func TestBlobFailureAbortsWholeUpdate(t *testing.T) {
	repo := user.NewMemoryRepository()
	u := seedUser(t, repo)
	svc := newTestService(repo, &failingBlob{})

	_, err := svc.Update(context.Background(), u.ID, Changes{
		DisplayName: user.Replace("Should Not Apply"),
		Avatar:      AvatarChange{Set: true, Payload: []byte("png-bytes")},
	})

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if uploadErr.Error() != "blob store unavailable" {
		t.Fatalf("expected blob failure surfaced verbatim, got %q", uploadErr.Error())
	}

	// Nothing from the same request may be partially applied.
	current, err := repo.FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if current.DisplayName == nil || *current.DisplayName != "Original Name" {
		t.Fatalf("display name partially applied: %v", current.DisplayName)
	}
	if current.AvatarURL != nil {
		t.Fatalf("avatar partially applied: %v", *current.AvatarURL)
	}
}

func TestUpdateUnknownUser(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo, blob.NewMemoryStore())

	_, err := svc.Update(context.Background(), uuid.NewString(), Changes{DisplayName: user.Replace("x")})
	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
