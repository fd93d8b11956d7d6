package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/blob"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/directory"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/user"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/wallet"
)

// UploadError marks an avatar persistence failure. The underlying blob
// store message is surfaced verbatim; nothing from the same update is
// applied.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return e.Err.Error() }

func (e *UploadError) Unwrap() error { return e.Err }

// AvatarChange is the avatar instruction for one update: unset leaves the
// avatar alone, set with an empty payload clears it, set with content
// replaces it.
type AvatarChange struct {
	Set     bool
	Payload []byte
}

// Changes carries one update call's field instructions.
type Changes struct {
	DisplayName user.OptionalString
	Avatar      AvatarChange
}

// Service applies authenticated profile mutations. Avatar bytes go to the
// blob store; the repository mutation is applied only after every
// sub-upload has succeeded, so a blob failure leaves the record untouched.
type Service struct {
	users  user.Repository
	blobs  blob.Store
	wallet *wallet.Keystore
	syncer *directory.Syncer
	logger *slog.Logger
}

// NewService builds a profile service. syncer may be nil when directory
// sync is disabled.
func NewService(users user.Repository, blobs blob.Store, ks *wallet.Keystore, syncer *directory.Syncer, logger *slog.Logger) *Service {
	return &Service{users: users, blobs: blobs, wallet: ks, syncer: syncer, logger: logger}
}

// Update applies the changes and returns the post-mutation user view.
func (s *Service) Update(ctx context.Context, userID string, ch Changes) (user.User, error) {
	patch := user.ProfilePatch{DisplayName: ch.DisplayName}

	if ch.Avatar.Set {
		if len(ch.Avatar.Payload) == 0 {
			patch.AvatarURL = user.Clear()
		} else {
			url, err := s.blobs.Upload(ctx, fmt.Sprintf("avatars/%s", userID), ch.Avatar.Payload)
			if err != nil {
				return user.User{}, &UploadError{Err: err}
			}
			patch.AvatarURL = user.Replace(url)
		}
	}

	updated, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return user.User{}, err
	}

	s.dispatchSync(ctx, updated)
	return updated, nil
}

// dispatchSync hands the fresh identity to the directory syncer. The sync
// is keyed on the device wallet address; without one there is nothing to
// upsert. Never blocks or fails the update.
func (s *Service) dispatchSync(ctx context.Context, u user.User) {
	if s.syncer == nil {
		return
	}
	rec, ok := s.wallet.Load(ctx)
	if !ok {
		s.logger.Debug("skipping directory sync, no device wallet", "user_id", u.ID)
		return
	}
	s.syncer.Enqueue(directory.Record{
		PublicAddress: rec.Address,
		Username:      u.Username,
		DisplayName:   u.DisplayName,
		AvatarURL:     u.AvatarURL,
		FarcasterID:   u.FID,
	})
}
