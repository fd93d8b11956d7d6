package user

import "errors"

// ErrNotFound is returned when no user exists for the given id.
var ErrNotFound = errors.New("user not found")

// User is the local view of the authority-owned user record, keyed by the
// session-resolved id. DisplayName and AvatarURL are independently
// clearable.
type User struct {
	ID          string
	FID         int64
	Username    string
	DisplayName *string
	AvatarURL   *string
}

// OptionalString is a tri-state field instruction: not set (leave the
// stored value untouched), set with a nil value (clear it), or set with a
// concrete value (replace it).
type OptionalString struct {
	Set   bool
	Value *string
}

// Keep returns an untouched field.
func Keep() OptionalString { return OptionalString{} }

// Clear returns an instruction to null the field.
func Clear() OptionalString { return OptionalString{Set: true} }

// Replace returns an instruction to store v.
func Replace(v string) OptionalString { return OptionalString{Set: true, Value: &v} }

// ProfilePatch carries the field instructions for one profile update. An
// empty patch is valid and leaves the record unchanged.
type ProfilePatch struct {
	DisplayName OptionalString
	AvatarURL   OptionalString
}

// Empty reports whether the patch touches nothing.
func (p ProfilePatch) Empty() bool {
	return !p.DisplayName.Set && !p.AvatarURL.Set
}
