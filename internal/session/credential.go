package session

import (
	"strings"

	"github.com/google/uuid"
)

// CookieName is the fixed cookie carrying the session token. The token's
// lifecycle is owned by the identity authority; this layer only reads it.
const CookieName = "ren_session"

// CredentialState classifies an inbound session credential.
type CredentialState int

const (
	StateAbsent CredentialState = iota
	StateInvalid
	StateValid
)

// Credential is the parsed session credential. UserID is set only for
// StateValid.
type Credential struct {
	State  CredentialState
	UserID string
}

// ParseCredential classifies a raw cookie value. The token value maps 1:1
// to a user id, so anything that is not a well-formed id is invalid.
func ParseCredential(raw string) Credential {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Credential{State: StateAbsent}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Credential{State: StateInvalid}
	}
	return Credential{State: StateValid, UserID: id.String()}
}
