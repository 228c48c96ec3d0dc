// Package session defines the records a browser session carries for an
// email/password member and the typed profile sum used to move a member
// profile between the session cache and the rest of the application.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"primefit/internal/domain/member"
)

// Session storage keys. These names are part of the external contract.
const (
	KeyMemberAuth         = "memberAuth"
	KeyMemberProfileCache = "memberProfileCache"
)

// Keys lists every key owned by a member session.
var Keys = []string{KeyMemberAuth, KeyMemberProfileCache}

// State describes what a session holds for the member mode.
type State int

const (
	// StateAbsent means no member record is stored.
	StateAbsent State = iota
	// StateAuthenticated means a parseable, authenticated record is stored.
	StateAuthenticated
	// StateCorrupted means a record is stored but cannot be parsed.
	StateCorrupted
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateCorrupted:
		return "corrupted"
	default:
		return "absent"
	}
}

// Domain errors
var (
	ErrCorrupted = errors.New("session record is corrupted")
	ErrNoProfile = errors.New("no profile to normalize")
)

// MemberAuth is the record stored under KeyMemberAuth after a member login.
type MemberAuth struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email"`
	MemberID      int64  `json:"memberId,string"`
}

// NewMemberAuth builds the record for a freshly logged-in member.
func NewMemberAuth(m member.Member) MemberAuth {
	return MemberAuth{Authenticated: true, Email: m.Email, MemberID: m.ID}
}

// ParseMemberAuth decodes a stored MemberAuth.
// PRE: raw is the stored value
// POST: Returns ErrCorrupted if raw is not a well-formed record
// INVARIANT: an authenticated record always carries an email and a positive member id
func ParseMemberAuth(raw string) (MemberAuth, error) {
	var a MemberAuth
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return MemberAuth{}, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if dec.More() {
		return MemberAuth{}, fmt.Errorf("%w: trailing data", ErrCorrupted)
	}
	if a.Authenticated && (a.Email == "" || a.MemberID <= 0) {
		return MemberAuth{}, fmt.Errorf("%w: incomplete record", ErrCorrupted)
	}
	return a, nil
}

// Encode renders the record as stored.
func (a MemberAuth) Encode() (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
