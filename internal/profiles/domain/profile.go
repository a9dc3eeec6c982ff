package profiles

import (
	"errors"
	"time"

	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/auth"
)

var (
	// ErrNotFound indicates no profile with the given id or username.
	ErrNotFound = errors.New("profiles: not found")
	// ErrInvalidCredentials indicates a failed username/password check.
	ErrInvalidCredentials = errors.New("profiles: invalid credentials")
	// ErrEmptyUsername indicates a profile without a username.
	ErrEmptyUsername = errors.New("profiles: empty username")
	// ErrEmptyPassword indicates a profile without a password.
	ErrEmptyPassword = errors.New("profiles: empty password")
	// ErrInvalidRole indicates a role outside admin/user.
	ErrInvalidRole = errors.New("profiles: invalid role")
)

// Profile is one login account. Non-admin accounts may be restricted to a
// single household through the restricted block and house number.
// Passwords are stored as entered; hashing is an explicit non-goal of
// this system.
type Profile struct {
	ID                    string    `json:"id"`
	Username              string    `json:"username"`
	Password              string    `json:"-"`
	Role                  auth.Role `json:"role"`
	RestrictedBlock       string    `json:"restricted_blok"`
	RestrictedHouseNumber string    `json:"restricted_nomor_rumah"`
	CreatedAt             time.Time `json:"created_at"`
}

// Scope returns the household scope this profile is limited to.
func (p *Profile) Scope() auth.Scope {
	if p.Role == auth.RoleAdmin {
		return auth.Scope{}
	}
	return auth.Scope{Block: p.RestrictedBlock, HouseNumber: p.RestrictedHouseNumber}
}

// Validate checks the fields an account cannot exist without.
func (p *Profile) Validate() error {
	if p.Username == "" {
		return ErrEmptyUsername
	}
	if p.Password == "" {
		return ErrEmptyPassword
	}
	if _, ok := auth.NormalizeRole(string(p.Role)); !ok {
		return ErrInvalidRole
	}
	return nil
}
