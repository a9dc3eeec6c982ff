package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/auth"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/observability/metrics"
	profiles "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/profiles/domain"
	profilerepo "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/profiles/infrastructure/postgres"
)

const defaultSessionTTL = 12 * time.Hour

// Session is the result of a successful login.
type Session struct {
	Token    string     `json:"token"`
	Username string     `json:"username"`
	Role     auth.Role  `json:"role"`
	Scope    auth.Scope `json:"scope"`
}

// Service handles account management and login.
type Service struct {
	repo       *profilerepo.Repository
	secret     []byte
	sessionTTL time.Duration
}

// NewService constructs a profile service.
func NewService(repo *profilerepo.Repository, secret []byte, sessionTTL time.Duration) (*Service, error) {
	if repo == nil {
		return nil, errors.New("profile service: nil repo")
	}
	if len(secret) == 0 {
		return nil, errors.New("profile service: empty jwt secret")
	}
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &Service{repo: repo, secret: secret, sessionTTL: sessionTTL}, nil
}

// Login checks credentials against the profile row and issues a session
// token carrying role and household scope. The password comparison is
// plain equality over the stored value.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		metrics.IncLoginAttempt(metrics.ResultError)
		return nil, profiles.ErrInvalidCredentials
	}
	profile, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, profiles.ErrNotFound) {
		metrics.IncLoginAttempt(metrics.ResultError)
		return nil, profiles.ErrInvalidCredentials
	}
	if err != nil {
		metrics.IncLoginAttempt(metrics.ResultError)
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(profile.Password), []byte(password)) != 1 {
		metrics.IncLoginAttempt(metrics.ResultError)
		return nil, profiles.ErrInvalidCredentials
	}

	scope := profile.Scope()
	token, err := auth.IssueJWT(s.secret, profile.Username, profile.Role, scope, s.sessionTTL)
	if err != nil {
		metrics.IncLoginAttempt(metrics.ResultError)
		return nil, err
	}
	metrics.IncLoginAttempt(metrics.ResultSuccess)
	return &Session{Token: token, Username: profile.Username, Role: profile.Role, Scope: scope}, nil
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]profiles.Profile, error) {
	return s.repo.List(ctx)
}

// Create validates and stores a new account.
func (s *Service) Create(ctx context.Context, profile *profiles.Profile) error {
	if profile == nil {
		return errors.New("profile service: nil profile")
	}
	if err := profile.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, profile)
}

// CreateBatch validates and stores a batch of imported accounts.
func (s *Service) CreateBatch(ctx context.Context, batch []profiles.Profile) error {
	for i := range batch {
		if err := batch[i].Validate(); err != nil {
			return err
		}
	}
	return s.repo.CreateBatch(ctx, batch)
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return profiles.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// ChangePassword replaces an account's password.
func (s *Service) ChangePassword(ctx context.Context, username, newPassword string) error {
	if username == "" {
		return profiles.ErrEmptyUsername
	}
	if newPassword == "" {
		return profiles.ErrEmptyPassword
	}
	return s.repo.UpdatePassword(ctx, username, newPassword)
}
