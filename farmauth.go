// Package farmauth implements farmer account authentication and session
// lifecycle management on top of PostgreSQL. It is the single integration
// surface for any UI layer: register, login, validate, logout. The façade is
// stateless between calls; all state lives in the persistent store, so
// independent request handlers can share one Auth value freely.
package farmauth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/agrisuite/farmauth/internal/common"
	"github.com/agrisuite/farmauth/internal/logging"
	"github.com/agrisuite/farmauth/internal/models"
	"github.com/agrisuite/farmauth/internal/repositories/repomanager"
	"github.com/agrisuite/farmauth/internal/services"
)

// Sentinel errors returned by the façade. Match them with errors.Is.
// UI layers should collapse credential and session failures into generic
// "invalid credentials" / "session expired" messages rather than echoing
// which part was wrong.
var (
	ErrDuplicateIdentity  = common.ErrDuplicateIdentity
	ErrWeakPassword       = common.ErrWeakPassword
	ErrUnknownAccount     = common.ErrUnknownAccount
	ErrBadCredential      = common.ErrBadCredential
	ErrSessionNotFound    = common.ErrSessionNotFound
	ErrSessionExpired     = common.ErrSessionExpired
	ErrSessionRevoked     = common.ErrSessionRevoked
	ErrTooManyAttempts    = common.ErrTooManyAttempts
	ErrStorageUnavailable = common.ErrStorageUnavailable
)

// Profile carries the agricultural profile fields of an account.
type Profile struct {
	FullName  string
	FarmName  string
	District  string
	Village   string
	Phone     string
	CropTypes string
	FarmArea  float64
}

// Account is the public view of a registered farmer.
type Account struct {
	ID           string
	Username     string
	Email        string
	Profile      Profile
	RegisteredAt time.Time
	LastLoginAt  *time.Time
	Active       bool
}

// Client describes the caller of a login, recorded on the session and in
// the attempt log.
type Client struct {
	RemoteAddr string
	Label      string
}

// LoginResult is returned on successful login. Token is a bearer secret
// shown exactly once; it is not recoverable afterwards.
type LoginResult struct {
	AccountID string
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// Auth composes the credential store, session manager, and attempt monitor
// into the four façade operations plus account maintenance.
type Auth struct {
	cfg         Config
	db          *sql.DB
	log         logging.Logger
	credentials *services.CredentialService
	sessions    *services.SessionService
	attempts    *services.AttemptService
}

// New opens the PostgreSQL store at cfg.DatabaseDSN, runs the embedded
// schema migrations, and returns a ready Auth.
func New(cfg Config) (*Auth, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return newAuth(cfg, db, m), nil
}

// NewInMemory returns an Auth backed entirely by process memory. Nothing
// survives a restart; intended for tests and prototypes.
func NewInMemory(cfg Config) *Auth {
	return newAuth(cfg, nil, repomanager.NewInMemoryRepositoryManager())
}

func newAuth(cfg Config, db *sql.DB, m repomanager.RepositoryManager) *Auth {
	cfg = cfg.withDefaults()

	var log logging.Logger
	if cfg.Logger != nil {
		log = logging.NewSlogLogger(cfg.Logger)
	} else {
		log = logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	return &Auth{
		cfg:         cfg,
		db:          db,
		log:         log,
		credentials: services.NewCredentialService(db, m, cfg.MinPasswordLength, log),
		sessions:    services.NewSessionService(db, m, cfg.SessionValidity, log),
		attempts:    services.NewAttemptService(db, m, log),
	}
}

// Close releases the underlying database connection.
func (a *Auth) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// RegisterFarmer creates a new account and returns its id.
func (a *Auth) RegisterFarmer(ctx context.Context, username, email, password string, profile Profile) (string, error) {
	account := &models.Account{
		Username:  username,
		Email:     email,
		FullName:  profile.FullName,
		FarmName:  profile.FarmName,
		District:  profile.District,
		Village:   profile.Village,
		Phone:     profile.Phone,
		CropTypes: profile.CropTypes,
		FarmArea:  profile.FarmArea,
	}
	return a.credentials.Register(ctx, account, password)
}

// Login verifies credentials and issues a session. Attempts are refused
// with ErrTooManyAttempts once the configured number of failures has been
// seen for the username inside the lockout window, regardless of whether
// the password is correct. Every attempt, including refused ones, lands in
// the attempt log.
func (a *Auth) Login(ctx context.Context, username, password string, client Client) (*LoginResult, error) {
	if a.cfg.LockoutThreshold > 0 {
		n, err := a.attempts.RecentFailures(ctx, username, a.cfg.LockoutWindow)
		if err != nil {
			return nil, err
		}
		if n >= a.cfg.LockoutThreshold {
			a.recordAttempt(ctx, username, client, false, "locked out")
			return nil, common.ErrTooManyAttempts
		}
	}

	accountID, err := a.credentials.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrUnknownAccount) || errors.Is(err, common.ErrBadCredential) {
			a.recordAttempt(ctx, username, client, false, failureReason(err))
		}
		return nil, err
	}

	session, err := a.sessions.Create(ctx, accountID, client.RemoteAddr, client.Label)
	if err != nil {
		return nil, err
	}

	a.recordAttempt(ctx, username, client, true, "")

	return &LoginResult{
		AccountID: accountID,
		SessionID: session.ID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, common.ErrUnknownAccount):
		return "unknown account"
	case errors.Is(err, common.ErrBadCredential):
		return "invalid password"
	default:
		return err.Error()
	}
}

// recordAttempt appends to the attempt log. The attempt log is advisory:
// a storage fault here is logged and must not mask the login outcome.
func (a *Auth) recordAttempt(ctx context.Context, username string, client Client, success bool, reason string) {
	if err := a.attempts.Record(ctx, username, client.RemoteAddr, success, reason); err != nil {
		a.log.Error(ctx, "failed to record login attempt",
			"username", username, "error", err)
	}
}

// ValidateSession resolves a bearer token to the owning account id.
func (a *Auth) ValidateSession(ctx context.Context, token string) (string, error) {
	return a.sessions.Validate(ctx, token)
}

// Logout revokes the session by id. Idempotent.
func (a *Auth) Logout(ctx context.Context, sessionID string) error {
	return a.sessions.Revoke(ctx, sessionID)
}

// LogoutAll revokes every active session belonging to the account, leaving
// the account itself usable. Meant for "sign out everywhere" and suspected
// token leaks.
func (a *Auth) LogoutAll(ctx context.Context, accountID string) error {
	return a.sessions.RevokeAll(ctx, accountID)
}

// DeactivateAccount soft-deactivates the account and revokes every active
// session it owns, atomically.
func (a *Auth) DeactivateAccount(ctx context.Context, accountID string) error {
	return a.credentials.Deactivate(ctx, accountID)
}

// ChangePassword verifies the old password, stores the new one, and revokes
// every outstanding session so stolen tokens die with the old credential.
func (a *Auth) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	return a.credentials.ChangePassword(ctx, accountID, oldPassword, newPassword)
}

// GetProfile returns the public view of an account.
func (a *Auth) GetProfile(ctx context.Context, accountID string) (*Account, error) {
	account, err := a.credentials.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Profile: Profile{
			FullName:  account.FullName,
			FarmName:  account.FarmName,
			District:  account.District,
			Village:   account.Village,
			Phone:     account.Phone,
			CropTypes: account.CropTypes,
			FarmArea:  account.FarmArea,
		},
		RegisteredAt: account.RegisteredAt,
		LastLoginAt:  account.LastLoginAt,
		Active:       account.Active,
	}, nil
}

// UpdateProfile overwrites the account's profile fields.
func (a *Auth) UpdateProfile(ctx context.Context, accountID string, profile Profile) error {
	return a.credentials.UpdateProfile(ctx, &models.Account{
		ID:        accountID,
		FullName:  profile.FullName,
		FarmName:  profile.FarmName,
		District:  profile.District,
		Village:   profile.Village,
		Phone:     profile.Phone,
		CropTypes: profile.CropTypes,
		FarmArea:  profile.FarmArea,
	})
}

// PurgeExpiredSessions deletes sessions whose expiry lies further in the
// past than retention, returning how many rows went away.
func (a *Auth) PurgeExpiredSessions(ctx context.Context, retention time.Duration) (int64, error) {
	return a.sessions.PurgeExpired(ctx, retention)
}

// RunReaper purges long-expired sessions every interval until ctx is
// cancelled. Optional: validation rejects stale tokens with or without it.
func (a *Auth) RunReaper(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.PurgeExpiredSessions(ctx, retention); err != nil {
				a.log.Error(ctx, "session reaper pass failed", "error", err)
			}
		}
	}
}
