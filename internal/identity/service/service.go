// Package service implements registration and login. Self-registration
// assigns organization membership by email domain: an address whose domain
// matches an active organization domain joins that organization as a
// candidate, anything else becomes an unaffiliated candidate.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"veristaff/internal/activity"
	"veristaff/internal/identity/models"
	"veristaff/internal/identity/store"
	"veristaff/internal/jwttoken"
	orgstore "veristaff/internal/org/store"
	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
	"veristaff/pkg/platform/sentinel"
	"veristaff/pkg/requestcontext"
)

const (
	tracerName = "veristaff/identity"

	minPasswordLength = 8
)

// Session is a successful login result.
type Session struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

type Service struct {
	users    store.Store
	orgs     orgstore.Store
	tokens   *jwttoken.Service
	audit    *activity.Logger
	logger   *slog.Logger
	tokenTTL time.Duration
	tracer   trace.Tracer
}

func New(users store.Store, orgs orgstore.Store, tokens *jwttoken.Service, audit *activity.Logger, logger *slog.Logger, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		orgs:     orgs,
		tokens:   tokens,
		audit:    audit,
		logger:   logger,
		tokenTTL: tokenTTL,
		tracer:   otel.Tracer(tracerName),
	}
}

// Register creates a candidate account. Organization membership is derived
// from the email domain at creation time and is not revisited afterwards.
func (s *Service) Register(ctx context.Context, email, displayName, password string) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Register")
	defer span.End()

	if len(password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	now := requestcontext.Now(ctx)
	user, err := models.NewUser(id.NewUserID(), email, displayName, models.RoleCandidate, now)
	if err != nil {
		return nil, err
	}

	if domain := models.EmailDomain(user.Email); domain != "" {
		entry, err := s.orgs.FindActiveByDomain(ctx, domain)
		switch {
		case err == nil:
			orgID := entry.OrgID
			user.OrgID = &orgID
		case dErrors.Is(err, sentinel.ErrNotFound):
			// unaffiliated candidate
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve organization domain")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		if dErrors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID, "org_assigned", user.OrgID != nil)
	s.recordRegistration(ctx, user)
	return user, nil
}

// Login verifies credentials and issues an access token.
// Errors: CodeUnauthorized for unknown email, wrong password, or accounts
// that may not authenticate. The three cases are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Login")
	defer span.End()

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, invalidCredentials()
	}
	if !user.CanAuthenticate() {
		return nil, invalidCredentials()
	}

	now := requestcontext.Now(ctx)
	token, err := s.tokens.Generate(user.ID, user.OrgID, string(user.Role), now)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &Session{
		User:        user,
		AccessToken: token,
		ExpiresAt:   now.Add(s.tokenTTL),
	}, nil
}

// GetUser loads one account. Used by transport to resolve candidate names.
func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// recordRegistration writes the audit entry as the freshly created user;
// registration has no authenticated actor yet.
func (s *Service) recordRegistration(ctx context.Context, user *models.User) {
	actor := requestcontext.Actor{UserID: user.ID, Role: string(user.Role)}
	if user.OrgID != nil {
		actor.OrgID = *user.OrgID
	}
	ctx = requestcontext.WithActor(ctx, actor)
	s.audit.Record(ctx, activity.ActionCreated, "user", user.ID.String(),
		user.DisplayName, "user registered", user.OrgID, nil)
}

func invalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
}
