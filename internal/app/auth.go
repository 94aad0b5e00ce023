package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"elitestay/internal/domain"
)

const (
	minPasswordLen = 6

	msgInvalidCredentials = "invalid credentials"
	msgEmailInUse         = "email already in use"
	msgMissingFields      = "email and password are required"
	msgSessionExpired     = "session expired"
)

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Grant is the result of a successful sign-in.
type Grant struct {
	Token   string         `json:"token"`
	User    domain.User    `json:"user"`
	Session domain.Session `json:"-"`
}

type AuthService struct {
	users    domain.UserStore
	sessions domain.SessionStore
	tokens   domain.TokenIssuer
	registry *SessionRegistry
	idle     time.Duration
	validate *validator.Validate
	now      func() time.Time
}

// NewAuthService wires the credential and session stores. registry may be nil.
func NewAuthService(users domain.UserStore, sessions domain.SessionStore, tokens domain.TokenIssuer, registry *SessionRegistry, idle time.Duration) *AuthService {
	if idle <= 0 {
		idle = 2 * time.Minute
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		registry: registry,
		idle:     idle,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (a *AuthService) SignUp(ctx context.Context, email, password string) (domain.User, error) {
	in := credentials{Email: normalizeEmail(email), Password: password}
	if err := a.validate.Struct(in); err != nil {
		return domain.User{}, domain.NewAuthError(validationMessage(err))
	}

	existing, err := a.users.FindUserByEmail(ctx, in.Email)
	if err != nil {
		return domain.User{}, fmt.Errorf("sign up: %w", err)
	}
	if existing != nil {
		return domain.User{}, fmt.Errorf("%w (%w)", domain.NewAuthError(msgEmailInUse), domain.ErrDuplicate)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    a.now(),
	}
	if err := a.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.User{}, fmt.Errorf("%w (%w)", domain.NewAuthError(msgEmailInUse), domain.ErrDuplicate)
		}
		return domain.User{}, fmt.Errorf("sign up: %w", err)
	}
	log.Info().Str("user_id", u.ID).Msg("user registered")
	return u, nil
}

func (a *AuthService) SignIn(ctx context.Context, email, password string) (Grant, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return Grant{}, domain.NewAuthError(msgMissingFields)
	}
	u, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		return Grant{}, fmt.Errorf("sign in: %w", err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Grant{}, domain.NewAuthError(msgInvalidCredentials)
	}

	s := domain.Session{ID: uuid.NewString(), UserID: u.ID, Email: u.Email, LastSeen: a.now()}
	if err := a.sessions.Save(ctx, s, a.idle); err != nil {
		return Grant{}, fmt.Errorf("save session: %w", err)
	}
	tok, err := a.tokens.Issue(*u, s.ID)
	if err != nil {
		_ = a.sessions.Delete(ctx, s.ID)
		return Grant{}, fmt.Errorf("issue token: %w", err)
	}
	return Grant{Token: tok, User: *u, Session: s}, nil
}

// SignOut ends the session behind token and drops its process-local state.
// Signing out twice is not an error.
func (a *AuthService) SignOut(ctx context.Context, token string) error {
	c, err := a.tokens.Parse(token)
	if err != nil {
		return domain.NewAuthError(msgInvalidCredentials)
	}
	if a.registry != nil {
		a.registry.Drop(c.SessionID)
	}
	if err := a.sessions.Delete(ctx, c.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Authenticate validates token, requires a live session and slides its idle window.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	c, err := a.tokens.Parse(token)
	if err != nil {
		return nil, domain.NewAuthError(msgInvalidCredentials)
	}
	s, err := a.sessions.Touch(ctx, c.SessionID, a.idle)
	if err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	if s == nil || s.UserID != c.UserID {
		if a.registry != nil {
			a.registry.Drop(c.SessionID)
		}
		return nil, domain.NewAuthError(msgSessionExpired)
	}
	if a.registry != nil {
		a.registry.Touch(c.SessionID)
	}
	return s, nil
}

func (a *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	s, err := a.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := a.users.FindUserByID(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, domain.NewAuthError(msgInvalidCredentials)
	}
	return u, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return msgMissingFields
	}
	fe := ve[0]
	switch {
	case fe.Tag() == "required":
		return msgMissingFields
	case fe.Field() == "Email":
		return "email is not valid"
	case fe.Field() == "Password":
		return fmt.Sprintf("password must be at least %d characters", minPasswordLen)
	}
	return fe.Error()
}
