package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/authgate/backend/internal/config"
	"github.com/authgate/backend/internal/db"
	"github.com/authgate/backend/internal/model"
	"github.com/authgate/backend/internal/token"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const (
	AccessCookie  = "access-token"
	RefreshCookie = "refresh-token"

	bcryptCost        = 11
	minUsernameLength = 3
	minPasswordLength = 8

	// The access cookie deliberately outlives the 15m access token; the
	// interceptor's silent-refresh path replaces the token inside it.
	accessCookieTTL = 24 * time.Hour
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateIdentity  = errors.New("identity already registered")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrMisconfigured      = errors.New("auth config invalid")
)

type CookieConfig struct {
	Path          string
	Domain        string
	Secure        bool
	SameSite      http.SameSite
	AccessMaxAge  int
	RefreshMaxAge int
}

type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	IncrementTokenVersion(ctx context.Context, userID int64) error
}

type AuthService struct {
	store     UserStore
	codec     *token.Codec
	cookieCfg CookieConfig
}

func NewAuthService(store UserStore, cfg config.AuthConfig) (*AuthService, error) {
	codec, err := token.NewCodec(token.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	if err != nil {
		return nil, err
	}

	cookieSecure, err := parseBool(cfg.CookieSecure, true)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", ErrMisconfigured)
	}

	cookieSameSite, err := parseSameSite(cfg.CookieSameSite)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}

	if cookieSameSite == http.SameSiteNoneMode && !cookieSecure {
		return nil, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}

	cookiePath := cfg.CookiePath
	if strings.TrimSpace(cookiePath) == "" {
		cookiePath = "/"
	}

	return &AuthService{
		store: store,
		codec: codec,
		cookieCfg: CookieConfig{
			Path:          cookiePath,
			Domain:        cfg.CookieDomain,
			Secure:        cookieSecure,
			SameSite:      cookieSameSite,
			AccessMaxAge:  int(accessCookieTTL.Seconds()),
			RefreshMaxAge: int(codec.RefreshTTL().Seconds()),
		},
	}, nil
}

func (s *AuthService) CookieConfig() CookieConfig {
	return s.cookieCfg
}

// Register creates a user with token version 0. A duplicate email surfaces as
// ErrDuplicateIdentity; the first record is left untouched by the store.
func (s *AuthService) Register(ctx context.Context, username, email, password string) error {
	if err := validateRegistration(username, email, password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}

	if _, err := s.store.CreateUser(ctx, username, email, string(hash)); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdentity
		}
		return err
	}
	return nil
}

// Login verifies credentials and mints an access/refresh pair at the user's
// current token version. Unknown email and wrong password collapse to the same
// error so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (token.Pair, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return token.Pair{}, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return token.Pair{}, ErrInvalidCredentials
		}
		return token.Pair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return token.Pair{}, ErrInvalidCredentials
	}

	return s.codec.MintPair(user.ID, user.TokenVersion)
}

// Logout reports whether there was anything to clear. Tokens are discarded
// client-side only; they stay structurally valid until natural expiry.
func (s *AuthService) Logout(accessToken, refreshToken string) bool {
	return accessToken != "" || refreshToken != ""
}

// LogoutAllDevices bumps the user's token version, invalidating every
// outstanding refresh token at once. Verification failures are swallowed into
// a plain false so unauthenticated callers learn nothing about token validity.
func (s *AuthService) LogoutAllDevices(ctx context.Context, refreshToken string) bool {
	if refreshToken == "" {
		return false
	}

	userID, _, err := s.codec.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return false
	}

	if err := s.store.IncrementTokenVersion(ctx, userID); err != nil {
		return false
	}
	return true
}

// CurrentUser resolves the user behind an authenticated identity. A zero id or
// missing record yields nil rather than an error: unauthenticated access to an
// identity-optional query is valid.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	if userID == 0 {
		return nil, nil
	}
	return s.UserByID(ctx, userID)
}

func (s *AuthService) VerifyToken(tokenStr string, kind token.Kind) (int64, int, error) {
	return s.codec.Verify(tokenStr, kind)
}

func (s *AuthService) MintPair(userID int64, tokenVersion int) (token.Pair, error) {
	return s.codec.MintPair(userID, tokenVersion)
}

func (s *AuthService) UserByID(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func validateRegistration(username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if len(username) < minUsernameLength || len(username) > 64 {
		return ErrInvalidInput
	}
	if len(email) < 3 || len(email) > 254 || !strings.Contains(email, "@") {
		return ErrInvalidInput
	}
	if len(password) < minPasswordLength || len(password) > 128 {
		return ErrInvalidInput
	}
	return nil
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	switch strings.ToLower(value) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, ErrInvalidInput
	}
}

func parseSameSite(value string) (http.SameSite, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return http.SameSiteStrictMode, nil
	}
	switch value {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, ErrInvalidInput
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
