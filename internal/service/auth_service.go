package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"talenta/internal/cache"
	"talenta/internal/middleware"
	"talenta/internal/models"
	"talenta/internal/repository"
	"talenta/internal/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Welcome notification written for every new account.
const (
	welcomeTitle   = "Welcome to Talenta!"
	welcomeMessage = "Start exploring skills and connecting with creators"
)

var errInvalidCredentials = models.NewUnauthorizedError("Invalid credentials")

// AuthService owns account creation, credentials and token revocation.
type AuthService struct {
	profiles      repository.ProfileRepository
	notifications *NotificationService
	tokens        *middleware.Tokens
	rdb           *redis.Client
	// exposeResetToken returns reset tokens to the caller. Development only.
	exposeResetToken bool
	hashCost         int
}

type SignUpInput struct {
	Email    string
	Password string
	Username string
	FullName string
}

// AuthResult is returned by SignUp and SignIn.
type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *models.Profile `json:"user"`
}

type ResetPasswordInput struct {
	Token    string
	Password string
	Confirm  string
}

func NewAuthService(
	profiles repository.ProfileRepository,
	notifications *NotificationService,
	tokens *middleware.Tokens,
	rdb *redis.Client,
	exposeResetToken bool,
) *AuthService {
	return &AuthService{
		profiles:         profiles,
		notifications:    notifications,
		tokens:           tokens,
		rdb:              rdb,
		exposeResetToken: exposeResetToken,
		hashCost:         bcrypt.DefaultCost,
	}
}

// WithHashCost lowers the bcrypt cost, for tests.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.hashCost = cost
	return s
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = usernameFromEmail(email)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	fullName := strings.TrimSpace(in.FullName)
	if err := validation.MaxRunes("full_name", fullName, validation.MaxFullNameLength); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	profile := &models.Profile{
		Email:        email,
		PasswordHash: string(hash),
		Username:     username,
		FullName:     fullName,
		SkillTags:    []string{},
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.notifications.notifyQuietly(ctx, &models.Notification{
		UserID:  profile.ID,
		Type:    models.NotificationWelcome,
		Title:   welcomeTitle,
		Message: welcomeMessage,
	})

	return s.issue(profile)
}

// SignIn answers unknown emails and wrong passwords identically.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}
	profile, err := s.profiles.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.issue(profile)
}

func (s *AuthService) issue(profile *models.Profile) (*AuthResult, error) {
	token, claims, err := s.tokens.Issue(profile.ID, profile.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt, User: profile}, nil
}

// SignOut revokes the token's jti until the token would have expired anyway.
func (s *AuthService) SignOut(ctx context.Context, claims *middleware.AccessClaims) error {
	if s.rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, middleware.BlacklistKey(claims.JTI), "1", ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// IsRevoked reports whether jti was signed out.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, middleware.BlacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ForgotPassword stores a single use reset token. It returns the token only
// when exposeResetToken is set; unknown emails yield ("", nil).
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	if s.rdb == nil {
		return "", models.NewInternalError(errors.New("password reset requires redis"))
	}
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", nil
	}

	token := uuid.NewString()
	id := strconv.FormatUint(uint64(profile.ID), 10)
	if err := s.rdb.Set(ctx, cache.PasswordResetKey(token), id, cache.PasswordResetTTL).Err(); err != nil {
		return "", models.NewInternalError(err)
	}
	if !s.exposeResetToken {
		return "", nil
	}
	middleware.Logger.InfoContext(ctx, "password reset token issued",
		slog.Uint64("profile_id", uint64(profile.ID)), slog.String("token", token))
	return token, nil
}

// ResetPassword consumes the token and replaces the password hash.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if in.Password != in.Confirm {
		return models.NewValidationError("Passwords do not match")
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return models.NewValidationError(err.Error())
	}
	if strings.TrimSpace(in.Token) == "" {
		return models.NewValidationError("Reset token is required")
	}
	if s.rdb == nil {
		return models.NewInternalError(errors.New("password reset requires redis"))
	}

	raw, err := s.rdb.GetDel(ctx, cache.PasswordResetKey(in.Token)).Result()
	if errors.Is(err, redis.Nil) {
		return models.NewValidationError("Reset link is invalid or has expired")
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return models.NewInternalError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.profiles.UpdatePassword(ctx, uint(id), string(hash))
}

// IssueWSTicket stores a short lived single use ticket for a websocket upgrade.
func (s *AuthService) IssueWSTicket(ctx context.Context, userID uint) (string, time.Duration, error) {
	if s.rdb == nil {
		return "", 0, models.NewInternalError(errors.New("websocket tickets require redis"))
	}
	ticket := uuid.NewString()
	id := strconv.FormatUint(uint64(userID), 10)
	if err := s.rdb.Set(ctx, cache.WSTicketKey(ticket), id, cache.WSTicketTTL).Err(); err != nil {
		return "", 0, models.NewInternalError(err)
	}
	return ticket, cache.WSTicketTTL, nil
}

// RedeemWSTicket consumes ticket and returns its user id, or 0 when unknown.
func (s *AuthService) RedeemWSTicket(ctx context.Context, ticket string) (uint, error) {
	if s.rdb == nil || ticket == "" {
		return 0, nil
	}
	raw, err := s.rdb.GetDel(ctx, cache.WSTicketKey(ticket)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, nil
	}
	return uint(id), nil
}

// CurrentUser loads the caller's own profile with counters.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, userID, userID)
}

// usernameFromEmail builds a valid handle from the address' local part plus a
// short random suffix.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r == '.' || r == '+':
			b.WriteByte('_')
		}
	}
	base := strings.Trim(b.String(), "_-")
	if len(base) > 20 {
		base = strings.TrimRight(base[:20], "_-")
	}
	if base == "" {
		base = "creator"
	}
	return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
