package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = time.Hour

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
}

// AuthService handles credentials, JWTs, email verification and password resets.
type AuthService struct {
	cfg      *config.Config
	rdb      *redis.Client
	users    repository.UserRepository
	profiles repository.ProfileRepository
	notifier Notifier
	google   GoogleVerifier
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	cfg *config.Config,
	rdb *redis.Client,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	notifier Notifier,
	google GoogleVerifier,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		rdb:      rdb,
		users:    users,
		profiles: profiles,
		notifier: notifier,
		google:   google,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken signs a JWT for the user.
func (s *AuthService) GenerateToken(user *model.User) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// RevokeToken denylists the token's JTI until it would have expired anyway.
func (s *AuthService) RevokeToken(ctx context.Context, claims *Claims) error {
	ttl := s.cfg.JWTExpiry
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(claims.ID), "1", ttl).Err()
}

// IsRevoked reports whether the JTI belongs to a logged-out token.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// ValidateSession parses the token and rejects it once logged out. Like the
// route middleware, a Redis failure does not reject the token.
func (s *AuthService) ValidateSession(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return claims, nil
	}
	revoked, err := s.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.log.Warn().Err(err).Msg("Revocation check failed")
		return claims, nil
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Register creates an unverified account and queues the verification mail.
// A previous unverified account with the same email is replaced.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) error {
	email := normalizeEmail(req.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsEmailVerified {
			return ErrEmailTaken
		}
		if err := s.profiles.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("delete stale profile: %w", err)
		}
		if err := s.users.Delete(ctx, existing.ID); err != nil {
			return fmt.Errorf("delete stale user: %w", err)
		}
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	user := &model.User{
		Name:         strings.TrimSpace(firstName + " " + lastName),
		Email:        email,
		PasswordHash: &hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	profile := model.NewProfile(user.ID, email)
	profile.PersonalInfo["firstName"] = firstName
	profile.PersonalInfo["lastName"] = lastName
	profile.PersonalInfo["email"] = email
	if err := s.profiles.Create(ctx, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	return s.issueVerification(ctx, user)
}

// Login checks email and password and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.HasPassword() {
		return nil, ErrPasswordNotSet
	}
	if err := s.CheckPassword(*user.PasswordHash, password); err != nil {
		return nil, err
	}

	return s.loginResult(user)
}

// GoogleLogin verifies a Google ID token and signs in the account of its
// email, creating the account and profile on first use. Only the verified
// token payload is trusted.
func (s *AuthService) GoogleLogin(ctx context.Context, req *model.GoogleLoginRequest) (*model.LoginResult, error) {
	if s.google == nil {
		return nil, fmt.Errorf("%w: google sign-in is not configured", ErrInvalidGoogleToken)
	}
	identity, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	if identity.Email == "" || !identity.EmailVerified {
		return nil, fmt.Errorf("%w: google email is not verified", ErrInvalidGoogleToken)
	}
	email := normalizeEmail(identity.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if !user.IsEmailVerified {
			if err := s.users.MarkVerified(ctx, user.ID); err != nil {
				return nil, fmt.Errorf("mark verified: %w", err)
			}
			user.IsEmailVerified = true
		}
		return s.loginResult(user)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = strings.TrimSpace(identity.GivenName + " " + identity.FamilyName)
	}
	user = &model.User{Name: name, Email: email, IsEmailVerified: true}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	profile := model.NewProfile(user.ID, email)
	profile.PersonalInfo["firstName"] = strings.TrimSpace(identity.GivenName)
	profile.PersonalInfo["lastName"] = strings.TrimSpace(identity.FamilyName)
	profile.PersonalInfo["email"] = email
	if err := s.profiles.Create(ctx, profile); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("Google account created")
	return s.loginResult(user)
}

// RequestVerification issues a fresh verification token and mails it.
func (s *AuthService) RequestVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	return s.issueVerification(ctx, user)
}

// ConfirmEmail marks the owner of token as verified.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("lookup token: %w", err)
	}
	return s.users.MarkVerified(ctx, user.ID)
}

// ForgotPassword stores a one-hour reset token and mails the reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := randomHex(32)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	return s.notifier.SendPasswordReset(ctx, user.Email, token)
}

// ResetPassword replaces the password of the reset token's owner.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("lookup token: %w", err)
	}
	if user.ResetPasswordExpires == nil || time.Now().After(*user.ResetPasswordExpires) {
		return ErrInvalidToken
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

func (s *AuthService) issueVerification(ctx context.Context, user *model.User) error {
	token, err := randomHex(32)
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}
	return s.notifier.SendVerification(ctx, user.Email, token)
}

func (s *AuthService) loginResult(user *model.User) (*model.LoginResult, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &model.LoginResult{User: user.Summary(), Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
