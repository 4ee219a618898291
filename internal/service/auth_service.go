package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/design-system-studio/internal/config"
	"github.com/dom/design-system-studio/internal/domain"
	"github.com/dom/design-system-studio/internal/repository"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	profileRepo repository.ProfileRepository
	cfg         *config.Config
	logger      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, profileRepo repository.ProfileRepository, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		profileRepo: profileRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

type SignUpInput struct {
	Email     string
	Password  string
	Username  string
	FirstName string
}

// Validate enforces the credential rules the provider advertises: a real
// email, a password of at least 8 characters, and a short username.
func (in SignUpInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&in.Username, validation.Required, validation.Length(2, 40)),
		validation.Field(&in.FirstName, validation.Length(0, 100)),
	)
}

type SignInInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User         *domain.User
	Session      *domain.UserSession
	AccessToken  string
	RefreshToken string
}

// SignUp creates the user and, in the same step, the profile row derived
// from the signup metadata. Lazy client-side reconciliation remains the
// fallback for profiles created before this path existed.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}

	if taken, err := s.profileRepo.GetByUsername(ctx, input.Username); err == nil && taken != nil {
		return nil, domain.ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Username:     input.Username,
		FirstName:    input.FirstName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		ID:        user.ID,
		Username:  input.Username,
		FirstName: input.FirstName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.profileRepo.CreateIfAbsent(ctx, profile); err != nil {
		// Not fatal: the reconciler creates the row on first session
		// observation instead.
		s.logger.Warn("profile creation at signup failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	return s.generateTokens(ctx, user)
}

func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.generateTokens(ctx, user)
}

// SignOut invalidates every session held by the user.
func (s *AuthService) SignOut(ctx context.Context, userID uuid.UUID) error {
	return s.sessionRepo.DeleteByUserID(ctx, userID)
}

// Refresh rotates a refresh token: the presented session row is destroyed
// and a fresh session plus token pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	sessionID, secret, ok := splitRefreshToken(refreshToken)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if session.Expired(time.Now()) {
		_ = s.sessionRepo.Delete(ctx, session.ID)
		return nil, domain.ErrSessionExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(session.RefreshTokenHash), []byte(secret)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *AuthService) generateTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	secret := uuid.New().String()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	session := &domain.UserSession{
		ID:               uuid.New(),
		UserID:           user.ID,
		RefreshTokenHash: string(hashedSecret),
		ExpiresAt:        time.Now().Add(s.cfg.RefreshTokenTTL),
		CreatedAt:        time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		Session:      session,
		AccessToken:  accessToken,
		RefreshToken: fmt.Sprintf("%s.%s", session.ID, secret),
	}, nil
}

func (s *AuthService) generateAccessToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"exp":   time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return &claims, nil
	}

	return nil, errors.New("invalid token")
}

func splitRefreshToken(token string) (uuid.UUID, string, bool) {
	id, secret, found := strings.Cut(token, ".")
	if !found || secret == "" {
		return uuid.Nil, "", false
	}

	sessionID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, "", false
	}

	return sessionID, secret, true
}
