package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/recetario/backend/internal/middleware"
	"github.com/recetario/backend/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const (
	tokenLifetime      = 24 * time.Hour
	resetTokenLifetime = time.Hour
)

// AuthService owns accounts and session tokens.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	denylist  Denylist
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(db *gorm.DB, jwtSecret string, denylist Denylist, logger *zap.Logger) *AuthService {
	if denylist == nil {
		denylist = NewMemoryDenylist()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		denylist:  denylist,
		logger:    logger,
	}
}

// Register creates an account and returns a session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	var existing model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return "", ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user := model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return "", err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.generateToken(user.ID)
}

// Login verifies credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(user.ID)
}

// Logout revokes the token so it no longer validates, until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return errors.New("token has no expiry")
	}
	ttl := time.Until(exp.Time)
	if ttl <= 0 {
		return nil
	}

	tokenID, _ := claims["jti"].(string)
	if tokenID == "" {
		return errors.New("token has no id")
	}
	return s.denylist.Revoke(ctx, tokenID, ttl)
}

// ValidateToken checks the signature, expiry and revocation state of a token.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*middleware.TokenClaims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}

	tokenID, _ := claims["jti"].(string)
	if tokenID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, tokenID)
		if err != nil {
			s.logger.Warn("denylist check failed", zap.Error(err))
		} else if revoked {
			return nil, errors.New("token revoked")
		}
	}

	return &middleware.TokenClaims{
		UserID:  userID,
		TokenID: tokenID,
	}, nil
}

// CreatePasswordReset issues a reset token for the account with the given
// email. The token is returned for delivery; it expires after an hour.
func (s *AuthService) CreatePasswordReset(ctx context.Context, email string) (string, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	reset := model.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(resetTokenLifetime),
	}
	if err := s.db.WithContext(ctx).Create(&reset).Error; err != nil {
		return "", err
	}

	s.logger.Info("password reset requested", zap.String("user_id", user.ID.String()))
	return reset.Token, nil
}

// ResetPassword sets a new password for the account the token belongs to.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	var reset model.PasswordReset
	err := s.db.WithContext(ctx).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, time.Now()).
		First(&reset).Error
	if err != nil {
		return ErrInvalidResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", reset.UserID).
			Update("password_hash", string(hashed)).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("used_at", &now).Error
	})
}

func (s *AuthService) generateToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
