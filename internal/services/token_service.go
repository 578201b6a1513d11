package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
)

const revokedKeyPrefix = "revoked_refresh:"

// Claims are the JWT claims carried by both token kinds. SessionID ties a
// refresh token to its TokenSession row; access tokens reuse it so logout can
// fan out.
type Claims struct {
	UserID    uuid.UUID       `json:"user_id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	SessionID uuid.UUID       `json:"session_id"`
	TokenType string          `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies access/refresh token pairs. Refresh
// revocation is written to redis when available; the TokenSession row is the
// durable fallback either way.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	redis         *redis.Client
	logger        *logrus.Logger
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, redisClient *redis.Client, logger *logrus.Logger) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		redis:         redisClient,
		logger:        logger,
	}
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// GeneratePair issues an access and a refresh token sharing one session id.
func (s *TokenService) GeneratePair(user *models.User, sessionID uuid.UUID) (string, string, error) {
	now := time.Now()

	access, err := s.sign(user, sessionID, "access", now.Add(s.accessTTL), s.accessSecret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.sign(user, sessionID, "refresh", now.Add(s.refreshTTL), s.refreshSecret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return access, refresh, nil
}

func (s *TokenService) sign(user *models.User, sessionID uuid.UUID, tokenType string, expiresAt time.Time, secret []byte) (string, error) {
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: sessionID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *TokenService) ValidateAccess(tokenString string) (*Claims, error) {
	return s.validate(tokenString, "access", s.accessSecret)
}

func (s *TokenService) ValidateRefresh(tokenString string) (*Claims, error) {
	return s.validate(tokenString, "refresh", s.refreshSecret)
}

func (s *TokenService) validate(tokenString, expectedType string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("invalid token type: expected %s", expectedType)
	}
	return claims, nil
}

// RevokeSession denylists a refresh session in redis until the token would
// have expired anyway. Best effort: redis being down only loses the fast
// path, the TokenSession row still blocks reuse.
func (s *TokenService) RevokeSession(ctx context.Context, sessionID uuid.UUID, until time.Time) {
	if s.redis == nil {
		return
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return
	}
	if err := s.redis.Set(ctx, revokedKeyPrefix+sessionID.String(), "1", ttl).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to denylist refresh session in redis")
	}
}

func (s *TokenService) IsSessionRevoked(ctx context.Context, sessionID uuid.UUID) bool {
	if s.redis == nil {
		return false
	}
	exists, err := s.redis.Exists(ctx, revokedKeyPrefix+sessionID.String()).Result()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to check refresh denylist in redis")
		return false
	}
	return exists > 0
}
