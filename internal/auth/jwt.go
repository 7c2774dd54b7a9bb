package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
	ErrWrongKind    = errors.New("wrong token kind")
	ErrInvalidName  = errors.New("display name must be 1-32 characters")
)

// Token kinds.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

const maxNameLen = 32

// Claims holds the JWT payload of a spectator token.
type Claims struct {
	SpectatorID string `json:"spectator_id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates spectator tokens.
type JWTManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewJWTManager creates a JWTManager with the given secret.
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		accessExpiry:  15 * time.Minute,
		refreshExpiry: 7 * 24 * time.Hour,
	}
}

func (m *JWTManager) sign(spectatorID, name, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		SpectatorID: spectatorID,
		Name:        name,
		Kind:        kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   spectatorID,
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// GenerateAccessToken creates a short-lived access token for a spectator.
func (m *JWTManager) GenerateAccessToken(spectatorID, name string) (string, error) {
	return m.sign(spectatorID, name, KindAccess, m.accessExpiry)
}

// GenerateRefreshToken creates a long-lived refresh token.
func (m *JWTManager) GenerateRefreshToken(spectatorID, name string) (string, error) {
	return m.sign(spectatorID, name, KindRefresh, m.refreshExpiry)
}

// ValidateToken parses and validates a JWT string of any kind.
func (m *JWTManager) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SpectatorID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateKind validates a token and checks that it is of the given kind.
func (m *JWTManager) ValidateKind(tokenStr, kind string) (*Claims, error) {
	claims, err := m.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrWrongKind
	}
	return claims, nil
}

// TokenPair holds an access and refresh token.
type TokenPair struct {
	SpectatorID  string `json:"spectator_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// GenerateTokenPair creates both tokens for a spectator.
func (m *JWTManager) GenerateTokenPair(spectatorID, name string) (*TokenPair, error) {
	access, err := m.GenerateAccessToken(spectatorID, name)
	if err != nil {
		return nil, err
	}
	refresh, err := m.GenerateRefreshToken(spectatorID, name)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		SpectatorID:  spectatorID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(m.accessExpiry.Seconds()),
	}, nil
}

// IssueSpectator registers a new anonymous spectator under a display name.
func (m *JWTManager) IssueSpectator(displayName string) (*TokenPair, error) {
	name := strings.TrimSpace(displayName)
	if name == "" || len([]rune(name)) > maxNameLen {
		return nil, ErrInvalidName
	}
	return m.GenerateTokenPair(uuid.NewString(), name)
}

// Refresh exchanges a refresh token for a new pair.
func (m *JWTManager) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := m.ValidateKind(refreshToken, KindRefresh)
	if err != nil {
		return nil, err
	}
	return m.GenerateTokenPair(claims.SpectatorID, claims.Name)
}
