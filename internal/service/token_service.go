package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Propósitos de token. Cada decode exige el propósito esperado: un token de
// verificación nunca pasa por el camino de access ni viceversa.
const (
	PurposeAccess            = "access"
	PurposeRefresh           = "refresh"
	PurposeEmailVerification = "email_verification"
)

const verificationTokenTTL = 24 * time.Hour

// TokenService emite y valida tokens JWT firmados con HS256.
// El subject de todos los tokens es el email del usuario.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	store      RefreshTokenStore
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type Claims struct {
	Purpose string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     "contacts-api",
		store:      NewMemoryRefreshTokenStore(),
	}
}

func NewTokenServiceWithStore(secret string, accessTTL, refreshTTL time.Duration, store RefreshTokenStore) *TokenService {
	svc := NewTokenService(secret, accessTTL, refreshTTL)
	if store != nil {
		svc.store = store
	}
	return svc
}

// GeneratePair emite un access token y un refresh token para el email dado.
func (s *TokenService) GeneratePair(email string) (TokenPair, error) {
	if len(s.secret) == 0 {
		return TokenPair{}, ErrTokenInvalid
	}
	now := time.Now().UTC()
	access, err := s.signToken(email, "", now, s.accessTTL, PurposeAccess)
	if err != nil {
		return TokenPair{}, err
	}
	jti := uuid.NewString()
	refresh, err := s.signToken(email, jti, now, s.refreshTTL, PurposeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	if s.store != nil {
		if err := s.store.Store(jti, email, s.refreshTTL); err != nil {
			return TokenPair{}, err
		}
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// RefreshPair rota un refresh token válido: revoca su jti y emite un par nuevo.
func (s *TokenService) RefreshPair(refreshToken string) (TokenPair, error) {
	claims, err := s.Decode(refreshToken, PurposeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	if claims.ID == "" || s.store == nil {
		return TokenPair{}, ErrTokenInvalid
	}
	ok, err := s.store.Exists(claims.ID)
	if err != nil || !ok {
		return TokenPair{}, ErrTokenInvalid
	}
	if err := s.store.Revoke(claims.ID); err != nil {
		return TokenPair{}, ErrTokenInvalid
	}
	return s.GeneratePair(claims.Subject)
}

// RevokeRefresh invalida el jti de un refresh token (logout).
func (s *TokenService) RevokeRefresh(refreshToken string) error {
	claims, err := s.Decode(refreshToken, PurposeRefresh)
	if err != nil {
		return err
	}
	if claims.ID == "" || s.store == nil {
		return ErrTokenInvalid
	}
	return s.store.Revoke(claims.ID)
}

// IssueVerificationToken emite un token de verificación de email con TTL fijo.
func (s *TokenService) IssueVerificationToken(email string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}
	return s.signToken(email, "", time.Now().UTC(), verificationTokenTTL, PurposeEmailVerification)
}

// Decode valida firma, expiración, issuer y propósito, y devuelve los claims.
func (s *TokenService) Decode(tokenString, expectedPurpose string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenInvalid
	}

	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if claims.Purpose != expectedPurpose {
		return Claims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.Issuer != s.issuer {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) signToken(email, jti string, now time.Time, ttl time.Duration, purpose string) (string, error) {
	claims := Claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
