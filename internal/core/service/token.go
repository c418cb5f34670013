package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adboard/ad-directory/internal/core/domain"
)

// Claims is the signed payload of an access token: the subject username plus
// the role it carried at issue time.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed, time-boxed access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for subject with the given role, expiring after the
// configured TTL.
func (s *TokenService) Issue(subject string, role domain.Role) (string, error) {
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature, algorithm, shape, and expiry, returning the encoded
// subject and role. It never checks whether the subject still exists; that is
// the caller's job. All failures collapse to domain.ErrInvalidCredential.
func (s *TokenService) Verify(token string) (string, domain.Role, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !t.Valid {
		return "", "", domain.ErrInvalidCredential
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return "", "", domain.ErrInvalidCredential
	}
	return claims.Subject, claims.Role, nil
}
