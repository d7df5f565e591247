package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, wrong signing method, structural garbage, or past expiry.
// Callers never see the underlying parse detail.
var ErrInvalidToken = errors.New("invalid or expired token")

// JWTSigner issues and verifies HS256 bearer tokens. The signing secret is
// injected at construction and must be identical across all instances that
// serve the same token population. No clock-skew leeway is applied.
type JWTSigner struct {
	secret []byte
	iss    string
	ttl    time.Duration
}

func NewJWTSigner(secret []byte, iss string, ttl time.Duration) (*JWTSigner, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret is empty")
	}
	return &JWTSigner{secret: secret, iss: iss, ttl: ttl}, nil
}

// IssueToken mints a signed token carrying the account's identity and role.
func (s *JWTSigner) IssueToken(userID, email string, role Role) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.ttl)

	claims := jwt.MapClaims{
		"iss":   s.iss,
		"sub":   userID,
		"email": email,
		"role":  string(role),
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
		"jti":   uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(s.secret)
	return ss, exp, err
}

// ParseAndValidate checks signature, issuer and expiry and returns the
// embedded claims. Any failure collapses to ErrInvalidToken.
func (s *JWTSigner) ParseAndValidate(tokenStr string) (*Claims, error) {
	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}

	tok, err := jwt.ParseWithClaims(
		tokenStr,
		jwt.MapClaims{},
		keyFunc,
		jwt.WithIssuer(s.iss),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	std := tok.Claims.(jwt.MapClaims)

	getString := func(k string) string {
		if v, ok := std[k].(string); ok {
			return v
		}
		return ""
	}
	getInt64 := func(k string) int64 {
		switch v := std[k].(type) {
		case float64:
			return int64(v)
		case int64:
			return v
		default:
			return 0
		}
	}

	c := &Claims{
		UserID:    getString("sub"),
		Email:     getString("email"),
		Role:      Role(getString("role")),
		TokenID:   getString("jti"),
		IssuedAt:  getInt64("iat"),
		ExpiresAt: getInt64("exp"),
	}
	if c.UserID == "" || !ValidRole(c.Role) {
		return nil, ErrInvalidToken
	}
	return c, nil
}
