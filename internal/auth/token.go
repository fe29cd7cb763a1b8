package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails signature, claim or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// TokenService signs and verifies HS256 identity tokens.
type TokenService struct {
	Secret   []byte
	Issuer   string
	Duration time.Duration
	Now      func() time.Time
}

// Claims carried by an identity token. The subject is the user id and the token id is
// the session id.
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

func (ts TokenService) now() time.Time {
	if ts.Now != nil {
		return ts.Now()
	}
	return time.Now()
}

// Sign issues a token for id. A session id is generated when id has none.
func (ts TokenService) Sign(id Identity) (string, time.Time, error) {
	if id.UserID == "" {
		return "", time.Time{}, fmt.Errorf("sign token: %w", ErrInvalidToken)
	}
	if id.SessionID == "" {
		id.SessionID = uuid.NewString()
	}

	now := ts.now()
	exp := now.Add(ts.Duration)
	claims := Claims{
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.SessionID,
			Issuer:    ts.Issuer,
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(ts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

// Parse verifies the token and returns the identity it carries.
func (ts TokenService) Parse(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
	}
	if ts.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(ts.Issuer))
	}

	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		// enforce HS256
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.Secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Identity{
		UserID:    claims.Subject,
		SessionID: claims.ID,
		Username:  claims.Username,
		Token:     tokenString,
	}, nil
}
