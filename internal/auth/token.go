package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type sessionClaims struct {
	SessionID string `json:"sid"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// tokenSigner wraps a session id in an HS256 JWT so cookies cannot be forged
// or altered client-side. The session store stays the source of truth.
type tokenSigner struct {
	secret []byte
	now    func() time.Time
}

func (s tokenSigner) sign(sess Session, issuedAt time.Time) (string, error) {
	claims := sessionClaims{
		SessionID: sess.ID,
		Username:  sess.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(sess.UserID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// parse verifies signature and expiry. With skipExpiry the signature is
// still checked but an expired token is accepted.
func (s tokenSigner) parse(tokenStr string, skipExpiry bool) (*sessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if skipExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("token has no session id")
	}
	return claims, nil
}
