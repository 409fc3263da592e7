package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is the subset of provider token claims the backend relies
// on.
type IdentityClaims struct {
	Subject string
	Email   string
	Name    string
}

var ErrInvalidToken = errors.New("invalid identity token")

// VerifyProviderToken validates an externally-issued identity token and
// extracts the stable subject id and email. All failure modes collapse into
// ErrInvalidToken; callers must not distinguish expired from malformed.
func VerifyProviderToken(tokenString, secret, issuer string) (*IdentityClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if issuer != "" {
		iss, _ := claims.GetIssuer()
		if iss != issuer {
			return nil, ErrInvalidToken
		}
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, ErrInvalidToken
	}
	name, _ := claims["name"].(string)

	return &IdentityClaims{Subject: sub, Email: email, Name: name}, nil
}

// NameFromEmail derives a default display name from the email's local part.
func NameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
