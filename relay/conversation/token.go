package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var ErrBadToken = errors.New("conversation token is invalid or expired")
var ErrTokenVersion = errors.New("conversation token has an unsupported schema version")

// EncodeToken serializes the context into a signed, URL-safe token. The token
// is the only state carrier between stage calls.
func EncodeToken(c *Context, secret string, ttl time.Duration) (string, error) {
	c.Version = ContextVersion
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"v":   ContextVersion,
		"ctx": string(raw),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// DecodeToken verifies the signature, the expiry, and the schema version
// before handing the context back.
func DecodeToken(tokenString string, secret string) (*Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrBadToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrBadToken
	}
	version, ok := claims["v"].(float64)
	if !ok || int(version) != ContextVersion {
		return nil, ErrTokenVersion
	}
	raw, ok := claims["ctx"].(string)
	if !ok {
		return nil, ErrBadToken
	}
	var c Context
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, ErrBadToken
	}
	if c.Version != ContextVersion {
		return nil, ErrTokenVersion
	}
	return &c, nil
}
