package session

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cast"

	"github.com/Veraticus/toolshed/internal/model"
)

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// ParseIdentity decodes the payload segment of a bearer token.
// The signature is never checked; the server is the authority on authenticity.
// Any malformed token (segment count, base64, JSON, missing username) yields ok=false.
func ParseIdentity(token string) (model.Identity, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Identity{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return model.Identity{}, false
	}

	username, ok := claims["username"].(string)
	if !ok || strings.TrimSpace(username) == "" {
		return model.Identity{}, false
	}

	role := model.RoleUser
	if r := strings.TrimSpace(cast.ToString(claims["role"])); r != "" {
		role = model.Role(strings.ToLower(r))
	}

	return model.Identity{
		Username: username,
		Role:     role,
		Email:    cast.ToString(claims["email"]),
	}, true
}
