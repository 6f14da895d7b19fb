package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

type ExtraClaims struct {
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// AuthUser is the authenticated caller of the token API
type AuthUser struct {
	UserId      string      `json:"user_id,omitempty"`
	DisplayName string      `json:"display_name,omitempty"`
	ExtraClaims ExtraClaims `json:"extra_claims,omitempty"`
}

func (i AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", i.UserId),
		slog.Any("roles", i.ExtraClaims.Roles),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "token context value " + k.name
}

const ACCESS_TOKEN_NAME = "access_token"

var (
	AuthUserKey = &contextKey{"AuthUser"}
)

// WithAuthUser returns a copy of ctx carrying the caller
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, AuthUserKey, user)
}

// GetAuthUser returns the caller stored by AuthUserMiddleware
func GetAuthUser(ctx context.Context) (*AuthUser, bool) {
	user, ok := ctx.Value(AuthUserKey).(*AuthUser)
	return user, ok && user != nil
}

func LoadFromMap[T any](m map[string]interface{}, c *T) error {
	data, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(data, c)
	}
	return err
}

// AuthUserMiddleware loads the caller from verified JWT claims without checking iss or aud
func AuthUserMiddleware(next http.Handler) http.Handler {
	return NewAuthUserMiddleware("", "")(next)
}

// NewAuthUserMiddleware loads the caller from verified JWT claims. A non-empty
// issuer or audience must match the token.
func NewAuthUserMiddleware(issuer, audience string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				http.Error(w, fmt.Sprintf("missing or invalid JWT: %v", err), http.StatusUnauthorized)
				return
			}
			if claims == nil {
				http.Error(w, "missing JWT claims", http.StatusUnauthorized)
				return
			}

			if issuer != "" && claims["iss"] != issuer {
				slog.Warn("rejected token from unexpected issuer", "iss", claims["iss"])
				http.Error(w, "invalid token issuer", http.StatusUnauthorized)
				return
			}
			if audience != "" && !hasAudience(claims["aud"], audience) {
				slog.Warn("rejected token for unexpected audience", "aud", claims["aud"])
				http.Error(w, "invalid token audience", http.StatusUnauthorized)
				return
			}

			authUser := new(AuthUser)
			if err := LoadFromMap(claims, authUser); err != nil {
				slog.Error("failed to parse token claims", "error", err)
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			if authUser.UserId == "" {
				if sub, ok := claims["sub"].(string); ok {
					authUser.UserId = sub
				}
			}
			if authUser.UserId == "" {
				http.Error(w, "missing user ID in token", http.StatusUnauthorized)
				return
			}

			slog.Debug("authenticated caller", "userId", authUser.UserId, "roles", authUser.ExtraClaims.Roles)

			next.ServeHTTP(w, r.WithContext(WithAuthUser(r.Context(), authUser)))
		})
	}
}

func hasAudience(raw interface{}, audience string) bool {
	switch aud := raw.(type) {
	case string:
		return aud == audience
	case []string:
		return slices.Contains(aud, audience)
	case []interface{}:
		for _, a := range aud {
			if s, ok := a.(string); ok && s == audience {
				return true
			}
		}
	}
	return false
}

func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verify(ja, jwtauth.TokenFromHeader, TokenFromCookie)(next)
	}
}

func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(ACCESS_TOKEN_NAME)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// CallerToken describes an HS256 caller JWT
type CallerToken struct {
	UserID   string
	Extra    ExtraClaims
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Sign encodes the caller token with secret
func (c CallerToken) Sign(secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":          c.UserID,
		"user_id":      c.UserID,
		"iat":          now.Unix(),
		"exp":          now.Add(c.TTL).Unix(),
		"extra_claims": c.Extra,
	}
	if c.Issuer != "" {
		claims["iss"] = c.Issuer
	}
	if c.Audience != "" {
		claims["aud"] = c.Audience
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign caller token: %w", err)
	}
	return signed, nil
}
