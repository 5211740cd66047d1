package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/casetrack-api/config"
	"github.com/linesmerrill/casetrack-api/databases"
	"github.com/linesmerrill/casetrack-api/models"
)

// TokenResponse is returned by CreateToken
type TokenResponse struct {
	Token     string      `json:"token"`
	ID        string      `json:"id"`
	Role      models.Role `json:"role"`
	Name      string      `json:"name"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Authenticator guards routes with basic credentials or issued bearer tokens
type Authenticator struct {
	Users databases.UserDatabase

	secret        []byte
	ttl           time.Duration
	authenticator auth.Authenticator
	cache         store.Cache
}

// NewAuthenticator sets up go-guardian with a basic strategy backed by users
// and a cached bearer strategy holding the tokens issued by CreateToken.
func NewAuthenticator(users databases.UserDatabase, secret string, ttl time.Duration) *Authenticator {
	a := &Authenticator{
		Users:         users,
		secret:        []byte(secret),
		ttl:           ttl,
		authenticator: auth.New(),
		cache:         store.NewFIFO(context.Background(), ttl),
	}
	basicStrategy := basic.New(a.ValidateUser, a.cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, a.cache)

	a.authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	a.authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
	return a
}

// Middleware rejects unauthenticated requests and stores the caller on the request context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if token, ok := bearerToken(r); ok {
			if err := a.VerifyToken(token); err != nil {
				zap.S().Debugw("invalid bearer token", "url", r.URL.Path, "error", err)
				config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, models.ErrUnauthorized)
				return
			}
		}
		info, err := a.authenticator.Authenticate(r)
		if err != nil {
			zap.S().Debugw("unauthorized", "url", r.URL.Path, "error", err)
			config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, models.ErrUnauthorized)
			return
		}

		principal := models.Principal{ID: info.ID(), DisplayName: info.UserName()}
		if groups := info.Groups(); len(groups) > 0 {
			principal.Role = models.Role(groups[0])
		}
		zap.S().Debugf("user %s authenticated as %s", principal.ID, principal.Role)
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// TokenFromQuery copies a token query parameter into the Authorization header.
// Browsers cannot set headers on WebSocket handshakes.
func TokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := r.URL.Query().Get("token"); token != "" && r.Header.Get("Authorization") == "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects callers whose role is not one of roles
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, models.ErrUnauthorized)
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			config.ErrorStatus("forbidden", http.StatusForbidden, w, fmt.Errorf("role %q may not access %s", p.Role, r.URL.Path))
		})
	}
}

// CreateToken issues a bearer token for the basic-authenticated caller.
// The optional role query parameter must match the registered role.
func (a *Authenticator) CreateToken(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		config.ErrorStatus("basic auth failed", http.StatusUnauthorized, w, models.ErrUnauthorized)
		return
	}

	if role := models.Role(r.URL.Query().Get("role")); role != "" && role != p.Role {
		config.ErrorStatus("role does not match the registered role", http.StatusUnauthorized, w, models.ErrUnauthorized)
		return
	}

	expiresAt := time.Now().Add(a.ttl)
	token, err := a.SignToken(p, expiresAt)
	if err != nil {
		config.ErrorStatus("failed to sign token", http.StatusInternalServerError, w, err)
		return
	}

	info := auth.NewDefaultUser(p.DisplayName, p.ID, []string{string(p.Role)}, nil)
	tokenStrategy := a.authenticator.Strategy(bearer.CachedStrategyKey)
	if err := auth.Append(tokenStrategy, token, info, r); err != nil {
		config.ErrorStatus("failed to store token", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(TokenResponse{
		Token:     token,
		ID:        p.ID,
		Role:      p.Role,
		Name:      p.DisplayName,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SignToken returns a signed JWT describing p. Every token carries a fresh
// jti so two logins never share a token.
func (a *Authenticator) SignToken(p models.Principal, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"jti":  uuid.NewString(),
		"sub":  p.ID,
		"role": string(p.Role),
		"name": p.DisplayName,
		"iat":  time.Now().Unix(),
		"exp":  expiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// VerifyToken checks the signature, expiry and jti of a bearer token.
// Revocation is decided by the token cache, not here.
func (a *Authenticator) VerifyToken(token string) error {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	if jti, _ := claims["jti"].(string); jti == "" {
		return errors.New("token has no jti")
	}
	return nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}

// RevokeToken revokes the bearer token of the request
func (a *Authenticator) RevokeToken(w http.ResponseWriter, r *http.Request) {
	reqToken, ok := bearerToken(r)
	if !ok {
		config.ErrorStatus("missing bearer token", http.StatusBadRequest, w, models.ErrUnauthorized)
		return
	}

	tokenStrategy := a.authenticator.Strategy(bearer.CachedStrategyKey)
	if err := auth.Revoke(tokenStrategy, reqToken, r); err != nil {
		config.ErrorStatus("failed to revoke token", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"revoked": true}`))
}

// ValidateUser checks basic credentials against the user store
func (a *Authenticator) ValidateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	ctx, cancel := WithQueryTimeout(ctx)
	defer cancel()

	user, err := a.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrUnauthorized
	}
	return auth.NewDefaultUser(user.DisplayName(), user.ID, []string{string(user.Role)}, nil), nil
}
