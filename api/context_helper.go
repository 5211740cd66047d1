package api

import (
	"context"
	"time"

	"github.com/linesmerrill/casetrack-api/models"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

type contextKey string

const (
	principalKey contextKey = "principal"
	requestIDKey contextKey = "requestId"
)

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

// WithPrincipal stores the authenticated caller on ctx
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the authenticated caller stored on ctx
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

// RequestIDFrom returns the id the logging middleware assigned to the request
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
