// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"salesledger/internal/core/id"
)

// Caller is the authenticated identity a document operation runs as.
// Every read and write is scoped to OrganizationID.
type Caller struct {
	OrganizationID id.ID
	UserID         string
	UserName       string
	Roles          []string
}

type callerKey struct{}

// WithCaller adds Caller to context.
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// GetCaller returns Caller from context.
func GetCaller(ctx context.Context) *Caller {
	if v, ok := ctx.Value(callerKey{}).(*Caller); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if c := GetCaller(ctx); c != nil {
		return c.UserID
	}
	return ""
}

// GetOrganizationID returns the caller's organization or the nil ID.
func GetOrganizationID(ctx context.Context) id.ID {
	if c := GetCaller(ctx); c != nil {
		return c.OrganizationID
	}
	return id.Nil()
}
