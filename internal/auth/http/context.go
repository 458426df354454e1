// Package http provides the control plane authentication middleware.
package http

import (
	"context"
)

// AdminSubject is the subject recorded for requests carrying the admin token.
const AdminSubject = "admin"

type subjectKey struct{}

// WithSubject stores the authenticated subject in the context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// GetSubject retrieves the authenticated subject from the context.
func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey{}).(string)
	return subject, ok && subject != ""
}
