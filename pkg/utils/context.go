package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	VisitorIDKey contextKey = "visitor_id"
	RoleKey      contextKey = "role"
)

// VisitorCookie is the cookie that identifies one browser across requests.
const VisitorCookie = "visitor_id"

func GetVisitorIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	visitorIDVal := ctx.Value(VisitorIDKey)
	if visitorIDVal == nil {
		return uuid.Nil, false
	}

	visitorID, ok := visitorIDVal.(uuid.UUID)
	return visitorID, ok
}

func SetVisitorContext(ctx context.Context, visitorID uuid.UUID) context.Context {
	return context.WithValue(ctx, VisitorIDKey, visitorID)
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	roleVal := ctx.Value(RoleKey)
	if roleVal == nil {
		return "", false
	}

	role, ok := roleVal.(string)
	return role, ok
}

func SetRoleContext(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, RoleKey, role)
}
