package middleware

import (
	"net/http"

	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/internal/usecase"
	"siddhaka-portal/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const visitorCookieMaxAge = 365 * 24 * 60 * 60

// Visitor resolves the visitor_id cookie to its session, issuing a new id to
// browsers without a valid one.
func Visitor(registry usecase.SessionRegistry, cookieSecure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visitorID, ok := visitorIDFromCookie(r)
			if !ok {
				visitorID = uuid.New()
				http.SetCookie(w, &http.Cookie{
					Name:     utils.VisitorCookie,
					Value:    visitorID.String(),
					Path:     "/",
					MaxAge:   visitorCookieMaxAge,
					HttpOnly: true,
					Secure:   cookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug("Issued visitor cookie", zap.String("visitor_id", visitorID.String()))
			}

			visitor := registry.Get(r.Context(), visitorID)

			ctx := utils.SetVisitorContext(r.Context(), visitorID)
			if identity := visitor.Store.Identity(); identity != nil {
				ctx = utils.SetRoleContext(ctx, string(identity.Role))
			}
			ctx = usecase.WithVisitor(ctx, visitor)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func visitorIDFromCookie(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(utils.VisitorCookie)
	if err != nil {
		return uuid.Nil, false
	}

	visitorID, err := uuid.Parse(cookie.Value)
	if err != nil {
		return uuid.Nil, false
	}
	return visitorID, true
}

// RequireRole - middleware cek role visitor (dari Visitor middleware)
func RequireRole(role entity.UserRole, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visitorID, _ := utils.GetVisitorIDFromContext(r.Context())

			current, ok := utils.GetRoleFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if current != string(role) {
				logger.Warn("Role check: access denied",
					zap.String("visitor_id", visitorID.String()),
					zap.String("role", current),
					zap.String("required", string(role)),
					zap.String("path", r.URL.Path))
				if role == entity.RoleAdmin {
					utils.ResponseForbidden(w, "Admin access required")
					return
				}
				utils.ResponseForbidden(w, "Access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Admin - shorthand untuk RequireRole(admin)
func Admin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin, logger)
}
