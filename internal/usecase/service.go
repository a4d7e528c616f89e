package usecase

import (
	"context"

	"siddhaka-portal/internal/backend"
	"siddhaka-portal/internal/data/repository"
	"siddhaka-portal/internal/metrics"
	"siddhaka-portal/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	Sessions SessionRegistry
	log      *zap.Logger
}

func NewService(api backend.API, repo *repository.Repository, config *utils.Config, m *metrics.BackendMetrics, log *zap.Logger) *Service {
	newStore := func(visitorID uuid.UUID) SessionStore {
		return NewSessionStore(visitorID, api, repo.Credential, log)
	}

	return &Service{
		Sessions: NewSessionRegistry(newStore, repo.Credential, m, config.Session.IdleTimeout, config.Session.CredentialTTL, log),
		log:      log,
	}
}

func (s *Service) Catalog(v *Visitor) *Catalog {
	return NewCatalog(v.Store, s.log)
}

func (s *Service) Admin(v *Visitor) *AdminConsole {
	return NewAdminConsole(v.Store, s.log)
}

func (s *Service) Dashboard(v *Visitor) *PatientDashboard {
	return NewPatientDashboard(v.Store, s.log)
}

type visitorKey struct{}

func WithVisitor(ctx context.Context, v *Visitor) context.Context {
	return context.WithValue(ctx, visitorKey{}, v)
}

func VisitorFromContext(ctx context.Context) (*Visitor, bool) {
	v, ok := ctx.Value(visitorKey{}).(*Visitor)
	return v, ok && v != nil
}
