package usecase

import (
	"context"
	"sync"
	"time"

	"siddhaka-portal/internal/backend"
	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/internal/data/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CollectionState string

const (
	CollectionIdle    CollectionState = "idle"
	CollectionLoading CollectionState = "loading"
	CollectionLoaded  CollectionState = "loaded"
	CollectionFailed  CollectionState = "failed"
)

// Collection is a cached backend list. A failed refetch keeps the previous
// Items and records Err.
type Collection[T any] struct {
	State CollectionState
	Items []T
	Err   error
}

func (c Collection[T]) clone() Collection[T] {
	out := Collection[T]{State: c.State, Err: c.Err}
	if c.Items != nil {
		out.Items = append(make([]T, 0, len(c.Items)), c.Items...)
	}
	return out
}

func (c Collection[T]) needsLoad() bool {
	return c.State == CollectionIdle || c.State == CollectionFailed
}

// SessionSnapshot is a consistent copy of one visitor's session state.
type SessionSnapshot struct {
	VisitorID uuid.UUID
	Identity  *entity.Identity
	Patient   *entity.Patient
	Bookings  Collection[entity.Booking]
	Products  Collection[entity.Product]
	Packages  Collection[entity.ServicePackage]
}

func (s SessionSnapshot) IsAuthenticated() bool {
	return s.Identity != nil
}

// SessionStore is the single source of truth for one visitor: identity, auth
// token and the cached products, packages and bookings.
type SessionStore interface {
	VisitorID() uuid.UUID
	Restore(ctx context.Context) error

	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, input backend.RegisterInput) error
	Logout(ctx context.Context) error

	FetchProducts(ctx context.Context) error
	FetchPackages(ctx context.Context) error
	FetchBookings(ctx context.Context) error
	FetchMyBookings(ctx context.Context) error
	RefreshBookings(ctx context.Context) error
	EnsureCatalog(ctx context.Context)

	AddBooking(ctx context.Context, draft entity.BookingDraft) error
	UpdateBooking(ctx context.Context, id string, patch entity.BookingPatch) error
	CancelBooking(ctx context.Context, id string) error

	AddProduct(ctx context.Context, input entity.ProductInput) error
	UpdateProduct(ctx context.Context, id string, input entity.ProductInput) error
	DeleteProduct(ctx context.Context, id string) error
	AddPackage(ctx context.Context, input entity.PackageInput) error
	UpdatePackage(ctx context.Context, id string, input entity.PackageInput) error
	DeletePackage(ctx context.Context, id string) error

	AvailableTimeSlots(ctx context.Context, packageID, date string) []string
	EnsureProfile(ctx context.Context) *entity.Patient

	Snapshot() SessionSnapshot
	Identity() *entity.Identity
	Patient() *entity.Patient
	IsAuthenticated() bool
	IsAdmin() bool
	Bookings() []entity.Booking
	Products() []entity.Product
	Packages() []entity.ServicePackage
}

type sessionStore struct {
	visitorID   uuid.UUID
	api         backend.API
	credentials repository.CredentialRepository
	log         *zap.Logger
	now         func() time.Time

	mu       sync.RWMutex
	epoch    uint64 // bumped on every identity change
	token    string
	identity *entity.Identity
	patient  *entity.Patient
	bookings Collection[entity.Booking]
	products Collection[entity.Product]
	packages Collection[entity.ServicePackage]
}

func NewSessionStore(visitorID uuid.UUID, api backend.API, credentials repository.CredentialRepository, log *zap.Logger) SessionStore {
	return &sessionStore{
		visitorID:   visitorID,
		api:         api,
		credentials: credentials,
		log:         log.With(zap.String("service", "session"), zap.String("visitor_id", visitorID.String())),
		now:         time.Now,
		bookings:    Collection[entity.Booking]{State: CollectionIdle},
		products:    Collection[entity.Product]{State: CollectionIdle},
		packages:    Collection[entity.ServicePackage]{State: CollectionIdle},
	}
}

func (s *sessionStore) VisitorID() uuid.UUID {
	return s.visitorID
}

// Restore loads the persisted credential and then fetches everything the
// visitor's role can see.
func (s *sessionStore) Restore(ctx context.Context) error {
	credential, err := s.credentials.Find(ctx, s.visitorID)
	if err != nil {
		s.log.Warn("Failed to load persisted credential", zap.Error(err))
	}

	if credential != nil {
		if tokenExpired(credential.Token, s.now()) {
			s.log.Info("Discarding expired credential")
			if err := s.credentials.Delete(ctx, s.visitorID); err != nil {
				s.log.Warn("Failed to delete expired credential", zap.Error(err))
			}
		} else {
			identity := credential.Identity
			s.mu.Lock()
			s.epoch++
			s.token = credential.Token
			s.identity = &identity
			s.mu.Unlock()
			s.log.Debug("Credential restored", zap.String("role", string(identity.Role)))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.FetchProducts(gctx)
		return nil
	})
	g.Go(func() error {
		s.FetchPackages(gctx)
		return nil
	})
	g.Go(func() error {
		s.RefreshBookings(gctx)
		return nil
	})
	if s.Identity().IsPatient() {
		g.Go(func() error {
			s.fetchProfile(gctx)
			return nil
		})
	}
	return g.Wait()
}

// tokenExpired reports whether token is a JWT whose exp has passed. The
// signature is not checked; the backend stays authoritative. Opaque tokens
// are never considered expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

// ==================== AUTH ====================

func (s *sessionStore) Login(ctx context.Context, email, password string) error {
	if s.IsAuthenticated() {
		return ErrAlreadyAuthenticated
	}

	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Warn("Login rejected", zap.String("email", email), zap.Error(err))
		return &AuthenticationError{Message: backend.MessageOr(err, "Login failed"), Err: err}
	}

	identity := result.Identity
	if identity.Role != entity.RoleAdmin {
		identity.Role = entity.RolePatient
	}
	s.signIn(ctx, result.Token, identity)

	if identity.IsPatient() {
		s.fetchProfile(ctx)
	}
	s.RefreshBookings(ctx)

	s.log.Info("Logged in", zap.String("role", string(identity.Role)))
	return nil
}

func (s *sessionStore) Register(ctx context.Context, input backend.RegisterInput) error {
	if s.IsAuthenticated() {
		return ErrAlreadyAuthenticated
	}

	result, err := s.api.Register(ctx, input)
	if err != nil {
		s.log.Warn("Registration rejected", zap.String("email", input.Email), zap.Error(err))
		return &AuthenticationError{Message: backend.MessageOr(err, "Registration failed"), Err: err}
	}

	identity := result.Identity
	identity.Role = entity.RolePatient
	s.signIn(ctx, result.Token, identity)

	s.fetchProfile(ctx)
	s.RefreshBookings(ctx)

	s.log.Info("Registered")
	return nil
}

func (s *sessionStore) signIn(ctx context.Context, token string, identity entity.Identity) {
	s.mu.Lock()
	s.epoch++
	s.token = token
	s.identity = &identity
	s.patient = nil
	s.bookings = Collection[entity.Booking]{State: CollectionIdle}
	s.mu.Unlock()

	credential := &entity.Credential{
		VisitorID: s.visitorID,
		Token:     token,
		Identity:  identity,
		UpdatedAt: s.now(),
	}
	if err := s.credentials.Save(ctx, credential); err != nil {
		s.log.Warn("Failed to persist credential", zap.Error(err))
	}
}

func (s *sessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	s.token = ""
	s.identity = nil
	s.patient = nil
	s.bookings = Collection[entity.Booking]{State: CollectionIdle}
	s.products = Collection[entity.Product]{State: CollectionIdle}
	s.packages = Collection[entity.ServicePackage]{State: CollectionIdle}
	s.mu.Unlock()

	if err := s.credentials.Delete(ctx, s.visitorID); err != nil {
		s.log.Warn("Failed to delete persisted credential", zap.Error(err))
	}

	s.log.Info("Logged out")
	return nil
}

func (s *sessionStore) fetchProfile(ctx context.Context) {
	epoch, token := s.session()
	if token == "" {
		return
	}

	patient, err := s.api.Profile(ctx, token)
	if err != nil {
		s.log.Warn("Failed to fetch patient profile", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.patient = patient
	}
}

// EnsureProfile returns the patient profile, fetching it again when a
// previous fetch failed. Nil for anonymous visitors, admins, or when the
// backend still does not answer.
func (s *sessionStore) EnsureProfile(ctx context.Context) *entity.Patient {
	if patient := s.Patient(); patient != nil {
		return patient
	}
	if !s.Identity().IsPatient() {
		return nil
	}
	s.fetchProfile(ctx)
	return s.Patient()
}

func (s *sessionStore) session() (uint64, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch, s.token
}

// ==================== READS ====================

func (s *sessionStore) FetchProducts(ctx context.Context) error {
	return load(ctx, s, "products", false,
		func() *Collection[entity.Product] { return &s.products },
		func(ctx context.Context, _ string) ([]entity.Product, error) { return s.api.ListProducts(ctx) },
	)
}

func (s *sessionStore) FetchPackages(ctx context.Context) error {
	return load(ctx, s, "packages", false,
		func() *Collection[entity.ServicePackage] { return &s.packages },
		func(ctx context.Context, _ string) ([]entity.ServicePackage, error) { return s.api.ListPackages(ctx) },
	)
}

// FetchBookings loads every booking. Only meaningful for admins; a no-op otherwise.
func (s *sessionStore) FetchBookings(ctx context.Context) error {
	if !s.IsAdmin() {
		return nil
	}
	return load(ctx, s, "bookings", true,
		func() *Collection[entity.Booking] { return &s.bookings },
		s.api.ListBookings,
	)
}

// FetchMyBookings loads the signed-in patient's own bookings.
func (s *sessionStore) FetchMyBookings(ctx context.Context) error {
	if !s.IsAuthenticated() || s.IsAdmin() {
		return nil
	}
	return load(ctx, s, "bookings", true,
		func() *Collection[entity.Booking] { return &s.bookings },
		s.api.ListMyBookings,
	)
}

func (s *sessionStore) RefreshBookings(ctx context.Context) error {
	if s.IsAdmin() {
		return s.FetchBookings(ctx)
	}
	return s.FetchMyBookings(ctx)
}

// EnsureCatalog fetches products and packages that were never loaded or
// whose last fetch failed.
func (s *sessionStore) EnsureCatalog(ctx context.Context) {
	s.mu.RLock()
	needProducts, needPackages := s.products.needsLoad(), s.packages.needsLoad()
	s.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	if needProducts {
		g.Go(func() error {
			s.FetchProducts(gctx)
			return nil
		})
	}
	if needPackages {
		g.Go(func() error {
			s.FetchPackages(gctx)
			return nil
		})
	}
	g.Wait()
}

// load runs fetch outside the lock and applies the result. When gated, a
// result that arrives after the identity changed is dropped.
func load[T any](ctx context.Context, s *sessionStore, name string, gated bool, target func() *Collection[T], fetch func(ctx context.Context, token string) ([]T, error)) error {
	s.mu.Lock()
	epoch, token := s.epoch, s.token
	target().State = CollectionLoading
	s.mu.Unlock()

	items, err := fetch(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gated && s.epoch != epoch {
		return nil
	}

	c := target()
	if err != nil {
		c.State = CollectionFailed
		c.Err = err
		s.log.Warn("Failed to fetch collection", zap.String("collection", name), zap.Error(err))
		return err
	}
	if items == nil {
		items = []T{}
	}
	c.State = CollectionLoaded
	c.Items = items
	c.Err = nil
	return nil
}

// ==================== BOOKINGS ====================

func (s *sessionStore) AddBooking(ctx context.Context, draft entity.BookingDraft) error {
	_, token := s.session()
	if token == "" {
		return ErrNotAuthenticated
	}

	if err := s.api.CreateBooking(ctx, token, draft); err != nil {
		s.log.Warn("Failed to create booking", zap.String("package_id", draft.PackageID), zap.Error(err))
		return &BookingCreationError{Message: backend.MessageOr(err, "Failed to add booking"), Err: err}
	}

	s.log.Info("Booking created", zap.String("package_id", draft.PackageID), zap.String("date", draft.Date))
	s.RefreshBookings(ctx)
	return nil
}

func (s *sessionStore) UpdateBooking(ctx context.Context, id string, patch entity.BookingPatch) error {
	_, token := s.session()
	if token == "" {
		return ErrNotAuthenticated
	}

	if err := s.api.UpdateBooking(ctx, token, id, patch); err != nil {
		s.log.Warn("Failed to update booking", zap.String("booking_id", id), zap.Error(err))
		return &OperationError{Op: "update booking", Message: backend.MessageOr(err, "Failed to update booking"), Err: err}
	}

	s.log.Info("Booking updated", zap.String("booking_id", id))
	s.RefreshBookings(ctx)
	return nil
}

func (s *sessionStore) CancelBooking(ctx context.Context, id string) error {
	return s.UpdateBooking(ctx, id, entity.StatusPatch(entity.BookingStatusCancelled))
}

// ==================== ADMIN CATALOG ====================

// adminToken returns the token when the visitor is an admin. Catalog writes
// from anyone else are dropped without a backend call.
func (s *sessionStore) adminToken(op string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || !s.identity.IsAdmin() {
		s.log.Debug("Ignoring catalog write from non-admin", zap.String("operation", op))
		return "", false
	}
	return s.token, true
}

func (s *sessionStore) catalogWrite(ctx context.Context, op, fallback string, call func(token string) error, refetch func(ctx context.Context) error) error {
	token, ok := s.adminToken(op)
	if !ok {
		return nil
	}
	if err := call(token); err != nil {
		s.log.Warn("Catalog write failed", zap.String("operation", op), zap.Error(err))
		return &OperationError{Op: op, Message: backend.MessageOr(err, fallback), Err: err}
	}
	refetch(ctx)
	return nil
}

func (s *sessionStore) AddProduct(ctx context.Context, input entity.ProductInput) error {
	return s.catalogWrite(ctx, "add product", "Failed to add product", func(token string) error {
		return s.api.CreateProduct(ctx, token, input)
	}, s.FetchProducts)
}

func (s *sessionStore) UpdateProduct(ctx context.Context, id string, input entity.ProductInput) error {
	return s.catalogWrite(ctx, "update product", "Failed to update product", func(token string) error {
		return s.api.UpdateProduct(ctx, token, id, input)
	}, s.FetchProducts)
}

func (s *sessionStore) DeleteProduct(ctx context.Context, id string) error {
	return s.catalogWrite(ctx, "delete product", "Failed to delete product", func(token string) error {
		return s.api.DeleteProduct(ctx, token, id)
	}, s.FetchProducts)
}

func (s *sessionStore) AddPackage(ctx context.Context, input entity.PackageInput) error {
	return s.catalogWrite(ctx, "add package", "Failed to add package", func(token string) error {
		return s.api.CreatePackage(ctx, token, input)
	}, s.FetchPackages)
}

func (s *sessionStore) UpdatePackage(ctx context.Context, id string, input entity.PackageInput) error {
	return s.catalogWrite(ctx, "update package", "Failed to update package", func(token string) error {
		return s.api.UpdatePackage(ctx, token, id, input)
	}, s.FetchPackages)
}

func (s *sessionStore) DeletePackage(ctx context.Context, id string) error {
	return s.catalogWrite(ctx, "delete package", "Failed to delete package", func(token string) error {
		return s.api.DeletePackage(ctx, token, id)
	}, s.FetchPackages)
}

// ==================== SLOTS ====================

// AvailableTimeSlots never fails: any error yields an empty list.
func (s *sessionStore) AvailableTimeSlots(ctx context.Context, packageID, date string) []string {
	slots, err := s.api.AvailableSlots(ctx, packageID, date)
	if err != nil {
		s.log.Warn("Failed to fetch available slots",
			zap.String("package_id", packageID),
			zap.String("date", date),
			zap.Error(err),
		)
		return []string{}
	}
	if slots == nil {
		return []string{}
	}
	return slots
}

// ==================== STATE ====================

func (s *sessionStore) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := SessionSnapshot{
		VisitorID: s.visitorID,
		Bookings:  s.bookings.clone(),
		Products:  s.products.clone(),
		Packages:  s.packages.clone(),
	}
	if s.identity != nil {
		identity := *s.identity
		snapshot.Identity = &identity
	}
	if s.patient != nil {
		patient := *s.patient
		snapshot.Patient = &patient
	}
	return snapshot
}

func (s *sessionStore) Identity() *entity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

func (s *sessionStore) Patient() *entity.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.patient == nil {
		return nil
	}
	patient := *s.patient
	return &patient
}

func (s *sessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *sessionStore) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.identity.IsAdmin()
}

func (s *sessionStore) Bookings() []entity.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookings.clone().Items
}

func (s *sessionStore) Products() []entity.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products.clone().Items
}

func (s *sessionStore) Packages() []entity.ServicePackage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.packages.clone().Items
}
