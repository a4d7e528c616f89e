package usecase

import (
	"context"
	"sync"
	"time"

	"siddhaka-portal/internal/backend"
	"siddhaka-portal/internal/data/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeAPI is an in-memory backend.API. Unset funcs return empty results.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	login          func(email, password string) (*backend.AuthResult, error)
	register       func(input backend.RegisterInput) (*backend.AuthResult, error)
	profile        func(token string) (*entity.Patient, error)
	listProducts   func() ([]entity.Product, error)
	listPackages   func() ([]entity.ServicePackage, error)
	listBookings   func(token string) ([]entity.Booking, error)
	listMyBookings func(token string) ([]entity.Booking, error)
	slots          func(ctx context.Context, packageID, date string) ([]string, error)
	createBooking  func(draft entity.BookingDraft) error
	updateBooking  func(id string, patch entity.BookingPatch) error
	writeCatalog   func(op string) error

	drafts  []entity.BookingDraft
	patches map[string]entity.BookingPatch
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls:   make(map[string]int),
		patches: make(map[string]entity.BookingPatch),
	}
}

func (f *fakeAPI) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*backend.AuthResult, error) {
	f.record("login")
	if f.login == nil {
		return &backend.AuthResult{Token: "tok", Identity: entity.Identity{Role: entity.RolePatient}}, nil
	}
	return f.login(email, password)
}

func (f *fakeAPI) Register(_ context.Context, input backend.RegisterInput) (*backend.AuthResult, error) {
	f.record("register")
	if f.register == nil {
		return &backend.AuthResult{Token: "tok", Identity: entity.Identity{Name: input.Name, Email: input.Email}}, nil
	}
	return f.register(input)
}

func (f *fakeAPI) Profile(_ context.Context, token string) (*entity.Patient, error) {
	f.record("profile")
	if f.profile == nil {
		return testPatient(), nil
	}
	return f.profile(token)
}

func (f *fakeAPI) ListProducts(context.Context) ([]entity.Product, error) {
	f.record("list_products")
	if f.listProducts == nil {
		return []entity.Product{}, nil
	}
	return f.listProducts()
}

func (f *fakeAPI) ListPackages(context.Context) ([]entity.ServicePackage, error) {
	f.record("list_packages")
	if f.listPackages == nil {
		return []entity.ServicePackage{}, nil
	}
	return f.listPackages()
}

func (f *fakeAPI) ListBookings(_ context.Context, token string) ([]entity.Booking, error) {
	f.record("list_bookings")
	if f.listBookings == nil {
		return []entity.Booking{}, nil
	}
	return f.listBookings(token)
}

func (f *fakeAPI) ListMyBookings(_ context.Context, token string) ([]entity.Booking, error) {
	f.record("list_my_bookings")
	if f.listMyBookings == nil {
		return []entity.Booking{}, nil
	}
	return f.listMyBookings(token)
}

func (f *fakeAPI) AvailableSlots(ctx context.Context, packageID, date string) ([]string, error) {
	f.record("available_slots")
	if f.slots == nil {
		return []string{}, nil
	}
	return f.slots(ctx, packageID, date)
}

func (f *fakeAPI) CreateBooking(_ context.Context, _ string, draft entity.BookingDraft) error {
	f.record("create_booking")
	f.mu.Lock()
	f.drafts = append(f.drafts, draft)
	f.mu.Unlock()
	if f.createBooking == nil {
		return nil
	}
	return f.createBooking(draft)
}

func (f *fakeAPI) UpdateBooking(_ context.Context, _, id string, patch entity.BookingPatch) error {
	f.record("update_booking")
	f.mu.Lock()
	f.patches[id] = patch
	f.mu.Unlock()
	if f.updateBooking == nil {
		return nil
	}
	return f.updateBooking(id, patch)
}

func (f *fakeAPI) catalogWrite(op string) error {
	f.record(op)
	if f.writeCatalog == nil {
		return nil
	}
	return f.writeCatalog(op)
}

func (f *fakeAPI) CreateProduct(context.Context, string, entity.ProductInput) error {
	return f.catalogWrite("create_product")
}

func (f *fakeAPI) UpdateProduct(context.Context, string, string, entity.ProductInput) error {
	return f.catalogWrite("update_product")
}

func (f *fakeAPI) DeleteProduct(context.Context, string, string) error {
	return f.catalogWrite("delete_product")
}

func (f *fakeAPI) CreatePackage(context.Context, string, entity.PackageInput) error {
	return f.catalogWrite("create_package")
}

func (f *fakeAPI) UpdatePackage(context.Context, string, string, entity.PackageInput) error {
	return f.catalogWrite("update_package")
}

func (f *fakeAPI) DeletePackage(context.Context, string, string) error {
	return f.catalogWrite("delete_package")
}

// memCredentials is an in-memory repository.CredentialRepository.
type memCredentials struct {
	mu      sync.Mutex
	items   map[uuid.UUID]entity.Credential
	deletes int
}

func newMemCredentials() *memCredentials {
	return &memCredentials{items: make(map[uuid.UUID]entity.Credential)}
}

func (m *memCredentials) Find(_ context.Context, visitorID uuid.UUID) (*entity.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[visitorID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memCredentials) Save(_ context.Context, credential *entity.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[credential.VisitorID] = *credential
	return nil
}

func (m *memCredentials) Delete(_ context.Context, visitorID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, visitorID)
	m.deletes++
	return nil
}

func (m *memCredentials) CleanStale(context.Context, time.Duration) error {
	return nil
}

func testPatient() *entity.Patient {
	return &entity.Patient{
		Base:    entity.Base{ID: "p1"},
		Name:    "Alice Perera",
		Email:   "alice@clinic.lk",
		Phone:   "+94771234567",
		Country: "LK",
		Gender:  entity.GenderFemale,
	}
}

func newTestStore(api *fakeAPI, creds *memCredentials) *sessionStore {
	return NewSessionStore(uuid.New(), api, creds, zap.NewNop()).(*sessionStore)
}

// loggedInPatient returns a store signed in as a patient.
func loggedInPatient(api *fakeAPI) *sessionStore {
	store := newTestStore(api, newMemCredentials())
	if err := store.Login(context.Background(), "alice@clinic.lk", "secret"); err != nil {
		panic(err)
	}
	return store
}

// loggedInAdmin returns a store signed in as an admin.
func loggedInAdmin(api *fakeAPI) *sessionStore {
	api.login = func(string, string) (*backend.AuthResult, error) {
		return &backend.AuthResult{Token: "admin-tok", Identity: entity.Identity{Name: "Admin", Role: entity.RoleAdmin}}, nil
	}
	store := newTestStore(api, newMemCredentials())
	if err := store.Login(context.Background(), "admin@clinic.lk", "secret"); err != nil {
		panic(err)
	}
	return store
}
