package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"siddhaka-portal/internal/backend"
	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var twoSlots = []string{"09:00 AM - 10:00 AM", "02:00 PM - 03:00 PM"}

func newTestWorkflow(store SessionStore, packageName, packageID string) *BookingWorkflow {
	m := metrics.NewBackendMetrics(prometheus.NewRegistry())
	return NewBookingWorkflow(store, packageName, packageID, m, zap.NewNop())
}

func TestBookingWorkflow_InitialMode(t *testing.T) {
	anonymous := newTestWorkflow(newTestStore(newFakeAPI(), newMemCredentials()), "Shirodhara", "pk1")
	assert.Equal(t, "login", anonymous.View().Mode)

	patient := newTestWorkflow(loggedInPatient(newFakeAPI()), "Shirodhara", "pk1")
	assert.Equal(t, "booking", patient.View().Mode)
}

func TestBookingWorkflow_SetMode(t *testing.T) {
	w := newTestWorkflow(newTestStore(newFakeAPI(), newMemCredentials()), "Shirodhara", "pk1")

	require.NoError(t, w.SetMode(ModeRegister))
	assert.Equal(t, "register", w.View().Mode)
	assert.ErrorIs(t, w.SetMode(ModeBooking), ErrInvalidMode)
}

func TestBookingWorkflow_SubmitLogin(t *testing.T) {
	t.Run("success enters booking mode", func(t *testing.T) {
		api := newFakeAPI()
		w := newTestWorkflow(newTestStore(api, newMemCredentials()), "Shirodhara", "pk1")

		require.NoError(t, w.SubmitLogin(context.Background(), "alice@clinic.lk", "secret"))
		view := w.View()
		assert.Equal(t, "booking", view.Mode)
		require.NotNil(t, view.Patient)
		assert.Equal(t, "Alice Perera", view.Patient.Name)
	})

	t.Run("failure keeps login mode with message", func(t *testing.T) {
		api := newFakeAPI()
		api.login = func(string, string) (*backend.AuthResult, error) {
			return nil, &backend.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}
		}
		w := newTestWorkflow(newTestStore(api, newMemCredentials()), "Shirodhara", "pk1")

		err := w.SubmitLogin(context.Background(), "alice@clinic.lk", "bad")
		require.Error(t, err)
		view := w.View()
		assert.Equal(t, "login", view.Mode)
		assert.Equal(t, "Invalid email or password", view.Error)
	})
}

func TestBookingWorkflow_RegisterPasswordMismatch(t *testing.T) {
	api := newFakeAPI()
	w := newTestWorkflow(newTestStore(api, newMemCredentials()), "Shirodhara", "pk1")
	require.NoError(t, w.SetMode(ModeRegister))

	err := w.SubmitRegister(context.Background(), RegisterForm{
		RegisterInput:   backend.RegisterInput{Name: "Alice", Password: "secret1"},
		ConfirmPassword: "secret2",
	})

	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, "Passwords do not match", w.View().Error)
	assert.Zero(t, api.count("register"))
}

func TestBookingWorkflow_SelectDate(t *testing.T) {
	t.Run("offers backend slots and clears selection", func(t *testing.T) {
		api := newFakeAPI()
		api.slots = func(_ context.Context, packageID, date string) ([]string, error) {
			assert.Equal(t, "pk1", packageID)
			return twoSlots, nil
		}
		w := newTestWorkflow(loggedInPatient(api), "Shirodhara", "pk1")
		ctx := context.Background()

		require.NoError(t, w.SelectDate(ctx, "2099-01-01"))
		require.NoError(t, w.SelectSlot(twoSlots[0]))
		assert.True(t, w.View().CanSubmit)

		require.NoError(t, w.SelectDate(ctx, "2099-01-02"))
		view := w.View()
		assert.Empty(t, view.TimeSlot)
		assert.Equal(t, "available", view.SlotState)
		assert.Equal(t, twoSlots, view.Slots)
		assert.False(t, view.CanSubmit)
	})

	t.Run("no slots disables submit", func(t *testing.T) {
		w := newTestWorkflow(loggedInPatient(newFakeAPI()), "Shirodhara", "pk1")

		require.NoError(t, w.SelectDate(context.Background(), "2099-01-01"))
		view := w.View()
		assert.Equal(t, "none", view.SlotState)
		assert.Empty(t, view.Slots)
		assert.False(t, view.CanSubmit)
		assert.ErrorIs(t, w.SelectSlot(twoSlots[0]), ErrSlotUnavailable)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		w := newTestWorkflow(loggedInPatient(newFakeAPI()), "Shirodhara", "pk1")
		assert.ErrorIs(t, w.SelectDate(context.Background(), "01/02/2099"), ErrInvalidDate)
	})

	t.Run("requires authentication", func(t *testing.T) {
		api := newFakeAPI()
		w := newTestWorkflow(newTestStore(api, newMemCredentials()), "Shirodhara", "pk1")
		assert.ErrorIs(t, w.SelectDate(context.Background(), "2099-01-01"), ErrNotAuthenticated)
		assert.Zero(t, api.count("available_slots"))
	})
}

func TestBookingWorkflow_SupersededSlotResponseIsDropped(t *testing.T) {
	api := newFakeAPI()
	started := make(chan struct{})
	release := make(chan struct{})
	api.slots = func(_ context.Context, _, date string) ([]string, error) {
		if date == "2099-01-01" {
			close(started)
			<-release
			return []string{"11:00 AM - 12:00 PM"}, nil
		}
		return twoSlots, nil
	}
	w := newTestWorkflow(loggedInPatient(api), "Shirodhara", "pk1")
	ctx := context.Background()

	done := make(chan error)
	go func() { done <- w.SelectDate(ctx, "2099-01-01") }()
	<-started

	require.NoError(t, w.SelectDate(ctx, "2099-01-02"))
	close(release)
	require.NoError(t, <-done)

	view := w.View()
	assert.Equal(t, "2099-01-02", view.Date)
	assert.Equal(t, twoSlots, view.Slots)
}

func TestBookingWorkflow_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("requires date before any call", func(t *testing.T) {
		api := newFakeAPI()
		w := newTestWorkflow(loggedInPatient(api), "Shirodhara", "pk1")

		assert.ErrorIs(t, w.Submit(ctx), ErrDateRequired)
		assert.Zero(t, api.count("create_booking"))
	})

	t.Run("requires slot before any call", func(t *testing.T) {
		api := newFakeAPI()
		api.slots = func(context.Context, string, string) ([]string, error) { return twoSlots, nil }
		w := newTestWorkflow(loggedInPatient(api), "Shirodhara", "pk1")
		require.NoError(t, w.SelectDate(ctx, "2099-01-01"))

		assert.ErrorIs(t, w.Submit(ctx), ErrSlotRequired)
		assert.Equal(t, "Please select a time slot", w.View().Error)
		assert.Zero(t, api.count("create_booking"))
	})

	t.Run("resolves package by name and copies contact details", func(t *testing.T) {
		api := newFakeAPI()
		api.slots = func(context.Context, string, string) ([]string, error) { return twoSlots, nil }
		api.listPackages = func() ([]entity.ServicePackage, error) {
			return []entity.ServicePackage{
				{Base: entity.Base{ID: "pk9"}, PackageInput: entity.PackageInput{Name: "Shirodhara"}},
			}, nil
		}
		store := loggedInPatient(api)
		require.NoError(t, store.FetchPackages(ctx))

		w := newTestWorkflow(store, "Shirodhara", "")
		require.NoError(t, w.SelectDate(ctx, "2099-01-01"))
		require.NoError(t, w.SelectSlot(twoSlots[1]))
		w.SetNotes("Lower back pain")

		require.NoError(t, w.Submit(ctx))

		require.Len(t, api.drafts, 1)
		draft := api.drafts[0]
		assert.Equal(t, "pk9", draft.PackageID)
		assert.Equal(t, "2099-01-01", draft.Date)
		assert.Equal(t, twoSlots[1], draft.TimeSlot)
		assert.Equal(t, "Lower back pain", draft.Notes)
		assert.Equal(t, &entity.PatientDetails{Email: "alice@clinic.lk", Phone: "+94771234567", Gender: "female", Country: "LK"}, draft.PatientDetails)

		view := w.View()
		assert.Empty(t, view.Date)
		assert.Empty(t, view.TimeSlot)
		assert.Empty(t, view.Notes)
		assert.Equal(t, "idle", view.SlotState)
	})

	t.Run("failure keeps form and message", func(t *testing.T) {
		api := newFakeAPI()
		api.slots = func(context.Context, string, string) ([]string, error) { return twoSlots, nil }
		api.createBooking = func(entity.BookingDraft) error {
			return &backend.APIError{StatusCode: http.StatusConflict, Message: "Slot already booked"}
		}
		w := newTestWorkflow(loggedInPatient(api), "Shirodhara", "pk1")
		require.NoError(t, w.SelectDate(ctx, "2099-01-01"))
		require.NoError(t, w.SelectSlot(twoSlots[0]))

		err := w.Submit(ctx)
		var bookingErr *BookingCreationError
		require.True(t, errors.As(err, &bookingErr))

		view := w.View()
		assert.Equal(t, "Slot already booked", view.Error)
		assert.Equal(t, "2099-01-01", view.Date)
		assert.Equal(t, twoSlots[0], view.TimeSlot)
	})

	t.Run("unknown package fails locally", func(t *testing.T) {
		api := newFakeAPI()
		w := newTestWorkflow(loggedInPatient(api), "Unknown", "")
		w.mu.Lock()
		w.mode, w.date, w.timeSlot = ModeBooking, "2099-01-01", twoSlots[0]
		w.mu.Unlock()

		assert.ErrorIs(t, w.Submit(ctx), ErrPackageNotFound)
		assert.Zero(t, api.count("create_booking"))
	})
}

func TestBookingWorkflow_FollowsLogout(t *testing.T) {
	api := newFakeAPI()
	api.slots = func(context.Context, string, string) ([]string, error) { return twoSlots, nil }
	store := loggedInPatient(api)
	w := newTestWorkflow(store, "Shirodhara", "pk1")
	require.NoError(t, w.SelectDate(context.Background(), "2099-01-01"))

	require.NoError(t, store.Logout(context.Background()))

	view := w.View()
	assert.Equal(t, "login", view.Mode)
	assert.Empty(t, view.Date)
}

func TestBookingWorkflow_ProfileFetchFailureAfterLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("enters booking mode and refetches profile on submit", func(t *testing.T) {
		api := newFakeAPI()
		api.slots = func(context.Context, string, string) ([]string, error) { return twoSlots, nil }
		api.profile = func(string) (*entity.Patient, error) {
			if api.count("profile") == 1 {
				return nil, errors.New("connection reset")
			}
			return testPatient(), nil
		}
		w := newTestWorkflow(newTestStore(api, newMemCredentials()), "Shirodhara", "pk1")

		require.NoError(t, w.SubmitLogin(ctx, "alice@clinic.lk", "secret"))
		view := w.View()
		assert.Equal(t, "booking", view.Mode)
		assert.Nil(t, view.Patient)

		require.NoError(t, w.SelectDate(ctx, "2099-01-01"))
		require.NoError(t, w.SelectSlot(twoSlots[0]))
		assert.Equal(t, "booking", w.View().Mode)

		require.NoError(t, w.Submit(ctx))
		assert.Equal(t, 2, api.count("profile"))
		require.Len(t, api.drafts, 1)
		assert.Equal(t, "alice@clinic.lk", api.drafts[0].PatientDetails.Email)
	})

	t.Run("submits without contact details when profile stays unavailable", func(t *testing.T) {
		api := newFakeAPI()
		api.slots = func(context.Context, string, string) ([]string, error) { return twoSlots, nil }
		api.profile = func(string) (*entity.Patient, error) {
			return nil, &backend.APIError{StatusCode: http.StatusServiceUnavailable}
		}
		w := newTestWorkflow(newTestStore(api, newMemCredentials()), "Shirodhara", "pk1")

		require.NoError(t, w.SubmitLogin(ctx, "alice@clinic.lk", "secret"))
		require.NoError(t, w.SelectDate(ctx, "2099-01-01"))
		require.NoError(t, w.SelectSlot(twoSlots[1]))
		require.NoError(t, w.Submit(ctx))

		require.Len(t, api.drafts, 1)
		assert.Nil(t, api.drafts[0].PatientDetails)
		assert.Equal(t, twoSlots[1], api.drafts[0].TimeSlot)
	})
}

func TestBookingWorkflow_AdminMustLogOutFirst(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.login = func(string, string) (*backend.AuthResult, error) {
		return &backend.AuthResult{Token: "admin-tok", Identity: entity.Identity{Name: "Admin", Role: entity.RoleAdmin}}, nil
	}
	store := newTestStore(api, newMemCredentials())
	w := newTestWorkflow(store, "Shirodhara", "pk1")

	require.NoError(t, w.SubmitLogin(ctx, "admin@clinic.lk", "secret"))
	view := w.View()
	assert.Equal(t, "logout_required", view.Mode)
	assert.Equal(t, ErrPatientAccountRequired.Message, view.Error)

	assert.ErrorIs(t, w.SelectDate(ctx, "2099-01-01"), ErrPatientAccountRequired)
	assert.ErrorIs(t, w.Submit(ctx), ErrPatientAccountRequired)
	assert.ErrorIs(t, w.SetMode(ModeLogin), ErrAlreadyAuthenticated)
	assert.Zero(t, api.count("available_slots"))
	assert.Zero(t, api.count("create_booking"))

	require.NoError(t, store.Logout(ctx))
	view = w.View()
	assert.Equal(t, "login", view.Mode)
	assert.Empty(t, view.Error)
}

func TestBookingWorkflow_AdminWorkflowStartsLoggedOutRequired(t *testing.T) {
	w := newTestWorkflow(loggedInAdmin(newFakeAPI()), "Shirodhara", "pk1")
	assert.Equal(t, "logout_required", w.View().Mode)
}
