package usecase

import (
	"context"
	"slices"
	"sync"

	"siddhaka-portal/internal/backend"
	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/internal/dto/response"
	"siddhaka-portal/internal/metrics"
	"siddhaka-portal/pkg/utils"

	"go.uber.org/zap"
)

type WorkflowMode string

const (
	ModeLogin    WorkflowMode = "login"
	ModeRegister WorkflowMode = "register"
	ModeBooking  WorkflowMode = "booking"
	// ModeLogoutRequired: signed in, but not as a patient.
	ModeLogoutRequired WorkflowMode = "logout_required"
)

type SlotState string

const (
	SlotsIdle      SlotState = "idle"
	SlotsLoading   SlotState = "loading"
	SlotsAvailable SlotState = "available"
	SlotsNone      SlotState = "none"
)

// RegisterForm is the registration form including the confirmation field.
type RegisterForm struct {
	backend.RegisterInput
	ConfirmPassword string
}

// BookingWorkflow drives one visitor through authentication and booking
// submission for a single package.
type BookingWorkflow struct {
	store       SessionStore
	packageName string
	metrics     *metrics.BackendMetrics
	log         *zap.Logger

	mu         sync.Mutex
	packageID  string
	mode       WorkflowMode
	date       string
	timeSlot   string
	notes      string
	slots      []string
	slotState  SlotState
	generation uint64
	submitting bool
	lastError  string
}

func NewBookingWorkflow(store SessionStore, packageName, packageID string, m *metrics.BackendMetrics, log *zap.Logger) *BookingWorkflow {
	w := &BookingWorkflow{
		store:       store,
		packageName: packageName,
		packageID:   packageID,
		metrics:     m,
		log:         log.With(zap.String("service", "workflow"), zap.String("package", packageName)),
		mode:        ModeLogin,
		slotState:   SlotsIdle,
	}
	w.syncMode(store.Identity())
	return w
}

func (w *BookingWorkflow) setPackageID(id string) {
	w.mu.Lock()
	w.packageID = id
	w.mu.Unlock()
}

// syncMode follows identity changes made elsewhere, e.g. a logout in another tab.
// The mode follows the signed-in identity, not the cached profile.
// Caller holds w.mu.
func (w *BookingWorkflow) syncMode(identity *entity.Identity) {
	switch {
	case identity.IsPatient():
		if w.mode != ModeBooking {
			w.mode = ModeBooking
			w.lastError = ""
		}
	case identity != nil:
		if w.mode != ModeLogoutRequired {
			w.mode = ModeLogoutRequired
			w.resetForm()
			w.lastError = ErrPatientAccountRequired.Message
		}
	case w.mode == ModeBooking || w.mode == ModeLogoutRequired:
		w.mode = ModeLogin
		w.resetForm()
	}
}

// requireBooking is the error for an action that needs booking mode.
// Caller holds w.mu.
func (w *BookingWorkflow) requireBooking() error {
	switch w.mode {
	case ModeBooking:
		return nil
	case ModeLogoutRequired:
		return ErrPatientAccountRequired
	default:
		return ErrNotAuthenticated
	}
}

// View returns the current workflow state.
func (w *BookingWorkflow) View() response.WorkflowResponse {
	identity, patient := w.store.Identity(), w.store.Patient()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncMode(identity)

	slots := append([]string{}, w.slots...)
	return response.WorkflowResponse{
		PackageName: w.packageName,
		PackageID:   w.packageID,
		Mode:        string(w.mode),
		Date:        w.date,
		TimeSlot:    w.timeSlot,
		Notes:       w.notes,
		SlotState:   string(w.slotState),
		Slots:       slots,
		CanSubmit:   w.canSubmit(),
		Submitting:  w.submitting,
		Error:       w.lastError,
		Patient:     response.PatientToResponse(patient),
	}
}

func (w *BookingWorkflow) canSubmit() bool {
	return w.mode == ModeBooking &&
		w.date != "" &&
		w.timeSlot != "" &&
		w.slotState == SlotsAvailable &&
		!w.submitting
}

// SetMode switches between the login and register forms.
func (w *BookingWorkflow) SetMode(mode WorkflowMode) error {
	if mode != ModeLogin && mode != ModeRegister {
		return ErrInvalidMode
	}

	identity := w.store.Identity()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncMode(identity)
	if identity != nil {
		return ErrAlreadyAuthenticated
	}
	w.mode = mode
	w.lastError = ""
	return nil
}

func (w *BookingWorkflow) SubmitLogin(ctx context.Context, email, password string) error {
	if err := w.store.Login(ctx, email, password); err != nil {
		w.fail(err)
		return err
	}
	w.afterSignIn()
	return nil
}

func (w *BookingWorkflow) SubmitRegister(ctx context.Context, form RegisterForm) error {
	if form.Password != form.ConfirmPassword {
		w.fail(ErrPasswordMismatch)
		return ErrPasswordMismatch
	}

	if err := w.store.Register(ctx, form.RegisterInput); err != nil {
		w.fail(err)
		return err
	}
	w.afterSignIn()
	return nil
}

// afterSignIn moves a patient into booking mode and an admin to
// ModeLogoutRequired.
func (w *BookingWorkflow) afterSignIn() {
	identity := w.store.Identity()

	w.mu.Lock()
	w.lastError = ""
	w.syncMode(identity)
	w.mu.Unlock()
}

func (w *BookingWorkflow) fail(err error) {
	w.mu.Lock()
	w.lastError = err.Error()
	w.mu.Unlock()
}

// SelectDate sets the date, clears the chosen slot and queries availability.
// A response that arrives after a newer SelectDate is dropped.
func (w *BookingWorkflow) SelectDate(ctx context.Context, date string) error {
	if date == "" {
		return ErrDateRequired
	}
	if !utils.IsValidDate(date) {
		return ErrInvalidDate
	}

	identity := w.store.Identity()

	w.mu.Lock()
	w.syncMode(identity)
	if err := w.requireBooking(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.generation++
	generation := w.generation
	w.date = date
	w.timeSlot = ""
	w.slots = nil
	w.slotState = SlotsLoading
	w.lastError = ""
	packageID := w.resolvePackageID()
	w.mu.Unlock()

	var slots []string
	if packageID != "" {
		slots = w.store.AvailableTimeSlots(ctx, packageID, date)
	} else {
		w.log.Warn("Cannot query slots for unknown package")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if generation != w.generation {
		w.metrics.ObserveSlotQuery("superseded")
		w.log.Debug("Dropping superseded slot response", zap.String("date", date))
		return nil
	}

	w.slots = slots
	if len(slots) == 0 {
		w.slotState = SlotsNone
		w.metrics.ObserveSlotQuery("empty")
	} else {
		w.slotState = SlotsAvailable
		w.metrics.ObserveSlotQuery("applied")
	}
	return nil
}

// SelectSlot picks one of the currently offered slots.
func (w *BookingWorkflow) SelectSlot(slot string) error {
	if slot == "" {
		return ErrSlotRequired
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.slotState != SlotsAvailable || !slices.Contains(w.slots, slot) {
		return ErrSlotUnavailable
	}
	w.timeSlot = slot
	w.lastError = ""
	return nil
}

func (w *BookingWorkflow) SetNotes(notes string) {
	w.mu.Lock()
	w.notes = notes
	w.mu.Unlock()
}

// Submit creates the booking. On success the form is reset; on failure it
// stays as is with the backend message recorded. A profile that could not be
// fetched at login is fetched again; without one the booking goes out with
// no contact details.
func (w *BookingWorkflow) Submit(ctx context.Context) error {
	identity := w.store.Identity()

	w.mu.Lock()
	w.syncMode(identity)
	switch {
	case w.mode == ModeLogoutRequired:
		w.mu.Unlock()
		return ErrPatientAccountRequired
	case w.date == "":
		w.lastError = ErrDateRequired.Message
		w.mu.Unlock()
		return ErrDateRequired
	case w.timeSlot == "":
		w.lastError = ErrSlotRequired.Message
		w.mu.Unlock()
		return ErrSlotRequired
	case w.mode != ModeBooking:
		w.mu.Unlock()
		return ErrNotAuthenticated
	case w.submitting:
		w.mu.Unlock()
		return nil
	}

	packageID := w.resolvePackageID()
	if packageID == "" {
		w.lastError = ErrPackageNotFound.Error()
		w.mu.Unlock()
		return ErrPackageNotFound
	}

	draft := entity.BookingDraft{
		PackageID: packageID,
		Date:      w.date,
		TimeSlot:  w.timeSlot,
		Notes:     w.notes,
	}
	w.submitting = true
	w.mu.Unlock()

	patient := w.store.EnsureProfile(ctx)
	if patient == nil {
		w.log.Warn("Submitting booking without patient profile")
	}
	draft.PatientDetails = patient.ContactSnapshot()

	err := w.store.AddBooking(ctx, draft)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		w.lastError = err.Error()
		return err
	}

	w.log.Info("Booking submitted", zap.String("date", draft.Date), zap.String("time_slot", draft.TimeSlot))
	w.resetForm()
	return nil
}

// Close discards the form. Mode is kept.
func (w *BookingWorkflow) Close() {
	w.mu.Lock()
	w.resetForm()
	w.mu.Unlock()
}

// resetForm clears everything but the mode. Caller holds w.mu.
func (w *BookingWorkflow) resetForm() {
	w.generation++
	w.date = ""
	w.timeSlot = ""
	w.notes = ""
	w.slots = nil
	w.slotState = SlotsIdle
	w.lastError = ""
}

// resolvePackageID prefers the explicit id and falls back to the cached
// package whose name matches. Caller holds w.mu.
func (w *BookingWorkflow) resolvePackageID() string {
	if w.packageID != "" {
		return w.packageID
	}
	if pkg, ok := FindPackage(w.store.Packages(), w.packageName); ok {
		return pkg.ID
	}
	return ""
}
