package usecase

import (
	"context"

	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/internal/dto/response"

	"go.uber.org/zap"
)

// PatientDashboard is the signed-in patient's view of their own bookings.
type PatientDashboard struct {
	store SessionStore
	log   *zap.Logger
}

func NewPatientDashboard(store SessionStore, log *zap.Logger) *PatientDashboard {
	return &PatientDashboard{
		store: store,
		log:   log.With(zap.String("service", "dashboard")),
	}
}

func (d *PatientDashboard) Summary(ctx context.Context) (*response.DashboardResponse, error) {
	snapshot := d.store.Snapshot()
	if !snapshot.IsAuthenticated() || snapshot.Identity.IsAdmin() {
		return nil, ErrNotAuthenticated
	}

	if snapshot.Bookings.needsLoad() {
		d.store.FetchMyBookings(ctx)
		snapshot = d.store.Snapshot()
	}

	upcoming, completed, cancelled := PartitionBookings(snapshot.Bookings.Items)
	return &response.DashboardResponse{
		Patient:   response.PatientToResponse(snapshot.Patient),
		State:     string(snapshot.Bookings.State),
		Error:     errorText(snapshot.Bookings.Err),
		Total:     len(snapshot.Bookings.Items),
		Upcoming:  response.BookingsToResponse(upcoming),
		Completed: response.BookingsToResponse(completed),
		Cancelled: response.BookingsToResponse(cancelled),
	}, nil
}

// Cancel cancels one of the patient's own open bookings.
func (d *PatientDashboard) Cancel(ctx context.Context, id string) error {
	if !d.store.IsAuthenticated() || d.store.IsAdmin() {
		return ErrNotAuthenticated
	}

	for _, b := range d.store.Bookings() {
		if b.ID != id {
			continue
		}
		if b.Status.IsFinal() {
			return ErrTransitionNotAllowed
		}
		return d.store.CancelBooking(ctx, id)
	}
	return ErrBookingNotFound
}

// PartitionBookings splits bookings into upcoming (neither completed nor
// cancelled), completed and cancelled.
func PartitionBookings(bookings []entity.Booking) (upcoming, completed, cancelled []entity.Booking) {
	for _, b := range bookings {
		switch b.Status {
		case entity.BookingStatusCompleted:
			completed = append(completed, b)
		case entity.BookingStatusCancelled:
			cancelled = append(cancelled, b)
		default:
			upcoming = append(upcoming, b)
		}
	}
	return upcoming, completed, cancelled
}
