package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/internal/dto/response"
	"siddhaka-portal/pkg/utils"

	"go.uber.org/zap"
)

const (
	calendarCells  = 35
	upcomingWindow = 7
)

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// BookingFilter narrows the admin booking list. Empty fields match everything.
type BookingFilter struct {
	Status string // a booking status or "all"
	Search string
	Date   string
}

type AdminConsole struct {
	store SessionStore
	log   *zap.Logger
	now   func() time.Time
}

func NewAdminConsole(store SessionStore, log *zap.Logger) *AdminConsole {
	return &AdminConsole{
		store: store,
		log:   log.With(zap.String("service", "admin_console")),
		now:   time.Now,
	}
}

func (c *AdminConsole) today() string {
	return c.now().Format(utils.DateLayout)
}

// List returns the cached bookings filtered, sorted and annotated with the
// actions the admin may take.
func (c *AdminConsole) List(filter BookingFilter) []response.AdminBookingResponse {
	today := c.today()
	bookings := SortBookings(FilterBookings(c.store.Bookings(), filter), today)
	return withActions(bookings, today)
}

// Transition moves a booking to status when its current state allows it.
func (c *AdminConsole) Transition(ctx context.Context, id string, status entity.BookingStatus) error {
	booking, ok := c.find(id)
	if !ok {
		return ErrBookingNotFound
	}

	actions := AllowedActions(booking, c.today())
	allowed := false
	switch status {
	case entity.BookingStatusConfirmed:
		allowed = actions.Confirm
	case entity.BookingStatusCompleted:
		allowed = actions.Complete
	case entity.BookingStatusCancelled:
		allowed = actions.Cancel
	}
	if !allowed {
		c.log.Debug("Rejected booking transition",
			zap.String("booking_id", id),
			zap.String("from", string(booking.Status)),
			zap.String("to", string(status)),
		)
		return ErrTransitionNotAllowed
	}

	return c.store.UpdateBooking(ctx, id, entity.StatusPatch(status))
}

// Reschedule moves a booking to a new date and, optionally, slot. An empty
// slot keeps the current one.
func (c *AdminConsole) Reschedule(ctx context.Context, id, date, timeSlot string) error {
	if date == "" {
		return ErrRescheduleDateRequired
	}
	if !utils.IsValidDate(date) {
		return ErrInvalidDate
	}
	if timeSlot != "" && !entity.IsClinicTimeSlot(timeSlot) {
		return ErrInvalidTimeSlot
	}

	booking, ok := c.find(id)
	if !ok {
		return ErrBookingNotFound
	}
	if !AllowedActions(booking, c.today()).Reschedule {
		return ErrTransitionNotAllowed
	}

	if timeSlot == "" {
		timeSlot = booking.TimeSlot
	}
	status := entity.BookingStatusRescheduled
	patch := entity.BookingPatch{
		Date:   &date,
		Status: &status,
	}
	if timeSlot != "" {
		patch.TimeSlot = &timeSlot
	}
	return c.store.UpdateBooking(ctx, id, patch)
}

// Calendar builds the month grid around today. selected may be empty.
func (c *AdminConsole) Calendar(selected string) response.CalendarResponse {
	return BuildCalendar(c.store.Bookings(), c.now(), selected)
}

func (c *AdminConsole) UpcomingWeek() []response.BookingResponse {
	return response.BookingsToResponse(UpcomingWeek(c.store.Bookings(), c.now()))
}

func (c *AdminConsole) find(id string) (entity.Booking, bool) {
	for _, b := range c.store.Bookings() {
		if b.ID == id {
			return b, true
		}
	}
	return entity.Booking{}, false
}

// FilterBookings applies the status, search and date predicates together.
func FilterBookings(bookings []entity.Booking, filter BookingFilter) []entity.Booking {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]entity.Booking, 0, len(bookings))
	for _, b := range bookings {
		if filter.Status != "" && filter.Status != "all" && string(b.Status) != filter.Status {
			continue
		}
		if filter.Date != "" && b.Date != filter.Date {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.PatientName), search) &&
			!strings.Contains(strings.ToLower(b.PackageName), search) &&
			!strings.Contains(strings.ToLower(b.Notes), search) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// SortBookings puts upcoming bookings (date >= today) first, earliest first,
// ordered by slot within a day; past bookings follow, latest first.
// Dates are YYYY-MM-DD so string order is calendar order.
func SortBookings(bookings []entity.Booking, today string) []entity.Booking {
	out := append([]entity.Booking{}, bookings...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		aUpcoming, bUpcoming := a.Date >= today, b.Date >= today
		switch {
		case aUpcoming != bUpcoming:
			return aUpcoming
		case aUpcoming:
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			return slotOrder(a.TimeSlot) < slotOrder(b.TimeSlot)
		default:
			return a.Date > b.Date
		}
	})
	return out
}

// slotOrder ranks clinic slots by time of day; unknown or empty slots go last.
func slotOrder(slot string) int {
	for i, s := range entity.ClinicTimeSlots {
		if s == slot {
			return i
		}
	}
	return len(entity.ClinicTimeSlots)
}

// AllowedActions is the set of admin actions valid for a booking today.
func AllowedActions(b entity.Booking, today string) response.BookingActionsResponse {
	return response.BookingActionsResponse{
		Confirm:    b.Status == entity.BookingStatusPending || b.Status == entity.BookingStatusRescheduled,
		Complete:   b.Status == entity.BookingStatusConfirmed && b.Date <= today,
		Cancel:     b.Status == entity.BookingStatusPending,
		Reschedule: !b.Status.IsFinal(),
	}
}

func withActions(bookings []entity.Booking, today string) []response.AdminBookingResponse {
	out := make([]response.AdminBookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, response.AdminBookingResponse{
			BookingResponse: response.BookingToResponse(b),
			Actions:         AllowedActions(b, today),
		})
	}
	return out
}

// BuildCalendar lays out 35 days starting on the Sunday on or before the first
// of now's month.
func BuildCalendar(bookings []entity.Booking, now time.Time, selected string) response.CalendarResponse {
	today := now.Format(utils.DateLayout)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := first.AddDate(0, 0, -int(first.Weekday()))

	byDate := make(map[string][]entity.Booking)
	for _, b := range bookings {
		byDate[b.Date] = append(byDate[b.Date], b)
	}

	days := make([]response.CalendarDayResponse, 0, calendarCells)
	for i := 0; i < calendarCells; i++ {
		day := start.AddDate(0, 0, i)
		date := day.Format(utils.DateLayout)
		days = append(days, response.CalendarDayResponse{
			Date:       date,
			Day:        day.Day(),
			InMonth:    day.Month() == now.Month(),
			IsToday:    date == today,
			IsSelected: date == selected,
			Bookings:   response.BookingsToResponse(SortBookings(byDate[date], today)),
		})
	}

	cal := response.CalendarResponse{
		Month:            first.Format("January 2006"),
		Weekdays:         weekdays,
		Days:             days,
		Selected:         selected,
		SelectedBookings: []response.AdminBookingResponse{},
	}
	if selected != "" {
		cal.SelectedBookings = withActions(SortBookings(byDate[selected], today), today)
	}
	return cal
}

// UpcomingWeek returns non-cancelled bookings dated today through seven days
// ahead, earliest first.
func UpcomingWeek(bookings []entity.Booking, now time.Time) []entity.Booking {
	today := now.Format(utils.DateLayout)
	limit := now.AddDate(0, 0, upcomingWindow).Format(utils.DateLayout)

	out := make([]entity.Booking, 0)
	for _, b := range bookings {
		if b.Status == entity.BookingStatusCancelled {
			continue
		}
		if b.Date >= today && b.Date <= limit {
			out = append(out, b)
		}
	}
	return SortBookings(out, today)
}
