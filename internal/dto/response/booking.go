package response

import (
	"siddhaka-portal/internal/data/entity"
)

type BookingResponse struct {
	ID             string                 `json:"id"`
	PatientID      string                 `json:"patient_id,omitempty"`
	PatientName    string                 `json:"patient_name"`
	PackageID      string                 `json:"package_id"`
	PackageName    string                 `json:"package_name"`
	Date           string                 `json:"date"`
	TimeSlot       string                 `json:"time_slot"`
	Status         entity.BookingStatus   `json:"status"`
	Notes          string                 `json:"notes,omitempty"`
	PatientDetails *entity.PatientDetails `json:"patient_details,omitempty"`
}

type BookingActionsResponse struct {
	Confirm    bool `json:"confirm"`
	Complete   bool `json:"complete"`
	Cancel     bool `json:"cancel"`
	Reschedule bool `json:"reschedule"`
}

type AdminBookingResponse struct {
	BookingResponse
	Actions BookingActionsResponse `json:"actions"`
}

type DashboardResponse struct {
	Patient   *PatientResponse  `json:"patient"`
	State     string            `json:"state"`
	Error     string            `json:"error,omitempty"`
	Total     int               `json:"total"`
	Upcoming  []BookingResponse `json:"upcoming"`
	Completed []BookingResponse `json:"completed"`
	Cancelled []BookingResponse `json:"cancelled"`
}

type CalendarDayResponse struct {
	Date       string            `json:"date"`
	Day        int               `json:"day"`
	InMonth    bool              `json:"in_month"`
	IsToday    bool              `json:"is_today"`
	IsSelected bool              `json:"is_selected"`
	Bookings   []BookingResponse `json:"bookings"`
}

type CalendarResponse struct {
	Month            string                 `json:"month"`
	Weekdays         []string               `json:"weekdays"`
	Days             []CalendarDayResponse  `json:"days"`
	Selected         string                 `json:"selected,omitempty"`
	SelectedBookings []AdminBookingResponse `json:"selected_bookings"`
}

func BookingToResponse(b entity.Booking) BookingResponse {
	return BookingResponse{
		ID:             b.ID,
		PatientID:      b.PatientID,
		PatientName:    b.PatientName,
		PackageID:      b.PackageID,
		PackageName:    b.PackageName,
		Date:           b.Date,
		TimeSlot:       b.TimeSlotLabel(),
		Status:         b.Status,
		Notes:          b.Notes,
		PatientDetails: b.PatientDetails,
	}
}

func BookingsToResponse(bookings []entity.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingToResponse(b))
	}
	return out
}
