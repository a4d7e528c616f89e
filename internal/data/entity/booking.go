package entity

import (
	"encoding/json"
	"fmt"
)

type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "pending"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusCompleted   BookingStatus = "completed"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusRescheduled BookingStatus = "rescheduled"
)

// BookingStatuses is the closed set of statuses a booking can carry.
var BookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
	BookingStatusCancelled,
	BookingStatusRescheduled,
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:     {BookingStatusConfirmed, BookingStatusCancelled, BookingStatusRescheduled},
	BookingStatusConfirmed:   {BookingStatusCompleted, BookingStatusCancelled, BookingStatusRescheduled},
	BookingStatusRescheduled: {BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled, BookingStatusRescheduled},
	BookingStatusCompleted:   {},
	BookingStatusCancelled:   {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// IsFinal reports whether no further transition is possible.
func (s BookingStatus) IsFinal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s *BookingStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("booking status: %w", err)
	}

	status := BookingStatus(raw)
	if !status.IsValid() {
		return fmt.Errorf("invalid booking status %q", raw)
	}

	*s = status
	return nil
}

// PatientDetails is the contact snapshot copied into a booking at creation time.
type PatientDetails struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Country string `json:"country,omitempty"`
}

type Booking struct {
	Base
	PatientID      string          `json:"patientId"`
	PatientName    string          `json:"patientName"`
	PackageID      string          `json:"packageId"`
	PackageName    string          `json:"packageName"`
	Date           string          `json:"date"`
	TimeSlot       string          `json:"timeSlot,omitempty"`
	Status         BookingStatus   `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	PatientDetails *PatientDetails `json:"patientDetails,omitempty"`
}

// TimeSlotLabel returns the slot or a placeholder when none is assigned yet.
func (b *Booking) TimeSlotLabel() string {
	if b.TimeSlot == "" {
		return "Not specified"
	}
	return b.TimeSlot
}

// Validate checks the invariants every booking read from the backend must hold.
func (b *Booking) Validate() error {
	if b.PackageID == "" {
		return fmt.Errorf("booking %s has no package reference", b.ID)
	}
	if b.Date == "" {
		return fmt.Errorf("booking %s has no date", b.ID)
	}
	if !b.Status.IsValid() {
		return fmt.Errorf("booking %s has invalid status %q", b.ID, b.Status)
	}
	return nil
}

// BookingDraft is the payload of a new booking.
type BookingDraft struct {
	PackageID      string          `json:"packageId"`
	Date           string          `json:"date"`
	TimeSlot       string          `json:"timeSlot"`
	Notes          string          `json:"notes,omitempty"`
	PatientDetails *PatientDetails `json:"patientDetails,omitempty"`
}

// BookingPatch is a partial booking update; nil fields are left untouched.
type BookingPatch struct {
	Date     *string        `json:"date,omitempty"`
	TimeSlot *string        `json:"timeSlot,omitempty"`
	Status   *BookingStatus `json:"status,omitempty"`
	Notes    *string        `json:"notes,omitempty"`
}

func StatusPatch(status BookingStatus) BookingPatch {
	return BookingPatch{Status: &status}
}
