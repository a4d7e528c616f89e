package request

import (
	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/pkg/utils"

	"github.com/go-playground/validator/v10"
)

func init() {
	utils.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
		return entity.IsClinicTimeSlot(fl.Field().String())
	})
	utils.RegisterValidation("bookingstatus", func(fl validator.FieldLevel) bool {
		return entity.BookingStatus(fl.Field().String()).IsValid()
	})
}

type WorkflowModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=login register"`
}

// SelectDateRequest carries the date only; emptiness is reported by the
// workflow with its own message.
type SelectDateRequest struct {
	Date string `json:"date"`
}

type SelectSlotRequest struct {
	TimeSlot string `json:"time_slot"`
}

type NotesRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,bookingstatus,oneof=confirmed completed cancelled"`
}

// RescheduleRequest leaves date unchecked here; the console rejects an empty
// date before any backend call.
type RescheduleRequest struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot" validate:"omitempty,timeslot"`
}

type BookingFilterRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=all pending confirmed completed cancelled rescheduled"`
	Search string `json:"search" validate:"max=100"`
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	PaginatedRequest
}

type SlotsRequest struct {
	PackageID string `json:"package_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
}
