package response

import (
	"siddhaka-portal/internal/data/entity"
)

type IdentityResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name,omitempty"`
	Email string          `json:"email,omitempty"`
	Role  entity.UserRole `json:"role"`
}

type PatientResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	DateOfBirth string        `json:"date_of_birth,omitempty"`
	Address     string        `json:"address,omitempty"`
	Country     string        `json:"country,omitempty"`
	Gender      entity.Gender `json:"gender,omitempty"`
}

// CollectionResponse mirrors a cached backend list and its load state.
type CollectionResponse[T any] struct {
	State string `json:"state"`
	Items []T    `json:"items"`
	Error string `json:"error,omitempty"`
}

type SessionResponse struct {
	VisitorID     string                              `json:"visitor_id"`
	Authenticated bool                                `json:"authenticated"`
	Identity      *IdentityResponse                   `json:"identity,omitempty"`
	Patient       *PatientResponse                    `json:"patient,omitempty"`
	Bookings      CollectionResponse[BookingResponse] `json:"bookings"`
	Products      CollectionResponse[ProductResponse] `json:"products"`
	Packages      CollectionResponse[PackageResponse] `json:"packages"`
}

type LogoutResponse struct {
	Redirect string `json:"redirect"`
}

// Helper converters
func IdentityToResponse(identity *entity.Identity) *IdentityResponse {
	if identity == nil {
		return nil
	}
	return &IdentityResponse{
		ID:    identity.ID,
		Name:  identity.Name,
		Email: identity.Email,
		Role:  identity.Role,
	}
}

func PatientToResponse(patient *entity.Patient) *PatientResponse {
	if patient == nil {
		return nil
	}
	return &PatientResponse{
		ID:          patient.ID,
		Name:        patient.Name,
		Email:       patient.Email,
		Phone:       patient.Phone,
		DateOfBirth: patient.DateOfBirth,
		Address:     patient.Address,
		Country:     patient.Country,
		Gender:      patient.Gender,
	}
}
