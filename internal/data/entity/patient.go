package entity

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Patient struct {
	Base
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Address     string `json:"address,omitempty"`
	Country     string `json:"country,omitempty"`
	Gender      Gender `json:"gender,omitempty"`
}

// ContactSnapshot captures the fields copied onto a new booking.
func (p *Patient) ContactSnapshot() *PatientDetails {
	if p == nil {
		return nil
	}
	return &PatientDetails{
		Email:   p.Email,
		Phone:   p.Phone,
		Gender:  string(p.Gender),
		Country: p.Country,
	}
}
