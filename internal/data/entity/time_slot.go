package entity

// ClinicTimeSlots are the clinic hours a booking slot label is drawn from.
var ClinicTimeSlots = []string{
	"09:00 AM - 10:00 AM",
	"10:00 AM - 11:00 AM",
	"11:00 AM - 12:00 PM",
	"02:00 PM - 03:00 PM",
	"03:00 PM - 04:00 PM",
	"04:00 PM - 05:00 PM",
}

func IsClinicTimeSlot(label string) bool {
	for _, slot := range ClinicTimeSlots {
		if slot == label {
			return true
		}
	}
	return false
}
