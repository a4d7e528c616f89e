package response

type WorkflowResponse struct {
	PackageName string           `json:"package_name"`
	PackageID   string           `json:"package_id,omitempty"`
	Mode        string           `json:"mode"`
	Date        string           `json:"date,omitempty"`
	TimeSlot    string           `json:"time_slot,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	SlotState   string           `json:"slot_state"`
	Slots       []string         `json:"slots"`
	CanSubmit   bool             `json:"can_submit"`
	Submitting  bool             `json:"submitting"`
	Error       string           `json:"error,omitempty"`
	Patient     *PatientResponse `json:"patient,omitempty"`
}

type SlotsResponse struct {
	PackageID string   `json:"package_id"`
	Date      string   `json:"date"`
	Slots     []string `json:"slots"`
}
