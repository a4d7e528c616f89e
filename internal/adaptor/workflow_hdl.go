package adaptor

import (
	"encoding/json"
	"net/http"
	"net/url"

	"siddhaka-portal/internal/dto/request"
	"siddhaka-portal/internal/usecase"
	"siddhaka-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WorkflowHandler serves the booking workflow of one package, addressed by
// the package's display name. An optional ?package_id= pins the package id.
type WorkflowHandler struct {
	log *zap.Logger
}

func NewWorkflowHandler(log *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		log: log.With(zap.String("handler", "workflow")),
	}
}

func (h *WorkflowHandler) workflow(w http.ResponseWriter, r *http.Request) (*usecase.Visitor, *usecase.BookingWorkflow, string, bool) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return nil, nil, "", false
	}

	name, err := url.PathUnescape(chi.URLParam(r, "package"))
	if err != nil || name == "" {
		utils.ResponseBadRequest(w, "Package is required", nil)
		return nil, nil, "", false
	}

	return v, v.Workflow(name, r.URL.Query().Get("package_id")), name, true
}

// Get handles GET /api/workflow/{package}
func (h *WorkflowHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	utils.ResponseSuccess(w, "success", wf.View())
}

// SetMode handles POST /api/workflow/{package}/mode
func (h *WorkflowHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	_, wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	var req request.WorkflowModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := wf.SetMode(usecase.WorkflowMode(req.Mode)); err != nil {
		handleServiceError(w, h.log, err, "set workflow mode")
		return
	}

	utils.ResponseSuccess(w, "success", wf.View())
}

// Login handles POST /api/workflow/{package}/login
func (h *WorkflowHandler) Login(w http.ResponseWriter, r *http.Request) {
	_, wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := wf.SubmitLogin(r.Context(), req.Email, req.Password); err != nil {
		handleServiceError(w, h.log, err, "workflow login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", wf.View())
}

// Register handles POST /api/workflow/{package}/register
func (h *WorkflowHandler) Register(w http.ResponseWriter, r *http.Request) {
	_, wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	form := usecase.RegisterForm{
		RegisterInput:   registerInput(req),
		ConfirmPassword: req.ConfirmPassword,
	}
	if err := wf.SubmitRegister(r.Context(), form); err != nil {
		handleServiceError(w, h.log, err, "workflow register")
		return
	}

	utils.ResponseCreated(w, "Registration successful", wf.View())
}

// SelectDate handles POST /api/workflow/{package}/date
func (h *WorkflowHandler) SelectDate(w http.ResponseWriter, r *http.Request) {
	_, wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	var req request.SelectDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := wf.SelectDate(r.Context(), req.Date); err != nil {
		handleServiceError(w, h.log, err, "select date")
		return
	}

	utils.ResponseSuccess(w, "success", wf.View())
}

// SelectSlot handles POST /api/workflow/{package}/slot
func (h *WorkflowHandler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	_, wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	var req request.SelectSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := wf.SelectSlot(req.TimeSlot); err != nil {
		handleServiceError(w, h.log, err, "select slot")
		return
	}

	utils.ResponseSuccess(w, "success", wf.View())
}

// SetNotes handles POST /api/workflow/{package}/notes
func (h *WorkflowHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	_, wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	var req request.NotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	wf.SetNotes(req.Notes)
	utils.ResponseSuccess(w, "success", wf.View())
}

// Submit handles POST /api/workflow/{package}/submit. A successful submission
// closes the workflow.
func (h *WorkflowHandler) Submit(w http.ResponseWriter, r *http.Request) {
	v, wf, name, ok := h.workflow(w, r)
	if !ok {
		return
	}

	if err := wf.Submit(r.Context()); err != nil {
		handleServiceError(w, h.log, err, "submit booking")
		return
	}

	v.CloseWorkflow(name)
	utils.ResponseCreated(w, "Booking created", wf.View())
}

// Close handles POST /api/workflow/{package}/close
func (h *WorkflowHandler) Close(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFrom(w, r, h.log)
	if !ok {
		return
	}

	name, err := url.PathUnescape(chi.URLParam(r, "package"))
	if err != nil || name == "" {
		utils.ResponseBadRequest(w, "Package is required", nil)
		return
	}

	v.CloseWorkflow(name)
	utils.ResponseSuccess(w, "success", nil)
}
