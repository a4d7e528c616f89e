package wire

import (
	"siddhaka-portal/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireWorkflow - booking dialog per package. Login/register ada di dalam
// dialog, jadi route ini tidak butuh auth middleware.
func wireWorkflow(r chi.Router, workflowHandler *adaptor.WorkflowHandler) {
	r.Route("/api/workflow/{package}", func(r chi.Router) {
		r.Get("/", workflowHandler.Get)
		r.Post("/mode", workflowHandler.SetMode)
		r.Post("/login", workflowHandler.Login)
		r.Post("/register", workflowHandler.Register)
		r.Post("/date", workflowHandler.SelectDate)
		r.Post("/slot", workflowHandler.SelectSlot)
		r.Post("/notes", workflowHandler.SetNotes)
		r.Post("/submit", workflowHandler.Submit)
		r.Post("/close", workflowHandler.Close)
	})
}
