package approval

import (
	"trackdoc/internal/config"
	"trackdoc/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ApprovalApi struct {
	controller *ApprovalController
	config     *config.Config
}

func NewApprovalApi(controller *ApprovalController, cfg *config.Config) *ApprovalApi {
	return &ApprovalApi{
		controller: controller,
		config:     cfg,
	}
}

// Setup registers the decision routes. Eligibility is enforced by the
// service against the step's approver lists, not by a role permission.
func (h *ApprovalApi) Setup(app *fiber.App) {
	docs := app.Group("/api/documents", middleware.AuthMiddleware(h.config.SkipAuth))

	docs.Post("/:id/approve", h.controller.ApproveDocument)
	docs.Post("/:id/reject", h.controller.RejectDocument)
	docs.Get("/:id/approval", h.controller.GetApprovalProcess)
	docs.Get("/:id/approval/history", h.controller.GetApprovalHistory)
	docs.Get("/:id/can-approve", h.controller.CanApprove)
}
