package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trackdoc/pkg/utils"
)

type DashboardController struct {
	DashboardService DashboardService
}

func NewDashboardController(dashboardService DashboardService) *DashboardController {
	return &DashboardController{
		DashboardService: dashboardService,
	}
}

func callerID(ctx *fiber.Ctx) (primitive.ObjectID, error) {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
	return primitive.ObjectIDFromHex(claims.UserID)
}

// CreateDashboard godoc
// @Summary Create a dashboard configuration
// @Tags dashboard
// @Accept json
// @Produce json
// @Param dashboard body DashboardConfig true "Dashboard Config"
// @Success 201 {object} DashboardConfig
// @Router /api/dashboards [post]
func (ctrl *DashboardController) CreateDashboard(ctx *fiber.Ctx) error {
	var dashboard DashboardConfig
	if err := ctx.BodyParser(&dashboard); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, err := callerID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := ctrl.DashboardService.CreateDashboard(ctx.UserContext(), &dashboard, userID); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(dashboard)
}

// ListDashboards godoc
// @Summary List the caller's dashboards
// @Tags dashboard
// @Produce json
// @Success 200 {array} DashboardConfig
// @Router /api/dashboards [get]
func (ctrl *DashboardController) ListDashboards(ctx *fiber.Ctx) error {
	userID, err := callerID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	dashboards, err := ctrl.DashboardService.ListUserDashboards(ctx.UserContext(), userID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(dashboards)
}

// GetDashboard godoc
// @Summary Get a dashboard by ID
// @Tags dashboard
// @Produce json
// @Param id path string true "Dashboard ID"
// @Success 200 {object} DashboardConfig
// @Router /api/dashboards/{id} [get]
func (ctrl *DashboardController) GetDashboard(ctx *fiber.Ctx) error {
	userID, err := callerID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	dashboard, err := ctrl.DashboardService.GetDashboard(ctx.UserContext(), ctx.Params("id"), userID)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(dashboard)
}

// UpdateDashboard godoc
// @Summary Update a dashboard
// @Tags dashboard
// @Accept json
// @Param id path string true "Dashboard ID"
// @Param dashboard body DashboardConfig true "Dashboard Config"
// @Success 200 {object} map[string]string
// @Router /api/dashboards/{id} [put]
func (ctrl *DashboardController) UpdateDashboard(ctx *fiber.Ctx) error {
	var dashboard DashboardConfig
	if err := ctx.BodyParser(&dashboard); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, err := callerID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := ctrl.DashboardService.UpdateDashboard(ctx.UserContext(), ctx.Params("id"), &dashboard, userID); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Dashboard updated successfully"})
}

// DeleteDashboard godoc
// @Summary Delete a dashboard
// @Tags dashboard
// @Param id path string true "Dashboard ID"
// @Success 200 {object} map[string]string
// @Router /api/dashboards/{id} [delete]
func (ctrl *DashboardController) DeleteDashboard(ctx *fiber.Ctx) error {
	userID, err := callerID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := ctrl.DashboardService.DeleteDashboard(ctx.UserContext(), ctx.Params("id"), userID); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Dashboard deleted successfully"})
}

// SetDefaultDashboard godoc
// @Summary Mark a dashboard as the caller's default
// @Tags dashboard
// @Param id path string true "Dashboard ID"
// @Success 200 {object} map[string]string
// @Router /api/dashboards/{id}/default [put]
func (ctrl *DashboardController) SetDefaultDashboard(ctx *fiber.Ctx) error {
	userID, err := callerID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := ctrl.DashboardService.SetDefaultDashboard(ctx.UserContext(), ctx.Params("id"), userID); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Default dashboard updated"})
}

// GetOverview godoc
// @Summary Aggregate document counts for the overview widgets
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/dashboards/overview [get]
func (ctrl *DashboardController) GetOverview(ctx *fiber.Ctx) error {
	userID, err := callerID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	stats, awaiting, err := ctrl.DashboardService.GetOverview(ctx.UserContext(), userID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{
		"stats":           stats,
		"awaitingMyApproval": awaiting,
	})
}
