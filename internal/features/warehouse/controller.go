package warehouse

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type WarehouseController struct {
	WarehouseService WarehouseService
}

func NewWarehouseController(warehouseService WarehouseService) *WarehouseController {
	return &WarehouseController{WarehouseService: warehouseService}
}

// Export godoc
// @Summary Push the approved document register to the warehouse
// @Tags warehouse
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/warehouse/export [post]
func (c *WarehouseController) Export(ctx *fiber.Ctx) error {
	count, err := c.WarehouseService.Export(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"message":   "Export completed",
		"processed": count,
	})
}

// ListLogs godoc
// @Summary List warehouse export runs
// @Tags warehouse
// @Produce json
// @Param limit query int false "Max entries" default(20)
// @Success 200 {array} ExportLog
// @Router /api/warehouse/logs [get]
func (c *WarehouseController) ListLogs(ctx *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(ctx.Query("limit", "20"), 10, 64)

	logs, err := c.WarehouseService.ListLogs(ctx.Context(), limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(logs)
}
