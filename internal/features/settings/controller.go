package settings

import (
	"github.com/gofiber/fiber/v2"
)

type SettingsController struct {
	Service SettingsService
}

func NewSettingsController(service SettingsService) *SettingsController {
	return &SettingsController{
		Service: service,
	}
}

// GetEmailConfig godoc
// @Summary Get email configuration
// @Tags settings
// @Produce json
// @Success 200 {object} EmailConfig
// @Router /api/settings/email [get]
func (c *SettingsController) GetEmailConfig(ctx *fiber.Ctx) error {
	config, err := c.Service.GetEmailConfig(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if config == nil {
		return ctx.JSON(fiber.Map{})
	}
	return ctx.JSON(config)
}

// UpdateEmailConfig godoc
// @Summary Update email configuration
// @Tags settings
// @Accept json
// @Produce json
// @Param config body EmailConfig true "Email configuration"
// @Success 200 {object} map[string]interface{}
// @Router /api/settings/email [put]
func (c *SettingsController) UpdateEmailConfig(ctx *fiber.Ctx) error {
	var config EmailConfig
	if err := ctx.BodyParser(&config); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateEmailConfig(ctx.UserContext(), config); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"message": "Settings updated successfully"})
}

// GetGeneralConfig godoc
// @Summary Get general configuration
// @Tags settings
// @Produce json
// @Success 200 {object} GeneralConfig
// @Router /api/settings/general [get]
func (c *SettingsController) GetGeneralConfig(ctx *fiber.Ctx) error {
	config, err := c.Service.GetGeneralConfig(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(config)
}

// UpdateGeneralConfig godoc
// @Summary Update general configuration
// @Tags settings
// @Accept json
// @Produce json
// @Param config body GeneralConfig true "General configuration"
// @Success 200 {object} map[string]interface{}
// @Router /api/settings/general [put]
func (c *SettingsController) UpdateGeneralConfig(ctx *fiber.Ctx) error {
	var config GeneralConfig
	if err := ctx.BodyParser(&config); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateGeneralConfig(ctx.UserContext(), config); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"message": "Settings updated successfully"})
}

// GetWarehouseConfig godoc
// @Summary Get warehouse export configuration
// @Tags settings
// @Produce json
// @Success 200 {object} WarehouseConfig
// @Router /api/settings/warehouse [get]
func (c *SettingsController) GetWarehouseConfig(ctx *fiber.Ctx) error {
	config, err := c.Service.GetWarehouseConfig(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(config)
}

// UpdateWarehouseConfig godoc
// @Summary Update warehouse export configuration
// @Tags settings
// @Accept json
// @Produce json
// @Param config body WarehouseConfig true "Warehouse configuration"
// @Success 200 {object} map[string]interface{}
// @Router /api/settings/warehouse [put]
func (c *SettingsController) UpdateWarehouseConfig(ctx *fiber.Ctx) error {
	var config WarehouseConfig
	if err := ctx.BodyParser(&config); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateWarehouseConfig(ctx.UserContext(), config); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"message": "Settings updated successfully"})
}
