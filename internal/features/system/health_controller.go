package system

import (
	"trackdoc/internal/database"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

type HealthController struct {
	DB *database.MongodbDB
}

func NewHealthController(db *database.MongodbDB) *HealthController {
	return &HealthController{DB: db}
}

// Health godoc
// @Summary Service health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/health [get]
func (c *HealthController) Health(ctx *fiber.Ctx) error {
	if err := c.DB.DB.RunCommand(ctx.Context(), bson.M{"ping": 1}).Err(); err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"database": err.Error(),
		})
	}

	return ctx.JSON(fiber.Map{"status": "ok"})
}
