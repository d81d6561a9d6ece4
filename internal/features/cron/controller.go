package cron_feature

import (
	"trackdoc/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CronController struct {
	Service CronService
}

func NewCronController(service CronService) *CronController {
	return &CronController{
		Service: service,
	}
}

func callerID(c *fiber.Ctx) primitive.ObjectID {
	if claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims); ok {
		if oid, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			return oid
		}
	}
	return primitive.NilObjectID
}

// CreateCronJob godoc
// @Summary Create a scheduled job
// @Tags scheduler
// @Accept json
// @Produce json
// @Param job body CronJob true "Cron Job"
// @Success 201 {object} CronJob
// @Failure 400 {object} map[string]interface{}
// @Router /api/cron-jobs [post]
func (c *CronController) CreateCronJob(ctx *fiber.Ctx) error {
	var cronJob CronJob
	if err := ctx.BodyParser(&cronJob); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	cronJob.CreatedBy = callerID(ctx)

	if err := c.Service.CreateCronJob(ctx.Context(), &cronJob); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(cronJob)
}

// ListCronJobs godoc
// @Summary List scheduled jobs
// @Tags scheduler
// @Produce json
// @Param active query boolean false "Filter by active status"
// @Param job_type query string false "Filter by job type"
// @Success 200 {array} CronJob
// @Router /api/cron-jobs [get]
func (c *CronController) ListCronJobs(ctx *fiber.Ctx) error {
	filter := make(map[string]interface{})

	if active := ctx.Query("active"); active != "" {
		filter["active"] = active == "true"
	}
	if jobType := ctx.Query("job_type"); jobType != "" {
		filter["job_type"] = jobType
	}

	cronJobs, err := c.Service.ListCronJobs(ctx.Context(), filter)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(cronJobs)
}

// GetCronJob godoc
// @Summary Get a scheduled job
// @Tags scheduler
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} CronJob
// @Failure 404 {object} map[string]interface{}
// @Router /api/cron-jobs/{id} [get]
func (c *CronController) GetCronJob(ctx *fiber.Ctx) error {
	cronJob, err := c.Service.GetCronJob(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if cronJob == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cron job not found"})
	}

	return ctx.JSON(cronJob)
}

// UpdateCronJob godoc
// @Summary Update a scheduled job
// @Tags scheduler
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param job body CronJob true "Cron Job"
// @Success 200 {object} CronJob
// @Failure 400 {object} map[string]interface{}
// @Router /api/cron-jobs/{id} [put]
func (c *CronController) UpdateCronJob(ctx *fiber.Ctx) error {
	var cronJob CronJob
	if err := ctx.BodyParser(&cronJob); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	oid, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid job ID"})
	}
	cronJob.ID = oid

	if err := c.Service.UpdateCronJob(ctx.Context(), &cronJob); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(cronJob)
}

// DeleteCronJob godoc
// @Summary Delete a scheduled job
// @Tags scheduler
// @Param id path string true "Job ID"
// @Success 204 {object} nil
// @Router /api/cron-jobs/{id} [delete]
func (c *CronController) DeleteCronJob(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteCronJob(ctx.Context(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// ExecuteCronJob godoc
// @Summary Run a scheduled job now
// @Tags scheduler
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/cron-jobs/{id}/execute [post]
func (c *CronController) ExecuteCronJob(ctx *fiber.Ctx) error {
	if err := c.Service.ExecuteCronJob(ctx.Context(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"message": "Cron job executed successfully"})
}

// GetCronJobLogs godoc
// @Summary Get execution logs for a scheduled job
// @Tags scheduler
// @Produce json
// @Param id path string true "Job ID"
// @Param limit query int false "Max logs to return"
// @Success 200 {array} CronJobLog
// @Router /api/cron-jobs/{id}/logs [get]
func (c *CronController) GetCronJobLogs(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 50)

	logs, err := c.Service.GetCronJobLogs(ctx.Context(), ctx.Params("id"), limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(logs)
}
