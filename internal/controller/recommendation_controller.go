package controller

import (
	"iot-console-be/internal/dto"
	"iot-console-be/internal/pkg/serverutils"
	"iot-console-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRecommendationController interface {
	RegisterRoutes(r fiber.Router)
	StartJob(ctx *fiber.Ctx) error
	JobStatus(ctx *fiber.Ctx) error
	View(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type recommendationController struct {
	service service.IRecommendationService
}

func NewRecommendationController(service service.IRecommendationService) IRecommendationController {
	return &recommendationController{service: service}
}

func (c *recommendationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/recommendations/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("jobs", c.StartJob)
	h.Get("jobs/:entityKey", c.JobStatus)
	h.Get("view/:entityKey", c.View)
	h.Get("health", c.Health)
}

func (c *recommendationController) StartJob(ctx *fiber.Ctx) error {
	var req dto.StartJobRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.StartJob(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start job", res))
}

func (c *recommendationController) JobStatus(ctx *fiber.Ctx) error {
	entityKey := ctx.Params("entityKey")

	res := c.service.JobStatus(entityKey)

	return ctx.JSON(serverutils.SuccessResponse("Success get job status", res))
}

func (c *recommendationController) View(ctx *fiber.Ctx) error {
	entityKey := ctx.Params("entityKey")

	res, err := c.service.View(ctx.Context(), entityKey)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get recommendations", res))
}

func (c *recommendationController) Health(ctx *fiber.Ctx) error {
	if err := c.service.Health(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Strategy agent is healthy", nil))
}
