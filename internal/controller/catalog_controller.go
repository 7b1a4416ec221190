package controller

import (
	"iot-console-be/internal/dto"
	"iot-console-be/internal/pkg/serverutils"
	"iot-console-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	GetState(ctx *fiber.Ctx) error
	SetFilter(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	ClearSelection(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
	CustomerDetail(ctx *fiber.Ctx) error
}

type catalogController struct {
	service service.ICatalogService
}

func NewCatalogController(service service.ICatalogService) ICatalogController {
	return &catalogController{service: service}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Use(serverutils.JwtMiddleware)
	// Fiber matches in registration order; the static prefix must come
	// before the :sessionId wildcard.
	h.Get("customers/:customerId", c.CustomerDetail)
	h.Get(":sessionId", c.GetState)
	h.Put(":sessionId/filter", c.SetFilter)
	h.Put(":sessionId/selection", c.Select)
	h.Delete(":sessionId/selection", c.ClearSelection)
	h.Post(":sessionId/refresh", c.Refresh)
}

func (c *catalogController) GetState(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	res, err := c.service.GetState(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get catalog state", res))
}

func (c *catalogController) SetFilter(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	var req dto.SetFilterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.service.SetFilter(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set filter", res))
}

func (c *catalogController) Select(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	var req dto.SelectEntityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Select(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select customer", res))
}

func (c *catalogController) ClearSelection(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	res, err := c.service.ClearSelection(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear selection", res))
}

func (c *catalogController) Refresh(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	res, err := c.service.Refresh(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success refresh catalog", res))
}

func (c *catalogController) CustomerDetail(ctx *fiber.Ctx) error {
	customerId := ctx.Params("customerId")

	res, err := c.service.CustomerDetail(ctx.Context(), customerId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get customer", res))
}
