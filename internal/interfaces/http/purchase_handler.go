package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Restaurante-api/internal/application/dto"
	apppurchase "github.com/jhoicas/Restaurante-api/internal/application/purchase"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// PurchaseOrderHandler maneja el ciclo de vida de órdenes de compra (protegido).
type PurchaseOrderHandler struct {
	uc *apppurchase.UseCase
}

// NewPurchaseOrderHandler construye el handler.
func NewPurchaseOrderHandler(uc *apppurchase.UseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra (draft)
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "Proveedor y líneas"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	userID := GetUserID(c)
	if restaurantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]apppurchase.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, apppurchase.ItemInput{
			IngredientID: it.IngredientID,
			Quantity:     it.Quantity,
			UnitCost:     it.UnitCost,
		})
	}
	po, err := h.uc.Create(c.Context(), apppurchase.CreateInput{
		RestaurantID: restaurantID,
		UserID:       userID,
		SupplierID:   in.SupplierID,
		Items:        items,
		Tax:          in.Tax,
		Shipping:     in.Shipping,
		Notes:        in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPurchaseOrderResponse(po))
}

// Submit godoc
// @Summary      Enviar la orden a aprobación (draft → pending)
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/submit [post]
func (h *PurchaseOrderHandler) Submit(c *fiber.Ctx) error {
	return h.lifecycle(c, func(id, restaurantID, _ string) (*entity.PurchaseOrder, error) {
		return h.uc.Submit(c.Context(), id, restaurantID)
	})
}

// Approve godoc
// @Summary      Aprobar la orden (pending → approved)
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/approve [post]
func (h *PurchaseOrderHandler) Approve(c *fiber.Ctx) error {
	return h.lifecycle(c, func(id, restaurantID, userID string) (*entity.PurchaseOrder, error) {
		return h.uc.Approve(c.Context(), id, restaurantID, userID)
	})
}

// MarkAsOrdered godoc
// @Summary      Marcar la orden como enviada al proveedor (approved → ordered)
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/ordered [post]
func (h *PurchaseOrderHandler) MarkAsOrdered(c *fiber.Ctx) error {
	return h.lifecycle(c, func(id, restaurantID, _ string) (*entity.PurchaseOrder, error) {
		return h.uc.MarkAsOrdered(c.Context(), id, restaurantID)
	})
}

// Cancel godoc
// @Summary      Cancelar la orden
// @Description  Posible desde cualquier estado no terminal. Lo ya recibido permanece en stock.
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *fiber.Ctx) error {
	return h.lifecycle(c, func(id, restaurantID, _ string) (*entity.PurchaseOrder, error) {
		return h.uc.Cancel(c.Context(), id, restaurantID)
	})
}

func (h *PurchaseOrderHandler) lifecycle(c *fiber.Ctx, fn func(id, restaurantID, userID string) (*entity.PurchaseOrder, error)) error {
	restaurantID := GetRestaurantID(c)
	userID := GetUserID(c)
	if restaurantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	po, err := fn(c.Params("id"), restaurantID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toPurchaseOrderResponse(po))
}

// Receive godoc
// @Summary      Acreditar mercadería recibida
// @Description  El mapa lleva cantidades TOTALES acumuladas; solo se acredita el delta contra la última recepción. Líneas ausentes se asumen completas.
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.ReceivePurchaseOrderRequest  true  "Cantidades recibidas acumuladas por insumo"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	userID := GetUserID(c)
	if restaurantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReceivePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	po, err := h.uc.MarkAsReceived(c.Context(), apppurchase.ReceiveInput{
		ID:                 c.Params("id"),
		RestaurantID:       restaurantID,
		UserID:             userID,
		ReceivedQuantities: in.ReceivedQuantities,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toPurchaseOrderResponse(po))
}

// GetByID godoc
// @Summary      Consultar una orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	po, err := h.uc.Get(c.Context(), c.Params("id"), restaurantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toPurchaseOrderResponse(po))
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado"
// @Param        limit   query  int     false  "Máximo de resultados (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.PurchaseOrderResponse
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.List(c.Context(), restaurantID, c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PurchaseOrderResponse, 0, len(list))
	for _, po := range list {
		out = append(out, toPurchaseOrderResponse(po))
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Descargar el PDF de la orden para el proveedor
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/pdf [get]
func (h *PurchaseOrderHandler) PDF(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	data, err := h.uc.GeneratePDF(c.Context(), c.Params("id"), restaurantID)
	if err != nil {
		return respondError(c, err)
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="orden-compra.pdf"`)
	return c.Send(data)
}

func toPurchaseOrderResponse(po *entity.PurchaseOrder) dto.PurchaseOrderResponse {
	items := make([]dto.PurchaseOrderItemResponse, 0, len(po.Items))
	for _, it := range po.Items {
		items = append(items, dto.PurchaseOrderItemResponse{
			IngredientID:     it.IngredientID,
			Name:             it.Name,
			Unit:             it.Unit,
			Quantity:         it.Quantity,
			UnitCost:         it.UnitCost,
			TotalCost:        it.TotalCost,
			ReceivedQuantity: it.ReceivedQuantity,
		})
	}
	return dto.PurchaseOrderResponse{
		ID:            po.ID,
		OrderNumber:   po.OrderNumber,
		SupplierID:    po.SupplierID,
		Status:        po.Status,
		Items:         items,
		Subtotal:      po.Subtotal,
		Tax:           po.Tax,
		Shipping:      po.Shipping,
		Total:         po.Total,
		PaymentStatus: po.PaymentStatus,
		Notes:         po.Notes,
		ApprovedBy:    po.ApprovedBy,
		ApprovedAt:    po.ApprovedAt,
		ReceivedBy:    po.ReceivedBy,
		ReceivedAt:    po.ReceivedAt,
		CreatedAt:     po.CreatedAt,
		UpdatedAt:     po.UpdatedAt,
	}
}
