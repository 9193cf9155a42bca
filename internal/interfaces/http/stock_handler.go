package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Restaurante-api/internal/application/dto"
	"github.com/jhoicas/Restaurante-api/internal/application/fulfillment"
	appledger "github.com/jhoicas/Restaurante-api/internal/application/ledger"
)

// StockHandler maneja las operaciones del motor de stock: consumo de pedidos,
// reversos, mermas, ajustes y las consultas del ledger (protegido).
type StockHandler struct {
	fulfillment *fulfillment.UseCase
	ledger      *appledger.Service
}

// NewStockHandler construye el handler.
func NewStockHandler(f *fulfillment.UseCase, l *appledger.Service) *StockHandler {
	return &StockHandler{fulfillment: f, ledger: l}
}

// Consume godoc
// @Summary      Descontar stock de un pedido confirmado
// @Description  Todo-o-nada: si algún insumo o plato no alcanza, responde 400 con todos los faltantes y no cambia nada.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeOrderRequest  true  "Pedido y líneas"
// @Success      200   {object}  dto.FulfillmentResultResponse
// @Failure      400   {object}  dto.InsufficientStockResponse
// @Router       /api/stock/consume [post]
func (h *StockHandler) Consume(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	userID := GetUserID(c)
	if restaurantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ConsumeOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]fulfillment.OrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, fulfillment.OrderLine{MenuItemID: l.MenuItemID, Quantity: l.Quantity})
	}
	res, err := h.fulfillment.Consume(c.Context(), fulfillment.ConsumeInput{
		OrderID:      in.OrderID,
		RestaurantID: restaurantID,
		UserID:       userID,
		Lines:        lines,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toResultResponse(res))
}

// Reverse godoc
// @Summary      Revertir el consumo de un pedido cancelado
// @Description  Registra movimientos return que restauran exactamente las cantidades consumidas. Un pedido ya revertido responde 409.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        orderId  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.FulfillmentResultResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/orders/{orderId}/reverse [post]
func (h *StockHandler) Reverse(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	userID := GetUserID(c)
	if restaurantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	res, err := h.fulfillment.Reverse(c.Context(), c.Params("orderId"), restaurantID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toResultResponse(res))
}

// RecordWaste godoc
// @Summary      Registrar merma
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WasteRequest  true  "Referencia y cantidad (positiva)"
// @Success      200   {object}  dto.FulfillmentResultResponse
// @Failure      400   {object}  dto.InsufficientStockResponse
// @Router       /api/stock/waste [post]
func (h *StockHandler) RecordWaste(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	userID := GetUserID(c)
	if restaurantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.WasteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.fulfillment.RecordWaste(c.Context(), fulfillment.WasteInput{
		RestaurantID:  restaurantID,
		UserID:        userID,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Quantity:      in.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toResultResponse(res))
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  La cantidad lleva signo; un ajuste que dejaría stock negativo responde 400.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "Referencia y cantidad con signo"
// @Success      200   {object}  dto.FulfillmentResultResponse
// @Failure      400   {object}  dto.InsufficientStockResponse
// @Router       /api/stock/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	userID := GetUserID(c)
	if restaurantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.fulfillment.Adjust(c.Context(), fulfillment.AdjustInput{
		RestaurantID:  restaurantID,
		UserID:        userID,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Quantity:      in.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toResultResponse(res))
}

// Movements godoc
// @Summary      Historial de movimientos de una referencia
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        referenceType  path   string  true   "ingredient | menu_item"
// @Param        referenceId    path   string  true   "ID de la referencia"
// @Param        from           query  string  false  "Fecha inicial (RFC3339)"
// @Param        to             query  string  false  "Fecha final (RFC3339)"
// @Success      200  {array}  dto.StockMovementResponse
// @Router       /api/stock/movements/{referenceType}/{referenceId} [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rango de fechas inválido (RFC3339)"})
	}
	list, err := h.ledger.QueryByReference(c.Context(), c.Params("referenceId"), c.Params("referenceType"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.StockMovementResponse{
			ID:              m.ID,
			Type:            m.Type,
			ReferenceType:   m.ReferenceType,
			ReferenceID:     m.ReferenceID,
			Quantity:        m.Quantity,
			Unit:            m.Unit,
			PreviousStock:   m.PreviousStock,
			NewStock:        m.NewStock,
			Cost:            m.Cost,
			OrderID:         m.OrderID,
			PurchaseOrderID: m.PurchaseOrderID,
			SupplierID:      m.SupplierID,
			PerformedBy:     m.PerformedBy,
			CreatedAt:       m.CreatedAt,
		})
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Reconciliar el ledger contra el stock almacenado
// @Description  Pliega el historial completo de la referencia y lo compara con el stock actual.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        referenceType  path  string  true  "ingredient | menu_item"
// @Param        referenceId    path  string  true  "ID de la referencia"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/reconcile/{referenceType}/{referenceId} [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	refType := c.Params("referenceType")
	refID := c.Params("referenceId")
	res, err := h.ledger.Reconcile(c.Context(), refID, refType, restaurantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReconcileResponse{
		ReferenceID:   refID,
		ReferenceType: refType,
		LedgerTotal:   res.LedgerTotal,
		StoredStock:   res.StoredStock,
		Consistent:    res.Consistent,
	})
}

// WasteReport godoc
// @Summary      Reporte de mermas
// @Description  Merma agregada por referencia en el rango de fechas, ordenada por costo.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Fecha inicial (RFC3339)"
// @Param        to    query  string  false  "Fecha final (RFC3339)"
// @Success      200  {array}  dto.WasteReportRowDTO
// @Router       /api/stock/waste-report [get]
func (h *StockHandler) WasteReport(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rango de fechas inválido (RFC3339)"})
	}
	rows, err := h.ledger.WasteReport(c.Context(), restaurantID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.WasteReportRowDTO, 0, len(rows))
	for _, w := range rows {
		out = append(out, dto.WasteReportRowDTO{
			ReferenceID:   w.ReferenceID,
			ReferenceType: w.ReferenceType,
			Name:          w.Name,
			Unit:          w.Unit,
			TotalQuantity: w.TotalQuantity,
			TotalCost:     w.TotalCost,
			Entries:       w.Entries,
		})
	}
	return c.JSON(out)
}

func toResultResponse(res *fulfillment.Result) dto.FulfillmentResultResponse {
	changes := make([]dto.StockChangeDTO, 0, len(res.Changes))
	for _, ch := range res.Changes {
		changes = append(changes, dto.StockChangeDTO{
			ReferenceType: ch.ReferenceType,
			ReferenceID:   ch.ReferenceID,
			Name:          ch.Name,
			PreviousStock: ch.PreviousStock,
			NewStock:      ch.NewStock,
		})
	}
	return dto.FulfillmentResultResponse{OrderID: res.OrderID, Changes: changes}
}

// parseDateRange lee from/to en RFC3339 de la query; ausentes quedan en nil.
func parseDateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if s := c.Query("from"); s != "" {
		t, perr := time.Parse(time.RFC3339, s)
		if perr != nil {
			return nil, nil, perr
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, perr := time.Parse(time.RFC3339, s)
		if perr != nil {
			return nil, nil, perr
		}
		to = &t
	}
	return from, to, nil
}
