package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pub-order-system/internal/domain"
	"pub-order-system/internal/realtime"
	"pub-order-system/internal/service"
)

type Handler struct {
	svc           *service.OrderService
	registry      *realtime.Registry
	broadcaster   *realtime.Broadcaster
	lg            *zap.Logger
	adminPassword string
	pingDB        func(context.Context) error
}

func New(svc *service.OrderService, registry *realtime.Registry, broadcaster *realtime.Broadcaster, lg *zap.Logger, adminPassword string, pingDB func(context.Context) error) *Handler {
	return &Handler{
		svc:           svc,
		registry:      registry,
		broadcaster:   broadcaster,
		lg:            lg,
		adminPassword: adminPassword,
		pingDB:        pingDB,
	}
}

func (h *Handler) SubmitOrder(c *gin.Context) {
	var req domain.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem(c, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	order, err := h.svc.SubmitOrder(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, domain.SubmitOrderResponse{
		OrderID:       order.ID,
		TotalPrice:    order.TotalPrice,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
	})
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, done, err := h.svc.ConfirmPayment(c.Request.Context(), orderID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !done {
		problem(c, http.StatusConflict, "already_processed", "order not found or payment already confirmed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"done": true, "order": order})
}

func (h *Handler) AcceptItem(c *gin.Context)   { h.itemCommand(c, h.svc.AcceptItem) }
func (h *Handler) CompleteItem(c *gin.Context) { h.itemCommand(c, h.svc.CompleteItem) }
func (h *Handler) ServeItem(c *gin.Context)    { h.itemCommand(c, h.svc.ServeItem) }

func (h *Handler) itemCommand(c *gin.Context, cmd func(context.Context, int64) (*domain.ItemView, bool, error)) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, done, err := cmd(c.Request.Context(), itemID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !done {
		problem(c, http.StatusConflict, "already_processed", "item not found or already advanced")
		return
	}
	c.JSON(http.StatusOK, gin.H{"done": true, "item": view})
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.svc.ListAllOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) ListUnpaidOrders(c *gin.Context) {
	orders, err := h.svc.ListUnpaidOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) ListCompletedOrders(c *gin.Context) {
	orders, err := h.svc.ListCompletedOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) BoothHistory(c *gin.Context) {
	orders, err := h.svc.BoothHistory(c.Request.Context(), c.Param("booth"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ListItems serves the board queries: ?status= filters on one item status,
// no filter returns the kitchen working set.
func (h *Handler) ListItems(c *gin.Context) {
	var (
		items []domain.ItemView
		err   error
	)
	if status := c.Query("status"); status != "" {
		items, err = h.svc.ListItemsByStatus(c.Request.Context(), domain.ItemStatus(status))
	} else {
		items, err = h.svc.ListKitchenItems(c.Request.Context())
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) ListMenu(c *gin.Context) {
	menu, err := h.svc.ListMenu(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menus": menu})
}

// AdminAuth is the original trivial password check; the booth terminals and
// boards are behind venue wifi, not real authentication.
func (h *Handler) AdminAuth(c *gin.Context) {
	var req domain.AdminAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem(c, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if req.Password != h.adminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (h *Handler) Health(c *gin.Context) {
	if h.pingDB != nil {
		if err := h.pingDB(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "connections": h.registry.Len()})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		problem(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		problem(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrAlreadyProcessed):
		problem(c, http.StatusConflict, "already_processed", err.Error())
	default:
		h.lg.Error("command_failed", zap.Error(err))
		problem(c, http.StatusInternalServerError, "store_error", "temporary failure, retry the request")
	}
}

// problem writes the RFC7807-ish error body every endpoint shares.
func problem(c *gin.Context, code int, typ, detail string) {
	c.AbortWithStatusJSON(code, gin.H{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		problem(c, http.StatusBadRequest, "validation_error", "invalid id")
		return 0, false
	}
	return id, true
}
