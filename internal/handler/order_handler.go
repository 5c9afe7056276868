package handler

import (
	"net/http"
	"procomp-service/internal/middleware"
	"procomp-service/internal/model"
	"procomp-service/internal/service"
	"time"

	"github.com/gin-gonic/gin"
)

// OrderHandler 客戶送修單 (kosár)
type OrderHandler struct {
	service service.TicketService
}

func NewOrderHandler(service service.TicketService) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/users", middleware.RequireCustomer())
	{
		router.POST("orders", h.CreateOrder)
		router.GET("orders", h.GetOrders)
		router.DELETE("orders/:id", h.DeleteOrder)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req model.CreateTicketRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	sess := middleware.CurrentSession(c)
	ticket, err := h.service.Create(c, sess.UserID, req)
	if err != nil {
		respondError(c, err, "CreateOrder")
		return
	}

	c.JSON(http.StatusCreated, model.TicketResponse{
		ID:             ticket.ID,
		ShippingMethod: ticket.ShippingMethod,
		PaymentMethod:  ticket.PaymentMethod,
		Description:    ticket.Description,
		CreatedAt:      ticket.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	tickets, err := h.service.ListByUser(c, sess.UserID)
	if err != nil {
		respondError(c, err, "GetOrders")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	sess := middleware.CurrentSession(c)
	if err := h.service.Delete(c, sess.UserID, id); err != nil {
		respondError(c, err, "DeleteOrder")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rendelés sikeresen törölve!"})
}
