package handler

import (
	"net/http"
	"procomp-service/config"
	"procomp-service/internal/cache"
	"procomp-service/internal/middleware"
	"procomp-service/internal/model"
	"procomp-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service service.AdminService
	store   cache.SessionStore
	cfg     config.SessionConfig
}

func NewAdminHandler(service service.AdminService, store cache.SessionStore, cfg config.SessionConfig) *AdminHandler {
	return &AdminHandler{service: service, store: store, cfg: cfg}
}

func (h *AdminHandler) RegisterRoutes(r *gin.Engine, requireAdmin gin.HandlerFunc) {
	router := r.Group("/api/admin", requireAdmin)
	{
		router.GET("orders", h.ListOrders)
		router.POST("orders/:orderId/status", h.UpdateOrderStatus)
		router.POST("messages", h.SendMessage)
		router.GET("users", h.ListUsers)
		router.POST("users/:userId/role", h.UpdateUserRole)
		router.DELETE("users/:userId", h.DeleteUser)
		router.POST("commands", h.RunCommand)
		router.GET("export/orders", h.ExportOrders)
	}
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c)
	if err != nil {
		respondError(c, err, "ListOrders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := ParamID(c, "orderId")
	if !ok {
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	if err := h.service.UpdateOrderStatus(c, orderID, req); err != nil {
		respondError(c, err, "UpdateOrderStatus")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Státusz frissítve."})
}

func (h *AdminHandler) SendMessage(c *gin.Context) {
	var req model.SendMessageRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	if err := h.service.SendMessage(c, req); err != nil {
		respondError(c, err, "SendMessage")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Üzenet elküldve."})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c)
	if err != nil {
		respondError(c, err, "ListUsers")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	userID, ok := ParamID(c, "userId")
	if !ok {
		return
	}

	var req model.UpdateRoleRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	if err := h.service.SetUserRole(c, userID, req.IsAdmin); err != nil {
		respondError(c, err, "UpdateUserRole")
		return
	}

	// 修改自己的權限時同步會話角色
	sess := middleware.CurrentSession(c)
	if sess != nil && !sess.Operator && sess.UserID == userID {
		sess.Role = model.RoleUser
		if req.IsAdmin {
			sess.Role = model.RoleAdmin
		}
		if err := middleware.SaveSession(c, h.store, h.cfg, sess); err != nil {
			respondError(c, err, "UpdateUserRole")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Jogosultság frissítve."})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, ok := ParamID(c, "userId")
	if !ok {
		return
	}

	actorID := 0
	if sess := middleware.CurrentSession(c); sess != nil && !sess.Operator {
		actorID = sess.UserID
	}

	if err := h.service.DeleteUser(c, actorID, userID); err != nil {
		respondError(c, err, "DeleteUser")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Felhasználó törölve."})
}

func (h *AdminHandler) RunCommand(c *gin.Context) {
	var req model.CommandRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	result, err := h.service.RunCommand(c, req.Command)
	if err != nil {
		respondError(c, err, "RunCommand")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) ExportOrders(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	filename, err := service.ExportFilename(format)
	if err != nil {
		respondError(c, err, "ExportOrders")
		return
	}

	orders, err := h.service.ListOrders(c)
	if err != nil {
		respondError(c, err, "ExportOrders")
		return
	}

	if format == "xlsx" {
		f, err := service.BuildOrdersWorkbook(orders)
		if err != nil {
			respondError(c, err, "ExportOrders")
			return
		}
		defer f.Close()

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Transfer-Encoding", "binary")
		if err := f.Write(c.Writer); err != nil {
			respondError(c, err, "ExportOrders")
		}
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
	if err := service.WriteOrdersCSV(c.Writer, orders); err != nil {
		respondError(c, err, "ExportOrders")
	}
}
