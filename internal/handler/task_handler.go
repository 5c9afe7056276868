package handler

import (
	"net/http"
	"procomp-service/internal/middleware"
	"procomp-service/internal/model"
	"procomp-service/internal/service"
	apperrors "procomp-service/pkg/app_errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TaskHandler 員工任務板與報價流程
type TaskHandler struct {
	service service.QuoteService
}

func NewTaskHandler(service service.QuoteService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) RegisterRoutes(r *gin.Engine) {
	// 客戶從郵件點擊，不需要登入；由簽章 token 保護
	r.GET("/api/users/tasks/accept/:taskId/:userId", h.Accept)

	router := r.Group("/api/users/tasks", middleware.RequireRole(model.RoleOperator, model.RoleAdmin))
	{
		router.GET("", h.List)
		router.POST("offer", h.Offer)
		router.POST("reject", h.Reject)
		router.POST("complete", h.Complete)
	}
}

// TaskIDRequest 只帶 taskId 的請求
type TaskIDRequest struct {
	TaskID int `json:"taskId"`
}

func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.service.ListTasks(c)
	if err != nil {
		respondError(c, err, "ListTasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Offer(c *gin.Context) {
	var req model.IssueQuoteRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	resp, err := h.service.Issue(c, req)
	if err != nil {
		respondError(c, err, "Offer")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Accept(c *gin.Context) {
	taskID, ok := ParamID(c, "taskId")
	if !ok {
		return
	}
	userID, ok := ParamID(c, "userId")
	if !ok {
		return
	}

	token := c.Query("token")
	if token == "" {
		respondError(c, apperrors.ErrInvalidAcceptToken, "Accept")
		return
	}

	result, err := h.service.Accept(c, taskID, userID, token)
	if err != nil {
		respondError(c, err, "Accept")
		return
	}

	if result.AlreadyAccepted {
		c.String(http.StatusOK, "Az árajánlatot már elfogadta, a munka folyamatban.")
		return
	}
	c.String(http.StatusOK, "Árajánlat elfogadva, a munka folyamatban.")
}

func (h *TaskHandler) Reject(c *gin.Context) {
	var req TaskIDRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if req.TaskID <= 0 {
		respondError(c, apperrors.NewValidationError("taskId", "is required"), "Reject")
		return
	}

	transitioned, err := h.service.Reject(c, req.TaskID, true)
	if err != nil {
		respondError(c, err, "Reject")
		return
	}

	if !transitioned {
		c.JSON(http.StatusOK, gin.H{
			"message":      "Az árajánlat már le van zárva vagy elfogadták.",
			"transitioned": false,
			"status":       "already_resolved",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Feladat elutasítva",
		"transitioned": true,
	})
}

func (h *TaskHandler) Complete(c *gin.Context) {
	taskID, err := completeTaskID(c)
	if err != nil {
		respondError(c, err, "Complete")
		return
	}

	result, err := h.service.Complete(c, taskID)
	if err != nil {
		respondError(c, err, "Complete")
		return
	}
	c.JSON(http.StatusOK, result)
}

// completeTaskID taskId 可以在 body 或 query 中
func completeTaskID(c *gin.Context) (int, error) {
	var req TaskIDRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return 0, apperrors.NewValidationError("taskId", "invalid request body")
		}
	}
	if req.TaskID > 0 {
		return req.TaskID, nil
	}

	if raw := c.Query("taskId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, apperrors.NewValidationError("taskId", "is required")
}

