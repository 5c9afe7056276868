package handler

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "procomp-service/pkg/app_errors"
	"procomp-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  "validation",
		})
		return err
	}
	return nil
}

// ParamID 解析路徑中的數字 ID
func ParamID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
			"code":  "validation",
		})
		return 0, false
	}
	return id, true
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// 順序有意義：越具體的放越前面
var errorMappings = []errorMapping{
	{apperrors.ErrInvalidInput, http.StatusBadRequest, "validation", "Invalid input"},
	{apperrors.ErrInvalidStatus, http.StatusBadRequest, "validation", "Érvénytelen státusz."},
	{apperrors.ErrInvalidVerificationCode, http.StatusBadRequest, "invalid_code", "Hibás kód!"},
	{apperrors.ErrSelfDelete, http.StatusBadRequest, "self_delete", "Saját fiók nem törölhető."},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Hibás e-mail vagy jelszó!"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Bejelentkezés szükséges."},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "Nincs jogosultság a művelethez."},
	{apperrors.ErrInvalidAcceptToken, http.StatusForbidden, "invalid_token", "Érvénytelen elfogadási link."},
	{apperrors.ErrOrderLocked, http.StatusForbidden, "order_locked", "A rendelés már nem törölhető (2 órán túl)!"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, "not_found", "Felhasználó nem található."},
	{apperrors.ErrOperatorNotFound, http.StatusNotFound, "not_found", "Felhasználó nem található."},
	{apperrors.ErrTicketNotFound, http.StatusNotFound, "not_found", "Rendelés nem található."},
	{apperrors.ErrQuoteNotFound, http.StatusNotFound, "not_found", "Feladat nem található."},
	{apperrors.ErrEmailTaken, http.StatusConflict, "email_taken", "Ez az e-mail cím már regisztrálva van."},
	{apperrors.ErrQuoteActive, http.StatusConflict, "quote_active", "A feladathoz már tartozik aktív árajánlat."},
	{apperrors.ErrQuoteAlreadyResolved, http.StatusConflict, "already_resolved", "Az árajánlat már le van zárva."},
	{apperrors.ErrQuoteExpired, http.StatusGone, "expired", "Az árajánlat lejárt."},
	{apperrors.ErrIdentifierExhausted, http.StatusServiceUnavailable, "retry", "Próbálja újra később."},
}

// respondError 將錯誤轉為 HTTP 響應並記錄
func respondError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		log.Warn("Validation failed", zap.String("field", validationErr.Field))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"code":  "validation",
			"field": validationErr.Field,
		})
		return
	}

	var dependencyErr *apperrors.DependencyError
	if errors.As(err, &dependencyErr) {
		log.Error("Dependency failure", zap.String("stage", dependencyErr.Stage), zap.Int("ticket_id", dependencyErr.TicketID))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "Átmeneti hiba, próbálja újra.",
			"code":      "dependency_failure",
			"stage":     dependencyErr.Stage,
			"retryable": true,
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				log.Error(m.message)
			} else {
				log.Warn(m.message)
			}
			c.JSON(m.status, gin.H{
				"error": m.message,
				"code":  m.code,
			})
			return
		}
	}

	log.Error("Unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
		"code":  "internal",
	})
}
