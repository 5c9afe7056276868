package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"procomp-service/internal/cache"
	"procomp-service/internal/handler"
	"procomp-service/internal/mocks/services"
	"procomp-service/internal/model"
	apperrors "procomp-service/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTaskTestRouter(t *testing.T, mockService *services.QuoteServiceMock) (*gin.Engine, cache.SessionStore) {
	router, store := newTestRouter(t)
	handler.NewTaskHandler(mockService).RegisterRoutes(router)
	return router, store
}

func offerBody() map[string]interface{} {
	return map[string]interface{}{
		"taskId":   42,
		"userId":   7,
		"munkaora": 2,
		"munkadij": "5000",
		"anyagdij": 1000,
	}
}

func TestTaskHandler_Offer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, store := setupTaskTestRouter(t, mockService)

		mockService.On("Issue", mock.Anything, mock.MatchedBy(func(req model.IssueQuoteRequest) bool {
			return req.TicketID == 42 && req.CustomerID == 7 &&
				req.LaborHours == "2" && req.LaborRate == "5000" && req.MaterialCost == "1000"
		})).Return(&model.IssueQuoteResponse{
			Message:    "Árajánlat elküldve PDF-ben",
			Identifier: "PC-20250301-1234",
			Net:        decimal.NewFromInt(11000),
			Tax:        decimal.NewFromInt(2970),
			Gross:      decimal.NewFromInt(13970),
		}, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/users/tasks/offer", offerBody())
		loginAs(t, store, req, operatorSession(model.RoleOperator))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w.Body)
		assert.Equal(t, "PC-20250301-1234", body["azonosito"])
		assert.Equal(t, "13970", body["brutto"])
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - not logged in", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, _ := setupTaskTestRouter(t, mockService)

		req := createJSONHTTPRequest("POST", "/api/users/tasks/offer", offerBody())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("Failed - customer session", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, store := setupTaskTestRouter(t, mockService)

		req := createJSONHTTPRequest("POST", "/api/users/tasks/offer", offerBody())
		loginAs(t, store, req, customerSession(7))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Failed - validation names the field", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, store := setupTaskTestRouter(t, mockService)
		mockService.On("Issue", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("labor_hours", "is not a number")).Once()

		req := createJSONHTTPRequest("POST", "/api/users/tasks/offer", offerBody())
		loginAs(t, store, req, operatorSession(model.RoleAdmin))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "labor_hours", decodeBody(t, w.Body)["field"])
	})

	t.Run("Failed - dependency failure is retryable", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, store := setupTaskTestRouter(t, mockService)
		mockService.On("Issue", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewDependencyError(apperrors.StageNotify, 42, errors.New("smtp"))).Once()

		req := createJSONHTTPRequest("POST", "/api/users/tasks/offer", offerBody())
		loginAs(t, store, req, operatorSession(model.RoleOperator))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		body := decodeBody(t, w.Body)
		assert.Equal(t, "notify", body["stage"])
		assert.Equal(t, true, body["retryable"])
	})

	t.Run("Failed - live quote exists", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, store := setupTaskTestRouter(t, mockService)
		mockService.On("Issue", mock.Anything, mock.Anything).Return(nil, apperrors.ErrQuoteActive).Once()

		req := createJSONHTTPRequest("POST", "/api/users/tasks/offer", offerBody())
		loginAs(t, store, req, operatorSession(model.RoleOperator))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestTaskHandler_Accept(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, _ := setupTaskTestRouter(t, mockService)
		mockService.On("Accept", mock.Anything, 42, 7, "tok").
			Return(&model.AcceptResult{Identifier: "PC-20250301-1234", State: model.QuoteStateProcess}, nil).Once()

		req, _ := http.NewRequest("GET", "/api/users/tasks/accept/42/7?token=tok", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Árajánlat elfogadva, a munka folyamatban.", w.Body.String())
	})

	t.Run("Already accepted", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, _ := setupTaskTestRouter(t, mockService)
		mockService.On("Accept", mock.Anything, 42, 7, "tok").
			Return(&model.AcceptResult{State: model.QuoteStateProcess, AlreadyAccepted: true}, nil).Once()

		req, _ := http.NewRequest("GET", "/api/users/tasks/accept/42/7?token=tok", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.Contains(w.Body.String(), "már elfogadta"))
	})

	t.Run("Failed - missing token", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, _ := setupTaskTestRouter(t, mockService)

		req, _ := http.NewRequest("GET", "/api/users/tasks/accept/42/7", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockService.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - expired", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, _ := setupTaskTestRouter(t, mockService)
		mockService.On("Accept", mock.Anything, 42, 7, "tok").Return(nil, apperrors.ErrQuoteExpired).Once()

		req, _ := http.NewRequest("GET", "/api/users/tasks/accept/42/7?token=tok", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("Failed - already resolved", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, _ := setupTaskTestRouter(t, mockService)
		mockService.On("Accept", mock.Anything, 42, 7, "tok").Return(nil, apperrors.ErrQuoteAlreadyResolved).Once()

		req, _ := http.NewRequest("GET", "/api/users/tasks/accept/42/7?token=tok", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestTaskHandler_Reject(t *testing.T) {
	t.Run("Transitioned", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, store := setupTaskTestRouter(t, mockService)
		mockService.On("Reject", mock.Anything, 42, true).Return(true, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/users/tasks/reject", map[string]int{"taskId": 42})
		loginAs(t, store, req, operatorSession(model.RoleOperator))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeBody(t, w.Body)["transitioned"])
	})

	t.Run("Already resolved", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, store := setupTaskTestRouter(t, mockService)
		mockService.On("Reject", mock.Anything, 42, true).Return(false, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/users/tasks/reject", map[string]int{"taskId": 42})
		loginAs(t, store, req, operatorSession(model.RoleOperator))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w.Body)
		assert.Equal(t, false, body["transitioned"])
		assert.Equal(t, "already_resolved", body["status"])
	})

	t.Run("Failed - missing taskId", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, store := setupTaskTestRouter(t, mockService)

		req := createJSONHTTPRequest("POST", "/api/users/tasks/reject", map[string]int{})
		loginAs(t, store, req, operatorSession(model.RoleOperator))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTaskHandler_Complete(t *testing.T) {
	t.Run("Success - taskId in query", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, store := setupTaskTestRouter(t, mockService)
		mockService.On("Complete", mock.Anything, 42).
			Return(&model.CompleteResult{Message: "Feladat befejezve, PDF számla elküldve", Identifier: "PC-20250301-1234"}, nil).Once()

		req, _ := http.NewRequest("POST", "/api/users/tasks/complete?taskId=42", nil)
		loginAs(t, store, req, operatorSession(model.RoleOperator))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "PC-20250301-1234", decodeBody(t, w.Body)["azonosito"])
	})

	t.Run("Success - taskId in body", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, store := setupTaskTestRouter(t, mockService)
		mockService.On("Complete", mock.Anything, 42).Return(&model.CompleteResult{}, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/users/tasks/complete", map[string]int{"taskId": 42})
		loginAs(t, store, req, operatorSession(model.RoleOperator))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - no accepted quote", func(t *testing.T) {
		mockService := services.NewQuoteServiceMock()
		router, store := setupTaskTestRouter(t, mockService)
		mockService.On("Complete", mock.Anything, 42).Return(nil, apperrors.ErrQuoteNotFound).Once()

		req, _ := http.NewRequest("POST", "/api/users/tasks/complete?taskId=42", nil)
		loginAs(t, store, req, operatorSession(model.RoleOperator))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTaskHandler_List(t *testing.T) {
	mockService := services.NewQuoteServiceMock()
	router, store := setupTaskTestRouter(t, mockService)

	state := model.QuoteStateSent
	identifier := "PC-20250301-1234"
	mockService.On("ListTasks", mock.Anything).Return([]*model.TaskRow{
		{TicketID: 42, UserID: 7, State: &state, Identifier: &identifier, CustomerName: "Kiss Anna"},
		{TicketID: 41, UserID: 8},
	}, nil).Once()

	req, _ := http.NewRequest("GET", "/api/users/tasks", nil)
	loginAs(t, store, req, operatorSession(model.RoleOperator))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"KONDI":"sent"`)
	assert.Contains(t, w.Body.String(), `"KONDI":null`)
	mockService.AssertExpectations(t)
}
