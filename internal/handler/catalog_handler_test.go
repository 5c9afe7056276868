package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"procomp-service/internal/handler"
	"procomp-service/internal/mocks/services"
	"procomp-service/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupCatalogTestRouter(mockService *services.CatalogServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewCatalogHandler(mockService).RegisterRoutes(router)
	return router
}

func TestCatalogHandler(t *testing.T) {
	t.Run("Settlements", func(t *testing.T) {
		mockService := services.NewCatalogServiceMock()
		router := setupCatalogTestRouter(mockService)
		mockService.On("Settlements", mock.Anything).Return([]*model.Settlement{
			{ID: 1, Name: "Budapest", PostalCode: "1011", County: "Pest"},
		}, nil).Once()

		req, _ := http.NewRequest("GET", "/api/telepulesek", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"ID_TELEPULES":1,"TELEPULES":"Budapest","IRSZAM":"1011","MEGYE":"Pest"}]`, w.Body.String())
	})

	t.Run("Categories", func(t *testing.T) {
		mockService := services.NewCatalogServiceMock()
		router := setupCatalogTestRouter(mockService)
		mockService.On("Categories", mock.Anything).Return([]*model.Category{{ID: 3, Name: "Laptop"}}, nil).Once()

		req, _ := http.NewRequest("GET", "/api/categories", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":3,"name":"Laptop"}]`, w.Body.String())
	})

	t.Run("Failed - database error", func(t *testing.T) {
		mockService := services.NewCatalogServiceMock()
		router := setupCatalogTestRouter(mockService)
		mockService.On("Categories", mock.Anything).Return(nil, errors.New("connection refused")).Once()

		req, _ := http.NewRequest("GET", "/api/categories", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
