package handler

import (
	"net/http"
	"procomp-service/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(service service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api")
	{
		router.GET("telepulesek", h.Settlements)
		router.GET("categories", h.Categories)
	}
}

func (h *CatalogHandler) Settlements(c *gin.Context) {
	settlements, err := h.service.Settlements(c)
	if err != nil {
		respondError(c, err, "Settlements")
		return
	}
	c.JSON(http.StatusOK, settlements)
}

func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.service.Categories(c)
	if err != nil {
		respondError(c, err, "Categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}
