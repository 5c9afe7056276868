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

type AuthHandler struct {
	service service.AuthService
	store   cache.SessionStore
	cfg     config.SessionConfig
}

func NewAuthHandler(service service.AuthService, store cache.SessionStore, cfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{service: service, store: store, cfg: cfg}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api")
	{
		router.POST("register", h.Register)
		router.POST("verify", h.Verify)
		router.POST("login", h.Login)
		router.POST("logout", h.Logout)
		router.GET("profile/redirect", h.RedirectProfile)
		router.GET("profile", middleware.RequireAuth(), h.GetProfile)
		router.PUT("profile", middleware.RequireCustomer(), h.UpdateProfile)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	pending, err := h.service.Register(c, req)
	if err != nil {
		respondError(c, err, "Register")
		return
	}

	sess := middleware.CurrentSession(c)
	if sess == nil {
		sess = &cache.Session{}
	}
	sess.Registration = pending
	if err := middleware.SaveSession(c, h.store, h.cfg, sess); err != nil {
		respondError(c, err, "Register")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Megerősítő kód kiküldve az email címedre!"})
}

func (h *AuthHandler) Verify(c *gin.Context) {
	var req model.VerifyRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	sess := middleware.CurrentSession(c)
	var pending *cache.PendingRegistration
	if sess != nil {
		pending = sess.Registration
	}

	user, err := h.service.Verify(c, pending, req)
	if err != nil {
		respondError(c, err, "Verify")
		return
	}

	if err := middleware.DestroySession(c, h.store, h.cfg); err != nil {
		respondError(c, err, "Verify")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sikeres regisztráció!", "userId": user.ID})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	result, err := h.service.Login(c, req)
	if err != nil {
		respondError(c, err, "Login")
		return
	}

	// 登入時換新的會話 ID
	if old := middleware.CurrentSession(c); old != nil {
		_ = h.store.Destroy(c.Request.Context(), old.ID)
	}
	sess := &cache.Session{
		UserID:   result.UserID,
		Email:    result.Email,
		Role:     result.Role,
		Operator: result.Operator,
	}
	if err := middleware.SaveSession(c, h.store, h.cfg, sess); err != nil {
		respondError(c, err, "Login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sikeres bejelentkezés!",
		"userId":  result.UserID,
		"role":    result.Role,
	})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	profile, err := h.service.Profile(c, middleware.CurrentSession(c))
	if err != nil {
		respondError(c, err, "GetProfile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	sess := middleware.CurrentSession(c)
	if err := h.service.UpdateProfile(c, sess.UserID, req); err != nil {
		respondError(c, err, "UpdateProfile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profil sikeresen frissítve!"})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.DestroySession(c, h.store, h.cfg); err != nil {
		respondError(c, err, "Logout")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sikeres kijelentkezés!"})
}

// RedirectProfile 依角色導向對應頁面
func (h *AuthHandler) RedirectProfile(c *gin.Context) {
	c.Redirect(http.StatusFound, ProfilePage(middleware.CurrentSession(c)))
}

func ProfilePage(sess *cache.Session) string {
	if !sess.IsAuthenticated() {
		return "/login.html"
	}
	switch sess.Role {
	case model.RoleUser:
		return "/profil.html"
	case model.RoleOperator:
		return "/employee.html"
	case model.RoleAdmin:
		return "/admin.html"
	}
	return "/login.html"
}
