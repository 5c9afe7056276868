package middleware

import (
	"context"
	"errors"
	"net/http"
	"procomp-service/config"
	"procomp-service/internal/cache"
	"procomp-service/internal/model"
	apperrors "procomp-service/pkg/app_errors"
	"procomp-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionKey = "session"

// Sessions 從 cookie 載入會話；沒有或已過期時為 nil
func Sessions(store cache.SessionStore, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err == nil && id != "" {
			sess, err := store.Get(c.Request.Context(), id)
			switch {
			case err == nil:
				c.Set(sessionKey, sess)
			case errors.Is(err, apperrors.ErrSessionNotFound):
				// 過期
			default:
				logger.WithComponent("http").Warn("load session failed", zap.Error(err))
			}
		}
		c.Next()
	}
}

// CurrentSession 目前請求的會話，可能為 nil
func CurrentSession(c *gin.Context) *cache.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*cache.Session)
	return sess
}

// SaveSession 建立或更新會話並寫入 cookie
func SaveSession(c *gin.Context, store cache.SessionStore, cfg config.SessionConfig, sess *cache.Session) error {
	ctx := c.Request.Context()
	if sess.ID == "" {
		if _, err := store.Create(ctx, sess); err != nil {
			return err
		}
	} else if err := store.Save(ctx, sess); err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, sess.ID, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
	c.Set(sessionKey, sess)
	return nil
}

// DestroySession 刪除會話與 cookie
func DestroySession(c *gin.Context, store cache.SessionStore, cfg config.SessionConfig) error {
	if sess := CurrentSession(c); sess != nil {
		if err := store.Destroy(c.Request.Context(), sess.ID); err != nil {
			return err
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.Secure, true)
	c.Set(sessionKey, (*cache.Session)(nil))
	return nil
}

// RequireAuth 需要登入
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bejelentkezés szükséges.",
				"code":  "unauthorized",
			})
			return
		}
		c.Next()
	}
}

// RequireRole 需要其中一個角色
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if !sess.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bejelentkezés szükséges.",
				"code":  "unauthorized",
			})
			return
		}
		for _, r := range roles {
			if sess.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Nincs jogosultság a művelethez.",
			"code":  "forbidden",
		})
	}
}

// AdminChecker 重新檢查管理員權限
type AdminChecker interface {
	IsAdmin(ctx context.Context, sess *cache.Session) (bool, error)
}

// RequireAdmin 員工管理員直接放行；客戶帳號以資料庫旗標為準並回寫會話角色
func RequireAdmin(checker AdminChecker, store cache.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if !sess.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bejelentkezés szükséges.",
				"code":  "unauthorized",
			})
			return
		}

		isAdmin, err := checker.IsAdmin(c.Request.Context(), sess)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Felhasználó nem található.",
					"code":  "unauthorized",
				})
				return
			}
			logger.WithComponent("http").Error("admin check failed", zap.Int("user_id", sess.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Nem sikerült ellenőrizni a jogosultságot.",
				"code":  "internal",
			})
			return
		}

		if !sess.Operator {
			role := model.RoleUser
			if isAdmin {
				role = model.RoleAdmin
			}
			if sess.Role != role {
				sess.Role = role
				if err := store.Save(c.Request.Context(), sess); err != nil {
					logger.WithComponent("http").Warn("save session role failed", zap.Error(err))
				}
			}
		}

		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Nincs jogosultság a művelethez.",
				"code":  "forbidden",
			})
			return
		}
		c.Next()
	}
}

// RequireCustomer 只允許客戶帳號 (含被提升為管理員的客戶)
func RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if !sess.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bejelentkezés szükséges.",
				"code":  "unauthorized",
			})
			return
		}
		if sess.Operator {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Nincs jogosultság a művelethez.",
				"code":  "forbidden",
			})
			return
		}
		c.Next()
	}
}
