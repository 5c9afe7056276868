package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"procomp-service/config"
	"procomp-service/internal/cache"
	"procomp-service/internal/middleware"
	"procomp-service/internal/model"
	"procomp-service/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	InvalidJSON = `{"invalid": json}`

	sessionConfig = config.SessionConfig{CookieName: "user_sid", TTL: time.Hour}
)

// create JSON request body
func createJSONRequest(data interface{}) *bytes.Buffer {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

// create HTTP request with JSON body
func createJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	req, err := http.NewRequest(method, url, createJSONRequest(data))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// newTestRouter 帶有會話中介層的 router，會話存在 miniredis
func newTestRouter(t *testing.T) (*gin.Engine, cache.SessionStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	_, rdb := testutil.NewMiniRedis(t)
	store := cache.NewRedisSessionStore(rdb, sessionConfig.TTL)

	router := gin.New()
	router.Use(middleware.Sessions(store, sessionConfig))
	return router, store
}

// loginAs 建立會話並把 cookie 加到請求上
func loginAs(t *testing.T, store cache.SessionStore, req *http.Request, sess *cache.Session) {
	t.Helper()
	id, err := store.Create(context.Background(), sess)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionConfig.CookieName, Value: id})
}

func customerSession(userID int) *cache.Session {
	return &cache.Session{UserID: userID, Email: "anna@example.hu", Role: model.RoleUser}
}

func operatorSession(role model.Role) *cache.Session {
	return &cache.Session{UserID: 1, Email: "szerviz@procomp.hu", Role: role, Operator: true}
}

func decodeBody(t *testing.T, body *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Bytes(), &out))
	return out
}
