package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"procomp-service/internal/cache"
	"procomp-service/internal/handler"
	"procomp-service/internal/mocks/services"
	"procomp-service/internal/model"
	apperrors "procomp-service/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAuthTestRouter(t *testing.T, mockService *services.AuthServiceMock) (*gin.Engine, cache.SessionStore) {
	router, store := newTestRouter(t)
	handler.NewAuthHandler(mockService, store, sessionConfig).RegisterRoutes(router)
	return router, store
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionConfig.CookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", sessionConfig.CookieName)
	return nil
}

func TestAuthHandler_RegisterAndVerify(t *testing.T) {
	mockService := services.NewAuthServiceMock()
	router, store := setupAuthTestRouter(t, mockService)

	pending := &cache.PendingRegistration{Email: "anna@example.hu", PasswordHash: "$2a$hash", Code: "123456"}
	registerReq := model.RegisterRequest{Email: "anna@example.hu", Password: "titok123"}
	mockService.On("Register", mock.Anything, registerReq).Return(pending, nil).Once()

	req := createJSONHTTPRequest("POST", "/api/register", registerReq)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(t, w)
	stored, err := store.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	require.NotNil(t, stored.Registration)
	assert.Equal(t, "123456", stored.Registration.Code)
	assert.False(t, stored.IsAuthenticated())

	verifyReq := model.VerifyRequest{
		Code:         "123456",
		Name:         "Kiss Anna",
		Phone:        "+36301234567",
		SettlementID: 1,
		Address:      "Fő utca 1.",
		Login:        "anna",
	}
	mockService.On("Verify", mock.Anything, mock.MatchedBy(func(p *cache.PendingRegistration) bool {
		return p != nil && p.Code == "123456" && p.Email == "anna@example.hu"
	}), verifyReq).Return(&model.User{ID: 7, Email: "anna@example.hu"}, nil).Once()

	req = createJSONHTTPRequest("POST", "/api/verify", verifyReq)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(7), decodeBody(t, w.Body)["userId"])

	_, err = store.Get(context.Background(), cookie.Value)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	mockService.AssertExpectations(t)
}

func TestAuthHandler_Verify(t *testing.T) {
	t.Run("Failed - wrong code", func(t *testing.T) {
		mockService := services.NewAuthServiceMock()
		router, store := setupAuthTestRouter(t, mockService)
		mockService.On("Verify", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrInvalidVerificationCode).Once()

		req := createJSONHTTPRequest("POST", "/api/verify", model.VerifyRequest{
			Code: "000000", Name: "x", Phone: "x", SettlementID: 1, Address: "x", Login: "x",
		})
		loginAs(t, store, req, &cache.Session{Registration: &cache.PendingRegistration{Code: "123456"}})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_code", decodeBody(t, w.Body)["code"])
	})

	t.Run("Failed - missing fields", func(t *testing.T) {
		mockService := services.NewAuthServiceMock()
		router, _ := setupAuthTestRouter(t, mockService)

		req := createJSONHTTPRequest("POST", "/api/verify", map[string]string{"code": "123456"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	loginReq := model.LoginRequest{Email: "szerviz@procomp.hu", Password: "titok123"}

	t.Run("Success - operator", func(t *testing.T) {
		mockService := services.NewAuthServiceMock()
		router, store := setupAuthTestRouter(t, mockService)
		mockService.On("Login", mock.Anything, loginReq).Return(&model.LoginResult{
			UserID: 1, Email: loginReq.Email, Role: model.RoleOperator, Operator: true,
		}, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/login", loginReq)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "operator", decodeBody(t, w.Body)["role"])

		sess, err := store.Get(context.Background(), sessionCookie(t, w).Value)
		require.NoError(t, err)
		assert.Equal(t, 1, sess.UserID)
		assert.True(t, sess.Operator)
	})

	t.Run("Success - replaces the previous session", func(t *testing.T) {
		mockService := services.NewAuthServiceMock()
		router, store := setupAuthTestRouter(t, mockService)
		mockService.On("Login", mock.Anything, loginReq).Return(&model.LoginResult{
			UserID: 7, Email: loginReq.Email, Role: model.RoleUser,
		}, nil).Once()

		old := &cache.Session{Registration: &cache.PendingRegistration{Code: "1"}}
		req := createJSONHTTPRequest("POST", "/api/login", loginReq)
		loginAs(t, store, req, old)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEqual(t, old.ID, sessionCookie(t, w).Value)
		_, err := store.Get(context.Background(), old.ID)
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("Failed - wrong password", func(t *testing.T) {
		mockService := services.NewAuthServiceMock()
		router, _ := setupAuthTestRouter(t, mockService)
		mockService.On("Login", mock.Anything, loginReq).Return(nil, apperrors.ErrInvalidCredentials).Once()

		req := createJSONHTTPRequest("POST", "/api/login", loginReq)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	mockService := services.NewAuthServiceMock()
	router, store := setupAuthTestRouter(t, mockService)

	sess := customerSession(7)
	req, _ := http.NewRequest("POST", "/api/logout", nil)
	loginAs(t, store, req, sess)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, sessionCookie(t, w).MaxAge < 0)
	_, err := store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestAuthHandler_Profile(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		mockService := services.NewAuthServiceMock()
		router, store := setupAuthTestRouter(t, mockService)
		mockService.On("Profile", mock.Anything, mock.MatchedBy(func(s *cache.Session) bool {
			return s.UserID == 7
		})).Return(&model.User{ID: 7, Name: "Kiss Anna"}, nil).Once()

		req, _ := http.NewRequest("GET", "/api/profile", nil)
		loginAs(t, store, req, customerSession(7))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Kiss Anna", decodeBody(t, w.Body)["NEV"])
	})

	t.Run("Get - not logged in", func(t *testing.T) {
		mockService := services.NewAuthServiceMock()
		router, _ := setupAuthTestRouter(t, mockService)

		req, _ := http.NewRequest("GET", "/api/profile", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Update", func(t *testing.T) {
		mockService := services.NewAuthServiceMock()
		router, store := setupAuthTestRouter(t, mockService)
		update := model.UpdateProfileRequest{Login: "anna", Phone: "+36301234567", Address: "Fő utca 2."}
		mockService.On("UpdateProfile", mock.Anything, 7, update).Return(nil).Once()

		req := createJSONHTTPRequest("PUT", "/api/profile", update)
		loginAs(t, store, req, customerSession(7))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Update - operator cannot edit a customer profile", func(t *testing.T) {
		mockService := services.NewAuthServiceMock()
		router, store := setupAuthTestRouter(t, mockService)

		req := createJSONHTTPRequest("PUT", "/api/profile", model.UpdateProfileRequest{Login: "x"})
		loginAs(t, store, req, operatorSession(model.RoleOperator))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Update - store failure", func(t *testing.T) {
		mockService := services.NewAuthServiceMock()
		router, store := setupAuthTestRouter(t, mockService)
		mockService.On("UpdateProfile", mock.Anything, 7, mock.Anything).Return(errors.New("db down")).Once()

		req := createJSONHTTPRequest("PUT", "/api/profile", model.UpdateProfileRequest{Login: "x"})
		loginAs(t, store, req, customerSession(7))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestAuthHandler_RedirectProfile(t *testing.T) {
	tests := []struct {
		name     string
		sess     *cache.Session
		expected string
	}{
		{"anonymous", nil, "/login.html"},
		{"customer", customerSession(7), "/profil.html"},
		{"operator", operatorSession(model.RoleOperator), "/employee.html"},
		{"admin", operatorSession(model.RoleAdmin), "/admin.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := services.NewAuthServiceMock()
			router, store := setupAuthTestRouter(t, mockService)

			req, _ := http.NewRequest("GET", "/api/profile/redirect", nil)
			if tt.sess != nil {
				loginAs(t, store, req, tt.sess)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.expected, w.Header().Get("Location"))
		})
	}
}
