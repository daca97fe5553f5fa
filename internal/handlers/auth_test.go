package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lavanya0506/task-tracker/internal/handlers"
	"github.com/lavanya0506/task-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	auth := newTestAuthService()
	handler := handlers.NewAuthHandler(db, auth, false)

	router := gin.New()
	api := router.Group("/api/auth")
	api.POST("/register", handler.Register)
	api.POST("/login", handler.Login)
	api.POST("/logout", handler.Logout)
	api.GET("/me", middleware.AuthRequired(auth), handler.Me)
	return router, db
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestRegister(t *testing.T) {
	router, _ := newAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Alice",
		"email":    "Alice@Example.com",
		"password": "hunter22",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Message string            `json:"message"`
		User    map[string]string `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "User registered successfully", body.Message)
	assert.Equal(t, "alice@example.com", body.User["email"])
	assert.NotEmpty(t, body.User["id"])

	cookie := sessionCookie(t, w)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.False(t, cookie.Secure)
}

func TestRegister_Validation(t *testing.T) {
	router, _ := newAuthRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing email", gin.H{"name": "Alice", "password": "hunter22"}},
		{"bad email", gin.H{"name": "Alice", "email": "not-an-email", "password": "hunter22"}},
		{"short password", gin.H{"name": "Alice", "email": "a@example.com", "password": "abc"}},
		{"short name", gin.H{"name": "A", "email": "a@example.com", "password": "hunter22"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router, _ := newAuthRouter(t)

	first := doJSON(router, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := doJSON(router, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Imposter", "email": "ALICE@example.com", "password": "different",
	})

	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.JSONEq(t, `{"error":"Email already registered"}`, second.Body.String())
}

func TestLogin(t *testing.T) {
	router, _ := newAuthRouter(t)

	register := doJSON(router, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, register.Code)

	w := doJSON(router, http.MethodPost, "/api/auth/login", gin.H{
		"email": "alice@example.com", "password": "hunter22",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, sessionCookie(t, w).Value)
}

func TestLogin_WrongPassword(t *testing.T) {
	router, _ := newAuthRouter(t)

	register := doJSON(router, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, register.Code)

	for _, creds := range []gin.H{
		{"email": "alice@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "hunter22"},
	} {
		w := doJSON(router, http.MethodPost, "/api/auth/login", creds)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
	}
}

func TestMe(t *testing.T) {
	router, _ := newAuthRouter(t)

	register := doJSON(router, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, register.Code)
	cookie := sessionCookie(t, register)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		User map[string]string `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice@example.com", body.User["email"])
	assert.Equal(t, "Alice", body.User["name"])
}

func TestMe_WithoutSession(t *testing.T) {
	router, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	router, _ := newAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, w.Body.String())

	cookie := sessionCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}
