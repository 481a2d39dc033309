package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSwaggerServer_New(t *testing.T) {
	swaggerServer := NewSwaggerServer(true)
	if swaggerServer == nil {
		t.Fatal("Expected Swagger server to be created, got nil")
	}
	if !swaggerServer.enabled {
		t.Error("Expected Swagger server to be enabled")
	}

	swaggerServer = NewSwaggerServer(false)
	if swaggerServer.enabled {
		t.Error("Expected Swagger server to be disabled")
	}
}

func TestSwaggerServer_RegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	NewSwaggerServer(true).RegisterRoutes(router)
	if len(router.Routes()) == 0 {
		t.Error("Expected swagger route to be registered when enabled")
	}

	router = gin.New()
	NewSwaggerServer(false).RegisterRoutes(router)
	if len(router.Routes()) != 0 {
		t.Error("Expected no routes when disabled")
	}
}

func TestSwaggerDisabledReturns404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewSwaggerServer(false).RegisterRoutes(router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 when swagger disabled, got %d", w.Code)
	}
}
