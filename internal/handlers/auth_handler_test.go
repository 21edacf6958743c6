package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kmed-health/kmed-backend/internal/config"
	"github.com/kmed-health/kmed-backend/internal/dto"
	"github.com/kmed-health/kmed-backend/internal/middleware"
	"github.com/kmed-health/kmed-backend/internal/models"
	"github.com/kmed-health/kmed-backend/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthApp(t *testing.T) (*fiber.App, *gorm.DB) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{JWTSecret: "test-secret", JWTAccessExpiry: 15 * time.Minute}
	h := NewAuthHandler(services.NewAuthService(db, cfg))

	app := fiber.New()
	app.Post("/auth/login", h.Login)
	app.Get("/auth/me", middleware.JWTProtected(cfg), h.Me)
	return app, db
}

func seedLocalUser(t *testing.T, db *gorm.DB, username, password, role string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{
		ID:         uuid.New(),
		Username:   username,
		Email:      username + "@kmed.com",
		Password:   string(hash),
		Role:       role,
		AuthMethod: "local",
		IsActive:   true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestLoginReturnsUserAndToken(t *testing.T) {
	app, db := setupAuthApp(t)
	seedLocalUser(t, db, "analyst1", "s3cret", "analyst")

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"analyst1","password":"s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out dto.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.AccessToken == "" {
		t.Fatalf("missing access token")
	}
	if out.User.Username != "analyst1" || out.User.Role != "analyst" {
		t.Fatalf("unexpected user %+v", out.User)
	}

	// token works against the session probe
	me := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.Header.Set("Authorization", "Bearer "+out.AccessToken)
	meResp, err := app.Test(me)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	if meResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /auth/me, got %d", meResp.StatusCode)
	}
	var meUser models.User
	if err := json.NewDecoder(meResp.Body).Decode(&meUser); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if meUser.Username != "analyst1" {
		t.Fatalf("unexpected me user %+v", meUser)
	}
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	app, db := setupAuthApp(t)
	seedLocalUser(t, db, "analyst1", "s3cret", "analyst")

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"analyst1","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLoginUnknownUserIsUnauthorized(t *testing.T) {
	app, _ := setupAuthApp(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"ghost","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestMeWithoutTokenIsUnauthorized(t *testing.T) {
	app, _ := setupAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
