package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"onethy/config"
	"onethy/middleware"
	"onethy/models"
)

var dbSeq int64

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.TokenTTLHours = 1
	config.AppConfig.EncryptionKey = "test-key"

	dsn := fmt.Sprintf("file:controllers_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Name: email, Role: models.RoleOwner, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// newApp wires the inbox handlers behind a stub that authenticates as user.
func newApp(db *gorm.DB, user *models.User) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})

	auth := NewAuthController(db)
	app.Post("/auth/register", auth.Register)
	app.Post("/auth/login", auth.Login)

	api := app.Group("/api", func(c *fiber.Ctx) error {
		middleware.SetUser(c, user)
		return c.Next()
	})
	api.Get("/auth/me", auth.GetCurrentUser)

	contacts := NewContactController(db)
	api.Get("/contacts", contacts.GetContacts)
	api.Post("/contacts", contacts.CreateContact)
	api.Get("/contacts/:id", contacts.GetContact)
	api.Post("/contacts/:id/attributes", contacts.SetAttribute)

	inbox := NewConversationController(db)
	api.Get("/inbox/conversations", inbox.GetConversations)
	api.Post("/inbox/conversations/:id/mark-as-read", inbox.MarkAsRead)
	api.Post("/inbox/conversations/:id/messages", inbox.SendMessage)
	api.Post("/inbox/inbound", inbox.ReceiveInbound)

	macros := NewMacroController(db)
	api.Post("/inbox/macros", macros.CreateMacro)
	api.Post("/inbox/conversations/:id/macros/:macroId/apply", macros.ApplyMacro)

	campaigns := NewCampaignController(db)
	api.Post("/campaigns", campaigns.CreateCampaign)
	api.Put("/campaigns/:id", campaigns.UpdateCampaign)

	teams := NewTeamController(db)
	api.Post("/teams", teams.CreateTeam)
	api.Post("/teams/:id/members", teams.AddMember)

	billing := NewBillingController(db)
	app.Get("/plans", billing.GetPlans)
	api.Get("/subscription", billing.GetSubscription)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestCreateContact(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, createUser(t, db, "owner@test.com"))

	status, body := do(t, app, http.MethodPost, "/api/contacts", `{"name":"João","phone":"5511999999999"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, body)
	}
	if body["status"] != "active" {
		t.Errorf("expected status active, got %v", body["status"])
	}
	if body["source"] != "manual" {
		t.Errorf("expected source manual, got %v", body["source"])
	}
	tags, ok := body["tags"].([]interface{})
	if !ok || len(tags) != 0 {
		t.Errorf("expected empty tags array, got %#v", body["tags"])
	}

	status, body = do(t, app, http.MethodPost, "/api/contacts", `{"name":"Outro","phone":"5511999999999"}`)
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 on duplicate phone, got %d", status)
	}
	if body["error"] != "a contact with phone 5511999999999 already exists" {
		t.Errorf("unexpected error message %v", body["error"])
	}
}

func TestCreateContact_Validation(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, createUser(t, db, "owner@test.com"))

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"phone":"5511"}`},
		{"bad email", `{"name":"A","phone":"5511","email":"nope"}`},
		{"bad status", `{"name":"A","phone":"5511","status":"gone"}`},
		{"malformed json", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, http.MethodPost, "/api/contacts", tt.body)
			if status != fiber.StatusBadRequest {
				t.Fatalf("expected 400, got %d", status)
			}
			if body["error"] == "" || body["error"] == nil {
				t.Error("expected an error message")
			}
		})
	}
}

func TestGetContact_OtherTenantIsNotFound(t *testing.T) {
	db := setupDB(t)
	owner := createUser(t, db, "owner@test.com")
	other := createUser(t, db, "other@test.com")

	_, created := do(t, newApp(db, owner), http.MethodPost, "/api/contacts", `{"name":"Ana","phone":"1"}`)
	path := fmt.Sprintf("/api/contacts/%v", created["id"])

	status, body := do(t, newApp(db, other), http.MethodGet, path, "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body["error"] != "contact not found" {
		t.Errorf("unexpected error %v", body["error"])
	}

	status, _ = do(t, newApp(db, owner), http.MethodGet, "/api/contacts/abc", "")
	if status != fiber.StatusBadRequest {
		t.Errorf("expected 400 for non numeric id, got %d", status)
	}
}

func TestSetAttribute_CreatedThenUpdated(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, createUser(t, db, "owner@test.com"))
	_, contact := do(t, app, http.MethodPost, "/api/contacts", `{"name":"Ana","phone":"1"}`)
	path := fmt.Sprintf("/api/contacts/%v/attributes", contact["id"])

	if status, _ := do(t, app, http.MethodPost, path, `{"name":"plan","value":"gold"}`); status != fiber.StatusCreated {
		t.Fatalf("expected 201 on first set, got %d", status)
	}
	status, body := do(t, app, http.MethodPost, path, `{"name":"plan","value":"silver"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on second set, got %d", status)
	}
	if body["value"] != "silver" {
		t.Errorf("expected value silver, got %v", body["value"])
	}
	if status, _ := do(t, app, http.MethodPost, path, `{"name":"age","value":"old","type":"number"}`); status != fiber.StatusBadRequest {
		t.Errorf("expected 400 for a non numeric number attribute, got %d", status)
	}
}

func TestInboxFlow(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, createUser(t, db, "owner@test.com"))

	status, inbound := do(t, app, http.MethodPost, "/api/inbox/inbound", `{"phone":"5511988887777","name":"Maria","content":"Oi"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, inbound)
	}
	conv := inbound["conversation"].(map[string]interface{})
	if conv["unreadCount"] != float64(1) {
		t.Errorf("expected unreadCount 1, got %v", conv["unreadCount"])
	}
	convPath := fmt.Sprintf("/api/inbox/conversations/%v", conv["id"])

	status, list := do(t, app, http.MethodGet, "/api/inbox/conversations?status=open", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if list["total"] != float64(1) || list["hasMore"] != false {
		t.Errorf("unexpected page %v", list)
	}

	_, read := do(t, app, http.MethodPost, convPath+"/mark-as-read", "")
	if read["unreadCount"] != float64(0) {
		t.Errorf("expected unreadCount 0 after read, got %v", read["unreadCount"])
	}

	status, msg := do(t, app, http.MethodPost, convPath+"/messages", `{"content":"Olá Maria"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, msg)
	}
	if msg["fromMe"] != true || msg["type"] != "text" {
		t.Errorf("unexpected message %v", msg)
	}

	if status, _ := do(t, app, http.MethodPost, convPath+"/messages", `{"content":""}`); status != fiber.StatusBadRequest {
		t.Errorf("expected 400 for empty content, got %d", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/api/inbox/conversations?status=archived", ""); status != fiber.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", status)
	}
}

func TestApplyMacro(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, createUser(t, db, "owner@test.com"))

	_, inbound := do(t, app, http.MethodPost, "/api/inbox/inbound", `{"phone":"1","content":"hi"}`)
	conv := inbound["conversation"].(map[string]interface{})

	status, macro := do(t, app, http.MethodPost, "/api/inbox/macros", `{"name":"Greeting","content":"Hello!","shortcut":"/hi"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, macro)
	}
	if status, _ := do(t, app, http.MethodPost, "/api/inbox/macros", `{"name":"Again","content":"x","shortcut":"/hi"}`); status != fiber.StatusConflict {
		t.Errorf("expected 409 for a reused shortcut, got %d", status)
	}

	path := fmt.Sprintf("/api/inbox/conversations/%v/macros/%v/apply", conv["id"], macro["id"])
	status, msg := do(t, app, http.MethodPost, path, "")
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, msg)
	}
	if msg["content"] != "Hello!" {
		t.Errorf("expected macro content, got %v", msg["content"])
	}

	var stored models.Macro
	db.First(&stored, uint(macro["id"].(float64)))
	if stored.UsageCount != 1 {
		t.Errorf("expected usage count 1, got %d", stored.UsageCount)
	}
}

func TestCampaignRates(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, createUser(t, db, "owner@test.com"))

	status, campaign := do(t, app, http.MethodPost, "/api/campaigns", `{"name":"Launch","message":"Promo"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, campaign)
	}
	if campaign["status"] != "draft" {
		t.Errorf("expected draft, got %v", campaign["status"])
	}
	path := fmt.Sprintf("/api/campaigns/%v", campaign["id"])

	if status, _ := do(t, app, http.MethodPut, path, `{"deliveryRate":120}`); status != fiber.StatusBadRequest {
		t.Errorf("expected 400 for a rate above 100, got %d", status)
	}
	status, updated := do(t, app, http.MethodPut, path, `{"status":"active","deliveryRate":95.5}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, updated)
	}
	if updated["startedAt"] == nil {
		t.Error("expected startedAt once active")
	}
}

func TestAddMember_ForeignUser(t *testing.T) {
	db := setupDB(t)
	owner := createUser(t, db, "owner@test.com")
	stranger := createUser(t, db, "stranger@test.com")
	app := newApp(db, owner)

	_, team := do(t, app, http.MethodPost, "/api/teams", `{"name":"Support"}`)
	if team["color"] != "#25D366" {
		t.Errorf("expected default color, got %v", team["color"])
	}
	path := fmt.Sprintf("/api/teams/%v/members", team["id"])

	if status, _ := do(t, app, http.MethodPost, path, fmt.Sprintf(`{"userId":%d}`, stranger.ID)); status != fiber.StatusBadRequest {
		t.Errorf("expected 400 for a user of another account, got %d", status)
	}
	status, member := do(t, app, http.MethodPost, path, fmt.Sprintf(`{"userId":%d,"role":"lead"}`, owner.ID))
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, member)
	}
	if member["role"] != "lead" {
		t.Errorf("expected role lead, got %v", member["role"])
	}
}

func TestAuthFlow(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, createUser(t, db, "owner@test.com"))

	status, body := do(t, app, http.MethodPost, "/auth/register", `{"name":"Paula","email":"paula@test.com","password":"secret123"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, body)
	}
	if body["accessToken"] == "" || body["accessToken"] == nil {
		t.Error("expected an access token")
	}
	user := body["user"].(map[string]interface{})
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("password hash must not be serialized")
	}

	if status, _ := do(t, app, http.MethodPost, "/auth/register", `{"name":"P","email":"paula@test.com","password":"secret123"}`); status != fiber.StatusConflict {
		t.Errorf("expected 409 for a registered email, got %d", status)
	}
	if status, _ := do(t, app, http.MethodPost, "/auth/login", `{"email":"paula@test.com","password":"secret123"}`); status != fiber.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
	status, body = do(t, app, http.MethodPost, "/auth/login", `{"email":"paula@test.com","password":"wrong-pass"}`)
	if status != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", status)
	}
	if body["error"] != "invalid email or password" {
		t.Errorf("unexpected error %v", body["error"])
	}

	_, me := do(t, app, http.MethodGet, "/api/auth/me", "")
	if me["email"] != "owner@test.com" {
		t.Errorf("expected the authenticated user, got %v", me["email"])
	}
}

func TestSubscription_NoneIsNotFound(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, createUser(t, db, "owner@test.com"))

	status, body := do(t, app, http.MethodGet, "/api/subscription", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body["error"] != "subscription not found" {
		t.Errorf("unexpected error %v", body["error"])
	}

	req := httptest.NewRequest(http.MethodGet, "/plans", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("expected an empty plan list, got %d %s", resp.StatusCode, raw)
	}
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, createUser(t, db, "owner@test.com"))

	status, body := do(t, app, http.MethodGet, "/nowhere", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body["error"] == nil {
		t.Error("expected a JSON error body")
	}
}
