package profile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/blob"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/logging"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/user"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/wallet"
)

func TestOptionalFieldTriState(t *testing.T) {
	var req updateRequest
	if err := json.Unmarshal([]byte(`{}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.DisplayName.present {
		t.Fatalf("omitted key must not read as present")
	}

	if err := json.Unmarshal([]byte(`{"displayName":null}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !req.DisplayName.present || req.DisplayName.value != nil {
		t.Fatalf("null must read as present with nil value")
	}

	if err := json.Unmarshal([]byte(`{"displayName":"Alice"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !req.DisplayName.present || req.DisplayName.value == nil || *req.DisplayName.value != "Alice" {
		t.Fatalf("value must read as present, got %+v", req.DisplayName)
	}
}

func newHandlerApp(t *testing.T) (*fiber.App, user.User) {
	t.Helper()
	logger := logging.Discard()
	repo := user.NewMemoryRepository()
	name := "Original Name"
	u := user.User{ID: uuid.NewString(), FID: 7, Username: "alice", DisplayName: &name}
	if err := repo.Create(httptest.NewRequest("GET", "/", nil).Context(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	ks := wallet.NewKeystore(wallet.NewMemoryStore(), nil, logger)
	svc := NewService(repo, blob.NewMemoryStore(), ks, nil, logger)
	h := NewHandler(svc)

	app := fiber.New()
	// Stand-in for the session middleware: pin the seeded user.
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("session_user", u)
		return c.Next()
	})
	app.Put("/api/user/update", h.Update)
	app.Patch("/api/user/update", h.Update)
	app.Get("/api/user/me", h.Me)
	return app, u
}

func doUpdate(t *testing.T, app *fiber.App, method, body string) map[string]json.RawMessage {
	t.Helper()
	req := httptest.NewRequest(method, "/api/user/update", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var envelope struct {
		User map[string]json.RawMessage `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return envelope.User
}

func TestUpdateEmptyStringClearsDisplayName(t *testing.T) {
	app, _ := newHandlerApp(t)

	got := doUpdate(t, app, fiber.MethodPut, `{"displayName":""}`)
	if string(got["displayName"]) != "null" {
		t.Fatalf("expected displayName cleared to null, got %s", got["displayName"])
	}
}

func TestUpdateOmittedFieldKeepsValue(t *testing.T) {
	app, _ := newHandlerApp(t)

	got := doUpdate(t, app, fiber.MethodPatch, `{"profilePicture":""}`)
	if string(got["displayName"]) != `"Original Name"` {
		t.Fatalf("expected displayName untouched, got %s", got["displayName"])
	}
	if string(got["pfpUrl"]) != "null" {
		t.Fatalf("expected avatar cleared, got %s", got["pfpUrl"])
	}
}

func TestUpdateResponseShape(t *testing.T) {
	app, u := newHandlerApp(t)

	got := doUpdate(t, app, fiber.MethodPut, `{"displayName":"Fresh Name","profilePicture":"avatar-bytes"}`)
	for _, key := range []string{"id", "fid", "username", "displayName", "pfpUrl"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("expected %q in user response, got %v", key, got)
		}
	}
	if string(got["id"]) != `"`+u.ID+`"` {
		t.Fatalf("unexpected id: %s", got["id"])
	}
	if string(got["pfpUrl"]) != `"memory://avatars/`+u.ID+`"` {
		t.Fatalf("unexpected pfpUrl: %s", got["pfpUrl"])
	}
}
