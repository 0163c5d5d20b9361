package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"contacts-api/internal/domain"
)

const contactBody = `{
	"first_name": "Ada",
	"last_name": "Lovelace",
	"email": "ada.contact@example.com",
	"phone_number": "380501234567",
	"birthday": "1990-03-15"
}`

func TestContactCRUDFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "owner@example.com", "secret-password")
	token := env.accessToken(t, user.Email)

	rec := env.doJSON(http.MethodPost, "/api/v1/contacts", contactBody, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.Contact
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created contact: %v", err)
	}
	if created.ID == 0 || created.Birthday == nil {
		t.Fatalf("unexpected created contact: %+v", created)
	}

	path := fmt.Sprintf("/api/v1/contacts/%d", created.ID)
	rec = env.doJSON(http.MethodGet, path, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.doJSON(http.MethodPut, path, `{"phone_number":"380509999999"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated domain.Contact
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated contact: %v", err)
	}
	if updated.PhoneNumber != "380509999999" || updated.FirstName != "Ada" {
		t.Fatalf("unexpected updated contact: %+v", updated)
	}

	rec = env.doJSON(http.MethodDelete, path, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = env.doJSON(http.MethodGet, path, "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", rec.Code)
	}
}

func TestContactCreateErrors(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "owner@example.com", "secret-password")
	token := env.accessToken(t, user.Email)

	rec := env.doJSON(http.MethodPost, "/api/v1/contacts", contactBody, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.doJSON(http.MethodPost, "/api/v1/contacts", contactBody, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	badPhone := `{"first_name":"A","last_name":"L","email":"a@b.c","phone_number":"123"}`
	rec = env.doJSON(http.MethodPost, "/api/v1/contacts", badPhone, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad phone: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.doJSON(http.MethodPost, "/api/v1/contacts", contactBody, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no auth: expected 401, got %d", rec.Code)
	}
}

func TestContactListEmptyAndScoped(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com", "secret-password")
	other := env.seedUser(t, "other@example.com", "secret-password")
	ownerToken := env.accessToken(t, owner.Email)
	otherToken := env.accessToken(t, other.Email)

	// Lista vacía devuelve un array JSON, no null.
	rec := env.doJSON(http.MethodGet, "/api/v1/contacts", "", ownerToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "[]" {
		t.Fatalf("empty list must be [], got %s", rec.Body.String())
	}

	rec = env.doJSON(http.MethodPost, "/api/v1/contacts", contactBody, ownerToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	var created domain.Contact
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created contact: %v", err)
	}

	// Otro usuario no ve los contactos del dueño.
	rec = env.doJSON(http.MethodGet, "/api/v1/contacts", "", otherToken)
	if rec.Body.String() != "[]" {
		t.Fatalf("foreign list must be empty, got %s", rec.Body.String())
	}
	rec = env.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/contacts/%d", created.ID), "", otherToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get: expected 404, got %d", rec.Code)
	}
}

func TestContactListFilters(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "owner@example.com", "secret-password")
	token := env.accessToken(t, user.Email)

	bodies := []string{
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","phone_number":"380501234567"}`,
		`{"first_name":"Alan","last_name":"Turing","email":"alan@example.com","phone_number":"380501234568"}`,
	}
	for _, body := range bodies {
		if rec := env.doJSON(http.MethodPost, "/api/v1/contacts", body, token); rec.Code != http.StatusCreated {
			t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := env.doJSON(http.MethodGet, "/api/v1/contacts?last_name=lov", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered list: expected 200, got %d", rec.Code)
	}
	var list []domain.Contact
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].FirstName != "Ada" {
		t.Fatalf("unexpected filter result: %+v", list)
	}

	rec = env.doJSON(http.MethodGet, "/api/v1/contacts?skip=1&limit=1", "", token)
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode paginated list: %v", err)
	}
	if len(list) != 1 || list[0].FirstName != "Alan" {
		t.Fatalf("unexpected pagination result: %+v", list)
	}
}

func TestContactNotFoundPaths(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "owner@example.com", "secret-password")
	token := env.accessToken(t, user.Email)

	if rec := env.doJSON(http.MethodGet, "/api/v1/contacts/999", "", token); rec.Code != http.StatusNotFound {
		t.Fatalf("get: expected 404, got %d", rec.Code)
	}
	if rec := env.doJSON(http.MethodDelete, "/api/v1/contacts/999", "", token); rec.Code != http.StatusNotFound {
		t.Fatalf("delete: expected 404, got %d", rec.Code)
	}
	if rec := env.doJSON(http.MethodPut, "/api/v1/contacts/999", `{"first_name":"X"}`, token); rec.Code != http.StatusNotFound {
		t.Fatalf("update: expected 404, got %d", rec.Code)
	}
	// IDs no numéricos también se reportan como inexistentes.
	if rec := env.doJSON(http.MethodGet, "/api/v1/contacts/abc", "", token); rec.Code != http.StatusNotFound {
		t.Fatalf("non-numeric id: expected 404, got %d", rec.Code)
	}
}
