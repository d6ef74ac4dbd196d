package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/artpar/formgate/adapters/clock"
	"github.com/artpar/formgate/adapters/hasher"
	"github.com/artpar/formgate/adapters/http/api"
	"github.com/artpar/formgate/adapters/idgen"
	"github.com/artpar/formgate/adapters/memory"
	"github.com/artpar/formgate/app"
	"github.com/rs/zerolog"
)

const testAdminToken = "test-admin-token-value"

type testServer struct {
	handler     http.Handler
	profiles    *memory.ProfileStore
	submissions *memory.SubmissionStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	fields := memory.NewFieldStore()
	placements := memory.NewPlacementStore(fields)
	forms := memory.NewFormStore()
	submissions := memory.NewSubmissionStore()
	profiles := memory.NewProfileStore()
	ids := idgen.NewSequential("id-")
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := zerolog.Nop()

	catalog := app.NewCatalogService(fields, placements, ids, clk, logger)
	placementSvc := app.NewPlacementService(catalog, placements, ids, logger, nil)
	syncSvc := app.NewSyncService(catalog, placements, ids, logger, nil)
	validator := app.NewValidatorService(placements, profiles, logger, nil)
	formSvc := app.NewFormService(forms, submissions, profiles, validator, ids, clk, logger, nil)

	h := api.NewHandler(api.Deps{
		Catalog:        catalog,
		Placements:     placementSvc,
		Sync:           syncSvc,
		Validator:      validator,
		Forms:          formSvc,
		Hasher:         hasher.Fake{},
		AdminTokenHash: []byte(testAdminToken),
		Logger:         logger,
	})
	return &testServer{handler: h.Router(), profiles: profiles, submissions: submissions}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) admin(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	return s.do(t, method, path, body, map[string]string{api.AdminTokenHeader: testAdminToken})
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAdminRequiresToken(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(t, http.MethodGet, "/admin/fields", nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/admin/fields", nil, map[string]string{api.AdminTokenHeader: "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", w.Code)
	}
	if w := s.admin(t, http.MethodGet, "/admin/fields", nil); w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}

func TestAdminDisabledWithoutTokenHash(t *testing.T) {
	s := newTestServer(t)
	h := api.NewHandler(api.Deps{Hasher: hasher.Fake{}, Logger: zerolog.Nop()})
	s.handler = h.Router()

	w := s.do(t, http.MethodGet, "/admin/fields", nil, map[string]string{api.AdminTokenHeader: "anything"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, disabled admin surface must look absent", w.Code)
	}
}

func TestFieldLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.admin(t, http.MethodPost, "/admin/fields", map[string]any{
		"key":   "Favorite Color",
		"type":  "text",
		"label": "Favorite Color",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", w.Code, w.Body.String())
	}
	var created struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	decodeBody(t, w, &created)
	if created.Key != "favorite_color" {
		t.Errorf("key = %q, want normalized", created.Key)
	}

	w = s.admin(t, http.MethodPatch, "/admin/fields/"+created.ID, map[string]any{"label": "Colour"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch: status = %d", w.Code)
	}

	w = s.admin(t, http.MethodDelete, "/admin/fields/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", w.Code)
	}
	w = s.admin(t, http.MethodGet, "/admin/fields/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d", w.Code)
	}
}

func TestFieldValidationReturnsIssueList(t *testing.T) {
	s := newTestServer(t)

	w := s.admin(t, http.MethodPost, "/admin/fields", map[string]any{
		"key":        "age",
		"type":       "slider",
		"min_length": -2,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp struct {
		Issues []string `json:"issues"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Issues) != 2 {
		t.Errorf("issues = %v, want both violations listed", resp.Issues)
	}
}

func TestPlacementFlowOnScope(t *testing.T) {
	s := newTestServer(t)

	for _, key := range []string{"alpha", "beta"} {
		w := s.admin(t, http.MethodPost, "/admin/scopes/registration/placements", map[string]any{"key": key})
		if w.Code != http.StatusCreated {
			t.Fatalf("place %s: status = %d, body %s", key, w.Code, w.Body.String())
		}
	}

	w := s.admin(t, http.MethodGet, "/admin/scopes/registration/placements", nil)
	var list struct {
		Placements []struct {
			ID         string `json:"id"`
			Key        string `json:"key"`
			OrderIndex int    `json:"order_index"`
		} `json:"placements"`
	}
	decodeBody(t, w, &list)
	if len(list.Placements) != 2 {
		t.Fatalf("placements = %d", len(list.Placements))
	}
	if list.Placements[1].OrderIndex != 10 {
		t.Errorf("second order_index = %d, want 10", list.Placements[1].OrderIndex)
	}

	// Sequential reorder by ids, reversed.
	w = s.admin(t, http.MethodPut, "/admin/scopes/registration/placements/order", map[string]any{
		"ids": []string{list.Placements[1].ID, list.Placements[0].ID},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder: status = %d, body %s", w.Code, w.Body.String())
	}
	decodeBody(t, w, &list)
	if list.Placements[0].Key != "beta" || list.Placements[0].OrderIndex != 0 {
		t.Errorf("after reorder: %+v", list.Placements)
	}

	// Explicit reorder with an unknown id rejects the whole batch.
	w = s.admin(t, http.MethodPut, "/admin/scopes/registration/placements/order", map[string]any{
		"items": []map[string]any{{"id": "ghost", "order_index": 5}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("ghost reorder: status = %d, want 400", w.Code)
	}
}

func TestSyncEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.admin(t, http.MethodPost, "/admin/fields/newsletter_opt_in/sync", map[string]any{
		"scopes": []string{"registration", "profile"},
		"field":  map[string]any{"type": "checkbox", "label": "Subscribe"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("sync: status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Added   []string `json:"added"`
		Removed []string `json:"removed"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Added) != 2 {
		t.Errorf("added = %v", resp.Added)
	}

	// Narrow to profile only.
	w = s.admin(t, http.MethodPost, "/admin/fields/newsletter_opt_in/sync", map[string]any{
		"scopes": []string{"profile"},
	})
	decodeBody(t, w, &resp)
	if len(resp.Removed) != 1 || resp.Removed[0] != "scope:registration" {
		t.Errorf("removed = %v", resp.Removed)
	}

	// Empty desired set.
	w = s.admin(t, http.MethodPost, "/admin/fields/newsletter_opt_in/sync", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty sync: status = %d, want 400", w.Code)
	}
}

func TestSyncEndpointPerScopeOverrides(t *testing.T) {
	s := newTestServer(t)

	// Shared help text, required only in registration.
	w := s.admin(t, http.MethodPost, "/admin/fields/newsletter_opt_in/sync", map[string]any{
		"scopes":    []string{"registration", "profile"},
		"field":     map[string]any{"type": "checkbox"},
		"overrides": map[string]any{"help_text": "You can unsubscribe anytime."},
		"scope_overrides": map[string]any{
			"registration": map[string]any{"required": true},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("sync: status = %d, body %s", w.Code, w.Body.String())
	}

	listed := func(scope string) []struct {
		Key      string `json:"key"`
		Required bool   `json:"required"`
		HelpText string `json:"help_text"`
	} {
		w := s.admin(t, http.MethodGet, "/admin/scopes/"+scope+"/placements", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("list %s: status = %d", scope, w.Code)
		}
		var resp struct {
			Placements []struct {
				Key      string `json:"key"`
				Required bool   `json:"required"`
				HelpText string `json:"help_text"`
			} `json:"placements"`
		}
		decodeBody(t, w, &resp)
		return resp.Placements
	}

	reg := listed("registration")
	if len(reg) != 1 || !reg[0].Required {
		t.Errorf("registration placement = %+v, want required", reg)
	}
	if reg[0].HelpText != "You can unsubscribe anytime." {
		t.Errorf("shared help text not applied: %+v", reg[0])
	}
	prof := listed("profile")
	if len(prof) != 1 || prof[0].Required {
		t.Errorf("profile placement = %+v, want optional", prof)
	}
	if prof[0].HelpText != "You can unsubscribe anytime." {
		t.Errorf("shared help text not applied: %+v", prof[0])
	}
}

func TestPublicScopeFieldsHideInvisible(t *testing.T) {
	s := newTestServer(t)

	if w := s.admin(t, http.MethodPost, "/admin/scopes/profile/placements", map[string]any{"key": "shown"}); w.Code != http.StatusCreated {
		t.Fatalf("place: %d", w.Code)
	}
	if w := s.admin(t, http.MethodPost, "/admin/scopes/profile/placements", map[string]any{"key": "hidden", "visible": false}); w.Code != http.StatusCreated {
		t.Fatalf("place: %d", w.Code)
	}

	w := s.do(t, http.MethodGet, "/scopes/profile/fields", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Fields []struct {
			Key string `json:"key"`
		} `json:"fields"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Fields) != 1 || resp.Fields[0].Key != "shown" {
		t.Errorf("fields = %+v", resp.Fields)
	}
}

func TestSubmitScopeRequiresIdentity(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/scopes/profile/submit", map[string]any{}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestSubmitScopeWritesProfile(t *testing.T) {
	s := newTestServer(t)

	if w := s.admin(t, http.MethodPost, "/admin/scopes/profile/placements", map[string]any{
		"key":   "display_name",
		"field": map[string]any{"write_to": "core"},
	}); w.Code != http.StatusCreated {
		t.Fatalf("place: %d", w.Code)
	}

	w := s.do(t, http.MethodPost, "/scopes/profile/submit",
		map[string]any{"display_name": "Ada"},
		map[string]string{api.UserHeader: "user-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("submit: status = %d, body %s", w.Code, w.Body.String())
	}

	rec, err := s.profiles.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("profile get: %v", err)
	}
	if rec.DisplayName != "Ada" {
		t.Errorf("display_name = %q", rec.DisplayName)
	}
}

func TestPublicFormLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.admin(t, http.MethodPost, "/admin/forms", map[string]any{
		"slug":         "contact-us",
		"title":        "Contact Us",
		"is_published": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create form: status = %d, body %s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &created)

	if w := s.admin(t, http.MethodPost, "/admin/forms/"+created.ID+"/placements", map[string]any{
		"key":      "message",
		"required": true,
		"field":    map[string]any{"label": "Message"},
	}); w.Code != http.StatusCreated {
		t.Fatalf("place: status = %d, body %s", w.Code, w.Body.String())
	}

	// Public read.
	w = s.do(t, http.MethodGet, "/form/contact-us", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public form: status = %d", w.Code)
	}
	var pub struct {
		Form struct {
			Slug string `json:"slug"`
		} `json:"form"`
		Fields []struct {
			Key      string `json:"key"`
			Required bool   `json:"required"`
		} `json:"fields"`
	}
	decodeBody(t, w, &pub)
	if pub.Form.Slug != "contact-us" || len(pub.Fields) != 1 || !pub.Fields[0].Required {
		t.Errorf("public form = %+v", pub)
	}

	// Anonymous submit with a missing required field.
	w = s.do(t, http.MethodPost, "/form/contact-us/submit", map[string]any{}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid submit: status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Message is required") {
		t.Errorf("body = %s", w.Body.String())
	}

	// Valid anonymous submit lands in the capture log.
	w = s.do(t, http.MethodPost, "/form/contact-us/submit", map[string]any{"message": "hello"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: status = %d, body %s", w.Code, w.Body.String())
	}
	w = s.admin(t, http.MethodGet, "/admin/forms/"+created.ID+"/submissions", nil)
	var subs struct {
		Submissions []struct {
			Payload map[string]any `json:"payload"`
		} `json:"submissions"`
	}
	decodeBody(t, w, &subs)
	if len(subs.Submissions) != 1 || subs.Submissions[0].Payload["message"] != "hello" {
		t.Errorf("submissions = %+v", subs.Submissions)
	}
}

func TestPublicFormHiddenWhenUnpublished(t *testing.T) {
	s := newTestServer(t)

	if w := s.admin(t, http.MethodPost, "/admin/forms", map[string]any{
		"slug":  "draft",
		"title": "Draft",
	}); w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}

	w := s.do(t, http.MethodGet, "/form/draft", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, unpublished form must look absent", w.Code)
	}
}

func TestSubmitInactiveFormConflictStatus(t *testing.T) {
	s := newTestServer(t)

	if w := s.admin(t, http.MethodPost, "/admin/forms", map[string]any{
		"slug":         "paused",
		"title":        "Paused",
		"is_active":    false,
		"is_published": true,
	}); w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}

	w := s.do(t, http.MethodPost, "/form/paused/submit", map[string]any{}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestDuplicateSlugConflictStatus(t *testing.T) {
	s := newTestServer(t)

	body := map[string]any{"slug": "contact", "title": "Contact"}
	if w := s.admin(t, http.MethodPost, "/admin/forms", body); w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	if w := s.admin(t, http.MethodPost, "/admin/forms", body); w.Code != http.StatusConflict {
		t.Fatalf("duplicate: status = %d, want 409", w.Code)
	}
}

func TestBadJSONRejected(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/fields", strings.NewReader("{nope"))
	req.Header.Set(api.AdminTokenHeader, testAdminToken)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
