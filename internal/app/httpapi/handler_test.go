package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	app "github.com/glosslab/salon-service/internal/app"
)

const testAuthToken = "test-token"

func TestHandlerLifecycle(t *testing.T) {
	application, err := app.New(app.Stores{}, app.Options{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	if err := application.Start(context.Background()); err != nil {
		t.Fatalf("start application: %v", err)
	}
	defer application.Stop(context.Background())

	handler := WrapWithAuth(NewHandler(application), []string{testAuthToken}, nil, nil)

	// Account setup.
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/accounts", marshal(map[string]any{
		"name":  "Dana",
		"email": "dana@example.com",
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 create account, got %d: %s", resp.Code, resp.Body.String())
	}
	accountID := fieldString(t, resp.Body.Bytes(), "id")

	// Catalog setup: two designs, each with a priced service.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/designs", marshal(map[string]any{
		"name":          "Cherry Blossom",
		"thumbnail_url": "https://cdn.example.com/cherry.png",
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 create design, got %d", resp.Code)
	}
	designA := fieldString(t, resp.Body.Bytes(), "id")

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/designs", marshal(map[string]any{
		"name": "Matte Black",
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 create design, got %d", resp.Code)
	}
	designB := fieldString(t, resp.Body.Bytes(), "id")

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/designs/"+designA+"/services", marshal(map[string]any{
		"name":             "gel full set",
		"price":            120000,
		"duration_minutes": 45,
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 add service, got %d", resp.Code)
	}

	// Booking setup: a store with one artist.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/stores", marshal(map[string]any{
		"name":    "Downtown Studio",
		"address": "12 Main St",
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 create store, got %d", resp.Code)
	}
	storeID := fieldString(t, resp.Body.Bytes(), "id")

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/stores/"+storeID+"/artists", marshal(map[string]any{
		"name": "Mio",
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 create artist, got %d", resp.Code)
	}
	artistID := fieldString(t, resp.Body.Bytes(), "id")

	// Cart: two entries for design A on distinct slots, one for design B on
	// the same slot as the first.
	addEntry := func(designID string, position int, left bool, price int64) string {
		t.Helper()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/accounts/"+accountID+"/cart", marshal(map[string]any{
			"design_id":       designID,
			"service_name":    "gel full set",
			"service_price":   price,
			"finger_position": position,
			"left_hand":       left,
		})))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 add entry, got %d: %s", rec.Code, rec.Body.String())
		}
		return fieldString(t, rec.Body.Bytes(), "id")
	}

	entryA := addEntry(designA, 0, true, 120000)
	entryB := addEntry(designA, 1, true, 90000)
	entryC := addEntry(designB, 0, true, 100000)

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/accounts/"+accountID+"/cart", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 cart snapshot, got %d", resp.Code)
	}
	var view struct {
		Groups []struct {
			DesignID string `json:"design_id"`
			Pending  bool   `json:"pending"`
		} `json:"groups"`
		CartTotal int64 `json:"cart_total"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	if len(view.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(view.Groups))
	}
	if view.Groups[0].DesignID != designA || view.Groups[1].DesignID != designB {
		t.Fatalf("groups not in insertion order: %+v", view.Groups)
	}
	if view.Groups[0].Pending {
		t.Fatalf("design with catalog metadata should not be pending")
	}
	if view.CartTotal != 310000 {
		t.Fatalf("cart total = %d, want 310000", view.CartTotal)
	}

	toggle := func(entryID string) []string {
		t.Helper()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/accounts/"+accountID+"/cart/"+entryID+"/toggle", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 toggle, got %d: %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Selection []string `json:"selection"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal selection: %v", err)
		}
		return body.Selection
	}

	if sel := toggle(entryA); len(sel) != 1 || sel[0] != entryA {
		t.Fatalf("selection after first toggle = %v", sel)
	}
	if sel := toggle(entryB); len(sel) != 2 {
		t.Fatalf("selection after second toggle = %v", sel)
	}
	// entryC occupies the same slot as entryA; toggling it is a no-op.
	if sel := toggle(entryC); len(sel) != 2 || sel[0] != entryA || sel[1] != entryB {
		t.Fatalf("conflicting toggle changed selection: %v", sel)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/accounts/"+accountID+"/selection", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 selection, got %d", resp.Code)
	}
	var selBody struct {
		Selection []string `json:"selection"`
		Total     int64    `json:"total"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &selBody); err != nil {
		t.Fatalf("unmarshal selection: %v", err)
	}
	if selBody.Total != 210000 {
		t.Fatalf("selection total = %d, want 210000", selBody.Total)
	}

	// Checkout books an appointment and empties the cart.
	startsAt := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/accounts/"+accountID+"/checkout", marshal(map[string]any{
		"store_id":  storeID,
		"artist_id": artistID,
		"starts_at": startsAt.Format(time.RFC3339),
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 checkout, got %d: %s", resp.Code, resp.Body.String())
	}
	appointmentID := fieldString(t, resp.Body.Bytes(), "id")
	var appt struct {
		Total    int64    `json:"total"`
		EntryIDs []string `json:"entry_ids"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &appt); err != nil {
		t.Fatalf("unmarshal appointment: %v", err)
	}
	if appt.Total != 210000 {
		t.Fatalf("appointment total = %d, want 210000", appt.Total)
	}
	if len(appt.EntryIDs) != 2 {
		t.Fatalf("appointment entries = %v", appt.EntryIDs)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/accounts/"+accountID+"/cart", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 cart after checkout, got %d", resp.Code)
	}
	var after struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &after); err != nil {
		t.Fatalf("unmarshal cart: %v", err)
	}
	if len(after.Entries) != 0 {
		t.Fatalf("cart should be empty after checkout, has %d entries", len(after.Entries))
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/accounts/"+accountID+"/appointments", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 list appointments, got %d", resp.Code)
	}

	// Complete the appointment and leave feedback.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPatch, "/accounts/"+accountID+"/appointments/"+appointmentID, marshal(map[string]any{
		"status": "completed",
	})))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 complete appointment, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/accounts/"+accountID+"/feedback", marshal(map[string]any{
		"appointment_id": appointmentID,
		"rating":         5,
		"comment":        "loved it",
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 feedback, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/accounts/"+accountID+"/feedback", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 list feedback, got %d", resp.Code)
	}

	// Observability endpoints.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", resp.Code)
	}
	if resp.Body.Len() == 0 {
		t.Fatalf("expected metrics output to be non-empty")
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodDelete, "/accounts/"+accountID, nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 delete account, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/accounts/"+accountID, nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}

func TestHandlerRemoveEntryIdempotent(t *testing.T) {
	application, err := app.New(app.Stores{}, app.Options{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	handler := WrapWithAuth(NewHandler(application), []string{testAuthToken}, nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/accounts", marshal(map[string]any{"name": "Kai"})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 create account, got %d", resp.Code)
	}
	accountID := fieldString(t, resp.Body.Bytes(), "id")

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/accounts/"+accountID+"/cart", marshal(map[string]any{
		"design_id":       "d1",
		"service_name":    "polish",
		"service_price":   50000,
		"finger_position": 2,
		"left_hand":       false,
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 add entry, got %d", resp.Code)
	}
	entryID := fieldString(t, resp.Body.Bytes(), "id")

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodDelete, "/accounts/"+accountID+"/cart/"+entryID, nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 remove entry, got %d", resp.Code)
	}

	// Removing an already-removed entry is still a success.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodDelete, "/accounts/"+accountID+"/cart/"+entryID, nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 repeat remove, got %d", resp.Code)
	}
}

func TestHandlerAuthRequired(t *testing.T) {
	application, err := app.New(app.Stores{}, app.Options{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	handler := WrapWithAuth(NewHandler(application), []string{testAuthToken}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestHandlerAuthSkipPaths(t *testing.T) {
	application, err := app.New(app.Stores{}, app.Options{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	handler := WrapWithAuth(NewHandler(application), []string{testAuthToken}, nil, []string{"/designs"})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/designs", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on skipped path, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/accounts", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on guarded path, got %d", resp.Code)
	}
}

func TestHandlerMissingRecordsReturn404(t *testing.T) {
	application, err := app.New(app.Stores{}, app.Options{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	handler := WrapWithAuth(NewHandler(application), []string{testAuthToken}, nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodDelete, "/accounts/ghost", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting missing account, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPatch, "/accounts/ghost", marshal(map[string]any{"name": "X"})))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 patching missing account, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPatch, "/designs/ghost", marshal(map[string]any{"active": false})))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 patching missing design, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/designs/ghost/services", marshal(map[string]any{
		"name": "gel", "price": 100, "duration_minutes": 30,
	})))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 adding service to missing design, got %d", resp.Code)
	}
}

func authedRequest(method, url string, body []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testAuthToken)
	return req
}

func marshal(v any) []byte {
	buf, _ := json.Marshal(v)
	return buf
}

func fieldString(t *testing.T, body []byte, key string) string {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	s, _ := m[key].(string)
	if s == "" {
		t.Fatalf("missing %q in response: %s", key, body)
	}
	return s
}
