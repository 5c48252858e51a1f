package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	app "github.com/glosslab/salon-service/internal/app"
	"github.com/glosslab/salon-service/internal/app/metrics"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a mux exposing the core REST API.
func NewHandler(application *app.Application) http.Handler {
	h := &handler{app: application}
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts", h.accounts)
	mux.HandleFunc("/accounts/", h.accountResources)
	mux.HandleFunc("/designs", h.designs)
	mux.HandleFunc("/designs/", h.designResources)
	mux.HandleFunc("/stores", h.stores)
	mux.HandleFunc("/stores/", h.storeResources)
	mux.HandleFunc("/healthz", h.health)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) accounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name     string            `json:"name"`
			Email    string            `json:"email"`
			Phone    string            `json:"phone"`
			Metadata map[string]string `json:"metadata"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		acct, err := h.app.Accounts.Create(r.Context(), payload.Name, payload.Email, payload.Phone, payload.Metadata)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, acct)

	case http.MethodGet:
		accts, err := h.app.Accounts.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, accts)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) accountResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/accounts"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	accountID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			acct, err := h.app.Accounts.Get(r.Context(), accountID)
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, acct)
		case http.MethodPatch:
			var payload struct {
				Name      *string `json:"name"`
				Email     *string `json:"email"`
				Phone     *string `json:"phone"`
				AvatarURL *string `json:"avatar_url"`
			}
			if err := decodeJSON(r.Body, &payload); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			acct, err := h.app.Accounts.Update(r.Context(), accountID, payload.Name, payload.Email, payload.Phone, payload.AvatarURL)
			if err != nil {
				writeError(w, notFoundOr(err, http.StatusBadRequest), err)
				return
			}
			writeJSON(w, http.StatusOK, acct)
		case http.MethodDelete:
			if err := h.app.Accounts.Delete(r.Context(), accountID); err != nil {
				writeError(w, notFoundOr(err, http.StatusBadRequest), err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	resource := parts[1]
	switch resource {
	case "cart":
		h.accountCart(w, r, accountID, parts[2:])
	case "selection":
		h.accountSelection(w, r, accountID)
	case "checkout":
		h.accountCheckout(w, r, accountID)
	case "appointments":
		h.accountAppointments(w, r, accountID, parts[2:])
	case "feedback":
		h.accountFeedback(w, r, accountID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) accountCart(w http.ResponseWriter, r *http.Request, accountID string, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodPost:
			var payload struct {
				DesignID       string `json:"design_id"`
				ServiceName    string `json:"service_name"`
				ServicePrice   int64  `json:"service_price"`
				FingerPosition int    `json:"finger_position"`
				LeftHand       bool   `json:"left_hand"`
			}
			if err := decodeJSON(r.Body, &payload); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}

			entry, err := h.app.Cart.AddEntry(r.Context(), accountID, payload.DesignID, payload.ServiceName,
				payload.ServicePrice, payload.FingerPosition, payload.LeftHand)
			if err != nil {
				writeError(w, notFoundOr(err, http.StatusBadRequest), err)
				return
			}
			writeJSON(w, http.StatusCreated, entry)

		case http.MethodGet:
			view, err := h.app.Cart.Snapshot(r.Context(), accountID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, view)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	entryID := rest[0]
	if len(rest) > 1 && rest[1] == "toggle" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sel, err := h.app.Cart.Toggle(r.Context(), accountID, entryID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Selection []string `json:"selection"`
		}{Selection: sel.IDs()})
		return
	}

	if len(rest) == 1 {
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := h.app.Cart.RemoveEntry(r.Context(), accountID, entryID); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func (h *handler) accountSelection(w http.ResponseWriter, r *http.Request, accountID string) {
	switch r.Method {
	case http.MethodGet:
		view, err := h.app.Cart.Snapshot(r.Context(), accountID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Selection []string `json:"selection"`
			Total     int64    `json:"total"`
		}{Selection: view.Selection.IDs(), Total: view.SelectionTotal})
	case http.MethodDelete:
		h.app.Cart.ClearSelection(accountID)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) accountCheckout(w http.ResponseWriter, r *http.Request, accountID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		StoreID  string    `json:"store_id"`
		ArtistID string    `json:"artist_id"`
		StartsAt time.Time `json:"starts_at"`
		Note     string    `json:"note"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	appt, err := h.app.Cart.Checkout(r.Context(), accountID, payload.StoreID, payload.ArtistID, payload.StartsAt, payload.Note)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func (h *handler) accountAppointments(w http.ResponseWriter, r *http.Request, accountID string, rest []string) {
	if len(rest) == 0 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		appts, err := h.app.Bookings.List(r.Context(), accountID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, appts)
		return
	}

	appointmentID := rest[0]
	appt, err := h.app.Bookings.Get(r.Context(), appointmentID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if appt.AccountID != accountID {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	if len(rest) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, appt)
	case http.MethodPatch:
		var payload struct {
			Status *string `json:"status"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if payload.Status == nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("status is required"))
			return
		}
		switch strings.ToLower(strings.TrimSpace(*payload.Status)) {
		case "cancelled", "canceled":
			appt, err = h.app.Bookings.Cancel(r.Context(), appointmentID)
		case "completed":
			appt, err = h.app.Bookings.Complete(r.Context(), appointmentID)
		default:
			writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported status %s", *payload.Status))
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) accountFeedback(w http.ResponseWriter, r *http.Request, accountID string) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			AppointmentID string `json:"appointment_id"`
			Rating        int    `json:"rating"`
			Comment       string `json:"comment"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		fb, err := h.app.Feedback.Submit(r.Context(), accountID, payload.AppointmentID, payload.Rating, payload.Comment)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, fb)

	case http.MethodGet:
		items, err := h.app.Feedback.List(r.Context(), accountID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, items)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) designs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name         string   `json:"name"`
			ThumbnailURL string   `json:"thumbnail_url"`
			Description  string   `json:"description"`
			Tags         []string `json:"tags"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		d, err := h.app.Catalog.CreateDesign(r.Context(), payload.Name, payload.ThumbnailURL, payload.Description, payload.Tags)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, d)

	case http.MethodGet:
		designs, err := h.app.Catalog.ListDesigns(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, designs)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) designResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/designs"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	designID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			d, err := h.app.Catalog.GetDesign(r.Context(), designID)
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, d)
		case http.MethodPatch:
			var payload struct {
				Active *bool `json:"active"`
			}
			if err := decodeJSON(r.Body, &payload); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			if payload.Active == nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("active is required"))
				return
			}
			d, err := h.app.Catalog.SetActive(r.Context(), designID, *payload.Active)
			if err != nil {
				writeError(w, notFoundOr(err, http.StatusBadRequest), err)
				return
			}
			writeJSON(w, http.StatusOK, d)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if parts[1] != "services" || len(parts) > 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name            string `json:"name"`
			Price           int64  `json:"price"`
			DurationMinutes int    `json:"duration_minutes"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		svc, err := h.app.Catalog.AddService(r.Context(), designID, payload.Name, payload.Price, payload.DurationMinutes)
		if err != nil {
			writeError(w, notFoundOr(err, http.StatusBadRequest), err)
			return
		}
		writeJSON(w, http.StatusCreated, svc)

	case http.MethodGet:
		svcs, err := h.app.Catalog.ListServices(r.Context(), designID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, svcs)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) stores(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name    string `json:"name"`
			Address string `json:"address"`
			Phone   string `json:"phone"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		store, err := h.app.Bookings.CreateStore(r.Context(), payload.Name, payload.Address, payload.Phone)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, store)

	case http.MethodGet:
		stores, err := h.app.Bookings.ListStores(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, stores)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) storeResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/stores"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "artists" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	storeID := parts[0]

	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		artist, err := h.app.Bookings.CreateArtist(r.Context(), storeID, payload.Name)
		if err != nil {
			writeError(w, notFoundOr(err, http.StatusBadRequest), err)
			return
		}
		writeJSON(w, http.StatusCreated, artist)

	case http.MethodGet:
		artists, err := h.app.Bookings.ListArtists(r.Context(), storeID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, artists)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// notFoundOr maps missing-record errors to 404, leaving other failures at the
// caller's status.
func notFoundOr(err error, status int) int {
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound
	}
	return status
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
