package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/trip-quoter/internal/catalog"
	"github.com/eugenenazirov/trip-quoter/internal/pricing"
	"github.com/eugenenazirov/trip-quoter/internal/quote"
	"github.com/eugenenazirov/trip-quoter/internal/session"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the rate catalog and session store into HTTP handlers.
type Handler struct {
	catalog  catalog.Catalog
	sessions session.Store

	clock     func() time.Time
	logger    *zap.Logger
	documents map[string]documentFormat
}

// documentFormat pairs a quote renderer with the content type it produces.
type documentFormat struct {
	contentType string
	render      func(io.Writer, quote.Document) error
}

func defaultDocumentFormats() map[string]documentFormat {
	return map[string]documentFormat{
		"html": {contentType: "text/html; charset=utf-8", render: quote.RenderHTML},
		"text": {contentType: "text/plain; charset=utf-8", render: quote.RenderText},
	}
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(cat catalog.Catalog, sessions session.Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		catalog:  cat,
		sessions: sessions,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		logger:    zap.NewNop(),
		documents: defaultDocumentFormats(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	_ = r
	rates := h.catalog.Rates()
	defaults := h.catalog.NewTripInput()

	resp := catalogResponse{
		TaxMultiplier: pricing.TaxMultiplier,
		Company:       h.catalog.Company(),
		DriverItems: driverItemsResponse{
			Provincial: defaults.Provincial.Items(),
			National:   defaults.National.Items(),
		},
	}
	for _, v := range pricing.Vehicles() {
		rate, err := rates.Lookup(v)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		resp.Vehicles = append(resp.Vehicles, vehicleResponse{
			ID:           v,
			Label:        v.Label(),
			Productive:   rate.Productive,
			Unproductive: rate.Unproductive,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleQuote prices a full trip in one request without keeping a session.
func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", fmt.Sprintf("unable to parse JSON payload: %v", err), "trip fields use camelCase names such as productiveKm and discountPercent")
		return
	}

	sess, err := session.New("", h.catalog, h.clock)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	if req.Vehicle != "" {
		vehicle, err := pricing.ParseVehicle(req.Vehicle)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid vehicle", err.Error(), vehicleSuggestion())
			return
		}
		if err := sess.SetVehicle(vehicle); err != nil {
			writeInternalError(w, err)
			return
		}
	}

	assignments, err := req.assignments()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	rejected := make(map[string]string)
	for _, a := range assignments {
		if err := sess.Set(a.field, a.value); err != nil {
			if !isValidationError(err) {
				writeSessionError(w, err)
				return
			}
			rejected[string(a.field)] = sess.Snapshot().Errors[string(a.field)]
		}
	}
	if len(rejected) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, quoteErrorResponse{
			Error:  "Invalid trip",
			Fields: rejected,
		})
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		Input:   sess.Input(),
		Result:  sess.Result(),
		Display: newDisplay(sess.Result()),
	})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Create()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	h.logger.Info("session created",
		zap.String("session_id", snap.ID),
		zap.String("request_id", requestIDFromContext(r.Context())),
	)
	writeJSON(w, http.StatusCreated, newSessionResponse(snap))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	var snap session.Snapshot
	err := h.sessions.View(r.PathValue("id"), func(s *session.Session) error {
		snap = s.Snapshot()
		return nil
	})
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(snap))
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.sessions.Delete(id); err != nil {
		writeSessionError(w, err)
		return
	}
	h.logger.Info("session deleted", zap.String("session_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetField(w http.ResponseWriter, r *http.Request) {
	field, err := pricing.ParseField(r.PathValue("field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown field", err.Error())
		return
	}

	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "value is required")
		return
	}

	snap, err := h.sessions.Update(r.PathValue("id"), func(s *session.Session) error {
		return s.Set(field, *req.Value)
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, newSessionResponse(snap))
	case errors.Is(err, session.ErrReadOnlyField):
		writeError(w, http.StatusBadRequest, "Read-only field", err.Error(), "unit prices come from the rate catalog")
	case isValidationError(err):
		writeJSON(w, http.StatusUnprocessableEntity, fieldErrorResponse{
			Error:   "Invalid value",
			Details: err.Error(),
			Field:   string(field),
			Session: newSessionResponse(snap),
		})
	default:
		writeSessionError(w, err)
	}
}

func (h *Handler) handleSetVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	vehicle, err := pricing.ParseVehicle(req.Vehicle)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid vehicle", err.Error(), vehicleSuggestion())
		return
	}

	snap, err := h.sessions.Update(r.PathValue("id"), func(s *session.Session) error {
		return s.SetVehicle(vehicle)
	})
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(snap))
}

func (h *Handler) handleSetDetails(w http.ResponseWriter, r *http.Request) {
	var details quote.Details
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	snap, err := h.sessions.Update(r.PathValue("id"), func(s *session.Session) error {
		return s.SetDetails(details)
	})
	if err != nil {
		if errors.Is(err, quote.ErrInvalidDetails) {
			writeError(w, http.StatusBadRequest, "Invalid details", err.Error())
			return
		}
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(snap))
}

func (h *Handler) handleResetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Update(r.PathValue("id"), func(s *session.Session) error {
		return s.Reset()
	})
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(snap))
}

func (h *Handler) handleDocument(w http.ResponseWriter, r *http.Request) {
	var doc quote.Document
	err := h.sessions.View(r.PathValue("id"), func(s *session.Session) error {
		doc = s.Document()
		return nil
	})
	if err != nil {
		writeSessionError(w, err)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "html"
	}
	f, ok := h.documents[format]
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid format", fmt.Sprintf("unsupported format %q", format), "use html or text")
		return
	}

	var buf bytes.Buffer
	if err := f.render(&buf, doc); err != nil {
		h.logger.Error("render document failed",
			zap.String("format", format),
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeInternalError(w, fmt.Errorf("render %s document: %w", format, err))
		return
	}
	w.Header().Set("Content-Type", f.contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func isValidationError(err error) bool {
	return errors.Is(err, pricing.ErrNegativeValue) ||
		errors.Is(err, pricing.ErrOutOfRange) ||
		errors.Is(err, pricing.ErrNotInteger) ||
		errors.Is(err, pricing.ErrNotFinite)
}

func vehicleSuggestion() string {
	ids := make([]string, 0, len(pricing.Vehicles()))
	for _, v := range pricing.Vehicles() {
		ids = append(ids, string(v))
	}
	return "valid vehicles: " + strings.Join(ids, ", ")
}

type assignment struct {
	field pricing.Field
	value float64
}

// tripRequest carries driver items as item key -> quantity per group.
type tripRequest struct {
	Units           *float64           `json:"units"`
	ProductiveKm    *float64           `json:"productiveKm"`
	DestinationKm   *float64           `json:"destinationKm"`
	UnproductiveKm  *float64           `json:"unproductiveKm"`
	Passengers      *float64           `json:"passengers"`
	DiscountPercent *float64           `json:"discountPercent"`
	Vehicle         string             `json:"vehicle"`
	Provincial      map[string]float64 `json:"provincial"`
	National        map[string]float64 `json:"national"`
}

func (r tripRequest) assignments() ([]assignment, error) {
	scalars := []struct {
		field pricing.Field
		value *float64
	}{
		{pricing.FieldUnits, r.Units},
		{pricing.FieldProductiveKm, r.ProductiveKm},
		{pricing.FieldDestinationKm, r.DestinationKm},
		{pricing.FieldUnproductiveKm, r.UnproductiveKm},
		{pricing.FieldPassengers, r.Passengers},
		{pricing.FieldDiscountPercent, r.DiscountPercent},
	}

	var out []assignment
	for _, s := range scalars {
		if s.value != nil {
			out = append(out, assignment{field: s.field, value: *s.value})
		}
	}

	groups := []struct {
		group      pricing.Group
		quantities map[string]float64
	}{
		{pricing.GroupProvincial, r.Provincial},
		{pricing.GroupNational, r.National},
	}
	for _, g := range groups {
		keys := make([]string, 0, len(g.quantities))
		for key := range g.quantities {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			field := pricing.ItemField(g.group, pricing.ItemKey(key), pricing.AttrQuantity)
			if !field.Valid() {
				return nil, fmt.Errorf("%w: %s item %q", pricing.ErrUnknownField, g.group, key)
			}
			out = append(out, assignment{field: field, value: g.quantities[key]})
		}
	}
	return out, nil
}

type fieldRequest struct {
	Value *float64 `json:"value"`
}

type vehicleRequest struct {
	Vehicle string `json:"vehicle"`
}

// displayTotals are the whole-peso strings shown on screen.
type displayTotals struct {
	Subtotal     string `json:"subtotal"`
	FinalCost    string `json:"finalCost"`
	TotalWithTax string `json:"totalWithTax"`
}

func newDisplay(result pricing.Result) displayTotals {
	return displayTotals{
		Subtotal:     quote.FormatScreen(result.Subtotal),
		FinalCost:    quote.FormatScreen(result.FinalCost),
		TotalWithTax: quote.FormatScreen(result.TotalWithTax),
	}
}

type sessionResponse struct {
	session.Snapshot
	Display displayTotals `json:"display"`
}

func newSessionResponse(snap session.Snapshot) sessionResponse {
	return sessionResponse{Snapshot: snap, Display: newDisplay(snap.Result)}
}

type quoteResponse struct {
	Input   pricing.TripInput `json:"input"`
	Result  pricing.Result    `json:"result"`
	Display displayTotals     `json:"display"`
}

type quoteErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type fieldErrorResponse struct {
	Error   string          `json:"error"`
	Details string          `json:"details,omitempty"`
	Field   string          `json:"field"`
	Session sessionResponse `json:"session"`
}

type vehicleResponse struct {
	ID           pricing.VehicleCategory `json:"id"`
	Label        string                  `json:"label"`
	Productive   float64                 `json:"productive"`
	Unproductive float64                 `json:"unproductive"`
}

type driverItemsResponse struct {
	Provincial []pricing.DriverItem `json:"provincial"`
	National   []pricing.DriverItem `json:"national"`
}

type catalogResponse struct {
	Vehicles      []vehicleResponse   `json:"vehicles"`
	DriverItems   driverItemsResponse `json:"driverItems"`
	TaxMultiplier float64             `json:"taxMultiplier"`
	Company       catalog.Company     `json:"company"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "Session not found", err.Error(), "create a session with POST /api/sessions")
	case errors.Is(err, pricing.ErrUnknownVehicle):
		writeError(w, http.StatusBadRequest, "Invalid vehicle", err.Error(), vehicleSuggestion())
	case errors.Is(err, pricing.ErrUnknownField):
		writeError(w, http.StatusBadRequest, "Unknown field", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
