/*
handlers.go - HTTP API handlers for the sales grid service

PURPOSE:
  Exposes the upload -> view -> edit costs -> download flow over REST.
  Handles HTTP request/response, JSON serialization, and delegates to
  the grid engine.

ENDPOINTS:
  Variants:
    GET    /api/variants                    List registered variants

  Uploads:
    POST   /api/uploads?variant=NAME        Upload a file (multipart "file")
    GET    /api/uploads/{id}                Completed grid of an upload
    DELETE /api/uploads/{id}                Discard an upload
    PUT    /api/uploads/{id}/costs          Override cell costs
    GET    /api/uploads/{id}/summary        Daily cost summary
    GET    /api/uploads/{id}/export         Download (table=result|summary,
                                            format=csv|xlsx)

REQUEST FLOW:
  1. Parse HTTP request
  2. Read the file (ingest) and run the variant's Pipeline
  3. Store the result as a session with a TTL
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with the engine's message verbatim:
  - 400: Unreadable file, unknown variant, bad edit
  - 404: Unknown or expired upload
  - 409: Operation not supported by the upload's variant
  - 422: Missing columns, no usable rows
  - 500: Internal errors

SECURITY NOTE:
  No authentication. Upload size is capped by MaxUploadBytes.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/sales-grid/export"
	"github.com/warp/sales-grid/factory"
	"github.com/warp/sales-grid/grid"
	"github.com/warp/sales-grid/ingest"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

const (
	DefaultSessionTTL     = time.Hour
	DefaultMaxUploadBytes = 32 << 20
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    grid.SessionStore
	Variants *factory.Registry
	Logger   zerolog.Logger

	SessionTTL     time.Duration
	MaxUploadBytes int64

	now   func() time.Time
	newID func() string
}

// NewHandler creates a new handler with the given store and variants.
func NewHandler(store grid.SessionStore, variants *factory.Registry, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:          store,
		Variants:       variants,
		Logger:         logger,
		SessionTTL:     DefaultSessionTTL,
		MaxUploadBytes: DefaultMaxUploadBytes,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// =============================================================================
// VARIANT HANDLERS
// =============================================================================

// ListVariants returns all registered variants.
// GET /api/variants
func (h *Handler) ListVariants(w http.ResponseWriter, r *http.Request) {
	variants := h.Variants.List()
	dtos := make([]VariantDTO, len(variants))
	for i, v := range variants {
		dtos[i] = toVariantDTO(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// UPLOAD HANDLERS
// =============================================================================

// Upload reads a sales export, completes the grid and stores a session.
// POST /api/uploads?variant=NAME
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload (multipart form with a \"file\" field expected)", err)
		return
	}

	variantName := r.URL.Query().Get("variant")
	if variantName == "" {
		variantName = r.FormValue("variant")
	}
	variant, err := h.Variants.Get(variantName)
	if err != nil {
		writeGridError(w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file", err)
		return
	}
	defer file.Close()

	log := h.Logger.With().
		Str("variant", variant.Name).
		Str("file", header.Filename).
		Int64("size", header.Size).
		Logger()

	table, err := ingest.Read(file, header.Filename, ingest.FormatFor(header.Filename, variant.Input))
	if err != nil {
		log.Warn().Err(err).Msg("upload could not be read")
		writeGridError(w, err)
		return
	}
	log.Debug().Strs("columns", table.Headers).Int("rows", len(table.Rows)).Msg("file read")

	report, err := grid.NewPipeline(variant, grid.WithLogger(log)).Run(table)
	if err != nil {
		writeGridError(w, err)
		return
	}

	now := h.now().UTC()
	if n, err := h.Store.PurgeExpired(ctx, now); err != nil {
		log.Error().Err(err).Msg("failed to purge expired sessions")
	} else if n > 0 {
		log.Debug().Int("purged", n).Msg("expired sessions purged")
	}

	session := grid.Session{
		ID:        h.newID(),
		Variant:   variant.Name,
		FileName:  header.Filename,
		CreatedAt: now,
		Range:     report.Range,
		SKUs:      report.SKUs,
		Warnings:  report.Warnings,
		Result:    report.Result,
	}
	if h.SessionTTL > 0 {
		session.ExpiresAt = now.Add(h.SessionTTL)
	}
	if err := h.Store.SaveSession(ctx, session); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store upload", err)
		return
	}

	dto := toUploadDTO(&session, variant)
	dto.DetectedColumns = report.DetectedColumns
	dto.NormalizedColumns = report.NormalizedColumns
	dto.RowsRead = report.RowsRead
	dto.RowsUsed = report.RowsUsed
	writeJSON(w, http.StatusCreated, dto)
}

// GetUpload returns the completed grid of an upload.
// GET /api/uploads/{id}
func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	session, variant, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUploadDTO(session, variant))
}

// DeleteUpload discards an upload.
// DELETE /api/uploads/{id}
func (h *Handler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteSession(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete upload", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditCosts overrides cell costs and recomputes the daily summary in full.
// PUT /api/uploads/{id}/costs
func (h *Handler) EditCosts(w http.ResponseWriter, r *http.Request) {
	session, variant, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if !variant.EditableCosts {
		writeGridError(w, fmt.Errorf("%w: %s", grid.ErrCostsNotEditable, variant.Name))
		return
	}

	var req EditCostsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	edits, err := fromCostEditDTOs(req.Edits)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	result, err := grid.ApplyCostEdits(session.Result, edits)
	if err != nil {
		writeGridError(w, err)
		return
	}
	session.Result = result
	session.Edited = session.Edited || len(edits) > 0

	if err := h.Store.SaveSession(r.Context(), *session); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store edits", err)
		return
	}

	h.Logger.Info().Str("session", session.ID).Int("edits", len(edits)).Msg("costs edited")
	writeJSON(w, http.StatusOK, SummaryDTO{
		ID:      session.ID,
		Edited:  session.Edited,
		Summary: toDailySummaryDTOs(grid.Rollup(session.Result)),
	})
}

// GetSummary returns the daily cost summary of an upload.
// GET /api/uploads/{id}/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	session, variant, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if !variant.HasCost {
		writeGridError(w, fmt.Errorf("%w: %s", grid.ErrNoSummary, variant.Name))
		return
	}
	writeJSON(w, http.StatusOK, SummaryDTO{
		ID:      session.ID,
		Edited:  session.Edited,
		Summary: toDailySummaryDTOs(grid.Rollup(session.Result)),
	})
}

// Export downloads the result table or the daily summary.
// GET /api/uploads/{id}/export?table=result|summary&format=csv|xlsx
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	session, variant, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	table := r.URL.Query().Get("table")
	if table == "" {
		table = export.TableResult
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatXLSX {
		writeError(w, http.StatusBadRequest, "Invalid format (use csv or xlsx)", nil)
		return
	}

	var out export.Table
	switch table {
	case export.TableResult:
		out = export.ResultTable(session.Result, variant.HasCost)
	case export.TableSummary:
		if !variant.HasCost {
			writeGridError(w, fmt.Errorf("%w: %s", grid.ErrNoSummary, variant.Name))
			return
		}
		out = export.SummaryTable(grid.Rollup(session.Result))
	default:
		writeError(w, http.StatusBadRequest, "Invalid table (use result or summary)", nil)
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(table, format)))
	w.WriteHeader(http.StatusOK)
	if err := export.Write(w, format, out); err != nil {
		h.Logger.Error().Err(err).Str("session", session.ID).Msg("export failed mid-stream")
	}
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// loadSession fetches the {id} session and its variant, writing the error
// response itself when it fails.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*grid.Session, grid.Variant, bool) {
	id := chi.URLParam(r, "id")
	session, err := h.Store.GetSession(r.Context(), id)
	if err != nil {
		writeGridError(w, err)
		return nil, grid.Variant{}, false
	}
	variant, err := h.Variants.Get(session.Variant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Upload refers to an unregistered variant", err)
		return nil, grid.Variant{}, false
	}
	return session, variant, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeGridError maps engine errors to a status and shows the message as-is.
func writeGridError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var schemaErr *grid.SchemaError
	if errors.As(err, &schemaErr) {
		resp.Missing = schemaErr.Missing
	}
	writeJSON(w, statusFor(err), resp)
}

func statusFor(err error) int {
	switch {
	case grid.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, grid.ErrSchema), errors.Is(err, grid.ErrEmptyDataset):
		return http.StatusUnprocessableEntity
	case errors.Is(err, grid.ErrCostsNotEditable), errors.Is(err, grid.ErrNoSummary):
		return http.StatusConflict
	case grid.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
