package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/importer"
	"github.com/Freeeeeet/table_timeline/internal/model"
	"github.com/Freeeeeet/table_timeline/internal/service"
	"github.com/Freeeeeet/table_timeline/internal/timeline"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// TimelineService is what the HTTP layer needs from the reservation service.
type TimelineService interface {
	Location() *time.Location
	FloorPlan() model.FloorPlan
	Get(ctx context.Context, id string) (model.Reservation, error)
	List(ctx context.Context, date time.Time, opts timeline.FilterOptions) ([]model.Reservation, error)
	CountByStatus(ctx context.Context, date time.Time) (map[model.ReservationStatus]int, error)
	Create(ctx context.Context, in model.CreateReservationInput) (model.Reservation, error)
	Update(ctx context.Context, patch model.UpdateReservationInput) (model.Reservation, error)
	Delete(ctx context.Context, id string) error
	ChangeStatus(ctx context.Context, id string, status model.ReservationStatus) (model.Reservation, error)
	Move(ctx context.Context, id, tableID string, start time.Time) (model.Reservation, error)
	Resize(ctx context.Context, id string, durationMinutes int) (model.Reservation, error)
	CheckConflict(ctx context.Context, tableID string, start, end time.Time, excludeID string) (model.ConflictCheck, error)
	SuggestTables(ctx context.Context, q timeline.SuggestionQuery) ([]model.TableSuggestion, error)
	SuggestSlots(ctx context.Context, q timeline.SuggestionQuery) ([]model.TimeSlotSuggestion, error)
	PreviewBatch(ctx context.Context, requests []model.BatchRequest) (model.BatchAssignmentResult, error)
	ImportBatch(ctx context.Context, requests []model.BatchRequest) (service.ImportResult, error)
	CapacityReport(ctx context.Context, date time.Time) ([]model.TimeSlotCapacity, error)
	SectorReport(ctx context.Context, date time.Time) ([]model.SectorMetrics, error)
	Dirty() int
}

// TimelineHandler serves the reservation timeline API.
type TimelineHandler struct {
	svc    TimelineService
	now    func() time.Time
	logger *zap.Logger
}

func NewTimelineHandler(svc TimelineService, now func() time.Time, logger *zap.Logger) *TimelineHandler {
	if now == nil {
		now = time.Now
	}
	return &TimelineHandler{svc: svc, now: now, logger: logger}
}

type statusRequest struct {
	Status model.ReservationStatus `json:"status" binding:"required"`
}

type moveRequest struct {
	TableID   string    `json:"table_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
}

type resizeRequest struct {
	DurationMinutes int `json:"duration_minutes" binding:"required"`
}

type conflictRequest struct {
	TableID         string    `json:"table_id" binding:"required"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	ExcludeID       string    `json:"exclude_id"`
}

type batchRequest struct {
	Rows []model.BatchRequest `json:"rows" binding:"required"`
}

type slotCapacity struct {
	model.TimeSlotCapacity
	Level string `json:"level"`
}

// Health handles GET /health
func (h *TimelineHandler) Health(c *gin.Context) {
	Success(c, gin.H{
		"status":          "ok",
		"pending_changes": h.svc.Dirty(),
	})
}

// Floor handles GET /floor
func (h *TimelineHandler) Floor(c *gin.Context) {
	Success(c, h.svc.FloorPlan())
}

// ListReservations handles GET /reservations?date=&sector=&status=&search=
func (h *TimelineHandler) ListReservations(c *gin.Context) {
	date, ok := h.date(c)
	if !ok {
		return
	}

	opts := timeline.FilterOptions{
		SectorIDs: splitList(c.Query("sector")),
		Search:    c.Query("search"),
	}
	for _, s := range splitList(c.Query("status")) {
		status := model.ReservationStatus(strings.ToUpper(s))
		if !status.Valid() {
			BadRequest(c, "Unknown status "+s)
			return
		}
		opts.Statuses = append(opts.Statuses, status)
	}

	ctx := c.Request.Context()
	reservations, err := h.svc.List(ctx, date, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	counts, err := h.svc.CountByStatus(ctx, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, gin.H{
		"date":         date.Format(dateLayout),
		"reservations": reservations,
		"counts":       counts,
	})
}

// GetReservation handles GET /reservations/:id
func (h *TimelineHandler) GetReservation(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, r)
}

// CreateReservation handles POST /reservations
func (h *TimelineHandler) CreateReservation(c *gin.Context) {
	var in model.CreateReservationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	if in.DurationMinutes == 0 {
		in.DurationMinutes = timeline.DefaultDurationMinutes
	}

	r, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	Created(c, r)
}

// UpdateReservation handles PATCH /reservations/:id
func (h *TimelineHandler) UpdateReservation(c *gin.Context) {
	var patch model.UpdateReservationInput
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	patch.ID = c.Param("id")

	r, err := h.svc.Update(c.Request.Context(), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, r)
}

// DeleteReservation handles DELETE /reservations/:id
func (h *TimelineHandler) DeleteReservation(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	Success(c, gin.H{"id": id})
}

// ChangeStatus handles POST /reservations/:id/status
func (h *TimelineHandler) ChangeStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	r, err := h.svc.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, r)
}

// MoveReservation handles POST /reservations/:id/move
func (h *TimelineHandler) MoveReservation(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	r, err := h.svc.Move(c.Request.Context(), c.Param("id"), req.TableID, req.StartTime)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, r)
}

// ResizeReservation handles POST /reservations/:id/resize
func (h *TimelineHandler) ResizeReservation(c *gin.Context) {
	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	r, err := h.svc.Resize(c.Request.Context(), c.Param("id"), req.DurationMinutes)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, r)
}

// CheckConflict handles POST /conflicts/check. The end is end_time when
// given, otherwise start plus duration_minutes (default 90).
func (h *TimelineHandler) CheckConflict(c *gin.Context) {
	var req conflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	end := req.EndTime
	if end.IsZero() {
		minutes := req.DurationMinutes
		if minutes == 0 {
			minutes = timeline.DefaultDurationMinutes
		}
		end = timeline.EndTime(req.StartTime, minutes)
	}
	if !end.After(req.StartTime) {
		BadRequest(c, "end_time must be after start_time")
		return
	}

	check, err := h.svc.CheckConflict(c.Request.Context(), req.TableID, req.StartTime, end, req.ExcludeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, check)
}

// SuggestTables handles POST /suggestions/tables
func (h *TimelineHandler) SuggestTables(c *gin.Context) {
	q, ok := h.suggestionQuery(c)
	if !ok {
		return
	}
	suggestions, err := h.svc.SuggestTables(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, suggestions)
}

// SuggestSlots handles POST /suggestions/slots
func (h *TimelineHandler) SuggestSlots(c *gin.Context) {
	q, ok := h.suggestionQuery(c)
	if !ok {
		return
	}
	slots, err := h.svc.SuggestSlots(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, slots)
}

// BatchTemplate handles GET /batch/template
func (h *TimelineHandler) BatchTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="reservations_template.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(importer.Template()))
}

// PreviewBatch handles POST /batch/preview with a CSV body or JSON rows
func (h *TimelineHandler) PreviewBatch(c *gin.Context) {
	rows, parsed, ok := h.batchRows(c)
	if !ok {
		return
	}
	assignments, err := h.svc.PreviewBatch(c.Request.Context(), rows)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, gin.H{
		"assignments": assignments,
		"errors":      parsed.Errors,
		"warnings":    parsed.Warnings,
	})
}

// ImportBatch handles POST /batch/import with a CSV body or JSON rows
func (h *TimelineHandler) ImportBatch(c *gin.Context) {
	rows, parsed, ok := h.batchRows(c)
	if !ok {
		return
	}
	res, err := h.svc.ImportBatch(c.Request.Context(), rows)
	if err != nil {
		h.fail(c, err)
		return
	}
	Created(c, gin.H{
		"import":   res,
		"errors":   parsed.Errors,
		"warnings": parsed.Warnings,
	})
}

// CapacityReport handles GET /analytics/capacity?date=
func (h *TimelineHandler) CapacityReport(c *gin.Context) {
	date, ok := h.date(c)
	if !ok {
		return
	}

	slots, err := h.svc.CapacityReport(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]slotCapacity, len(slots))
	for i, s := range slots {
		out[i] = slotCapacity{TimeSlotCapacity: s, Level: timeline.OccupancyLevel(s.OccupancyRate)}
	}
	Success(c, gin.H{
		"date":  date.Format(dateLayout),
		"slots": out,
	})
}

// SectorReport handles GET /analytics/sectors?date=
func (h *TimelineHandler) SectorReport(c *gin.Context) {
	date, ok := h.date(c)
	if !ok {
		return
	}

	metrics, err := h.svc.SectorReport(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	data := gin.H{
		"date":    date.Format(dateLayout),
		"sectors": metrics,
	}
	if top, found := timeline.TopSector(metrics, timeline.ByOccupancy); found {
		data["top_sector_id"] = top.SectorID
	}
	Success(c, data)
}

func (h *TimelineHandler) date(c *gin.Context) (time.Time, bool) {
	loc := h.svc.Location()
	raw := c.Query("date")
	if raw == "" {
		return timeline.StartOfDay(h.now(), loc), true
	}
	date, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		BadRequest(c, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func (h *TimelineHandler) suggestionQuery(c *gin.Context) (timeline.SuggestionQuery, bool) {
	var q timeline.SuggestionQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		BadRequest(c, "Invalid request body")
		return q, false
	}
	if q.PartySize < 1 || q.StartTime.IsZero() {
		BadRequest(c, "party_size and start_time are required")
		return q, false
	}
	if q.DurationMinutes == 0 {
		q.DurationMinutes = timeline.DefaultDurationMinutes
	}
	q.SectorPreference = sectorID(h.svc.FloorPlan(), q.SectorPreference)
	return q, true
}

// batchRows reads import rows from a text/csv body, a multipart "file"
// field or a JSON {"rows": [...]} body.
func (h *TimelineHandler) batchRows(c *gin.Context) ([]model.BatchRequest, importer.Result, bool) {
	plan := h.svc.FloorPlan()
	contentType := c.ContentType()

	if contentType == "text/csv" || contentType == "multipart/form-data" {
		body := c.Request.Body
		if contentType == "multipart/form-data" {
			fh, err := c.FormFile("file")
			if err != nil {
				BadRequest(c, "Missing file field")
				return nil, importer.Result{}, false
			}
			f, err := fh.Open()
			if err != nil {
				BadRequest(c, "Cannot read uploaded file")
				return nil, importer.Result{}, false
			}
			defer f.Close()
			body = f
		}

		names := make([]string, len(plan.Sectors))
		for i, s := range plan.Sectors {
			names[i] = s.Name
		}
		parsed, err := importer.Parse(body,
			importer.WithSectors(names...),
			importer.WithClock(h.now, h.svc.Location()))
		if err != nil {
			Error(c, http.StatusBadRequest, "INVALID_CSV", err.Error(), nil)
			return nil, importer.Result{}, false
		}
		return parsed.Rows, parsed, true
	}

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return nil, importer.Result{}, false
	}
	return req.Rows, importer.Result{Errors: []importer.Issue{}, Warnings: []importer.Issue{}}, true
}

func (h *TimelineHandler) fail(c *gin.Context, err error) {
	if check, ok := timeline.ConflictOf(err); ok {
		Error(c, http.StatusConflict, "CONFLICT", "Reservation conflicts with existing reservations", check)
		return
	}

	switch {
	case errors.Is(err, timeline.ErrNotFound):
		NotFound(c, "Reservation not found")
	case errors.Is(err, service.ErrTableNotFound):
		Error(c, http.StatusNotFound, "TABLE_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrCapacityMismatch):
		Error(c, http.StatusUnprocessableEntity, "CAPACITY_MISMATCH", err.Error(), nil)
	case errors.Is(err, timeline.ErrInvalidDuration):
		Error(c, http.StatusUnprocessableEntity, "INVALID_DURATION", err.Error(), nil)
	case errors.Is(err, timeline.ErrInvalidInput):
		Error(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	default:
		h.logger.Error("Unexpected error", zap.String("path", c.FullPath()), zap.Error(err))
		InternalError(c)
	}
}

// sectorID accepts either a sector id or a sector name.
func sectorID(plan model.FloorPlan, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	for _, s := range plan.Sectors {
		if s.ID == ref || strings.EqualFold(s.Name, ref) {
			return s.ID
		}
	}
	return ref
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
