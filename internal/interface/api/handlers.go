package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fieldos-dispatch/internal/domain/entity"
	"fieldos-dispatch/internal/domain/repository"
	fieldos "fieldos-dispatch/internal/interface/repository"
	"fieldos-dispatch/internal/usecase"
	"fieldos-dispatch/pkg/logger"
	"fieldos-dispatch/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler serves the derived dispatch views and proxies job mutations
type Handler struct {
	refresher  *usecase.Refresher
	dispatcher *usecase.Dispatcher
	builder    *usecase.BoardBuilder
	jobs       repository.JobRepository
	techs      repository.TechnicianRepository
	validate   *validator.Validate
	logger     logger.Logger
}

// NewHandler creates the API handler
func NewHandler(
	refresher *usecase.Refresher,
	dispatcher *usecase.Dispatcher,
	builder *usecase.BoardBuilder,
	jobs repository.JobRepository,
	techs repository.TechnicianRepository,
	log logger.Logger,
) *Handler {
	return &Handler{
		refresher:  refresher,
		dispatcher: dispatcher,
		builder:    builder,
		jobs:       jobs,
		techs:      techs,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     log,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   map[string]string{"message": message},
	})
}

// commandStatus maps a usecase error to a response status
func commandStatus(err error) int {
	var apiErr *fieldos.APIError
	switch {
	case errors.Is(err, usecase.ErrCommandInFlight):
		return http.StatusConflict
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// GetBoard returns the board snapshot for one date. The watched date is
// served from the refresher's last applied snapshot; any other date is
// grouped on demand without disturbing the poll loop.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	date, err := utils.ParseLocalDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	if date == h.refresher.Target() {
		if snapshot, ok := h.refresher.Snapshot(); ok {
			writeJSON(w, http.StatusOK, snapshot)
			return
		}
	}

	jobs, err := h.jobs.ListJobs(r.Context(), repository.JobFilters{From: date, To: date})
	if err != nil {
		h.logger.Error("Failed to list jobs for board", "date", date.String(), "error", err)
		writeError(w, http.StatusBadGateway, "could not load the board")
		return
	}
	techs, err := h.techs.ListTechnicians(r.Context())
	if err != nil {
		h.logger.Error("Failed to list technicians for board", "date", date.String(), "error", err)
		writeError(w, http.StatusBadGateway, "could not load the board")
		return
	}

	writeJSON(w, http.StatusOK, h.builder.GroupForDate(jobs, techs, date))
}

type watchRequest struct {
	Date string `json:"date" validate:"required"`
}

// WatchBoard switches the polled date. The previous poll loop is cancelled
// before the new one starts.
func (h *Handler) WatchBoard(w http.ResponseWriter, r *http.Request) {
	var req watchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := utils.ParseLocalDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	h.refresher.Watch(date)
	writeJSON(w, http.StatusAccepted, map[string]string{"watching": date.String()})
}

// calendarDay is one populated cell of the month view
type calendarDay struct {
	Date     utils.LocalDate `json:"date"`
	JobCount int             `json:"job_count"`
}

type calendarResponse struct {
	Grid utils.MonthGrid `json:"grid"`
	Days []calendarDay   `json:"days"`
}

// GetCalendar returns the month grid shell plus per-day job counts
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	monthNum, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, http.StatusBadRequest, "invalid month, expected 1-12")
		return
	}
	month := time.Month(monthNum)

	grid := utils.BuildMonthGrid(year, month)
	first := utils.LocalDate{Year: year, Month: month, Day: 1}
	last := utils.LocalDate{Year: year, Month: month, Day: grid.DaysInMonth}

	jobs, err := h.jobs.ListJobs(r.Context(), repository.JobFilters{From: first, To: last})
	if err != nil {
		h.logger.Error("Failed to list jobs for calendar", "year", year, "month", monthNum, "error", err)
		writeError(w, http.StatusBadGateway, "could not load the calendar")
		return
	}

	resp := calendarResponse{Grid: grid, Days: make([]calendarDay, 0)}
	for _, bucket := range h.builder.BucketByDay(jobs) {
		// Jobs fetched for the range can bucket into an adjacent month in
		// the viewer zone; the grid only shows its own month's cells
		if bucket.Date.Year != year || bucket.Date.Month != month {
			continue
		}
		resp.Days = append(resp.Days, calendarDay{Date: bucket.Date, JobCount: len(bucket.Jobs)})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListTechnicians returns the roster; ?active=true narrows to technicians
// eligible for assignment pickers
func (h *Handler) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	techs, err := h.techs.ListTechnicians(r.Context())
	if err != nil {
		h.logger.Error("Failed to list technicians", "error", err)
		writeError(w, http.StatusBadGateway, "could not load technicians")
		return
	}
	if r.URL.Query().Get("active") == "true" {
		techs = usecase.ActiveTechnicians(techs)
	}
	writeJSON(w, http.StatusOK, techs)
}

type assignRequest struct {
	TechnicianID *string `json:"technician_id"`
}

// AssignJob sets or clears a job's technician. null unassigns.
func (h *Handler) AssignJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.TechnicianID != nil && *req.TechnicianID == "" {
		// Treat an empty id the same as null so callers cannot half-assign
		req.TechnicianID = nil
	}

	if err := h.dispatcher.Assign(r.Context(), jobID, req.TechnicianID); err != nil {
		writeError(w, commandStatus(err), "could not update the assignment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job_id": jobID})
}

// MarkEnRoute transitions the job to EN_ROUTE
func (h *Handler) MarkEnRoute(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if err := h.dispatcher.MarkEnRoute(r.Context(), jobID); err != nil {
		writeError(w, commandStatus(err), "could not mark the technician en route")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job_id": jobID})
}

type createJobRequest struct {
	Priority           *string `json:"priority" validate:"omitempty,oneof=EMERGENCY HIGH NORMAL"`
	ServiceWindowStart string  `json:"service_window_start" validate:"required"`
	ServiceWindowEnd   string  `json:"service_window_end" validate:"required"`
	Description        *string `json:"description"`
	CustomerID         string  `json:"customer_id" validate:"required"`
	PropertyID         *string `json:"property_id"`
}

// CreateJob validates the request and proxies the creation to the backend
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid job fields")
		return
	}

	payload := repository.JobPayload{
		ServiceWindowStart: &req.ServiceWindowStart,
		ServiceWindowEnd:   &req.ServiceWindowEnd,
		Description:        req.Description,
		CustomerID:         &req.CustomerID,
		PropertyID:         req.PropertyID,
	}
	if req.Priority != nil {
		priority := entity.JobPriority(*req.Priority)
		payload.Priority = &priority
	}

	job, err := h.dispatcher.CreateJob(r.Context(), payload)
	if err != nil {
		writeError(w, commandStatus(err), "could not create the job")
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// UpdateJob proxies a partial job update to the backend
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	var payload repository.JobPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	job, err := h.dispatcher.UpdateJob(r.Context(), jobID, payload)
	if err != nil {
		writeError(w, commandStatus(err), "could not update the job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}
