package google

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/rest"
	"github.com/socialcal/socialcal/pkg/event"
)

type CalendarItemDto struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
}

type ImportResultDto struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// EventImporter stores imported events for the current user.
type EventImporter interface {
	ImportEvents(ctx context.Context, events []event.Event) ([]event.Event, error)
}

type Handler struct {
	service  Service
	importer EventImporter
}

func NewHandler(s Service, importer EventImporter) *Handler {
	return &Handler{service: s, importer: importer}
}

// ListCalendars godoc
// @Summary Google calendars of the current user
// @Tags Google
// @Produce json
// @Success 200 {array} CalendarItemDto
// @Failure 403 "Google authorization required"
// @Router /api/integrations/google/calendars [get]
// @Security XUserId
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}
	rest.WriteJSON(w, http.StatusOK, calendarItems)
}

// Import godoc
// @Summary Import events of a Google calendar
// @Tags Google
// @Produce json
// @Param calendarId query string true "Google calendar id"
// @Param from query string true "Start of the period (RFC3339)"
// @Param to query string true "End of the period (RFC3339)"
// @Success 200 {object} ImportResultDto
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403 "Google authorization required"
// @Router /api/integrations/google/import [post]
// @Security XUserId
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	calendarId := query.Get("calendarId")
	if calendarId == "" {
		rest.WriteError(w, http.StatusBadRequest, "Missing 'calendarId' parameter", "")
		return
	}
	from, err := time.Parse(time.RFC3339, query.Get("from"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid 'from' parameter", err.Error())
		return
	}
	to, err := time.Parse(time.RFC3339, query.Get("to"))
	if err != nil || !to.After(from) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid 'to' parameter", "must be a RFC3339 instant after 'from'")
		return
	}

	events, skipped, err := h.service.FetchEvents(r.Context(), calendarId, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	imported, err := h.importer.ImportEvents(r.Context(), events)
	if err != nil {
		log.Errorf("failed to import Google events: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ImportResultDto{
		Imported: len(imported),
		Skipped:  skipped + len(events) - len(imported),
	})
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnauthenticated) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:      ci.ID,
		Summary: ci.Summary,
	}
}
