package event

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/rest"
	"github.com/socialcal/socialcal/internal/utils"
	"github.com/socialcal/socialcal/pkg/group"
)

const maxICSBytes = 4 << 20

type EventDTO struct {
	Id             int            `json:"id"`
	Title          string         `json:"title"`
	StartTime      int64          `json:"start_time"`
	Duration       int64          `json:"duration"`
	RecurrenceType RecurrenceType `json:"recurrence_type"`
	Visibility     Visibility     `json:"visibility"`
	OwnerId        int            `json:"owner_id"`
	GroupId        int            `json:"group_id,omitempty"`
	Participants   []string       `json:"participants"`
}

type EventsResponse struct {
	Events []EventDTO `json:"events"`
}

type CreateEventRequest struct {
	Title          string         `json:"title"`
	StartTime      *int64         `json:"start_time"`
	Duration       *int64         `json:"duration"`
	RecurrenceType RecurrenceType `json:"recurrence_type"`
	Visibility     Visibility     `json:"visibility"`
	GroupId        int            `json:"group_id"`
}

type EventHandler struct {
	eventService EventService
	clock        utils.Clock
}

func NewEventHandler(eventService EventService, clock utils.Clock) *EventHandler {
	return &EventHandler{eventService: eventService, clock: clock}
}

// GetEvents godoc
// @Summary All events the current user owns or takes part in
// @Tags Event
// @Produce json
// @Success 200 {object} EventsResponse
// @Router /api/get_events [get]
// @Security XUserId
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.GetEvents(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toEventsResponse(events))
}

// GetEventsForPeriod godoc
// @Summary Events relevant to a period
// @Tags Event
// @Produce json
// @Param from query string true "Start of the period (RFC3339)"
// @Param to query string true "End of the period (RFC3339)"
// @Success 200 {object} EventsResponse
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/events_for_period [get]
// @Security XUserId
func (h *EventHandler) GetEventsForPeriod(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	from, err := time.Parse(time.RFC3339Nano, vars["from"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid 'from' parameter", err.Error())
		return
	}
	to, err := time.Parse(time.RFC3339Nano, vars["to"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid 'to' parameter", err.Error())
		return
	}

	events, err := h.eventService.GetEventsForPeriod(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidEvent) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid period", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toEventsResponse(events))
}

// CreateEvent godoc
// @Summary Create an event
// @Tags Event
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/create_event [post]
// @Security XUserId
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	if req.StartTime == nil || req.Duration == nil {
		rest.WriteError(w, http.StatusBadRequest, "start_time and duration are required", "")
		return
	}
	if d := *req.Duration; d <= 0 || d > math.MaxInt64/int64(time.Millisecond) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", "duration must be positive and fit in a time span")
		return
	}
	if req.RecurrenceType == "" {
		req.RecurrenceType = Once
	}
	log.Debugf("Create event request: %+v", req)

	created, err := h.eventService.CreateEvent(r.Context(), Event{
		Title:      req.Title,
		Visibility: req.Visibility,
		StartTime:  time.UnixMilli(*req.StartTime),
		Duration:   time.Duration(*req.Duration) * time.Millisecond,
		Recurrence: req.RecurrenceType,
		GroupId:    req.GroupId,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEvent):
			rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
		case errors.Is(err, group.ErrGroupNotFound):
			rest.WriteError(w, http.StatusBadRequest, "Group not found", "")
		case errors.Is(err, group.ErrNotGroupOwner):
			rest.WriteError(w, http.StatusBadRequest, "Only the group owner can create events for the group", "")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventToDTO(created))
}

// ExportICS godoc
// @Summary iCalendar export of the current user's events
// @Tags Event
// @Produce text/calendar
// @Success 200 {string} string
// @Router /api/events.ics [get]
// @Security XUserId
func (h *EventHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.GetEvents(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="socialcal.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, RenderICS(events, h.clock.Now())); err != nil {
		log.Errorf("failed to write ics export: %v", err)
	}
}

// ImportICS godoc
// @Summary Import events from an iCalendar document
// @Tags Event
// @Accept text/calendar
// @Produce json
// @Success 200 {object} object{imported=int,skipped=int}
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/events.ics [post]
// @Security XUserId
func (h *EventHandler) ImportICS(w http.ResponseWriter, r *http.Request) {
	events, skipped, err := ParseICS(io.LimitReader(r.Body, maxICSBytes))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid calendar file", err.Error())
		return
	}
	imported, err := h.eventService.ImportEvents(r.Context(), events)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]int{
		"imported": len(imported),
		"skipped":  skipped + len(events) - len(imported),
	})
}

func toEventsResponse(events []Event) EventsResponse {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	return EventsResponse{Events: dtos}
}

func eventToDTO(e Event) EventDTO {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	return EventDTO{
		Id:             e.Id,
		Title:          e.Title,
		StartTime:      e.StartTime.UnixMilli(),
		Duration:       e.Duration.Milliseconds(),
		RecurrenceType: e.Recurrence,
		Visibility:     e.Visibility,
		OwnerId:        e.OwnerId,
		GroupId:        e.GroupId,
		Participants:   participants,
	}
}
