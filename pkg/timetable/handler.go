package timetable

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/rest"
	"github.com/socialcal/socialcal/pkg/user"
)

type VisualDTO struct {
	EventId        int      `json:"event_id"`
	Title          string   `json:"title"`
	RecurrenceType string   `json:"recurrence_type"`
	Visibility     string   `json:"visibility"`
	OwnerId        int      `json:"owner_id"`
	Participants   []string `json:"participants"`
	StartTime      int64    `json:"start_time"`
	EndTime        int64    `json:"end_time"`
	Label          string   `json:"label"`
	TopPx          float64  `json:"top_px"`
	HeightPx       float64  `json:"height_px"`
	LeftPx         float64  `json:"left_px"`
	WidthPx        float64  `json:"width_px"`
}

type DayColumnDTO struct {
	Index  int         `json:"index"`
	Date   string      `json:"date"`
	Title  string      `json:"title"`
	Events []VisualDTO `json:"events"`
}

type WeekLayoutDTO struct {
	Week         string         `json:"week"`
	Label        string         `json:"label"`
	StartOfWeek  string         `json:"start_of_week"`
	PreviousWeek string         `json:"previous_week"`
	NextWeek     string         `json:"next_week"`
	Days         []DayColumnDTO `json:"days"`
	Dropped      int            `json:"dropped"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetTimetable godoc
// @Summary Laid out week of the current user
// @Tags Timetable
// @Produce json
// @Param date query string false "Any instant within the week (RFC3339), defaults to now"
// @Param height query number false "Day column height in px"
// @Param width query number false "Day column width in px"
// @Success 200 {object} WeekLayoutDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/timetable [get]
// @Security XUserId
func (h *Handler) GetTimetable(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var date time.Time
	if raw := query.Get("date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'date' parameter", err.Error())
			return
		}
		date = parsed
	}
	height, err := parsePixels(query.Get("height"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid 'height' parameter", err.Error())
		return
	}
	width, err := parsePixels(query.Get("width"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid 'width' parameter", err.Error())
		return
	}

	layout, err := h.service.GetWeek(r.Context(), date, ColumnMeasurement{HeightPx: height, WidthPx: width})
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		log.Errorf("failed to lay out week: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, layoutToDTO(layout))
}

func parsePixels(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, errors.New("must not be negative")
	}
	return value, nil
}

func layoutToDTO(layout WeekLayout) WeekLayoutDTO {
	dto := WeekLayoutDTO{
		Week:         layout.Week.String(),
		Label:        layout.Label,
		StartOfWeek:  layout.Week.Start.Format(time.RFC3339),
		PreviousWeek: layout.Week.Previous().Start.Format(time.RFC3339),
		NextWeek:     layout.Week.Next().Start.Format(time.RFC3339),
		Days:         make([]DayColumnDTO, 0, DaysInWeek),
		Dropped:      layout.Dropped,
	}
	for _, day := range layout.Days {
		column := DayColumnDTO{
			Index:  day.Index,
			Date:   day.Date.Format("2006-01-02"),
			Title:  day.Title,
			Events: make([]VisualDTO, 0, len(day.Visuals)),
		}
		for _, v := range day.Visuals {
			participants := v.Event.Participants
			if participants == nil {
				participants = []string{}
			}
			column.Events = append(column.Events, VisualDTO{
				EventId:        v.Event.Id,
				Title:          v.Event.Title,
				RecurrenceType: string(v.Event.Recurrence),
				Visibility:     string(v.Event.Visibility),
				OwnerId:        v.Event.OwnerId,
				Participants:   participants,
				StartTime:      v.StartTime.UnixMilli(),
				EndTime:        v.EndTime.UnixMilli(),
				Label:          v.Label,
				TopPx:          v.TopPx,
				HeightPx:       v.HeightPx,
				LeftPx:         v.LeftPx,
				WidthPx:        v.WidthPx,
			})
		}
		dto.Days = append(dto.Days, column)
	}
	return dto
}
