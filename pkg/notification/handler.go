package notification

import (
	"net/http"

	"github.com/socialcal/socialcal/internal/rest"
)

type GroupDTO struct {
	Id            int    `json:"id"`
	Name          string `json:"name"`
	OwnerId       int    `json:"owner_id"`
	OwnerUsername string `json:"owner_username"`
}

type NotificationDTO struct {
	Kind  Kind     `json:"kind"`
	Group GroupDTO `json:"group"`
}

type NotificationsResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetNotifications godoc
// @Summary Pending notifications of the current user
// @Tags Notification
// @Produce json
// @Success 200 {object} NotificationsResponse
// @Router /api/get_notifications [get]
// @Security XUserId
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.service.GetNotifications(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	response := NotificationsResponse{Notifications: make([]NotificationDTO, 0, len(notifications))}
	for _, n := range notifications {
		response.Notifications = append(response.Notifications, NotificationDTO{
			Kind: n.Kind,
			Group: GroupDTO{
				Id:            n.Group.Id,
				Name:          n.Group.Name,
				OwnerId:       n.Group.OwnerId,
				OwnerUsername: n.Group.OwnerUsername,
			},
		})
	}
	rest.WriteJSON(w, http.StatusOK, response)
}
