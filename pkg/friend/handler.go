package friend

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/socialcal/socialcal/internal/rest"
)

type FriendDTO struct {
	Id          int    `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type FriendsResponse struct {
	Friends []FriendDTO `json:"friends"`
}

type AddFriendRequest struct {
	Username string `json:"username"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetFriends godoc
// @Summary Friends of the current user
// @Tags Friend
// @Produce json
// @Success 200 {object} FriendsResponse
// @Router /api/get_friends [get]
// @Security XUserId
func (h *Handler) GetFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.service.GetFriends(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	response := FriendsResponse{Friends: make([]FriendDTO, 0, len(friends))}
	for _, f := range friends {
		response.Friends = append(response.Friends, friendToDTO(f))
	}
	rest.WriteJSON(w, http.StatusOK, response)
}

// AddFriend godoc
// @Summary Add a friend by username
// @Tags Friend
// @Accept json
// @Produce json
// @Param request body AddFriendRequest true "Friend username"
// @Success 201 {object} FriendDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/add_friend [post]
// @Security XUserId
func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	var req AddFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	friend, err := h.service.AddFriend(r.Context(), req.Username)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameNotFound):
			rest.WriteError(w, http.StatusBadRequest, "Username not found", req.Username)
		case errors.Is(err, ErrCannotFriendSelf):
			rest.WriteError(w, http.StatusBadRequest, "You cannot add yourself as a friend", "")
		case errors.Is(err, ErrAlreadyFriends):
			rest.WriteError(w, http.StatusBadRequest, "Already friends", req.Username)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	rest.WriteJSON(w, http.StatusCreated, friendToDTO(friend))
}

func friendToDTO(f Friend) FriendDTO {
	return FriendDTO{Id: f.Id, Username: f.Username, DisplayName: f.DisplayName}
}
