package group

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/rest"
	"github.com/socialcal/socialcal/pkg/user"
)

type GroupDTO struct {
	Id            int    `json:"id"`
	Name          string `json:"name"`
	OwnerId       int    `json:"owner_id"`
	OwnerUsername string `json:"owner_username"`
}

type ParticipantDTO struct {
	UserId            int               `json:"user_id"`
	Username          string            `json:"username"`
	ParticipationType ParticipationType `json:"participation_type"`
}

type GroupWithParticipantsDTO struct {
	GroupDTO
	Participants []ParticipantDTO `json:"participants"`
}

type OwnedGroupsResponse struct {
	Groups []GroupWithParticipantsDTO `json:"groups"`
}

type CreateGroupRequest struct {
	Name           string `json:"name"`
	ParticipantIds []int  `json:"participant_ids"`
}

type MembershipRequest struct {
	GroupId int `json:"group_id"`
	UserId  int `json:"user_id"`
}

type RenameGroupRequest struct {
	GroupId int    `json:"group_id"`
	Name    string `json:"name"`
}

type ReplyRequest struct {
	GroupId  int  `json:"group_id"`
	Accepted bool `json:"accepted"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetOwnedGroupsWithParticipants godoc
// @Summary Groups owned by the current user with their participants
// @Tags Group
// @Produce json
// @Success 200 {object} OwnedGroupsResponse
// @Router /api/get_owned_groups_with_participants [get]
// @Security XUserId
func (h *Handler) GetOwnedGroupsWithParticipants(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.GetOwnedGroupsWithParticipants(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	response := OwnedGroupsResponse{Groups: make([]GroupWithParticipantsDTO, 0, len(groups))}
	for _, g := range groups {
		dto := GroupWithParticipantsDTO{GroupDTO: groupToDTO(g.Group), Participants: make([]ParticipantDTO, 0, len(g.Participants))}
		for _, p := range g.Participants {
			dto.Participants = append(dto.Participants, ParticipantDTO{UserId: p.UserId, Username: p.Username, ParticipationType: p.Participation})
		}
		response.Groups = append(response.Groups, dto)
	}
	rest.WriteJSON(w, http.StatusOK, response)
}

// CreateGroup godoc
// @Summary Create a group and invite participants
// @Tags Group
// @Accept json
// @Produce json
// @Param group body CreateGroupRequest true "Group"
// @Success 201 {object} GroupDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/create_group [post]
// @Security XUserId
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !decode(w, r, &req) {
		return
	}
	created, err := h.service.CreateGroup(r.Context(), req.Name, req.ParticipantIds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, groupToDTO(created))
}

func (h *Handler) InviteToGroup(w http.ResponseWriter, r *http.Request) {
	var req MembershipRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.InviteToGroup(r.Context(), req.GroupId, req.UserId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	var req RenameGroupRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.RenameGroup(r.Context(), req.GroupId, req.Name); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveUserFromGroup(w http.ResponseWriter, r *http.Request) {
	var req MembershipRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.RemoveUserFromGroup(r.Context(), req.GroupId, req.UserId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReplyToGroupInvitation godoc
// @Summary Accept or decline a group invitation
// @Tags Group
// @Accept json
// @Param reply body ReplyRequest true "Reply"
// @Success 204
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/reply_to_group_invitation [post]
// @Security XUserId
func (h *Handler) ReplyToGroupInvitation(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.ReplyToInvitation(r.Context(), req.GroupId, req.Accepted); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		rest.WriteError(w, http.StatusBadRequest, "Group not found", "")
	case errors.Is(err, ErrNotGroupOwner):
		rest.WriteError(w, http.StatusBadRequest, "Only the group owner can change the group", "")
	case errors.Is(err, ErrInvalidGroupName):
		rest.WriteError(w, http.StatusBadRequest, "Group name must have between 1 and 100 characters", "")
	case errors.Is(err, ErrAlreadyInvited):
		rest.WriteError(w, http.StatusBadRequest, "User already invited", "")
	case errors.Is(err, ErrCannotInviteOwner):
		rest.WriteError(w, http.StatusBadRequest, "Cannot invite yourself", "")
	case errors.Is(err, ErrParticipantNotFound):
		rest.WriteError(w, http.StatusBadRequest, "User is not in the group", "")
	case errors.Is(err, ErrInvitationNotFound):
		rest.WriteError(w, http.StatusBadRequest, "Invitation not found", "")
	case errors.Is(err, user.ErrUserNotFound):
		rest.WriteError(w, http.StatusBadRequest, "User not found", err.Error())
	default:
		log.Errorf("group operation failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func groupToDTO(g Group) GroupDTO {
	return GroupDTO{Id: g.Id, Name: g.Name, OwnerId: g.OwnerId, OwnerUsername: g.OwnerUsername}
}
