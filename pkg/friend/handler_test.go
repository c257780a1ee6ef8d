package friend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/socialcal/socialcal/internal/rest"
	"github.com/socialcal/socialcal/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandler(t *testing.T) (*Handler, user.User) {
	t.Helper()
	ctx := context.Background()
	users := user.NewStubUserRepository()
	aliceId, err := users.CreateUser(ctx, user.User{Uid: "a", Username: "alice", DisplayName: "Alice"})
	require.NoError(t, err)
	bobId, err := users.CreateUser(ctx, user.User{Uid: "b", Username: "bob", DisplayName: "Bob"})
	require.NoError(t, err)
	alice, err := users.GetUser(ctx, aliceId)
	require.NoError(t, err)

	repo := NewRepositoryStub()
	repo.Directory[bobId] = Friend{Id: bobId, Username: "bob", DisplayName: "Bob"}
	return NewHandler(NewService(repo, users)), alice
}

func addFriend(h *Handler, as user.User, username string) *httptest.ResponseRecorder {
	body := strings.NewReader(`{"username":"` + username + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/add_friend", body)
	req = req.WithContext(user.WithUser(req.Context(), as))
	rr := httptest.NewRecorder()
	h.AddFriend(rr, req)
	return rr
}

func TestHandler_AddFriend(t *testing.T) {
	h, alice := setupHandler(t)

	rr := addFriend(h, alice, "bob")
	require.Equal(t, http.StatusCreated, rr.Code)
	var created FriendDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, "bob", created.Username)
	assert.Equal(t, "Bob", created.DisplayName)

	tests := []struct {
		name      string
		username  string
		wantError string
	}{
		{"already friends", "bob", "Already friends"},
		{"unknown username", "nobody", "Username not found"},
		{"self", "alice", "You cannot add yourself as a friend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := addFriend(h, alice, tt.username)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var body rest.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestHandler_GetFriends(t *testing.T) {
	h, alice := setupHandler(t)
	require.Equal(t, http.StatusCreated, addFriend(h, alice, "bob").Code)
	req := httptest.NewRequest(http.MethodGet, "/api/get_friends", nil)
	req = req.WithContext(user.WithUser(req.Context(), alice))
	rr := httptest.NewRecorder()

	h.GetFriends(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body FriendsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Len(t, body.Friends, 1)
	assert.Equal(t, "bob", body.Friends[0].Username)
}
