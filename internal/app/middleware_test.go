package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/socialcal/socialcal/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *mux.Router {
	users := user.NewUserService(user.NewStubUserRepository())
	_, err := users.CreateUser(context.Background(), user.User{Uid: "uid-alice", Username: "alice"})
	require.NoError(t, err)

	r := mux.NewRouter()
	r.Use(userFromHeader(users))
	r.HandleFunc("/whoami", func(w http.ResponseWriter, req *http.Request) {
		u, err := user.CurrentUser(req.Context())
		if err != nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(u.Username))
	})
	return r
}

func TestUserFromHeader(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "known uid", header: "uid-alice", wantStatus: http.StatusOK, wantBody: "alice"},
		{name: "unknown uid", header: "uid-nobody", wantStatus: http.StatusForbidden},
		{name: "anonymous", header: "", wantStatus: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			r := setupRouter(t)
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("X-User-Id", tt.header)
			}
			rr := httptest.NewRecorder()

			// when
			r.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestRequireUser(t *testing.T) {
	// given
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(requireUser)
	api.HandleFunc("/ping", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	anonymous := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	known := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	known = known.WithContext(user.WithUser(known.Context(), user.User{Id: 1, Uid: "uid-alice"}))

	// when
	rrAnonymous := httptest.NewRecorder()
	r.ServeHTTP(rrAnonymous, anonymous)
	rrKnown := httptest.NewRecorder()
	r.ServeHTTP(rrKnown, known)

	// then
	assert.Equal(t, http.StatusForbidden, rrAnonymous.Code)
	assert.Contains(t, rrAnonymous.Body.String(), "User not logged in")
	assert.Equal(t, http.StatusOK, rrKnown.Code)
}
