package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints. Routes outside the protected subrouter are reachable anonymously.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/name-availability", deps.UserHandler.IsUsernameAvailable).Methods("GET").Queries("username", "{username}")
	if deps.GoogleAuth != nil {
		r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(requireUser)

	api.HandleFunc("/user/current", deps.UserHandler.UpdateUser).Methods("PUT")

	// Events
	api.HandleFunc("/get_events", deps.EventHandler.GetEvents).Methods("GET")
	api.HandleFunc("/events_for_period", deps.EventHandler.GetEventsForPeriod).Queries("from", "{from}", "to", "{to}").Methods("GET")
	api.HandleFunc("/create_event", deps.EventHandler.CreateEvent).Methods("POST")
	api.HandleFunc("/events.ics", deps.EventHandler.ExportICS).Methods("GET")
	api.HandleFunc("/events.ics", deps.EventHandler.ImportICS).Methods("POST")

	// Timetable
	api.HandleFunc("/timetable", deps.TimetableHandler.GetTimetable).Methods("GET")

	// Friends
	api.HandleFunc("/get_friends", deps.FriendHandler.GetFriends).Methods("GET")
	api.HandleFunc("/add_friend", deps.FriendHandler.AddFriend).Methods("POST")

	// Groups
	api.HandleFunc("/get_owned_groups_with_participants", deps.GroupHandler.GetOwnedGroupsWithParticipants).Methods("GET")
	api.HandleFunc("/create_group", deps.GroupHandler.CreateGroup).Methods("POST")
	api.HandleFunc("/invite_to_group", deps.GroupHandler.InviteToGroup).Methods("POST")
	api.HandleFunc("/rename_group", deps.GroupHandler.RenameGroup).Methods("POST")
	api.HandleFunc("/remove_user_from_group", deps.GroupHandler.RemoveUserFromGroup).Methods("POST")
	api.HandleFunc("/reply_to_group_invitation", deps.GroupHandler.ReplyToGroupInvitation).Methods("POST")

	// Notifications
	api.HandleFunc("/get_notifications", deps.NotificationHandler.GetNotifications).Methods("GET")

	// Google integration
	if deps.GoogleAuth != nil {
		api.HandleFunc("/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
		api.HandleFunc("/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
		api.HandleFunc("/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
		api.HandleFunc("/integrations/google/import", deps.GoogleHandler.Import).
			Queries("calendarId", "{calendarId}", "from", "{from}", "to", "{to}").Methods("POST")
	}
}
