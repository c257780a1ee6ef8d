package event_bus

// Mutations the client performs against the server. Subscribers refresh the cached state.
const (
	EventCreated       EventType = "event.created"
	EventsImported     EventType = "event.imported"
	FriendAdded        EventType = "friend.added"
	GroupChanged       EventType = "group.changed"
	InvitationAnswered EventType = "group.invitation_answered"
)

// MutationCompleted is published after the server confirmed a write.
type MutationCompleted struct {
	Kind     EventType
	EntityId int
}
