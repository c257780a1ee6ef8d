package group

type ParticipationType string

const (
	NoResponse ParticipationType = "NoResponse"
	Accepted   ParticipationType = "Accepted"
	Declined   ParticipationType = "Declined"
)

const MaxNameLength = 100

type Group struct {
	Id            int
	Name          string
	OwnerId       int
	OwnerUsername string
	// IsSpecial marks groups created by the system rather than by a user.
	IsSpecial bool
}

type Participant struct {
	UserId        int
	Username      string
	Participation ParticipationType
}

type GroupWithParticipants struct {
	Group
	Participants []Participant
}
