package database

import (
	"conference-app/model"
	"context"
	"errors"
)

// ErrNotFound is returned when a single-entity lookup finds nothing.
var ErrNotFound = errors.New("entity not found in database")

// Store persists the entities of the conference service. Parent/child
// relations are explicit id fields (Conference.OrganizerUserId,
// Session.ConferenceId) rather than hierarchical keys.
//
// Batch getters return the entities that exist, in the order of the given
// ids, and silently skip missing ones.
type Store interface {
	GetUserData(ctx context.Context, login string) (model.UserData, error)
	SaveUserData(ctx context.Context, user model.UserData) error

	GetProfile(ctx context.Context, userId string) (model.Profile, error)
	GetProfiles(ctx context.Context, userIds []string) ([]model.Profile, error)
	SaveProfile(ctx context.Context, profile model.Profile) error

	CreateConference(ctx context.Context, conf model.Conference) error
	GetConference(ctx context.Context, id string) (model.Conference, error)
	GetConferences(ctx context.Context, ids []string) ([]model.Conference, error)
	SaveConference(ctx context.Context, conf model.Conference) error
	ConferencesByOrganizer(ctx context.Context, userId string) ([]model.Conference, error)
	QueryConferences(ctx context.Context, query model.ConferenceQuery) ([]model.Conference, error)

	CreateSpeaker(ctx context.Context, speaker model.Speaker) error
	GetSpeaker(ctx context.Context, id string) (model.Speaker, error)
	SpeakersByName(ctx context.Context, name string) ([]model.Speaker, error)

	CreateSession(ctx context.Context, session model.Session) error
	GetSession(ctx context.Context, id string) (model.Session, error)
	GetSessions(ctx context.Context, ids []string) ([]model.Session, error)
	QuerySessions(ctx context.Context, query model.SessionQuery) ([]model.Session, error)

	// RunInTransaction runs fn atomically: either every write made through
	// the ctx passed to fn is committed or none is. fn may be invoked more
	// than once when the backend retries a conflicting transaction.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	Close(ctx context.Context) error
}
