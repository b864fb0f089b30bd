package database

import (
	"conference-app/model"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type memoryState struct {
	users           map[string]model.UserData
	profiles        map[string]model.Profile
	conferences     map[string]model.Conference
	conferenceOrder []string
	speakers        map[string]model.Speaker
	speakerOrder    []string
	sessions        map[string]model.Session
	sessionOrder    []string
}

// MemoryStore keeps all entities in process memory. Transactions are
// serialised and rolled back by restoring a snapshot taken when they start.
// Writes outside a transaction wait for the running one to finish, so a
// rollback never discards them.
type MemoryStore struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state memoryState
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: memoryState{
			users:       map[string]model.UserData{},
			profiles:    map[string]model.Profile{},
			conferences: map[string]model.Conference{},
			speakers:    map[string]model.Speaker{},
			sessions:    map[string]model.Session{},
		},
	}
}

func (s *MemoryStore) GetUserData(ctx context.Context, login string) (model.UserData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.state.users[login]
	if !ok {
		return model.UserData{}, ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) SaveUserData(ctx context.Context, user model.UserData) error {
	defer s.writeLock(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.users[user.Login] = user
	return nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, userId string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.state.profiles[userId]
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	return cloneProfile(profile), nil
}

func (s *MemoryStore) GetProfiles(ctx context.Context, userIds []string) ([]model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := []model.Profile{}
	for _, userId := range userIds {
		if profile, ok := s.state.profiles[userId]; ok {
			profiles = append(profiles, cloneProfile(profile))
		}
	}
	return profiles, nil
}

func (s *MemoryStore) SaveProfile(ctx context.Context, profile model.Profile) error {
	defer s.writeLock(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.profiles[profile.UserId] = cloneProfile(profile)
	return nil
}

func (s *MemoryStore) CreateConference(ctx context.Context, conf model.Conference) error {
	defer s.writeLock(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.state.conferences[conf.Id]; exists {
		return fmt.Errorf("conference with id %v already exists", conf.Id)
	}
	s.state.conferences[conf.Id] = cloneConference(conf)
	s.state.conferenceOrder = append(s.state.conferenceOrder, conf.Id)
	return nil
}

func (s *MemoryStore) GetConference(ctx context.Context, id string) (model.Conference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conf, ok := s.state.conferences[id]
	if !ok {
		return model.Conference{}, ErrNotFound
	}
	return cloneConference(conf), nil
}

func (s *MemoryStore) GetConferences(ctx context.Context, ids []string) ([]model.Conference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conferences := []model.Conference{}
	for _, id := range ids {
		if conf, ok := s.state.conferences[id]; ok {
			conferences = append(conferences, cloneConference(conf))
		}
	}
	return conferences, nil
}

func (s *MemoryStore) SaveConference(ctx context.Context, conf model.Conference) error {
	defer s.writeLock(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.conferences[conf.Id]; !ok {
		return ErrNotFound
	}
	s.state.conferences[conf.Id] = cloneConference(conf)
	return nil
}

func (s *MemoryStore) ConferencesByOrganizer(ctx context.Context, userId string) ([]model.Conference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conferences := []model.Conference{}
	for _, id := range s.state.conferenceOrder {
		conf := s.state.conferences[id]
		if conf.OrganizerUserId == userId {
			conferences = append(conferences, cloneConference(conf))
		}
	}
	sort.SliceStable(conferences, func(i, j int) bool {
		return conferences[i].Name < conferences[j].Name
	})
	return conferences, nil
}

func (s *MemoryStore) QueryConferences(ctx context.Context, query model.ConferenceQuery) ([]model.Conference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conferences := []model.Conference{}
	for _, id := range s.state.conferenceOrder {
		conf := s.state.conferences[id]
		matched := true
		for _, filter := range query.Filters {
			ok, err := matchConference(conf, filter)
			if err != nil {
				return nil, err
			}
			if !ok {
				matched = false
				break
			}
		}
		if matched {
			conferences = append(conferences, cloneConference(conf))
		}
	}

	sort.SliceStable(conferences, func(i, j int) bool {
		if query.InequalityField != "" {
			a := sortValue(conferences[i], query.InequalityField)
			b := sortValue(conferences[j], query.InequalityField)
			if c := compareValues(a, b); c != 0 {
				return c < 0
			}
		}
		return conferences[i].Name < conferences[j].Name
	})
	return conferences, nil
}

func (s *MemoryStore) CreateSpeaker(ctx context.Context, speaker model.Speaker) error {
	defer s.writeLock(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.state.speakers[speaker.Id]; exists {
		return fmt.Errorf("speaker with id %v already exists", speaker.Id)
	}
	s.state.speakers[speaker.Id] = speaker
	s.state.speakerOrder = append(s.state.speakerOrder, speaker.Id)
	return nil
}

func (s *MemoryStore) GetSpeaker(ctx context.Context, id string) (model.Speaker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	speaker, ok := s.state.speakers[id]
	if !ok {
		return model.Speaker{}, ErrNotFound
	}
	return speaker, nil
}

func (s *MemoryStore) SpeakersByName(ctx context.Context, name string) ([]model.Speaker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	speakers := []model.Speaker{}
	for _, id := range s.state.speakerOrder {
		if speaker := s.state.speakers[id]; speaker.Name == name {
			speakers = append(speakers, speaker)
		}
	}
	return speakers, nil
}

func (s *MemoryStore) CreateSession(ctx context.Context, session model.Session) error {
	defer s.writeLock(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.state.sessions[session.Id]; exists {
		return fmt.Errorf("session with id %v already exists", session.Id)
	}
	s.state.sessions[session.Id] = cloneSession(session)
	s.state.sessionOrder = append(s.state.sessionOrder, session.Id)
	return nil
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.state.sessions[id]
	if !ok {
		return model.Session{}, ErrNotFound
	}
	return cloneSession(session), nil
}

func (s *MemoryStore) GetSessions(ctx context.Context, ids []string) ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := []model.Session{}
	for _, id := range ids {
		if session, ok := s.state.sessions[id]; ok {
			sessions = append(sessions, cloneSession(session))
		}
	}
	return sessions, nil
}

func (s *MemoryStore) QuerySessions(ctx context.Context, query model.SessionQuery) ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := []model.Session{}
	for _, id := range s.state.sessionOrder {
		session := s.state.sessions[id]
		if matchSession(session, query) {
			sessions = append(sessions, cloneSession(session))
		}
	}
	return sessions, nil
}

type txKey struct{}

func (s *MemoryStore) inTransaction(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*MemoryStore)
	return owner == s
}

// writeLock holds txMu for a write made outside a transaction and returns
// the matching unlock.
func (s *MemoryStore) writeLock(ctx context.Context) func() {
	if s.inTransaction(ctx) {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

// RunInTransaction runs fn with every other write blocked. Store calls made
// by fn must use the ctx it is given. A nested call joins the outer transaction.
func (s *MemoryStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTransaction(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := cloneState(s.state)
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func matchSession(session model.Session, query model.SessionQuery) bool {
	if query.ConferenceId != "" && session.ConferenceId != query.ConferenceId {
		return false
	}
	if len(query.SpeakerIds) > 0 {
		found := false
		for _, speakerId := range query.SpeakerIds {
			if session.HasSpeaker(speakerId) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if query.TypeOfSession != "" && session.TypeOfSession != query.TypeOfSession {
		return false
	}
	if query.NotType != "" && session.TypeOfSession == query.NotType {
		return false
	}
	if query.DateFrom != nil && session.Date.Before(*query.DateFrom) {
		return false
	}
	if query.DateTo != nil && session.Date.After(*query.DateTo) {
		return false
	}
	if query.TimeFrom != nil && session.StartTime < *query.TimeFrom {
		return false
	}
	if query.TimeTo != nil && session.StartTime > *query.TimeTo {
		return false
	}
	return true
}

// matchConference applies one filter. A topics filter matches when any topic
// satisfies it, except != which requires that no topic equals the value.
func matchConference(conf model.Conference, filter model.ConferenceFilter) (bool, error) {
	if filter.Field == model.FieldTopics {
		if filter.Operator == model.OpNE {
			for _, topic := range conf.Topics {
				if compareValues(topic, filter.Value) == 0 {
					return false, nil
				}
			}
			return true, nil
		}
		for _, topic := range conf.Topics {
			ok, err := applyOperator(compareValues(topic, filter.Value), filter.Operator)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}

	value := sortValue(conf, filter.Field)
	if value == nil {
		return false, fmt.Errorf("unsupported conference field %q", filter.Field)
	}
	return applyOperator(compareValues(value, filter.Value), filter.Operator)
}

func applyOperator(cmp int, operator string) (bool, error) {
	switch operator {
	case model.OpEQ:
		return cmp == 0, nil
	case model.OpNE:
		return cmp != 0, nil
	case model.OpGT:
		return cmp > 0, nil
	case model.OpGTEQ:
		return cmp >= 0, nil
	case model.OpLT:
		return cmp < 0, nil
	case model.OpLTEQ:
		return cmp <= 0, nil
	}
	return false, fmt.Errorf("unsupported operator %q", operator)
}

// sortValue returns the value of a conference field; for topics it is the
// smallest topic, which is how array fields sort.
func sortValue(conf model.Conference, field string) interface{} {
	switch field {
	case model.FieldCity:
		return conf.City
	case model.FieldName:
		return conf.Name
	case model.FieldMonth:
		return conf.Month
	case model.FieldMaxAttendees:
		return conf.MaxAttendees
	case model.FieldSeats:
		return conf.SeatsAvailable
	case model.FieldTopics:
		if len(conf.Topics) == 0 {
			return ""
		}
		smallest := conf.Topics[0]
		for _, topic := range conf.Topics[1:] {
			if topic < smallest {
				smallest = topic
			}
		}
		return smallest
	}
	return nil
}

// compareValues orders ints before strings, like the document store does.
func compareValues(a, b interface{}) int {
	ai, aIsInt := a.(int)
	bi, bIsInt := b.(int)
	switch {
	case aIsInt && bIsInt:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case aIsInt:
		return -1
	case bIsInt:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string{}, values...)
}

func cloneProfile(profile model.Profile) model.Profile {
	profile.ConferenceKeysToAttend = cloneStrings(profile.ConferenceKeysToAttend)
	profile.SessionWishlist = cloneStrings(profile.SessionWishlist)
	return profile
}

func cloneConference(conf model.Conference) model.Conference {
	conf.Topics = cloneStrings(conf.Topics)
	return conf
}

func cloneSession(session model.Session) model.Session {
	session.SpeakerKeys = cloneStrings(session.SpeakerKeys)
	return session
}

func cloneState(state memoryState) memoryState {
	clone := memoryState{
		users:           make(map[string]model.UserData, len(state.users)),
		profiles:        make(map[string]model.Profile, len(state.profiles)),
		conferences:     make(map[string]model.Conference, len(state.conferences)),
		conferenceOrder: cloneStrings(state.conferenceOrder),
		speakers:        make(map[string]model.Speaker, len(state.speakers)),
		speakerOrder:    cloneStrings(state.speakerOrder),
		sessions:        make(map[string]model.Session, len(state.sessions)),
		sessionOrder:    cloneStrings(state.sessionOrder),
	}
	for k, v := range state.users {
		clone.users[k] = v
	}
	for k, v := range state.profiles {
		clone.profiles[k] = cloneProfile(v)
	}
	for k, v := range state.conferences {
		clone.conferences[k] = cloneConference(v)
	}
	for k, v := range state.speakers {
		clone.speakers[k] = v
	}
	for k, v := range state.sessions {
		clone.sessions[k] = cloneSession(v)
	}
	return clone
}
