package service

import (
	apperrors "conference-app/errors"
	"conference-app/keys"
	"conference-app/model"
	"conference-app/tasks"
	"context"
	"fmt"
	"strings"
)

// CreateSession adds a session to a conference owned by the caller. Every
// speaker key is resolved before anything is written.
func (s *Service) CreateSession(ctx context.Context, identity model.Identity, conferenceToken string, form model.SessionForm) (model.SessionForm, error) {
	if err := requireAuth(identity); err != nil {
		return model.SessionForm{}, err
	}
	form.Name = strings.TrimSpace(form.Name)
	if err := validationError("Session", form); err != nil {
		return model.SessionForm{}, err
	}

	sessionType := model.SessionNotSpecified
	if form.TypeOfSession != "" {
		parsed, ok := model.ParseSessionType(form.TypeOfSession)
		if !ok {
			return model.SessionForm{}, apperrors.BadRequest("Unknown session type: %v", form.TypeOfSession)
		}
		sessionType = parsed
	}
	date, err := model.ParseDate(form.Date)
	if err != nil {
		return model.SessionForm{}, apperrors.BadRequest("Session 'date' field is invalid: %v", err)
	}
	startTime, err := model.ParseClock(form.StartTime)
	if err != nil {
		return model.SessionForm{}, apperrors.BadRequest("Session 'startTime' field is invalid: %v", err)
	}

	if conferenceToken == "" {
		conferenceToken = form.WebsafeConferenceKey
	}
	conf, err := s.conference(ctx, conferenceToken)
	if err != nil {
		return model.SessionForm{}, err
	}
	if conf.OrganizerUserId != identity.UserId {
		return model.SessionForm{}, apperrors.Forbidden("Only the owner of the conference can add sessions.")
	}

	speakerIds := []string{}
	seen := map[string]bool{}
	for _, token := range form.SpeakerKeys {
		speaker, err := s.speaker(ctx, token)
		if err != nil {
			return model.SessionForm{}, err
		}
		if !seen[speaker.Id] {
			seen[speaker.Id] = true
			speakerIds = append(speakerIds, speaker.Id)
		}
	}

	session := model.Session{
		Id:            keys.NewId(),
		ConferenceId:  conf.Id,
		Name:          form.Name,
		Highlights:    form.Highlights,
		SpeakerKeys:   speakerIds,
		Duration:      form.Duration,
		TypeOfSession: sessionType,
		Date:          date,
		StartTime:     startTime,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return model.SessionForm{}, fmt.Errorf("creating session: %w", err)
	}
	s.log.WithField("conference", conf.Id).WithField("session", session.Id).Info("session created")

	if len(speakerIds) > 0 {
		s.enqueue(ctx, tasks.UPDATE_FEATURED_SPEAKER, map[string]string{
			"conferenceId": conf.Id,
			"speakerIds":   strings.Join(speakerIds, ","),
		})
	}

	return sessionToForm(session), nil
}

func (s *Service) GetConferenceSessions(ctx context.Context, conferenceToken string) (model.SessionForms, error) {
	conf, err := s.conference(ctx, conferenceToken)
	if err != nil {
		return model.SessionForms{}, err
	}
	return s.querySessions(ctx, model.SessionQuery{ConferenceId: conf.Id})
}

func (s *Service) GetConferenceSessionsByType(ctx context.Context, conferenceToken string, typeOfSession string) (model.SessionForms, error) {
	sessionType, ok := model.ParseSessionType(typeOfSession)
	if !ok {
		return model.SessionForms{}, apperrors.BadRequest("Unknown session type: %v", typeOfSession)
	}
	conf, err := s.conference(ctx, conferenceToken)
	if err != nil {
		return model.SessionForms{}, err
	}
	return s.querySessions(ctx, model.SessionQuery{ConferenceId: conf.Id, TypeOfSession: sessionType})
}

// GetSessionsBySpeaker returns the sessions, across all conferences, of every
// speaker whose name matches speakerName in any letter case.
func (s *Service) GetSessionsBySpeaker(ctx context.Context, speakerName string) (model.SessionForms, error) {
	name := model.CanonicalName(speakerName)
	if name == "" {
		return model.SessionForms{}, apperrors.BadRequest("Speaker name required")
	}
	speakers, err := s.store.SpeakersByName(ctx, name)
	if err != nil {
		return model.SessionForms{}, fmt.Errorf("looking up speakers named %v: %w", name, err)
	}
	if len(speakers) == 0 {
		return model.SessionForms{Items: []model.SessionForm{}}, nil
	}

	ids := make([]string, 0, len(speakers))
	for _, speaker := range speakers {
		ids = append(ids, speaker.Id)
	}
	return s.querySessions(ctx, model.SessionQuery{SpeakerIds: ids})
}

// GetConferenceSessionsByDate returns sessions held between two dates, both inclusive.
func (s *Service) GetConferenceSessionsByDate(ctx context.Context, conferenceToken string, startDate string, endDate string) (model.SessionForms, error) {
	from, err := model.ParseDate(startDate)
	if err != nil {
		return model.SessionForms{}, apperrors.BadRequest("Invalid start date: %v", err)
	}
	to, err := model.ParseDate(endDate)
	if err != nil {
		return model.SessionForms{}, apperrors.BadRequest("Invalid end date: %v", err)
	}
	conf, err := s.conference(ctx, conferenceToken)
	if err != nil {
		return model.SessionForms{}, err
	}
	return s.querySessions(ctx, model.SessionQuery{ConferenceId: conf.Id, DateFrom: &from, DateTo: &to})
}

// GetConferenceSessionsByTime returns sessions starting between two HHMM times, both inclusive.
func (s *Service) GetConferenceSessionsByTime(ctx context.Context, conferenceToken string, startTime int, endTime int) (model.SessionForms, error) {
	from, err := model.ParseClock(startTime)
	if err != nil {
		return model.SessionForms{}, apperrors.BadRequest("Invalid start time: %v", err)
	}
	to, err := model.ParseClock(endTime)
	if err != nil {
		return model.SessionForms{}, apperrors.BadRequest("Invalid end time: %v", err)
	}
	conf, err := s.conference(ctx, conferenceToken)
	if err != nil {
		return model.SessionForms{}, err
	}
	return s.querySessions(ctx, model.SessionQuery{ConferenceId: conf.Id, TimeFrom: &from, TimeTo: &to})
}

// GetConferenceSessionsPicky returns sessions not of antiType that start no
// later than latestTime. The store cannot combine the type exclusion with a
// second range predicate, so the time bound is applied here.
func (s *Service) GetConferenceSessionsPicky(ctx context.Context, conferenceToken string, antiType string, latestTime int) (model.SessionForms, error) {
	sessionType, ok := model.ParseSessionType(antiType)
	if !ok {
		return model.SessionForms{}, apperrors.BadRequest("Unknown session type: %v", antiType)
	}
	latest, err := model.ParseClock(latestTime)
	if err != nil {
		return model.SessionForms{}, apperrors.BadRequest("Invalid latest time: %v", err)
	}
	conf, err := s.conference(ctx, conferenceToken)
	if err != nil {
		return model.SessionForms{}, err
	}

	sessions, err := s.store.QuerySessions(ctx, model.SessionQuery{ConferenceId: conf.Id, NotType: sessionType})
	if err != nil {
		return model.SessionForms{}, fmt.Errorf("querying sessions: %w", err)
	}
	picked := []model.Session{}
	for _, session := range sessions {
		if session.StartTime <= latest {
			picked = append(picked, session)
		}
	}
	return sessionsToForms(picked), nil
}

func (s *Service) querySessions(ctx context.Context, query model.SessionQuery) (model.SessionForms, error) {
	sessions, err := s.store.QuerySessions(ctx, query)
	if err != nil {
		return model.SessionForms{}, fmt.Errorf("querying sessions: %w", err)
	}
	return sessionsToForms(sessions), nil
}

func sessionToForm(session model.Session) model.SessionForm {
	return model.SessionForm{
		Name:                 session.Name,
		Highlights:           session.Highlights,
		SpeakerKeys:          keys.EncodeAll(keys.KindSpeaker, session.SpeakerKeys),
		Duration:             session.Duration,
		TypeOfSession:        string(session.TypeOfSession),
		Date:                 model.FormatDate(&session.Date),
		StartTime:            int(session.StartTime),
		WebsafeKey:           keys.Encode(keys.KindSession, session.Id),
		WebsafeConferenceKey: keys.Encode(keys.KindConference, session.ConferenceId),
	}
}

func sessionsToForms(sessions []model.Session) model.SessionForms {
	forms := model.SessionForms{Items: []model.SessionForm{}}
	for _, session := range sessions {
		forms.Items = append(forms.Items, sessionToForm(session))
	}
	return forms
}
