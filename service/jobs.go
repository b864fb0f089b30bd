package service

import (
	"conference-app/cache"
	"conference-app/database"
	"conference-app/keys"
	"conference-app/model"
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ANNOUNCEMENT_TPL string = "Last chance to attend! The following conferences are nearly sold out: %s"

	// A speaker is featured once they appear in more than this many sessions of a conference.
	FEATURED_SPEAKER_THRESHOLD int = 2

	nearlySoldOutSeats int = 5
)

// UpdateFeaturedSpeaker scans the sessions of the conference in store order,
// counting appearances of each candidate speaker, and caches the first
// candidate whose count goes above the threshold. Nothing is written when no
// candidate qualifies.
func (s *Service) UpdateFeaturedSpeaker(ctx context.Context, conferenceId string, speakerIds []string) (string, error) {
	sessions, err := s.store.QuerySessions(ctx, model.SessionQuery{ConferenceId: conferenceId})
	if err != nil {
		return "", fmt.Errorf("loading sessions of conference %v: %w", conferenceId, err)
	}

	counters := make(map[string]int, len(speakerIds))
	for _, session := range sessions {
		for _, speakerId := range speakerIds {
			if !session.HasSpeaker(speakerId) {
				continue
			}
			counters[speakerId]++
			if counters[speakerId] <= FEATURED_SPEAKER_THRESHOLD {
				continue
			}

			key := cache.FeaturedSpeakerKey(keys.Encode(keys.KindConference, conferenceId))
			if err := s.cache.Set(ctx, key, keys.Encode(keys.KindSpeaker, speakerId)); err != nil {
				return "", fmt.Errorf("caching featured speaker: %w", err)
			}
			s.log.WithField("conference", conferenceId).WithField("speaker", speakerId).Info("featured speaker updated")
			return speakerId, nil
		}
	}
	return "", nil
}

// GetFeaturedSpeaker returns the cached featured speaker of a conference, or
// an empty form when there is none.
func (s *Service) GetFeaturedSpeaker(ctx context.Context, conferenceToken string) (model.SpeakerForm, error) {
	conf, err := s.conference(ctx, conferenceToken)
	if err != nil {
		return model.SpeakerForm{}, err
	}

	key := cache.FeaturedSpeakerKey(keys.Encode(keys.KindConference, conf.Id))
	speakerToken, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		return model.SpeakerForm{}, nil
	}
	if err != nil {
		return model.SpeakerForm{}, fmt.Errorf("reading featured speaker: %w", err)
	}

	speakerId, err := keys.Decode(speakerToken, keys.KindSpeaker)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("ignoring invalid featured speaker entry")
		return model.SpeakerForm{}, nil
	}
	speaker, err := s.store.GetSpeaker(ctx, speakerId)
	if errors.Is(err, database.ErrNotFound) {
		return model.SpeakerForm{}, nil
	}
	if err != nil {
		return model.SpeakerForm{}, fmt.Errorf("loading featured speaker: %w", err)
	}
	return speakerToForm(speaker), nil
}

// SetAnnouncement caches an announcement listing the conferences with at most
// five seats left, or clears it when there are none.
func (s *Service) SetAnnouncement(ctx context.Context) (string, error) {
	conferences, err := s.store.QueryConferences(ctx, model.ConferenceQuery{
		Filters: []model.ConferenceFilter{
			{Field: model.FieldSeats, Operator: model.OpGT, Value: 0},
			{Field: model.FieldSeats, Operator: model.OpLTEQ, Value: nearlySoldOutSeats},
		},
		InequalityField: model.FieldSeats,
	})
	if err != nil {
		return "", fmt.Errorf("looking up nearly sold out conferences: %w", err)
	}

	if len(conferences) == 0 {
		if err := s.cache.Delete(ctx, cache.ANNOUNCEMENTS_KEY); err != nil {
			return "", fmt.Errorf("clearing announcement: %w", err)
		}
		return "", nil
	}

	names := make([]string, 0, len(conferences))
	for _, conf := range conferences {
		names = append(names, conf.Name)
	}
	announcement := fmt.Sprintf(ANNOUNCEMENT_TPL, strings.Join(names, ", "))
	if err := s.cache.Set(ctx, cache.ANNOUNCEMENTS_KEY, announcement); err != nil {
		return "", fmt.Errorf("caching announcement: %w", err)
	}
	return announcement, nil
}

func (s *Service) GetAnnouncement(ctx context.Context) (model.StringMessage, error) {
	announcement, err := s.cache.Get(ctx, cache.ANNOUNCEMENTS_KEY)
	if errors.Is(err, cache.ErrMiss) {
		return model.StringMessage{Data: ""}, nil
	}
	if err != nil {
		return model.StringMessage{}, fmt.Errorf("reading announcement: %w", err)
	}
	return model.StringMessage{Data: announcement}, nil
}

func (s *Service) updateFeaturedSpeakerTask(ctx context.Context, params map[string]string) error {
	conferenceId := params["conferenceId"]
	if conferenceId == "" || params["speakerIds"] == "" {
		s.log.WithField("params", params).Warn("featured speaker task without conference or speakers")
		return nil
	}
	_, err := s.UpdateFeaturedSpeaker(ctx, conferenceId, strings.Split(params["speakerIds"], ","))
	return err
}

func (s *Service) setAnnouncementTask(ctx context.Context, params map[string]string) error {
	_, err := s.SetAnnouncement(ctx)
	return err
}

func (s *Service) sendConfirmationEmailTask(ctx context.Context, params map[string]string) error {
	email := params["email"]
	if email == "" {
		s.log.Warn("no email address for conference confirmation, skipping")
		return nil
	}
	return s.mailer.Send(ctx, email,
		"You created a new Conference!",
		"Hi, you have created a following conference:\r\n\r\n"+params["conferenceInfo"])
}
