package service

import (
	apperrors "conference-app/errors"
	"conference-app/metrics"
	"conference-app/model"
	"context"
)

const (
	actionRegister   = "register"
	actionUnregister = "unregister"
)

func (s *Service) RegisterForConference(ctx context.Context, identity model.Identity, token string) (model.BooleanMessage, error) {
	done, err := s.conferenceRegistration(ctx, identity, token, true)
	return model.BooleanMessage{Data: done}, err
}

// UnregisterFromConference reports false, without an error, when the caller
// was not registered.
func (s *Service) UnregisterFromConference(ctx context.Context, identity model.Identity, token string) (model.BooleanMessage, error) {
	done, err := s.conferenceRegistration(ctx, identity, token, false)
	return model.BooleanMessage{Data: done}, err
}

// conferenceRegistration moves one seat between the conference and the
// caller's profile. Both records are written in one transaction.
func (s *Service) conferenceRegistration(ctx context.Context, identity model.Identity, token string, register bool) (bool, error) {
	action := actionUnregister
	if register {
		action = actionRegister
	}
	if err := requireAuth(identity); err != nil {
		return false, err
	}

	var done bool
	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		done = false
		profile, err := s.profile(ctx, identity)
		if err != nil {
			return err
		}
		conf, err := s.conference(ctx, token)
		if err != nil {
			return err
		}

		if register {
			if profile.IsAttending(conf.Id) {
				return apperrors.Conflict("You have already registered for this conference")
			}
			if conf.SeatsAvailable <= 0 {
				return apperrors.Conflict("There are no seats available.")
			}
			profile.ConferenceKeysToAttend = append(profile.ConferenceKeysToAttend, conf.Id)
			conf.SeatsAvailable--
		} else {
			if !profile.IsAttending(conf.Id) {
				return nil
			}
			profile.ConferenceKeysToAttend = removeString(profile.ConferenceKeysToAttend, conf.Id)
			if conf.SeatsAvailable < conf.MaxAttendees {
				conf.SeatsAvailable++
			}
		}

		if err := s.store.SaveProfile(ctx, profile); err != nil {
			return err
		}
		if err := s.store.SaveConference(ctx, conf); err != nil {
			return err
		}
		done = true
		return nil
	})

	metrics.RecordRegistration(action, registrationOutcome(done, err))
	if err != nil {
		return false, err
	}
	if done {
		s.log.WithField("conference", token).WithField("user", identity.UserId).Infof("%v succeeded", action)
	}
	return done, nil
}

func registrationOutcome(done bool, err error) string {
	switch {
	case err == nil && done:
		return "ok"
	case err == nil:
		return "noop"
	case apperrors.Is(err, apperrors.KindConflict):
		return "conflict"
	case apperrors.Is(err, apperrors.KindInternal):
		return "error"
	}
	return "rejected"
}

func removeString(values []string, value string) []string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != value {
			kept = append(kept, v)
		}
	}
	return kept
}
