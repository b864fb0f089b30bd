// Package service implements the business rules of the conference API. Every
// operation takes the caller's identity explicitly; an empty identity means an
// anonymous caller.
package service

import (
	"conference-app/cache"
	"conference-app/database"
	apperrors "conference-app/errors"
	"conference-app/keys"
	"conference-app/model"
	"conference-app/tasks"
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// TaskRegistry is the part of the work queue used to bind task handlers.
type TaskRegistry interface {
	Register(name string, handler tasks.Handler)
}

type Service struct {
	store  database.Store
	cache  cache.Cache
	queue  tasks.Enqueuer
	mailer tasks.Mailer
	log    *logrus.Logger
}

func New(store database.Store, cache cache.Cache, queue tasks.Enqueuer, mailer tasks.Mailer, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if mailer == nil {
		mailer = tasks.LogMailer{Log: log}
	}
	return &Service{
		store:  store,
		cache:  cache,
		queue:  queue,
		mailer: mailer,
		log:    log,
	}
}

// RegisterTasks binds the background jobs of the service to the queue.
func (s *Service) RegisterTasks(registry TaskRegistry) {
	registry.Register(tasks.SEND_CONFIRMATION_EMAIL, s.sendConfirmationEmailTask)
	registry.Register(tasks.UPDATE_FEATURED_SPEAKER, s.updateFeaturedSpeakerTask)
	registry.Register(tasks.SET_ANNOUNCEMENT, s.setAnnouncementTask)
}

func (s *Service) enqueue(ctx context.Context, name string, params map[string]string) {
	if err := s.queue.Enqueue(ctx, name, params); err != nil {
		s.log.WithError(err).WithField("task", name).Error("could not enqueue task")
	}
}

func requireAuth(identity model.Identity) error {
	if !identity.IsAuthenticated() {
		return apperrors.Unauthorized("Authorization required")
	}
	return nil
}

func decodeKey(token string, kind keys.Kind) (string, error) {
	id, err := keys.Decode(token, kind)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, keys.ErrWrongKind) {
		actual, _, _ := keys.Parse(token)
		return "", apperrors.NotFound("Key %v refers to a %v, not a %v", token, actual, kind)
	}
	return "", apperrors.BadRequest("Malformed %v key: %v", kind, token)
}

func storeError(err error, kind keys.Kind, token string) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.NotFound("No %v found with key: %v", kind, token)
	}
	return fmt.Errorf("loading %v %v: %w", kind, token, err)
}

func (s *Service) conference(ctx context.Context, token string) (model.Conference, error) {
	id, err := decodeKey(token, keys.KindConference)
	if err != nil {
		return model.Conference{}, err
	}
	conf, err := s.store.GetConference(ctx, id)
	if err != nil {
		return model.Conference{}, storeError(err, keys.KindConference, token)
	}
	return conf, nil
}

func (s *Service) session(ctx context.Context, token string) (model.Session, error) {
	id, err := decodeKey(token, keys.KindSession)
	if err != nil {
		return model.Session{}, err
	}
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return model.Session{}, storeError(err, keys.KindSession, token)
	}
	return session, nil
}

func (s *Service) speaker(ctx context.Context, token string) (model.Speaker, error) {
	id, err := decodeKey(token, keys.KindSpeaker)
	if err != nil {
		return model.Speaker{}, err
	}
	speaker, err := s.store.GetSpeaker(ctx, id)
	if err != nil {
		return model.Speaker{}, storeError(err, keys.KindSpeaker, token)
	}
	return speaker, nil
}

func validationError(entity string, form interface{}) error {
	if err := model.Validate(entity, form); err != nil {
		return apperrors.BadRequest("%v", err)
	}
	return nil
}
