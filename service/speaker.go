package service

import (
	"conference-app/keys"
	"conference-app/model"
	"context"
	"fmt"
)

// CreateSpeaker stores a speaker with its name in title case, so that lookups
// by name match regardless of the letter case used.
func (s *Service) CreateSpeaker(ctx context.Context, form model.SpeakerForm) (model.SpeakerForm, error) {
	form.Name = model.CanonicalName(form.Name)
	if err := validationError("Speaker", form); err != nil {
		return model.SpeakerForm{}, err
	}

	speaker := model.Speaker{
		Id:   keys.NewId(),
		Name: form.Name,
		Bio:  form.Bio,
	}
	if err := s.store.CreateSpeaker(ctx, speaker); err != nil {
		return model.SpeakerForm{}, fmt.Errorf("creating speaker: %w", err)
	}
	s.log.WithField("speaker", speaker.Id).Info("speaker created")
	return speakerToForm(speaker), nil
}

func (s *Service) GetSpeaker(ctx context.Context, token string) (model.SpeakerForm, error) {
	speaker, err := s.speaker(ctx, token)
	if err != nil {
		return model.SpeakerForm{}, err
	}
	return speakerToForm(speaker), nil
}

func speakerToForm(speaker model.Speaker) model.SpeakerForm {
	return model.SpeakerForm{
		Name:       speaker.Name,
		Bio:        speaker.Bio,
		WebsafeKey: keys.Encode(keys.KindSpeaker, speaker.Id),
	}
}
