package service

import (
	"conference-app/database"
	apperrors "conference-app/errors"
	"conference-app/keys"
	"conference-app/model"
	"context"
	"errors"
	"fmt"
)

// profile returns the caller's profile, creating it from the identity on first access.
func (s *Service) profile(ctx context.Context, identity model.Identity) (model.Profile, error) {
	if err := requireAuth(identity); err != nil {
		return model.Profile{}, err
	}

	profile, err := s.store.GetProfile(ctx, identity.UserId)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return model.Profile{}, fmt.Errorf("loading profile %v: %w", identity.UserId, err)
	}

	profile = model.Profile{
		UserId:                 identity.UserId,
		DisplayName:            identity.Nickname,
		MainEmail:              identity.Email,
		TeeShirtSize:           model.TeeShirtNotSpecified,
		ConferenceKeysToAttend: []string{},
		SessionWishlist:        []string{},
	}
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return model.Profile{}, fmt.Errorf("creating profile %v: %w", identity.UserId, err)
	}
	s.log.WithField("user", identity.UserId).Info("profile created")
	return profile, nil
}

func (s *Service) GetProfile(ctx context.Context, identity model.Identity) (model.ProfileForm, error) {
	profile, err := s.profile(ctx, identity)
	if err != nil {
		return model.ProfileForm{}, err
	}
	return profileToForm(profile), nil
}

// SaveProfile updates the display name and t-shirt size; empty fields are left unchanged.
func (s *Service) SaveProfile(ctx context.Context, identity model.Identity, form model.ProfileMiniForm) (model.ProfileForm, error) {
	var size model.TeeShirtSize
	if form.TeeShirtSize != "" {
		parsed, ok := model.ParseTeeShirtSize(form.TeeShirtSize)
		if !ok {
			return model.ProfileForm{}, apperrors.BadRequest("Unknown t-shirt size: %v", form.TeeShirtSize)
		}
		size = parsed
	}

	var saved model.Profile
	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		profile, err := s.profile(ctx, identity)
		if err != nil {
			return err
		}
		if form.DisplayName != "" {
			profile.DisplayName = form.DisplayName
		}
		if size != "" {
			profile.TeeShirtSize = size
		}
		saved = profile
		return s.store.SaveProfile(ctx, profile)
	})
	if err != nil {
		return model.ProfileForm{}, err
	}
	return profileToForm(saved), nil
}

func profileToForm(profile model.Profile) model.ProfileForm {
	return model.ProfileForm{
		DisplayName:            profile.DisplayName,
		MainEmail:              profile.MainEmail,
		TeeShirtSize:           string(profile.TeeShirtSize),
		ConferenceKeysToAttend: keys.EncodeAll(keys.KindConference, profile.ConferenceKeysToAttend),
		SessionWishlist:        keys.EncodeAll(keys.KindSession, profile.SessionWishlist),
	}
}

// displayNames maps organizer ids to their profile display names.
func (s *Service) displayNames(ctx context.Context, conferences []model.Conference) (map[string]string, error) {
	ids := []string{}
	seen := map[string]bool{}
	for _, conf := range conferences {
		if !seen[conf.OrganizerUserId] {
			seen[conf.OrganizerUserId] = true
			ids = append(ids, conf.OrganizerUserId)
		}
	}

	profiles, err := s.store.GetProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading organizer profiles: %w", err)
	}
	names := make(map[string]string, len(profiles))
	for _, profile := range profiles {
		names[profile.UserId] = profile.DisplayName
	}
	return names, nil
}
