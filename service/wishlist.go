package service

import (
	apperrors "conference-app/errors"
	"conference-app/model"
	"context"
	"fmt"
)

func (s *Service) AddSessionToWishlist(ctx context.Context, identity model.Identity, form model.WishlistForm) (model.BooleanMessage, error) {
	if err := requireAuth(identity); err != nil {
		return model.BooleanMessage{}, err
	}
	if err := validationError("Wishlist", form); err != nil {
		return model.BooleanMessage{}, err
	}
	session, err := s.session(ctx, form.WebsafeSessionKey)
	if err != nil {
		return model.BooleanMessage{}, err
	}

	err = s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		profile, err := s.profile(ctx, identity)
		if err != nil {
			return err
		}
		if profile.HasInWishlist(session.Id) {
			return apperrors.Conflict("Session is already in your wishlist")
		}
		profile.SessionWishlist = append(profile.SessionWishlist, session.Id)
		return s.store.SaveProfile(ctx, profile)
	})
	if err != nil {
		return model.BooleanMessage{}, err
	}
	return model.BooleanMessage{Data: true}, nil
}

// GetSessionsInWishlist returns the wishlisted sessions in the order they were
// added. Sessions that no longer exist are skipped.
func (s *Service) GetSessionsInWishlist(ctx context.Context, identity model.Identity) (model.SessionForms, error) {
	profile, err := s.profile(ctx, identity)
	if err != nil {
		return model.SessionForms{}, err
	}
	sessions, err := s.store.GetSessions(ctx, profile.SessionWishlist)
	if err != nil {
		return model.SessionForms{}, fmt.Errorf("loading wishlist sessions: %w", err)
	}
	return sessionsToForms(sessions), nil
}
