package service

import (
	apperrors "conference-app/errors"
	"conference-app/keys"
	"conference-app/model"
	"conference-app/tasks"
	"context"
	"fmt"
	"strconv"
	"strings"
)

const DEFAULT_CITY string = "Default City"

var DEFAULT_TOPICS = []string{"Default", "Topic"}

// Query filter fields and operators accepted from clients.
var (
	queryFields = map[string]string{
		"CITY":          model.FieldCity,
		"TOPIC":         model.FieldTopics,
		"MONTH":         model.FieldMonth,
		"MAX_ATTENDEES": model.FieldMaxAttendees,
	}
	queryOperators = map[string]string{
		"EQ":   model.OpEQ,
		"GT":   model.OpGT,
		"GTEQ": model.OpGTEQ,
		"LT":   model.OpLT,
		"LTEQ": model.OpLTEQ,
		"NE":   model.OpNE,
	}
)

func (s *Service) CreateConference(ctx context.Context, identity model.Identity, form model.ConferenceForm) (model.ConferenceForm, error) {
	if err := requireAuth(identity); err != nil {
		return model.ConferenceForm{}, err
	}
	form.Name = strings.TrimSpace(form.Name)
	if err := validationError("Conference", form); err != nil {
		return model.ConferenceForm{}, err
	}

	conf := model.Conference{
		Id:              keys.NewId(),
		Name:            form.Name,
		Description:     form.Description,
		OrganizerUserId: identity.UserId,
		Topics:          form.Topics,
		City:            form.City,
		MaxAttendees:    form.MaxAttendees,
	}
	if conf.City == "" {
		conf.City = DEFAULT_CITY
	}
	if len(conf.Topics) == 0 {
		conf.Topics = append([]string{}, DEFAULT_TOPICS...)
	}
	if err := applyDates(&conf, form.StartDate, form.EndDate); err != nil {
		return model.ConferenceForm{}, err
	}
	if conf.MaxAttendees > 0 {
		conf.SeatsAvailable = conf.MaxAttendees
	}

	profile, err := s.profile(ctx, identity)
	if err != nil {
		return model.ConferenceForm{}, err
	}
	if err := s.store.CreateConference(ctx, conf); err != nil {
		return model.ConferenceForm{}, fmt.Errorf("creating conference: %w", err)
	}
	s.log.WithField("conference", conf.Id).WithField("user", identity.UserId).Info("conference created")

	s.enqueue(ctx, tasks.SEND_CONFIRMATION_EMAIL, map[string]string{
		"email":          identity.Email,
		"conferenceInfo": conferenceSummary(conf),
	})

	return conferenceToForm(conf, profile.DisplayName), nil
}

// UpdateConference applies the non-empty fields of form. A change of
// maxAttendees moves seatsAvailable by the same amount.
func (s *Service) UpdateConference(ctx context.Context, identity model.Identity, token string, form model.ConferenceUpdateForm) (model.ConferenceForm, error) {
	if err := requireAuth(identity); err != nil {
		return model.ConferenceForm{}, err
	}
	if err := validationError("Conference", form); err != nil {
		return model.ConferenceForm{}, err
	}

	var updated model.Conference
	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		conf, err := s.conference(ctx, token)
		if err != nil {
			return err
		}
		if conf.OrganizerUserId != identity.UserId {
			return apperrors.Forbidden("Only the owner can update the conference.")
		}

		if form.Name != nil && strings.TrimSpace(*form.Name) != "" {
			conf.Name = strings.TrimSpace(*form.Name)
		}
		if form.Description != nil && *form.Description != "" {
			conf.Description = *form.Description
		}
		if len(form.Topics) > 0 {
			conf.Topics = form.Topics
		}
		if form.City != nil && *form.City != "" {
			conf.City = *form.City
		}
		if form.StartDate != nil && *form.StartDate != "" {
			start, err := model.ParseDate(*form.StartDate)
			if err != nil {
				return apperrors.BadRequest("Conference 'startDate' field is invalid: %v", err)
			}
			conf.StartDate = &start
			conf.Month = int(start.Month())
		}
		if form.EndDate != nil && *form.EndDate != "" {
			end, err := model.ParseDate(*form.EndDate)
			if err != nil {
				return apperrors.BadRequest("Conference 'endDate' field is invalid: %v", err)
			}
			conf.EndDate = &end
		}
		if form.MaxAttendees != nil {
			seats := conf.SeatsAvailable + *form.MaxAttendees - conf.MaxAttendees
			if seats < 0 {
				return apperrors.BadRequest("maxAttendees cannot be lower than the %v seats already taken",
					conf.MaxAttendees-conf.SeatsAvailable)
			}
			conf.MaxAttendees = *form.MaxAttendees
			conf.SeatsAvailable = seats
		}

		updated = conf
		return s.store.SaveConference(ctx, conf)
	})
	if err != nil {
		return model.ConferenceForm{}, err
	}

	names, err := s.displayNames(ctx, []model.Conference{updated})
	if err != nil {
		return model.ConferenceForm{}, err
	}
	return conferenceToForm(updated, names[updated.OrganizerUserId]), nil
}

func (s *Service) GetConference(ctx context.Context, token string) (model.ConferenceForm, error) {
	conf, err := s.conference(ctx, token)
	if err != nil {
		return model.ConferenceForm{}, err
	}
	names, err := s.displayNames(ctx, []model.Conference{conf})
	if err != nil {
		return model.ConferenceForm{}, err
	}
	return conferenceToForm(conf, names[conf.OrganizerUserId]), nil
}

// GetConferencesCreated lists the caller's conferences ordered by name.
func (s *Service) GetConferencesCreated(ctx context.Context, identity model.Identity) (model.ConferenceForms, error) {
	profile, err := s.profile(ctx, identity)
	if err != nil {
		return model.ConferenceForms{}, err
	}
	conferences, err := s.store.ConferencesByOrganizer(ctx, identity.UserId)
	if err != nil {
		return model.ConferenceForms{}, fmt.Errorf("listing conferences of %v: %w", identity.UserId, err)
	}

	forms := model.ConferenceForms{Items: []model.ConferenceForm{}}
	for _, conf := range conferences {
		forms.Items = append(forms.Items, conferenceToForm(conf, profile.DisplayName))
	}
	return forms, nil
}

func (s *Service) QueryConferences(ctx context.Context, form model.ConferenceQueryForms) (model.ConferenceForms, error) {
	query, err := buildConferenceQuery(form)
	if err != nil {
		return model.ConferenceForms{}, err
	}
	conferences, err := s.store.QueryConferences(ctx, query)
	if err != nil {
		return model.ConferenceForms{}, fmt.Errorf("querying conferences: %w", err)
	}
	return s.conferenceForms(ctx, conferences)
}

// GetConferencesToAttend lists the conferences the caller is registered for.
func (s *Service) GetConferencesToAttend(ctx context.Context, identity model.Identity) (model.ConferenceForms, error) {
	profile, err := s.profile(ctx, identity)
	if err != nil {
		return model.ConferenceForms{}, err
	}
	conferences, err := s.store.GetConferences(ctx, profile.ConferenceKeysToAttend)
	if err != nil {
		return model.ConferenceForms{}, fmt.Errorf("loading conferences to attend: %w", err)
	}
	return s.conferenceForms(ctx, conferences)
}

func (s *Service) conferenceForms(ctx context.Context, conferences []model.Conference) (model.ConferenceForms, error) {
	names, err := s.displayNames(ctx, conferences)
	if err != nil {
		return model.ConferenceForms{}, err
	}
	forms := model.ConferenceForms{Items: []model.ConferenceForm{}}
	for _, conf := range conferences {
		forms.Items = append(forms.Items, conferenceToForm(conf, names[conf.OrganizerUserId]))
	}
	return forms, nil
}

func buildConferenceQuery(form model.ConferenceQueryForms) (model.ConferenceQuery, error) {
	if err := validationError("Filter", form); err != nil {
		return model.ConferenceQuery{}, err
	}

	query := model.ConferenceQuery{}
	for _, filter := range form.Filters {
		field, ok := queryFields[strings.ToUpper(strings.TrimSpace(filter.Field))]
		if !ok {
			return model.ConferenceQuery{}, apperrors.BadRequest("Filter contains invalid field: %v", filter.Field)
		}
		operator, ok := queryOperators[strings.ToUpper(strings.TrimSpace(filter.Operator))]
		if !ok {
			return model.ConferenceQuery{}, apperrors.BadRequest("Filter contains invalid operator: %v", filter.Operator)
		}

		var value interface{} = filter.Value
		if field == model.FieldMonth || field == model.FieldMaxAttendees {
			number, err := strconv.Atoi(strings.TrimSpace(filter.Value))
			if err != nil {
				return model.ConferenceQuery{}, apperrors.BadRequest("Filter value for %v must be an integer: %v", filter.Field, filter.Value)
			}
			value = number
		}

		if operator != model.OpEQ {
			if query.InequalityField != "" && query.InequalityField != field {
				return model.ConferenceQuery{}, apperrors.BadRequest("Inequality filter is allowed on only one field.")
			}
			query.InequalityField = field
		}
		query.Filters = append(query.Filters, model.ConferenceFilter{Field: field, Operator: operator, Value: value})
	}
	return query, nil
}

func applyDates(conf *model.Conference, startDate string, endDate string) error {
	if startDate != "" {
		start, err := model.ParseDate(startDate)
		if err != nil {
			return apperrors.BadRequest("Conference 'startDate' field is invalid: %v", err)
		}
		conf.StartDate = &start
		conf.Month = int(start.Month())
	}
	if endDate != "" {
		end, err := model.ParseDate(endDate)
		if err != nil {
			return apperrors.BadRequest("Conference 'endDate' field is invalid: %v", err)
		}
		conf.EndDate = &end
	}
	return nil
}

func conferenceToForm(conf model.Conference, displayName string) model.ConferenceForm {
	return model.ConferenceForm{
		Name:                 conf.Name,
		Description:          conf.Description,
		OrganizerUserId:      conf.OrganizerUserId,
		Topics:               conf.Topics,
		City:                 conf.City,
		StartDate:            model.FormatDate(conf.StartDate),
		Month:                conf.Month,
		MaxAttendees:         conf.MaxAttendees,
		SeatsAvailable:       conf.SeatsAvailable,
		EndDate:              model.FormatDate(conf.EndDate),
		WebsafeKey:           keys.Encode(keys.KindConference, conf.Id),
		OrganizerDisplayName: displayName,
	}
}

func conferenceSummary(conf model.Conference) string {
	lines := []string{
		fmt.Sprintf("Name: %v", conf.Name),
		fmt.Sprintf("City: %v", conf.City),
		fmt.Sprintf("Topics: %v", strings.Join(conf.Topics, ", ")),
		fmt.Sprintf("Max attendees: %v", conf.MaxAttendees),
	}
	if conf.StartDate != nil {
		lines = append(lines, "Starts: "+model.FormatDate(conf.StartDate))
	}
	if conf.EndDate != nil {
		lines = append(lines, "Ends: "+model.FormatDate(conf.EndDate))
	}
	if conf.Description != "" {
		lines = append(lines, "", conf.Description)
	}
	return strings.Join(lines, "\r\n")
}
