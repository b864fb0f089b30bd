package model

// Request and response bodies of the HTTP API. Entity references are always
// exposed as websafe keys, never as raw ids.

type ConferenceForm struct {
	Name                 string   `json:"name" validate:"required"`
	Description          string   `json:"description"`
	OrganizerUserId      string   `json:"organizerUserId"`
	Topics               []string `json:"topics"`
	City                 string   `json:"city"`
	StartDate            string   `json:"startDate"`
	Month                int      `json:"month"`
	MaxAttendees         int      `json:"maxAttendees" validate:"gte=0"`
	SeatsAvailable       int      `json:"seatsAvailable"`
	EndDate              string   `json:"endDate"`
	WebsafeKey           string   `json:"websafeKey"`
	OrganizerDisplayName string   `json:"organizerDisplayName"`
}

type ConferenceForms struct {
	Items []ConferenceForm `json:"items"`
}

// ConferenceUpdateForm carries a partial update: nil fields are left unchanged.
type ConferenceUpdateForm struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Topics       []string `json:"topics"`
	City         *string  `json:"city"`
	StartDate    *string  `json:"startDate"`
	EndDate      *string  `json:"endDate"`
	MaxAttendees *int     `json:"maxAttendees" validate:"omitempty,gte=0"`
}

type ConferenceQueryForm struct {
	Field    string `json:"field" validate:"required"`
	Operator string `json:"operator" validate:"required"`
	Value    string `json:"value"`
}

type ConferenceQueryForms struct {
	Filters []ConferenceQueryForm `json:"filters" validate:"dive"`
}

type SessionForm struct {
	Name                 string   `json:"name" validate:"required"`
	Highlights           string   `json:"highlights"`
	SpeakerKeys          []string `json:"speakerKeys"`
	Duration             int      `json:"duration" validate:"gte=0"`
	TypeOfSession        string   `json:"typeOfSession"`
	Date                 string   `json:"date" validate:"required"`
	StartTime            int      `json:"startTime" validate:"required"`
	WebsafeKey           string   `json:"websafeKey"`
	WebsafeConferenceKey string   `json:"websafeConferenceKey"`
}

type SessionForms struct {
	Items []SessionForm `json:"items"`
}

type SpeakerForm struct {
	Name       string `json:"name" validate:"required"`
	Bio        string `json:"bio"`
	WebsafeKey string `json:"websafeKey"`
}

type ProfileMiniForm struct {
	DisplayName  string `json:"displayName"`
	TeeShirtSize string `json:"teeShirtSize"`
}

type ProfileForm struct {
	DisplayName            string   `json:"displayName"`
	MainEmail              string   `json:"mainEmail"`
	TeeShirtSize           string   `json:"teeShirtSize"`
	ConferenceKeysToAttend []string `json:"conferenceKeysToAttend"`
	SessionWishlist        []string `json:"sessionWishlist"`
}

type WishlistForm struct {
	WebsafeSessionKey string `json:"websafeSessionKey" validate:"required"`
}

type Credentials struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type BooleanMessage struct {
	Data bool `json:"data"`
}

type StringMessage struct {
	Data string `json:"data"`
}
