package model

import "strings"

type TeeShirtSize string

const TeeShirtNotSpecified TeeShirtSize = "NOT_SPECIFIED"

var teeShirtSizes = []TeeShirtSize{
	TeeShirtNotSpecified,
	"XS_M", "XS_W",
	"S_M", "S_W",
	"M_M", "M_W",
	"L_M", "L_W",
	"XL_M", "XL_W",
	"XXL_M", "XXL_W",
	"XXXL_M", "XXXL_W",
}

func ParseTeeShirtSize(name string) (TeeShirtSize, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, size := range teeShirtSizes {
		if string(size) == name {
			return size, true
		}
	}
	return "", false
}

type Profile struct {
	UserId                 string       `json:"_id" bson:"_id"`
	DisplayName            string       `json:"displayName" bson:"displayName"`
	MainEmail              string       `json:"mainEmail" bson:"mainEmail"`
	TeeShirtSize           TeeShirtSize `json:"teeShirtSize" bson:"teeShirtSize"`
	ConferenceKeysToAttend []string     `json:"conferenceKeysToAttend" bson:"conferenceKeysToAttend"`
	SessionWishlist        []string     `json:"sessionWishlist" bson:"sessionWishlist"`
}

func (p Profile) IsAttending(conferenceId string) bool {
	return containsString(p.ConferenceKeysToAttend, conferenceId)
}

func (p Profile) HasInWishlist(sessionId string) bool {
	return containsString(p.SessionWishlist, sessionId)
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// Identity is the authenticated caller, resolved from the request token.
type Identity struct {
	UserId   string
	Email    string
	Nickname string
	Role     string
}

func (i Identity) IsAuthenticated() bool {
	return strings.TrimSpace(i.UserId) != ""
}

func (i Identity) IsAdmin() bool {
	return i.Role == ROLE_ADMIN
}
