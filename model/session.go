package model

import (
	"strings"
	"time"
)

type SessionType string

const (
	SessionNotSpecified SessionType = "NOT_SPECIFIED"
	SessionLecture      SessionType = "LECTURE"
	SessionKeynote      SessionType = "KEYNOTE"
	SessionWorkshop     SessionType = "WORKSHOP"
	SessionPanel        SessionType = "PANEL"
	SessionDemo         SessionType = "DEMO"
)

var sessionTypes = []SessionType{
	SessionNotSpecified,
	SessionLecture,
	SessionKeynote,
	SessionWorkshop,
	SessionPanel,
	SessionDemo,
}

// ParseSessionType accepts an enum name in any letter case.
func ParseSessionType(name string) (SessionType, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, sessionType := range sessionTypes {
		if string(sessionType) == name {
			return sessionType, true
		}
	}
	return "", false
}

type Session struct {
	Id            string      `json:"_id" bson:"_id"`
	ConferenceId  string      `json:"conferenceId" bson:"conferenceId"`
	Name          string      `json:"name" bson:"name"`
	Highlights    string      `json:"highlights" bson:"highlights"`
	SpeakerKeys   []string    `json:"speakerKeys" bson:"speakerKeys"`
	Duration      int         `json:"duration" bson:"duration"`
	TypeOfSession SessionType `json:"typeOfSession" bson:"typeOfSession"`
	Date          time.Time   `json:"date" bson:"date"`
	StartTime     Clock       `json:"startTime" bson:"startTime"`
}

func (s Session) HasSpeaker(speakerId string) bool {
	for _, key := range s.SpeakerKeys {
		if key == speakerId {
			return true
		}
	}
	return false
}

// SessionQuery selects sessions. Zero-valued fields do not filter; ranges
// are inclusive on both ends.
type SessionQuery struct {
	ConferenceId  string
	SpeakerIds    []string
	TypeOfSession SessionType
	NotType       SessionType
	DateFrom      *time.Time
	DateTo        *time.Time
	TimeFrom      *Clock
	TimeTo        *Clock
}
