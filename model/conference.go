package model

import "time"

type Conference struct {
	Id              string     `json:"_id" bson:"_id"`
	Name            string     `json:"name" bson:"name"`
	Description     string     `json:"description" bson:"description"`
	OrganizerUserId string     `json:"organizerUserId" bson:"organizerUserId"`
	Topics          []string   `json:"topics" bson:"topics"`
	City            string     `json:"city" bson:"city"`
	StartDate       *time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Month           int        `json:"month" bson:"month"`
	MaxAttendees    int        `json:"maxAttendees" bson:"maxAttendees"`
	SeatsAvailable  int        `json:"seatsAvailable" bson:"seatsAvailable"`
}

// Conference fields that can be used in conference queries.
const (
	FieldCity         = "city"
	FieldTopics       = "topics"
	FieldMonth        = "month"
	FieldMaxAttendees = "maxAttendees"
	FieldName         = "name"
	FieldSeats        = "seatsAvailable"
)

// Filter operators, stored in their comparison form.
const (
	OpEQ   = "="
	OpGT   = ">"
	OpGTEQ = ">="
	OpLT   = "<"
	OpLTEQ = "<="
	OpNE   = "!="
)

// ConferenceFilter is a single validated query predicate. Value is a string
// for city and topics and an int for month and maxAttendees.
type ConferenceFilter struct {
	Field    string
	Operator string
	Value    interface{}
}

// ConferenceQuery is an AND of filters, ordered by InequalityField (if set)
// and then by name.
type ConferenceQuery struct {
	Filters         []ConferenceFilter
	InequalityField string
}
