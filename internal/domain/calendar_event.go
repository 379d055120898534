package domain

import (
	"fmt"
	"strings"
)

// CalendarEvent is a dated community event. EventDate is YYYY-MM-DD and sorts lexicographically.
type CalendarEvent struct {
	EventID     string  `json:"eventId"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	EventDate   *string `json:"eventDate"`
	Time        *string `json:"time"`
	Location    *string `json:"location"`
	CreatedBy   string  `json:"createdBy"`
	CreatedAt   int64   `json:"createdAt"`
}

// CalendarEventInput carries the permitted fields of a new event.
type CalendarEventInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	EventDate   *string `json:"eventDate"`
	Time        *string `json:"time"`
	Location    *string `json:"location"`
	Author      *string `json:"author"`
}

// NewCalendarEvent builds an event stamped at createdAt.
func NewCalendarEvent(in CalendarEventInput, caller string, createdAt int64) *CalendarEvent {
	return &CalendarEvent{
		EventID:     NewID(),
		Title:       in.Title,
		Description: in.Description,
		EventDate:   in.EventDate,
		Time:        in.Time,
		Location:    in.Location,
		CreatedBy:   Attribution(in.Author, caller, DefaultAdminAuthor),
		CreatedAt:   createdAt,
	}
}

// DateKey returns the event date, or "" when unset.
func (e *CalendarEvent) DateKey() string {
	if e.EventDate == nil {
		return ""
	}
	return *e.EventDate
}

// InMonth reports whether the event falls in the given year and month.
// The month is zero padded, so "3" and "03" are equivalent.
func (e *CalendarEvent) InMonth(year, month string) bool {
	if len(month) == 1 {
		month = "0" + month
	}
	return strings.HasPrefix(e.DateKey(), fmt.Sprintf("%s-%s", year, month))
}
