package calendar

import "github.com/google/uuid"

type CalendarTask struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type CalendarDay struct {
	Date        string         `json:"date"` // YYYY-MM-DD
	HasActivity bool           `json:"hasActivity"`
	Tasks       []CalendarTask `json:"tasks"`
}

type CalendarResponse struct {
	CalendarData []CalendarDay `json:"calendarData"`
}
