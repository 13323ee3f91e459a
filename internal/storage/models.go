package storage

import "time"

// MainDocumentKey is the row holding the lab document.
const MainDocumentKey = "main"

// HistoryEntry is one awarded action. SourceID names the entity the action
// touched, when there is one. Amount is the money the action recorded.
type HistoryEntry struct {
	ID         int64
	Action     string
	SourceID   string
	OccurredAt time.Time
	XPGained   int
	LevelAfter int
	Amount     float64
}

// ActionCount is the number of times an action was awarded.
type ActionCount struct {
	Action string
	Count  int
	XP     int
}

// DaySum totals the history of one UTC day, formatted as YYYY-MM-DD.
type DaySum struct {
	Day    string
	XP     int
	Amount float64
}
