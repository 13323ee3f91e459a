package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every mutator that is handed an unknown id.
	ErrNotFound = errors.New("not found")

	// ErrQuestClosed is returned when a terminal quest would be mutated.
	ErrQuestClosed = errors.New("quest is closed")

	// ErrAlreadyEarned is returned when an earned achievement is stamped again.
	ErrAlreadyEarned = errors.New("achievement already earned")

	ErrInvalidInsightKind = errors.New("invalid insight kind")
)

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}
