package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// MaxEventLog is the number of most recent events kept in the document.
const MaxEventLog = 100

type EventType string

const (
	EventSystemInit          EventType = "system_init"
	EventActivity            EventType = "activity"
	EventXPGain              EventType = "xp_gain"
	EventLevelUp             EventType = "level_up"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventQuestStarted        EventType = "quest_started"
	EventQuestProgress       EventType = "quest_progress"
	EventQuestCompleted      EventType = "quest_completed"
	EventQuestExpired        EventType = "quest_expired"
	EventQuestFailed         EventType = "quest_failed"
	EventXPBoostGained       EventType = "xp_boost_gained"
)

// Metadata is the typed payload attached to an event. Each event type has
// at most one metadata variant; see metadataFor.
type Metadata interface {
	isEventMetadata()
}

type XPGainMeta struct {
	OriginalAmount int     `json:"originalAmount"`
	Boost          float64 `json:"boost"`
}

type AchievementMeta struct {
	Name string `json:"name"`
}

type QuestMeta struct {
	QuestTitle string `json:"questTitle"`
}

type QuestProgressMeta struct {
	QuestTitle string `json:"questTitle"`
	Progress   int    `json:"progress"`
	Target     int    `json:"target"`
}

type XPBoostMeta struct {
	NewBoost float64 `json:"newBoost"`
}

// RawMeta keeps metadata of event types this build does not know about,
// so documents written by other versions survive a load/save cycle.
type RawMeta json.RawMessage

func (XPGainMeta) isEventMetadata()        {}
func (AchievementMeta) isEventMetadata()   {}
func (QuestMeta) isEventMetadata()         {}
func (QuestProgressMeta) isEventMetadata() {}
func (XPBoostMeta) isEventMetadata()       {}
func (RawMeta) isEventMetadata()           {}

// metadataFor returns an empty variant for decoding t, or nil when t carries none.
func metadataFor(t EventType) Metadata {
	switch t {
	case EventXPGain:
		return &XPGainMeta{}
	case EventAchievementUnlocked:
		return &AchievementMeta{}
	case EventQuestStarted, EventQuestCompleted, EventQuestExpired, EventQuestFailed:
		return &QuestMeta{}
	case EventQuestProgress:
		return &QuestProgressMeta{}
	case EventXPBoostGained:
		return &XPBoostMeta{}
	case EventSystemInit, EventActivity, EventLevelUp:
		return nil
	default:
		return RawMeta(nil)
	}
}

// Event is one entry of the bounded journal.
type Event struct {
	ID        string
	Timestamp time.Time
	Type      EventType
	Value     float64
	Source    string
	Metadata  Metadata
}

type eventJSON struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      EventType       `json:"type"`
	Value     float64         `json:"value"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	out := eventJSON{ID: e.ID, Timestamp: e.Timestamp, Type: e.Type, Value: e.Value, Source: e.Source}
	switch m := e.Metadata.(type) {
	case nil:
	case RawMeta:
		if len(m) > 0 {
			out.Metadata = json.RawMessage(m)
		}
	default:
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("marshal %s metadata: %w", e.Type, err)
		}
		out.Metadata = raw
	}
	return json.Marshal(out)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var in eventJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Event{ID: in.ID, Timestamp: in.Timestamp, Type: in.Type, Value: in.Value, Source: in.Source}
	if len(in.Metadata) == 0 || string(in.Metadata) == "null" {
		return nil
	}

	switch m := metadataFor(in.Type).(type) {
	case nil:
	case RawMeta:
		e.Metadata = RawMeta(append([]byte(nil), in.Metadata...))
	case *XPGainMeta:
		if err := json.Unmarshal(in.Metadata, m); err != nil {
			return fmt.Errorf("decode %s metadata: %w", in.Type, err)
		}
		e.Metadata = *m
	case *AchievementMeta:
		if err := json.Unmarshal(in.Metadata, m); err != nil {
			return fmt.Errorf("decode %s metadata: %w", in.Type, err)
		}
		e.Metadata = *m
	case *QuestMeta:
		if err := json.Unmarshal(in.Metadata, m); err != nil {
			return fmt.Errorf("decode %s metadata: %w", in.Type, err)
		}
		e.Metadata = *m
	case *QuestProgressMeta:
		if err := json.Unmarshal(in.Metadata, m); err != nil {
			return fmt.Errorf("decode %s metadata: %w", in.Type, err)
		}
		e.Metadata = *m
	case *XPBoostMeta:
		if err := json.Unmarshal(in.Metadata, m); err != nil {
			return fmt.Errorf("decode %s metadata: %w", in.Type, err)
		}
		e.Metadata = *m
	}
	return nil
}

// XPGain returns the xp_gain payload, if e carries one.
func (e Event) XPGain() (XPGainMeta, bool) {
	m, ok := e.Metadata.(XPGainMeta)
	return m, ok
}

// QuestProgress returns the quest_progress payload, if e carries one.
func (e Event) QuestProgress() (QuestProgressMeta, bool) {
	m, ok := e.Metadata.(QuestProgressMeta)
	return m, ok
}

// Quest returns the quest title payload of quest lifecycle events.
func (e Event) Quest() (QuestMeta, bool) {
	m, ok := e.Metadata.(QuestMeta)
	return m, ok
}

// appendEvent appends ev and drops the oldest entries beyond MaxEventLog.
func appendEvent(doc *Document, ev Event) {
	doc.EventLog = append(doc.EventLog, ev)
	if n := len(doc.EventLog); n > MaxEventLog {
		kept := make([]Event, MaxEventLog)
		copy(kept, doc.EventLog[n-MaxEventLog:])
		doc.EventLog = kept
	}
}
