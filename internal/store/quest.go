package store

import (
	"fmt"
	"time"
)

type Quest struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Type           QuestType       `json:"type"`
	Status         QuestStatus     `json:"status"`
	Progress       int             `json:"progress"`
	TargetProgress int             `json:"targetProgress"`
	Reward         QuestReward     `json:"reward"`
	Deadline       *time.Time      `json:"deadline"`
	Conditions     QuestConditions `json:"conditions"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
}

type QuestReward struct {
	XP      int     `json:"xp"`
	XPBoost float64 `json:"xpBoost"`
}

// QuestConditions names the action that advances the quest. Count is
// informational; TargetProgress decides completion.
type QuestConditions struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

type QuestInput struct {
	Title          string
	Description    string
	Type           QuestType
	TargetProgress int
	Reward         QuestReward
	Deadline       *time.Time
	Conditions     QuestConditions
}

func (s *Store) Quest(id string) (*Quest, bool) {
	for _, q := range s.doc.Quests {
		if q.ID == id {
			return q, true
		}
	}
	return nil, false
}

// ActiveQuests returns the quests that can still progress.
func (s *Store) ActiveQuests() []*Quest {
	var out []*Quest
	for _, q := range s.doc.Quests {
		if q.Status == QuestActive {
			out = append(out, q)
		}
	}
	return out
}

func (s *Store) CreateQuest(in QuestInput) *Quest {
	now := s.now()
	typ := in.Type
	if typ == "" {
		typ = QuestGeneric
	}
	target := in.TargetProgress
	if target < 1 {
		target = 1
	}
	reward := in.Reward
	if reward.XP < 0 {
		reward.XP = 0
	}
	if reward.XPBoost < 0 {
		reward.XPBoost = 0
	}

	q := &Quest{
		ID:             s.newID("q"),
		Title:          in.Title,
		Description:    in.Description,
		Type:           typ,
		Status:         QuestActive,
		TargetProgress: target,
		Reward:         reward,
		Deadline:       in.Deadline,
		Conditions:     in.Conditions,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.doc.Quests = append(s.doc.Quests, q)
	return q
}

func (s *Store) activeQuest(id string) (*Quest, error) {
	q, ok := s.Quest(id)
	if !ok {
		return nil, notFound("quest", id)
	}
	if q.Status.Terminal() {
		return q, fmt.Errorf("quest %s is %s: %w", id, q.Status, ErrQuestClosed)
	}
	return q, nil
}

// AdvanceQuest adds one step of progress to an active quest.
func (s *Store) AdvanceQuest(id string) (*Quest, error) {
	q, err := s.activeQuest(id)
	if err != nil {
		return q, err
	}
	q.Progress++
	q.UpdatedAt = s.now()
	return q, nil
}

func (s *Store) CompleteQuest(id string) (*Quest, error) {
	q, err := s.activeQuest(id)
	if err != nil {
		return q, err
	}
	now := s.now()
	q.Status = QuestCompleted
	q.CompletedAt = &now
	q.UpdatedAt = now
	return q, nil
}

func (s *Store) ExpireQuest(id string) (*Quest, error) {
	return s.closeQuest(id, QuestExpired)
}

func (s *Store) FailQuest(id string) (*Quest, error) {
	return s.closeQuest(id, QuestFailed)
}

func (s *Store) closeQuest(id string, status QuestStatus) (*Quest, error) {
	q, err := s.activeQuest(id)
	if err != nil {
		return q, err
	}
	q.Status = status
	q.UpdatedAt = s.now()
	return q, nil
}

func (s *Store) Achievement(id string) (*Achievement, bool) {
	for _, a := range s.doc.Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// EarnAchievement stamps earnedAt and records the id on the profile.
func (s *Store) EarnAchievement(id string) (*Achievement, error) {
	a, ok := s.Achievement(id)
	if !ok {
		return nil, notFound("achievement", id)
	}
	if a.Earned() {
		return a, fmt.Errorf("achievement %s: %w", id, ErrAlreadyEarned)
	}
	now := s.now()
	a.EarnedAt = &now
	if !s.doc.Profile.HasAchievement(id) {
		s.doc.Profile.Achievements = append(s.doc.Profile.Achievements, id)
	}
	return a, nil
}
