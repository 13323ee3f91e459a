package engine

import (
	"time"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

// QuestDef describes a quest before it is started. Within is the time
// allowed from the start; zero means no deadline.
type QuestDef struct {
	Title       string
	Description string
	Type        store.QuestType
	Target      int
	Reward      store.QuestReward
	Within      time.Duration
	Action      Action
}

// DefaultQuests are the starter quests seeded into an empty document.
func DefaultQuests() []QuestDef {
	return []QuestDef{
		{
			Title:       "First experiment",
			Description: "Start one new experiment within 48 hours",
			Type:        store.QuestTimed,
			Target:      1,
			Reward:      store.QuestReward{XP: 100},
			Within:      48 * time.Hour,
			Action:      ActionCreateExperiment,
		},
		{
			Title:       "Path to launch",
			Description: "Take a project to launched within a week",
			Type:        store.QuestTimed,
			Target:      1,
			Reward:      store.QuestReward{XP: 200, XPBoost: 0.1},
			Within:      7 * 24 * time.Hour,
			Action:      ActionProjectLaunched,
		},
		{
			Title:       "Idea generator",
			Description: "Create 3 new projects",
			Type:        store.QuestMilestone,
			Target:      3,
			Reward:      store.QuestReward{XP: 150},
			Action:      ActionCreateProject,
		},
	}
}

// InitializeDefaultQuests seeds DefaultQuests when the document has no
// quests at all. It returns the quests it created.
func (e *Engine) InitializeDefaultQuests() []*store.Quest {
	if len(e.store.Document().Quests) > 0 {
		return nil
	}
	var created []*store.Quest
	for _, def := range DefaultQuests() {
		created = append(created, e.StartQuest(def))
	}
	return created
}

// StartQuest creates an active quest from def and logs quest_started.
func (e *Engine) StartQuest(def QuestDef) *store.Quest {
	in := store.QuestInput{
		Title:          def.Title,
		Description:    def.Description,
		Type:           def.Type,
		TargetProgress: def.Target,
		Reward:         def.Reward,
		Conditions:     store.QuestConditions{Action: string(def.Action), Count: def.Target},
	}
	if def.Within > 0 {
		deadline := e.store.Now().Add(def.Within)
		in.Deadline = &deadline
	}
	q := e.store.CreateQuest(in)
	e.store.LogEvent(store.Event{
		Type:     store.EventQuestStarted,
		Source:   q.ID,
		Metadata: store.QuestMeta{QuestTitle: q.Title},
	})
	e.log.Debug("quest started", "id", q.ID, "title", q.Title)
	return q
}

// AbandonQuest fails an active quest.
func (e *Engine) AbandonQuest(id string) error {
	q, err := e.store.FailQuest(id)
	if err != nil {
		return err
	}
	e.store.LogEvent(store.Event{
		Type:     store.EventQuestFailed,
		Source:   q.ID,
		Metadata: store.QuestMeta{QuestTitle: q.Title},
	})
	e.log.Info("quest abandoned", "id", q.ID)
	return nil
}

// UpdateQuestsProgress walks every active quest: overdue quests expire,
// matching quests advance by one, and any quest at or past its target is
// completed and pays out. Completion is checked even when the action did
// not match.
func (e *Engine) UpdateQuestsProgress(a Action, p Payload) {
	now := e.store.Now()
	for _, q := range e.store.Document().Quests {
		if q.Status != store.QuestActive {
			continue
		}
		if q.Deadline != nil && now.After(*q.Deadline) {
			e.expireQuest(q)
			continue
		}
		if a.matches(q.Conditions.Action, p) {
			if _, err := e.store.AdvanceQuest(q.ID); err != nil {
				e.log.Warn("advance quest", "id", q.ID, "err", err)
				continue
			}
			e.store.LogEvent(store.Event{
				Type:   store.EventQuestProgress,
				Value:  float64(q.Progress),
				Source: q.ID,
				Metadata: store.QuestProgressMeta{
					QuestTitle: q.Title,
					Progress:   q.Progress,
					Target:     q.TargetProgress,
				},
			})
		}
		if q.Progress >= q.TargetProgress {
			e.completeQuest(q)
		}
	}
}

func (e *Engine) expireQuest(q *store.Quest) {
	if _, err := e.store.ExpireQuest(q.ID); err != nil {
		e.log.Warn("expire quest", "id", q.ID, "err", err)
		return
	}
	e.store.LogEvent(store.Event{
		Type:     store.EventQuestExpired,
		Source:   q.ID,
		Metadata: store.QuestMeta{QuestTitle: q.Title},
	})
	e.log.Info("quest expired", "id", q.ID, "title", q.Title)
}

func (e *Engine) completeQuest(q *store.Quest) {
	if _, err := e.store.CompleteQuest(q.ID); err != nil {
		e.log.Warn("complete quest", "id", q.ID, "err", err)
		return
	}
	e.store.LogEvent(store.Event{
		Type:     store.EventQuestCompleted,
		Value:    float64(q.Reward.XP),
		Source:   q.ID,
		Metadata: store.QuestMeta{QuestTitle: q.Title},
	})
	e.log.Info("quest completed", "id", q.ID, "title", q.Title)

	e.GainXP(q.Reward.XP, "quest:"+q.ID)
	if q.Reward.XPBoost > 0 {
		prof := e.store.Profile()
		if prof.XPBoost <= 0 {
			prof.XPBoost = 1.0
		}
		prof.XPBoost += q.Reward.XPBoost
		e.store.LogEvent(store.Event{
			Type:     store.EventXPBoostGained,
			Value:    q.Reward.XPBoost,
			Source:   q.ID,
			Metadata: store.XPBoostMeta{NewBoost: prof.XPBoost},
		})
		e.log.Info("xp boost gained", "boost", prof.XPBoost)
	}
}
