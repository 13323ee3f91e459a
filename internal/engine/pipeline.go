package engine

import "github.com/mtimit/gamify-product-lab/internal/store"

// Stage is one named step of the action pipeline.
type Stage struct {
	Name string
	Run  func(e *Engine, a Action, p Payload)
}

// Stage names of DefaultPipeline.
const (
	StageRegisterActivity = "register_activity"
	StageActionXP         = "action_xp"
	StageAchievements     = "achievements"
	StageQuests           = "quests"
)

// DefaultPipeline runs activity, XP, achievements and quests in that
// order. Achievements see the state already updated by the action, and
// quest rewards land before AwardXPForAction returns.
func DefaultPipeline() []Stage {
	return []Stage{
		{Name: StageRegisterActivity, Run: func(e *Engine, _ Action, _ Payload) { e.RegisterActivity() }},
		{Name: StageActionXP, Run: (*Engine).applyActionXP},
		{Name: StageAchievements, Run: func(e *Engine, _ Action, _ Payload) { e.RecomputeAchievements() }},
		{Name: StageQuests, Run: (*Engine).UpdateQuestsProgress},
	}
}

func (e *Engine) applyActionXP(a Action, p Payload) {
	e.GainXP(XPFor(a, p), a.source())
}

// Outcome lists the events produced by one AwardXPForAction call.
type Outcome struct {
	Action Action
	Events []store.Event
}

// AwardXPForAction runs every pipeline stage for a. Unknown actions earn
// no XP but still run the remaining stages.
func (e *Engine) AwardXPForAction(a Action, p Payload) Outcome {
	out := Outcome{Action: a}
	unsubscribe := e.store.Subscribe(func(ev store.Event) {
		out.Events = append(out.Events, ev)
	})
	for _, st := range e.pipeline {
		e.log.Debug("pipeline stage", "stage", st.Name, "action", string(a))
		st.Run(e, a, p)
	}
	unsubscribe()
	return out
}

// XPGained sums the boosted XP of every xp_gain event.
func (o Outcome) XPGained() int {
	total := 0
	for _, ev := range o.Events {
		if ev.Type == store.EventXPGain {
			total += int(ev.Value)
		}
	}
	return total
}

// LevelUp returns the level reached, if the call levelled up.
func (o Outcome) LevelUp() (int, bool) {
	level, ok := 0, false
	for _, ev := range o.Events {
		if ev.Type == store.EventLevelUp {
			level, ok = int(ev.Value), true
		}
	}
	return level, ok
}

// Unlocked returns the names of achievements unlocked during the call.
func (o Outcome) Unlocked() []string {
	var names []string
	for _, ev := range o.Events {
		if ev.Type != store.EventAchievementUnlocked {
			continue
		}
		if m, ok := ev.Metadata.(store.AchievementMeta); ok && m.Name != "" {
			names = append(names, m.Name)
		} else {
			names = append(names, ev.Source)
		}
	}
	return names
}

// CompletedQuests returns the titles of quests completed during the call.
func (o Outcome) CompletedQuests() []string {
	var titles []string
	for _, ev := range o.Events {
		if ev.Type != store.EventQuestCompleted {
			continue
		}
		if m, ok := ev.Quest(); ok {
			titles = append(titles, m.QuestTitle)
		}
	}
	return titles
}
