package ui

import (
	"fmt"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

// EventText renders one log entry as a short, icon-prefixed line.
func EventText(ev store.Event) string {
	switch ev.Type {
	case store.EventXPGain:
		s := fmt.Sprintf("%s +%.0f XP from %s", IconSparkle, ev.Value, ev.Source)
		if m, ok := ev.XPGain(); ok && m.Boost != 1 {
			s += Muted.Render(fmt.Sprintf(" (%d × %.2f)", m.OriginalAmount, m.Boost))
		}
		return s
	case store.EventLevelUp:
		return fmt.Sprintf("%s %s reached level %.0f", IconBolt, BadgeLevelUp, ev.Value)
	case store.EventAchievementUnlocked:
		name := ev.Source
		if m, ok := ev.Metadata.(store.AchievementMeta); ok && m.Name != "" {
			name = m.Name
		}
		return fmt.Sprintf("%s %s", IconTrophy, Gold.Render(name))
	case store.EventQuestProgress:
		if m, ok := ev.QuestProgress(); ok {
			return fmt.Sprintf("%s %s %d/%d", IconTarget, m.QuestTitle, m.Progress, m.Target)
		}
	case store.EventQuestStarted, store.EventQuestCompleted, store.EventQuestExpired, store.EventQuestFailed:
		title := ev.Source
		if m, ok := ev.Quest(); ok {
			title = m.QuestTitle
		}
		return fmt.Sprintf("%s %s %s", IconTarget, title, questVerb(ev.Type))
	case store.EventXPBoostGained:
		if m, ok := ev.Metadata.(store.XPBoostMeta); ok {
			return fmt.Sprintf("%s boost +%.2f, now ×%.2f", IconRocket, ev.Value, m.NewBoost)
		}
	case store.EventActivity:
		return Muted.Render(IconFire + " activity")
	case store.EventSystemInit:
		return Muted.Render(IconLab + " lab created")
	}
	return Muted.Render(fmt.Sprintf("%s %s %v", string(ev.Type), ev.Source, ev.Value))
}

func questVerb(t store.EventType) string {
	switch t {
	case store.EventQuestStarted:
		return H2.Render("started")
	case store.EventQuestCompleted:
		return Good.Render("completed")
	case store.EventQuestExpired:
		return Warn.Render("expired")
	default:
		return Bad.Render("failed")
	}
}
