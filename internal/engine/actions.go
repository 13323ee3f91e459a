package engine

import (
	"math"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

// Action names a user intent that earns XP and drives quests.
type Action string

const (
	ActionCreateProject       Action = "create_project"
	ActionUpdateProjectStatus Action = "update_project_status"
	ActionCompleteExperiment  Action = "complete_experiment"
	ActionAddRevenue          Action = "add_revenue"
	ActionAddNote             Action = "add_note"
	ActionCreateDistribution  Action = "create_distribution_experiment"
	ActionUpdateDistribution  Action = "update_distribution_experiment"
	ActionCreateExperiment    Action = "create_experiment"

	// ActionProjectLaunched is only used as a quest condition; see matches.
	ActionProjectLaunched Action = "project_launched"
)

const (
	revenueXPSource     = "revenue"
	revenueDollarsPerXP = 10.0
)

var actionXP = map[Action]int{
	ActionCreateProject:       10,
	ActionUpdateProjectStatus: 20,
	ActionCompleteExperiment:  50,
	ActionAddNote:             5,
	ActionCreateDistribution:  30,
}

// Payload carries the action-specific inputs. Only the fields relevant to
// the action are read.
type Payload struct {
	Amount    float64
	NewStatus store.ProjectStatus
}

// BaseXP returns the flat table value of a, or 0 for actions that are not
// in the table.
func BaseXP(a Action) int {
	return actionXP[a]
}

// XPFor returns the XP a earns for payload p before the boost is applied.
// Revenue earns one XP per ten currency units, and only when positive.
func XPFor(a Action, p Payload) int {
	if a == ActionAddRevenue {
		if p.Amount <= 0 {
			return 0
		}
		return int(math.Round(p.Amount / revenueDollarsPerXP))
	}
	return BaseXP(a)
}

func (a Action) source() string {
	if a == ActionAddRevenue {
		return revenueXPSource
	}
	return string(a)
}

// matches reports whether a counts toward a quest conditioned on want.
// project_launched is satisfied by a status change to launched.
func (a Action) matches(want string, p Payload) bool {
	if string(a) == want {
		return true
	}
	return want == string(ActionProjectLaunched) &&
		a == ActionUpdateProjectStatus &&
		p.NewStatus == store.StatusLaunched
}
