package store

import (
	"math"
	"time"
)

// DateLayout is the day-granularity format of Profile.LastActivityDate.
const DateLayout = "2006-01-02"

// Document is the whole persisted state. It is owned by the host
// application and handed to the engines by reference.
type Document struct {
	Version                 string                    `json:"version"`
	Profile                 Profile                   `json:"gameProfile"`
	Projects                []*Project                `json:"projects"`
	Experiments             []*Experiment             `json:"experiments"`
	DistributionExperiments []*DistributionExperiment `json:"distributionExperiments"`
	Quests                  []*Quest                  `json:"quests"`
	Achievements            []*Achievement            `json:"achievements"`
	EventLog                []Event                   `json:"eventLog"`
}

// Profile is the single player of the lab. Only the progression engine
// mutates it, apart from the revenue accumulator.
type Profile struct {
	ID               string   `json:"id"`
	Level            int      `json:"level"`
	XP               int      `json:"xp"`
	XPToNextLevel    int      `json:"xpToNextLevel"`
	StreakDays       int      `json:"streakDays"`
	LastActivityDate string   `json:"lastActivityDate,omitempty"`
	TotalRevenue     float64  `json:"totalRevenue"`
	XPBoost          float64  `json:"xpBoost"`
	Achievements     []string `json:"achievements"`
}

// HasAchievement reports whether id is in the earned set.
func (p *Profile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// LevelThreshold is the XP needed to leave level: round(100 * level^1.3).
func LevelThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Round(100 * math.Pow(float64(level), 1.3)))
}

type Achievement struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	ConditionType  ConditionType `json:"conditionType"`
	ThresholdValue float64       `json:"thresholdValue"`
	EarnedAt       *time.Time    `json:"earnedAt"`
}

func (a *Achievement) Earned() bool { return a.EarnedAt != nil }

func coreAchievements() []*Achievement {
	return []*Achievement{
		{ID: "first-dollar", Name: "First Shot", Description: "Earned the first dollar of revenue", ConditionType: ConditionRevenueTotal, ThresholdValue: 1},
		{ID: "five-ideas", Name: "Idea Marathon", Description: "Created at least 5 projects", ConditionType: ConditionProjectsCount, ThresholdValue: 5},
		{ID: "first-launch", Name: "First Release", Description: "Moved a project to launched", ConditionType: ConditionProjectLaunched, ThresholdValue: 1},
		{ID: "experimenter", Name: "Experimenter", Description: "Completed at least 3 experiments", ConditionType: ConditionExperimentsCompleted, ThresholdValue: 3},
	}
}

func growthAchievements() []*Achievement {
	return []*Achievement{
		{ID: "aso-explorer", Name: "ASO Explorer", Description: "Ran an App Store optimization test", ConditionType: ConditionASOTestCompleted, ThresholdValue: 1},
		{ID: "creative-lab", Name: "Creative Lab", Description: "Tested 5 paid ad creatives", ConditionType: ConditionAdCreativesTested, ThresholdValue: 5},
		{ID: "first-thousand", Name: "First Thousand", Description: "Reached 1,000 installs across channels", ConditionType: ConditionTotalInstalls, ThresholdValue: 1000},
		{ID: "viral-architect", Name: "Viral Architect", Description: "Launched a viral loop", ConditionType: ConditionViralLoopLaunched, ThresholdValue: 1},
		{ID: "money-printer", Name: "Money Printer", Description: "Completed a channel test with positive ROI", ConditionType: ConditionProfitableChannel, ThresholdValue: 1},
	}
}

// DefaultAchievements returns fresh copies of every built-in achievement.
func DefaultAchievements() []*Achievement {
	return append(coreAchievements(), growthAchievements()...)
}

// NewDocument builds the default document for a first run. ids may be nil.
func NewDocument(now time.Time, ids IDSource) *Document {
	if ids == nil {
		ids = UUIDSource
	}
	doc := &Document{
		Version: SchemaVersion,
		Profile: Profile{
			ID:            "user-001",
			Level:         1,
			XPToNextLevel: LevelThreshold(1),
			XPBoost:       1.0,
			Achievements:  []string{},
		},
		Projects:                []*Project{},
		Experiments:             []*Experiment{},
		DistributionExperiments: []*DistributionExperiment{},
		Quests:                  []*Quest{},
		Achievements:            DefaultAchievements(),
		EventLog:                []Event{},
	}
	appendEvent(doc, Event{ID: ids("ev"), Timestamp: now, Type: EventSystemInit, Source: "system"})
	return doc
}
