package store

import (
	"fmt"
	"strings"
)

type ProjectStatus string

const (
	StatusIdea       ProjectStatus = "idea"
	StatusValidating ProjectStatus = "validating"
	StatusDesigning  ProjectStatus = "designing"
	StatusBuilding   ProjectStatus = "building"
	StatusLaunched   ProjectStatus = "launched"
	StatusScaling    ProjectStatus = "scaling"
	StatusArchived   ProjectStatus = "archived"
)

// ProjectStatuses lists the project stages in their conceptual order.
// Transitions are not constrained by this order.
var ProjectStatuses = []ProjectStatus{
	StatusIdea, StatusValidating, StatusDesigning, StatusBuilding,
	StatusLaunched, StatusScaling, StatusArchived,
}

func (s ProjectStatus) IsValid() bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Next returns the stage after s, or s itself for the last stage.
func (s ProjectStatus) Next() ProjectStatus {
	for i, v := range ProjectStatuses {
		if v == s && i+1 < len(ProjectStatuses) {
			return ProjectStatuses[i+1]
		}
	}
	return s
}

func ParseProjectStatus(input string) (ProjectStatus, error) {
	s := ProjectStatus(normalize(input))
	if !s.IsValid() {
		return "", InvalidValueError{Field: "project status", Value: input}
	}
	return s, nil
}

type ExperimentStatus string

const (
	ExperimentPlanned   ExperimentStatus = "planned"
	ExperimentRunning   ExperimentStatus = "running"
	ExperimentCompleted ExperimentStatus = "completed"
	ExperimentCanceled  ExperimentStatus = "canceled"
)

func (s ExperimentStatus) IsValid() bool {
	switch s {
	case ExperimentPlanned, ExperimentRunning, ExperimentCompleted, ExperimentCanceled:
		return true
	default:
		return false
	}
}

func ParseExperimentStatus(input string) (ExperimentStatus, error) {
	s := ExperimentStatus(normalize(input))
	if !s.IsValid() {
		return "", InvalidValueError{Field: "experiment status", Value: input}
	}
	return s, nil
}

// Channel is a distribution channel. The named values are the well-known
// channels; any other free text is accepted as-is.
type Channel string

const (
	ChannelOrganic    Channel = "organic"
	ChannelInfluencer Channel = "influencer"
	ChannelPPC        Channel = "ppc"
	ChannelASO        Channel = "aso"
	ChannelViralLoop  Channel = "viral_loop"
	ChannelReddit     Channel = "reddit"
	ChannelTikTokAds  Channel = "tiktok_ads"
)

type DistributionType string

const (
	DistributionContent DistributionType = "content"
	DistributionPaid    DistributionType = "paid"
	DistributionASO     DistributionType = "aso"
	DistributionViral   DistributionType = "viral"
)

func (t DistributionType) IsValid() bool {
	switch t {
	case DistributionContent, DistributionPaid, DistributionASO, DistributionViral:
		return true
	default:
		return false
	}
}

func ParseDistributionType(input string) (DistributionType, error) {
	t := DistributionType(normalize(input))
	if !t.IsValid() {
		return "", InvalidValueError{Field: "distribution type", Value: input}
	}
	return t, nil
}

type DistributionStatus string

const (
	DistributionPlanning  DistributionStatus = "planning"
	DistributionRunning   DistributionStatus = "running"
	DistributionCompleted DistributionStatus = "completed"
	DistributionPaused    DistributionStatus = "paused"
	DistributionFailed    DistributionStatus = "failed"
)

func (s DistributionStatus) IsValid() bool {
	switch s {
	case DistributionPlanning, DistributionRunning, DistributionCompleted, DistributionPaused, DistributionFailed:
		return true
	default:
		return false
	}
}

func ParseDistributionStatus(input string) (DistributionStatus, error) {
	s := DistributionStatus(normalize(input))
	if !s.IsValid() {
		return "", InvalidValueError{Field: "distribution status", Value: input}
	}
	return s, nil
}

type HypothesisResult string

const (
	ResultUnset   HypothesisResult = ""
	ResultSuccess HypothesisResult = "success"
	ResultFailure HypothesisResult = "failure"
)

func ParseHypothesisResult(input string) (HypothesisResult, error) {
	switch normalize(input) {
	case "success", "ok", "yes":
		return ResultSuccess, nil
	case "failure", "fail", "no":
		return ResultFailure, nil
	default:
		return "", InvalidValueError{Field: "hypothesis result", Value: input}
	}
}

// InsightKind selects one of the three project insight buckets.
type InsightKind string

const (
	InsightWorked     InsightKind = "worked"
	InsightDidntWork  InsightKind = "didnt_work"
	InsightKeyLearned InsightKind = "learning"
)

func ParseInsightKind(input string) (InsightKind, error) {
	switch normalize(input) {
	case "worked", "what_worked":
		return InsightWorked, nil
	case "didnt_work", "didnt", "what_didnt_work":
		return InsightDidntWork, nil
	case "learning", "learned", "key_learning":
		return InsightKeyLearned, nil
	default:
		return "", InvalidValueError{Field: "insight kind", Value: input}
	}
}

type QuestType string

const (
	QuestGeneric   QuestType = "generic"
	QuestTimed     QuestType = "timed"
	QuestMilestone QuestType = "milestone"
)

type QuestStatus string

const (
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestFailed    QuestStatus = "failed"
	QuestExpired   QuestStatus = "expired"
)

// Terminal reports whether no further transitions are allowed.
func (s QuestStatus) Terminal() bool {
	return s != QuestActive
}

type ConditionType string

const (
	ConditionRevenueTotal         ConditionType = "revenue_total"
	ConditionProjectsCount        ConditionType = "projects_count"
	ConditionProjectLaunched      ConditionType = "project_launched"
	ConditionExperimentsCompleted ConditionType = "experiments_completed"
	ConditionASOTestCompleted     ConditionType = "aso_test_completed"
	ConditionAdCreativesTested    ConditionType = "ad_creatives_tested"
	ConditionTotalInstalls        ConditionType = "total_installs"
	ConditionViralLoopLaunched    ConditionType = "viral_loop_launched"
	ConditionProfitableChannel    ConditionType = "profitable_channel"
)

func normalize(input string) string {
	s := strings.TrimSpace(strings.ToLower(input))
	return strings.ReplaceAll(s, "-", "_")
}

// InvalidValueError is returned by the Parse helpers for input outside an enum.
type InvalidValueError struct {
	Field string
	Value string
}

func (e InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}
