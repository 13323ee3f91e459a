package store

import (
	"strings"
	"time"
)

// DistributionExperiment is a test of one acquisition channel.
type DistributionExperiment struct {
	ID        string              `json:"id"`
	ProjectID string              `json:"projectId,omitempty"`
	Name      string              `json:"name"`
	Channel   Channel             `json:"channel"`
	Type      DistributionType    `json:"type"`
	Status    DistributionStatus  `json:"status"`
	Metrics   DistributionMetrics `json:"metrics"`
	Results   DistributionResults `json:"results"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// DistributionMetrics holds raw inputs and the derived cost ratios.
// Retention values and rates are percentages in 0..100.
type DistributionMetrics struct {
	Budget      float64 `json:"budget"`
	Spent       float64 `json:"spent"`
	Installs    int     `json:"installs"`
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`

	RetentionR1  float64 `json:"retentionR1"`
	RetentionR7  float64 `json:"retentionR7"`
	RetentionR30 float64 `json:"retentionR30"`

	ARPU      float64 `json:"arpu"`
	LTV       float64 `json:"ltv"`
	KFactor   float64 `json:"kFactor"`
	ShareRate float64 `json:"shareRate"`
	HookRate  float64 `json:"hookRate"`
	HoldRate  float64 `json:"holdRate"`

	// Derived; see recomputeDerived.
	CTR            float64 `json:"ctr"`
	CPI            float64 `json:"cpi"`
	CPM            float64 `json:"cpm"`
	ConversionRate float64 `json:"conversionRate"`
}

type DistributionResults struct {
	WhatWorked    []string `json:"whatWorked"`
	WhatDidntWork []string `json:"whatDidntWork"`
	KeyLearnings  []string `json:"keyLearnings"`
	NextSteps     []string `json:"nextSteps"`
}

type DistributionInput struct {
	ProjectID string
	Name      string
	Channel   Channel
	Type      DistributionType
	Status    DistributionStatus
	Metrics   MetricsPatch
}

// MetricsPatch carries the raw metric inputs to overwrite.
type MetricsPatch struct {
	Budget       *float64
	Spent        *float64
	Installs     *int
	Impressions  *int
	Clicks       *int
	RetentionR1  *float64
	RetentionR7  *float64
	RetentionR30 *float64
	ARPU         *float64
	LTV          *float64
	KFactor      *float64
	ShareRate    *float64
	HookRate     *float64
	HoldRate     *float64
}

type DistributionPatch struct {
	ProjectID *string
	Name      *string
	Channel   *Channel
	Type      *DistributionType
	Status    *DistributionStatus
	Metrics   MetricsPatch
	// AddResults is appended to the existing result lists.
	AddResults DistributionResults
}

func (s *Store) DistributionExperiment(id string) (*DistributionExperiment, bool) {
	for _, d := range s.doc.DistributionExperiments {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

func (s *Store) CreateDistributionExperiment(in DistributionInput) *DistributionExperiment {
	now := s.now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "New channel test"
	}
	channel := Channel(strings.TrimSpace(string(in.Channel)))
	if channel == "" {
		channel = ChannelOrganic
	}
	typ := in.Type
	if !typ.IsValid() {
		typ = DistributionContent
	}
	status := in.Status
	if !status.IsValid() {
		status = DistributionPlanning
	}

	d := &DistributionExperiment{
		ID:        s.newID("d"),
		ProjectID: in.ProjectID,
		Name:      name,
		Channel:   channel,
		Type:      typ,
		Status:    status,
		Results:   emptyResults(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Metrics.apply(&d.Metrics)
	d.Metrics.recomputeDerived()
	s.doc.DistributionExperiments = append(s.doc.DistributionExperiments, d)
	return d
}

func (s *Store) UpdateDistributionExperiment(id string, patch DistributionPatch) (*DistributionExperiment, error) {
	d, ok := s.DistributionExperiment(id)
	if !ok {
		return nil, notFound("distribution experiment", id)
	}
	if patch.ProjectID != nil {
		d.ProjectID = *patch.ProjectID
	}
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.Channel != nil {
		d.Channel = *patch.Channel
	}
	if patch.Type != nil {
		d.Type = *patch.Type
	}
	if patch.Status != nil {
		d.Status = *patch.Status
	}
	patch.Metrics.apply(&d.Metrics)
	d.Metrics.recomputeDerived()

	d.Results.WhatWorked = append(d.Results.WhatWorked, patch.AddResults.WhatWorked...)
	d.Results.WhatDidntWork = append(d.Results.WhatDidntWork, patch.AddResults.WhatDidntWork...)
	d.Results.KeyLearnings = append(d.Results.KeyLearnings, patch.AddResults.KeyLearnings...)
	d.Results.NextSteps = append(d.Results.NextSteps, patch.AddResults.NextSteps...)

	d.UpdatedAt = s.now()
	return d, nil
}

func (p MetricsPatch) apply(m *DistributionMetrics) {
	setFloat(&m.Budget, p.Budget)
	setFloat(&m.Spent, p.Spent)
	setInt(&m.Installs, p.Installs)
	setInt(&m.Impressions, p.Impressions)
	setInt(&m.Clicks, p.Clicks)
	setFloat(&m.RetentionR1, p.RetentionR1)
	setFloat(&m.RetentionR7, p.RetentionR7)
	setFloat(&m.RetentionR30, p.RetentionR30)
	setFloat(&m.ARPU, p.ARPU)
	setFloat(&m.LTV, p.LTV)
	setFloat(&m.KFactor, p.KFactor)
	setFloat(&m.ShareRate, p.ShareRate)
	setFloat(&m.HookRate, p.HookRate)
	setFloat(&m.HoldRate, p.HoldRate)
}

// recomputeDerived refreshes each ratio whose denominator is positive and
// leaves the others at their previous value.
func (m *DistributionMetrics) recomputeDerived() {
	if m.Spent > 0 && m.Installs > 0 {
		m.CPI = m.Spent / float64(m.Installs)
	}
	if m.Impressions > 0 {
		m.CPM = m.Spent / float64(m.Impressions) * 1000
		m.CTR = float64(m.Clicks) / float64(m.Impressions) * 100
	}
	if m.Clicks > 0 {
		m.ConversionRate = float64(m.Installs) / float64(m.Clicks) * 100
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func emptyResults() DistributionResults {
	return DistributionResults{
		WhatWorked:    []string{},
		WhatDidntWork: []string{},
		KeyLearnings:  []string{},
		NextSteps:     []string{},
	}
}
