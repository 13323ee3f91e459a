package store

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Project struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Status             ProjectStatus  `json:"status"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	Tags               []string       `json:"tags"`
	TargetAudience     string         `json:"targetAudience"`
	Problem            string         `json:"problem"`
	SolutionHypothesis string         `json:"solutionHypothesis"`
	IdeaScore          IdeaScore      `json:"ideaScore"`
	StageHistory       []StageEntry   `json:"stageHistory"`
	Hypotheses         []*Hypothesis  `json:"hypotheses"`
	Insights           Insights       `json:"insights"`
	Metrics            ProjectMetrics `json:"metrics"`
	Notes              []Note         `json:"notes"`
}

type IdeaScore struct {
	ProblemValue    int     `json:"problemValue"`
	Scalability     int     `json:"scalability"`
	DevelopmentTime int     `json:"developmentTime"`
	TotalScore      float64 `json:"totalScore"`
}

// Weights of the idea score components; they sum to 1.
const (
	WeightProblemValue    = 0.4
	WeightScalability     = 0.35
	WeightDevelopmentTime = 0.25
)

func (s *IdeaScore) recompute() {
	total := WeightProblemValue*float64(s.ProblemValue) +
		WeightScalability*float64(s.Scalability) +
		WeightDevelopmentTime*float64(s.DevelopmentTime)
	s.TotalScore = math.Round(total*100) / 100
}

func defaultIdeaScore() IdeaScore {
	s := IdeaScore{ProblemValue: 5, Scalability: 5, DevelopmentTime: 5}
	s.recompute()
	return s
}

func clampScore(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

// StageEntry records one stay in a project stage. ExitedAt is nil for the
// current (tail) entry.
type StageEntry struct {
	Stage     ProjectStatus `json:"stage"`
	EnteredAt time.Time     `json:"enteredAt"`
	ExitedAt  *time.Time    `json:"exitedAt"`
}

type Hypothesis struct {
	ID          string           `json:"id"`
	Text        string           `json:"text"`
	Validated   bool             `json:"validated"`
	Result      HypothesisResult `json:"result"`
	CreatedAt   time.Time        `json:"createdAt"`
	ValidatedAt *time.Time       `json:"validatedAt,omitempty"`
}

type Insights struct {
	WhatWorked    []string `json:"whatWorked"`
	WhatDidntWork []string `json:"whatDidntWork"`
	KeyLearnings  []string `json:"keyLearnings"`
}

type ProjectMetrics struct {
	RevenueTotal   float64 `json:"revenueTotal"`
	RevenueMonthly float64 `json:"revenueMonthly"`
}

type Note struct {
	Date time.Time `json:"date"`
	Text string    `json:"text"`
}

type ProjectInput struct {
	Name               string
	Status             ProjectStatus
	Tags               []string
	TargetAudience     string
	Problem            string
	SolutionHypothesis string
}

// ProjectPatch holds the fields to change; nil fields are left alone.
type ProjectPatch struct {
	Name               *string
	Status             *ProjectStatus
	Tags               []string
	TargetAudience     *string
	Problem            *string
	SolutionHypothesis *string
}

type IdeaScorePatch struct {
	ProblemValue    *int
	Scalability     *int
	DevelopmentTime *int
}

func (s *Store) Project(id string) (*Project, bool) {
	for _, p := range s.doc.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (s *Store) CreateProject(in ProjectInput) *Project {
	now := s.now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "New Project"
	}
	status := in.Status
	if !status.IsValid() {
		status = StatusIdea
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	p := &Project{
		ID:                 s.newID("p"),
		Name:               name,
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
		Tags:               tags,
		TargetAudience:     in.TargetAudience,
		Problem:            in.Problem,
		SolutionHypothesis: in.SolutionHypothesis,
		IdeaScore:          defaultIdeaScore(),
		StageHistory:       []StageEntry{{Stage: status, EnteredAt: now}},
		Hypotheses:         []*Hypothesis{},
		Insights:           emptyInsights(),
		Notes:              []Note{},
	}
	s.doc.Projects = append(s.doc.Projects, p)
	return p
}

// UpdateProject applies patch. A status change closes the open stage entry
// and opens one for the new stage before the patch itself is applied.
func (s *Store) UpdateProject(id string, patch ProjectPatch) (*Project, error) {
	p, ok := s.Project(id)
	if !ok {
		return nil, notFound("project", id)
	}
	now := s.now()

	if patch.Status != nil && *patch.Status != p.Status {
		if n := len(p.StageHistory); n > 0 && p.StageHistory[n-1].ExitedAt == nil {
			exited := now
			p.StageHistory[n-1].ExitedAt = &exited
		}
		p.StageHistory = append(p.StageHistory, StageEntry{Stage: *patch.Status, EnteredAt: now})
		p.Status = *patch.Status
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Tags != nil {
		p.Tags = patch.Tags
	}
	if patch.TargetAudience != nil {
		p.TargetAudience = *patch.TargetAudience
	}
	if patch.Problem != nil {
		p.Problem = *patch.Problem
	}
	if patch.SolutionHypothesis != nil {
		p.SolutionHypothesis = *patch.SolutionHypothesis
	}
	p.UpdatedAt = now
	return p, nil
}

// UpdateProjectRevenue adds delta to the project and profile accumulators.
// The sign of delta is not checked.
func (s *Store) UpdateProjectRevenue(id string, delta float64) (*Project, error) {
	p, ok := s.Project(id)
	if !ok {
		return nil, notFound("project", id)
	}
	p.Metrics.RevenueTotal += delta
	p.Metrics.RevenueMonthly += delta
	p.UpdatedAt = s.now()
	s.doc.Profile.TotalRevenue += delta
	return p, nil
}

func (s *Store) UpdateIdeaScore(id string, patch IdeaScorePatch) (*Project, error) {
	p, ok := s.Project(id)
	if !ok {
		return nil, notFound("project", id)
	}
	if patch.ProblemValue != nil {
		p.IdeaScore.ProblemValue = clampScore(*patch.ProblemValue)
	}
	if patch.Scalability != nil {
		p.IdeaScore.Scalability = clampScore(*patch.Scalability)
	}
	if patch.DevelopmentTime != nil {
		p.IdeaScore.DevelopmentTime = clampScore(*patch.DevelopmentTime)
	}
	p.IdeaScore.recompute()
	p.UpdatedAt = s.now()
	return p, nil
}

func (s *Store) AddHypothesis(projectID, text string) (*Hypothesis, error) {
	p, ok := s.Project(projectID)
	if !ok {
		return nil, notFound("project", projectID)
	}
	now := s.now()
	h := &Hypothesis{ID: s.newID("h"), Text: strings.TrimSpace(text), CreatedAt: now}
	p.Hypotheses = append(p.Hypotheses, h)
	p.UpdatedAt = now
	return h, nil
}

func (s *Store) ValidateHypothesis(projectID, hypothesisID string, result HypothesisResult) (*Hypothesis, error) {
	p, ok := s.Project(projectID)
	if !ok {
		return nil, notFound("project", projectID)
	}
	for _, h := range p.Hypotheses {
		if h.ID != hypothesisID {
			continue
		}
		now := s.now()
		h.Validated = true
		h.Result = result
		h.ValidatedAt = &now
		p.UpdatedAt = now
		return h, nil
	}
	return nil, notFound("hypothesis", hypothesisID)
}

func (s *Store) AddInsight(projectID string, kind InsightKind, text string) (*Project, error) {
	p, ok := s.Project(projectID)
	if !ok {
		return nil, notFound("project", projectID)
	}
	text = strings.TrimSpace(text)
	switch kind {
	case InsightWorked:
		p.Insights.WhatWorked = append(p.Insights.WhatWorked, text)
	case InsightDidntWork:
		p.Insights.WhatDidntWork = append(p.Insights.WhatDidntWork, text)
	case InsightKeyLearned:
		p.Insights.KeyLearnings = append(p.Insights.KeyLearnings, text)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidInsightKind, kind)
	}
	p.UpdatedAt = s.now()
	return p, nil
}

func (s *Store) AddNote(projectID, text string) (*Note, error) {
	p, ok := s.Project(projectID)
	if !ok {
		return nil, notFound("project", projectID)
	}
	n := Note{Date: s.now(), Text: strings.TrimSpace(text)}
	p.Notes = append(p.Notes, n)
	p.UpdatedAt = n.Date
	return &p.Notes[len(p.Notes)-1], nil
}

func emptyInsights() Insights {
	return Insights{WhatWorked: []string{}, WhatDidntWork: []string{}, KeyLearnings: []string{}}
}
