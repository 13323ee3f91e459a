package store

import (
	"strings"
	"time"
)

// Experiment is a product experiment. ProjectID is a weak reference and
// may point at a project that no longer exists.
type Experiment struct {
	ID         string           `json:"id"`
	ProjectID  string           `json:"projectId"`
	Type       string           `json:"type"`
	Status     ExperimentStatus `json:"status"`
	Hypothesis string           `json:"hypothesis"`
	StartedAt  time.Time        `json:"startedAt"`
	EndedAt    *time.Time       `json:"endedAt"`
}

type ExperimentInput struct {
	ProjectID  string
	Type       string
	Status     ExperimentStatus
	Hypothesis string
	StartedAt  time.Time
}

type ExperimentPatch struct {
	Type       *string
	Status     *ExperimentStatus
	Hypothesis *string
}

func (s *Store) Experiment(id string) (*Experiment, bool) {
	for _, e := range s.doc.Experiments {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// ExperimentsFor returns the experiments whose ProjectID is projectID.
func (s *Store) ExperimentsFor(projectID string) []*Experiment {
	var out []*Experiment
	for _, e := range s.doc.Experiments {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) CreateExperiment(in ExperimentInput) *Experiment {
	now := s.now()
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		typ = "generic"
	}
	status := in.Status
	if !status.IsValid() {
		status = ExperimentPlanned
	}
	started := in.StartedAt
	if started.IsZero() {
		started = now
	}

	e := &Experiment{
		ID:         s.newID("e"),
		ProjectID:  in.ProjectID,
		Type:       typ,
		Status:     status,
		Hypothesis: strings.TrimSpace(in.Hypothesis),
		StartedAt:  started,
	}
	if status == ExperimentCompleted {
		e.EndedAt = &now
	}
	s.doc.Experiments = append(s.doc.Experiments, e)

	if p, ok := s.Project(in.ProjectID); ok {
		p.UpdatedAt = now
	}
	return e
}

// UpdateExperiment applies patch. EndedAt is stamped only the first time
// the experiment becomes completed.
func (s *Store) UpdateExperiment(id string, patch ExperimentPatch) (*Experiment, error) {
	e, ok := s.Experiment(id)
	if !ok {
		return nil, notFound("experiment", id)
	}
	if patch.Type != nil {
		e.Type = *patch.Type
	}
	if patch.Hypothesis != nil {
		e.Hypothesis = *patch.Hypothesis
	}
	if patch.Status != nil {
		e.Status = *patch.Status
		if e.Status == ExperimentCompleted && e.EndedAt == nil {
			now := s.now()
			e.EndedAt = &now
		}
	}
	return e, nil
}
