package lab

import (
	"context"
	"fmt"

	"github.com/mtimit/gamify-product-lab/internal/engine"
	"github.com/mtimit/gamify-product-lab/internal/store"
)

func (s *Session) CreateProject(ctx context.Context, in store.ProjectInput) (*store.Project, engine.Outcome, error) {
	p := s.store.CreateProject(in)
	out, err := s.award(ctx, engine.ActionCreateProject, engine.Payload{}, p.ID)
	return p, out, err
}

// SetProjectStatus moves a project to status. XP is only awarded when the
// status actually changes.
func (s *Session) SetProjectStatus(ctx context.Context, id string, status store.ProjectStatus) (*store.Project, engine.Outcome, error) {
	p, ok := s.store.Project(id)
	if !ok {
		return nil, engine.Outcome{}, fmt.Errorf("project %s: %w", id, store.ErrNotFound)
	}
	if p.Status == status {
		return p, engine.Outcome{}, nil
	}
	if _, err := s.store.UpdateProject(id, store.ProjectPatch{Status: &status}); err != nil {
		return nil, engine.Outcome{}, err
	}
	out, err := s.award(ctx, engine.ActionUpdateProjectStatus, engine.Payload{NewStatus: status}, id)
	return p, out, err
}

// AdvanceProject moves a project one stage along the pipeline.
func (s *Session) AdvanceProject(ctx context.Context, id string) (*store.Project, engine.Outcome, error) {
	p, ok := s.store.Project(id)
	if !ok {
		return nil, engine.Outcome{}, fmt.Errorf("project %s: %w", id, store.ErrNotFound)
	}
	return s.SetProjectStatus(ctx, id, p.Status.Next())
}

func (s *Session) AddRevenue(ctx context.Context, id string, amount float64) (*store.Project, engine.Outcome, error) {
	if amount <= 0 {
		return nil, engine.Outcome{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	p, err := s.store.UpdateProjectRevenue(id, amount)
	if err != nil {
		return nil, engine.Outcome{}, err
	}
	out, err := s.award(ctx, engine.ActionAddRevenue, engine.Payload{Amount: amount}, id)
	return p, out, err
}

func (s *Session) UpdateIdeaScore(ctx context.Context, id string, patch store.IdeaScorePatch) (*store.Project, error) {
	p, err := s.store.UpdateIdeaScore(id, patch)
	if err != nil {
		return nil, err
	}
	return p, s.save(ctx)
}

func (s *Session) AddHypothesis(ctx context.Context, projectID, text string) (*store.Hypothesis, error) {
	h, err := s.store.AddHypothesis(projectID, text)
	if err != nil {
		return nil, err
	}
	return h, s.save(ctx)
}

func (s *Session) ValidateHypothesis(ctx context.Context, projectID, hypothesisID string, result store.HypothesisResult) (*store.Hypothesis, error) {
	h, err := s.store.ValidateHypothesis(projectID, hypothesisID, result)
	if err != nil {
		return nil, err
	}
	return h, s.save(ctx)
}

func (s *Session) AddInsight(ctx context.Context, projectID string, kind store.InsightKind, text string) error {
	if _, err := s.store.AddInsight(projectID, kind, text); err != nil {
		return err
	}
	return s.save(ctx)
}

func (s *Session) AddNote(ctx context.Context, projectID, text string) (*store.Note, engine.Outcome, error) {
	n, err := s.store.AddNote(projectID, text)
	if err != nil {
		return nil, engine.Outcome{}, err
	}
	out, err := s.award(ctx, engine.ActionAddNote, engine.Payload{}, projectID)
	return n, out, err
}

// CreateExperiment requires the project to exist. An experiment created as
// completed also counts as a completion.
func (s *Session) CreateExperiment(ctx context.Context, in store.ExperimentInput) (*store.Experiment, engine.Outcome, error) {
	if _, ok := s.store.Project(in.ProjectID); !ok {
		return nil, engine.Outcome{}, fmt.Errorf("project %s: %w", in.ProjectID, store.ErrNotFound)
	}
	e := s.store.CreateExperiment(in)
	out, err := s.award(ctx, engine.ActionCreateExperiment, engine.Payload{}, e.ID)
	if err != nil || e.Status != store.ExperimentCompleted {
		return e, out, err
	}
	done, err := s.award(ctx, engine.ActionCompleteExperiment, engine.Payload{}, e.ID)
	out.Events = append(out.Events, done.Events...)
	return e, out, err
}

// SetExperimentStatus awards completion XP on the first transition into
// completed only.
func (s *Session) SetExperimentStatus(ctx context.Context, id string, status store.ExperimentStatus) (*store.Experiment, engine.Outcome, error) {
	e, ok := s.store.Experiment(id)
	if !ok {
		return nil, engine.Outcome{}, fmt.Errorf("experiment %s: %w", id, store.ErrNotFound)
	}
	was := e.Status
	if _, err := s.store.UpdateExperiment(id, store.ExperimentPatch{Status: &status}); err != nil {
		return nil, engine.Outcome{}, err
	}
	if was == store.ExperimentCompleted || status != store.ExperimentCompleted {
		return e, engine.Outcome{}, s.save(ctx)
	}
	out, err := s.award(ctx, engine.ActionCompleteExperiment, engine.Payload{}, id)
	return e, out, err
}

func (s *Session) CreateDistribution(ctx context.Context, in store.DistributionInput) (*store.DistributionExperiment, engine.Outcome, error) {
	d := s.store.CreateDistributionExperiment(in)
	out, err := s.award(ctx, engine.ActionCreateDistribution, engine.Payload{}, d.ID)
	return d, out, err
}

func (s *Session) UpdateDistribution(ctx context.Context, id string, patch store.DistributionPatch) (*store.DistributionExperiment, engine.Outcome, error) {
	d, err := s.store.UpdateDistributionExperiment(id, patch)
	if err != nil {
		return nil, engine.Outcome{}, err
	}
	out, err := s.award(ctx, engine.ActionUpdateDistribution, engine.Payload{}, id)
	return d, out, err
}

func (s *Session) AbandonQuest(ctx context.Context, id string) error {
	if err := s.engine.AbandonQuest(id); err != nil {
		return err
	}
	return s.save(ctx)
}
