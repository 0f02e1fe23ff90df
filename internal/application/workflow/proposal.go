package workflow

import (
	"context"
	"strings"

	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	domainwf "github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// ProjectProposalInput is the proposer-editable part of a proposal
type ProjectProposalInput struct {
	Title       string                 `json:"title"`
	Objective   string                 `json:"objective"`
	ProjectType string                 `json:"project_type"`
	Description string                 `json:"description"`
	Documents   []entity.AttachmentRef `json:"documents"`
}

// RegisterInput assigns the project code
type RegisterInput struct {
	ProjectCode      string `json:"project_code"`
	ProjectStartDate string `json:"project_start_date"`
	Notes            string `json:"notes"`
}

// ProposalWorkflow is the project proposal lifecycle
type ProposalWorkflow interface {
	Create(ctx context.Context, actor entity.Actor, in ProjectProposalInput) (*ProjectProposalView, error)
	Edit(ctx context.Context, id string, version int64, actor entity.Actor, in ProjectProposalInput) (*ProjectProposalView, error)
	Submit(ctx context.Context, id string, version int64, actor entity.Actor) (*ProjectProposalView, error)
	COOReview(ctx context.Context, id string, version int64, actor entity.Actor, isAligned bool, notes string) (*ProjectProposalView, error)
	AssignManager(ctx context.Context, id string, version int64, actor entity.Actor, managerID string, notes string) (*ProjectProposalView, error)
	Register(ctx context.Context, id string, version int64, actor entity.Actor, in RegisterInput) (*ProjectProposalView, error)
	MarkCompleted(ctx context.Context, id string, version int64, actor entity.Actor, notes string) (*ProjectProposalView, error)
	Get(ctx context.Context, id string, actor entity.Actor) (*ProjectProposalView, error)
	List(ctx context.Context, actor entity.Actor, filter ListFilter) ([]*ProjectProposalView, error)
}

type proposalWorkflow struct {
	e *Engine
}

type proposalStep = step[*entity.ProjectProposal]

func (w *proposalWorkflow) run(ctx context.Context, id string, version int64, actor entity.Actor, s proposalStep) (*ProjectProposalView, error) {
	p, err := transition[*entity.ProjectProposal](ctx, w.e, w.e.repos.Proposals, entity.KindProjectProposal, id, version, actor, s)
	if err != nil {
		return nil, err
	}
	return projectProposal(w.e.resolver, actor, p), nil
}

func validateProposalInput(op string, in ProjectProposalInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.InvalidInput(op, "title is required")
	}
	if strings.TrimSpace(in.Objective) == "" {
		return apperr.InvalidInput(op, "objective is required")
	}
	if !entity.IsValidProjectType(in.ProjectType) {
		return apperr.InvalidInput(op, "unknown project_type %q", in.ProjectType)
	}
	return nil
}

func applyProposalInput(p *entity.ProjectProposal, in ProjectProposalInput) {
	p.Title = strings.TrimSpace(in.Title)
	p.Objective = strings.TrimSpace(in.Objective)
	p.ProjectType = in.ProjectType
	p.Description = in.Description
	p.Documents = append([]entity.AttachmentRef{}, in.Documents...)
}

func (w *proposalWorkflow) Create(ctx context.Context, actor entity.Actor, in ProjectProposalInput) (*ProjectProposalView, error) {
	if err := validateProposalInput("create", in); err != nil {
		return nil, err
	}

	p, err := create[*entity.ProjectProposal](ctx, w.e, w.e.repos.Proposals, entity.KindProjectProposal, actor, func(number string) (*entity.ProjectProposal, error) {
		p := &entity.ProjectProposal{
			ProposalNumber: number,
			ProposerID:     actor.ID,
			ProposerName:   actor.Name,
		}
		applyProposalInput(p, in)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return projectProposal(w.e.resolver, actor, p), nil
}

func (w *proposalWorkflow) Edit(ctx context.Context, id string, version int64, actor entity.Actor, in ProjectProposalInput) (*ProjectProposalView, error) {
	return w.run(ctx, id, version, actor, proposalStep{
		op:      "edit",
		trigger: domainwf.TriggerEdit,
		action:  entity.ActionEdited,
		apply: func(ctx context.Context, p *entity.ProjectProposal) error {
			if err := validateProposalInput("edit", in); err != nil {
				return err
			}
			applyProposalInput(p, in)
			return nil
		},
	})
}

func (w *proposalWorkflow) Submit(ctx context.Context, id string, version int64, actor entity.Actor) (*ProjectProposalView, error) {
	return w.run(ctx, id, version, actor, proposalStep{
		op:      "submit",
		trigger: domainwf.TriggerSubmit,
		action:  entity.ActionSubmitted,
	})
}

func (w *proposalWorkflow) COOReview(ctx context.Context, id string, version int64, actor entity.Actor, isAligned bool, notes string) (*ProjectProposalView, error) {
	s := proposalStep{
		op:      "coo review",
		trigger: domainwf.TriggerCOOReject,
		action:  entity.ActionCOORejected,
		notes:   notes,
		apply: func(ctx context.Context, p *entity.ProjectProposal) error {
			aligned := isAligned
			p.IsAligned = &aligned
			p.COONotes = notes
			return nil
		},
	}
	if isAligned {
		s.trigger = domainwf.TriggerCOOApprove
		s.action = entity.ActionCOOApproved
	}
	return w.run(ctx, id, version, actor, s)
}

func (w *proposalWorkflow) AssignManager(ctx context.Context, id string, version int64, actor entity.Actor, managerID string, notes string) (*ProjectProposalView, error) {
	const op = "assign manager"
	return w.run(ctx, id, version, actor, proposalStep{
		op:      op,
		trigger: domainwf.TriggerAssignManager,
		action:  entity.ActionManagerAssigned,
		notes:   notes,
		apply: func(ctx context.Context, p *entity.ProjectProposal) error {
			if strings.TrimSpace(managerID) == "" {
				return apperr.InvalidInput(op, "feasibility_manager_id is required")
			}
			manager, err := w.e.repos.Users.GetByID(ctx, managerID)
			if err != nil {
				return err
			}
			if manager == nil {
				return apperr.NotFound(op, "user %s", managerID)
			}
			p.FeasibilityManagerID = manager.ID
			p.FeasibilityManagerName = manager.Name
			p.DevManagerNotes = notes
			return nil
		},
	})
}

func (w *proposalWorkflow) Register(ctx context.Context, id string, version int64, actor entity.Actor, in RegisterInput) (*ProjectProposalView, error) {
	const op = "register"
	return w.run(ctx, id, version, actor, proposalStep{
		op:      op,
		trigger: domainwf.TriggerRegister,
		action:  entity.ActionRegistered,
		notes:   in.Notes,
		apply: func(ctx context.Context, p *entity.ProjectProposal) error {
			code := strings.TrimSpace(in.ProjectCode)
			if code == "" {
				return apperr.InvalidInput(op, "project_code is required")
			}
			if strings.TrimSpace(in.ProjectStartDate) == "" {
				return apperr.InvalidInput(op, "project_start_date is required")
			}
			taken, err := w.e.repos.Proposals.ProjectCodeExists(ctx, code, p.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.InvalidInput(op, "project_code %s is already in use", code)
			}
			p.ProjectCode = code
			p.ProjectStartDate = in.ProjectStartDate
			p.ControlNotes = in.Notes
			return nil
		},
	})
}

func (w *proposalWorkflow) MarkCompleted(ctx context.Context, id string, version int64, actor entity.Actor, notes string) (*ProjectProposalView, error) {
	return w.run(ctx, id, version, actor, proposalStep{
		op:      "mark completed",
		trigger: domainwf.TriggerMarkCompleted,
		action:  entity.ActionCompleted,
		notes:   notes,
	})
}

func (w *proposalWorkflow) Get(ctx context.Context, id string, actor entity.Actor) (*ProjectProposalView, error) {
	p, err := load[*entity.ProjectProposal](ctx, w.e, w.e.repos.Proposals, entity.KindProjectProposal, id, actor)
	if err != nil {
		return nil, err
	}
	return projectProposal(w.e.resolver, actor, p), nil
}

func (w *proposalWorkflow) List(ctx context.Context, actor entity.Actor, filter ListFilter) ([]*ProjectProposalView, error) {
	filter, ok := visibleFilter(w.e.resolver, actor, entity.KindProjectProposal, filter)
	if !ok {
		return []*ProjectProposalView{}, nil
	}

	items, err := w.e.repos.Proposals.List(ctx, filter)
	if err != nil {
		return nil, classify("list", err)
	}

	views := make([]*ProjectProposalView, 0, len(items))
	for _, p := range items {
		views = append(views, projectProposal(w.e.resolver, actor, p))
	}
	return views, nil
}
