package entity

// ProjectProposal proposes a project for alignment review and registration
type ProjectProposal struct {
	Record
	ProposalNumber         string          `json:"proposal_number"`
	ProposerID             string          `json:"proposer_id"`
	ProposerName           string          `json:"proposer_name"`
	Title                  string          `json:"title"`
	Objective              string          `json:"objective"`
	ProjectType            string          `json:"project_type"`
	Description            string          `json:"description,omitempty"`
	Documents              []AttachmentRef `json:"documents"`
	IsAligned              *bool           `json:"is_aligned"`
	COONotes               string          `json:"coo_notes,omitempty"`
	FeasibilityManagerID   string          `json:"feasibility_manager_id,omitempty"`
	FeasibilityManagerName string          `json:"feasibility_manager_name,omitempty"`
	DevManagerNotes        string          `json:"dev_manager_notes,omitempty"`
	ProjectCode            string          `json:"project_code,omitempty"`
	ProjectStartDate       string          `json:"project_start_date,omitempty"`
	ControlNotes           string          `json:"control_notes,omitempty"`
}

func (p *ProjectProposal) Kind() Kind      { return KindProjectProposal }
func (p *ProjectProposal) Number() string  { return p.ProposalNumber }
func (p *ProjectProposal) OwnerID() string { return p.ProposerID }

// Participants includes the assigned feasibility manager
func (p *ProjectProposal) Participants() []string {
	if p.FeasibilityManagerID == "" {
		return nil
	}
	return []string{p.FeasibilityManagerID}
}
