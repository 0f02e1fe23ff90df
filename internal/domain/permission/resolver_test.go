package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/internal/domain/workflow"
)

var (
	requester   = entity.Actor{ID: "u1", Name: "Requester", Roles: []entity.Role{entity.RoleRequester}}
	otherUser   = entity.Actor{ID: "u2", Name: "Other", Roles: []entity.Role{entity.RoleRequester}}
	buyer       = entity.Actor{ID: "p1", Name: "Buyer", Roles: []entity.Role{entity.RoleProcurement}}
	manager     = entity.Actor{ID: "m1", Name: "Manager", Roles: []entity.Role{entity.RoleManagement}}
	accountant  = entity.Actor{ID: "f1", Name: "Accountant", Roles: []entity.Role{entity.RoleFinancial}}
	chiefOps    = entity.Actor{ID: "c1", Name: "COO", Roles: []entity.Role{entity.RoleCOO}}
	admin       = entity.Actor{ID: "a1", Name: "Admin", Roles: []entity.Role{entity.RoleAdmin}}
	requesterPM = entity.Actor{ID: "u3", Roles: []entity.Role{entity.RoleRequester, entity.RoleProcurement}}
)

func TestRulesMatchTransitionTables(t *testing.T) {
	r := Default()

	defs := map[entity.Kind]*workflow.Definition{
		entity.KindGoodsRequest:    workflow.GoodsRequest,
		entity.KindPaymentRequest:  workflow.PaymentRequest,
		entity.KindProjectProposal: workflow.ProjectProposal,
	}

	for _, rule := range r.Rules() {
		def := defs[rule.Kind]
		require.NotNil(t, def, "rule for unknown kind %s", rule.Kind)
		_, ok := def.Target(rule.State, rule.Trigger)
		assert.True(t, ok, "rule %s/%s/%s has no transition", rule.Kind, rule.State, rule.Trigger)
	}

	for kind, def := range defs {
		for _, state := range def.States() {
			for _, trigger := range def.Triggers() {
				if _, ok := def.Target(state, trigger); !ok || def.IsInternal(trigger) {
					continue
				}
				assert.NotEqual(t, DenyState, r.Decide(admin, kind, state, trigger, ""),
					"transition %s/%s/%s has no permission rule", kind, state, trigger)
			}
		}
	}
}

func TestDecide(t *testing.T) {
	r := Default()

	tests := []struct {
		name    string
		actor   entity.Actor
		kind    entity.Kind
		state   workflow.State
		trigger workflow.Trigger
		owner   string
		want    Decision
	}{
		{"owner submits draft", requester, entity.KindGoodsRequest, workflow.StateDraft, workflow.TriggerSubmit, "u1", Allow},
		{"non-owner submits draft", otherUser, entity.KindGoodsRequest, workflow.StateDraft, workflow.TriggerSubmit, "u1", DenyOwner},
		{"admin cannot submit for owner", admin, entity.KindGoodsRequest, workflow.StateDraft, workflow.TriggerSubmit, "u1", DenyOwner},
		{"procurement adds inquiries", buyer, entity.KindGoodsRequest, workflow.StatePendingProcurement, workflow.TriggerAddInquiries, "u1", Allow},
		{"requester adds inquiries", requester, entity.KindGoodsRequest, workflow.StatePendingProcurement, workflow.TriggerAddInquiries, "u1", DenyRole},
		{"inquiries in wrong state", buyer, entity.KindGoodsRequest, workflow.StateDraft, workflow.TriggerAddInquiries, "u1", DenyState},
		{"management rejects in its state", manager, entity.KindGoodsRequest, workflow.StatePendingManagement, workflow.TriggerReject, "u1", Allow},
		{"management rejects financial state", manager, entity.KindGoodsRequest, workflow.StatePendingFinancial, workflow.TriggerReject, "u1", DenyRole},
		{"reject terminal", accountant, entity.KindGoodsRequest, workflow.StateRejected, workflow.TriggerReject, "u1", DenyState},
		{"requester confirms own receipt", requester, entity.KindGoodsRequest, workflow.StatePendingReceipt, workflow.TriggerConfirmReceiptRequester, "u1", Allow},
		{"other confirms receipt as requester", otherUser, entity.KindGoodsRequest, workflow.StatePendingReceipt, workflow.TriggerConfirmReceiptRequester, "u1", DenyOwner},
		{"internal trigger has no rule", buyer, entity.KindGoodsRequest, workflow.StatePendingReceipt, workflow.TriggerReceiptsCompleted, "u1", DenyState},
		{"financial returns payment", accountant, entity.KindPaymentRequest, workflow.StatePendingFinancial, workflow.TriggerReject, "u1", Allow},
		{"coo reviews", chiefOps, entity.KindProjectProposal, workflow.StatePendingCOO, workflow.TriggerCOOReject, "u1", Allow},
		{"admin marks completed", admin, entity.KindProjectProposal, workflow.StateRegistered, workflow.TriggerMarkCompleted, "u1", Allow},
		{"coo cannot assign manager", chiefOps, entity.KindProjectProposal, workflow.StatePendingDevManager, workflow.TriggerAssignManager, "u1", DenyRole},
		{"anonymous owner match refused", entity.Actor{}, entity.KindPaymentRequest, workflow.StateDraft, workflow.TriggerEdit, "", DenyOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Decide(tt.actor, tt.kind, tt.state, tt.trigger, tt.owner))
		})
	}
}

func TestCheckMapsToTaxonomy(t *testing.T) {
	r := Default()

	err := r.Check("reject", accountant, entity.KindGoodsRequest, workflow.StateRejected, workflow.TriggerReject, "u1")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	err = r.Check("submit", otherUser, entity.KindGoodsRequest, workflow.StateDraft, workflow.TriggerSubmit, "u1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = r.Check("inquiries", requester, entity.KindGoodsRequest, workflow.StatePendingProcurement, workflow.TriggerAddInquiries, "u1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	assert.NoError(t, r.Check("submit", requester, entity.KindGoodsRequest, workflow.StateDraft, workflow.TriggerSubmit, "u1"))
}

func TestAllowed(t *testing.T) {
	r := Default()

	assert.Equal(t,
		[]workflow.Trigger{workflow.TriggerEdit, workflow.TriggerSubmit},
		r.Allowed(requester, entity.KindGoodsRequest, workflow.StateDraft, "u1"))

	assert.Empty(t, r.Allowed(otherUser, entity.KindGoodsRequest, workflow.StateDraft, "u1"))

	assert.Equal(t,
		[]workflow.Trigger{workflow.TriggerAddReceipt, workflow.TriggerConfirmReceiptProcurement, workflow.TriggerReject},
		r.Allowed(buyer, entity.KindGoodsRequest, workflow.StatePendingReceipt, "u1"))

	assert.Empty(t, r.Allowed(admin, entity.KindGoodsRequest, workflow.StateCompleted, "u1"))
}

func TestCanView(t *testing.T) {
	r := Default()
	goods := &entity.GoodsRequest{RequesterID: "u1"}
	proposal := &entity.ProjectProposal{ProposerID: "u1", FeasibilityManagerID: "u2"}

	assert.True(t, r.CanView(requester, goods))
	assert.False(t, r.CanView(otherUser, goods))
	assert.True(t, r.CanView(buyer, goods))
	assert.False(t, r.CanView(chiefOps, goods))

	assert.True(t, r.CanView(otherUser, proposal), "feasibility manager participates")
	assert.True(t, r.CanView(chiefOps, proposal))
	assert.False(t, r.CanView(buyer, proposal))

	assert.True(t, r.ViewsAll(accountant, entity.KindPaymentRequest))
	assert.False(t, r.ViewsAll(buyer, entity.KindPaymentRequest))
}

func TestCanSeePrices(t *testing.T) {
	r := Default()

	assert.False(t, r.CanSee(requester, entity.KindGoodsRequest, FieldPrices))
	assert.True(t, r.CanSee(requesterPM, entity.KindGoodsRequest, FieldPrices))
	assert.True(t, r.CanSee(buyer, entity.KindGoodsRequest, FieldPrices))
	assert.True(t, r.CanSee(chiefOps, entity.KindGoodsRequest, FieldPrices))
	assert.True(t, r.CanSee(requester, entity.KindPaymentRequest, FieldPrices))
}

func TestNewResolverPanicsOnDuplicate(t *testing.T) {
	rule := Rule{Kind: entity.KindGoodsRequest, State: workflow.StateDraft, Trigger: workflow.TriggerSubmit, Owner: true}
	assert.Panics(t, func() { NewResolver([]Rule{rule, rule}, ReadTable{}) })
}
