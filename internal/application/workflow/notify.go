package workflow

import (
	"context"
	"fmt"

	"github.com/garyjia/procurement-portal/internal/domain/entity"
	domainwf "github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// recipients names who hears about a trigger
type recipients struct {
	roles        []entity.Role
	owner        bool
	participants bool
}

var recipientTable = map[entity.Kind]map[domainwf.Trigger]recipients{
	entity.KindGoodsRequest: {
		domainwf.TriggerSubmit:            {roles: []entity.Role{entity.RoleProcurement}},
		domainwf.TriggerReturnInquiries:   {roles: []entity.Role{entity.RoleProcurement}},
		domainwf.TriggerAddInquiries:      {roles: []entity.Role{entity.RoleManagement}},
		domainwf.TriggerApproveInquiry:    {roles: []entity.Role{entity.RoleProcurement}},
		domainwf.TriggerAddReceipt:        {owner: true},
		domainwf.TriggerReceiptsCompleted: {roles: []entity.Role{entity.RoleProcurement}},
		domainwf.TriggerUploadInvoice:     {roles: []entity.Role{entity.RoleFinancial}},
		domainwf.TriggerApproveFinancial:  {owner: true},
		domainwf.TriggerReject:            {owner: true},
		domainwf.TriggerRejectInquiries:   {owner: true},
	},
	entity.KindPaymentRequest: {
		domainwf.TriggerSubmit:            {roles: []entity.Role{entity.RoleFinancial}},
		domainwf.TriggerApproveDevManager: {roles: []entity.Role{entity.RoleFinancial}},
		domainwf.TriggerApproveReview:     {roles: []entity.Role{entity.RoleDevManager}},
		domainwf.TriggerReject:            {owner: true},
		domainwf.TriggerProcessPayment:    {owner: true},
	},
	entity.KindProjectProposal: {
		domainwf.TriggerSubmit:        {roles: []entity.Role{entity.RoleCOO}},
		domainwf.TriggerCOOApprove:    {roles: []entity.Role{entity.RoleDevManager}},
		domainwf.TriggerCOOReject:     {owner: true},
		domainwf.TriggerAssignManager: {roles: []entity.Role{entity.RoleProjectControl}, participants: true},
		domainwf.TriggerRegister:      {owner: true, participants: true},
		domainwf.TriggerMarkCompleted: {owner: true},
	},
}

var kindLabels = map[entity.Kind]string{
	entity.KindGoodsRequest:    "Goods request",
	entity.KindPaymentRequest:  "Payment request",
	entity.KindProjectProposal: "Project proposal",
}

func notificationMessage(doc entity.Document) string {
	return fmt.Sprintf("%s %s is now %s", kindLabels[doc.Kind()], doc.Number(), doc.Base().Status)
}

// enqueue stores pending notifications for the fired triggers and returns their ids.
// It must run inside the transition transaction.
func (e *Engine) enqueue(ctx context.Context, doc entity.Document, fired ...domainwf.Trigger) ([]string, error) {
	var (
		ids       []string
		seenUser  = make(map[string]bool)
		seenRole  = make(map[entity.Role]bool)
		message   = notificationMessage(doc)
		createdAt = e.now()
	)

	add := func(userID string, role entity.Role) error {
		n := &entity.Notification{
			ID:             e.newID(),
			EntityKind:     doc.Kind(),
			RequestID:      doc.Base().ID,
			RequestNumber:  doc.Number(),
			Message:        message,
			RecipientID:    userID,
			RecipientRole:  role,
			DeliveryStatus: entity.DeliveryStatusPending,
			CreatedAt:      createdAt,
		}
		if err := e.repos.Notifications.Create(ctx, n); err != nil {
			return err
		}
		ids = append(ids, n.ID)
		return nil
	}

	addUser := func(userID string) error {
		if userID == "" || seenUser[userID] {
			return nil
		}
		seenUser[userID] = true
		return add(userID, "")
	}

	for _, trigger := range fired {
		rule, ok := recipientTable[doc.Kind()][trigger]
		if !ok {
			continue
		}

		for _, role := range rule.roles {
			if seenRole[role] {
				continue
			}
			seenRole[role] = true

			users, err := e.repos.Users.ListByRole(ctx, role)
			if err != nil {
				return nil, err
			}
			if len(users) == 0 {
				if err := add("", role); err != nil {
					return nil, err
				}
				continue
			}
			for _, u := range users {
				if err := addUser(u.ID); err != nil {
					return nil, err
				}
			}
		}

		if rule.owner {
			if err := addUser(doc.OwnerID()); err != nil {
				return nil, err
			}
		}
		if rule.participants {
			for _, id := range doc.Participants() {
				if err := addUser(id); err != nil {
					return nil, err
				}
			}
		}
	}

	return ids, nil
}
