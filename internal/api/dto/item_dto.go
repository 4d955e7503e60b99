package dto

import (
	"time"

	"github.com/spec-kit/support-router/internal/domain"
)

// WorkItemPayload carries a full work item state over the wire. Update
// batches send the new state plus the previous state per item.
type WorkItemPayload struct {
	ID                 string              `json:"id"`
	Subject            string              `json:"subject"`
	Description        string              `json:"description"`
	Type               domain.ItemType     `json:"type"`
	Priority           domain.Priority     `json:"priority"`
	Status             domain.ItemStatus   `json:"status"`
	OwnerID            string              `json:"owner_id"`
	EscalationLevel    int                 `json:"escalation_level"`
	Origin             string              `json:"origin"`
	SuppliedChannel    string              `json:"supplied_channel"`
	CustomerTier       domain.CustomerTier `json:"customer_tier"`
	BusinessImpact     string              `json:"business_impact"`
	RequiredProductTag string              `json:"required_product_tag"`
	CreatedAt          *time.Time          `json:"created_at,omitempty"`
	SLAStartTime       *time.Time          `json:"sla_start_time,omitempty"`
	AssignmentDate     *time.Time          `json:"assignment_date,omitempty"`
	FirstResponseTime  *time.Time          `json:"first_response_time,omitempty"`
	ResolutionTime     *time.Time          `json:"resolution_time,omitempty"`
	LastOwnerChangeAt  *time.Time          `json:"last_owner_change_at,omitempty"`
	PreviousOwnerID    string              `json:"previous_owner_id,omitempty"`
	EscalationDate     *time.Time          `json:"escalation_date,omitempty"`
	EscalationReason   string              `json:"escalation_reason,omitempty"`
}

// CreateItemsRequest payload.
type CreateItemsRequest struct {
	Items []WorkItemPayload `json:"items"`
}

// UpdateItemsRequest carries new states and the matching previous states.
type UpdateItemsRequest struct {
	Items    []WorkItemPayload `json:"items"`
	Previous []WorkItemPayload `json:"previous"`
}

// EscalateRequest payload for manual escalation.
type EscalateRequest struct {
	Reason string `json:"reason"`
}

// ItemSummary response.
type ItemSummary struct {
	ID                  string            `json:"id"`
	Subject             string            `json:"subject"`
	Type                domain.ItemType   `json:"type"`
	Priority            domain.Priority   `json:"priority"`
	Status              domain.ItemStatus `json:"status"`
	OwnerID             string            `json:"owner_id"`
	EscalationLevel     int               `json:"escalation_level"`
	SLAStartTime        time.Time         `json:"sla_start_time"`
	ResponseSLATarget   time.Time         `json:"response_sla_target"`
	ResolutionSLATarget time.Time         `json:"resolution_sla_target"`
	AssignmentDate      *time.Time        `json:"assignment_date,omitempty"`
}

// EscalationOutcomeResponse reports a manual escalation result.
type EscalationOutcomeResponse struct {
	ItemID  string `json:"item_id"`
	Outcome string `json:"outcome"`
}

// ToDomain converts the payload into a domain work item.
func (p WorkItemPayload) ToDomain() *domain.WorkItem {
	item := &domain.WorkItem{
		ID:                 p.ID,
		Subject:            p.Subject,
		Description:        p.Description,
		Type:               p.Type,
		Priority:           p.Priority,
		Status:             p.Status,
		OwnerID:            p.OwnerID,
		EscalationLevel:    p.EscalationLevel,
		Origin:             p.Origin,
		SuppliedChannel:    p.SuppliedChannel,
		CustomerTier:       p.CustomerTier,
		BusinessImpact:     p.BusinessImpact,
		RequiredProductTag: p.RequiredProductTag,
		AssignmentDate:     p.AssignmentDate,
		FirstResponseTime:  p.FirstResponseTime,
		ResolutionTime:     p.ResolutionTime,
		LastOwnerChangeAt:  p.LastOwnerChangeAt,
		PreviousOwnerID:    p.PreviousOwnerID,
		EscalationDate:     p.EscalationDate,
		EscalationReason:   p.EscalationReason,
	}
	if p.CreatedAt != nil {
		item.CreatedAt = *p.CreatedAt
	}
	if p.SLAStartTime != nil {
		item.SLAStartTime = *p.SLAStartTime
	}
	return item
}

// SummaryFromDomain builds the response shape for an item.
func SummaryFromDomain(item *domain.WorkItem) ItemSummary {
	return ItemSummary{
		ID:                  item.ID,
		Subject:             item.Subject,
		Type:                item.Type,
		Priority:            item.Priority,
		Status:              item.Status,
		OwnerID:             item.OwnerID,
		EscalationLevel:     item.EscalationLevel,
		SLAStartTime:        item.SLAStartTime,
		ResponseSLATarget:   item.ResponseSLATarget,
		ResolutionSLATarget: item.ResolutionSLATarget,
		AssignmentDate:      item.AssignmentDate,
	}
}
