package dto

import (
	"time"

	"github.com/google/uuid"
)

// Dates on requests are YYYY-MM-DD strings.
type CreateRequestRequest struct {
	Type      string  `json:"type"`
	Details   *string `json:"details,omitempty"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
}

type RequestResponse struct {
	ID          uuid.UUID  `json:"id"`
	FamilyID    uuid.UUID  `json:"family_id"`
	RequestedBy uuid.UUID  `json:"requested_by"`
	Type        string     `json:"type"`
	Details     *string    `json:"details,omitempty"`
	Status      string     `json:"status"`
	StartDate   string     `json:"start_date"`
	EndDate     *string    `json:"end_date,omitempty"`
	DecidedBy   *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type DecisionRequest struct {
	Decision string `json:"decision"`
}

type RequestTypesResponse struct {
	Types []string `json:"types"`
}

type DashboardResponse struct {
	Family        FamilyResponse    `json:"family"`
	NeedsApproval []RequestResponse `json:"needs_approval"`
	Upcoming      []RequestResponse `json:"upcoming"`
	Recent        []RequestResponse `json:"recent"`
}
