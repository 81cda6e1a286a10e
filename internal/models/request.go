package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusDeclined RequestStatus = "declined"
)

// DateLayout is the wire and storage format of request dates.
const DateLayout = "2006-01-02"

const MaxRequestTypeLength = 100

// RequestTypes are the types offered by the client. Other non-empty types are accepted.
var RequestTypes = []string{
	"Custody Swap",
	"Schedule Change",
	"Expense Approval",
	"Travel Request",
	"Other",
}

var (
	ErrInvalidTransition = errors.New("invalid request status transition")
	ErrInvalidDecision   = errors.New("decision must be approved or declined")
	ErrTypeRequired      = errors.New("type is required")
	ErrTypeTooLong       = errors.New("type is too long")
	ErrStartDateRequired = errors.New("start_date is required")
	ErrInvalidDate       = errors.New("dates must use YYYY-MM-DD")
	ErrEndBeforeStart    = errors.New("end_date must not be before start_date")
)

func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(strings.ToLower(strings.TrimSpace(s))) {
	case RequestStatusPending:
		return RequestStatusPending, true
	case RequestStatusApproved:
		return RequestStatusApproved, true
	case RequestStatusDeclined:
		return RequestStatusDeclined, true
	}
	return "", false
}

// ParseDecision accepts only the two terminal states.
func ParseDecision(s string) (RequestStatus, error) {
	status, ok := ParseRequestStatus(s)
	if !ok || !status.IsTerminal() {
		return "", ErrInvalidDecision
	}
	return status, nil
}

func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusDeclined
}

// CanTransitionTo reports whether s -> next is an edge of the lifecycle.
// pending is the only state with outgoing edges.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return s == RequestStatusPending && next.IsTerminal()
}

type Request struct {
	ID          uuid.UUID     `json:"id"`
	FamilyID    uuid.UUID     `json:"family_id"`
	RequestedBy uuid.UUID     `json:"requested_by"`
	Type        string        `json:"type"`
	Details     *string       `json:"details,omitempty"`
	Status      RequestStatus `json:"status"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	DecidedBy   *uuid.UUID    `json:"decided_by,omitempty"`
	DecidedAt   *time.Time    `json:"decided_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CheckDecision validates a decision by deciderID against the lifecycle rules.
func (r *Request) CheckDecision(deciderID uuid.UUID, next RequestStatus) error {
	if !next.IsTerminal() {
		return ErrInvalidDecision
	}
	if r.RequestedBy == deciderID {
		return ErrSelfDecision
	}
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, next)
	}
	return nil
}

// ErrSelfDecision is returned when the requester tries to decide their own request.
var ErrSelfDecision = errors.New("requester cannot decide their own request")

// NewRequest is validated input for creating a request.
type NewRequest struct {
	FamilyID    uuid.UUID
	RequestedBy uuid.UUID
	Type        string
	Details     *string
	StartDate   time.Time
	EndDate     *time.Time
}

// BuildNewRequest validates raw form values.
func BuildNewRequest(familyID, requesterID uuid.UUID, typ string, details *string, startDate string, endDate *string) (*NewRequest, error) {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return nil, ErrTypeRequired
	}
	if len(typ) > MaxRequestTypeLength {
		return nil, ErrTypeTooLong
	}

	startDate = strings.TrimSpace(startDate)
	if startDate == "" {
		return nil, ErrStartDateRequired
	}
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	nr := &NewRequest{
		FamilyID:    familyID,
		RequestedBy: requesterID,
		Type:        typ,
		StartDate:   start,
	}

	if details != nil {
		if d := strings.TrimSpace(*details); d != "" {
			nr.Details = &d
		}
	}

	if endDate != nil && strings.TrimSpace(*endDate) != "" {
		end, err := time.Parse(DateLayout, strings.TrimSpace(*endDate))
		if err != nil {
			return nil, ErrInvalidDate
		}
		if end.Before(start) {
			return nil, ErrEndBeforeStart
		}
		nr.EndDate = &end
	}

	return nr, nil
}

// UpcomingWindow returns the inclusive [today, today+days] date range for now.
func UpcomingWindow(now time.Time, days int) (time.Time, time.Time) {
	y, m, d := now.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, days)
}
