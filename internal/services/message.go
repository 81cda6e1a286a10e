package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/sse"
	"github.com/evenground/evenground-api/internal/toneguard"
	"github.com/google/uuid"
)

const (
	ChoiceNone     = ""
	ChoiceOriginal = "original"
	ChoiceRewrite  = "rewrite"

	SendStatusSent    = "sent"
	SendStatusFlagged = "flagged"
)

const MaxMessageLength = 4000

// SendResult is either a stored message or a flagged verdict; a flagged
// send stores nothing.
type SendResult struct {
	Status   string
	Message  *models.Message
	Verdict  toneguard.Verdict
	Original string
}

type MessageService struct {
	families  FamilyStore
	requests  RequestStore
	messages  MessageStore
	tone      ToneChecker
	publisher EventPublisher
}

func NewMessageService(families FamilyStore, requests RequestStore, messages MessageStore, tone ToneChecker, publisher EventPublisher) *MessageService {
	return &MessageService{
		families:  families,
		requests:  requests,
		messages:  messages,
		tone:      tone,
		publisher: publisherOrNop(publisher),
	}
}

func (s *MessageService) requestInFamily(ctx context.Context, userID, requestID uuid.UUID) (*models.Request, error) {
	family, err := familyOf(ctx, s.families, userID)
	if err != nil {
		return nil, err
	}
	return s.requests.GetByID(ctx, requestID, family.ID)
}

// Send posts a message to a request thread through the tone gate. With no
// choice the text is classified first and a flagged verdict is returned
// instead of storing anything. "original" stores the text as written and
// "rewrite" stores the caller's rewrite.
func (s *MessageService) Send(ctx context.Context, userID, requestID uuid.UUID, content, choice, rewrite string) (*SendResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if len(content) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	req, err := s.requestInFamily(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}

	var text string
	result := &SendResult{Status: SendStatusSent}

	switch strings.ToLower(strings.TrimSpace(choice)) {
	case ChoiceNone:
		v := s.tone.Check(ctx, content)
		if v.Risk.Flagged() {
			return &SendResult{Status: SendStatusFlagged, Verdict: v, Original: content}, nil
		}
		result.Verdict = v
		text = content
	case ChoiceOriginal:
		text = content
	case ChoiceRewrite:
		text = strings.TrimSpace(rewrite)
		if text == "" {
			text = content
		}
	default:
		return nil, ErrInvalidChoice
	}

	msg, err := s.messages.Create(ctx, requestID, userID, text)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(req.FamilyID, sse.EventMessageCreated, map[string]string{
		"request_id": requestID.String(),
		"message_id": msg.ID.String(),
		"user_id":    userID.String(),
	})

	result.Message = msg
	return result, nil
}

func (s *MessageService) List(ctx context.Context, userID, requestID uuid.UUID) ([]models.Message, error) {
	if _, err := s.requestInFamily(ctx, userID, requestID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// CheckTone classifies text without storing it. It never fails for
// classifier reasons.
func (s *MessageService) CheckTone(ctx context.Context, text string) (toneguard.Verdict, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return toneguard.Verdict{}, ErrEmptyMessage
	}
	return s.tone.Check(ctx, text), nil
}
