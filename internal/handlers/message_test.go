package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/repository"
	"github.com/evenground/evenground-api/internal/services"
	"github.com/evenground/evenground-api/internal/testutil"
	"github.com/evenground/evenground-api/internal/toneguard"
	"github.com/evenground/evenground-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupMessageTest(t *testing.T) (*testutil.MockMessageService, *MessageHandler) {
	t.Helper()
	mockMessageService := new(testutil.MockMessageService)
	return mockMessageService, NewMessageHandler(mockMessageService, discardLogger())
}

func TestMessageHandler_Send_Sent(t *testing.T) {
	mockMessageService, handler := setupMessageTest(t)

	userID := uuid.New()
	requestID := uuid.New()
	msg := &models.Message{ID: uuid.New(), RequestID: requestID, UserID: userID, Content: "Sounds good", CreatedAt: time.Now()}
	mockMessageService.On("Send", mock.Anything, userID, requestID, "Sounds good", "", "").Return(&services.SendResult{
		Status:  services.SendStatusSent,
		Message: msg,
		Verdict: toneguard.Verdict{Risk: toneguard.RiskLow},
	}, nil)

	app := newAuthedApp(http.MethodPost, "/requests/:id/messages", handler.Send)
	rec := testutil.NewHTTPTestClient(t, app).As(userID, "sam@example.com").
		POST("/requests/"+requestID.String()+"/messages", dto.SendMessageRequest{Content: "Sounds good"})

	testutil.AssertStatus(t, rec, http.StatusCreated)

	var response dto.SendMessageResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, "sent", response.Status)
	require.NotNil(t, response.Message)
	assert.Equal(t, msg.ID, response.Message.ID)
	assert.Equal(t, "Sounds good", response.Message.Content)

	mockMessageService.AssertExpectations(t)
}

func TestMessageHandler_Send_Flagged(t *testing.T) {
	mockMessageService, handler := setupMessageTest(t)

	userID := uuid.New()
	requestID := uuid.New()
	mockMessageService.On("Send", mock.Anything, userID, requestID, "You never show up", "", "").Return(&services.SendResult{
		Status: services.SendStatusFlagged,
		Verdict: toneguard.Verdict{
			Risk:    toneguard.RiskHigh,
			Reason:  "Accusatory",
			Rewrite: "Could we talk about pickup times?",
		},
		Original: "You never show up",
	}, nil)

	app := newAuthedApp(http.MethodPost, "/requests/:id/messages", handler.Send)
	rec := testutil.NewHTTPTestClient(t, app).As(userID, "sam@example.com").
		POST("/requests/"+requestID.String()+"/messages", dto.SendMessageRequest{Content: "You never show up"})

	testutil.AssertStatus(t, rec, http.StatusOK)

	var response dto.SendMessageResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, "flagged", response.Status)
	assert.Nil(t, response.Message)
	assert.Equal(t, "high", response.Risk)
	assert.Equal(t, "Could we talk about pickup times?", response.Rewrite)
	assert.Equal(t, "You never show up", response.Original)
}

func TestMessageHandler_Send_Choice(t *testing.T) {
	mockMessageService, handler := setupMessageTest(t)

	userID := uuid.New()
	requestID := uuid.New()
	msg := &models.Message{ID: uuid.New(), RequestID: requestID, UserID: userID, Content: "Could we talk?"}
	mockMessageService.On("Send", mock.Anything, userID, requestID, "You never show up", "rewrite", "Could we talk?").
		Return(&services.SendResult{Status: services.SendStatusSent, Message: msg}, nil)

	app := newAuthedApp(http.MethodPost, "/requests/:id/messages", handler.Send)
	rec := testutil.NewHTTPTestClient(t, app).As(userID, "sam@example.com").
		POST("/requests/"+requestID.String()+"/messages", dto.SendMessageRequest{
			Content: "You never show up",
			Choice:  "rewrite",
			Rewrite: "Could we talk?",
		})

	testutil.AssertStatus(t, rec, http.StatusCreated)
	mockMessageService.AssertExpectations(t)
}

func TestMessageHandler_Send_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"empty", services.ErrEmptyMessage, http.StatusBadRequest},
		{"too long", services.ErrMessageTooLong, http.StatusBadRequest},
		{"bad choice", services.ErrInvalidChoice, http.StatusBadRequest},
		{"other family", repository.ErrRequestNotFound, http.StatusNotFound},
		{"no family", services.ErrNoFamily, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockMessageService, handler := setupMessageTest(t)
			mockMessageService.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(nil, tc.err)

			app := newAuthedApp(http.MethodPost, "/requests/:id/messages", handler.Send)
			rec := testutil.NewHTTPTestClient(t, app).As(uuid.New(), "sam@example.com").
				POST("/requests/"+uuid.New().String()+"/messages", dto.SendMessageRequest{Content: "x"})

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestMessageHandler_List(t *testing.T) {
	mockMessageService, handler := setupMessageTest(t)

	userID := uuid.New()
	requestID := uuid.New()
	mockMessageService.On("List", mock.Anything, userID, requestID).Return([]models.Message{
		{ID: uuid.New(), RequestID: requestID, UserID: userID, Content: "first"},
		{ID: uuid.New(), RequestID: requestID, UserID: userID, Content: "second"},
	}, nil)

	app := newAuthedApp(http.MethodGet, "/requests/:id/messages", handler.List)
	client := testutil.NewHTTPTestClient(t, app).As(userID, "sam@example.com")

	rec := client.GET("/requests/" + requestID.String() + "/messages")
	testutil.AssertStatus(t, rec, http.StatusOK)

	var response []dto.MessageResponse
	testutil.ParseJSON(t, rec, &response)
	require.Len(t, response, 2)
	assert.Equal(t, "first", response[0].Content)

	rec = client.GET("/requests/not-a-uuid/messages")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mockMessageService.AssertExpectations(t)
}

func TestMessageHandler_ToneCheck(t *testing.T) {
	mockMessageService, handler := setupMessageTest(t)

	mockMessageService.On("CheckTone", mock.Anything, "You never listen").Return(toneguard.Verdict{
		Risk:    toneguard.RiskMedium,
		Reason:  "Generalizing",
		Rewrite: "I'd like us to talk this through.",
	}, nil)
	mockMessageService.On("CheckTone", mock.Anything, "").Return(toneguard.Verdict{}, services.ErrEmptyMessage)

	app := newAuthedApp(http.MethodPost, "/tone-check", handler.ToneCheck)
	client := testutil.NewHTTPTestClient(t, app).As(uuid.New(), "sam@example.com")

	rec := client.POST("/tone-check", dto.ToneCheckRequest{Text: "You never listen"})
	testutil.AssertStatus(t, rec, http.StatusOK)

	var response dto.ToneCheckResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, "medium", response.Risk)
	assert.Equal(t, "Generalizing", response.Reason)

	rec = client.POST("/tone-check", dto.ToneCheckRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mockMessageService.AssertExpectations(t)
}
