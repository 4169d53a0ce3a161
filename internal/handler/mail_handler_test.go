package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/phone-slot-api/internal/dto"
	"github.com/noah-isme/phone-slot-api/internal/service"
)

type senderStub struct {
	sent []*sgmail.SGMailV3
	err  error
}

func (s *senderStub) Send(email *sgmail.SGMailV3) (*rest.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, email)
	return &rest.Response{StatusCode: 202}, nil
}

func newMailHandler(sender service.MailSender) *MailHandler {
	svc := service.NewMailService(sender, service.MailConfig{
		FromName:  "Phone Collection App",
		FromEmail: "noreply@example.edu",
	}, nil, nil)
	return NewMailHandler(svc)
}

func mailPayload(recipient string) []byte {
	grade := 9
	id := "s-1"
	payload, _ := json.Marshal(dto.MailReportRequest{
		Recipient: recipient,
		StaffName: "Ms. Cho",
		Students: []dto.MailReportStudent{
			{StudentID: &id, FullName: "Dana Reyes", Grade: &grade, SlotID: "A1"},
		},
	})
	return payload
}

func TestMailHandlerSend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sender := &senderStub{}
	handler := newMailHandler(sender)

	c, w := newGinContext(http.MethodPost, "/report-email", mailPayload("dean@example.edu"))
	handler.Send(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sender.sent, 1)
}

func TestMailHandlerRejectsInvalidRecipient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sender := &senderStub{}
	handler := newMailHandler(sender)

	c, w := newGinContext(http.MethodPost, "/report-email", mailPayload("not-an-email"))
	handler.Send(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, sender.sent)
}

func TestMailHandlerRejectsEmptyStudents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newMailHandler(&senderStub{})

	payload, _ := json.Marshal(dto.MailReportRequest{Recipient: "dean@example.edu"})
	c, w := newGinContext(http.MethodPost, "/report-email", payload)
	handler.Send(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMailHandlerTransportFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newMailHandler(&senderStub{err: errors.New("connection refused")})

	c, w := newGinContext(http.MethodPost, "/report-email", mailPayload("dean@example.edu"))
	handler.Send(c)

	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestMailMethodNotAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newGinContext(http.MethodGet, "/report-email", nil)
	MethodNotAllowed(c)

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
