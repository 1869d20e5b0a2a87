package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrDelivery is returned when the mail transport rejects or fails a send
var ErrDelivery = errors.New("failed to deliver email")

// DeliveryPolicy controls what happens when a send fails
type DeliveryPolicy string

const (
	// PolicyStrict propagates delivery errors to the caller
	PolicyStrict DeliveryPolicy = "strict"
	// PolicyBestEffort logs delivery errors and returns normally
	PolicyBestEffort DeliveryPolicy = "best_effort"
)

// Attachment is an optional binary attachment for an outbound message
type Attachment struct {
	Filename string
	Data     []byte
	MimeType string
}

// Message is one outbound email
type Message struct {
	To         string
	ToName     string
	Subject    string
	PlainBody  string
	HTMLBody   string
	Attachment *Attachment
}

// Sender is implemented by anything able to deliver one message in a
// single synchronous attempt
type Sender interface {
	Send(msg *Message) error
}

// sendClient is the part of the SendGrid client the service uses
type sendClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// EmailService sends email through SendGrid
type EmailService struct {
	client    sendClient
	fromEmail string
	fromName  string
	policy    DeliveryPolicy
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")

	policy := DeliveryPolicy(os.Getenv("EMAIL_DELIVERY_POLICY"))
	if policy != PolicyStrict && policy != PolicyBestEffort {
		policy = PolicyStrict
	}

	client := sendgrid.NewSendClient(apiKey)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		policy:    policy,
	}
}

// Send makes one delivery attempt, no retry and no queueing. Under the
// strict policy failures are returned as ErrDelivery; under best-effort
// they are logged and swallowed.
func (s *EmailService) Send(msg *Message) error {
	err := s.attempt(msg)
	if err == nil {
		return nil
	}
	if s.policy == PolicyBestEffort {
		log.Printf("Email to %s not delivered (best-effort): %v", msg.To, err)
		return nil
	}
	return err
}

func (s *EmailService) attempt(msg *Message) error {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.fromName, s.fromEmail))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.To))
	m.AddPersonalizations(p)

	if msg.PlainBody != "" {
		m.AddContent(mail.NewContent("text/plain", msg.PlainBody))
	}
	if msg.HTMLBody != "" {
		m.AddContent(mail.NewContent("text/html", msg.HTMLBody))
	}

	if msg.Attachment != nil {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(msg.Attachment.Data))
		a.SetType(msg.Attachment.MimeType)
		a.SetFilename(msg.Attachment.Filename)
		a.SetDisposition("attachment")
		m.AddAttachment(a)
	}

	response, err := s.client.Send(m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("%w: transport returned %d", ErrDelivery, response.StatusCode)
	}
	return nil
}
