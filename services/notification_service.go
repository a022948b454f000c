package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"

	"tournament-registration-system/config"
	"tournament-registration-system/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Mailer is the transactional email capability. utils.SESMailer implements it in
// production; tests substitute a fake.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NotificationService relays contact-form messages to the organization inbox and
// sends registration confirmations to paying teams.
type NotificationService struct {
	mailer Mailer
	inbox  string
}

func NewNotificationService(mailer Mailer, cfg *config.Config) *NotificationService {
	return &NotificationService{mailer: mailer, inbox: cfg.ContactInbox}
}

var contactTemplate = template.Must(template.New("contact").Parse(`
<h2>New contact form submission</h2>
<p><strong>From:</strong> {{.Name}} ({{.Email}})</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<hr>
<p>{{.Message}}</p>
`))

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`
<h2>Registration confirmed</h2>
<p>Hi {{.ContactPerson}},</p>
<p>Your team <strong>{{.TeamName}}</strong> is registered for <strong>{{.TournamentName}}</strong>.</p>
<p>Amount paid: <strong>{{.Amount}}</strong></p>
<p>We will be in touch with the match schedule closer to the tournament. See you on the pitch!</p>
`))

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SubmitContactForm handles POST /contact. The body is rendered through
// html/template so user input is always escaped.
func (s *NotificationService) SubmitContactForm(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name, email, and message are required"})
	}
	if req.Subject == "" {
		req.Subject = "Website contact form"
	}

	var body bytes.Buffer
	if err := contactTemplate.Execute(&body, req); err != nil {
		log.Printf("❌ [CONTACT] Failed to render message from %s: %v", req.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to build message"})
	}

	subject := fmt.Sprintf("[Contact] %s", req.Subject)
	if err := s.mailer.Send(c.Context(), s.inbox, subject, body.String()); err != nil {
		log.Printf("❌ [CONTACT] Relay from %s failed: %v", req.Email, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to send message"})
	}

	log.Printf("📨 [CONTACT] Message from %s relayed to %s", req.Email, s.inbox)
	return c.JSON(fiber.Map{"sent": true})
}

// SendRegistrationConfirmation emails the registrant after a verified payment.
// The webhook treats failures here as non-fatal.
func (s *NotificationService) SendRegistrationConfirmation(ctx context.Context, reg *models.Registration, tournamentName string) error {
	p := message.NewPrinter(language.AmericanEnglish)

	data := struct {
		ContactPerson  string
		TeamName       string
		TournamentName string
		Amount         string
	}{
		ContactPerson:  reg.ContactPerson,
		TeamName:       reg.TeamName,
		TournamentName: tournamentName,
		Amount:         p.Sprintf("$%.2f", reg.AmountPaid),
	}
	if data.ContactPerson == "" {
		data.ContactPerson = reg.TeamName
	}

	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	subject := fmt.Sprintf("Registration confirmed: %s", tournamentName)
	return s.mailer.Send(ctx, reg.Email, subject, body.String())
}
