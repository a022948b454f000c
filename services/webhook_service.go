package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"tournament-registration-system/config"
	"tournament-registration-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

// RegistrationStore is the durable write path behind the webhook.
type RegistrationStore interface {
	// BySessionID returns (nil, nil) when no registration exists for the session.
	BySessionID(sessionID string) (*models.Registration, error)
	Create(reg *models.Registration) error
	TournamentName(tournamentID string) (string, error)
}

// ConfirmationSender notifies a registrant after a successful insert. Failures
// here must never fail the webhook response.
type ConfirmationSender interface {
	SendRegistrationConfirmation(ctx context.Context, reg *models.Registration, tournamentName string) error
}

// WebhookService receives Stripe payment events. Signature verification is the
// authentication mechanism for this endpoint: it is publicly reachable and the
// payload is otherwise attacker-controlled, so only verified events may cause a
// database write.
type WebhookService struct {
	store         RegistrationStore
	notifier      ConfirmationSender
	signingSecret string

	// Injected so tests can exercise the handler with their own signing secret
	// or a stubbed verifier.
	verify func(payload []byte, sigHeader, secret string) (stripe.Event, error)
}

func NewWebhookService(db *gorm.DB, notifier ConfirmationSender, cfg *config.Config) *WebhookService {
	return &WebhookService{
		store:         gormRegistrationStore{db: db},
		notifier:      notifier,
		signingSecret: cfg.StripeWebhookSecret,
		verify:        verifyStripeEvent,
	}
}

func verifyStripeEvent(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// HandleStripeWebhook handles POST /webhooks/stripe.
//
// A request moves RECEIVED → VERIFIED → PROCESSED → RESPONDED, or is REJECTED at
// the verification boundary. Stripe retries non-2xx deliveries, so processing
// failures return an error response and the event is redelivered; the session-id
// lookup (plus the unique index behind it) keeps redelivery from inserting twice.
func (s *WebhookService) HandleStripeWebhook(c *fiber.Ctx) error {
	sigHeader := c.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		log.Printf("🚫 [WEBHOOK] Missing Stripe-Signature header")
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: missing Stripe-Signature header")
	}

	event, err := s.verify(c.Body(), sigHeader, s.signingSecret)
	if err != nil {
		log.Printf("🚫 [WEBHOOK] Signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: invalid signature")
	}

	if event.Type != "checkout.session.completed" {
		log.Printf("➡️  [WEBHOOK] Ignoring event %s of type %s", event.ID, event.Type)
		return c.JSON(fiber.Map{"received": true})
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		log.Printf("❌ [WEBHOOK] Failed to decode checkout session from event %s: %v", event.ID, err)
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: malformed checkout session payload")
	}

	intent, err := models.IntentFromMetadata(sess.Metadata)
	if err != nil {
		// A session without our metadata was created outside the expected flow.
		log.Printf("❌ [WEBHOOK] Session %s rejected: %v", sess.ID, err)
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: " + err.Error())
	}

	existing, err := s.store.BySessionID(sess.ID)
	if err != nil {
		log.Printf("❌ [WEBHOOK] Idempotency lookup failed for session %s: %v", sess.ID, err)
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: registration lookup failed")
	}
	if existing != nil {
		log.Printf("🔁 [WEBHOOK] Session %s already recorded as registration %s — skipping", sess.ID, existing.ID)
		return c.JSON(fiber.Map{"received": true, "status": "duplicate"})
	}

	reg := &models.Registration{
		ID:              uuid.NewString(),
		TournamentID:    intent.TournamentID,
		TeamName:        intent.TeamName,
		ContactPerson:   intent.ContactPerson,
		Email:           intent.Email,
		Phone:           intent.Phone,
		AgeGroup:        intent.AgeGroup,
		PaymentStatus:   "paid",
		AmountPaid:      intent.AmountPaid,
		StripeSessionID: sess.ID,
	}

	if err := s.store.Create(reg); err != nil {
		if isDuplicateKeyError(err) {
			// A concurrent delivery of the same event won the insert race.
			log.Printf("🔁 [WEBHOOK] Session %s inserted by a concurrent delivery — skipping", sess.ID)
			return c.JSON(fiber.Map{"received": true, "status": "duplicate"})
		}
		log.Printf("❌ [WEBHOOK] Failed to insert registration for session %s: %v", sess.ID, err)
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: failed to record registration")
	}

	tournamentName, err := s.store.TournamentName(intent.TournamentID)
	if err != nil {
		log.Printf("⚠️  [WEBHOOK] Could not load tournament name for %s: %v", intent.TournamentID, err)
		tournamentName = "the tournament"
	}

	// Registration durability is prioritized over notification delivery: a
	// failed email is logged and the webhook still acknowledges the event.
	if err := s.notifier.SendRegistrationConfirmation(c.Context(), reg, tournamentName); err != nil {
		log.Printf("⚠️  [WEBHOOK] Confirmation email to %s failed: %v", reg.Email, err)
	}

	log.Printf("✅ [WEBHOOK] Registration %s recorded for team %q in %q (session %s)",
		reg.ID, reg.TeamName, tournamentName, sess.ID)
	return c.JSON(fiber.Map{"received": true})
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "23505")
}
