package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"tournament-registration-system/models"

	"github.com/gofiber/fiber/v2"
)

const testSigningSecret = "whsec_test_secret"

type fakeRegistrationStore struct {
	bySession map[string]*models.Registration
	created   []*models.Registration

	lookupErr error
	createErr error
}

func newFakeStore() *fakeRegistrationStore {
	return &fakeRegistrationStore{bySession: map[string]*models.Registration{}}
}

func (f *fakeRegistrationStore) BySessionID(sessionID string) (*models.Registration, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.bySession[sessionID], nil
}

func (f *fakeRegistrationStore) Create(reg *models.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.bySession[reg.StripeSessionID]; ok {
		return errors.New(`duplicate key value violates unique constraint "idx_registrations_stripe_session_id"`)
	}
	f.bySession[reg.StripeSessionID] = reg
	f.created = append(f.created, reg)
	return nil
}

func (f *fakeRegistrationStore) TournamentName(tournamentID string) (string, error) {
	return "Spring Cup", nil
}

type fakeNotifier struct {
	sent    []string // recipient emails
	sendErr error
}

func (f *fakeNotifier) SendRegistrationConfirmation(ctx context.Context, reg *models.Registration, tournamentName string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, reg.Email)
	return nil
}

func newWebhookTestApp(store RegistrationStore, notifier ConfirmationSender) *fiber.App {
	svc := &WebhookService{
		store:         store,
		notifier:      notifier,
		signingSecret: testSigningSecret,
		verify:        verifyStripeEvent,
	}
	app := fiber.New()
	app.Post("/webhooks/stripe", svc.HandleStripeWebhook)
	return app
}

// signPayload produces a valid Stripe-Signature header for the payload, using
// the same scheme the webhook package verifies (v1 = HMAC-SHA256 over "t.payload").
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func completedEventPayload(t *testing.T, sessionID string, metadata map[string]string) []byte {
	t.Helper()
	event := map[string]any{
		"id":     "evt_test_1",
		"object": "event",
		"type":   "checkout.session.completed",
		"data": map[string]any{
			"object": map[string]any{
				"id":       sessionID,
				"object":   "checkout.session",
				"metadata": metadata,
			},
		},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

func validMetadata() map[string]string {
	return map[string]string{
		models.MetaTournamentID:  "t1",
		models.MetaTeamName:      "Falcons",
		models.MetaContactPerson: "Alex Doe",
		models.MetaEmail:         "contact@example.com",
		models.MetaPhone:         "555-0100",
		models.MetaAgeGroup:      "U11",
		models.MetaAmountPaid:    "50",
	}
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, sigHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	store := newFakeStore()
	app := newWebhookTestApp(store, &fakeNotifier{})

	status, body := postWebhook(t, app, completedEventPayload(t, "cs_1", validMetadata()), "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", status, body)
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no registrations, got %d", len(store.created))
	}
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	store := newFakeStore()
	app := newWebhookTestApp(store, &fakeNotifier{})

	payload := completedEventPayload(t, "cs_1", validMetadata())
	status, _ := postWebhook(t, app, payload, signPayload(payload, "whsec_wrong_secret"))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no registrations, got %d", len(store.created))
	}
}

func TestWebhookRejectsTamperedPayload(t *testing.T) {
	store := newFakeStore()
	app := newWebhookTestApp(store, &fakeNotifier{})

	payload := completedEventPayload(t, "cs_1", validMetadata())
	sig := signPayload(payload, testSigningSecret)
	tampered := bytes.Replace(payload, []byte("Falcons"), []byte("Impostors"), 1)

	status, _ := postWebhook(t, app, tampered, sig)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no registrations, got %d", len(store.created))
	}
}

func TestWebhookIgnoresUnhandledEventTypes(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	app := newWebhookTestApp(store, notifier)

	payload := []byte(`{"id":"evt_test_2","object":"event","type":"payment_intent.created","data":{"object":{}}}`)
	status, body := postWebhook(t, app, payload, signPayload(payload, testSigningSecret))
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, body)
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no registrations, got %d", len(store.created))
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no emails, got %d", len(notifier.sent))
	}
}

func TestWebhookRecordsRegistrationOnce(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	app := newWebhookTestApp(store, notifier)

	payload := completedEventPayload(t, "cs_abc", validMetadata())
	sig := signPayload(payload, testSigningSecret)

	status, _ := postWebhook(t, app, payload, sig)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(store.created))
	}

	reg := store.created[0]
	if reg.TournamentID != "t1" || reg.TeamName != "Falcons" || reg.Email != "contact@example.com" {
		t.Fatalf("registration fields not mapped from metadata: %+v", reg)
	}
	if reg.PaymentStatus != "paid" {
		t.Fatalf("expected payment_status paid, got %q", reg.PaymentStatus)
	}
	if reg.AmountPaid != 50.0 {
		t.Fatalf("expected amount_paid 50.0, got %v", reg.AmountPaid)
	}
	if reg.StripeSessionID != "cs_abc" {
		t.Fatalf("expected session id cs_abc, got %q", reg.StripeSessionID)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != "contact@example.com" {
		t.Fatalf("expected one confirmation email to contact@example.com, got %v", notifier.sent)
	}

	// Redelivery of the identical event must not produce a second row.
	status, body := postWebhook(t, app, payload, signPayload(payload, testSigningSecret))
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on redelivery, got %d", status)
	}
	if !bytes.Contains([]byte(body), []byte("duplicate")) {
		t.Fatalf("expected duplicate status in response, got %s", body)
	}
	if len(store.created) != 1 {
		t.Fatalf("redelivery created a second registration")
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("redelivery sent a second email")
	}
}

func TestWebhookTreatsInsertRaceAsDuplicate(t *testing.T) {
	store := newFakeStore()
	// Simulate a concurrent delivery winning the insert between lookup and create.
	store.createErr = errors.New(`ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)`)
	app := newWebhookTestApp(store, &fakeNotifier{})

	payload := completedEventPayload(t, "cs_race", validMetadata())
	status, body := postWebhook(t, app, payload, signPayload(payload, testSigningSecret))
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for duplicate-key race, got %d (%s)", status, body)
	}
}

func TestWebhookFailsOnMissingTournamentMetadata(t *testing.T) {
	store := newFakeStore()
	app := newWebhookTestApp(store, &fakeNotifier{})

	md := validMetadata()
	delete(md, models.MetaTournamentID)
	payload := completedEventPayload(t, "cs_bad", md)

	status, body := postWebhook(t, app, payload, signPayload(payload, testSigningSecret))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", status, body)
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no registrations, got %d", len(store.created))
	}
}

func TestWebhookReturnsErrorOnInsertFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("connection refused")
	app := newWebhookTestApp(store, &fakeNotifier{})

	payload := completedEventPayload(t, "cs_down", validMetadata())
	status, _ := postWebhook(t, app, payload, signPayload(payload, testSigningSecret))
	// Non-2xx makes Stripe redeliver once the transient condition clears.
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestWebhookSucceedsWhenEmailFails(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{sendErr: errors.New("ses throttled")}
	app := newWebhookTestApp(store, notifier)

	payload := completedEventPayload(t, "cs_email", validMetadata())
	status, _ := postWebhook(t, app, payload, signPayload(payload, testSigningSecret))
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 despite email failure, got %d", status)
	}
	if len(store.created) != 1 {
		t.Fatalf("registration should persist when email fails, got %d rows", len(store.created))
	}
}
