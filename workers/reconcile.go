package workers

import (
	"context"
	"log"
	"time"

	"tournament-registration-system/models"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReconcileClient backfills registrations whose webhook deliveries were lost.
// Stripe retries webhooks for a while, but a long outage can exhaust the retry
// window; sweeping recent completed sessions closes that gap.
type ReconcileClient struct {
	DB       *gorm.DB
	Lookback time.Duration

	listSessions func(since time.Time) ([]*stripe.CheckoutSession, error)
}

func NewReconcileClient(db *gorm.DB) *ReconcileClient {
	return &ReconcileClient{
		DB:           db,
		Lookback:     24 * time.Hour,
		listSessions: listPaidSessions,
	}
}

func listPaidSessions(since time.Time) ([]*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionListParams{
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: since.Unix(),
		},
	}

	var out []*stripe.CheckoutSession
	iter := session.List(params)
	for iter.Next() {
		s := iter.CheckoutSession()
		if s.Status == stripe.CheckoutSessionStatusComplete && s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			out = append(out, s)
		}
	}
	return out, iter.Err()
}

// Sweep fetches recent paid sessions and inserts any registration the webhook
// missed. The unique index on stripe_session_id makes the upsert a no-op for
// rows the webhook already wrote.
func (c *ReconcileClient) Sweep() error {
	sessions, err := c.listSessions(time.Now().Add(-c.Lookback))
	if err != nil {
		return err
	}

	backfilled := 0
	for _, sess := range sessions {
		intent, err := models.IntentFromMetadata(sess.Metadata)
		if err != nil {
			// Sessions created by other flows carry no registration metadata.
			continue
		}

		reg := models.Registration{
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

		result := c.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_session_id"}},
			DoNothing: true,
		}).Create(&reg)
		if result.Error != nil {
			log.Printf("❌ [RECONCILE] Failed to upsert registration for session %s: %v", sess.ID, result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			backfilled++
			log.Printf("🩹 [RECONCILE] Backfilled registration for team %q (session %s)", intent.TeamName, sess.ID)
		}
	}

	if backfilled > 0 {
		log.Printf("📥 [RECONCILE] Backfilled %d registration(s) from %d paid session(s)", backfilled, len(sessions))
	}
	return nil
}

// PollMissedRegistrations runs Sweep on a fixed interval until ctx is cancelled.
func PollMissedRegistrations(ctx context.Context, client *ReconcileClient, pollInterval time.Duration) {
	log.Println("Starting registration reconcile worker...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Registration reconcile worker stopped.")
			return
		case <-ticker.C:
			if err := client.Sweep(); err != nil {
				log.Printf("❌ [RECONCILE] Sweep failed: %v", err)
			}
		}
	}
}
