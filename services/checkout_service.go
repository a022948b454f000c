package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"tournament-registration-system/config"
	"tournament-registration-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"gorm.io/gorm"
)

// TournamentCatalog is the narrow read path checkout needs: the authoritative
// name and entry fee for a tournament.
type TournamentCatalog interface {
	Pricing(tournamentID string) (name string, entryFee float64, err error)
}

type gormCatalog struct {
	db *gorm.DB
}

func (g gormCatalog) Pricing(tournamentID string) (string, float64, error) {
	var t models.Tournament
	if err := g.db.Select("id", "name", "entry_fee").First(&t, "id = ?", tournamentID).Error; err != nil {
		return "", 0, err
	}
	return t.Name, t.EntryFee, nil
}

// CheckoutService creates hosted Stripe checkout sessions for tournament
// registrations. It performs no local writes — a registration only becomes
// durable once the webhook confirms payment, so an abandoned checkout leaves
// nothing behind.
type CheckoutService struct {
	catalog TournamentCatalog
	siteURL string

	// Injected so tests can run without the Stripe API.
	createSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewCheckoutService(db *gorm.DB, cfg *config.Config) *CheckoutService {
	return &CheckoutService{
		catalog:       gormCatalog{db: db},
		siteURL:       cfg.SiteURL,
		createSession: session.New,
	}
}

type checkoutRequest struct {
	TournamentID  string `json:"tournamentId"`
	TeamName      string `json:"teamName"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	AgeGroup      string `json:"ageGroup"`
}

// CreateCheckoutSession handles POST /checkout. The entry fee is always loaded
// server-side; the client never supplies an amount.
func (s *CheckoutService) CreateCheckoutSession(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req.TournamentID = strings.TrimSpace(req.TournamentID)
	req.TeamName = strings.TrimSpace(req.TeamName)
	req.Email = strings.TrimSpace(req.Email)

	if req.TournamentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tournamentId is required"})
	}
	if req.TeamName == "" || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "teamName and email are required"})
	}

	name, fee, err := s.catalog.Pricing(req.TournamentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tournament not found"})
		}
		log.Printf("❌ [CHECKOUT] Tournament lookup failed for %s: %v", req.TournamentID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to load tournament"})
	}

	if fee <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tournament is not open for paid registration"})
	}

	// Minor units are computed once; the metadata amount is derived from the same
	// value so the webhook records exactly what was charged.
	unitAmount := minorUnits(fee)
	intent := models.RegistrationIntent{
		TournamentID:  req.TournamentID,
		TeamName:      req.TeamName,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Email:         req.Email,
		Phone:         strings.TrimSpace(req.Phone),
		AgeGroup:      strings.TrimSpace(req.AgeGroup),
		AmountPaid:    float64(unitAmount) / 100,
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(unitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("Tournament Registration: %s", name)),
						Description: stripe.String(fmt.Sprintf("Team: %s", req.TeamName)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.siteURL + "/registration/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.siteURL + "/register?status=cancelled"),
	}
	for k, v := range intent.Metadata() {
		params.AddMetadata(k, v)
	}

	sess, err := s.createSession(params)
	if err != nil {
		log.Printf("❌ [CHECKOUT] Stripe session creation failed for tournament %s: %v", req.TournamentID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to create checkout session"})
	}

	log.Printf("💳 [CHECKOUT] Session %s created for tournament %q team %q (%d minor units)",
		sess.ID, name, req.TeamName, unitAmount)
	return c.JSON(fiber.Map{"url": sess.URL})
}

func minorUnits(fee float64) int64 {
	return int64(math.Round(fee * 100))
}
