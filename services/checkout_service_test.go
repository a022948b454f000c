package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"tournament-registration-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

type fakeCatalog struct {
	name string
	fee  float64
	err  error
}

func (f fakeCatalog) Pricing(tournamentID string) (string, float64, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	return f.name, f.fee, nil
}

func newCheckoutTestApp(catalog TournamentCatalog, create func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)) *fiber.App {
	svc := &CheckoutService{
		catalog:       catalog,
		siteURL:       "https://example.org",
		createSession: create,
	}
	app := fiber.New()
	app.Post("/checkout", svc.CreateCheckoutSession)
	return app
}

func postCheckout(t *testing.T, app *fiber.App, body map[string]string) (int, map[string]string) {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var parsed map[string]string
	_ = json.Unmarshal(raw, &parsed)
	return resp.StatusCode, parsed
}

func validCheckoutBody() map[string]string {
	return map[string]string{
		"tournamentId":  "t1",
		"teamName":      "Falcons",
		"contactPerson": "Alex Doe",
		"email":         "contact@example.com",
		"phone":         "555-0100",
		"ageGroup":      "U11",
	}
}

func TestCheckoutRequiresTournamentID(t *testing.T) {
	called := false
	app := newCheckoutTestApp(fakeCatalog{name: "Spring Cup", fee: 50},
		func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			called = true
			return nil, nil
		})

	body := validCheckoutBody()
	body["tournamentId"] = ""
	status, resp := postCheckout(t, app, body)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if resp["error"] == "" {
		t.Fatalf("expected error message in response")
	}
	if called {
		t.Fatalf("payment provider must not be called for invalid requests")
	}
}

func TestCheckoutRejectsNonPurchasableTournament(t *testing.T) {
	for _, fee := range []float64{0, -10} {
		called := false
		app := newCheckoutTestApp(fakeCatalog{name: "Free Festival", fee: fee},
			func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
				called = true
				return nil, nil
			})

		status, _ := postCheckout(t, app, validCheckoutBody())
		if status != fiber.StatusBadRequest {
			t.Fatalf("fee %v: expected 400, got %d", fee, status)
		}
		if called {
			t.Fatalf("fee %v: payment provider must not be called", fee)
		}
	}
}

func TestCheckoutRejectsUnknownTournament(t *testing.T) {
	called := false
	app := newCheckoutTestApp(fakeCatalog{err: gorm.ErrRecordNotFound},
		func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			called = true
			return nil, nil
		})

	status, resp := postCheckout(t, app, validCheckoutBody())
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if resp["error"] != "tournament not found" {
		t.Fatalf("unexpected error: %q", resp["error"])
	}
	if called {
		t.Fatalf("payment provider must not be called for unknown tournaments")
	}
}

func TestCheckoutBuildsSessionFromServerSidePrice(t *testing.T) {
	var captured *stripe.CheckoutSessionParams
	app := newCheckoutTestApp(fakeCatalog{name: "Spring Cup", fee: 50.00},
		func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			captured = params
			return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
		})

	status, resp := postCheckout(t, app, validCheckoutBody())
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if resp["url"] != "https://checkout.stripe.com/c/pay/cs_test_1" {
		t.Fatalf("expected hosted checkout URL, got %q", resp["url"])
	}

	if captured == nil {
		t.Fatal("session params were not captured")
	}
	if got := *captured.Mode; got != string(stripe.CheckoutSessionModePayment) {
		t.Fatalf("expected payment mode, got %q", got)
	}
	if len(captured.LineItems) != 1 {
		t.Fatalf("expected one line item, got %d", len(captured.LineItems))
	}
	item := captured.LineItems[0]
	if got := *item.PriceData.UnitAmount; got != 5000 {
		t.Fatalf("expected unit_amount 5000, got %d", got)
	}
	if got := *item.PriceData.ProductData.Name; got != "Tournament Registration: Spring Cup" {
		t.Fatalf("unexpected product name: %q", got)
	}
	if got := *item.PriceData.ProductData.Description; got != "Team: Falcons" {
		t.Fatalf("unexpected product description: %q", got)
	}

	md := captured.Metadata
	if md[models.MetaAmountPaid] != "50" {
		t.Fatalf("expected amount_paid metadata \"50\", got %q", md[models.MetaAmountPaid])
	}
	for _, key := range []string{
		models.MetaTournamentID, models.MetaTeamName, models.MetaContactPerson,
		models.MetaEmail, models.MetaPhone, models.MetaAgeGroup,
	} {
		if md[key] == "" {
			t.Fatalf("metadata missing %s: %v", key, md)
		}
	}

	if got := *captured.SuccessURL; got != "https://example.org/registration/success?session_id={CHECKOUT_SESSION_ID}" {
		t.Fatalf("unexpected success URL: %q", got)
	}
	if got := *captured.CancelURL; got != "https://example.org/register?status=cancelled" {
		t.Fatalf("unexpected cancel URL: %q", got)
	}
}

func TestCheckoutAmountMatchesMetadataAfterRounding(t *testing.T) {
	var captured *stripe.CheckoutSessionParams
	app := newCheckoutTestApp(fakeCatalog{name: "Autumn Shield", fee: 24.99},
		func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			captured = params
			return &stripe.CheckoutSession{ID: "cs_test_2", URL: "https://checkout.stripe.com/c/pay/cs_test_2"}, nil
		})

	status, _ := postCheckout(t, app, validCheckoutBody())
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := *captured.LineItems[0].PriceData.UnitAmount; got != 2499 {
		t.Fatalf("expected unit_amount 2499, got %d", got)
	}
	// Same source as the charged amount, not recomputed with rounding drift.
	if got := captured.Metadata[models.MetaAmountPaid]; got != "24.99" {
		t.Fatalf("expected amount_paid \"24.99\", got %q", got)
	}
}

func TestCheckoutSurfacesProviderFailure(t *testing.T) {
	app := newCheckoutTestApp(fakeCatalog{name: "Spring Cup", fee: 50},
		func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			return nil, errors.New("stripe unavailable")
		})

	status, resp := postCheckout(t, app, validCheckoutBody())
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if resp["error"] == "" {
		t.Fatalf("expected error message in response")
	}
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		fee  float64
		want int64
	}{
		{50.00, 5000},
		{24.99, 2499},
		{0.01, 1},
		{19.995, 2000},
	}
	for _, tc := range cases {
		if got := minorUnits(tc.fee); got != tc.want {
			t.Errorf("minorUnits(%v) = %d, want %d", tc.fee, got, tc.want)
		}
	}
}
