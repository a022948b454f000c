package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Registration is the durable record of a paid tournament entry. Rows are created
// only by the Stripe webhook (or the reconcile worker) after a verified payment —
// never directly from client input.
type Registration struct {
	ID            string  `json:"id" gorm:"primaryKey"`
	TournamentID  string  `json:"tournament_id" gorm:"not null;index"`
	TeamName      string  `json:"team_name" gorm:"not null"`
	ContactPerson string  `json:"contact_person"`
	Email         string  `json:"email" gorm:"not null"`
	Phone         string  `json:"phone"`
	AgeGroup      string  `json:"age_group"`
	PaymentStatus string  `json:"payment_status" gorm:"default:'paid'"` // paid, refunded
	AmountPaid    float64 `json:"amount_paid"`
	// The originating checkout session. Unique so that redelivered webhook events
	// can never produce a second row for the same payment.
	StripeSessionID string    `json:"stripe_session_id" gorm:"uniqueIndex;not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`

	Tournament Tournament `json:"tournament,omitempty" gorm:"foreignKey:TournamentID"`
}

// Metadata keys carried on the checkout session. The metadata bag is the only
// channel that carries registration intent across the payment boundary, so the
// key set is versioned here and nowhere else.
const (
	MetaTournamentID  = "tournament_id"
	MetaTeamName      = "team_name"
	MetaContactPerson = "contact_person"
	MetaEmail         = "email"
	MetaPhone         = "phone"
	MetaAgeGroup      = "age_group"
	MetaAmountPaid    = "amount_paid"
)

// RegistrationIntent is the typed form of the session metadata bag. It is
// validated immediately after extraction so a malformed session fails at the
// boundary instead of deep inside the insert path.
type RegistrationIntent struct {
	TournamentID  string
	TeamName      string
	ContactPerson string
	Email         string
	Phone         string
	AgeGroup      string
	AmountPaid    float64
}

// IntentFromMetadata parses and validates a checkout session metadata bag.
// A session missing the required fields was created outside the expected flow.
func IntentFromMetadata(md map[string]string) (RegistrationIntent, error) {
	get := func(key string) string { return strings.TrimSpace(md[key]) }

	intent := RegistrationIntent{
		TournamentID:  get(MetaTournamentID),
		TeamName:      get(MetaTeamName),
		ContactPerson: get(MetaContactPerson),
		Email:         get(MetaEmail),
		Phone:         get(MetaPhone),
		AgeGroup:      get(MetaAgeGroup),
	}

	var missing []string
	for _, f := range []struct{ key, value string }{
		{MetaTournamentID, intent.TournamentID},
		{MetaTeamName, intent.TeamName},
		{MetaEmail, intent.Email},
		{MetaAmountPaid, get(MetaAmountPaid)},
	} {
		if f.value == "" {
			missing = append(missing, f.key)
		}
	}
	if len(missing) > 0 {
		return RegistrationIntent{}, fmt.Errorf("session metadata missing %s", strings.Join(missing, ", "))
	}

	amount, err := strconv.ParseFloat(get(MetaAmountPaid), 64)
	if err != nil {
		return RegistrationIntent{}, fmt.Errorf("session metadata has invalid %s: %q", MetaAmountPaid, md[MetaAmountPaid])
	}
	intent.AmountPaid = amount

	return intent, nil
}

// Metadata renders the intent back into the flat bag attached to the checkout
// session. The amount is formatted from the already-computed value so the webhook
// records exactly what was charged.
func (i RegistrationIntent) Metadata() map[string]string {
	return map[string]string{
		MetaTournamentID:  i.TournamentID,
		MetaTeamName:      i.TeamName,
		MetaContactPerson: i.ContactPerson,
		MetaEmail:         i.Email,
		MetaPhone:         i.Phone,
		MetaAgeGroup:      i.AgeGroup,
		MetaAmountPaid:    strconv.FormatFloat(i.AmountPaid, 'f', -1, 64),
	}
}
