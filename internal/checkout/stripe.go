package checkout

import (
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
)

// SessionCreator abstracts Stripe's checkout session endpoint.
type SessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeCreator calls the real Stripe API. The package-level key must be set
// before use.
type StripeCreator struct{}

func NewStripeCreator(secretKey string) StripeCreator {
	stripe.Key = secretKey
	return StripeCreator{}
}

func (StripeCreator) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return checkoutsession.New(params)
}

// sessionParams builds the checkout session for a plan: a CRC subscription
// with the gym stamped in metadata so the webhook-free activation flow can
// recover it from the success redirect.
func sessionParams(plan Plan, gymID, successURL, cancelURL string) *stripe.CheckoutSessionParams {
	details := plans[plan]

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyCRC)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(details.Name),
						Description: stripe.String(details.Description),
					},
					UnitAmount: stripe.Int64(details.Amount),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(details.Interval),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:               stripe.String(successURL),
		CancelURL:                stripe.String(cancelURL),
		AllowPromotionCodes:      stripe.Bool(true),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
	}
	params.AddMetadata("gymId", gymID)
	params.AddMetadata("plan", string(plan))
	return params
}
