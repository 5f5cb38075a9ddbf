// internal/domain/payment/stripe_service.go
package payment

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/config"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/order"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
)

// Metadata keys for the flattened shipping address. Stripe metadata is
// flat string-to-string, so the nested country object becomes two keys.
const (
	metaDetails     = "details"
	metaPhone       = "phone"
	metaCity        = "city"
	metaPostalCode  = "postalCode"
	metaCountryCode = "country code"
	metaCountryName = "country name"
)

// Service wraps the Stripe API for checkout sessions and webhook
// verification
type Service struct {
	config *config.Config
	api    *client.API
}

// NewService creates a new payment service
func NewService(cfg *config.Config) *Service {
	api := &client.API{}
	api.Init(cfg.External.Stripe.SecretKey, nil)
	return &Service{
		config: cfg,
		api:    api,
	}
}

// CreateCheckoutSession opens a Stripe checkout session for the quoted
// cart. The cart id rides along as the client reference so the webhook
// can find the cart again, and the shipping address is flattened into
// session metadata.
func (s *Service) CreateCheckoutSession(quote *order.CheckoutQuote, userEmail, userName string, addr order.ShippingAddress) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyEGP)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Order for %s", userName)),
					},
					UnitAmount: stripe.Int64(int64(math.Round(quote.Amount * 100))),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.config.External.Stripe.SuccessURL),
		CancelURL:         stripe.String(s.config.External.Stripe.CancelURL),
		CustomerEmail:     stripe.String(userEmail),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(quote.CartID), 10)),
	}
	for key, value := range FlattenShippingAddress(addr) {
		params.AddMetadata(key, value)
	}

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session, nil
}

// VerifyEvent checks the webhook signature against the raw request body
// and returns the decoded event. API version mismatches are tolerated:
// accounts pinned to a different Stripe version still deliver valid,
// correctly signed events.
func (s *Service) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.config.External.Stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return event, nil
}

// ParseCheckoutSession extracts a CheckoutCompletion from a
// checkout.session.completed event. The second return is false for any
// other event type, which callers acknowledge without acting on.
func (s *Service) ParseCheckoutSession(event stripe.Event) (*order.CheckoutCompletion, bool, error) {
	if event.Type != "checkout.session.completed" {
		return nil, false, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, false, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	cartID, err := strconv.ParseUint(session.ClientReferenceID, 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("invalid client reference id %q: %w", session.ClientReferenceID, err)
	}

	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}

	return &order.CheckoutCompletion{
		EventID:    event.ID,
		CartID:     uint(cartID),
		Email:      email,
		AmountPaid: float64(session.AmountTotal) / 100,
		Address:    AddressFromMetadata(session.Metadata),
	}, true, nil
}

// FlattenShippingAddress turns the nested address into the flat
// string-only map Stripe metadata requires.
func FlattenShippingAddress(addr order.ShippingAddress) map[string]string {
	return map[string]string{
		metaDetails:     addr.Details,
		metaPhone:       addr.Phone,
		metaCity:        addr.City,
		metaPostalCode:  addr.PostalCode,
		metaCountryCode: addr.Country.Code,
		metaCountryName: addr.Country.Name,
	}
}

// AddressFromMetadata rebuilds the shipping address from session
// metadata. Missing keys yield empty fields.
func AddressFromMetadata(metadata map[string]string) order.ShippingAddress {
	return order.ShippingAddress{
		Details:    metadata[metaDetails],
		Phone:      metadata[metaPhone],
		City:       metadata[metaCity],
		PostalCode: metadata[metaPostalCode],
		Country: order.Country{
			Code: metadata[metaCountryCode],
			Name: metadata[metaCountryName],
		},
	}
}
