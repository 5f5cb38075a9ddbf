// internal/domain/payment/stripe_service_test.go
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/config"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/order"
	"github.com/google/go-cmp/cmp"
	stripe "github.com/stripe/stripe-go/v74"
)

const testWebhookSecret = "whsec_test_secret"

func newTestService() *Service {
	cfg := &config.Config{}
	cfg.External.Stripe.SecretKey = "sk_test_dummy"
	cfg.External.Stripe.WebhookSecret = testWebhookSecret
	return NewService(cfg)
}

func testAddress() order.ShippingAddress {
	return order.ShippingAddress{
		Details:    "14 Tahrir St, Apt 3",
		Phone:      "+201001234567",
		City:       "Cairo",
		PostalCode: "11511",
		Country:    order.Country{Code: "EG", Name: "Egypt"},
	}
}

func TestFlattenShippingAddressRoundTrip(t *testing.T) {
	addr := testAddress()

	flat := FlattenShippingAddress(addr)

	// The nested country object becomes two fixed string keys
	want := map[string]string{
		"details":      "14 Tahrir St, Apt 3",
		"phone":        "+201001234567",
		"city":         "Cairo",
		"postalCode":   "11511",
		"country code": "EG",
		"country name": "Egypt",
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("flattened metadata mismatch (-want +got):\n%s", diff)
	}

	back := AddressFromMetadata(flat)
	if diff := cmp.Diff(addr, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAddressFromMetadataMissingKeys(t *testing.T) {
	back := AddressFromMetadata(map[string]string{"city": "Cairo"})
	if back.City != "Cairo" || back.Details != "" || back.Country.Code != "" {
		t.Errorf("unexpected address: %+v", back)
	}
}

func TestParseCheckoutSession(t *testing.T) {
	svc := newTestService()

	sessionJSON, err := json.Marshal(map[string]interface{}{
		"id":                  "cs_test_123",
		"client_reference_id": "42",
		"customer_email":      "buyer@example.com",
		"amount_total":        34550,
		"metadata":            FlattenShippingAddress(testAddress()),
	})
	if err != nil {
		t.Fatalf("failed to build session payload: %v", err)
	}

	event := stripe.Event{
		ID:   "evt_test_001",
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: sessionJSON},
	}

	comp, relevant, err := svc.ParseCheckoutSession(event)
	if err != nil {
		t.Fatalf("ParseCheckoutSession: %v", err)
	}
	if !relevant {
		t.Fatal("completed checkout event reported as irrelevant")
	}
	if comp.EventID != "evt_test_001" {
		t.Errorf("event id = %q", comp.EventID)
	}
	if comp.CartID != 42 {
		t.Errorf("cart id = %d, want 42", comp.CartID)
	}
	if comp.Email != "buyer@example.com" {
		t.Errorf("email = %q", comp.Email)
	}
	if comp.AmountPaid != 345.50 {
		t.Errorf("amount = %v, want 345.50", comp.AmountPaid)
	}
	if diff := cmp.Diff(testAddress(), comp.Address); diff != "" {
		t.Errorf("address mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCheckoutSessionIgnoresOtherEvents(t *testing.T) {
	svc := newTestService()

	event := stripe.Event{
		ID:   "evt_test_002",
		Type: "payment_intent.succeeded",
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}

	comp, relevant, err := svc.ParseCheckoutSession(event)
	if err != nil {
		t.Fatalf("ParseCheckoutSession: %v", err)
	}
	if relevant || comp != nil {
		t.Errorf("foreign event type treated as checkout completion")
	}
}

func TestParseCheckoutSessionBadReference(t *testing.T) {
	svc := newTestService()

	event := stripe.Event{
		ID:   "evt_test_003",
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"cs_1","client_reference_id":"not-a-number"}`)},
	}

	if _, _, err := svc.ParseCheckoutSession(event); err == nil {
		t.Error("expected error for non-numeric client reference")
	}
}

// signPayload builds a Stripe-Signature header the way the provider does
func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyEvent(t *testing.T) {
	svc := newTestService()

	payload := []byte(`{"id":"evt_test_004","api_version":"2022-11-15","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	header := signPayload(payload, testWebhookSecret, time.Now())

	event, err := svc.VerifyEvent(payload, header)
	if err != nil {
		t.Fatalf("VerifyEvent: %v", err)
	}
	if event.ID != "evt_test_004" {
		t.Errorf("event id = %q", event.ID)
	}
}

func TestVerifyEventAcceptsPinnedAPIVersion(t *testing.T) {
	svc := newTestService()

	// Accounts pinned to another Stripe API version still sign correctly
	payload := []byte(`{"id":"evt_test_007","api_version":"2023-10-16","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	header := signPayload(payload, testWebhookSecret, time.Now())

	event, err := svc.VerifyEvent(payload, header)
	if err != nil {
		t.Fatalf("VerifyEvent: %v", err)
	}
	if event.ID != "evt_test_007" {
		t.Errorf("event id = %q", event.ID)
	}
}

func TestVerifyEventRejectsBadSignature(t *testing.T) {
	svc := newTestService()

	payload := []byte(`{"id":"evt_test_005"}`)

	tests := []struct {
		name   string
		header string
	}{
		{"wrong secret", signPayload(payload, "whsec_other", time.Now())},
		{"stale timestamp", signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour))},
		{"garbage header", "t=abc,v1=zzz"},
		{"empty header", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.VerifyEvent(payload, tt.header); err == nil {
				t.Error("expected verification failure")
			}
		})
	}
}

func TestVerifyEventRejectsTamperedBody(t *testing.T) {
	svc := newTestService()

	payload := []byte(`{"id":"evt_test_006","amount":100}`)
	header := signPayload(payload, testWebhookSecret, time.Now())

	tampered := []byte(`{"id":"evt_test_006","amount":900}`)
	if _, err := svc.VerifyEvent(tampered, header); err == nil {
		t.Error("expected verification failure for tampered body")
	}
}
