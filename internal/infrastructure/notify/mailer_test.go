package notify

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lacanteen/canteen-system/internal/core/ports"
)

func TestRenderPurchaseReceipt(t *testing.T) {
	body, err := render(purchaseStudentTmpl, receiptData{
		StudentName: "Student One",
		Items: []ports.PurchasedItem{
			{Name: "Sandwich", Quantity: 2, Price: 20},
			{Name: "Juice", Quantity: 1, Price: 15},
		},
		Total:      55,
		NewBalance: 45,
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{
		"Dear Student One",
		"Sandwich",
		"40.00 Points", // 2 x 20 line total
		"55.00 Points",
		"Remaining Balance: 45.00 Points",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("receipt missing %q:\n%s", want, body)
		}
	}
}

func TestRenderBalanceReceipt(t *testing.T) {
	body, err := render(balanceStudentTmpl, receiptData{
		StudentName: "Student One",
		Amount:      50,
		NewBalance:  75,
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(body, "Amount Added: 50.00 Points") {
		t.Fatalf("missing credited amount:\n%s", body)
	}
	if !strings.Contains(body, "New Balance: 75.00 Points") {
		t.Fatalf("missing new balance:\n%s", body)
	}
}

// A student without an email on file must not abort the admin copy path;
// with no admin recipients either, sending is a no-op.
func TestSendPurchase_NoRecipients(t *testing.T) {
	m := NewMailer(Config{Host: "localhost", Port: 2525}, zerolog.Nop())

	err := m.SendPurchase("", "Student One", []ports.PurchasedItem{{Name: "Juice", Quantity: 1, Price: 15}}, 15, 5)
	if err != nil {
		t.Fatalf("expected no-op send, got %v", err)
	}
}
