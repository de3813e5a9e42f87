package statemachine

import (
	"testing"

	"pub-order-system/internal/domain"
)

func TestItemForwardOnly(t *testing.T) {
	cases := []struct {
		from, to domain.ItemStatus
		ok       bool
	}{
		{domain.ItemProcessing, domain.ItemCooking, true},
		{domain.ItemCooking, domain.ItemReadyToServe, true},
		{domain.ItemReadyToServe, domain.ItemServed, true},
		// no skipping
		{domain.ItemProcessing, domain.ItemReadyToServe, false},
		{domain.ItemProcessing, domain.ItemServed, false},
		{domain.ItemCooking, domain.ItemServed, false},
		// no regression
		{domain.ItemCooking, domain.ItemProcessing, false},
		{domain.ItemServed, domain.ItemReadyToServe, false},
		// terminal has no successor
		{domain.ItemServed, domain.ItemServed, false},
	}
	for _, c := range cases {
		if got := CanAdvanceItem(c.from, c.to); got != c.ok {
			t.Errorf("CanAdvanceItem(%s, %s) = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestNextItem(t *testing.T) {
	if next, ok := NextItem(domain.ItemProcessing); !ok || next != domain.ItemCooking {
		t.Fatalf("NextItem(processing) = %v, %v", next, ok)
	}
	if _, ok := NextItem(domain.ItemServed); ok {
		t.Fatalf("served must be terminal")
	}
	if !ItemTerminal(domain.ItemServed) {
		t.Fatalf("served must be terminal")
	}
}

func TestItemTransitionCommands(t *testing.T) {
	cases := []struct {
		cmd      Command
		from, to domain.ItemStatus
	}{
		{CommandAccept, domain.ItemProcessing, domain.ItemCooking},
		{CommandComplete, domain.ItemCooking, domain.ItemReadyToServe},
		{CommandServe, domain.ItemReadyToServe, domain.ItemServed},
	}
	for _, c := range cases {
		from, to, ok := ItemTransition(c.cmd)
		if !ok || from != c.from || to != c.to {
			t.Errorf("ItemTransition(%s) = %s/%s, %v; want %s/%s", c.cmd, from, to, ok, c.from, c.to)
		}
	}
	if _, _, ok := ItemTransition("cancel"); ok {
		t.Fatalf("unknown command must not resolve")
	}
}

func TestCanConfirmPayment(t *testing.T) {
	if !CanConfirmPayment(domain.PaymentUnpaid) {
		t.Fatalf("unpaid must be confirmable")
	}
	if CanConfirmPayment(domain.PaymentPaid) {
		t.Fatalf("paid is terminal")
	}
}

func TestOrderComplete(t *testing.T) {
	served := []domain.ItemStatus{domain.ItemServed, domain.ItemServed}
	if !OrderComplete(domain.PaymentPaid, served) {
		t.Fatalf("paid + all served must complete")
	}
	if OrderComplete(domain.PaymentUnpaid, served) {
		t.Fatalf("unpaid order must never complete")
	}
	if OrderComplete(domain.PaymentPaid, []domain.ItemStatus{domain.ItemServed, domain.ItemCooking}) {
		t.Fatalf("one unserved item must block completion")
	}
	if OrderComplete(domain.PaymentPaid, nil) {
		t.Fatalf("order without items must not complete")
	}
}
