package realtime

import (
	"testing"

	"pub-order-system/internal/domain"
)

func TestSubscribeAndMembers(t *testing.T) {
	reg := NewRegistry()
	a := reg.Register()
	b := reg.Register()

	if !reg.Subscribe(a.ID, domain.ChannelKitchen) {
		t.Fatalf("subscribe failed")
	}
	if !reg.Subscribe(b.ID, domain.ChannelKitchen) {
		t.Fatalf("subscribe failed")
	}
	if !reg.Subscribe(b.ID, domain.ChannelServing) {
		t.Fatalf("subscribe failed")
	}

	if got := len(reg.MembersOf(domain.ChannelKitchen)); got != 2 {
		t.Fatalf("kitchen members = %d, want 2", got)
	}
	if got := len(reg.MembersOf(domain.ChannelServing)); got != 1 {
		t.Fatalf("serving members = %d, want 1", got)
	}
	if got := len(reg.MembersOf(domain.ChannelPaymentDesk)); got != 0 {
		t.Fatalf("payment-desk members = %d, want 0", got)
	}
}

func TestSubscribeUnknownConnection(t *testing.T) {
	reg := NewRegistry()
	if reg.Subscribe("nope", domain.ChannelKitchen) {
		t.Fatalf("unknown connection must not subscribe")
	}
}

func TestUnregisterRemovesFromAllChannels(t *testing.T) {
	reg := NewRegistry()
	c := reg.Register()
	reg.Subscribe(c.ID, domain.ChannelKitchen)
	reg.Subscribe(c.ID, domain.ChannelServing)

	reg.Unregister(c.ID)

	if len(reg.MembersOf(domain.ChannelKitchen)) != 0 || len(reg.MembersOf(domain.ChannelServing)) != 0 {
		t.Fatalf("unregister must remove the connection from every channel")
	}
	if reg.Len() != 0 {
		t.Fatalf("registry must be empty")
	}
	// the event stream is closed so the writer loop terminates
	if _, ok := <-c.Events(); ok {
		t.Fatalf("events channel must be closed")
	}
	// double unregister is safe
	reg.Unregister(c.ID)
}

func TestSendAfterCloseIsSafe(t *testing.T) {
	reg := NewRegistry()
	c := reg.Register()
	reg.Subscribe(c.ID, domain.ChannelKitchen)
	reg.Unregister(c.ID)

	if c.send(domain.Event{Type: domain.EventNewKitchenItem}) {
		t.Fatalf("send to a closed connection must report failure")
	}
}
