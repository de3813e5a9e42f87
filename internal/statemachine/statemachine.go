// Package statemachine holds the pure transition rules for orders and order
// items. Persistence enforces the same guards as conditional updates; this
// package is the single place the legal transitions are written down.
package statemachine

import "pub-order-system/internal/domain"

// Command names the three user-triggered item transitions.
type Command string

const (
	CommandAccept   Command = "accept"   // kitchen takes the item
	CommandComplete Command = "complete" // kitchen finished cooking
	CommandServe    Command = "serve"    // server delivered the item
)

var itemNext = map[domain.ItemStatus]domain.ItemStatus{
	domain.ItemProcessing:   domain.ItemCooking,
	domain.ItemCooking:      domain.ItemReadyToServe,
	domain.ItemReadyToServe: domain.ItemServed,
}

var commandTransitions = map[Command][2]domain.ItemStatus{
	CommandAccept:   {domain.ItemProcessing, domain.ItemCooking},
	CommandComplete: {domain.ItemCooking, domain.ItemReadyToServe},
	CommandServe:    {domain.ItemReadyToServe, domain.ItemServed},
}

// NextItem returns the successor status, if any. Items only ever move
// forward; there is no regression transition.
func NextItem(s domain.ItemStatus) (domain.ItemStatus, bool) {
	next, ok := itemNext[s]
	return next, ok
}

// CanAdvanceItem reports whether from→to is one legal forward step.
func CanAdvanceItem(from, to domain.ItemStatus) bool {
	next, ok := itemNext[from]
	return ok && next == to
}

// ItemTransition resolves a command to its required prior status and the
// status it produces. A command is only legal from exactly that prior status.
func ItemTransition(cmd Command) (from, to domain.ItemStatus, ok bool) {
	tr, ok := commandTransitions[cmd]
	if !ok {
		return "", "", false
	}
	return tr[0], tr[1], true
}

func ItemTerminal(s domain.ItemStatus) bool { return s == domain.ItemServed }

// CanConfirmPayment gates the single payment transition. Confirming payment
// atomically moves the order itself pending→processing; the two are never
// applied independently.
func CanConfirmPayment(p domain.PaymentStatus) bool { return p == domain.PaymentUnpaid }

func OrderTerminal(s domain.OrderStatus) bool { return s == domain.OrderCompleted }

// OrderComplete is the derived aggregate: an order closes exactly when it is
// paid and every item has been served. There is no manual close command.
func OrderComplete(p domain.PaymentStatus, items []domain.ItemStatus) bool {
	if p != domain.PaymentPaid || len(items) == 0 {
		return false
	}
	for _, s := range items {
		if s != domain.ItemServed {
			return false
		}
	}
	return true
}
