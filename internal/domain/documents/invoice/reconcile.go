package invoice

import (
	"context"
	"fmt"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/pkg/logger"
)

// BalanceAdjusted changes the running balances of one invoice. Credit notes
// and receipts emit it on create, the difference on edit and the negation on
// delete.
type BalanceAdjusted struct {
	OrganizationID id.ID
	InvoiceID      id.ID
	ReceivedDelta  types.Money
	CreditedDelta  types.Money
	Returned       map[id.ID]types.Quantity
}

// IsZero reports whether the event changes nothing.
func (e BalanceAdjusted) IsZero() bool {
	if !e.ReceivedDelta.IsZero() || !e.CreditedDelta.IsZero() {
		return false
	}
	for _, q := range e.Returned {
		if q != 0 {
			return false
		}
	}
	return true
}

// Negate returns the compensating event.
func (e BalanceAdjusted) Negate() BalanceAdjusted {
	out := BalanceAdjusted{
		OrganizationID: e.OrganizationID,
		InvoiceID:      e.InvoiceID,
		ReceivedDelta:  e.ReceivedDelta.Neg(),
		CreditedDelta:  e.CreditedDelta.Neg(),
		Returned:       make(map[id.ID]types.Quantity, len(e.Returned)),
	}
	for k, v := range e.Returned {
		out.Returned[k] = -v
	}
	return out
}

// Diff returns the event that turns the effect of old into the effect of e.
// Both must target the same invoice.
func (e BalanceAdjusted) Diff(old BalanceAdjusted) BalanceAdjusted {
	out := BalanceAdjusted{
		OrganizationID: e.OrganizationID,
		InvoiceID:      e.InvoiceID,
		ReceivedDelta:  e.ReceivedDelta.Sub(old.ReceivedDelta),
		CreditedDelta:  e.CreditedDelta.Sub(old.CreditedDelta),
		Returned:       make(map[id.ID]types.Quantity),
	}
	for k, v := range e.Returned {
		out.Returned[k] += v
	}
	for k, v := range old.Returned {
		out.Returned[k] -= v
	}
	return out
}

// ApplyAdjustment applies ev to inv. It rejects a change that would make a
// running total negative, return more than was invoiced on a line, or push
// the open balance below zero.
func ApplyAdjustment(inv *Invoice, ev BalanceAdjusted) error {
	received := inv.ReceivedAmount.Add(ev.ReceivedDelta)
	credited := inv.CreditedAmount.Add(ev.CreditedDelta)
	if received.IsNegative() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			fmt.Sprintf("received amount of invoice %s would become negative", inv.Number))
	}
	if credited.IsNegative() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			fmt.Sprintf("credited amount of invoice %s would become negative", inv.Number))
	}

	returned := make(map[id.ID]types.Quantity, len(inv.Returned))
	for k, v := range inv.Returned {
		returned[k] = v
	}
	for lineID, delta := range ev.Returned {
		line, ok := inv.Line(lineID)
		if !ok {
			return apperror.NewNotFound("invoice line", lineID.String())
		}
		q := returned[lineID] + delta
		if q < 0 {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				fmt.Sprintf("returned quantity of invoice %s line %d would become negative", inv.Number, line.LineNo))
		}
		if q > line.Quantity {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				fmt.Sprintf("returned quantity %s of invoice %s line %d exceeds invoiced quantity %s",
					q, inv.Number, line.LineNo, line.Quantity))
		}
		if q == 0 {
			delete(returned, lineID)
		} else {
			returned[lineID] = q
		}
	}

	open := inv.GrandTotal.Sub(inv.PaidAmount).Sub(received).Sub(credited)
	if open.LessThan(types.Tolerance.Neg()) {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			fmt.Sprintf("adjustment exceeds open balance of invoice %s", inv.Number))
	}

	inv.ReceivedAmount = received
	inv.CreditedAmount = credited
	inv.Returned = returned
	inv.Refresh()
	return nil
}

// Reconciler applies balance events to stored invoices.
type Reconciler struct {
	repo Repository
}

// NewReconciler creates a reconciler.
func NewReconciler(repo Repository) *Reconciler {
	return &Reconciler{repo: repo}
}

// Apply loads, adjusts and saves each targeted invoice. Run it inside the
// transaction of the document that emitted the events.
func (r *Reconciler) Apply(ctx context.Context, events ...BalanceAdjusted) error {
	for _, ev := range events {
		if ev.IsZero() {
			continue
		}
		inv, err := r.repo.Get(ctx, ev.OrganizationID, ev.InvoiceID)
		if err != nil {
			return err
		}
		if err := ApplyAdjustment(inv, ev); err != nil {
			return err
		}
		if err := r.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update invoice balance: %w", err)
		}
		logger.Debug(ctx, "invoice balance adjusted",
			"invoice_id", inv.ID,
			"received", inv.ReceivedAmount.StringFixed(2),
			"credited", inv.CreditedAmount.StringFixed(2),
			"balance", inv.Balance.StringFixed(2),
		)
	}
	return nil
}
