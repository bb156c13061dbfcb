package generate

import (
	"errors"
	"time"

	"datenwerk/internal/dataset"
)

// generateFinancialTransactions reconciles invoices against real per-order
// item totals. Orders can lose their invoice entirely, book late, drift in
// amount, or split into two transactions whose amounts sum back to the
// original.
func (g *genContext) generateFinancialTransactions(orders []dataset.SalesOrder, items []dataset.OrderItem) ([]dataset.FinancialTransaction, error) {
	if len(orders) == 0 {
		return nil, errors.New("financial transactions require sales orders: sales_orders table is empty")
	}

	// Left join: orders with no surviving items get no total at all.
	totals := make(map[string]float64, len(orders))
	for _, item := range items {
		totals[item.OrderID] += item.LineTotal
	}

	transactions := make([]dataset.FinancialTransaction, 0, len(orders))

	for _, order := range orders {
		if g.fault(faultSkipInvoice) {
			continue
		}

		invoiceDate := order.OrderDate
		if g.fault(faultLateBooking) {
			invoiceDate = invoiceDate.AddDate(0, 0, g.intBetween(1, 5))
		}
		dueDate := invoiceDate.AddDate(0, 0, dataset.TermDays[order.PaymentTerms])
		paymentDate := dueDate.AddDate(0, 0, g.pickInt(paymentDelayOptions))

		var amount *float64
		if total, ok := totals[order.OrderID]; ok {
			if g.fault(faultInvoiceAmountDrift) {
				total *= 1 + g.floatBetween(-0.05, 0.05)
			}
			total = dataset.Round2(total)
			amount = &total
		}

		base := dataset.FinancialTransaction{
			OrderID:     order.OrderID,
			CustomerID:  order.CustomerID,
			InvoiceDate: invoiceDate,
			DueDate:     dueDate,
			Department:  order.Department,
			Currency:    currency,
		}

		if amount != nil && *amount > 1000 && g.fault(faultSplitInvoice) {
			first, second := dataset.SplitAmount(*amount, g.floatBetween(0.3, 0.7))
			secondDate := paymentDate.AddDate(0, 0, g.intBetween(1, 10))

			transactions = append(transactions,
				g.finishFinancial(base, &first, paymentDate),
				g.finishFinancial(base, &second, secondDate),
			)
			continue
		}

		transactions = append(transactions, g.finishFinancial(base, amount, paymentDate))
	}

	return transactions, nil
}

func (g *genContext) finishFinancial(base dataset.FinancialTransaction, amount *float64, paymentDate time.Time) dataset.FinancialTransaction {
	t := base
	t.TransactionID = g.id("FT")
	t.Amount = amount
	t.PaymentDate = paymentDate
	t.PaymentMethod = g.pick(paymentMethods)
	if paymentDate.After(g.now) {
		t.Status = financialStatusOpen
	} else {
		t.Status = financialStatusPaid
	}
	return t
}
