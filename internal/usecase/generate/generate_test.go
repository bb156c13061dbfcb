package generate

import (
	"context"
	"math"
	"testing"
	"time"

	"datenwerk/internal/dataset"
)

func testScenario(errorRate float64) Scenario {
	return Scenario{
		Seed:                  1,
		ErrorRate:             errorRate,
		StartDate:             time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:               time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Products:              5,
		Customers:             5,
		SalesOrders:           10,
		InventoryTransactions: 20,
		MinItemsPerOrder:      1,
		MaxItemsPerOrder:      5,
	}
}

func TestGenerateDatasetCleanScenario(t *testing.T) {
	svc := NewService(nil)
	scn := testScenario(0)

	ds, err := svc.GenerateDataset(context.Background(), scn)
	if err != nil {
		t.Fatalf("GenerateDataset() error = %v", err)
	}

	if len(ds.Products) != 5 || len(ds.Customers) != 5 || len(ds.SalesOrders) != 10 {
		t.Fatalf("record counts: products=%d customers=%d orders=%d",
			len(ds.Products), len(ds.Customers), len(ds.SalesOrders))
	}
	if len(ds.InventoryTransactions) != 20 {
		t.Fatalf("inventory count = %d", len(ds.InventoryTransactions))
	}
	if len(ds.Sources) != len(dataset.SourceNames) {
		t.Fatalf("sources = %v", ds.Sources)
	}

	// At error rate zero no field group may null out.
	for _, p := range ds.Products {
		if p.MinStock == nil || p.MaxStock == nil || p.SupplierID == nil {
			t.Fatalf("product %s lost its stock group at error rate 0", p.ProductID)
		}
	}
	for _, c := range ds.Customers {
		if c.Email == nil || c.Phone == nil || c.CreditLimit == nil {
			t.Fatalf("customer %s lost its contact group at error rate 0", c.CustomerID)
		}
	}
	for _, o := range ds.SalesOrders {
		if o.CustomerID == nil || o.ShippingAddress == nil {
			t.Fatalf("order %s lost its customer group at error rate 0", o.OrderID)
		}
		if o.OrderDate.Before(scn.StartDate) || o.OrderDate.After(scn.EndDate) {
			t.Fatalf("order %s dated %v outside scenario window", o.OrderID, o.OrderDate)
		}
		if o.ExpectedDelivery.Before(o.OrderDate.AddDate(0, 0, 3)) || o.ExpectedDelivery.After(o.OrderDate.AddDate(0, 0, 14)) {
			t.Fatalf("order %s expected delivery %v outside 3..14 days", o.OrderID, o.ExpectedDelivery)
		}
	}
	for _, it := range ds.InventoryTransactions {
		if it.ProductID == nil || it.UnitCost == nil {
			t.Fatalf("inventory %s lost its product group at error rate 0", it.TransactionID)
		}
	}

	// No items drop at rate zero, so item counts stay within the per-order range.
	if len(ds.OrderItems) < 10*scn.MinItemsPerOrder || len(ds.OrderItems) > 10*scn.MaxItemsPerOrder {
		t.Fatalf("item count %d outside [%d,%d]", len(ds.OrderItems), 10*scn.MinItemsPerOrder, 10*scn.MaxItemsPerOrder)
	}

	productIDs := make(map[string]bool, len(ds.Products))
	for _, p := range ds.Products {
		productIDs[p.ProductID] = true
	}
	for _, item := range ds.OrderItems {
		if !productIDs[item.ProductID] {
			t.Fatalf("item references unknown product %s", item.ProductID)
		}
		want := dataset.Round2(float64(item.Quantity) * item.UnitPrice * (1 - item.Discount))
		if item.LineTotal != want {
			t.Fatalf("line total %v, want %v for %+v", item.LineTotal, want, item)
		}
		if item.Quantity < 1 || item.Quantity > 10 {
			t.Fatalf("quantity %d outside 1..10", item.Quantity)
		}
	}
}

func TestGenerateDatasetFinancialConsistency(t *testing.T) {
	svc := NewService(nil)
	ds, err := svc.GenerateDataset(context.Background(), testScenario(0))
	if err != nil {
		t.Fatalf("GenerateDataset() error = %v", err)
	}

	termsByOrder := make(map[string]string, len(ds.SalesOrders))
	dateByOrder := make(map[string]time.Time, len(ds.SalesOrders))
	for _, o := range ds.SalesOrders {
		termsByOrder[o.OrderID] = o.PaymentTerms
		dateByOrder[o.OrderID] = o.OrderDate
	}
	totals := make(map[string]float64)
	for _, item := range ds.OrderItems {
		totals[item.OrderID] += item.LineTotal
	}

	amountByOrder := make(map[string]float64)
	countByOrder := make(map[string]int)
	for _, ft := range ds.FinancialTransactions {
		terms, ok := termsByOrder[ft.OrderID]
		if !ok {
			t.Fatalf("invoice %s references unknown order %s", ft.TransactionID, ft.OrderID)
		}

		// Due date derives from the booked invoice date, even when the
		// booking slipped past the order date.
		wantDue := ft.InvoiceDate.AddDate(0, 0, dataset.TermDays[terms])
		if !ft.DueDate.Equal(wantDue) {
			t.Fatalf("invoice %s due %v, want %v (terms %s)", ft.TransactionID, ft.DueDate, wantDue, terms)
		}
		if ft.InvoiceDate.Before(dateByOrder[ft.OrderID]) {
			t.Fatalf("invoice %s booked before its order date", ft.TransactionID)
		}
		if ft.Currency != "EUR" {
			t.Fatalf("invoice %s currency = %s", ft.TransactionID, ft.Currency)
		}
		if ft.Status != financialStatusPaid && ft.Status != financialStatusOpen {
			t.Fatalf("invoice %s status = %s", ft.TransactionID, ft.Status)
		}

		if ft.Amount != nil {
			amountByOrder[ft.OrderID] += *ft.Amount
		}
		countByOrder[ft.OrderID]++
	}

	// Error rate zero disables skip-invoice, so every order has an invoice
	// (split invoices contribute two rows).
	for orderID := range termsByOrder {
		n := countByOrder[orderID]
		if n < 1 || n > 2 {
			t.Fatalf("order %s has %d invoices", orderID, n)
		}
		// Amount drift is off; the invoice total reconciles with the items.
		if total, ok := totals[orderID]; ok {
			if math.Abs(amountByOrder[orderID]-dataset.Round2(total)) > 0.011 {
				t.Fatalf("order %s invoice total %v, items total %v", orderID, amountByOrder[orderID], total)
			}
		}
	}
}

func TestGenerateDatasetFullFaultRate(t *testing.T) {
	svc := NewService(nil)
	ds, err := svc.GenerateDataset(context.Background(), testScenario(1))
	if err != nil {
		t.Fatalf("GenerateDataset() error = %v", err)
	}

	// Scale 1.0 groups null on every record at error rate 1.
	for _, p := range ds.Products {
		if p.MinStock != nil || p.MaxStock != nil || p.SupplierID != nil {
			t.Fatalf("product %s kept its stock group at error rate 1", p.ProductID)
		}
	}
	for _, c := range ds.Customers {
		if c.Email != nil || c.Phone != nil || c.CreditLimit != nil {
			t.Fatalf("customer %s kept its contact group at error rate 1", c.CustomerID)
		}
	}
	for _, it := range ds.InventoryTransactions {
		if it.ProductID != nil || it.UnitCost != nil {
			t.Fatalf("inventory %s kept its product group at error rate 1", it.TransactionID)
		}
	}

	// The order customer group scales at 0.5, so nulls must be partial, and
	// the group always nulls as a whole.
	for _, o := range ds.SalesOrders {
		hasCustomer := o.CustomerID != nil
		hasShipping := o.ShippingAddress != nil && o.ShippingCity != nil && o.ShippingPostalCode != nil
		if hasCustomer != hasShipping {
			t.Fatalf("order %s nulled its customer group partially", o.OrderID)
		}
	}
}

func TestGenerateDatasetDeterministicSeed(t *testing.T) {
	svc := NewService(nil)
	scn := testScenario(0.15)

	a, err := svc.GenerateDataset(context.Background(), scn)
	if err != nil {
		t.Fatalf("GenerateDataset() error = %v", err)
	}
	b, err := svc.GenerateDataset(context.Background(), scn)
	if err != nil {
		t.Fatalf("GenerateDataset() error = %v", err)
	}

	if len(a.OrderItems) != len(b.OrderItems) || len(a.FinancialTransactions) != len(b.FinancialTransactions) {
		t.Fatalf("same seed produced different shapes: items %d/%d, financial %d/%d",
			len(a.OrderItems), len(b.OrderItems), len(a.FinancialTransactions), len(b.FinancialTransactions))
	}
	for i := range a.SalesOrders {
		if !a.SalesOrders[i].OrderDate.Equal(b.SalesOrders[i].OrderDate) {
			t.Fatalf("same seed produced different order dates at %d", i)
		}
	}
}

func TestGeneratorsFailFastOnEmptyUpstream(t *testing.T) {
	g := newGenContext(testScenario(0), time.Now().UTC())

	if _, err := g.generateSalesOrders(5); err == nil {
		t.Fatal("generateSalesOrders() expected error without customers")
	}
	if _, err := g.generateInventoryTransactions(5); err == nil {
		t.Fatal("generateInventoryTransactions() expected error without products")
	}
	if _, err := g.generateOrderItems(nil, 1, 5); err == nil {
		t.Fatal("generateOrderItems() expected error without orders")
	}
	if _, err := g.generateFinancialTransactions(nil, nil); err == nil {
		t.Fatal("generateFinancialTransactions() expected error without orders")
	}
}

func TestFaultRate(t *testing.T) {
	testCases := []struct {
		name      string
		class     faultClass
		errorRate float64
		want      float64
	}{
		{name: "stock group scales 1.0", class: faultProductStockGroup, errorRate: 0.2, want: 0.2},
		{name: "order customer group scales 0.5", class: faultOrderCustomerGroup, errorRate: 0.2, want: 0.1},
		{name: "drop order items scales 0.3", class: faultDropOrderItems, errorRate: 0.2, want: 0.06},
		{name: "drop single item scales 0.1", class: faultDropSingleItem, errorRate: 0.2, want: 0.02},
		{name: "skip invoice scales 0.2", class: faultSkipInvoice, errorRate: 0.2, want: 0.04},
		{name: "late booking is fixed", class: faultLateBooking, errorRate: 0, want: 0.3},
		{name: "split invoice is fixed", class: faultSplitInvoice, errorRate: 0.9, want: 0.1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := faultRate(tc.class, tc.errorRate)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("faultRate(%s, %v) = %v, want %v", tc.class, tc.errorRate, got, tc.want)
			}
		})
	}
}

func TestInventoryQuantitySigns(t *testing.T) {
	g := newGenContext(testScenario(0), time.Now().UTC())
	g.products = g.generateProducts(3)

	transactions, err := g.generateInventoryTransactions(200)
	if err != nil {
		t.Fatalf("generateInventoryTransactions() error = %v", err)
	}

	for _, tr := range transactions {
		switch tr.TransactionType {
		case "Eingang":
			if tr.Quantity < 10 || tr.Quantity > 100 {
				t.Fatalf("Eingang quantity %d outside 10..100", tr.Quantity)
			}
		case "Ausgang":
			if tr.Quantity > -1 || tr.Quantity < -20 {
				t.Fatalf("Ausgang quantity %d outside -20..-1", tr.Quantity)
			}
		case "Bestandskorrektur":
			if tr.Quantity < -5 || tr.Quantity > 5 {
				t.Fatalf("Bestandskorrektur quantity %d outside -5..5", tr.Quantity)
			}
		case "Retoure":
			if tr.Quantity < 1 || tr.Quantity > 5 {
				t.Fatalf("Retoure quantity %d outside 1..5", tr.Quantity)
			}
		default:
			t.Fatalf("unknown transaction type %s", tr.TransactionType)
		}
	}
}
