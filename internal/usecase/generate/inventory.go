package generate

import (
	"errors"

	"datenwerk/internal/dataset"
)

// generateInventoryTransactions builds warehouse movements. Quantity sign is
// fixed by transaction type; the product reference and unit cost null
// together under fault injection.
func (g *genContext) generateInventoryTransactions(n int) ([]dataset.InventoryTransaction, error) {
	if len(g.products) == 0 {
		return nil, errors.New("inventory transactions require product master data: products table is empty")
	}

	transactions := make([]dataset.InventoryTransaction, 0, n)

	for i := 0; i < n; i++ {
		product := g.sampleProduct()
		transType := g.pick(inventoryTransactionTypes)

		t := dataset.InventoryTransaction{
			TransactionID:     g.id("T"),
			TransactionType:   transType,
			TransactionDate:   g.dateBetween(g.start, g.end),
			Location:          g.pick(inventoryLocations),
			ReferenceDocument: g.refNumber(),
			Status:            g.pick(inventoryStatuses),
		}

		switch transType {
		case "Eingang":
			t.Quantity = g.intBetween(10, 100)
		case "Ausgang":
			t.Quantity = -g.intBetween(1, 20)
		case "Bestandskorrektur":
			t.Quantity = g.intBetween(-5, 5)
		default: // Retoure
			t.Quantity = g.intBetween(1, 5)
		}

		if !g.fault(faultInventoryProductGroup) {
			productID := product.ProductID
			unitCost := dataset.Round2(product.UnitPrice * 0.7)
			t.ProductID = &productID
			t.UnitCost = &unitCost
		}

		transactions = append(transactions, t)
	}

	return transactions, nil
}
