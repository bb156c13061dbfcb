package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"datenwerk/internal/bootstrap/logging"
	"datenwerk/internal/dataset"
)

// Gold view names.
const (
	ViewSalesMetrics    = "sales_metrics"
	ViewInventoryStatus = "inventory_status"
)

// DepartmentSales is one sales_metrics row: validated orders left-joined to
// their items, grouped by department. An order with no items still counts
// once, contributing zero sales.
type DepartmentSales struct {
	Department string  `json:"department"`
	OrderCount int     `json:"order_count"`
	TotalSales float64 `json:"total_sales"`
}

// ProductInventory is one inventory_status row: signed quantities netted per
// product, joined onto the product master for name and category.
type ProductInventory struct {
	ProductID           string    `json:"product_id"`
	NetQuantity         int       `json:"net_quantity"`
	LastTransactionDate time.Time `json:"last_transaction_date"`
	Name                string    `json:"name"`
	Category            string    `json:"category"`
}

// GoldResult holds the computed business views. Views lists the names that
// were actually computed; a view whose prerequisite silver sources are
// absent is simply missing, not an error.
type GoldResult struct {
	SalesMetrics    []DepartmentSales
	InventoryStatus []ProductInventory
	Views           []string
}

// Aggregate derives the business views from the validated silver rows.
func Aggregate(ctx context.Context, silver SilverResult) (GoldResult, []StepMetric) {
	logCtx := logging.WithAttrs(ctx, slog.String("layer", LayerGold))

	var out GoldResult
	var metrics []StepMetric

	if silver.Valid.HasSource(dataset.SourceSalesOrders) && silver.Valid.HasSource(dataset.SourceOrderItems) {
		started := time.Now()
		out.SalesMetrics = salesMetrics(silver.Valid.SalesOrders, silver.Valid.OrderItems)
		out.Views = append(out.Views, ViewSalesMetrics)
		metrics = append(metrics, StepMetric{
			Layer:    LayerGold,
			Source:   ViewSalesMetrics,
			Records:  len(out.SalesMetrics),
			Duration: time.Since(started),
		})
	}

	if silver.Valid.HasSource(dataset.SourceInventoryTransactions) && silver.Valid.HasSource(dataset.SourceProducts) {
		started := time.Now()
		out.InventoryStatus = inventoryStatus(silver.Valid.InventoryTransactions, silver.Valid.Products)
		out.Views = append(out.Views, ViewInventoryStatus)
		metrics = append(metrics, StepMetric{
			Layer:    LayerGold,
			Source:   ViewInventoryStatus,
			Records:  len(out.InventoryStatus),
			Duration: time.Since(started),
		})
	}

	logging.Info(logCtx, "views computed", slog.Any("views", out.Views))
	return out, metrics
}

func salesMetrics(orders []dataset.SalesOrder, items []dataset.OrderItem) []DepartmentSales {
	itemsByOrder := make(map[string][]dataset.OrderItem, len(orders))
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	byDepartment := make(map[string]*DepartmentSales)
	for _, order := range orders {
		row, ok := byDepartment[order.Department]
		if !ok {
			row = &DepartmentSales{Department: order.Department}
			byDepartment[order.Department] = row
		}

		joined := itemsByOrder[order.OrderID]
		if len(joined) == 0 {
			// Left join keeps the order as a single row with no sales.
			row.OrderCount++
			continue
		}
		row.OrderCount += len(joined)
		for _, item := range joined {
			row.TotalSales += item.LineTotal
		}
	}

	out := make([]DepartmentSales, 0, len(byDepartment))
	for _, row := range byDepartment {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

func inventoryStatus(transactions []dataset.InventoryTransaction, products []dataset.Product) []ProductInventory {
	type acc struct {
		net  int
		last time.Time
	}

	// Rows without a product reference cannot be grouped and are skipped.
	byProduct := make(map[string]*acc)
	for _, t := range transactions {
		if t.ProductID == nil || *t.ProductID == "" {
			continue
		}
		a, ok := byProduct[*t.ProductID]
		if !ok {
			a = &acc{}
			byProduct[*t.ProductID] = a
		}
		a.net += t.Quantity
		if t.TransactionDate.After(a.last) {
			a.last = t.TransactionDate
		}
	}

	master := make(map[string]dataset.Product, len(products))
	for _, p := range products {
		master[p.ProductID] = p
	}

	out := make([]ProductInventory, 0, len(byProduct))
	for productID, a := range byProduct {
		row := ProductInventory{
			ProductID:           productID,
			NetQuantity:         a.net,
			LastTransactionDate: a.last,
		}
		if p, ok := master[productID]; ok {
			row.Name = p.Name
			row.Category = p.Category
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
