// Package dataset defines the six-table business data model shared by the
// generator and the pipeline stages, plus its delimited-file codec.
package dataset

import "time"

// Canonical source names. These double as CSV file basenames.
const (
	SourceProducts              = "products"
	SourceCustomers             = "customers"
	SourceSalesOrders           = "sales_orders"
	SourceOrderItems            = "order_items"
	SourceInventoryTransactions = "inventory_transactions"
	SourceFinancialTransactions = "financial_transactions"
)

// SourceNames lists all sources in generation order.
var SourceNames = []string{
	SourceProducts,
	SourceCustomers,
	SourceSalesOrders,
	SourceOrderItems,
	SourceInventoryTransactions,
	SourceFinancialTransactions,
}

// TermDays maps payment terms to the invoice due offset in days.
var TermDays = map[string]int{
	"Immediate": 0,
	"Net30":     30,
	"Net45":     45,
	"Net60":     60,
}

// Product is a master-data record. The stock/supplier group nulls together
// under fault injection.
type Product struct {
	ProductID    string
	Name         string
	Category     string
	UnitPrice    float64
	MinStock     *int
	MaxStock     *int
	SupplierID   *string
	LeadTimeDays int
}

// Customer is a master-data record. The contact group (email, phone, credit
// limit) nulls together under fault injection.
type Customer struct {
	CustomerID    string
	CompanyName   string
	ContactName   string
	Email         *string
	Phone         *string
	Address       string
	City          string
	PostalCode    string
	Country       string
	CustomerSince time.Time
	CreditLimit   *int
	PaymentTerms  string
	Department    string
}

// SalesOrder references a customer by key. The customer/shipping group nulls
// together, modeling orders booked without a resolved customer record.
type SalesOrder struct {
	OrderID            string
	CustomerID         *string
	OrderDate          time.Time
	Status             string
	ShippingMethod     string
	PaymentTerms       string
	Department         string
	ShippingAddress    *string
	ShippingCity       *string
	ShippingPostalCode *string
	ExpectedDelivery   time.Time
}

// OrderItem is keyed by (OrderID, ProductID); the pair is not unique because
// a product can be sampled twice for the same order.
type OrderItem struct {
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice float64
	Discount  float64
	LineTotal float64
}

// InventoryTransaction quantity is signed by type: Eingang and Retoure
// positive, Ausgang negative, Bestandskorrektur either.
type InventoryTransaction struct {
	TransactionID     string
	ProductID         *string
	TransactionType   string
	Quantity          int
	TransactionDate   time.Time
	UnitCost          *float64
	Location          string
	ReferenceDocument string
	Status            string
}

// FinancialTransaction derives from a sales order and its item totals.
// Amount is absent when the order had no surviving items.
type FinancialTransaction struct {
	TransactionID string
	OrderID       string
	CustomerID    *string
	InvoiceDate   time.Time
	DueDate       time.Time
	Amount        *float64
	PaymentDate   time.Time
	PaymentMethod string
	Status        string
	Department    string
	Currency      string
}

// Dataset holds one run's raw tables. Sources lists which tables are
// actually populated (a dataset loaded from a partial directory carries only
// the files it found); generated datasets always carry all six.
type Dataset struct {
	Products              []Product
	Customers             []Customer
	SalesOrders           []SalesOrder
	OrderItems            []OrderItem
	InventoryTransactions []InventoryTransaction
	FinancialTransactions []FinancialTransaction

	Sources []string
}

func (d Dataset) HasSource(name string) bool {
	for _, s := range d.Sources {
		if s == name {
			return true
		}
	}
	return false
}

// RecordCount returns the row count for a source name.
func (d Dataset) RecordCount(name string) int {
	switch name {
	case SourceProducts:
		return len(d.Products)
	case SourceCustomers:
		return len(d.Customers)
	case SourceSalesOrders:
		return len(d.SalesOrders)
	case SourceOrderItems:
		return len(d.OrderItems)
	case SourceInventoryTransactions:
		return len(d.InventoryTransactions)
	case SourceFinancialTransactions:
		return len(d.FinancialTransactions)
	default:
		return 0
	}
}

// TotalRecords sums the row counts of all present sources.
func (d Dataset) TotalRecords() int {
	total := 0
	for _, s := range d.Sources {
		total += d.RecordCount(s)
	}
	return total
}
