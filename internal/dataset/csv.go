package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"datenwerk/internal/errs"
)

const (
	// DateLayout is the ISO date form used for all date fields.
	DateLayout = "2006-01-02"
	// DateTimeLayout is used for inventory transaction timestamps.
	DateTimeLayout = "2006-01-02 15:04:05"
)

var sourceColumns = map[string][]string{
	SourceProducts: {
		"product_id", "name", "category", "unit_price",
		"min_stock", "max_stock", "supplier_id", "lead_time_days",
	},
	SourceCustomers: {
		"customer_id", "company_name", "contact_name", "email", "phone",
		"address", "city", "postal_code", "country", "customer_since",
		"credit_limit", "payment_terms", "department",
	},
	SourceSalesOrders: {
		"order_id", "customer_id", "order_date", "status", "shipping_method",
		"payment_terms", "department", "shipping_address", "shipping_city",
		"shipping_postal_code", "expected_delivery",
	},
	SourceOrderItems: {
		"order_id", "product_id", "quantity", "unit_price", "discount", "line_total",
	},
	SourceInventoryTransactions: {
		"transaction_id", "product_id", "transaction_type", "quantity",
		"transaction_date", "unit_cost", "location", "reference_document", "status",
	},
	SourceFinancialTransactions: {
		"transaction_id", "order_id", "customer_id", "invoice_date", "due_date",
		"amount", "payment_date", "payment_method", "status", "department", "currency",
	},
}

// Columns returns the column list for a source, nil for unknown sources.
func Columns(source string) []string {
	cols, ok := sourceColumns[source]
	if !ok {
		return nil
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// WriteDir writes every present source of d as <dir>/<source>.csv.
func WriteDir(dir string, d Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrapf(err, "create data directory %q", dir)
	}

	for _, source := range d.Sources {
		rows, err := encodeSource(d, source)
		if err != nil {
			return err
		}
		if err := writeFile(filepath.Join(dir, source+".csv"), sourceColumns[source], rows); err != nil {
			return errs.Wrapf(err, "write source %q", source)
		}
	}
	return nil
}

// ReadDir loads every source file found under dir. Missing files are not an
// error; the returned dataset's Sources reflects what was present. Unreadable
// or malformed files abort the load with file context.
func ReadDir(dir string) (Dataset, error) {
	var d Dataset

	for _, source := range SourceNames {
		path := filepath.Join(dir, source+".csv")
		records, err := readFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Dataset{}, errs.Wrapf(err, "read source %q", source)
		}

		if err := decodeSource(&d, source, path, records); err != nil {
			return Dataset{}, errs.Wrapf(err, "decode source %q", source)
		}
		d.Sources = append(d.Sources, source)
	}

	return d, nil
}

func writeFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrapf(err, "create %q", path)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return errs.Wrap(err, "write header")
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return errs.Wrap(err, "write rows")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return errs.Wrap(err, "flush rows")
	}
	return f.Close()
}

func readFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errs.Wrapf(err, "parse %q", path)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%q has no header row", path)
	}
	return records, nil
}

func encodeSource(d Dataset, source string) ([][]string, error) {
	switch source {
	case SourceProducts:
		rows := make([][]string, 0, len(d.Products))
		for _, p := range d.Products {
			rows = append(rows, []string{
				p.ProductID, p.Name, p.Category, fmtMoney(p.UnitPrice),
				fmtIntPtr(p.MinStock), fmtIntPtr(p.MaxStock),
				fmtStringPtr(p.SupplierID), strconv.Itoa(p.LeadTimeDays),
			})
		}
		return rows, nil
	case SourceCustomers:
		rows := make([][]string, 0, len(d.Customers))
		for _, c := range d.Customers {
			rows = append(rows, []string{
				c.CustomerID, c.CompanyName, c.ContactName,
				fmtStringPtr(c.Email), fmtStringPtr(c.Phone),
				c.Address, c.City, c.PostalCode, c.Country,
				fmtDate(c.CustomerSince), fmtIntPtr(c.CreditLimit),
				c.PaymentTerms, c.Department,
			})
		}
		return rows, nil
	case SourceSalesOrders:
		rows := make([][]string, 0, len(d.SalesOrders))
		for _, o := range d.SalesOrders {
			rows = append(rows, []string{
				o.OrderID, fmtStringPtr(o.CustomerID), fmtDate(o.OrderDate),
				o.Status, o.ShippingMethod, o.PaymentTerms, o.Department,
				fmtStringPtr(o.ShippingAddress), fmtStringPtr(o.ShippingCity),
				fmtStringPtr(o.ShippingPostalCode), fmtDate(o.ExpectedDelivery),
			})
		}
		return rows, nil
	case SourceOrderItems:
		rows := make([][]string, 0, len(d.OrderItems))
		for _, it := range d.OrderItems {
			rows = append(rows, []string{
				it.OrderID, it.ProductID, strconv.Itoa(it.Quantity),
				fmtMoney(it.UnitPrice), fmtFloat(it.Discount), fmtMoney(it.LineTotal),
			})
		}
		return rows, nil
	case SourceInventoryTransactions:
		rows := make([][]string, 0, len(d.InventoryTransactions))
		for _, t := range d.InventoryTransactions {
			rows = append(rows, []string{
				t.TransactionID, fmtStringPtr(t.ProductID), t.TransactionType,
				strconv.Itoa(t.Quantity), t.TransactionDate.Format(DateTimeLayout),
				fmtFloatPtr(t.UnitCost), t.Location, t.ReferenceDocument, t.Status,
			})
		}
		return rows, nil
	case SourceFinancialTransactions:
		rows := make([][]string, 0, len(d.FinancialTransactions))
		for _, t := range d.FinancialTransactions {
			rows = append(rows, []string{
				t.TransactionID, t.OrderID, fmtStringPtr(t.CustomerID),
				fmtDate(t.InvoiceDate), fmtDate(t.DueDate), fmtFloatPtr(t.Amount),
				fmtDate(t.PaymentDate), t.PaymentMethod, t.Status,
				t.Department, t.Currency,
			})
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}
}

func decodeSource(d *Dataset, source string, path string, records [][]string) error {
	idx := headerIndex(records[0])

	for i, cells := range records[1:] {
		row := rowReader{path: path, line: i + 2, idx: idx, cells: cells}

		switch source {
		case SourceProducts:
			p := Product{
				ProductID:  row.str("product_id"),
				Name:       row.str("name"),
				Category:   row.str("category"),
				SupplierID: row.strPtr("supplier_id"),
			}
			p.UnitPrice = row.float("unit_price")
			p.MinStock = row.intPtr("min_stock")
			p.MaxStock = row.intPtr("max_stock")
			p.LeadTimeDays = row.intval("lead_time_days")
			if row.err != nil {
				return row.err
			}
			d.Products = append(d.Products, p)
		case SourceCustomers:
			c := Customer{
				CustomerID:   row.str("customer_id"),
				CompanyName:  row.str("company_name"),
				ContactName:  row.str("contact_name"),
				Email:        row.strPtr("email"),
				Phone:        row.strPtr("phone"),
				Address:      row.str("address"),
				City:         row.str("city"),
				PostalCode:   row.str("postal_code"),
				Country:      row.str("country"),
				PaymentTerms: row.str("payment_terms"),
				Department:   row.str("department"),
			}
			c.CustomerSince = row.date("customer_since")
			c.CreditLimit = row.intPtr("credit_limit")
			if row.err != nil {
				return row.err
			}
			d.Customers = append(d.Customers, c)
		case SourceSalesOrders:
			o := SalesOrder{
				OrderID:            row.str("order_id"),
				CustomerID:         row.strPtr("customer_id"),
				Status:             row.str("status"),
				ShippingMethod:     row.str("shipping_method"),
				PaymentTerms:       row.str("payment_terms"),
				Department:         row.str("department"),
				ShippingAddress:    row.strPtr("shipping_address"),
				ShippingCity:       row.strPtr("shipping_city"),
				ShippingPostalCode: row.strPtr("shipping_postal_code"),
			}
			o.OrderDate = row.date("order_date")
			o.ExpectedDelivery = row.date("expected_delivery")
			if row.err != nil {
				return row.err
			}
			d.SalesOrders = append(d.SalesOrders, o)
		case SourceOrderItems:
			it := OrderItem{
				OrderID:   row.str("order_id"),
				ProductID: row.str("product_id"),
			}
			it.Quantity = row.intval("quantity")
			it.UnitPrice = row.float("unit_price")
			it.Discount = row.float("discount")
			it.LineTotal = row.float("line_total")
			if row.err != nil {
				return row.err
			}
			d.OrderItems = append(d.OrderItems, it)
		case SourceInventoryTransactions:
			t := InventoryTransaction{
				TransactionID:     row.str("transaction_id"),
				ProductID:         row.strPtr("product_id"),
				TransactionType:   row.str("transaction_type"),
				Location:          row.str("location"),
				ReferenceDocument: row.str("reference_document"),
				Status:            row.str("status"),
			}
			t.Quantity = row.intval("quantity")
			t.TransactionDate = row.date("transaction_date")
			t.UnitCost = row.floatPtr("unit_cost")
			if row.err != nil {
				return row.err
			}
			d.InventoryTransactions = append(d.InventoryTransactions, t)
		case SourceFinancialTransactions:
			t := FinancialTransaction{
				TransactionID: row.str("transaction_id"),
				OrderID:       row.str("order_id"),
				CustomerID:    row.strPtr("customer_id"),
				PaymentMethod: row.str("payment_method"),
				Status:        row.str("status"),
				Department:    row.str("department"),
				Currency:      row.str("currency"),
			}
			t.InvoiceDate = row.date("invoice_date")
			t.DueDate = row.date("due_date")
			t.Amount = row.floatPtr("amount")
			t.PaymentDate = row.date("payment_date")
			if row.err != nil {
				return row.err
			}
			d.FinancialTransactions = append(d.FinancialTransactions, t)
		default:
			return fmt.Errorf("unknown source %q", source)
		}
	}
	return nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	return idx
}

// rowReader reads typed cells by column name, remembering the first error so
// callers can chain lookups and check once.
type rowReader struct {
	path  string
	line  int
	idx   map[string]int
	cells []string
	err   error
}

func (r *rowReader) raw(col string) (string, bool) {
	i, ok := r.idx[col]
	if !ok || i >= len(r.cells) {
		return "", false
	}
	return r.cells[i], true
}

func (r *rowReader) fail(col string, err error) {
	if r.err == nil {
		r.err = errs.Wrapf(err, "%s:%d column %q", r.path, r.line, col)
	}
}

func (r *rowReader) str(col string) string {
	v, _ := r.raw(col)
	return v
}

func (r *rowReader) strPtr(col string) *string {
	v, ok := r.raw(col)
	if !ok || v == "" {
		return nil
	}
	return &v
}

func (r *rowReader) intval(col string) int {
	v, ok := r.raw(col)
	if !ok || v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(col, err)
		return 0
	}
	return n
}

func (r *rowReader) intPtr(col string) *int {
	v, ok := r.raw(col)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(col, err)
		return nil
	}
	return &n
}

func (r *rowReader) float(col string) float64 {
	v, ok := r.raw(col)
	if !ok || v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(col, err)
		return 0
	}
	return f
}

func (r *rowReader) floatPtr(col string) *float64 {
	v, ok := r.raw(col)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(col, err)
		return nil
	}
	return &f
}

func (r *rowReader) date(col string) time.Time {
	v, ok := r.raw(col)
	if !ok || v == "" {
		return time.Time{}
	}
	for _, layout := range []string{DateTimeLayout, DateLayout} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	r.fail(col, fmt.Errorf("unparseable date %q", v))
	return time.Time{}
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func fmtMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return fmtMoney(*v)
}

func fmtIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func fmtStringPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
