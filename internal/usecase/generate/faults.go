package generate

// Fault injection is centralized here so the noise model stays auditable:
// every probabilistic corruption the generators apply is one named class,
// either scaled against the scenario's base error rate or drawn at a fixed
// rate. Field groups null together (a record from a source that never
// captured that attribute group), never individual fields.

type faultClass string

const (
	// Scaled by the base error rate.
	faultProductStockGroup     faultClass = "product_stock_group"
	faultCustomerContactGroup  faultClass = "customer_contact_group"
	faultOrderCustomerGroup    faultClass = "order_customer_group"
	faultDropOrderItems        faultClass = "drop_order_items"
	faultDropSingleItem        faultClass = "drop_single_item"
	faultItemPriceDrift        faultClass = "item_price_drift"
	faultInventoryProductGroup faultClass = "inventory_product_group"
	faultSkipInvoice           faultClass = "skip_invoice"
	faultInvoiceAmountDrift    faultClass = "invoice_amount_drift"

	// Independent of the base error rate.
	faultLateBooking  faultClass = "late_booking"
	faultSplitInvoice faultClass = "split_invoice"
)

// faultScales holds the contractual scale factors relative to the base
// error rate.
var faultScales = map[faultClass]float64{
	faultProductStockGroup:     1.0,
	faultCustomerContactGroup:  1.0,
	faultOrderCustomerGroup:    0.5,
	faultDropOrderItems:        0.3,
	faultDropSingleItem:        0.1,
	faultItemPriceDrift:        1.0,
	faultInventoryProductGroup: 1.0,
	faultSkipInvoice:           0.2,
	faultInvoiceAmountDrift:    1.0,
}

// faultFixedRates holds rates that do not vary with the error rate.
var faultFixedRates = map[faultClass]float64{
	faultLateBooking:  0.3,
	faultSplitInvoice: 0.1,
}

// faultRate resolves the effective probability of a fault class for a base
// error rate.
func faultRate(class faultClass, errorRate float64) float64 {
	if fixed, ok := faultFixedRates[class]; ok {
		return fixed
	}
	return faultScales[class] * errorRate
}

// fault draws once against the effective rate of a class. Draws are
// independent per call.
func (g *genContext) fault(class faultClass) bool {
	return g.rng.Float64() < faultRate(class, g.errorRate)
}
