package generate

import (
	"errors"

	"datenwerk/internal/dataset"
)

// generateSalesOrders samples a customer per order and inherits its payment
// terms and department. The customer/shipping field group nulls together,
// modeling orders booked without a resolved customer record.
func (g *genContext) generateSalesOrders(n int) ([]dataset.SalesOrder, error) {
	if len(g.customers) == 0 {
		return nil, errors.New("sales orders require customer master data: customers table is empty")
	}

	orders := make([]dataset.SalesOrder, 0, n)

	for i := 0; i < n; i++ {
		orderDate := g.dateBetween(g.start, g.end)
		customer := g.sampleCustomer()

		o := dataset.SalesOrder{
			OrderID:          g.id("SO"),
			OrderDate:        orderDate,
			Status:           g.pickWeighted(orderStatuses, orderStatusWeights),
			ShippingMethod:   g.pick(shippingMethods),
			PaymentTerms:     customer.PaymentTerms,
			Department:       customer.Department,
			ExpectedDelivery: orderDate.AddDate(0, 0, g.intBetween(3, 14)),
		}

		if !g.fault(faultOrderCustomerGroup) {
			customerID := customer.CustomerID
			address := customer.Address
			city := customer.City
			postalCode := customer.PostalCode
			o.CustomerID = &customerID
			o.ShippingAddress = &address
			o.ShippingCity = &city
			o.ShippingPostalCode = &postalCode
		}

		orders = append(orders, o)
	}

	return orders, nil
}

// generateOrderItems builds line items per order. An order can lose all its
// items or single candidate items; the stored unit price (with any drift
// applied, rounded) is the one the line total is computed from, so each row
// stays internally consistent.
func (g *genContext) generateOrderItems(orders []dataset.SalesOrder, minItems, maxItems int) ([]dataset.OrderItem, error) {
	if len(orders) == 0 {
		return nil, errors.New("order items require sales orders: sales_orders table is empty")
	}
	if len(g.products) == 0 {
		return nil, errors.New("order items require product master data: products table is empty")
	}

	items := make([]dataset.OrderItem, 0, len(orders)*minItems)

	for _, order := range orders {
		if g.fault(faultDropOrderItems) {
			continue
		}

		numItems := g.intBetween(minItems, maxItems)
		for i := 0; i < numItems; i++ {
			if g.fault(faultDropSingleItem) {
				continue
			}

			product := g.sampleProduct()
			quantity := g.intBetween(1, 10)
			discount := g.pickFloat(discountOptions)

			unitPrice := product.UnitPrice
			if g.fault(faultItemPriceDrift) {
				unitPrice *= 1 + g.floatBetween(-0.1, 0.1)
			}
			unitPrice = dataset.Round2(unitPrice)

			items = append(items, dataset.OrderItem{
				OrderID:   order.OrderID,
				ProductID: product.ProductID,
				Quantity:  quantity,
				UnitPrice: unitPrice,
				Discount:  discount,
				LineTotal: dataset.Round2(float64(quantity) * unitPrice * (1 - discount)),
			})
		}
	}

	return items, nil
}
