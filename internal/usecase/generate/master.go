package generate

import (
	"fmt"
	"time"

	"datenwerk/internal/dataset"
)

// generateProducts builds the product master table. Category decides the
// name vocabulary and price range.
func (g *genContext) generateProducts(n int) []dataset.Product {
	products := make([]dataset.Product, 0, n)

	for i := 0; i < n; i++ {
		category := g.pick(productCategories)
		bounds := categoryPriceRanges[category]

		p := dataset.Product{
			ProductID:    g.id("P"),
			Name:         fmt.Sprintf("%s %03d", g.pick(categoryNameParts[category]), g.rng.Intn(1000)),
			Category:     category,
			UnitPrice:    dataset.Round2(g.floatBetween(bounds.min, bounds.max)),
			LeadTimeDays: g.intBetween(1, 30),
		}

		if !g.fault(faultProductStockGroup) {
			minStock := g.intBetween(10, 50)
			maxStock := g.intBetween(100, 500)
			supplierID := g.id("S")
			p.MinStock = &minStock
			p.MaxStock = &maxStock
			p.SupplierID = &supplierID
		}

		products = append(products, p)
	}

	return products
}

// generateCustomers builds the customer master table. The contact group
// (email, phone, credit limit) nulls together under fault injection.
func (g *genContext) generateCustomers(n int) []dataset.Customer {
	customers := make([]dataset.Customer, 0, n)

	for i := 0; i < n; i++ {
		c := dataset.Customer{
			CustomerID:    g.id("C"),
			CompanyName:   g.faker.Company(),
			ContactName:   g.faker.Name(),
			Address:       g.faker.Street(),
			City:          g.faker.City(),
			PostalCode:    g.faker.Zip(),
			Country:       country,
			CustomerSince: g.dateBetween(g.now.AddDate(-5, 0, 0), g.now).Truncate(24 * time.Hour),
			PaymentTerms:  g.pick(paymentTermOptions),
			Department:    g.pick(departments),
		}

		if !g.fault(faultCustomerContactGroup) {
			email := g.faker.Email()
			phone := g.faker.Phone()
			creditLimit := g.pickInt(creditLimitOptions)
			c.Email = &email
			c.Phone = &phone
			c.CreditLimit = &creditLimit
		}

		customers = append(customers, c)
	}

	return customers
}
