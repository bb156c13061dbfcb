package generate

// Fixed vocabularies for realistic German business data. Category name parts
// and price ranges are keyed lookup tables; every product falls into exactly
// one category.

var productCategories = []string{
	"Elektronik", "Bürobedarf", "Möbel", "IT-Equipment", "Verbrauchsmaterial",
}

type priceRange struct {
	min float64
	max float64
}

var categoryPriceRanges = map[string]priceRange{
	"Elektronik":         {500, 2000},
	"Bürobedarf":         {5, 50},
	"Möbel":              {100, 1000},
	"IT-Equipment":       {50, 500},
	"Verbrauchsmaterial": {10, 200},
}

var categoryNameParts = map[string][]string{
	"Elektronik":         {"ThinkPad", "ProBook", "Latitude", "Monitor", "Drucker"},
	"Bürobedarf":         {"Papier", "Ordner", "Stifte", "Marker", "Notizblöcke"},
	"Möbel":              {"Schreibtisch", "Bürostuhl", "Schrank", "Regal", "Lampe"},
	"IT-Equipment":       {"Router", "Switch", "Kabel", "Dockingstation", "Webcam"},
	"Verbrauchsmaterial": {"Toner", "Druckerpatrone", "Batterien", "USB-Sticks", "Reinigungsmittel"},
}

var paymentTermOptions = []string{"Net30", "Net60", "Immediate", "Net45"}

var departments = []string{"Vertrieb", "IT", "HR", "Finanzen", "Einkauf", "Produktion"}

var orderStatuses = []string{"Neu", "In Bearbeitung", "Abgeschlossen", "Storniert"}

// orderStatusWeights is the fixed categorical distribution for order status.
var orderStatusWeights = []float64{0.1, 0.2, 0.6, 0.1}

var shippingMethods = []string{"Standard", "Express", "Economy", "Premium"}

var creditLimitOptions = []int{5000, 10000, 25000, 50000, 100000}

var discountOptions = []float64{0, 0, 0, 0.05, 0.1}

var inventoryTransactionTypes = []string{"Eingang", "Ausgang", "Bestandskorrektur", "Retoure"}

var inventoryLocations = []string{"Hauptlager", "Außenlager", "Versand", "Retouren"}

var inventoryStatuses = []string{"Abgeschlossen", "In Bearbeitung", "Geplant"}

var paymentMethods = []string{"Überweisung", "Lastschrift", "Kreditkarte"}

// paymentDelayOptions keeps 60% of payments on time.
var paymentDelayOptions = []int{0, 0, 0, 5, 10, 15, 30}

const (
	country  = "Deutschland"
	currency = "EUR"

	financialStatusPaid = "Bezahlt"
	financialStatusOpen = "Ausstehend"
)
