package generate

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"datenwerk/internal/dataset"
	"datenwerk/internal/errs"
)

// Scenario parameterizes one generation run.
type Scenario struct {
	Seed                  int64
	ErrorRate             float64
	StartDate             time.Time
	EndDate               time.Time
	Products              int
	Customers             int
	SalesOrders           int
	InventoryTransactions int
	MinItemsPerOrder      int
	MaxItemsPerOrder      int
}

// DefaultScenario mirrors the demo defaults: two years of data at a 15%
// error rate.
func DefaultScenario() Scenario {
	return Scenario{
		ErrorRate:             0.15,
		StartDate:             time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:               time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Products:              100,
		Customers:             200,
		SalesOrders:           1000,
		InventoryTransactions: 2000,
		MinItemsPerOrder:      1,
		MaxItemsPerOrder:      5,
	}
}

func (s Scenario) Validate() error {
	if s.ErrorRate < 0 || s.ErrorRate > 1 {
		return fmt.Errorf("error_rate must be in [0,1], got %v", s.ErrorRate)
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return errors.New("start_date and end_date are required")
	}
	if !s.EndDate.After(s.StartDate) {
		return errors.New("end_date must be after start_date")
	}
	if s.Products <= 0 || s.Customers <= 0 || s.SalesOrders <= 0 || s.InventoryTransactions <= 0 {
		return errors.New("record counts must be positive")
	}
	if s.MinItemsPerOrder < 1 || s.MaxItemsPerOrder < s.MinItemsPerOrder {
		return errors.New("items_per_order must be an ascending positive range")
	}
	return nil
}

type scenarioDatasetProfile struct {
	Seed                  int64   `toml:"seed"`
	ErrorRate             float64 `toml:"error_rate"`
	StartDate             string  `toml:"start_date"`
	EndDate               string  `toml:"end_date"`
	Products              int     `toml:"products"`
	Customers             int     `toml:"customers"`
	Orders                int     `toml:"orders"`
	InventoryTransactions int     `toml:"inventory_transactions"`
	ItemsPerOrder         []int   `toml:"items_per_order"`
}

type scenarioProfile struct {
	Version int                    `toml:"version"`
	Dataset scenarioDatasetProfile `toml:"dataset"`
}

// LoadScenario reads a TOML scenario profile. Absent keys keep their
// defaults; the result is validated.
func LoadScenario(path string) (Scenario, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Scenario{}, errors.New("scenario file is required")
	}

	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return Scenario{}, errs.Wrapf(err, "read scenario profile %q", trimmed)
	}

	var profile scenarioProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return Scenario{}, errs.Wrapf(err, "parse scenario profile %q", trimmed)
	}
	if profile.Version != 1 {
		return Scenario{}, fmt.Errorf("unsupported scenario version %d: expected version = 1", profile.Version)
	}

	scn := DefaultScenario()
	ds := profile.Dataset

	if ds.Seed != 0 {
		scn.Seed = ds.Seed
	}
	if ds.ErrorRate != 0 {
		scn.ErrorRate = ds.ErrorRate
	}
	if ds.StartDate != "" {
		scn.StartDate, err = time.Parse(dataset.DateLayout, ds.StartDate)
		if err != nil {
			return Scenario{}, errs.Wrap(err, "parse dataset.start_date")
		}
	}
	if ds.EndDate != "" {
		scn.EndDate, err = time.Parse(dataset.DateLayout, ds.EndDate)
		if err != nil {
			return Scenario{}, errs.Wrap(err, "parse dataset.end_date")
		}
	}
	if ds.Products != 0 {
		scn.Products = ds.Products
	}
	if ds.Customers != 0 {
		scn.Customers = ds.Customers
	}
	if ds.Orders != 0 {
		scn.SalesOrders = ds.Orders
	}
	if ds.InventoryTransactions != 0 {
		scn.InventoryTransactions = ds.InventoryTransactions
	}
	if len(ds.ItemsPerOrder) > 0 {
		if len(ds.ItemsPerOrder) != 2 {
			return Scenario{}, errors.New("dataset.items_per_order must be [min, max]")
		}
		scn.MinItemsPerOrder = ds.ItemsPerOrder[0]
		scn.MaxItemsPerOrder = ds.ItemsPerOrder[1]
	}

	if err := scn.Validate(); err != nil {
		return Scenario{}, errs.Wrapf(err, "invalid scenario profile %q", trimmed)
	}
	return scn, nil
}
