package model

type GenerationRun struct {
	ID                    uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	RunID                 string  `gorm:"column:run_id;type:text;not null;uniqueIndex"`
	Seed                  int64   `gorm:"column:seed;not null"`
	ErrorRate             float64 `gorm:"column:error_rate;not null"`
	StartDate             string  `gorm:"column:start_date;type:text;not null"`
	EndDate               string  `gorm:"column:end_date;type:text;not null"`
	OutputDir             string  `gorm:"column:output_dir;type:text;not null"`
	Products              int     `gorm:"column:products;not null"`
	Customers             int     `gorm:"column:customers;not null"`
	SalesOrders           int     `gorm:"column:sales_orders;not null"`
	OrderItems            int     `gorm:"column:order_items;not null"`
	InventoryTransactions int     `gorm:"column:inventory_transactions;not null"`
	FinancialTransactions int     `gorm:"column:financial_transactions;not null"`
	CreatedAt             string  `gorm:"column:created_at;type:text;not null;index"`
}

func (GenerationRun) TableName() string {
	return "generation_runs"
}
