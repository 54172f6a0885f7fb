package domain

import "time"

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Fabric struct {
	ID         int64     `json:"id"`
	FabricName string    `json:"fabric_name"`
	Color      *string   `json:"color,omitempty"`
	PricePerKg float64   `json:"price_per_kg"`
	StockKg    float64   `json:"stock_kg"`
	AlarmKg    *float64  `json:"alarm_kg,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Transaction is a completed sale. LineItems keep the weight exactly as it was
// entered at the counter; use LineItem.WeightKg to read it as a number.
type Transaction struct {
	ID               string     `json:"id"`
	CustomerName     string     `json:"customer_name"`
	CreatedAt        time.Time  `json:"created_at"`
	LineItems        []LineItem `json:"line_items"`
	TotalTransaction float64    `json:"total_transaction"`
	AdminUsername    *string    `json:"admin_username,omitempty"`
}

type LineItem struct {
	FabricName string  `json:"fabric_name"`
	Weight     string  `json:"weight"`
	PricePerKg float64 `json:"price_per_kg"`
	TotalPrice float64 `json:"total_price"`
}

func (l LineItem) WeightKg() float64 {
	return ParseWeight(l.Weight)
}

// TotalWeightKg is the unrounded sum of the line item weights.
func (t Transaction) TotalWeightKg() float64 {
	total := 0.0
	for _, item := range t.LineItems {
		total += item.WeightKg()
	}
	return total
}

type TransactionLineInput struct {
	FabricName string  `json:"fabric_name"`
	Weight     string  `json:"weight"`
	PricePerKg float64 `json:"price_per_kg"`
}

type FabricImportRow struct {
	FabricName string   `json:"fabric_name"`
	Color      *string  `json:"color,omitempty"`
	PricePerKg float64  `json:"price_per_kg"`
	StockKg    float64  `json:"stock_kg"`
	AlarmKg    *float64 `json:"alarm_kg,omitempty"`
}

type LowStockRow struct {
	FabricName string  `json:"fabric_name"`
	StockKg    float64 `json:"stock_kg"`
	AlarmKg    float64 `json:"alarm_kg"`
	NeededKg   float64 `json:"needed_kg"`
	PricePerKg float64 `json:"price_per_kg"`
}

type ActionEntry struct {
	ActionID      int64     `json:"action_id"`
	CreatedAt     time.Time `json:"created_at"`
	AdminUsername *string   `json:"admin_username,omitempty"`
	ActionType    string    `json:"action_type"`
	Title         string    `json:"title"`
	Details       string    `json:"details"`
}

type AdminUser struct {
	AdminID         int64  `json:"admin_id"`
	Username        string `json:"username"`
	Role            string `json:"role"`
	AutoLockMinutes int    `json:"auto_lock_minutes"`
}
