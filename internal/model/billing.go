package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingRecord 完工歸檔紀錄，以 identifier 為冪等鍵
type BillingRecord struct {
	ID             int             `json:"id" db:"id"`
	TicketID       int             `json:"ticket_id" db:"ticket_id"`
	Identifier     string          `json:"identifier" db:"identifier"`
	PaymentMethod  string          `json:"payment_method" db:"payment_method"`
	ShippingMethod string          `json:"shipping_method" db:"shipping_method"`
	DeliveryDate   time.Time       `json:"delivery_date" db:"delivery_date"`
	GrossTotal     decimal.Decimal `json:"gross_total" db:"gross_total"`
	Phone          string          `json:"phone" db:"phone"`
	ArchivedAt     time.Time       `json:"archived_at" db:"archived_at"`
}
