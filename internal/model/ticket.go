package model

import "time"

// ServiceTicket 客戶送修單 (kosár)
type ServiceTicket struct {
	ID             int       `json:"ID_KOSAR" db:"id"`
	UserID         int       `json:"ID_USER" db:"user_id"`
	ShippingMethod string    `json:"SZALLMOD" db:"shipping_method"`
	PaymentMethod  string    `json:"FIZMOD" db:"payment_method"`
	Description    string    `json:"LEIRAS" db:"description"`
	CreatedAt      time.Time `json:"DATUMIDO" db:"created_at"`
}

// DeletableWithin is how long a customer may withdraw a fresh ticket.
const DeletableWithin = 2 * time.Hour

// IsDeletable 檢查客戶是否仍可刪除送修單
func (t *ServiceTicket) IsDeletable(now time.Time) bool {
	return now.Sub(t.CreatedAt) <= DeletableWithin
}

// CreateTicketRequest 建立送修單請求
type CreateTicketRequest struct {
	ShippingMethod string `json:"szallmod" binding:"required"`
	PaymentMethod  string `json:"fizmod" binding:"required"`
	Description    string `json:"leiras" binding:"required"`
}

// TicketResponse 送修單響應
type TicketResponse struct {
	ID             int    `json:"id"`
	ShippingMethod string `json:"szallmod"`
	PaymentMethod  string `json:"fizmod"`
	Description    string `json:"leiras"`
	CreatedAt      string `json:"datum"`
}
