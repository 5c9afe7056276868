package model

import "time"

// OrderStatus 後台審核狀態
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusAccepted OrderStatus = "accepted"
	OrderStatusRejected OrderStatus = "rejected"
)

// IsValid 驗證狀態是否有效
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusRejected:
		return true
	}
	return false
}

// AdminOrder 後台訂單列表一行
type AdminOrder struct {
	TicketID       int         `json:"ID_KOSAR"`
	UserID         int         `json:"ID_USER"`
	ShippingMethod string      `json:"SZALLMOD"`
	PaymentMethod  string      `json:"FIZMOD"`
	Description    string      `json:"LEIRAS"`
	CreatedAt      time.Time   `json:"DATUMIDO"`
	CustomerName   string      `json:"UGYFEL_NEV"`
	CustomerEmail  string      `json:"UGYFEL_EMAIL"`
	Status         OrderStatus `json:"STATUSZ"`
	Note           *string     `json:"MEGJEGYZES"`
	UpdatedAt      *time.Time  `json:"UPDATED_AT"`
}

// UpdateOrderStatusRequest 更新審核狀態請求
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
	Note   string      `json:"note"`
}

// OrderStats 統計
type OrderStats struct {
	Total    int
	Pending  int
	Accepted int
	Rejected int
}

// SendMessageRequest 後台寄信給客戶
type SendMessageRequest struct {
	UserID  int    `json:"userId" binding:"required"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// UpdateRoleRequest 設定客戶管理員權限
type UpdateRoleRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

// CommandRequest 後台指令
type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

// CommandResult 指令輸出
type CommandResult struct {
	Output string `json:"output"`
}
