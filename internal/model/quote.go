package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteState 報價單狀態
type QuoteState string

const (
	QuoteStateSent    QuoteState = "sent"
	QuoteStateProcess QuoteState = "process"
	QuoteStateClosed  QuoteState = "closed"
)

// IsValid 驗證狀態是否有效
func (s QuoteState) IsValid() bool {
	switch s {
	case QuoteStateSent, QuoteStateProcess, QuoteStateClosed:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s QuoteState) CanTransitionTo(target QuoteState) bool {
	transitions := map[QuoteState][]QuoteState{
		QuoteStateSent:    {QuoteStateProcess, QuoteStateClosed},
		QuoteStateProcess: {QuoteStateClosed},
		QuoteStateClosed:  {}, // 終止狀態
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == target {
			return true
		}
	}
	return false
}

// IsLive reports whether the quote still awaits a decision or work.
func (s QuoteState) IsLive() bool {
	return s == QuoteStateSent || s == QuoteStateProcess
}

// QuoteItem 報價/工單項目 (service_ticket_items)
type QuoteItem struct {
	ID                  int             `json:"id" db:"id"`
	TicketID            int             `json:"ticket_id" db:"ticket_id"`
	CategoryID          int             `json:"category_id" db:"category_id"`
	OperatorID          *int            `json:"operator_id,omitempty" db:"operator_id"`
	Name                string          `json:"name" db:"name"`
	Identifier          string          `json:"identifier" db:"identifier"`
	State               QuoteState      `json:"state" db:"state"`
	LaborHours          decimal.Decimal `json:"labor_hours" db:"labor_hours"`
	LaborRate           decimal.Decimal `json:"labor_rate" db:"labor_rate"`
	MaterialCost        decimal.Decimal `json:"material_cost" db:"material_cost"`
	NetTotal            decimal.Decimal `json:"net_total" db:"net_total"`
	GrossTotal          decimal.Decimal `json:"gross_total" db:"gross_total"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	ReceivedAt          *time.Time      `json:"received_at,omitempty" db:"received_at"`
	ScheduledDeliveryAt *time.Time      `json:"scheduled_delivery_at,omitempty" db:"scheduled_delivery_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// ExpiresAt returns the end of the acceptance window.
func (q *QuoteItem) ExpiresAt(window time.Duration) time.Time {
	return q.CreatedAt.Add(window)
}

// IsExpired 檢查報價是否已超過接受期限
func (q *QuoteItem) IsExpired(now time.Time, window time.Duration) bool {
	return !now.Before(q.ExpiresAt(window))
}

// CompletionView is the latest item joined with its ticket and customer,
// everything the invoice needs.
type CompletionView struct {
	Item           QuoteItem
	CustomerID     int
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	ShippingMethod string
	PaymentMethod  string
}

// Amount accepts a JSON number or a numeric string and keeps the raw text
// so validation can name the offending field.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = Amount(strings.Trim(strings.TrimSpace(string(b)), `"`))
	return nil
}

// IssueQuoteRequest 發送報價請求
type IssueQuoteRequest struct {
	TicketID     int    `json:"taskId" binding:"required"`
	CustomerID   int    `json:"userId" binding:"required"`
	CategoryID   int    `json:"categoryId"`
	OperatorID   int    `json:"operatorId"`
	LaborHours   Amount `json:"munkaora"`
	LaborRate    Amount `json:"munkadij"`
	MaterialCost Amount `json:"anyagdij"`
	DeliveryDate string `json:"kiadDatum"`
}

// IssueQuoteResponse 發送報價響應
type IssueQuoteResponse struct {
	Message    string          `json:"message"`
	Identifier string          `json:"azonosito"`
	Net        decimal.Decimal `json:"netto"`
	Tax        decimal.Decimal `json:"afa"`
	Gross      decimal.Decimal `json:"brutto"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// AcceptResult 接受報價結果
type AcceptResult struct {
	Identifier      string     `json:"azonosito"`
	State           QuoteState `json:"state"`
	AlreadyAccepted bool       `json:"already_accepted"`
}

// CompleteResult 完工結果
type CompleteResult struct {
	Message    string          `json:"message"`
	Identifier string          `json:"azonosito"`
	Net        decimal.Decimal `json:"netto"`
	Tax        decimal.Decimal `json:"afa"`
	Gross      decimal.Decimal `json:"brutto"`
}

// TaskRow 操作員任務列表一行 (ticket LEFT JOIN item JOIN user)
type TaskRow struct {
	TicketID       int              `json:"ID_KOSAR"`
	UserID         int              `json:"ID_USER"`
	ShippingMethod string           `json:"SZALLMOD"`
	PaymentMethod  string           `json:"FIZMOD"`
	Description    string           `json:"LEIRAS"`
	CreatedAt      time.Time        `json:"DATUMIDO"`
	ItemID         *int             `json:"ID_KOSARTETEL"`
	ItemName       *string          `json:"tetelNev"`
	State          *QuoteState      `json:"KONDI"`
	LaborHours     *decimal.Decimal `json:"MUNKAORA"`
	LaborRate      *decimal.Decimal `json:"MUNKADIJ"`
	MaterialCost   *decimal.Decimal `json:"ANYAGDIJ"`
	GrossTotal     *decimal.Decimal `json:"VEGOSSZEG"`
	Identifier     *string          `json:"AZONOSITO"`
	CustomerName   string           `json:"NEV"`
	CustomerEmail  string           `json:"EMAIL"`
}
