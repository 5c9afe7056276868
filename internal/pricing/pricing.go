// Package pricing computes quote totals with decimal arithmetic.
package pricing

import (
	"strings"

	apperrors "procomp-service/pkg/app_errors"

	"github.com/shopspring/decimal"
)

// VATRate is the Hungarian standard VAT (27%).
var VATRate = decimal.RequireFromString("0.27")

const (
	FieldLaborHours   = "labor_hours"
	FieldLaborRate    = "labor_rate"
	FieldMaterialCost = "material_cost"
	FieldGrossTotal   = "gross_total"
)

// 欄位上限對應 NUMERIC(10,2) / NUMERIC(14,2)
var (
	maxLaborHours = decimal.New(1, 8)
	maxAmount     = decimal.New(1, 12)
)

const maxScale = 2

// Inputs are the three priced quantities of a quote.
type Inputs struct {
	LaborHours   decimal.Decimal
	LaborRate    decimal.Decimal
	MaterialCost decimal.Decimal
}

// Breakdown is the charge summary printed on quotes and invoices.
type Breakdown struct {
	Labor decimal.Decimal `json:"labor"`
	Net   decimal.Decimal `json:"net"`
	Tax   decimal.Decimal `json:"tax"`
	Gross decimal.Decimal `json:"gross"`
}

// ParseInputs parses and range-checks the raw numeric inputs.
func ParseInputs(hours, rate, material string) (Inputs, error) {
	h, err := parseField(FieldLaborHours, hours, maxLaborHours)
	if err != nil {
		return Inputs{}, err
	}
	r, err := parseField(FieldLaborRate, rate, maxAmount)
	if err != nil {
		return Inputs{}, err
	}
	m, err := parseField(FieldMaterialCost, material, maxAmount)
	if err != nil {
		return Inputs{}, err
	}

	in := Inputs{LaborHours: h, LaborRate: r, MaterialCost: m}
	if err := in.Validate(); err != nil {
		return Inputs{}, err
	}
	// 總額也要放得進 NUMERIC(14,2)
	if Calculate(in).Gross.Abs().GreaterThanOrEqual(maxAmount) {
		return Inputs{}, apperrors.NewValidationError(FieldGrossTotal, "is too large")
	}
	return in, nil
}

// Validate enforces hours > 0, rate > 0, material >= 0.
func (in Inputs) Validate() error {
	if !in.LaborHours.IsPositive() {
		return apperrors.NewValidationError(FieldLaborHours, "must be greater than zero")
	}
	if !in.LaborRate.IsPositive() {
		return apperrors.NewValidationError(FieldLaborRate, "must be greater than zero")
	}
	if in.MaterialCost.IsNegative() {
		return apperrors.NewValidationError(FieldMaterialCost, "must not be negative")
	}
	return nil
}

// parseField 只接受資料庫欄位能原樣保存的值，避免寫入時被四捨五入
func parseField(field, raw string, limit decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, apperrors.NewValidationError(field, "is required")
	}
	// decimal rejects NaN/Inf, so anything that parses is finite
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperrors.NewValidationError(field, "is not a number")
	}
	if !d.Equal(d.Round(maxScale)) {
		return decimal.Zero, apperrors.NewValidationError(field, "must have at most 2 decimal places")
	}
	if d.Abs().GreaterThanOrEqual(limit) {
		return decimal.Zero, apperrors.NewValidationError(field, "is too large")
	}
	return d, nil
}

// Calculate returns net = hours*rate + material, tax = net*VAT, gross = net+tax.
// Amounts are rounded to two decimals; Net+Tax always equals Gross.
func Calculate(in Inputs) Breakdown {
	labor := in.LaborHours.Mul(in.LaborRate).Round(2)
	net := labor.Add(in.MaterialCost).Round(2)
	tax := net.Mul(VATRate).Round(2)
	return Breakdown{
		Labor: labor,
		Net:   net,
		Tax:   tax,
		Gross: net.Add(tax),
	}
}
