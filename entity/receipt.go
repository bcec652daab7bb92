package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/shopspring/decimal"
	"strings"
)

// Receipt is the fiscal receipt attached to a payment (54-FZ).
type Receipt struct {
	// Taxation system: osn, usn_income, usn_income_outcome, esn, patent
	Sno   string        `json:"sno,omitempty"`
	Items []ReceiptItem `json:"items"`
}

// ReceiptItem is a single receipt position.
type ReceiptItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Sum      decimal.Decimal `json:"sum"`
	// full_prepayment, prepayment, advance, full_payment, partial_payment, credit, credit_payment
	PaymentMethod string `json:"payment_method,omitempty"`
	// commodity, excise, job, service, payment, ...
	PaymentObject string `json:"payment_object,omitempty"`
	// none, vat0, vat10, vat110, vat20, vat120
	Tax              string `json:"tax"`
	NomenclatureCode string `json:"nomenclature_code,omitempty"`
}

// MarshalJSON writes quantity and sum as JSON numbers; the gateway rejects quoted amounts.
// Fields keep declaration order and HTML characters are written as is.
func (i ReceiptItem) MarshalJSON() ([]byte, error) {
	item := struct {
		Name             string      `json:"name"`
		Quantity         json.Number `json:"quantity"`
		Sum              json.Number `json:"sum"`
		PaymentMethod    string      `json:"payment_method,omitempty"`
		PaymentObject    string      `json:"payment_object,omitempty"`
		Tax              string      `json:"tax"`
		NomenclatureCode string      `json:"nomenclature_code,omitempty"`
	}{
		Name:             i.Name,
		Quantity:         json.Number(i.Quantity.String()),
		Sum:              json.Number(i.Sum.String()),
		PaymentMethod:    i.PaymentMethod,
		PaymentObject:    i.PaymentObject,
		Tax:              i.Tax,
		NomenclatureCode: i.NomenclatureCode,
	}
	return encode(item)
}

// Validate checks the receipt has at least one well-formed position.
func (r *Receipt) Validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("receipt has no items: %w", ErrValidation)
	}
	for n, item := range r.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("receipt item %d has no name: %w", n, ErrValidation)
		}
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("receipt item %d quantity must be positive: %w", n, ErrValidation)
		}
		if item.Sum.IsNegative() {
			return fmt.Errorf("receipt item %d sum is negative: %w", n, ErrValidation)
		}
		if item.Tax == "" {
			return fmt.Errorf("receipt item %d has no tax: %w", n, ErrValidation)
		}
	}
	return nil
}

// JSON serializes the receipt deterministically: struct field order, no HTML escaping.
func (r *Receipt) JSON() (string, error) {
	data, err := encode(r)
	if err != nil {
		return "", fmt.Errorf("encode receipt: %v", err)
	}
	return string(data), nil
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
