// Package entity defines data models for the Robokassa merchant service.
package entity

import (
	"errors"
	"fmt"
	"github.com/shopspring/decimal"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrValidation marks caller input the gateway would reject.
var ErrValidation = errors.New("validation failed")

// ShpPrefix is the prefix the gateway requires for merchant custom fields.
const ShpPrefix = "shp_"

// PaymentOptions describes a single payment request.
// Optional fields are omitted from the request and from the signature when empty.
type PaymentOptions struct {
	// Amount to charge, rendered with two decimals (OutSum).
	OutSum decimal.Decimal
	// Shop invoice number; nil lets the gateway assign one.
	InvID          *int64
	Description    string
	OutSumCurrency string
	UserIP         string
	Email          string
	Culture        string
	IncCurrLabel   string
	Encoding       string
	ExpirationDate time.Time
	Receipt        *Receipt
	// Custom fields echoed back by the gateway, keys start with shp_.
	Shp map[string]string
}

// Int64 returns a pointer to v, for the optional InvID.
func Int64(v int64) *int64 {
	return &v
}

// Validate checks the options before they are signed.
func (o *PaymentOptions) Validate() error {
	if o == nil {
		return fmt.Errorf("payment options are nil: %w", ErrValidation)
	}
	if !o.OutSum.IsPositive() {
		return fmt.Errorf("out sum %s must be positive: %w", o.OutSum.String(), ErrValidation)
	}
	if o.InvID != nil && *o.InvID < 0 {
		return fmt.Errorf("invoice id %d is negative: %w", *o.InvID, ErrValidation)
	}
	for key := range o.Shp {
		if !IsShpKey(key) {
			return fmt.Errorf("custom field %q must start with %s: %w", key, ShpPrefix, ErrValidation)
		}
	}
	if o.Receipt != nil {
		if err := o.Receipt.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// OutSumString renders the amount the way it is sent and signed.
func (o *PaymentOptions) OutSumString() string {
	return o.OutSum.StringFixed(2)
}

// InvIDString returns the invoice number or an empty string when absent.
func (o *PaymentOptions) InvIDString() string {
	if o.InvID == nil {
		return ""
	}
	return strconv.FormatInt(*o.InvID, 10)
}

// ExpirationString formats ExpirationDate in the ISO 8601 form the gateway accepts.
func (o *PaymentOptions) ExpirationString() string {
	if o.ExpirationDate.IsZero() {
		return ""
	}
	return o.ExpirationDate.Format("2006-01-02T15:04:05.0000000-07:00")
}

// ReceiptJSON returns the receipt as JSON, or an empty string when no receipt is attached.
func (o *PaymentOptions) ReceiptJSON() (string, error) {
	if o.Receipt == nil {
		return "", nil
	}
	return o.Receipt.JSON()
}

// IsShpKey reports whether key carries the custom field prefix, ignoring case.
func IsShpKey(key string) bool {
	return len(key) > len(ShpPrefix) && strings.EqualFold(key[:len(ShpPrefix)], ShpPrefix)
}

// ShpFromValues collects custom fields from request values, keeping the original key names.
func ShpFromValues(values url.Values) map[string]string {
	shp := make(map[string]string)
	for key := range values {
		if IsShpKey(key) {
			shp[key] = values.Get(key)
		}
	}
	return shp
}

// PaymentOptionsFromValues builds options from a query string:
// out_sum, inv_id, description, email, culture, currency, user_ip and shp_* fields.
func PaymentOptionsFromValues(values url.Values) (*PaymentOptions, error) {
	outSum, err := decimal.NewFromString(values.Get("out_sum"))
	if err != nil {
		return nil, fmt.Errorf("parse out_sum: %v: %w", err, ErrValidation)
	}
	opts := &PaymentOptions{
		OutSum:         outSum,
		Description:    values.Get("description"),
		Email:          values.Get("email"),
		Culture:        values.Get("culture"),
		OutSumCurrency: values.Get("currency"),
		UserIP:         values.Get("user_ip"),
		Shp:            ShpFromValues(values),
	}
	if raw := values.Get("inv_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse inv_id: %v: %w", err, ErrValidation)
		}
		opts.InvID = &id
	}
	if err = opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}
