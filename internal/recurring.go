package internal

import (
	"context"
	"fmt"
	"robokassa/entity"
	"strconv"
	"strings"
)

// Recurring charges a customer again using the card of a previous, successful invoice.
// The request is signed like a regular payment; a new invoice id is required.
func (m *Merchant) Recurring(ctx context.Context, options *entity.PaymentOptions, previousInvID int64) error {
	if options == nil || options.InvID == nil {
		return fmt.Errorf("recurring payment requires an invoice id: %w", ErrValidation)
	}
	if previousInvID <= 0 {
		return fmt.Errorf("previous invoice id %d is invalid: %w", previousInvID, ErrValidation)
	}
	signature, receipt, err := m.sign(options)
	if err != nil {
		return err
	}

	form := map[string]string{
		"MerchantLogin":     m.conf.Login,
		"InvoiceID":         options.InvIDString(),
		"PreviousInvoiceID": strconv.FormatInt(previousInvID, 10),
		"OutSum":            options.OutSumString(),
		"SignatureValue":    signature.Value,
	}
	if options.Description != "" {
		form["Description"] = options.Description
	}
	if receipt != "" {
		form["Receipt"] = urlEncode(receipt)
	}
	for key, value := range options.Shp {
		form[key] = value
	}
	if m.conf.IsTest {
		form["IsTest"] = "1"
	}
	m.debug(fmt.Sprintf("recurring invoice %s after %d", options.InvIDString(), previousInvID))

	response, err := m.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(m.conf.RecurringUrl)
	if err != nil {
		return fmt.Errorf("recurring request: %v", err)
	}
	if response.IsError() {
		return fmt.Errorf("recurring request: status %d", response.StatusCode())
	}
	body := strings.TrimSpace(response.String())
	if !strings.HasPrefix(body, "OK") {
		return fmt.Errorf("recurring rejected: %s", body)
	}
	return nil
}
