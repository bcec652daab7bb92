package services

import (
	"context"
	"robokassa/entity"
)

// Merchant is the gateway surface used by the HTTP server.
type Merchant interface {
	PaymentURL(options *entity.PaymentOptions) (string, error)
	Form(options *entity.PaymentOptions) (string, error)
	VerifyResult(callback *entity.Callback) bool
	VerifySuccess(callback *entity.Callback) bool
	SendSMS(ctx context.Context, phone, message string) (*entity.SmsResponse, error)
	Recurring(ctx context.Context, options *entity.PaymentOptions, previousInvID int64) error
}
