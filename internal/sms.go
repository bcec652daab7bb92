package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"robokassa/entity"
	"unicode/utf8"
)

// SmsMaxLength is the longest message the SMS service accepts, in characters.
const SmsMaxLength = 128

var nonDigits = regexp.MustCompile(`\D+`)

// SmsRequest validates and signs an SMS send request.
// The phone number keeps only its digits; the signature is Login:phone:message:Password1.
func (m *Merchant) SmsRequest(phone, message string) (*entity.SmsRequest, error) {
	phone = nonDigits.ReplaceAllString(phone, "")
	if phone == "" {
		return nil, fmt.Errorf("phone number has no digits: %w", ErrValidation)
	}
	if length := utf8.RuneCountInString(message); length > SmsMaxLength {
		return nil, fmt.Errorf("message is %d characters, limit %d: %w", length, SmsMaxLength, ErrValidation)
	}
	signature := m.signer.Sum(m.conf.Login, phone, message, m.conf.Password1)
	return &entity.SmsRequest{
		Login:     m.conf.Login,
		Phone:     phone,
		Message:   message,
		Signature: signature.Value,
	}, nil
}

// SendSMS sends a text message through the gateway SMS service.
func (m *Merchant) SendSMS(ctx context.Context, phone, message string) (*entity.SmsResponse, error) {
	request, err := m.SmsRequest(phone, message)
	if err != nil {
		return nil, err
	}
	m.debug(fmt.Sprintf("sms to %s, %d characters", secret(request.Phone), utf8.RuneCountInString(message)))

	response, err := m.client.R().
		SetContext(ctx).
		SetQueryParams(request.Query()).
		Get(m.conf.SmsUrl)
	if err != nil {
		return nil, fmt.Errorf("sms request: %v", err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("sms request: status %d", response.StatusCode())
	}

	var result entity.SmsResponse
	if err = json.Unmarshal(response.Body(), &result); err != nil {
		return nil, fmt.Errorf("parse sms response: %v", err)
	}
	if !result.Result {
		return &result, fmt.Errorf("sms rejected: code %d; %s", result.ErrorCode, result.ErrorMessage)
	}
	return &result, nil
}
