package internal

import (
	"fmt"
	"github.com/go-resty/resty/v2"
	"net/url"
	"robokassa/config"
	"robokassa/entity"
	"robokassa/services"
	"sort"
	"strings"
)

// Merchant builds signed requests for the gateway and checks its callbacks.
type Merchant struct {
	conf   *config.Merchant
	signer *Signer
	client *resty.Client
	logger services.LogHandler
}

// NewMerchant resolves the hash algorithm up front so a bad configuration fails at startup.
func NewMerchant(conf *config.Config) (*Merchant, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration not loaded: %w", ErrConfiguration)
	}
	if err := conf.Merchant.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrConfiguration)
	}
	signer, err := NewSigner(conf.Merchant.HashAlgo)
	if err != nil {
		return nil, err
	}
	merchant := conf.Merchant
	return &Merchant{
		conf:   &merchant,
		signer: signer,
		client: resty.New().SetTimeout(merchant.Timeout()),
	}, nil
}

func (m *Merchant) SetLogger(logger services.LogHandler) {
	m.logger = logger
	m.logger.Info(fmt.Sprintf("merchant %s; hash %s; test mode %v", m.conf.Login, m.signer.Algorithm(), m.conf.IsTest))
}

// Signature signs payment options with Password1.
func (m *Merchant) Signature(options *entity.PaymentOptions) (Signature, error) {
	signature, _, err := m.sign(options)
	return signature, err
}

// sign returns the signature together with the receipt JSON it covers.
func (m *Merchant) sign(options *entity.PaymentOptions) (Signature, string, error) {
	if err := options.Validate(); err != nil {
		return Signature{}, "", err
	}
	receipt, err := options.ReceiptJSON()
	if err != nil {
		return Signature{}, "", err
	}
	return m.signer.Outgoing(OutgoingFields{
		MerchantLogin:  m.conf.Login,
		OutSum:         options.OutSumString(),
		InvID:          options.InvID,
		OutSumCurrency: options.OutSumCurrency,
		UserIP:         options.UserIP,
		Receipt:        receipt,
		Password:       m.conf.Password1,
		Shp:            options.Shp,
	}), receipt, nil
}

type param struct {
	name  string
	value string
	quote string
}

// params lists request fields in form order; empty optional fields are skipped.
func (m *Merchant) params(options *entity.PaymentOptions) ([]param, error) {
	signature, receipt, err := m.sign(options)
	if err != nil {
		return nil, err
	}
	culture := options.Culture
	if culture == "" {
		culture = m.conf.Culture
	}
	encoding := options.Encoding
	if encoding == "" {
		encoding = m.conf.Encoding
	}

	list := []param{
		{name: "MerchantLogin", value: m.conf.Login},
		{name: "OutSum", value: options.OutSumString()},
		{name: "InvId", value: options.InvIDString()},
		{name: "Description", value: options.Description},
		{name: "Encoding", value: encoding},
		{name: "SignatureValue", value: signature.Value},
		{name: "OutSumCurrency", value: options.OutSumCurrency},
	}
	for _, key := range sortedKeys(options.Shp) {
		list = append(list, param{name: key, value: options.Shp[key]})
	}
	list = append(list,
		param{name: "UserIp", value: options.UserIP},
		param{name: "IncCurrLabel", value: options.IncCurrLabel},
		param{name: "Culture", value: culture},
		param{name: "Email", value: options.Email},
		param{name: "ExpirationDate", value: options.ExpirationString()},
	)
	if receipt != "" {
		list = append(list, param{name: "Receipt", value: urlEncode(receipt), quote: "'"})
	}
	if m.conf.IsTest {
		list = append(list, param{name: "IsTest", value: "1"})
	}

	result := list[:0]
	for _, p := range list {
		if p.value != "" {
			result = append(result, p)
		}
	}
	return result, nil
}

// PaymentURL returns the gateway URL the customer is redirected to.
func (m *Merchant) PaymentURL(options *entity.PaymentOptions) (string, error) {
	list, err := m.params(options)
	if err != nil {
		return "", err
	}
	values := url.Values{}
	for _, p := range list {
		values.Set(p.name, p.value)
	}
	return strings.TrimRight(m.conf.BaseUrl, "?") + "?" + values.Encode(), nil
}

// VerifyResult checks a ResultURL notification, signed with Password2.
func (m *Merchant) VerifyResult(callback *entity.Callback) bool {
	return m.verify(callback, m.conf.Password2)
}

// VerifySuccess checks the SuccessURL redirect, signed with Password1.
func (m *Merchant) VerifySuccess(callback *entity.Callback) bool {
	return m.verify(callback, m.conf.Password1)
}

func (m *Merchant) verify(callback *entity.Callback, password string) bool {
	if callback == nil {
		return false
	}
	return m.signer.Verify(callback.SignatureValue, callback.OutSum, callback.InvID, password, callback.Shp)
}

func (m *Merchant) debug(text string) {
	if m.logger != nil {
		m.logger.Debug(text)
	}
}

func sortedKeys(shp map[string]string) []string {
	keys := make([]string, 0, len(shp))
	for key := range shp {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
