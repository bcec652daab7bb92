package entity

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPaymentOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    *PaymentOptions
		wantErr bool
	}{
		{"valid", &PaymentOptions{OutSum: decimal.RequireFromString("100"), InvID: Int64(1)}, false},
		{"nil", nil, true},
		{"zero amount", &PaymentOptions{OutSum: decimal.Zero}, true},
		{"negative amount", &PaymentOptions{OutSum: decimal.RequireFromString("-1")}, true},
		{"negative invoice", &PaymentOptions{OutSum: decimal.RequireFromString("1"), InvID: Int64(-5)}, true},
		{"custom field prefix", &PaymentOptions{OutSum: decimal.RequireFromString("1"), Shp: map[string]string{"foo": "bar"}}, true},
		{"custom field mixed case", &PaymentOptions{OutSum: decimal.RequireFromString("1"), Shp: map[string]string{"Shp_foo": "bar"}}, false},
		{"bare prefix", &PaymentOptions{OutSum: decimal.RequireFromString("1"), Shp: map[string]string{"shp_": "bar"}}, true},
		{"empty receipt", &PaymentOptions{OutSum: decimal.RequireFromString("1"), Receipt: &Receipt{}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error %v does not wrap ErrValidation", err)
			}
		})
	}
}

func TestPaymentOptionsRendering(t *testing.T) {
	opts := &PaymentOptions{
		OutSum:         decimal.RequireFromString("100"),
		ExpirationDate: time.Date(2024, 4, 15, 13, 0, 0, 0, time.FixedZone("MSK", 3*3600)),
	}
	if got := opts.OutSumString(); got != "100.00" {
		t.Errorf("OutSumString() = %q, want 100.00", got)
	}
	if got := opts.InvIDString(); got != "" {
		t.Errorf("InvIDString() = %q, want empty", got)
	}
	opts.InvID = Int64(123)
	if got := opts.InvIDString(); got != "123" {
		t.Errorf("InvIDString() = %q, want 123", got)
	}
	if got := opts.ExpirationString(); got != "2024-04-15T13:00:00.0000000+03:00" {
		t.Errorf("ExpirationString() = %q", got)
	}
	if got, err := opts.ReceiptJSON(); err != nil || got != "" {
		t.Errorf("ReceiptJSON() = %q, %v; want empty", got, err)
	}
}

func TestPaymentOptionsFromValues(t *testing.T) {
	values := url.Values{
		"out_sum":     {"10.5"},
		"inv_id":      {"42"},
		"description": {"order 42"},
		"shp_user":    {"7"},
		"other":       {"ignored"},
	}
	opts, err := PaymentOptionsFromValues(values)
	if err != nil {
		t.Fatalf("PaymentOptionsFromValues() error = %v", err)
	}
	if opts.OutSumString() != "10.50" {
		t.Errorf("out sum = %s", opts.OutSumString())
	}
	if opts.InvIDString() != "42" {
		t.Errorf("inv id = %s", opts.InvIDString())
	}
	if len(opts.Shp) != 1 || opts.Shp["shp_user"] != "7" {
		t.Errorf("shp = %v", opts.Shp)
	}

	for _, bad := range []url.Values{
		{"out_sum": {"abc"}},
		{"out_sum": {"1"}, "inv_id": {"x"}},
		{},
	} {
		if _, err := PaymentOptionsFromValues(bad); !errors.Is(err, ErrValidation) {
			t.Errorf("PaymentOptionsFromValues(%v) error = %v, want ErrValidation", bad, err)
		}
	}
}

func TestReceiptJSON(t *testing.T) {
	receipt := &Receipt{
		Sno: "osn",
		Items: []ReceiptItem{{
			Name:          "Tea <green>",
			Quantity:      decimal.RequireFromString("1"),
			Sum:           decimal.RequireFromString("100.50"),
			PaymentMethod: "full_payment",
			PaymentObject: "commodity",
			Tax:           "vat20",
		}},
	}
	got, err := receipt.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	want := `{"sno":"osn","items":[{"name":"Tea <green>","quantity":1,"sum":100.5,"payment_method":"full_payment","payment_object":"commodity","tax":"vat20"}]}`
	if got != want {
		t.Errorf("JSON() =\n%s\nwant\n%s", got, want)
	}
	again, _ := receipt.JSON()
	if again != got {
		t.Error("JSON() is not deterministic")
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("JSON() keeps trailing newline")
	}
}

func TestReceiptItemJSON(t *testing.T) {
	item := ReceiptItem{
		Name:             "Salt & pepper",
		Quantity:         decimal.RequireFromString("0.500"),
		Sum:              decimal.RequireFromString("12"),
		Tax:              "none",
		NomenclatureCode: "04<62>",
	}
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	receipt := &Receipt{Items: []ReceiptItem{item}}
	got, err := receipt.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	want := `{"items":[{"name":"Salt & pepper","quantity":0.5,"sum":12,"tax":"none","nomenclature_code":"04<62>"}]}`
	if got != want {
		t.Errorf("JSON() =\n%s\nwant\n%s", got, want)
	}
	if !strings.Contains(string(data), `"quantity":0.5,"sum":12`) {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestCallbackFromValues(t *testing.T) {
	values := url.Values{
		"OutSum":         {"100.000000"},
		"InvId":          {"123"},
		"SignatureValue": {"ABC"},
		"Shp_item":       {"1"},
		"IsTest":         {"1"},
	}
	callback := CallbackFromValues(values)
	if callback.OutSum != "100.000000" || callback.InvID != "123" || callback.SignatureValue != "ABC" {
		t.Errorf("callback = %+v", callback)
	}
	if callback.Shp["Shp_item"] != "1" {
		t.Errorf("shp = %v", callback.Shp)
	}
	record := NewCallbackRecord("result", callback, "req-1")
	if !record.IsTest || record.InvID != "123" || record.RequestID != "req-1" {
		t.Errorf("record = %+v", record)
	}
}
