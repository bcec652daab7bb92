package entity

import (
	"net/url"
	"time"
)

// Callback carries the fields the gateway sends to ResultURL and SuccessURL.
// Amount and invoice id are kept as received; the signature is computed over the exact strings.
type Callback struct {
	OutSum         string
	InvID          string
	SignatureValue string
	Email          string
	Fee            string
	PaymentMethod  string
	IncCurrLabel   string
	IsTest         string
	Shp            map[string]string
}

// CallbackFromValues reads a callback from form or query values.
func CallbackFromValues(values url.Values) *Callback {
	return &Callback{
		OutSum:         values.Get("OutSum"),
		InvID:          values.Get("InvId"),
		SignatureValue: values.Get("SignatureValue"),
		Email:          values.Get("EMail"),
		Fee:            values.Get("Fee"),
		PaymentMethod:  values.Get("PaymentMethod"),
		IncCurrLabel:   values.Get("IncCurrLabel"),
		IsTest:         values.Get("IsTest"),
		Shp:            ShpFromValues(values),
	}
}

// CallbackRecord is the audit entry written for every verified callback.
type CallbackRecord struct {
	Kind          string            `json:"kind" bson:"kind"`
	InvID         string            `json:"inv_id" bson:"inv_id"`
	OutSum        string            `json:"out_sum" bson:"out_sum"`
	Email         string            `json:"email" bson:"email"`
	Fee           string            `json:"fee" bson:"fee"`
	PaymentMethod string            `json:"payment_method" bson:"payment_method"`
	IncCurrLabel  string            `json:"inc_curr_label" bson:"inc_curr_label"`
	IsTest        bool              `json:"is_test" bson:"is_test"`
	Shp           map[string]string `json:"shp,omitempty" bson:"shp,omitempty"`
	RequestID     string            `json:"request_id" bson:"request_id"`
	Time          time.Time         `json:"time" bson:"time"`
}

// NewCallbackRecord copies the non-secret callback fields into an audit record.
func NewCallbackRecord(kind string, callback *Callback, requestID string) *CallbackRecord {
	return &CallbackRecord{
		Kind:          kind,
		InvID:         callback.InvID,
		OutSum:        callback.OutSum,
		Email:         callback.Email,
		Fee:           callback.Fee,
		PaymentMethod: callback.PaymentMethod,
		IncCurrLabel:  callback.IncCurrLabel,
		IsTest:        callback.IsTest == "1",
		Shp:           callback.Shp,
		RequestID:     requestID,
		Time:          time.Now(),
	}
}

// DataType names the audit collection category.
func (r *CallbackRecord) DataType() string {
	return "callback"
}
