package internal

import (
	"crypto/hmac"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
)

// Signature is a computed SignatureValue together with the string it was computed from.
// Canonical contains merchant passwords and must not be logged.
type Signature struct {
	Value     string
	Canonical string
}

// OutgoingFields are the inputs of a payment request signature.
// Empty optional fields are left out of the canonical string entirely.
type OutgoingFields struct {
	MerchantLogin  string
	OutSum         string
	InvID          *int64
	OutSumCurrency string
	UserIP         string
	Receipt        string // raw JSON
	Password       string
	Shp            map[string]string
}

// Signer computes and checks gateway signatures with one hash algorithm.
// It holds no per-call state and is safe for concurrent use.
type Signer struct {
	algorithm HashAlgorithm
	sum       hashFunc
}

func NewSigner(algorithm string) (*Signer, error) {
	alg, err := ParseHashAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	return &Signer{
		algorithm: alg,
		sum:       digests[alg].sum,
	}, nil
}

func (s *Signer) Algorithm() HashAlgorithm {
	return s.algorithm
}

// Outgoing signs a payment request:
// MerchantLogin:OutSum[:InvId][:OutSumCurrency][:UserIp][:Receipt]:Password1[:shp block]
func (s *Signer) Outgoing(f OutgoingFields) Signature {
	parts := []string{f.MerchantLogin, f.OutSum}
	if f.InvID != nil {
		parts = append(parts, strconv.FormatInt(*f.InvID, 10))
	}
	if f.OutSumCurrency != "" {
		parts = append(parts, f.OutSumCurrency)
	}
	if f.UserIP != "" {
		parts = append(parts, f.UserIP)
	}
	if f.Receipt != "" {
		parts = append(parts, urlEncode(f.Receipt))
	}
	parts = append(parts, f.Password)
	return s.sign(parts, f.Shp)
}

// Verify checks a signature sent by the gateway: OutSum:InvId:Password[:shp block].
// Any mismatch, including an empty or non-hex value, yields false.
func (s *Signer) Verify(provided, outSum, invID, password string, shp map[string]string) bool {
	provided = strings.ToLower(strings.TrimSpace(provided))
	if len(provided) != s.algorithm.Size()*2 {
		return false
	}
	if _, err := hex.DecodeString(provided); err != nil {
		return false
	}
	expected := s.sign([]string{outSum, invID, password}, shp)
	return hmac.Equal([]byte(expected.Value), []byte(provided))
}

// Sum signs parts joined with ":" without custom fields.
func (s *Signer) Sum(parts ...string) Signature {
	return s.sign(parts, nil)
}

func (s *Signer) sign(parts []string, shp map[string]string) Signature {
	canonical := strings.Join(parts, ":")
	if segment := customSegment(shp); segment != "" {
		canonical += ":" + segment
	}
	return Signature{
		Value:     strings.ToLower(s.sum(canonical)),
		Canonical: canonical,
	}
}

// customSegment renders custom fields as key=value pairs sorted by key in byte order.
func customSegment(shp map[string]string) string {
	if len(shp) == 0 {
		return ""
	}
	keys := sortedKeys(shp)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+shp[key])
	}
	return strings.Join(pairs, ":")
}

// urlEncode escapes like form encoding, with "~" escaped too.
func urlEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "~", "%7E")
}
