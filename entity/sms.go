package entity

// SmsRequest is a signed SMS send request, ready for the gateway.
type SmsRequest struct {
	Login     string
	Phone     string
	Message   string
	Signature string
}

// Query returns the request as GET parameters.
func (s *SmsRequest) Query() map[string]string {
	return map[string]string{
		"login":     s.Login,
		"phone":     s.Phone,
		"message":   s.Message,
		"signature": s.Signature,
	}
}

// SmsResponse is the gateway reply to an SMS send request.
type SmsResponse struct {
	Result       bool   `json:"result"`
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
	Count        int    `json:"count"`
}
