package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/julienschmidt/httprouter"
	"net"
	"net/http"
	"robokassa/config"
	"robokassa/entity"
	"robokassa/services"
	"strconv"
)

const (
	paymentResult  = "/result"
	paymentSuccess = "/success"
	paymentFail    = "/fail"
	paymentRequest = "/pay"
	paymentForm    = "/form"
	sendSms        = "/sms"
	recurring      = "/recurring"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	merchant   services.Merchant
	database   services.Database
	logger     services.LogHandler
}

func NewServer(conf *config.Config) *Server {

	server := Server{
		conf: conf,
	}

	// register itself as a router for httpServer handler
	router := httprouter.New()
	server.Register(router)
	server.httpServer = &http.Server{
		Handler: router,
	}

	return &server
}

func (s *Server) Register(router *httprouter.Router) {
	router.GET(paymentResult, s.paymentResult)
	router.POST(paymentResult, s.paymentResult)
	router.GET(paymentSuccess, s.paymentSuccess)
	router.POST(paymentSuccess, s.paymentSuccess)
	router.GET(paymentFail, s.paymentFail)
	router.POST(paymentFail, s.paymentFail)
	router.GET(paymentRequest, s.paymentRequest)
	router.GET(paymentForm, s.paymentForm)
	router.POST(sendSms, s.sendSms)
	router.POST(recurring, s.recurring)
}

func (s *Server) SetMerchant(merchant services.Merchant) {
	s.merchant = merchant
}

func (s *Server) SetDatabase(database services.Database) {
	s.database = database
}

func (s *Server) SetLogger(logger services.LogHandler) {
	s.logger = logger
}

func (s *Server) Start() error {
	if s.conf == nil {
		return fmt.Errorf("configuration not loaded")
	}

	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	if s.conf.Listen.TLS {
		s.logger.Info(fmt.Sprintf("starting https TLS on %s", serverAddress))
		err = s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	} else {
		s.logger.Info(fmt.Sprintf("starting http on %s", serverAddress))
		err = s.httpServer.Serve(listener)
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// paymentResult handles the ResultURL notification; the gateway expects "OK<InvId>" on success.
func (s *Server) paymentResult(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	if err := r.ParseForm(); err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] result: parse form: %v", reqID, err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	callback := entity.CallbackFromValues(r.Form)
	if !s.merchant.VerifyResult(callback) {
		s.logger.Warn(fmt.Sprintf("[%s] result: bad signature; invoice %s; sum %s", reqID, callback.InvID, callback.OutSum))
		http.Error(w, "bad sign", http.StatusBadRequest)
		return
	}

	s.logger.Info(fmt.Sprintf("[%s] result: invoice %s paid; sum %s", reqID, callback.InvID, callback.OutSum))
	s.saveCallback(ctx, "result", callback)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "OK%s", callback.InvID)
}

func (s *Server) paymentSuccess(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	if err := r.ParseForm(); err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] success: parse form: %v", reqID, err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	callback := entity.CallbackFromValues(r.Form)
	if !s.merchant.VerifySuccess(callback) {
		s.logger.Warn(fmt.Sprintf("[%s] success: bad signature; invoice %s", reqID, callback.InvID))
		http.Error(w, "bad sign", http.StatusBadRequest)
		return
	}

	s.saveCallback(ctx, "success", callback)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprint(w, "payment success")
}

// paymentFail is informational: the gateway does not sign the FailURL redirect.
func (s *Server) paymentFail(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	if err := r.ParseForm(); err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] fail: parse form: %v", reqID, err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	s.logger.Warn(fmt.Sprintf("[%s] fail: invoice %s not paid", reqID, r.Form.Get("InvId")))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprint(w, "payment failed")
}

// paymentRequest redirects the customer to the gateway payment page.
func (s *Server) paymentRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	options, err := entity.PaymentOptionsFromValues(r.URL.Query())
	if err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] pay: %v", reqID, err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	paymentUrl, err := s.merchant.PaymentURL(options)
	if err != nil {
		s.logger.Error(fmt.Sprintf("[%s] pay: build url", reqID), err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.logger.Info(fmt.Sprintf("[%s] pay: invoice %s; sum %s", reqID, options.InvIDString(), options.OutSumString()))
	http.Redirect(w, r, paymentUrl, http.StatusFound)
}

func (s *Server) paymentForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	options, err := entity.PaymentOptionsFromValues(r.URL.Query())
	if err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] form: %v", reqID, err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form, err := s.merchant.Form(options)
	if err != nil {
		s.logger.Error(fmt.Sprintf("[%s] form: render", reqID), err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, form)
}

func (s *Server) sendSms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	if err := r.ParseForm(); err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] sms: parse form: %v", reqID, err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	response, err := s.merchant.SendSMS(ctx, r.Form.Get("phone"), r.Form.Get("message"))
	if errors.Is(err, ErrValidation) {
		s.logger.Warn(fmt.Sprintf("[%s] sms: %v", reqID, err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.Error(fmt.Sprintf("[%s] sms: send to %s", reqID, secret(r.Form.Get("phone"))), err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// recurring charges the card saved by a previous invoice; the gateway confirms via ResultURL.
func (s *Server) recurring(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	if err := r.ParseForm(); err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] recurring: parse form: %v", reqID, err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	previousInvID, err := strconv.ParseInt(r.Form.Get("previous_inv_id"), 10, 64)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] recurring: previous invoice %q", reqID, r.Form.Get("previous_inv_id")))
		http.Error(w, "invalid previous_inv_id", http.StatusBadRequest)
		return
	}
	options, err := entity.PaymentOptionsFromValues(r.Form)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] recurring: %v", reqID, err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = s.merchant.Recurring(ctx, options, previousInvID)
	if errors.Is(err, ErrValidation) {
		s.logger.Warn(fmt.Sprintf("[%s] recurring: %v", reqID, err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.Error(fmt.Sprintf("[%s] recurring: invoice %s after %d", reqID, options.InvIDString(), previousInvID), err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	s.logger.Info(fmt.Sprintf("[%s] recurring: invoice %s after %d; sum %s", reqID, options.InvIDString(), previousInvID, options.OutSumString()))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "OK%s", options.InvIDString())
}

func (s *Server) saveCallback(ctx context.Context, kind string, callback *entity.Callback) {
	if s.database == nil {
		return
	}
	record := entity.NewCallbackRecord(kind, callback, GetRequestID(ctx))
	if err := s.database.SaveCallback(ctx, record); err != nil {
		s.logger.Error(fmt.Sprintf("[%s] save %s callback", record.RequestID, kind), err)
	}
}
