package signerapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/aegis-sign/jadesigner/internal/signer"
	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	pvalidator "github.com/aegis-sign/jadesigner/pkg/validator"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler 实现 /v1 HTTP/JSON 接口。
type HTTPHandler struct {
	signer    SignService
	registrar Registrar
	accounts  AccountStore
	validate  *validator.Validate
	logger    *slog.Logger

	debug    http.Handler
	gatherer prometheus.Gatherer
}

// HTTPOption 自定义 HTTPHandler。
type HTTPOption func(*HTTPHandler)

// WithAccounts 挂载只读的账户列表接口。
func WithAccounts(store AccountStore) HTTPOption {
	return func(h *HTTPHandler) { h.accounts = store }
}

// WithDebugHandler 挂载 /debug/requests。
func WithDebugHandler(d http.Handler) HTTPOption {
	return func(h *HTTPHandler) { h.debug = d }
}

// WithGatherer 挂载 /metrics。
func WithGatherer(g prometheus.Gatherer) HTTPOption {
	return func(h *HTTPHandler) { h.gatherer = g }
}

// WithHTTPLogger 注入 slog Logger。
func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return func(h *HTTPHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHTTPHandler 构造 HTTP handler。
func NewHTTPHandler(svc SignService, registrar Registrar, opts ...HTTPOption) *HTTPHandler {
	if svc == nil || registrar == nil {
		panic("sign service and registrar are required")
	}
	h := &HTTPHandler{
		signer:    svc,
		registrar: registrar,
		validate:  newValidator(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// newValidator 在错误信息中使用 json 字段名。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Router 返回挂载了全部路由的 chi router。
func (h *HTTPHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/sign", h.handleSign)
		r.Get("/registration", h.handleRegistration)
		if h.accounts != nil {
			r.Get("/accounts", h.handleListAccounts)
		}
	})
	if h.debug != nil {
		r.Method(http.MethodGet, "/debug/requests", h.debug)
	}
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

type signRequestBody struct {
	Kind     string          `json:"kind" validate:"required,oneof=transaction data typed_data"`
	Payload  json.RawMessage `json:"payload" validate:"required"`
	Encoding string          `json:"encoding" validate:"omitempty,oneof=json hex base64"`
	Summary  string          `json:"summary" validate:"max=1024"`
}

type signResponseBody struct {
	CorrelationID string `json:"correlationId"`
	Account       string `json:"account"`
	Signature     string `json:"signature"`
	SignedTx      string `json:"signedTx,omitempty"`
	TxHash        string `json:"txHash,omitempty"`
}

type registrationBody struct {
	RegistrationID   string    `json:"registrationId"`
	CallbackEndpoint string    `json:"callbackEndpoint"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

type accountBody struct {
	Address string `json:"address"`
	URL     string `json:"url"`
}

type errorResponse struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	RetryAfterHint string `json:"retryAfterHint,omitempty"`
}

func (h *HTTPHandler) handleSign(w http.ResponseWriter, r *http.Request) {
	var body signRequestBody
	if !h.bind(w, r, &body) {
		return
	}
	payload, err := decodeSignPayload(body.Payload, body.Encoding)
	if err != nil {
		h.writeAPIError(w, apierrors.New(apierrors.CodeInvalidArgument, err.Error()))
		return
	}
	res, err := h.signer.Sign(r.Context(), signer.SignRequest{
		Kind:    signer.PayloadKind(body.Kind),
		Payload: payload,
		Summary: body.Summary,
	})
	if err != nil {
		h.writeUnknownError(w, err)
		return
	}
	out := signResponseBody{
		CorrelationID: res.CorrelationID,
		Account:       res.Account.Hex(),
		Signature:     hexutil.Encode(res.Signature),
	}
	if len(res.SignedTx) > 0 {
		out.SignedTx = hexutil.Encode(res.SignedTx)
		out.TxHash = res.TxHash.Hex()
	}
	h.writeJSON(w, http.StatusOK, out)
}

// decodeSignPayload 支持 JSON 对象原样传入，或以 hex/base64 字符串编码的 payload。
func decodeSignPayload(raw json.RawMessage, encoding string) ([]byte, error) {
	enc, err := pvalidator.NormalizeEncoding(encoding)
	if err != nil {
		return nil, err
	}
	if enc == pvalidator.PayloadEncodingJSON {
		return []byte(raw), pvalidator.CheckPayloadSize(raw)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.New("encoded payload must be a JSON string")
	}
	return pvalidator.DecodePayload(s, enc)
}

func (h *HTTPHandler) handleRegistration(w http.ResponseWriter, r *http.Request) {
	rec, err := h.registrar.Current(r.Context())
	if err != nil {
		h.writeUnknownError(w, err)
		return
	}
	if rec == nil {
		h.writeAPIError(w, apierrors.New(apierrors.CodeNotFound, "no ui registered"))
		return
	}
	h.writeJSON(w, http.StatusOK, registrationBody{
		RegistrationID:   rec.ID,
		CallbackEndpoint: rec.CallbackEndpoint,
		ExpiresAt:        rec.ExpiresAt,
	})
}

func (h *HTTPHandler) handleListAccounts(w http.ResponseWriter, _ *http.Request) {
	accts := h.accounts.Accounts()
	out := make([]accountBody, 0, len(accts))
	for _, a := range accts {
		out = append(out, accountBody{Address: a.Address.Hex(), URL: a.URL.String()})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// bind 解码并校验请求体，失败时已写回错误响应。
func (h *HTTPHandler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 2*pvalidator.MaxPayloadBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.writeAPIError(w, apierrors.New(apierrors.CodeInvalidArgument, "invalid JSON body"))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			h.writeAPIError(w, apierrors.New(apierrors.CodeInvalidArgument, verrs[0].Field()+" failed "+verrs[0].Tag()+" validation"))
			return false
		}
		h.writeAPIError(w, apierrors.New(apierrors.CodeInvalidArgument, err.Error()))
		return false
	}
	return true
}

func (h *HTTPHandler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *HTTPHandler) writeUnknownError(w http.ResponseWriter, err error) {
	if apiErr, ok := apierrors.FromError(err); ok {
		h.writeAPIError(w, apiErr)
		return
	}
	h.writeAPIError(w, apierrors.New(apierrors.CodeInternal, "internal error"))
}

func (h *HTTPHandler) writeAPIError(w http.ResponseWriter, apiErr *apierrors.Error) {
	if apiErr == nil {
		apiErr = apierrors.New(apierrors.CodeInternal, "internal error")
	}
	status := apierrors.HTTPStatus(apiErr.Code)
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if apierrors.RequiresRetryAfter(apiErr.Code) {
		if hint := apiErr.RetryAfterHint(); hint != "" {
			w.Header().Set("Retry-After", hint)
		}
	}
	resp := errorResponse{
		Code:    string(apiErr.Code),
		Message: apiErr.Error(),
	}
	if hint := apiErr.RetryAfterHint(); hint != "" {
		resp.RetryAfterHint = hint
	}
	h.writeJSON(w, status, resp)
}
