// Package entitlement обрабатывает уведомления Kiwify и переключает флаг Pro у аккаунтов.
package entitlement

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/fecha-instalacao/internal/model"
	"github.com/mmeshcher/fecha-instalacao/internal/repository"
)

var (
	// ErrSecretNotConfigured возвращается, если проверка подписи включена, а секрет не задан.
	ErrSecretNotConfigured = errors.New("webhook secret not configured")
	// ErrMissingSignature возвращается, если ни в одном из известных заголовков нет подписи.
	ErrMissingSignature = errors.New("missing signature")
	// ErrInvalidSignature возвращается, если подпись не совпала с HMAC тела запроса.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrInvalidPayload возвращается, если тело не является JSON-объектом.
	ErrInvalidPayload = errors.New("invalid json")
	// ErrMissingEmail возвращается, если в уведомлении не нашёлся email покупателя.
	ErrMissingEmail = errors.New("missing email")
)

// Предел распакованного тела уведомления.
const maxDecodedBody = 1 << 20

// Причины успешного ответа.
const (
	ReasonApplied      = "applied"
	ReasonIgnored      = "event_ignored"
	ReasonUserNotFound = "user_not_found"
)

// Config: неизменяемые настройки проверки вебхука.
type Config struct {
	Secret string
	// AllowUnsigned полностью отключает проверку подписи. Только для локальной отладки.
	AllowUnsigned bool
}

// Store описывает операции с аккаунтами, нужные для применения уведомлений.
type Store interface {
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	SetAccountPro(ctx context.Context, id int64, isPro bool) error
}

// Recorder принимает итоги обработки уведомлений для метрик.
type Recorder interface {
	WebhookNotification(outcome string)
}

// Result описывает результат обработки принятого уведомления.
type Result struct {
	Reason string `json:"message"`
	Email  string `json:"email"`
	Status string `json:"status"`
	IsPro  *bool  `json:"is_pro,omitempty"`
}

// Reconciler проверяет уведомления платёжного провайдера и применяет их к аккаунтам.
type Reconciler struct {
	cfg      Config
	store    Store
	logger   *zap.Logger
	recorder Recorder
}

// NewReconciler создаёт обработчик уведомлений.
func NewReconciler(cfg Config, store Store, logger *zap.Logger, recorder Recorder) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		recorder: recorder,
	}
}

// Verify проверяет подпись тела запроса.
func (r *Reconciler) Verify(body []byte, headers http.Header) error {
	if r.cfg.AllowUnsigned {
		return nil
	}
	if r.cfg.Secret == "" {
		return ErrSecretNotConfigured
	}

	sig := signatureFromHeaders(headers)
	if sig == "" {
		return ErrMissingSignature
	}
	if !validSignature(r.cfg.Secret, body, sig) {
		return ErrInvalidSignature
	}
	return nil
}

// Reconcile проверяет, разбирает и применяет одно уведомление.
// Неизвестный статус и неизвестный покупатель не считаются ошибкой.
func (r *Reconciler) Reconcile(ctx context.Context, body []byte, headers http.Header) (*Result, error) {
	res, err := r.reconcile(ctx, body, headers)
	r.record(res, err)
	return res, err
}

func (r *Reconciler) reconcile(ctx context.Context, body []byte, headers http.Header) (*Result, error) {
	if err := r.Verify(body, headers); err != nil {
		return nil, err
	}

	decoded, err := decodeBody(body, headers)
	if err != nil {
		r.logger.Warn("kiwify webhook: undecodable body", zap.Error(err), zap.Int("size", len(body)))
		return nil, ErrInvalidPayload
	}
	body = decoded

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		r.logger.Warn("kiwify webhook: malformed body", zap.Error(err), zap.Int("size", len(body)))
		return nil, ErrInvalidPayload
	}

	email := ExtractEmail(payload)
	status := ExtractStatus(payload)

	if email == "" {
		return nil, ErrMissingEmail
	}

	res := &Result{Email: email, Status: status}

	decision := Classify(status)
	if decision == Ignore {
		res.Reason = ReasonIgnored
		r.logger.Info("kiwify webhook: event ignored", zap.String("email", email), zap.String("status", status))
		return res, nil
	}

	acc, err := r.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			res.Reason = ReasonUserNotFound
			r.logger.Info("kiwify webhook: no account for buyer", zap.String("email", email), zap.String("status", status))
			return res, nil
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	isPro := decision == Activate
	if err := r.store.SetAccountPro(ctx, acc.ID, isPro); err != nil {
		return nil, fmt.Errorf("set pro: %w", err)
	}

	r.logger.Info("kiwify webhook: entitlement applied",
		zap.Int64("accountID", acc.ID),
		zap.String("status", status),
		zap.Bool("previous", acc.IsPro),
		zap.Bool("isPro", isPro),
	)

	res.Reason = ReasonApplied
	res.IsPro = &isPro
	return res, nil
}

// decodeBody распаковывает тело с Content-Encoding: gzip. Подпись к этому моменту
// уже проверена по сырым байтам.
func decodeBody(body []byte, headers http.Header) ([]byte, error) {
	if !strings.Contains(strings.ToLower(headers.Get("Content-Encoding")), "gzip") {
		return body, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gzip header: %w", err)
	}
	defer zr.Close()

	decoded, err := io.ReadAll(io.LimitReader(zr, maxDecodedBody+1))
	if err != nil {
		return nil, fmt.Errorf("gzip body: %w", err)
	}
	if len(decoded) > maxDecodedBody {
		return nil, fmt.Errorf("gzip body exceeds %d bytes", maxDecodedBody)
	}
	return decoded, nil
}

func (r *Reconciler) record(res *Result, err error) {
	if r.recorder == nil {
		return
	}
	r.recorder.WebhookNotification(outcome(res, err))
}

func outcome(res *Result, err error) string {
	switch {
	case err == nil && res != nil:
		return res.Reason
	case errors.Is(err, ErrSecretNotConfigured):
		return "secret_not_configured"
	case errors.Is(err, ErrMissingSignature):
		return "missing_signature"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, ErrMissingEmail):
		return "missing_email"
	default:
		return "error"
	}
}
