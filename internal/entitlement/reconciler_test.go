package entitlement

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/fecha-instalacao/internal/model"
	"github.com/mmeshcher/fecha-instalacao/internal/repository"
)

const testSecret = "kiwify-test-secret"

type memStore struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
	writes   int
	findErr  error
}

func newMemStore(accounts ...*model.Account) *memStore {
	s := &memStore{accounts: map[string]*model.Account{}}
	for _, a := range accounts {
		s.accounts[a.Email] = a
	}
	return s
}

func (s *memStore) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	a, ok := s.accounts[email]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) SetAccountPro(ctx context.Context, id int64, isPro bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			a.IsPro = isPro
			s.writes++
			return nil
		}
	}
	return repository.ErrAccountNotFound
}

func (s *memStore) isPro(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[email].IsPro
}

type outcomes struct {
	got []string
}

func (o *outcomes) WebhookNotification(outcome string) {
	o.got = append(o.got, outcome)
}

func signedHeaders(body string) http.Header {
	h := http.Header{}
	h.Set("X-Kiwify-Signature", Sign(testSecret, []byte(body)))
	return h
}

func paidBody(email, status string) string {
	return `{"customer":{"email":"` + email + `"},"status":"` + status + `"}`
}

func TestReconcile_ActivatesExistingAccount(t *testing.T) {
	store := newMemStore(&model.Account{ID: 1, Email: "x@y.com"})
	rec := NewReconciler(Config{Secret: testSecret}, store, nil, nil)

	body := `{"customer":{"email":"x@y.com"},"status":"paid"}`
	res, err := rec.Reconcile(context.Background(), []byte(body), signedHeaders(body))
	require.NoError(t, err)

	assert.Equal(t, ReasonApplied, res.Reason)
	require.NotNil(t, res.IsPro)
	assert.True(t, *res.IsPro)
	assert.True(t, store.isPro("x@y.com"))
}

func TestReconcile_UnknownEmailIsNoop(t *testing.T) {
	other := &model.Account{ID: 2, Email: "other@y.com"}
	store := newMemStore(other)
	rec := NewReconciler(Config{Secret: testSecret}, store, nil, nil)

	body := paidBody("x@y.com", "paid")
	res, err := rec.Reconcile(context.Background(), []byte(body), signedHeaders(body))
	require.NoError(t, err)

	assert.Equal(t, ReasonUserNotFound, res.Reason)
	assert.Nil(t, res.IsPro)
	assert.Equal(t, 0, store.writes)
	assert.False(t, store.isPro("other@y.com"))
}

func TestReconcile_Idempotent(t *testing.T) {
	store := newMemStore(&model.Account{ID: 1, Email: "x@y.com"})
	rec := NewReconciler(Config{Secret: testSecret}, store, nil, nil)

	body := paidBody("x@y.com", "approved")
	for i := 0; i < 5; i++ {
		res, err := rec.Reconcile(context.Background(), []byte(body), signedHeaders(body))
		require.NoError(t, err)
		require.True(t, *res.IsPro)
	}

	assert.True(t, store.isPro("x@y.com"))
}

func TestReconcile_Reversible(t *testing.T) {
	store := newMemStore(
		&model.Account{ID: 1, Email: "a@y.com"},
		&model.Account{ID: 2, Email: "b@y.com"},
	)
	rec := NewReconciler(Config{Secret: testSecret}, store, nil, nil)

	steps := []struct {
		email  string
		status string
	}{
		{"a@y.com", "paid"},
		{"b@y.com", "paid"},
		{"a@y.com", "refunded"},
		{"b@y.com", "chargeback"},
		{"a@y.com", "order_approved"},
	}
	for _, st := range steps {
		body := paidBody(st.email, st.status)
		_, err := rec.Reconcile(context.Background(), []byte(body), signedHeaders(body))
		require.NoError(t, err)
	}

	assert.True(t, store.isPro("a@y.com"))
	assert.False(t, store.isPro("b@y.com"))
}

func TestReconcile_AuthenticationRejection(t *testing.T) {
	body := paidBody("x@y.com", "paid")

	tests := []struct {
		name    string
		headers http.Header
		wantErr error
	}{
		{name: "no signature", headers: http.Header{}, wantErr: ErrMissingSignature},
		{name: "wrong signature", headers: http.Header{"X-Signature": {Sign("other", []byte(body))}}, wantErr: ErrInvalidSignature},
		{name: "garbage signature", headers: http.Header{"X-Kiwify-Signature": {"sha256=zzz"}}, wantErr: ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(&model.Account{ID: 1, Email: "x@y.com"})
			rec := NewReconciler(Config{Secret: testSecret}, store, nil, nil)

			res, err := rec.Reconcile(context.Background(), []byte(body), tt.headers)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)
			assert.False(t, store.isPro("x@y.com"))
			assert.Equal(t, 0, store.writes)
		})
	}
}

func TestReconcile_SecretNotConfigured(t *testing.T) {
	store := newMemStore(&model.Account{ID: 1, Email: "x@y.com"})
	rec := NewReconciler(Config{}, store, nil, nil)

	body := paidBody("x@y.com", "paid")
	_, err := rec.Reconcile(context.Background(), []byte(body), signedHeaders(body))
	assert.ErrorIs(t, err, ErrSecretNotConfigured)
	assert.False(t, store.isPro("x@y.com"))
}

func TestReconcile_UnsignedBypass(t *testing.T) {
	store := newMemStore(&model.Account{ID: 1, Email: "x@y.com"})
	rec := NewReconciler(Config{AllowUnsigned: true}, store, nil, nil)

	body := paidBody("x@y.com", "paid")
	res, err := rec.Reconcile(context.Background(), []byte(body), http.Header{})
	require.NoError(t, err)
	assert.Equal(t, ReasonApplied, res.Reason)
	assert.True(t, store.isPro("x@y.com"))
}

func TestReconcile_UnknownStatusIgnored(t *testing.T) {
	store := newMemStore(&model.Account{ID: 1, Email: "x@y.com", IsPro: true})
	rec := NewReconciler(Config{Secret: testSecret}, store, nil, nil)

	for _, body := range []string{
		paidBody("x@y.com", "trial_started"),
		`{"customer":{"email":"x@y.com"}}`,
	} {
		res, err := rec.Reconcile(context.Background(), []byte(body), signedHeaders(body))
		require.NoError(t, err)
		assert.Equal(t, ReasonIgnored, res.Reason)
		assert.Nil(t, res.IsPro)
	}

	assert.True(t, store.isPro("x@y.com"))
	assert.Equal(t, 0, store.writes)
}

func TestReconcile_BadInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "not json", body: `status=paid`, wantErr: ErrInvalidPayload},
		{name: "json array", body: `[{"email":"x@y.com"}]`, wantErr: ErrInvalidPayload},
		{name: "json null", body: `null`, wantErr: ErrInvalidPayload},
		{name: "no email", body: `{"status":"paid"}`, wantErr: ErrMissingEmail},
		{name: "email without at", body: `{"email":"nobody","status":"paid"}`, wantErr: ErrMissingEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(&model.Account{ID: 1, Email: "x@y.com"})
			rec := NewReconciler(Config{Secret: testSecret}, store, nil, nil)

			_, err := rec.Reconcile(context.Background(), []byte(tt.body), signedHeaders(tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, store.writes)
		})
	}
}

func TestReconcile_StoreErrorPropagates(t *testing.T) {
	store := newMemStore()
	store.findErr = errors.New("connection refused")
	rec := NewReconciler(Config{Secret: testSecret}, store, nil, nil)

	body := paidBody("x@y.com", "paid")
	_, err := rec.Reconcile(context.Background(), []byte(body), signedHeaders(body))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "connection refused"))
}

func TestReconcile_RecordsOutcomes(t *testing.T) {
	store := newMemStore(&model.Account{ID: 1, Email: "x@y.com"})
	rec := &outcomes{}
	r := NewReconciler(Config{Secret: testSecret}, store, nil, rec)

	paid := paidBody("x@y.com", "paid")
	unknown := paidBody("nobody@y.com", "paid")
	trial := paidBody("x@y.com", "trial_started")

	_, _ = r.Reconcile(context.Background(), []byte(paid), signedHeaders(paid))
	_, _ = r.Reconcile(context.Background(), []byte(unknown), signedHeaders(unknown))
	_, _ = r.Reconcile(context.Background(), []byte(trial), signedHeaders(trial))
	_, _ = r.Reconcile(context.Background(), []byte(paid), http.Header{})

	assert.Equal(t, []string{ReasonApplied, ReasonUserNotFound, ReasonIgnored, "missing_signature"}, rec.got)
}

func gzipped(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReconcile_GzipBodySignedOverRawBytes(t *testing.T) {
	store := newMemStore(&model.Account{ID: 1, Email: "x@y.com"})
	rec := NewReconciler(Config{Secret: testSecret}, store, nil, nil)

	raw := gzipped(t, paidBody("x@y.com", "paid"))
	headers := http.Header{}
	headers.Set("X-Kiwify-Signature", Sign(testSecret, raw))
	headers.Set("Content-Encoding", "gzip")

	res, err := rec.Reconcile(context.Background(), raw, headers)
	require.NoError(t, err)
	assert.Equal(t, ReasonApplied, res.Reason)
	assert.True(t, store.isPro("x@y.com"))
}

func TestReconcile_GzipSignedOverDecodedBytesRejected(t *testing.T) {
	store := newMemStore(&model.Account{ID: 1, Email: "x@y.com"})
	rec := NewReconciler(Config{Secret: testSecret}, store, nil, nil)

	body := paidBody("x@y.com", "paid")
	headers := http.Header{}
	headers.Set("X-Kiwify-Signature", Sign(testSecret, []byte(body)))
	headers.Set("Content-Encoding", "gzip")

	_, err := rec.Reconcile(context.Background(), gzipped(t, body), headers)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.False(t, store.isPro("x@y.com"))
}

func TestReconcile_CorruptGzipIsInvalidPayload(t *testing.T) {
	store := newMemStore(&model.Account{ID: 1, Email: "x@y.com"})
	rec := NewReconciler(Config{Secret: testSecret}, store, nil, nil)

	raw := []byte("not gzip at all")
	headers := http.Header{}
	headers.Set("X-Kiwify-Signature", Sign(testSecret, raw))
	headers.Set("Content-Encoding", "gzip")

	_, err := rec.Reconcile(context.Background(), raw, headers)
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Equal(t, 0, store.writes)
}
