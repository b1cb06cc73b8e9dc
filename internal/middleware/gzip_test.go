package middleware

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// budgetEcho отвечает как обработчики API: JSON с кодом статуса, зависящим от тела запроса.
func budgetEcho(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientName string `json:"client_name"`
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientName == "" {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "limit_reached", "upgrade_url": "/app/upgrade"})
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"client_name": req.ClientName, "status": "awaiting"})
}

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestGzipMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		body           []byte
		contentEnc     string
		acceptEnc      string
		wantStatus     int
		wantCompressed bool
		wantField      string
		wantValue      string
	}{
		{
			name:           "compressed json response",
			body:           []byte(`{"client_name":"Maria"}`),
			acceptEnc:      "gzip, deflate",
			wantStatus:     http.StatusCreated,
			wantCompressed: true,
			wantField:      "client_name",
			wantValue:      "Maria",
		},
		{
			name:       "plain response without accept-encoding",
			body:       []byte(`{"client_name":"Maria"}`),
			wantStatus: http.StatusCreated,
			wantField:  "status",
			wantValue:  "awaiting",
		},
		{
			name:           "compressed error response keeps status",
			body:           []byte(`{}`),
			acceptEnc:      "gzip",
			wantStatus:     http.StatusForbidden,
			wantCompressed: true,
			wantField:      "error",
			wantValue:      "limit_reached",
		},
		{
			name:       "gzip request body is decoded",
			body:       gzipBytes(t, `{"client_name":"João"}`),
			contentEnc: "gzip",
			wantStatus: http.StatusCreated,
			wantField:  "client_name",
			wantValue:  "João",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/app/budgets", bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.contentEnc != "" {
				req.Header.Set("Content-Encoding", tt.contentEnc)
			}
			if tt.acceptEnc != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEnc)
			}

			w := httptest.NewRecorder()
			GzipMiddleware(http.HandlerFunc(budgetEcho)).ServeHTTP(w, req)

			res := w.Result()
			defer res.Body.Close()

			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

			var reader io.Reader = res.Body
			if tt.wantCompressed {
				require.Equal(t, "gzip", res.Header.Get("Content-Encoding"))
				gr, err := gzip.NewReader(res.Body)
				require.NoError(t, err)
				defer gr.Close()
				reader = gr
			} else {
				assert.Empty(t, res.Header.Get("Content-Encoding"))
			}

			var body map[string]string
			require.NoError(t, json.NewDecoder(reader).Decode(&body))
			assert.Equal(t, tt.wantValue, body[tt.wantField])
		})
	}
}

func TestGzipMiddleware_CorruptRequestBody(t *testing.T) {
	called := false
	h := GzipMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/app/budgets", strings.NewReader(`{"client_name":"Maria"}`))
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}
