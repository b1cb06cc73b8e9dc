package entitlement

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// Заголовки, в которых Kiwify может прислать подпись, в порядке приоритета.
var signatureHeaders = []string{
	"X-Kiwify-Signature",
	"X-Signature",
	"X-Hub-Signature-256",
	"Kiwify-Signature",
}

const signaturePrefix = "sha256="

// signatureFromHeaders возвращает первую непустую подпись из известных заголовков.
func signatureFromHeaders(headers http.Header) string {
	for _, name := range signatureHeaders {
		if v := strings.TrimSpace(headers.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeSignature(sig string) string {
	sig = strings.TrimSpace(sig)
	if len(sig) >= len(signaturePrefix) && strings.EqualFold(sig[:len(signaturePrefix)], signaturePrefix) {
		sig = sig[len(signaturePrefix):]
	}
	return strings.TrimSpace(sig)
}

// Sign возвращает hex HMAC-SHA256 тела запроса.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func validSignature(secret string, body []byte, headerSig string) bool {
	if secret == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(normalizeSignature(headerSig)))
}
