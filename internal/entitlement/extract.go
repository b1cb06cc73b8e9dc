package entitlement

import "strings"

// Пути к email покупателя: схема вебхука Kiwify не зафиксирована, проверяем по порядку.
var emailPaths = [][]string{
	{"customer", "email"},
	{"Customer", "email"},
	{"buyer", "email"},
	{"Buyer", "email"},
	{"email"},
}

// Ключи верхнего уровня, в которых может лежать статус заказа или подписки.
var statusKeys = []string{
	"status",
	"order_status",
	"payment_status",
	"subscription_status",
	"event",
	"type",
}

type extractor func(payload map[string]any) (string, bool)

var (
	emailExtractors  = pathExtractors(emailPaths, isEmail)
	statusExtractors = keyExtractors(statusKeys)
)

func pathExtractors(paths [][]string, accept func(string) bool) []extractor {
	res := make([]extractor, 0, len(paths))
	for _, path := range paths {
		path := path // per-iteration copy (go.mod targets go 1.21 loop semantics)
		res = append(res, func(payload map[string]any) (string, bool) {
			v, ok := lookup(payload, path)
			if !ok {
				return "", false
			}
			s, ok := v.(string)
			if !ok || !accept(s) {
				return "", false
			}
			return s, true
		})
	}
	return res
}

func keyExtractors(keys []string) []extractor {
	paths := make([][]string, 0, len(keys))
	for _, k := range keys {
		paths = append(paths, []string{k})
	}
	return pathExtractors(paths, func(s string) bool {
		return strings.TrimSpace(s) != ""
	})
}

func lookup(payload map[string]any, path []string) (any, bool) {
	var cur any = payload
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func isEmail(s string) bool {
	return strings.Contains(s, "@")
}

func firstMatch(payload map[string]any, extractors []extractor) string {
	for _, ex := range extractors {
		if v, ok := ex(payload); ok {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}

// ExtractEmail возвращает нормализованный email покупателя или пустую строку.
func ExtractEmail(payload map[string]any) string {
	return firstMatch(payload, emailExtractors)
}

// ExtractStatus возвращает нормализованный статус события или пустую строку.
func ExtractStatus(payload map[string]any) string {
	return firstMatch(payload, statusExtractors)
}
