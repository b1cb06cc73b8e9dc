package entitlement

import "strings"

// Decision: результат классификации статуса от платёжного провайдера.
type Decision int

const (
	Ignore Decision = iota
	Activate
	Deactivate
)

func (d Decision) String() string {
	switch d {
	case Activate:
		return "activate"
	case Deactivate:
		return "deactivate"
	default:
		return "ignore"
	}
}

var (
	activateTerms   = []string{"paid", "approved", "aprov", "active", "ativa", "completed", "success"}
	deactivateTerms = []string{"refunded", "refund", "chargeback", "canceled", "cancelled", "expired", "inactive", "falha", "failed"}
)

// Classify сопоставляет статус со словарями активации и деактивации.
// Словарь деактивации проверяется первым: "inactive" содержит "active".
func Classify(status string) Decision {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return Ignore
	}
	if containsAny(s, deactivateTerms) {
		return Deactivate
	}
	if containsAny(s, activateTerms) {
		return Activate
	}
	return Ignore
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
