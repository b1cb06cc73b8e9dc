package marketing

import "strings"

// Closing описывает закрытую сделку для публикации в соцсетях.
type Closing struct {
	Service string `json:"servico"`
	Value   string `json:"valor"`
	City    string `json:"cidade"`
	Detail  string `json:"detalhe"`
}

// SocialProofText собирает пост о закрытой сделке. Пустые поля пропускаются.
func SocialProofText(c Closing) string {
	lines := []string{
		"✅ Fechamos mais um serviço!",
		"",
		"📌 Serviço: " + strings.TrimSpace(c.Service),
	}

	value := strings.TrimSpace(strings.ReplaceAll(c.Value, "R$", ""))
	if value != "" {
		lines = append(lines, "💰 Valor: R$ "+value)
	}
	if city := strings.TrimSpace(c.City); city != "" {
		lines = append(lines, "📍 Cidade: "+city)
	}
	if detail := strings.TrimSpace(c.Detail); detail != "" {
		lines = append(lines, "⭐ "+detail)
	}

	lines = append(lines, "", "Se você também quer orçamento rápido e serviço bem feito, me chama no WhatsApp. 🔥")

	return strings.Join(lines, "\n") + "\n"
}
