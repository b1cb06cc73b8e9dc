// Package whatsapp формирует тексты и ссылки wa.me для отправки бюджетов клиентам.
package whatsapp

import (
	"net/url"
	"strings"
	"time"
)

const (
	countryCodeBR = "55"
	baseURL       = "https://wa.me/"

	// FollowupDelay: минимальное время после создания бюджета до повторного сообщения клиенту.
	FollowupDelay = 24 * time.Hour
)

// NormalizePhoneBR оставляет в номере только цифры и добавляет код страны 55,
// если номер содержит DDD и ещё не начинается с 55.
func NormalizePhoneBR(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if strings.HasPrefix(digits, countryCodeBR) {
		return digits
	}
	if len(digits) >= 10 {
		return countryCodeBR + digits
	}
	return digits
}

// Quote описывает поля бюджета, попадающие в сообщение.
type Quote struct {
	ClientName    string
	ServiceType   string
	Value         string
	PaymentMethod string
	Notes         string
}

// BudgetMessage возвращает текст бюджета для клиента.
func BudgetMessage(q Quote) string {
	var b strings.Builder
	b.WriteString("Olá, " + q.ClientName + "!\n\n")
	b.WriteString("Segue o seu orçamento:\n\n")
	b.WriteString("Serviço: " + q.ServiceType + "\n")
	b.WriteString("Valor: " + q.Value + "\n")
	b.WriteString("Forma de pagamento: " + q.PaymentMethod)
	if notes := strings.TrimSpace(q.Notes); notes != "" {
		b.WriteString("\n\nObservações:\n" + notes)
	}
	b.WriteString("\n\nSe eu puder fechar com você hoje, posso agendar a instalação.")
	return b.String()
}

// FollowupMessage возвращает текст напоминания клиенту о бюджете.
func FollowupMessage(clientName string) string {
	return "Olá, " + clientName + "!\n\n" +
		"Passando pra confirmar se você conseguiu ver o orçamento.\n\n" +
		"Se quiser, já deixo o melhor horário separado pra você."
}

// Link возвращает ссылку wa.me с нормализованным номером и закодированным текстом.
func Link(phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return baseURL + NormalizePhoneBR(phone) + "?text=" + text
}

// CanFollowup сообщает, прошло ли достаточно времени с создания бюджета.
func CanFollowup(createdAt, now time.Time) bool {
	return now.Sub(createdAt) >= FollowupDelay
}
