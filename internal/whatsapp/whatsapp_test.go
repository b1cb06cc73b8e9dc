package whatsapp

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhoneBR(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(11) 98765-4321", "5511987654321"},
		{"11 3456-7890", "551134567890"},
		{"+55 11 98765-4321", "5511987654321"},
		{"5511987654321", "5511987654321"},
		{"98765-4321", "987654321"},
		{"", ""},
		{"sem número", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhoneBR(tt.in))
		})
	}
}

func TestBudgetMessage(t *testing.T) {
	q := Quote{
		ClientName:    "Maria",
		ServiceType:   "Ar-condicionado 12k",
		Value:         "R$ 850,00",
		PaymentMethod: "Pix",
	}

	msg := BudgetMessage(q)
	assert.True(t, strings.HasPrefix(msg, "Olá, Maria!\n\n"))
	assert.Contains(t, msg, "Serviço: Ar-condicionado 12k\n")
	assert.Contains(t, msg, "Valor: R$ 850,00\n")
	assert.Contains(t, msg, "Forma de pagamento: Pix\n\n")
	assert.NotContains(t, msg, "Observações")

	q.Notes = "  Inclui suporte  "
	msg = BudgetMessage(q)
	assert.Contains(t, msg, "Forma de pagamento: Pix\n\nObservações:\nInclui suporte\n\n")
	assert.True(t, strings.HasSuffix(msg, "posso agendar a instalação."))
}

func TestLink(t *testing.T) {
	link := Link("(11) 98765-4321", "Olá, João!\nValor: R$ 1.000 & Pix")

	require.True(t, strings.HasPrefix(link, "https://wa.me/5511987654321?text="))
	assert.NotContains(t, link, "+")
	assert.NotContains(t, link, " ")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Olá, João!\nValor: R$ 1.000 & Pix", u.Query().Get("text"))
}

func TestCanFollowup(t *testing.T) {
	created := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.False(t, CanFollowup(created, created.Add(23*time.Hour+59*time.Minute)))
	assert.True(t, CanFollowup(created, created.Add(24*time.Hour)))
	assert.True(t, CanFollowup(created, created.Add(72*time.Hour)))
}

func TestFollowupMessage(t *testing.T) {
	msg := FollowupMessage("Ana")
	assert.True(t, strings.HasPrefix(msg, "Olá, Ana!"))
	assert.Contains(t, msg, "conseguiu ver o orçamento")
}
