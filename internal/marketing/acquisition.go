package marketing

import "strings"

// Mode задаёт тон сообщений для поиска клиентов.
type Mode string

const (
	ModeShort      Mode = "curta"
	ModeMedium     Mode = "media"
	ModeAggressive Mode = "agressiva"
)

// ParseMode возвращает режим по названию; неизвестное или пустое значение даёт ModeMedium.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeShort, ModeMedium, ModeAggressive:
		return m
	default:
		return ModeMedium
	}
}

// Prospect описывает, кому и что предлагает исполнитель.
type Prospect struct {
	Niche   string `json:"nicho"`
	City    string `json:"cidade"`
	Service string `json:"servico"`
	Mode    string `json:"mode"`
}

var acquisitionTemplates = map[Mode][]string{
	ModeShort: {
		"Olá! Trabalho com {servico} em {cidade}. Posso te enviar uma estimativa gratuita?",
		"Oi! Atendo clientes de {nicho} em {cidade}. Quer saber quanto custaria o {servico} no seu caso?",
		"Olá! Faço {servico} em {cidade}. Posso te passar um valor aproximado sem compromisso.",
		"Boa tarde! Você já considerou {servico}? Posso te explicar rapidamente como funciona em {cidade}.",
		"Olá! Muitos clientes em {cidade} estão procurando {servico}. Quer que eu te envie uma estimativa?",
		"Oi! Trabalho com {servico} na região de {cidade}. Posso te mandar uma simulação gratuita.",
		"Olá! Posso te passar uma orientação rápida sobre {servico} em {cidade}. Sem compromisso.",
		"Oi! Atendo projetos de {servico} em {cidade}. Quer ver quanto ficaria no seu caso?",
		"Olá! Posso te mostrar quanto você economizaria com {servico} em {cidade}.",
		"Boa tarde! Faço {servico} em {cidade}. Quer receber uma estimativa gratuita?",
	},
	ModeMedium: {
		"Olá! Tudo bem? Trabalho com {servico} em {cidade}. Posso te enviar uma estimativa gratuita baseada no seu perfil?",
		"Oi! Atendo clientes que buscam {servico} em {cidade}. Posso te passar uma simulação rápida sem compromisso.",
		"Olá! Faço projetos de {servico} em {cidade}. Muitos clientes conseguem ótimo custo-benefício. Quer que eu te envie uma estimativa?",
		"Boa tarde! Posso te explicar rapidamente como funciona o {servico} e quanto ficaria em média no seu caso em {cidade}.",
		"Olá! Trabalho com {servico} na região de {cidade}. Posso te enviar uma previsão de investimento e retorno.",
		"Oi! Atendo projetos de {nicho} em {cidade}. Posso te mandar uma orientação inicial e estimativa gratuita.",
		"Olá! Muitos clientes em {cidade} estão procurando {servico}. Posso te mostrar quanto ficaria no seu caso.",
		"Boa tarde! Posso te enviar uma simulação personalizada de {servico} para sua realidade em {cidade}.",
		"Olá! Faço atendimento especializado em {servico}. Quer receber uma estimativa sem compromisso?",
		"Oi! Posso te enviar uma projeção realista de custo e benefício do {servico} em {cidade}.",
	},
	ModeAggressive: {
		"Olá! Trabalho com {servico} em {cidade}. Posso te enviar uma estimativa gratuita hoje mesmo.",
		"Oi! Muitos clientes em {cidade} estão iniciando {servico}. Posso te mostrar quanto ficaria no seu caso.",
		"Olá! Posso te enviar uma simulação completa de {servico} com valores atualizados.",
		"Boa tarde! Faço {servico} em {cidade}. Quer receber uma estimativa sem compromisso?",
		"Olá! Posso te mostrar quanto você economizaria com {servico}.",
		"Oi! Atendo clientes em {cidade}. Posso te enviar uma previsão de investimento.",
		"Olá! Trabalho com instalação profissional de {servico}. Quer ver uma estimativa?",
		"Boa tarde! Posso te enviar uma simulação gratuita e personalizada.",
		"Olá! Posso te explicar rapidamente os valores do {servico} em {cidade}.",
		"Oi! Quer receber uma estimativa gratuita e sem compromisso?",
	},
}

// AcquisitionMessages возвращает десять сообщений для первого контакта с клиентом.
func AcquisitionMessages(p Prospect) []string {
	r := strings.NewReplacer(
		"{nicho}", strings.TrimSpace(p.Niche),
		"{cidade}", strings.TrimSpace(p.City),
		"{servico}", strings.TrimSpace(p.Service),
	)

	templates := acquisitionTemplates[ParseMode(p.Mode)]
	res := make([]string, 0, len(templates))
	for _, tpl := range templates {
		res = append(res, r.Replace(tpl))
	}
	return res
}
