package gate

// Виды баннера.
const (
	BannerWarning  = "warning"
	BannerBlocking = "blocking"
)

// Ссылки призыва к действию.
const (
	UpgradePath  = "/app/upgrade"
	CheckoutPath = "/app/checkout"
)

// Banner описывает подсказку о лимите для слоя отображения.
type Banner struct {
	Kind        string `json:"kind"`
	Used        int    `json:"used"`
	Limit       int    `json:"limit"`
	Remaining   int    `json:"remaining"`
	CTA         string `json:"cta"`
	CheckoutCTA string `json:"checkout_cta"`
}

// Banner возвращает баннер для текущего состояния или nil, если показывать нечего.
func (i Info) Banner() *Banner {
	if i.IsPro {
		return nil
	}

	var kind string
	switch {
	case i.AtLimit:
		kind = BannerBlocking
	case i.NearLimit:
		kind = BannerWarning
	default:
		return nil
	}

	remaining := 0
	if i.Remaining != nil {
		remaining = *i.Remaining
	}

	return &Banner{
		Kind:        kind,
		Used:        i.Total,
		Limit:       i.Limit,
		Remaining:   remaining,
		CTA:         UpgradePath,
		CheckoutCTA: CheckoutPath,
	}
}
