package entity

import "strings"

// Currency каноническая валюта прайс-листа.
type Currency string

const (
	CurrencyGrn    Currency = "grn"
	CurrencyDollar Currency = "dollar"
	CurrencyEuro   Currency = "euro"
)

// CanonicalCurrency нормализует пользовательский или табличный токен
// валюты к каноническому набору {grn, dollar, euro}.
func CanonicalCurrency(raw string) (Currency, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "grn", "uah", "грн":
		return CurrencyGrn, true
	case "dollar", "usd", "долар", "доллар":
		return CurrencyDollar, true
	case "euro", "eur", "євро", "евро":
		return CurrencyEuro, true
	}

	return "", false
}

// Display название валюты так, как его пишут в таблице-зеркале.
func (c Currency) Display() string {
	switch c {
	case CurrencyGrn:
		return "Грн"
	case CurrencyDollar:
		return "Долар"
	case CurrencyEuro:
		return "Євро"
	}

	return string(c)
}
