package entity

import "strings"

// DistanceRange тариф перевозки для полуинтервала [MinKm, MaxKm).
type DistanceRange struct {
	MinKm   float64
	MaxKm   float64
	Tariffs map[Currency]float64
}

// Contains точка ровно на MinKm принадлежит этому диапазону.
func (r DistanceRange) Contains(distanceKm float64) bool {
	return distanceKm >= r.MinKm && distanceKm < r.MaxKm
}

// PriceConfig разобранный прайс-лист: тарифные диапазоны по расстоянию
// и базовые цены по валюте/группе/культуре/форме оплаты. Живёт один
// цикл сверки и пересобирается заново.
type PriceConfig struct {
	// DistanceRanges отсортированы по возрастанию, не перекрываются.
	DistanceRanges []DistanceRange

	// Blocks: валюта → группа → культура → форма оплаты → базовая цена.
	// Все ключи хранятся в нижнем регистре.
	Blocks map[Currency]map[string]map[string]map[string]float64
}

// TariffFor ищет тариф для расстояния и валюты. Диапазоны проверяются
// по возрастанию, первый подходящий выигрывает.
func (c PriceConfig) TariffFor(distanceKm float64, currency Currency) (float64, bool) {
	for _, r := range c.DistanceRanges {
		if r.Contains(distanceKm) {
			tariff, ok := r.Tariffs[currency]
			return tariff, ok
		}
	}

	return 0, false
}

// BasePrice базовая цена по ключам прайс-листа, поиск без учёта регистра.
func (c PriceConfig) BasePrice(currency Currency, group, culture, paymentForm string) (float64, bool) {
	groups, ok := c.Blocks[currency]
	if !ok {
		return 0, false
	}

	cultures, ok := groups[strings.ToLower(strings.TrimSpace(group))]
	if !ok {
		return 0, false
	}

	payments, ok := cultures[strings.ToLower(strings.TrimSpace(culture))]
	if !ok {
		return 0, false
	}

	price, ok := payments[strings.ToLower(strings.TrimSpace(paymentForm))]

	return price, ok
}
