package pricelist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"agro_desk/internal/domain/entity"
	"agro_desk/internal/domain/service/pricelist"
)

func priceSheet() [][]string {
	// A..D тарифы, F..J гривневый блок, L..O долларовый, Q..S евро
	return [][]string{
		{"Відстань", "Грн", "Долар", "Євро"},
		{"0-100", "300", "10", "9", "",
			"Група", "Культура", "З ПДВ", "Без ПДВ", "Готівка", "",
			"Група", "Культура", "Контракт", "Готівка", "",
			"Група", "Культура", "Контракт"},
		{"100-200", "500", "15", "13", "",
			"Зернові", "Пшениця", "7000", "6500", "6800", "",
			"Зернові", "Пшениця", "165", "160", "",
			"Зернові", "Пшениця", "150"},
		{"200-400", "800", "22", "20", "",
			"Олійні", "Соняшник", "17000", "16200", "16500", "",
			"", "", "", "", "",
			"", "", ""},
	}
}

func TestParseDistanceRanges(t *testing.T) {
	rq := require.New(t)

	cfg := pricelist.Parse(context.Background(), priceSheet())

	rq.Len(cfg.DistanceRanges, 3)

	first := cfg.DistanceRanges[0]
	rq.InDelta(0, first.MinKm, 1e-9)
	rq.InDelta(100, first.MaxKm, 1e-9)
	rq.InDelta(300, first.Tariffs[entity.CurrencyGrn], 1e-9)
	rq.InDelta(10, first.Tariffs[entity.CurrencyDollar], 1e-9)
	rq.InDelta(9, first.Tariffs[entity.CurrencyEuro], 1e-9)

	// Диапазоны по возрастанию, первый подходящий выигрывает
	tariff, ok := cfg.TariffFor(150, entity.CurrencyGrn)
	rq.True(ok)
	rq.InDelta(500, tariff, 1e-9)
}

func TestParseDistanceRangesStopsAtEmpty(t *testing.T) {
	rq := require.New(t)

	rows := [][]string{
		{"Відстань", "Грн"},
		{"0-100", "300"},
		{"", ""},
		{"100-200", "500"},
	}

	cfg := pricelist.Parse(context.Background(), rows)
	rq.Len(cfg.DistanceRanges, 1)
}

func TestParseSkipsMalformedRange(t *testing.T) {
	rq := require.New(t)

	rows := [][]string{
		{"Відстань", "Грн"},
		{"близько", "300"},
		{"0-100", "300"},
	}

	cfg := pricelist.Parse(context.Background(), rows)
	rq.Len(cfg.DistanceRanges, 1)
	rq.InDelta(0, cfg.DistanceRanges[0].MinKm, 1e-9)
}

func TestParseBlocks(t *testing.T) {
	rq := require.New(t)

	cfg := pricelist.Parse(context.Background(), priceSheet())

	price, ok := cfg.BasePrice(entity.CurrencyGrn, "Зернові", "Пшениця", pricelist.PaymentNoPdv)
	rq.True(ok)
	rq.InDelta(6500, price, 1e-9)

	price, ok = cfg.BasePrice(entity.CurrencyGrn, "зернові", "пшениця", pricelist.PaymentCash)
	rq.True(ok)
	rq.InDelta(6800, price, 1e-9)

	price, ok = cfg.BasePrice(entity.CurrencyDollar, "Зернові", "Пшениця", pricelist.PaymentContract)
	rq.True(ok)
	rq.InDelta(165, price, 1e-9)

	price, ok = cfg.BasePrice(entity.CurrencyEuro, "Зернові", "Пшениця", pricelist.PaymentContract)
	rq.True(ok)
	rq.InDelta(150, price, 1e-9)

	// Строка заголовков блоков в конфиг не попадает
	_, ok = cfg.BasePrice(entity.CurrencyGrn, "Група", "Культура", pricelist.PaymentCash)
	rq.False(ok)
}

func TestParseEmptySheet(t *testing.T) {
	rq := require.New(t)

	cfg := pricelist.Parse(context.Background(), nil)

	rq.Empty(cfg.DistanceRanges)
	rq.NotNil(cfg.Blocks)
}
