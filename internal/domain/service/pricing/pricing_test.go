package pricing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"agro_desk/internal/domain/entity"
	"agro_desk/internal/domain/service/pricing"
)

type fakeDistance struct {
	km  float64
	err error
}

func (f fakeDistance) ResolveDistanceKm(context.Context, string, string, string) (float64, error) {
	return f.km, f.err
}

type fakeLedger struct {
	rows   []int
	prices []string
	err    error
}

func (f *fakeLedger) SetBotPrice(_ context.Context, row int, price string) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	f.prices = append(f.prices, price)
	return nil
}

func testConfig() entity.PriceConfig {
	return entity.PriceConfig{
		DistanceRanges: []entity.DistanceRange{
			{MinKm: 0, MaxKm: 100, Tariffs: map[entity.Currency]float64{entity.CurrencyGrn: 300}},
			{MinKm: 100, MaxKm: 200, Tariffs: map[entity.Currency]float64{entity.CurrencyGrn: 500}},
		},
		Blocks: map[entity.Currency]map[string]map[string]map[string]float64{
			entity.CurrencyGrn: {
				"зернові": {
					"пшениця": {
						"готівка": 7000,
					},
				},
			},
		},
	}
}

func testApplication() entity.Application {
	return entity.Application{
		ApplicantID: 42,
		Group:       "Зернові",
		Culture:     "Пшениця",
		Quantity:    "100",
		PaymentForm: "Готівка",
		Currency:    "грн",
		Region:      "Одеська",
		District:    "Білгород-Дністровський",
		City:        "Шабо",
		SheetRow:    7,
	}
}

func TestComputePrice(t *testing.T) {
	rq := require.New(t)

	ledger := &fakeLedger{}
	engine := pricing.NewEngine(fakeDistance{km: 42}, ledger)

	price, err := engine.ComputePrice(context.Background(), testApplication(), testConfig())
	rq.NoError(err)
	rq.InDelta(6700, price, 1e-9)

	rq.Equal([]int{7}, ledger.rows)
	rq.Equal([]string{"6700"}, ledger.prices)
}

func TestComputePriceHalfOpenBoundary(t *testing.T) {
	rq := require.New(t)

	// Ровно 100 км попадает во второй диапазон
	engine := pricing.NewEngine(fakeDistance{km: 100}, &fakeLedger{})

	price, err := engine.ComputePrice(context.Background(), testApplication(), testConfig())
	rq.NoError(err)
	rq.InDelta(6500, price, 1e-9)
}

func TestComputePriceClampsToZero(t *testing.T) {
	rq := require.New(t)

	cfg := testConfig()
	cfg.Blocks[entity.CurrencyGrn]["зернові"]["пшениця"]["готівка"] = 200

	engine := pricing.NewEngine(fakeDistance{km: 42}, &fakeLedger{})

	price, err := engine.ComputePrice(context.Background(), testApplication(), cfg)
	rq.NoError(err)
	rq.Zero(price)
}

func TestComputePriceIdempotent(t *testing.T) {
	rq := require.New(t)

	engine := pricing.NewEngine(fakeDistance{km: 42}, &fakeLedger{})

	first, err := engine.ComputePrice(context.Background(), testApplication(), testConfig())
	rq.NoError(err)

	second, err := engine.ComputePrice(context.Background(), testApplication(), testConfig())
	rq.NoError(err)
	rq.InDelta(first, second, 1e-9)
}

func TestComputePriceNotComputable(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(app *entity.Application, cfg *entity.PriceConfig, dist *fakeDistance)
	}{
		{"missing culture", func(app *entity.Application, _ *entity.PriceConfig, _ *fakeDistance) {
			app.Culture = ""
		}},
		{"missing city", func(app *entity.Application, _ *entity.PriceConfig, _ *fakeDistance) {
			app.City = " "
		}},
		{"unknown currency", func(app *entity.Application, _ *entity.PriceConfig, _ *fakeDistance) {
			app.Currency = "tugrik"
		}},
		{"distance failure", func(_ *entity.Application, _ *entity.PriceConfig, dist *fakeDistance) {
			dist.err = errors.New("geocode failed")
		}},
		{"no tariff range", func(_ *entity.Application, _ *entity.PriceConfig, dist *fakeDistance) {
			dist.km = 999
		}},
		{"no base price", func(app *entity.Application, _ *entity.PriceConfig, _ *fakeDistance) {
			app.Culture = "ячмінь"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApplication()
			cfg := testConfig()
			dist := &fakeDistance{km: 42}
			tt.modify(&app, &cfg, dist)

			ledger := &fakeLedger{}
			engine := pricing.NewEngine(*dist, ledger)

			_, err := engine.ComputePrice(ctx, app, cfg)
			rq.ErrorIs(err, pricing.ErrNotComputable)
			rq.Empty(ledger.rows)
		})
	}
}

func TestComputePriceLedgerWriteFails(t *testing.T) {
	rq := require.New(t)

	ledger := &fakeLedger{err: errors.New("quota exceeded")}
	engine := pricing.NewEngine(fakeDistance{km: 42}, ledger)

	_, err := engine.ComputePrice(context.Background(), testApplication(), testConfig())
	rq.Error(err)
	rq.NotErrorIs(err, pricing.ErrNotComputable)
}

func TestFormatPrice(t *testing.T) {
	rq := require.New(t)

	rq.Equal("6500", pricing.FormatPrice(6500))
	rq.Equal("6500", pricing.FormatPrice(6500.0000001))
	rq.Equal("0", pricing.FormatPrice(0))
	rq.Equal("164.5", pricing.FormatPrice(164.5))
}
