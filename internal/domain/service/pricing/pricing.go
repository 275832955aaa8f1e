package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"agro_desk/internal/domain/entity"
)

// ErrNotComputable цена сейчас не считается: не хватает данных заявки,
// тарифа, базовой цены или расстояния. Не фатально — цикл сверки
// попробует снова.
var ErrNotComputable = errors.New("price not computable")

const integralTolerance = 1e-6

type DistanceProvider interface {
	ResolveDistanceKm(ctx context.Context, region, district, city string) (float64, error)
}

type LedgerWriter interface {
	SetBotPrice(ctx context.Context, row int, price string) error
}

// Engine авторасчёт цены: базовая цена из прайс-листа минус тариф
// перевозки по расстоянию до заявителя.
type Engine struct {
	distance DistanceProvider
	ledger   LedgerWriter
}

func NewEngine(distance DistanceProvider, ledger LedgerWriter) *Engine {
	return &Engine{
		distance: distance,
		ledger:   ledger,
	}
}

// ComputePrice считает цену и записывает её в ценовую ячейку строки
// заявки. Саму заявку не меняет — статусы и bot_price фиксирует
// вызывающий.
func (e *Engine) ComputePrice(ctx context.Context, app entity.Application, cfg entity.PriceConfig) (float64, error) {
	region := strings.TrimSpace(app.Region)
	district := strings.TrimSpace(app.District)
	city := strings.TrimSpace(app.City)
	group := strings.TrimSpace(app.Group)
	culture := strings.TrimSpace(app.Culture)
	paymentForm := strings.TrimSpace(app.PaymentForm)

	if region == "" || district == "" || city == "" ||
		group == "" || culture == "" || paymentForm == "" || strings.TrimSpace(app.Currency) == "" {
		return 0, fmt.Errorf("%w: incomplete application", ErrNotComputable)
	}

	currency, ok := entity.CanonicalCurrency(app.Currency)
	if !ok {
		return 0, fmt.Errorf("%w: unknown currency %q", ErrNotComputable, app.Currency)
	}

	distanceKm, err := e.distance.ResolveDistanceKm(ctx, region, district, city)
	if err != nil {
		return 0, fmt.Errorf("%w: resolve distance: %v", ErrNotComputable, err)
	}

	tariff, ok := cfg.TariffFor(distanceKm, currency)
	if !ok {
		return 0, fmt.Errorf("%w: no tariff for %.1f km in %s", ErrNotComputable, distanceKm, currency)
	}

	basePrice, ok := cfg.BasePrice(currency, group, culture, paymentForm)
	if !ok {
		return 0, fmt.Errorf(
			"%w: no base price for %s/%s/%s/%s",
			ErrNotComputable, currency, group, culture, paymentForm,
		)
	}

	finalPrice := basePrice - tariff
	if finalPrice < 0 {
		finalPrice = 0
	}

	if isIntegral(finalPrice) {
		finalPrice = math.Round(finalPrice)
	}

	if err := e.ledger.SetBotPrice(ctx, app.SheetRow, FormatPrice(finalPrice)); err != nil {
		return 0, fmt.Errorf("write bot price: %w", err)
	}

	return finalPrice, nil
}

func isIntegral(v float64) bool {
	return math.Abs(v-math.Trunc(v)) < integralTolerance
}

// FormatPrice целые цены без дробной части, остальные как есть.
func FormatPrice(v float64) string {
	if isIntegral(v) {
		return strconv.FormatInt(int64(math.Round(v)), 10)
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}
