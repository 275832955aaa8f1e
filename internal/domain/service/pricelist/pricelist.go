package pricelist

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"agro_desk/internal/domain/entity"
	"agro_desk/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Раскладка листа "Ціни":
//   - тарифные диапазоны начинаются со 2-й строки: A "min-max",
//     B тариф грн, C тариф долар, D тариф євро; первый пустой A — конец;
//   - ценовые блоки начинаются с 3-й строки: гривневый блок в F..J
//     (группа, культура, с ПДВ, без ПДВ, готівка), долларовый в L..O
//     (группа, культура, валютний контракт, готівка), евро в Q..S
//     (группа, культура, валютний контракт).
const (
	distanceFirstRow = 2
	blocksFirstRow   = 3

	colRange     = 0
	colTariffGrn = 1
	colTariffUsd = 2
	colTariffEur = 3

	colGroupGrn   = 5
	colCultureGrn = 6
	colPayPdv     = 7
	colPayNoPdv   = 8
	colPayCashGrn = 9

	colGroupUsd    = 11
	colCultureUsd  = 12
	colPayContract = 13
	colPayCashUsd  = 14

	colGroupEur       = 16
	colCultureEur     = 17
	colPayContractEur = 18
)

// Формы оплаты так, как они записаны в прайс-листе.
const (
	PaymentPdv      = "перерахунок з пдв"
	PaymentNoPdv    = "перерахунок без пдв"
	PaymentCash     = "готівка"
	PaymentContract = "валютний контракт"
)

// Parse строит PriceConfig из сырых строк прайс-листа. Кривые строки
// пропускаются с логом, парсинг никогда не фатален.
func Parse(ctx context.Context, rows [][]string) entity.PriceConfig {
	cfg := entity.PriceConfig{
		DistanceRanges: parseDistanceRanges(ctx, rows),
		Blocks: map[entity.Currency]map[string]map[string]map[string]float64{
			entity.CurrencyGrn:    {},
			entity.CurrencyDollar: {},
			entity.CurrencyEuro:   {},
		},
	}

	for rowIdx := blocksFirstRow; rowIdx <= len(rows); rowIdx++ {
		parseBlockRow(cfg.Blocks, rows[rowIdx-1])
	}

	logger(ctx).Debug(
		"price sheet parsed",
		slog.Int("distance_ranges", len(cfg.DistanceRanges)),
	)

	return cfg
}

func parseDistanceRanges(ctx context.Context, rows [][]string) []entity.DistanceRange {
	var ranges []entity.DistanceRange

	for rowIdx := distanceFirstRow; rowIdx <= len(rows); rowIdx++ {
		row := rows[rowIdx-1]
		if len(row) < 2 {
			break
		}

		rangeCell := strings.TrimSpace(cell(row, colRange))
		if rangeCell == "" {
			break
		}

		bounds := strings.Split(rangeCell, "-")
		if len(bounds) != 2 {
			continue
		}

		minKm, errMin := strconv.ParseFloat(strings.TrimSpace(bounds[0]), 64)
		maxKm, errMax := strconv.ParseFloat(strings.TrimSpace(bounds[1]), 64)
		if errMin != nil || errMax != nil {
			logger(ctx).Warn(
				"malformed distance range",
				slog.Int("row", rowIdx),
				slog.String("cell", rangeCell),
			)
			continue
		}

		tariffs := make(map[entity.Currency]float64, 3)
		if v, ok := tryFloat(cell(row, colTariffGrn)); ok {
			tariffs[entity.CurrencyGrn] = v
		}
		if v, ok := tryFloat(cell(row, colTariffUsd)); ok {
			tariffs[entity.CurrencyDollar] = v
		}
		if v, ok := tryFloat(cell(row, colTariffEur)); ok {
			tariffs[entity.CurrencyEuro] = v
		}

		ranges = append(ranges, entity.DistanceRange{
			MinKm:   minKm,
			MaxKm:   maxKm,
			Tariffs: tariffs,
		})
	}

	return ranges
}

func parseBlockRow(blocks map[entity.Currency]map[string]map[string]map[string]float64, row []string) {
	if group, culture, ok := blockKey(row, colGroupGrn, colCultureGrn); ok {
		payments := payDict(blocks, entity.CurrencyGrn, group, culture)
		setPrice(payments, PaymentPdv, cell(row, colPayPdv))
		setPrice(payments, PaymentNoPdv, cell(row, colPayNoPdv))
		setPrice(payments, PaymentCash, cell(row, colPayCashGrn))
	}

	if group, culture, ok := blockKey(row, colGroupUsd, colCultureUsd); ok {
		payments := payDict(blocks, entity.CurrencyDollar, group, culture)
		setPrice(payments, PaymentContract, cell(row, colPayContract))
		setPrice(payments, PaymentCash, cell(row, colPayCashUsd))
	}

	if group, culture, ok := blockKey(row, colGroupEur, colCultureEur); ok {
		payments := payDict(blocks, entity.CurrencyEuro, group, culture)
		setPrice(payments, PaymentContract, cell(row, colPayContractEur))
	}
}

func blockKey(row []string, groupCol, cultureCol int) (group, culture string, ok bool) {
	group = strings.ToLower(strings.TrimSpace(cell(row, groupCol)))
	culture = strings.ToLower(strings.TrimSpace(cell(row, cultureCol)))

	return group, culture, group != "" && culture != ""
}

func payDict(
	blocks map[entity.Currency]map[string]map[string]map[string]float64,
	currency entity.Currency,
	group, culture string,
) map[string]float64 {
	cultures, ok := blocks[currency][group]
	if !ok {
		cultures = map[string]map[string]float64{}
		blocks[currency][group] = cultures
	}

	payments, ok := cultures[culture]
	if !ok {
		payments = map[string]float64{}
		cultures[culture] = payments
	}

	return payments
}

func setPrice(payments map[string]float64, paymentForm, raw string) {
	if v, ok := tryFloat(raw); ok {
		payments[paymentForm] = v
	}
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}

	return row[col]
}

func tryFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}

	return v, true
}
