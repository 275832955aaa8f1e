package sheets

import (
	"context"

	gsheets "google.golang.org/api/sheets/v4"

	"agro_desk/internal/domain"
	"agro_desk/pkg/errcodes"
)

// Color цветовая маркировка статусов в таблице: зелёный — подтверждено,
// красный — удалено/отклонено, жёлтый — ждёт переоценки после правки.
type Color string

const (
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorWhite  Color = "white"
)

//nolint:gochecknoglobals
var palette = map[Color]*gsheets.Color{
	ColorGreen:  {Red: 0.8, Green: 1, Blue: 0.8}, // ~#ccffcc
	ColorRed:    {Red: 1, Green: 0, Blue: 0},     // #ff0000
	ColorYellow: {Red: 1, Green: 1, Blue: 0.6},   // ~#ffff99
	ColorWhite:  {Red: 1, Green: 1, Blue: 1},
}

// ColorCell заливает одну ячейку (1-индексные координаты).
func (c *Client) ColorCell(ctx context.Context, row, col int, color Color) error {
	return c.applyColor(ctx, row, col-1, col, color)
}

// ColorRow заливает строку целиком до последней значимой колонки.
func (c *Client) ColorRow(ctx context.Context, row int, color Color) error {
	return c.applyColor(ctx, row, 0, ColApplicantID, color)
}

func (c *Client) applyColor(ctx context.Context, row, startCol, endCol int, color Color) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			RepeatCell: &gsheets.RepeatCellRequest{
				Range: &gsheets.GridRange{
					SheetId:          c.ledgerSheetID,
					StartRowIndex:    int64(row - 1),
					EndRowIndex:      int64(row),
					StartColumnIndex: int64(startCol),
					EndColumnIndex:   int64(endCol),
				},
				Cell: &gsheets.CellData{
					UserEnteredFormat: &gsheets.CellFormat{
						BackgroundColor: palette[color],
					},
				},
				Fields: "userEnteredFormat.backgroundColor",
			},
		}},
	}

	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "format sheet cells")
	}

	return nil
}

// MarkRowConfirmed подтверждённая заявка — зелёная строка.
func (c *Client) MarkRowConfirmed(ctx context.Context, row int) error {
	return c.ColorRow(ctx, row, ColorGreen)
}

// MarkRowDeleted удалённая заявка — красная строка.
func (c *Client) MarkRowDeleted(ctx context.Context, row int) error {
	return c.ColorRow(ctx, row, ColorRed)
}

// MarkPriceRejected отклонённое предложение — красная ценовая ячейка.
func (c *Client) MarkPriceRejected(ctx context.Context, row int) error {
	return c.ColorCell(ctx, row, ColPrice, ColorRed)
}

// MarkPricePending правка заявителя — жёлтая ценовая ячейка до переоценки.
func (c *Client) MarkPricePending(ctx context.Context, row int) error {
	return c.ColorCell(ctx, row, ColPrice, ColorYellow)
}
