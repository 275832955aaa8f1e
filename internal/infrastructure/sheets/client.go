package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"agro_desk/internal/config"
	"agro_desk/internal/domain"
	"agro_desk/internal/domain/entity"
	"agro_desk/pkg/errcodes"
	"agro_desk/pkg/lox"
)

// Раскладка листа заявок (колонки 1-индексные). Менеджер заполняет
// только ColManagerPrice, остальное пишет бот.
const (
	ColSeq          = 1
	ColDate         = 2
	ColName         = 3
	ColGroup        = 4
	ColCulture      = 5
	ColQuantity     = 6
	ColRegion       = 7
	ColDistrict     = 8
	ColCity         = 9
	ColExtra        = 10
	ColPaymentForm  = 11
	ColCurrency     = 12
	ColPrice        = 13 // желаемая цена заявителя, сюда же пишется авторасчёт
	ColManagerPrice = 14
	ColBotPrice     = 15 // дублирующая ячейка авторасчёта
	ColApplicantID  = 52
)

// Client обёртка над Google Sheets API для листа заявок и прайс-листа.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
	ledgerSheet   string
	priceSheet    string
	ledgerSheetID int64
}

func NewClient(ctx context.Context, cfg config.Sheets) (*Client, error) {
	svc, err := gsheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets.NewService: %w", err)
	}

	c := &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		ledgerSheet:   cfg.LedgerSheet,
		priceSheet:    cfg.PriceSheet,
	}

	if err := c.resolveLedgerSheetID(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// resolveLedgerSheetID batchUpdate-запросы (удаление строк, заливка)
// адресуются числовым sheetId, а не именем листа.
func (c *Client) resolveLedgerSheetID(ctx context.Context) error {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "get spreadsheet metadata")
	}

	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.ledgerSheet {
			c.ledgerSheetID = sheet.Properties.SheetId
			return nil
		}
	}

	return domain.NewError(
		errcodes.LedgerUnavailable,
		fmt.Sprintf("ledger sheet %q not found", c.ledgerSheet),
	)
}

// Rows все строки листа заявок, включая заголовок.
func (c *Client) Rows(ctx context.Context) ([][]string, error) {
	return c.sheetRows(ctx, c.ledgerSheet)
}

// PriceRows все строки прайс-листа.
func (c *Client) PriceRows(ctx context.Context) ([][]string, error) {
	return c.sheetRows(ctx, c.priceSheet)
}

func (c *Client) sheetRows(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet).Context(ctx).Do()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.LedgerUnavailable, "read sheet values")
	}

	return lox.Map(resp.Values, func(row []any) []string {
		return lox.Map(row, func(cell any) string {
			return fmt.Sprint(cell)
		})
	}), nil
}

// UpdateCell записывает значение в одну ячейку (1-индексные координаты).
func (c *Client) UpdateCell(ctx context.Context, row, col int, value string) error {
	return c.updateRange(ctx, rangeA1(c.ledgerSheet, row, col, col), [][]any{{value}})
}

func (c *Client) updateRange(ctx context.Context, a1 string, values [][]any) error {
	_, err := c.svc.Spreadsheets.Values.Update(
		c.spreadsheetID,
		a1,
		&gsheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "update sheet values")
	}

	return nil
}

// SetBotPrice записывает цену авторасчёта в обе ценовые ячейки строки.
func (c *Client) SetBotPrice(ctx context.Context, row int, price string) error {
	if err := c.UpdateCell(ctx, row, ColPrice, price); err != nil {
		return err
	}

	return c.UpdateCell(ctx, row, ColBotPrice, price)
}

// ClearBotPrice снимает авторасчёт: чистит значение и заливку ячейки.
func (c *Client) ClearBotPrice(ctx context.Context, row int) error {
	if err := c.ColorCell(ctx, row, ColPrice, ColorWhite); err != nil {
		return err
	}

	return c.UpdateCell(ctx, row, ColPrice, "")
}

// DeleteRow удаляет строку листа заявок; всё, что ниже, сдвигается на
// одну строку вверх.
func (c *Client) DeleteRow(ctx context.Context, row int) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    c.ledgerSheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}

	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "delete sheet row")
	}

	return nil
}

// AppendApplication добавляет строку заявки в конец листа и возвращает
// её номер. Порядковый номер берётся как максимальный числовой из
// колонки A плюс один.
func (c *Client) AppendApplication(ctx context.Context, app *entity.Application) (int, error) {
	rows, err := c.Rows(ctx)
	if err != nil {
		return 0, err
	}

	lastSeq := 0
	for _, row := range rows[min(1, len(rows)):] {
		if len(row) == 0 {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(row[0])); err == nil {
			lastSeq = n
		}
	}

	newRow := len(rows) + 1

	currency := app.Currency
	if canonical, ok := entity.CanonicalCurrency(app.Currency); ok {
		currency = canonical.Display()
	}

	quantity := app.Quantity
	if quantity != "" {
		quantity += " Т"
	}

	cells := make([]any, ColApplicantID)
	for i := range cells {
		cells[i] = ""
	}
	cells[ColSeq-1] = lastSeq + 1
	cells[ColDate-1] = time.Now().Format("02.01")
	cells[ColName-1] = app.Name
	cells[ColGroup-1] = app.Group
	cells[ColCulture-1] = app.Culture
	cells[ColQuantity-1] = quantity
	cells[ColRegion-1] = app.Region
	cells[ColDistrict-1] = app.District
	cells[ColCity-1] = app.City
	cells[ColPaymentForm-1] = app.PaymentForm
	cells[ColCurrency-1] = currency
	cells[ColPrice-1] = app.Price
	cells[ColApplicantID-1] = strconv.FormatInt(app.ApplicantID, 10)

	a1 := rangeA1(c.ledgerSheet, newRow, 1, ColApplicantID)
	if err := c.updateRange(ctx, a1, [][]any{cells}); err != nil {
		return 0, err
	}

	return newRow, nil
}
