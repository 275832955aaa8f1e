package config

type Sheets struct {
	CredentialsFile string `env:"SHEETS_CREDENTIALS_FILE,required"`
	SpreadsheetID   string `env:"SHEETS_SPREADSHEET_ID,required"`
	LedgerSheet     string `env:"SHEETS_LEDGER_SHEET" envDefault:"Заявки"`
	PriceSheet      string `env:"SHEETS_PRICE_SHEET" envDefault:"Ціни"`
}
