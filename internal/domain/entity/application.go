package entity

import (
	"strings"
	"time"
)

// Application заявка на продажу: товарные атрибуты, адрес доставки
// и текущее состояние ценового предложения.
type Application struct {
	ID          string `json:"id" db:"id"`
	ApplicantID int64  `json:"applicant_id" db:"applicant_id"`
	Index       int    `json:"index" db:"idx"`
	ChatID      int64  `json:"chat_id" db:"chat_id"`
	Name        string `json:"name" db:"applicant_name"`

	Group       string `json:"group" db:"grp"`
	Culture     string `json:"culture" db:"culture"`
	Quantity    string `json:"quantity" db:"quantity"`
	PaymentForm string `json:"payment_form" db:"payment_form"`
	Currency    string `json:"currency" db:"currency"`
	Price       string `json:"price" db:"price"`

	Region   string `json:"region" db:"region"`
	District string `json:"district" db:"district"`
	City     string `json:"city" db:"city"`

	// ManagerPrice цена менеджера из таблицы; непустая навсегда
	// вытесняет авторасчёт.
	ManagerPrice   string   `json:"manager_price" db:"manager_price"`
	BotPrice       *float64 `json:"bot_price,omitempty" db:"bot_price"`
	Proposal       string   `json:"proposal" db:"proposal"`
	ProposalStatus Status   `json:"proposal_status" db:"proposal_status"`

	// SheetRow номер строки в таблице-зеркале; 0 — строка ещё не назначена.
	// Сдвигается при удалении строк выше.
	SheetRow  int       `json:"sheet_row" db:"sheet_row"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`

	TopicalityNotificationSent bool `json:"topicality_notification_sent" db:"topicality_notification_sent"`
	TopicalityInProgress       bool `json:"topicality_in_progress" db:"topicality_in_progress"`

	// PricingAttempts счётчик попыток авторасчёта, только для наблюдаемости.
	PricingAttempts int `json:"pricing_attempts" db:"pricing_attempts"`
}

func (a *Application) HasManagerPrice() bool {
	return strings.TrimSpace(a.ManagerPrice) != ""
}

func (a *Application) IsTerminal() bool {
	return a.ProposalStatus.IsTerminal()
}

func (a *Application) Age(now time.Time) time.Duration {
	return now.Sub(a.Timestamp)
}
