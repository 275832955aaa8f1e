package persistence

import (
	"database/sql"
	"time"

	"agro_desk/internal/domain/entity"
)

// applicationSchema — внутренняя структура для маппинга строки БД.
type applicationSchema struct {
	ID          string `db:"id"`
	ApplicantID int64  `db:"applicant_id"`
	Idx         int    `db:"idx"`
	ChatID      int64  `db:"chat_id"`
	Name        string `db:"applicant_name"`

	Grp         string `db:"grp"`
	Culture     string `db:"culture"`
	Quantity    string `db:"quantity"`
	PaymentForm string `db:"payment_form"`
	Currency    string `db:"currency"`
	Price       string `db:"price"`

	Region   string `db:"region"`
	District string `db:"district"`
	City     string `db:"city"`

	ManagerPrice   string          `db:"manager_price"`
	BotPrice       sql.NullFloat64 `db:"bot_price"`
	Proposal       string          `db:"proposal"`
	ProposalStatus string          `db:"proposal_status"`

	SheetRow  int       `db:"sheet_row"`
	CreatedAt time.Time `db:"created_at"`

	TopicalityNotificationSent bool `db:"topicality_notification_sent"`
	TopicalityInProgress       bool `db:"topicality_in_progress"`

	PricingAttempts int `db:"pricing_attempts"`
}

func fromApplication(a *entity.Application) *applicationSchema {
	s := &applicationSchema{
		ID:          a.ID,
		ApplicantID: a.ApplicantID,
		Idx:         a.Index,
		ChatID:      a.ChatID,
		Name:        a.Name,

		Grp:         a.Group,
		Culture:     a.Culture,
		Quantity:    a.Quantity,
		PaymentForm: a.PaymentForm,
		Currency:    a.Currency,
		Price:       a.Price,

		Region:   a.Region,
		District: a.District,
		City:     a.City,

		ManagerPrice:   a.ManagerPrice,
		Proposal:       a.Proposal,
		ProposalStatus: string(a.ProposalStatus),

		SheetRow:  a.SheetRow,
		CreatedAt: a.Timestamp,

		TopicalityNotificationSent: a.TopicalityNotificationSent,
		TopicalityInProgress:       a.TopicalityInProgress,

		PricingAttempts: a.PricingAttempts,
	}

	if a.BotPrice != nil {
		s.BotPrice = sql.NullFloat64{Float64: *a.BotPrice, Valid: true}
	}

	return s
}

func (s *applicationSchema) toDomain() *entity.Application {
	app := &entity.Application{
		ID:          s.ID,
		ApplicantID: s.ApplicantID,
		Index:       s.Idx,
		ChatID:      s.ChatID,
		Name:        s.Name,

		Group:       s.Grp,
		Culture:     s.Culture,
		Quantity:    s.Quantity,
		PaymentForm: s.PaymentForm,
		Currency:    s.Currency,
		Price:       s.Price,

		Region:   s.Region,
		District: s.District,
		City:     s.City,

		ManagerPrice:   s.ManagerPrice,
		Proposal:       s.Proposal,
		ProposalStatus: entity.Status(s.ProposalStatus),

		SheetRow:  s.SheetRow,
		Timestamp: s.CreatedAt,

		TopicalityNotificationSent: s.TopicalityNotificationSent,
		TopicalityInProgress:       s.TopicalityInProgress,

		PricingAttempts: s.PricingAttempts,
	}

	if s.BotPrice.Valid {
		v := s.BotPrice.Float64
		app.BotPrice = &v
	}

	return app
}
