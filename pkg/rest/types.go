// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

// WebAppData полезная нагрузка формы подачи заявки.
type WebAppData struct {
	UserID int64  `json:"user_id" validate:"required"`
	ChatID int64  `json:"chat_id"`
	Name   string `json:"name"`

	Group       string `json:"group"`
	Culture     string `json:"culture"`
	Quantity    string `json:"quantity"`
	PaymentForm string `json:"payment_form"`
	Currency    string `json:"currency"`
	Price       string `json:"price"`

	Region   string `json:"region"`
	District string `json:"district"`
	City     string `json:"city"`

	// Submit false — только предпросмотр, заявка не сохраняется.
	Submit bool `json:"submit"`
}

// Application представление заявки в API.
type Application struct {
	ID          string `json:"id,omitempty"`
	ApplicantID int64  `json:"applicant_id"`
	Index       int    `json:"index"`
	Name        string `json:"name,omitempty"`

	Group       string `json:"group"`
	Culture     string `json:"culture"`
	Quantity    string `json:"quantity"`
	PaymentForm string `json:"payment_form"`
	Currency    string `json:"currency"`
	Price       string `json:"price"`

	Region   string `json:"region"`
	District string `json:"district"`
	City     string `json:"city"`

	Proposal       string `json:"proposal,omitempty"`
	ProposalStatus string `json:"proposal_status,omitempty"`
	SheetRow       int    `json:"sheet_row,omitempty"`
}

// WebAppResult ответ на подачу формы.
type WebAppResult struct {
	Status      string      `json:"status"`
	Application Application `json:"application"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
