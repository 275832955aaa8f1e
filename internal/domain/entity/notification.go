package entity

// Notification сообщение заявителю. Доставка best-effort: ошибка
// отправки только логируется.
type Notification struct {
	ChatID int64
	Text   string

	// Topicality непустой для вопроса об актуальности: к сообщению
	// прикрепляются кнопки ответа.
	Topicality *TopicalityPrompt
}

// TopicalityPrompt адресат вопроса об актуальности заявки.
type TopicalityPrompt struct {
	ApplicantID int64
	Index       int
}
