package handler

import (
	"fmt"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

// OnTopicalityCallback ответ заявителя на вопрос об актуальности.
// Формат данных: "topicality:<applicantID>:<idx>:<yes|no>"
func (h *Handler) OnTopicalityCallback(ctx *th.Context, query telego.CallbackQuery) error {
	var (
		applicantID int64
		index       int
		answer      string
	)

	_, err := fmt.Sscanf(query.Data, "topicality:%d:%d:%s", &applicantID, &index, &answer)
	if err != nil {
		_ = ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID).
			WithText("❌ Невірний запит").WithShowAlert())
		return nil
	}

	// Отвечать может только сам заявитель.
	if query.From.ID != applicantID {
		_ = ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
		return nil
	}

	stillRelevant := answer == "yes"

	if err := h.svc.ResolveTopicality(ctx, applicantID, index, stillRelevant); err != nil {
		_ = ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID).
			WithText("❌ Помилка обробки відповіді").WithShowAlert())
		return err
	}

	text := "✅ Дякуємо, заявку підтверджено"
	if !stillRelevant {
		text = "🗑 Заявку видалено"
	}

	return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID).WithText(text))
}
