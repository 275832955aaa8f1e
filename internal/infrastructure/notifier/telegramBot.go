package notifier

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"agro_desk/internal/domain/entity"
)

type TelegramBot struct {
	bot *telego.Bot
}

func NewTelegramBot(token string) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{bot: bot}, nil
}

// NewTelegramBotFrom переиспользует уже созданный экземпляр бота.
func NewTelegramBotFrom(bot *telego.Bot) *TelegramBot {
	return &TelegramBot{bot: bot}
}

// Run запускает доставку уведомлений из канала. Ошибка доставки одного
// сообщения не останавливает остальные.
func (b *TelegramBot) Run(ctx context.Context, notifications <-chan entity.Notification) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			if err := b.send(ctx, n); err != nil {
				logger(ctx).Error("failed to send notification",
					"chat_id", n.ChatID, "error", err)
			}
		}
	}
}

func (b *TelegramBot) send(ctx context.Context, n entity.Notification) error {
	if n.Topicality != nil {
		return b.sendTopicalityPrompt(ctx, n)
	}

	return b.SendText(ctx, n.ChatID, n.Text)
}

// sendTopicalityPrompt вопрос с кнопками ответа. Ответ приходит
// callback-запросом в транспорт бота.
func (b *TelegramBot) sendTopicalityPrompt(ctx context.Context, n entity.Notification) error {
	prompt := n.Topicality

	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("✅ Так, актуальна").
				WithCallbackData(fmt.Sprintf("topicality:%d:%d:yes", prompt.ApplicantID, prompt.Index)),
			tu.InlineKeyboardButton("❌ Ні, видалити").
				WithCallbackData(fmt.Sprintf("topicality:%d:%d:no", prompt.ApplicantID, prompt.Index)),
		),
	)

	msg := tu.Message(tu.ID(n.ChatID), n.Text).WithReplyMarkup(keyboard)

	_, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("send prompt: %w", err)
	}

	return nil
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tu.Message(tu.ID(chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}
