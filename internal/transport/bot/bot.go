package bot

import (
	"context"
	"fmt"
	"log"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"agro_desk/internal/config"
	"agro_desk/internal/domain/service/proposal"
	"agro_desk/internal/transport/bot/handler"
)

// Bot представляет собой Telegram-бота
type Bot struct {
	bot        *telego.Bot
	botHandler *th.BotHandler

	handler *handler.Handler
}

// New создает новый экземпляр бота поверх готового клиента telego.
// Клиент общий с рассыльщиком уведомлений.
func New(cfg config.Config,
	tg *telego.Bot,
	svc *proposal.Service,
	loop handler.Loop,
	gate handler.Gate,
) (*Bot, error) {
	// Получаем обновления через long polling
	updates, err := tg.UpdatesViaLongPolling(context.Background(), &telego.GetUpdatesParams{
		Timeout: 60,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get updates: %w", err)
	}

	// Создаем BotHandler
	botHandler, err := th.NewBotHandler(tg, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot handler: %w", err)
	}

	// Создаем обработчик команд
	commandHandler := handler.New(svc, loop, gate)

	commandHandler.RegisterRoutes(botHandler, cfg.Bot.AdminID)

	return &Bot{
		bot:        tg,
		botHandler: botHandler,
		handler:    commandHandler,
	}, nil
}

// Run запускает бота
func (b *Bot) Run(ctx context.Context) error {
	// Запускаем обработку обновлений
	go func() {
		if err := b.botHandler.Start(); err != nil {
			log.Printf("Failed to start bot handler: %v", err)
		}
	}()

	// Ждем завершения
	<-ctx.Done()

	// Останавливаем обработчик
	if err := b.botHandler.Stop(); err != nil {
		log.Printf("Failed to stop bot handler: %v", err)
	}

	return ctx.Err()
}
