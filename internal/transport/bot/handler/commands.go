package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"agro_desk/internal/domain"
	"agro_desk/pkg/errcodes"
)

const startMessage = `📋 <b>Панель адміністратора</b>

/status — стан системи
/autocalc — увімкнути/вимкнути авторозрахунок
/delete <code>ID</code> <code>номер</code> — видалити заявку назавжди
/pause — призупинити цикли звірки
/resume — відновити цикли звірки`

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, startMessage)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	loopStatus := "🔴 зупинено"
	if h.loop.IsRunning() {
		loopStatus = "🟢 працює"
	}
	if h.gate.IsSuspended() {
		loopStatus += " (призупинено)"
	}

	autoCalc, err := h.svc.AutoCalcEnabled(ctx)
	if err != nil {
		return h.send(ctx, msg.Chat.ID, fmt.Sprintf("Помилка читання налаштувань: %v", err))
	}

	count, err := h.svc.Count(ctx)
	if err != nil {
		return h.send(ctx, msg.Chat.ID, fmt.Sprintf("Помилка читання заявок: %v", err))
	}

	text := fmt.Sprintf(`📊 <b>Стан системи</b>

🔄 <b>Звірка:</b> %s
🤖 <b>Авторозрахунок:</b> %s
📋 <b>Заявок:</b> %d`,
		loopStatus,
		boolToStatus(autoCalc),
		count,
	)

	return h.sendHTML(ctx, msg.Chat.ID, text)
}

func boolToStatus(b bool) string {
	if b {
		return "✅ увімкнено"
	}
	return "❌ вимкнено"
}

func (h *Handler) OnAutoCalc(ctx *th.Context, msg telego.Message) error {
	enabled, err := h.svc.AutoCalcEnabled(ctx)
	if err != nil {
		return h.send(ctx, msg.Chat.ID, fmt.Sprintf("Помилка читання налаштувань: %v", err))
	}

	if err := h.svc.SetAutoCalc(ctx, !enabled); err != nil {
		return h.send(ctx, msg.Chat.ID, fmt.Sprintf("Помилка збереження налаштувань: %v", err))
	}

	return h.send(ctx, msg.Chat.ID, "Авторозрахунок: "+boolToStatus(!enabled))
}

// OnDelete удаляет заявку навсегда.
// Использование: /delete <applicantID> <номер заявки с 1>
func (h *Handler) OnDelete(ctx *th.Context, msg telego.Message) error {
	args := strings.Fields(msg.Text)
	if len(args) < 3 {
		return h.sendHTML(ctx, msg.Chat.ID,
			"❌ Використання: /delete <code>ID заявника</code> <code>номер заявки</code>")
	}

	applicantID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, "❌ Невірний формат ID заявника")
	}

	number, err := strconv.Atoi(args[2])
	if err != nil || number < 1 {
		return h.sendHTML(ctx, msg.Chat.ID, "❌ Невірний номер заявки")
	}

	if err := h.svc.DeletePermanently(ctx, applicantID, number-1); err != nil {
		if code, ok := domain.GetCode(err); ok && code == errcodes.ApplicationNotFound {
			return h.send(ctx, msg.Chat.ID,
				fmt.Sprintf("Заявку %d у заявника %d не знайдено", number, applicantID))
		}
		return h.send(ctx, msg.Chat.ID, fmt.Sprintf("Помилка видалення: %v", err))
	}

	return h.send(ctx, msg.Chat.ID,
		fmt.Sprintf("✅ Заявку %d заявника %d видалено", number, applicantID))
}

func (h *Handler) OnPause(ctx *th.Context, msg telego.Message) error {
	if h.gate.IsSuspended() {
		return h.send(ctx, msg.Chat.ID, "Цикли звірки вже призупинені")
	}

	h.gate.Suspend()

	return h.send(ctx, msg.Chat.ID, "⏸ Цикли звірки призупинено")
}

func (h *Handler) OnResume(ctx *th.Context, msg telego.Message) error {
	if !h.gate.IsSuspended() {
		return h.send(ctx, msg.Chat.ID, "Цикли звірки вже працюють")
	}

	h.gate.Resume()

	return h.send(ctx, msg.Chat.ID, "▶️ Цикли звірки відновлено")
}

// Вспомогательные методы

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: "HTML",
	})
	return err
}

func (h *Handler) send(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	return err
}
