package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"agro_desk/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	// Команды администратора защищены миддлварью
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnStatus, th.CommandEqual("status"))
	adminGroup.HandleMessage(h.OnAutoCalc, th.CommandEqual("autocalc"))
	adminGroup.HandleMessage(h.OnDelete, th.CommandEqual("delete"))
	adminGroup.HandleMessage(h.OnPause, th.CommandEqual("pause"))
	adminGroup.HandleMessage(h.OnResume, th.CommandEqual("resume"))

	// Ответы на вопрос об актуальности приходят от самих заявителей
	bh.HandleCallbackQuery(h.OnTopicalityCallback, th.CallbackDataPrefix("topicality:"))
}
