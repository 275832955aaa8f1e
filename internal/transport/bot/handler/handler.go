package handler

import (
	"agro_desk/internal/domain/service/proposal"
)

// Loop статус цикла сверки для команд администратора.
type Loop interface {
	IsRunning() bool
}

type Gate interface {
	Suspend()
	Resume()
	IsSuspended() bool
}

type Handler struct {
	svc  *proposal.Service
	loop Loop
	gate Gate
}

func New(svc *proposal.Service, loop Loop, gate Gate) *Handler {
	return &Handler{
		svc:  svc,
		loop: loop,
		gate: gate,
	}
}
