package server

// Данный сервер просто объединяет специфичные HTTP сервера, отвечающие за обработку конкретных сущностей
// Сейчас у нас есть только IntakeServer, но их может быть несколько
type Server struct {
	IntakeServer
}

func NewServer(
	intakeServer IntakeServer,
) Server {
	return Server{
		IntakeServer: intakeServer,
	}
}
