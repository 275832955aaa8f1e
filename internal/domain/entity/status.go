package entity

// Status статус предложения по заявке. Значения совместимы с таблицей
// и историческими записями, поэтому Agreed с большой буквы.
type Status string

const (
	StatusActive    Status = "active"
	StatusWaiting   Status = "waiting"
	StatusRejected  Status = "rejected"
	StatusAgreed    Status = "Agreed"
	StatusConfirmed Status = "confirmed"
	StatusDeleted   Status = "deleted"
)

// IsTerminal подтверждённые и удалённые заявки не меняются никогда.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusDeleted
}

func (s Status) String() string {
	return string(s)
}
