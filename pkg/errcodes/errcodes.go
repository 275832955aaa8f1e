package errcodes

// ErrorCode машинно-читаемый код ошибки, уходит наружу в HTTP-ответах
// и используется для маппинга доменных ошибок на статусы.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

const (
	InternalServerError ErrorCode = "InternalServerError"
	TimeoutExceeded     ErrorCode = "TimeoutExceeded"
	Forbidden           ErrorCode = "Forbidden"
	ValidationError     ErrorCode = "ValidationError"
	NotFound            ErrorCode = "NotFound"

	// Коды модуля заявок
	ApplicationNotFound ErrorCode = "ApplicationNotFound" // заявка по (applicant, index) не найдена
	InvalidStatus       ErrorCode = "InvalidStatus"       // операция недопустима для текущего статуса
	PriceNotComputable  ErrorCode = "PriceNotComputable"  // нет тарифа/цены/дистанции для авторасчёта
	DistanceUnavailable ErrorCode = "DistanceUnavailable" // геокодер или Routes API не ответили
	LedgerUnavailable   ErrorCode = "LedgerUnavailable"   // таблица недоступна или ответила ошибкой
	MalformedLedgerCell ErrorCode = "MalformedLedgerCell" // в ячейке мусор вместо числа
	InvalidApplicantID  ErrorCode = "InvalidApplicantID"  // пришёл мусор вместо ID
)
