package reply

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"agro_desk/internal/domain"
	"agro_desk/pkg/contextx"
	"agro_desk/pkg/errcodes"
	"agro_desk/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SupportID string `json:"supportId"`
}

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func OK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func Created(w http.ResponseWriter) {
	w.WriteHeader(http.StatusCreated)
}

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

func Error(ctx context.Context, w http.ResponseWriter, err error) {
	logger(ctx).Error("error", logx.Error(err))

	code, ok := domain.GetCode(err)
	if !ok {
		code = errcodes.InternalServerError
	}

	response := errorResponse{
		Code:      code.String(),
		Message:   err.Error(),
		SupportID: supportID(ctx),
	}

	JSON(ctx, w, statusCodeFor(code), response)
}

func statusCodeFor(code errcodes.ErrorCode) int {
	switch code {
	case errcodes.ValidationError, errcodes.MalformedLedgerCell, errcodes.InvalidApplicantID:
		return http.StatusBadRequest
	case errcodes.NotFound, errcodes.ApplicationNotFound:
		return http.StatusNotFound
	case errcodes.Forbidden:
		return http.StatusForbidden
	case errcodes.InvalidStatus:
		return http.StatusConflict
	case errcodes.TimeoutExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func supportID(ctx context.Context) string {
	traceID, err := contextx.TraceIDFromContext(ctx)
	if err != nil {
		return "unsupported"
	}

	return traceID.String()
}
