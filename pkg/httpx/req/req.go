package req

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"agro_desk/internal/domain"
	"agro_desk/pkg/errcodes"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

func Read(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return domain.WrapError(
			fmt.Errorf("json.Decode: %w", err),
			errcodes.ValidationError,
			"invalid JSON",
		)
	}

	if err := validate.StructCtx(r.Context(), dest); err != nil {
		return domain.WrapError(err, errcodes.ValidationError, "validation error")
	}

	return nil
}
