package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"agro_desk/internal/domain"
	"agro_desk/pkg/errcodes"
)

const autoCalcKey = "auto_calc_enabled"

type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository создаёт новый экземпляр репозитория.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// AutoCalcEnabled возвращает флаг авторасчёта. По умолчанию включён.
func (r *SettingsRepository) AutoCalcEnabled(ctx context.Context) (bool, error) {
	query := `SELECT value FROM settings WHERE key = $1`

	var value string
	if err := r.db.GetContext(ctx, &value, query, autoCalcKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return true, nil
		}
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to get setting")
	}

	return value == "true", nil
}

// SetAutoCalcEnabled включает или выключает авторасчёт.
func (r *SettingsRepository) SetAutoCalcEnabled(ctx context.Context, enabled bool) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	value := "false"
	if enabled {
		value = "true"
	}

	if _, err := r.db.ExecContext(ctx, query, autoCalcKey, value); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to set setting")
	}

	return nil
}
