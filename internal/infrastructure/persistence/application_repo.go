package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"agro_desk/internal/domain"
	"agro_desk/internal/domain/entity"
	"agro_desk/pkg/errcodes"
)

const applicationColumns = `
	id, applicant_id, idx, chat_id, applicant_name,
	grp, culture, quantity, payment_form, currency, price,
	region, district, city,
	manager_price, bot_price, proposal, proposal_status,
	sheet_row, created_at,
	topicality_notification_sent, topicality_in_progress, pricing_attempts`

type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository создаёт новый экземпляр репозитория.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// withTx выполняет функцию в транзакции.
func (r *ApplicationRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// LoadAll возвращает все заявки, сгруппированные по заявителю.
// Внутри группы заявки идут в порядке idx.
func (r *ApplicationRepository) LoadAll(ctx context.Context) (map[int64][]entity.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		ORDER BY applicant_id, idx`

	var schemas []applicationSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to load applications")
	}

	result := make(map[int64][]entity.Application)
	for i := range schemas {
		app := schemas[i].toDomain()
		result[app.ApplicantID] = append(result[app.ApplicantID], *app)
	}

	return result, nil
}

// ReplaceAll атомарно заменяет всё хранилище новым срезом заявок.
func (r *ApplicationRepository) ReplaceAll(ctx context.Context, apps map[int64][]entity.Application) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM applications`); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to clear applications")
		}

		for applicantID, list := range apps {
			for i := range list {
				if err := r.insertTx(ctx, tx, &list[i]); err != nil {
					return domain.WrapError(err, errcodes.InternalServerError,
						fmt.Sprintf("failed at applicant %d index %d", applicantID, i))
				}
			}
		}

		return nil
	})
}

// Save создаёт заявку или обновляет существующую по ключу (заявитель, idx).
func (r *ApplicationRepository) Save(ctx context.Context, app *entity.Application) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		return r.insertTx(ctx, tx, app)
	})
}

// Get возвращает заявку заявителя по её порядковому номеру.
func (r *ApplicationRepository) Get(ctx context.Context, applicantID int64, index int) (*entity.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE applicant_id = $1 AND idx = $2`

	var schema applicationSchema
	if err := r.db.GetContext(ctx, &schema, query, applicantID, index); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.ApplicationNotFound, "application not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get application")
	}

	return schema.toDomain(), nil
}

// Delete удаляет заявку и перенумеровывает оставшиеся заявки заявителя.
// Возвращает удалённую заявку.
func (r *ApplicationRepository) Delete(ctx context.Context, applicantID int64, index int) (*entity.Application, error) {
	var removed *entity.Application

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			DELETE FROM applications
			WHERE applicant_id = $1 AND idx = $2
			RETURNING ` + applicationColumns

		var schema applicationSchema
		if err := tx.GetContext(ctx, &schema, query, applicantID, index); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NewError(errcodes.ApplicationNotFound, "application not found")
			}
			return domain.WrapError(err, errcodes.InternalServerError, "failed to delete application")
		}
		removed = schema.toDomain()

		renumber := `
			UPDATE applications
			SET idx = idx - 1
			WHERE applicant_id = $1 AND idx > $2`

		if _, err := tx.ExecContext(ctx, renumber, applicantID, index); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to renumber applications")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

// ShiftRowsAbove уменьшает на единицу номер строки-зеркала у всех заявок
// ниже удалённой строки таблицы.
func (r *ApplicationRepository) ShiftRowsAbove(ctx context.Context, row int) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE applications
			SET sheet_row = sheet_row - 1
			WHERE sheet_row > $1`

		if _, err := tx.ExecContext(ctx, query, row); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to shift sheet rows")
		}

		return nil
	})
}

// insertTx — внутренний метод upsert в рамках транзакции.
func (r *ApplicationRepository) insertTx(ctx context.Context, tx *sqlx.Tx, app *entity.Application) error {
	query := `
		INSERT INTO applications (
			id, applicant_id, idx, chat_id, applicant_name,
			grp, culture, quantity, payment_form, currency, price,
			region, district, city,
			manager_price, bot_price, proposal, proposal_status,
			sheet_row, created_at,
			topicality_notification_sent, topicality_in_progress, pricing_attempts
		) VALUES (
			:id, :applicant_id, :idx, :chat_id, :applicant_name,
			:grp, :culture, :quantity, :payment_form, :currency, :price,
			:region, :district, :city,
			:manager_price, :bot_price, :proposal, :proposal_status,
			:sheet_row, :created_at,
			:topicality_notification_sent, :topicality_in_progress, :pricing_attempts
		)
		ON CONFLICT (applicant_id, idx) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			applicant_name = EXCLUDED.applicant_name,
			grp = EXCLUDED.grp,
			culture = EXCLUDED.culture,
			quantity = EXCLUDED.quantity,
			payment_form = EXCLUDED.payment_form,
			currency = EXCLUDED.currency,
			price = EXCLUDED.price,
			region = EXCLUDED.region,
			district = EXCLUDED.district,
			city = EXCLUDED.city,
			manager_price = EXCLUDED.manager_price,
			bot_price = EXCLUDED.bot_price,
			proposal = EXCLUDED.proposal,
			proposal_status = EXCLUDED.proposal_status,
			sheet_row = EXCLUDED.sheet_row,
			created_at = EXCLUDED.created_at,
			topicality_notification_sent = EXCLUDED.topicality_notification_sent,
			topicality_in_progress = EXCLUDED.topicality_in_progress,
			pricing_attempts = EXCLUDED.pricing_attempts`

	if _, err := tx.NamedExecContext(ctx, query, fromApplication(app)); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert application")
	}

	return nil
}
