package proposal

import (
	"context"
	"time"

	"github.com/rs/xid"

	"agro_desk/internal/domain"
	"agro_desk/internal/domain/entity"
	"agro_desk/pkg/contextx"
	"agro_desk/pkg/errcodes"
	"agro_desk/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const defaultDeleteCooldown = 20 * time.Second

type ApplicationRepository interface {
	LoadAll(ctx context.Context) (map[int64][]entity.Application, error)
	Save(ctx context.Context, app *entity.Application) error
	Get(ctx context.Context, applicantID int64, index int) (*entity.Application, error)
	Delete(ctx context.Context, applicantID int64, index int) (*entity.Application, error)
	ShiftRowsAbove(ctx context.Context, row int) error
}

type SettingsRepository interface {
	AutoCalcEnabled(ctx context.Context) (bool, error)
	SetAutoCalcEnabled(ctx context.Context, enabled bool) error
}

type Ledger interface {
	DeleteRow(ctx context.Context, row int) error
	ClearBotPrice(ctx context.Context, row int) error
	AppendApplication(ctx context.Context, app *entity.Application) (int, error)
	MarkRowConfirmed(ctx context.Context, row int) error
	MarkRowDeleted(ctx context.Context, row int) error
	MarkPriceRejected(ctx context.Context, row int) error
	MarkPricePending(ctx context.Context, row int) error
}

type Gate interface {
	Suspend()
	Resume()
	ResumeAfter(d time.Duration)
	IsSuspended() bool
}

type RescanDelayer interface {
	MarkResolved(applicantID int64)
}

// Service операции над заявками, которые трогают сразу несколько
// хранилищ: БД, таблицу-зеркало и шлюз циклов сверки.
type Service struct {
	apps     ApplicationRepository
	settings SettingsRepository
	ledger   Ledger
	gate     Gate
	delayer  RescanDelayer

	deleteCooldown time.Duration
}

func NewService(
	apps ApplicationRepository,
	settings SettingsRepository,
	ledger Ledger,
	gate Gate,
	delayer RescanDelayer,
) *Service {
	return &Service{
		apps:           apps,
		settings:       settings,
		ledger:         ledger,
		gate:           gate,
		delayer:        delayer,
		deleteCooldown: defaultDeleteCooldown,
	}
}

func (s *Service) WithDeleteCooldown(d time.Duration) *Service {
	if d > 0 {
		s.deleteCooldown = d
	}
	return s
}

// DeletePermanently удаляет заявку из хранилища и строку из таблицы.
// Циклы сверки приостанавливаются на время удаления и выдержку после,
// чтобы не прочитать сдвинутые строки по старым номерам.
func (s *Service) DeletePermanently(ctx context.Context, applicantID int64, index int) error {
	s.gate.Suspend()

	removed, err := s.apps.Delete(ctx, applicantID, index)
	if err != nil {
		s.gate.Resume()
		return err
	}

	if removed.SheetRow > 0 {
		if err := s.ledger.DeleteRow(ctx, removed.SheetRow); err != nil {
			// Строка осталась, заявки в БД уже нет. Красим её, чтобы
			// менеджер убрал вручную.
			logger(ctx).Warn("failed to delete ledger row",
				"row", removed.SheetRow, logx.Error(err))

			if markErr := s.ledger.MarkRowDeleted(ctx, removed.SheetRow); markErr != nil {
				logger(ctx).Warn("failed to mark ledger row deleted",
					"row", removed.SheetRow, logx.Error(markErr))
			}
		} else if err := s.apps.ShiftRowsAbove(ctx, removed.SheetRow); err != nil {
			logger(ctx).Error("failed to shift sheet rows",
				"row", removed.SheetRow, logx.Error(err))
		}
	}

	s.gate.ResumeAfter(s.deleteCooldown)

	return nil
}

// Confirm заявитель принял предложение. Статус финальный.
func (s *Service) Confirm(ctx context.Context, applicantID int64, index int) error {
	return s.transition(ctx, applicantID, index, entity.StatusConfirmed, func(ctx context.Context, row int) error {
		return s.ledger.MarkRowConfirmed(ctx, row)
	})
}

// Reject заявитель отклонил предложение.
func (s *Service) Reject(ctx context.Context, applicantID int64, index int) error {
	return s.transition(ctx, applicantID, index, entity.StatusRejected, func(ctx context.Context, row int) error {
		return s.ledger.MarkPriceRejected(ctx, row)
	})
}

// Wait заявитель думает над предложением. Ячейка цены помечается
// жёлтым как ожидающая пересмотра.
func (s *Service) Wait(ctx context.Context, applicantID int64, index int) error {
	return s.transition(ctx, applicantID, index, entity.StatusWaiting, func(ctx context.Context, row int) error {
		return s.ledger.MarkPricePending(ctx, row)
	})
}

func (s *Service) transition(
	ctx context.Context,
	applicantID int64,
	index int,
	status entity.Status,
	markLedger func(ctx context.Context, row int) error,
) error {
	app, err := s.apps.Get(ctx, applicantID, index)
	if err != nil {
		return err
	}

	if app.IsTerminal() {
		return domain.NewError(errcodes.InvalidStatus, "application is in a terminal status")
	}

	app.ProposalStatus = status
	if err := s.apps.Save(ctx, app); err != nil {
		return err
	}

	if markLedger != nil && app.SheetRow > 0 {
		if err := markLedger(ctx, app.SheetRow); err != nil {
			logger(ctx).Warn("failed to mark ledger row",
				"row", app.SheetRow, "status", status, logx.Error(err))
		}
	}

	return nil
}

// ResolveTopicality заявитель ответил на вопрос об актуальности.
// Снимает флаг ожидания и откладывает следующий опрос этого заявителя.
func (s *Service) ResolveTopicality(ctx context.Context, applicantID int64, index int, stillRelevant bool) error {
	app, err := s.apps.Get(ctx, applicantID, index)
	if err != nil {
		return err
	}

	app.TopicalityInProgress = false
	if stillRelevant {
		// Заявка подтверждена, отсчёт устаревания начинается заново.
		app.TopicalityNotificationSent = false
		app.Timestamp = time.Now()
	}

	if err := s.apps.Save(ctx, app); err != nil {
		return err
	}

	s.delayer.MarkResolved(applicantID)

	if !stillRelevant {
		return s.DeletePermanently(ctx, applicantID, index)
	}

	return nil
}

// ReRunAutoCalc сбрасывает авторасчёт по заявке, следующий цикл сверки
// посчитает цену заново. Цена менеджера сбросу не подлежит.
func (s *Service) ReRunAutoCalc(ctx context.Context, applicantID int64, index int) error {
	app, err := s.apps.Get(ctx, applicantID, index)
	if err != nil {
		return err
	}

	if app.IsTerminal() || app.HasManagerPrice() {
		return nil
	}

	app.BotPrice = nil
	app.Proposal = ""
	app.ProposalStatus = entity.StatusActive

	if err := s.apps.Save(ctx, app); err != nil {
		return err
	}

	if app.SheetRow > 0 {
		if err := s.ledger.ClearBotPrice(ctx, app.SheetRow); err != nil {
			logger(ctx).Warn("failed to clear bot price cell",
				"row", app.SheetRow, logx.Error(err))
		}
	}

	return nil
}

// SubmitApplication принимает новую заявку: присваивает идентификатор,
// добавляет строку в таблицу и сохраняет заявку с номером этой строки.
func (s *Service) SubmitApplication(ctx context.Context, app *entity.Application) error {
	app.ID = xid.New().String()
	app.ProposalStatus = entity.StatusActive
	if app.Timestamp.IsZero() {
		app.Timestamp = time.Now()
	}

	all, err := s.apps.LoadAll(ctx)
	if err != nil {
		return err
	}
	app.Index = len(all[app.ApplicantID])

	row, err := s.ledger.AppendApplication(ctx, app)
	if err != nil {
		return err
	}
	app.SheetRow = row

	return s.apps.Save(ctx, app)
}

// Count количество заявок в хранилище.
func (s *Service) Count(ctx context.Context) (int, error) {
	apps, err := s.apps.LoadAll(ctx)
	if err != nil {
		return 0, err
	}

	var total int
	for _, list := range apps {
		total += len(list)
	}

	return total, nil
}

func (s *Service) AutoCalcEnabled(ctx context.Context) (bool, error) {
	return s.settings.AutoCalcEnabled(ctx)
}

func (s *Service) SetAutoCalc(ctx context.Context, enabled bool) error {
	return s.settings.SetAutoCalcEnabled(ctx, enabled)
}
