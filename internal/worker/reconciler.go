package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"agro_desk/internal/domain/entity"
	"agro_desk/internal/domain/service/pricelist"
	"agro_desk/internal/domain/service/pricing"
	"agro_desk/internal/infrastructure/sheets"
	"agro_desk/pkg/logx"
)

type ApplicationStore interface {
	LoadAll(ctx context.Context) (map[int64][]entity.Application, error)
	ReplaceAll(ctx context.Context, apps map[int64][]entity.Application) error
}

type Ledger interface {
	Rows(ctx context.Context) ([][]string, error)
	PriceRows(ctx context.Context) ([][]string, error)
}

type PricingEngine interface {
	ComputePrice(ctx context.Context, app entity.Application, cfg entity.PriceConfig) (float64, error)
}

type Settings interface {
	AutoCalcEnabled(ctx context.Context) (bool, error)
}

// Reconciler периодически сверяет таблицу-зеркало с хранилищем:
// подхватывает цены менеджера и запускает авторасчёт по остальным заявкам.
type Reconciler struct {
	store         ApplicationStore
	ledger        Ledger
	engine        PricingEngine
	settings      Settings
	gate          *Gate
	notifications chan<- entity.Notification

	checkInterval      time.Duration
	pauseCheckInterval time.Duration

	// Control fields
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewReconciler(
	store ApplicationStore,
	ledger Ledger,
	engine PricingEngine,
	settings Settings,
	gate *Gate,
	notifications chan<- entity.Notification,
) *Reconciler {
	return &Reconciler{
		store:              store,
		ledger:             ledger,
		engine:             engine,
		settings:           settings,
		gate:               gate,
		notifications:      notifications,
		checkInterval:      60 * time.Second,
		pauseCheckInterval: 3 * time.Second,
	}
}

func (r *Reconciler) WithIntervals(check, pauseCheck time.Duration) *Reconciler {
	if check > 0 {
		r.checkInterval = check
	}
	if pauseCheck > 0 {
		r.pauseCheckInterval = pauseCheck
	}
	return r
}

func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return errors.New("reconciler is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancelFunc = cancel
	r.isRunning = true

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			r.isRunning = false
			r.cancelFunc = nil
			r.mu.Unlock()
		}()

		if err := r.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(runCtx).Error("reconciler stopped", logx.Error(err))
		}
	}()

	return nil
}

func (r *Reconciler) Stop() {
	r.mu.Lock()

	if !r.isRunning {
		r.mu.Unlock()
		return
	}

	if r.cancelFunc != nil {
		r.cancelFunc()
	}
	r.mu.Unlock()

	r.wg.Wait()
}

// IsRunning возвращает текущий статус
func (r *Reconciler) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isRunning
}

func (r *Reconciler) Run(ctx context.Context) error {
	logger(ctx).Info("reconciler started")

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("reconciler stopped")
			return ctx.Err()
		default:
		}

		if r.gate.IsSuspended() {
			if err := sleep(ctx, r.pauseCheckInterval); err != nil {
				return err
			}
			continue
		}

		r.RunCycle(ctx)

		if err := sleep(ctx, r.checkInterval); err != nil {
			return err
		}
	}
}

// RunCycle одна полная сверка: прайс-лист, цены менеджера, авторасчёт.
func (r *Reconciler) RunCycle(ctx context.Context) {
	priceRows, err := r.ledger.PriceRows(ctx)
	if err != nil {
		cycleErrors.Inc()
		logger(ctx).Error("failed to read price sheet", logx.Error(err))
		return
	}
	priceConfig := pricelist.Parse(ctx, priceRows)

	ledgerRows, err := r.ledger.Rows(ctx)
	if err != nil {
		cycleErrors.Inc()
		logger(ctx).Error("failed to read ledger", logx.Error(err))
		return
	}

	apps, err := r.store.LoadAll(ctx)
	if err != nil {
		cycleErrors.Inc()
		logger(ctx).Error("failed to load applications", logx.Error(err))
		return
	}

	if touched := r.applyManagerPrices(ctx, apps, ledgerRows); len(touched) > 0 {
		r.persist(ctx, touched)
	}

	autoCalc, err := r.settings.AutoCalcEnabled(ctx)
	if err != nil {
		logger(ctx).Error("failed to read autocalc setting", logx.Error(err))
		autoCalc = false
	}

	if !autoCalc {
		return
	}

	// Фаза авторасчёта делает сетевые вызовы и может идти долго,
	// поэтому работает по свежему снимку, а не по снимку фазы менеджера.
	apps, err = r.store.LoadAll(ctx)
	if err != nil {
		cycleErrors.Inc()
		logger(ctx).Error("failed to load applications", logx.Error(err))
		return
	}

	if touched := r.applyAutoPricing(ctx, apps, priceConfig); len(touched) > 0 {
		r.persist(ctx, touched)
	}
}

// persist перечитывает хранилище и накатывает поверх него только
// ценовые поля изменённых заявок. Конкурентные переходы статусов по
// остальным заявкам не затираются, терминальные заявки не трогаются.
func (r *Reconciler) persist(ctx context.Context, touched []entity.Application) {
	fresh, err := r.store.LoadAll(ctx)
	if err != nil {
		cycleErrors.Inc()
		logger(ctx).Error("failed to reload applications", logx.Error(err))
		return
	}

	for _, src := range touched {
		list := fresh[src.ApplicantID]
		for i := range list {
			if list[i].Index != src.Index {
				continue
			}
			if !list[i].IsTerminal() {
				list[i].ManagerPrice = src.ManagerPrice
				list[i].BotPrice = src.BotPrice
				list[i].Proposal = src.Proposal
				list[i].ProposalStatus = src.ProposalStatus
				list[i].PricingAttempts = src.PricingAttempts
			}
			break
		}
	}

	if err := r.store.ReplaceAll(ctx, fresh); err != nil {
		cycleErrors.Inc()
		logger(ctx).Error("failed to persist applications", logx.Error(err))
	}
}

// applyManagerPrices подхватывает цены из колонки менеджера. Непустая
// цена менеджера навсегда вытесняет авторасчёт по этой заявке.
func (r *Reconciler) applyManagerPrices(
	ctx context.Context,
	apps map[int64][]entity.Application,
	rows [][]string,
) []entity.Application {
	var touched []entity.Application

	for applicantID, list := range apps {
		for i := range list {
			app := &list[i]

			if r.applyManagerPrice(ctx, app, rows) {
				touched = append(touched, *app)
			}
		}
		apps[applicantID] = list
	}

	return touched
}

func (r *Reconciler) applyManagerPrice(ctx context.Context, app *entity.Application, rows [][]string) (changed bool) {
	defer func() {
		if p := recover(); p != nil {
			logger(ctx).Error("manager price handling panicked",
				"applicant_id", app.ApplicantID, "idx", app.Index, "panic", p)
		}
	}()

	if app.IsTerminal() || app.SheetRow <= 0 || app.SheetRow > len(rows) {
		return false
	}

	row := rows[app.SheetRow-1]
	if len(row) < sheets.ColManagerPrice {
		return false
	}

	raw := strings.TrimSpace(row[sheets.ColManagerPrice-1])
	if raw == "" || raw == app.ManagerPrice {
		return false
	}

	if _, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64); err != nil {
		logger(ctx).Warn("malformed manager price cell",
			"row", app.SheetRow, "value", raw)
		return false
	}

	previous := app.Proposal
	priceChanged := app.ProposalStatus == entity.StatusWaiting && previous != ""

	app.ManagerPrice = raw
	app.Proposal = raw
	app.ProposalStatus = entity.StatusAgreed
	managerUpdates.Inc()

	var text string
	if priceChanged {
		text = fmt.Sprintf("Ціна по заявці %d. %s | %s т змінилась з %s на %s",
			app.Index+1, app.Culture, app.Quantity, previous, raw)
	} else {
		text = fmt.Sprintf("Нова пропозиція по Вашій заявці %d. %s | %s т. Ціна: %s",
			app.Index+1, app.Culture, app.Quantity, raw)
	}
	r.notify(ctx, app.ChatID, text)

	return true
}

// applyAutoPricing считает цены по заявкам без цены менеджера.
// Ошибка по одной заявке не прерывает обход остальных.
func (r *Reconciler) applyAutoPricing(
	ctx context.Context,
	apps map[int64][]entity.Application,
	cfg entity.PriceConfig,
) []entity.Application {
	var touched []entity.Application

	for applicantID, list := range apps {
		for i := range list {
			app := &list[i]

			if r.applyAutoPrice(ctx, app, cfg) {
				touched = append(touched, *app)
			}
		}
		apps[applicantID] = list
	}

	return touched
}

func (r *Reconciler) applyAutoPrice(ctx context.Context, app *entity.Application, cfg entity.PriceConfig) (changed bool) {
	defer func() {
		if p := recover(); p != nil {
			logger(ctx).Error("auto pricing panicked",
				"applicant_id", app.ApplicantID, "idx", app.Index, "panic", p)
		}
	}()

	if app.IsTerminal() || app.ProposalStatus == entity.StatusAgreed {
		return false
	}
	if app.HasManagerPrice() || app.BotPrice != nil || app.SheetRow <= 0 {
		return false
	}

	app.PricingAttempts++
	pricingAttempts.Inc()

	price, err := r.engine.ComputePrice(ctx, *app, cfg)
	if err != nil {
		if errors.Is(err, pricing.ErrNotComputable) {
			logger(ctx).Debug("price not computable",
				"applicant_id", app.ApplicantID, "idx", app.Index, logx.Error(err))
			return true
		}
		logger(ctx).Warn("auto pricing failed",
			"applicant_id", app.ApplicantID, "idx", app.Index, logx.Error(err))
		return true
	}

	app.BotPrice = &price
	app.Proposal = pricing.FormatPrice(price)
	app.ProposalStatus = entity.StatusAgreed
	pricesComputed.Inc()

	r.notify(ctx, app.ChatID, fmt.Sprintf("Автоматична пропозиція для Вашої заявки %d. %s | %s т: %s",
		app.Index+1, app.Culture, app.Quantity, app.Proposal))

	return true
}

func (r *Reconciler) notify(ctx context.Context, chatID int64, text string) {
	select {
	case r.notifications <- entity.Notification{ChatID: chatID, Text: text}:
	case <-ctx.Done():
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
