package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"agro_desk/internal/domain/entity"
	"agro_desk/pkg/logx"
)

type TopicalityStore interface {
	LoadAll(ctx context.Context) (map[int64][]entity.Application, error)
	Save(ctx context.Context, app *entity.Application) error
}

// RescanDelayer помнит заявителей, недавно ответивших на вопрос об
// актуальности, чтобы не спрашивать их снова сразу же.
type RescanDelayer struct {
	cache *gocache.Cache
}

func NewRescanDelayer(delay time.Duration) *RescanDelayer {
	return &RescanDelayer{
		cache: gocache.New(delay, delay),
	}
}

func (d *RescanDelayer) MarkResolved(applicantID int64) {
	d.cache.SetDefault(strconv.FormatInt(applicantID, 10), struct{}{})
}

func (d *RescanDelayer) RecentlyResolved(applicantID int64) bool {
	_, found := d.cache.Get(strconv.FormatInt(applicantID, 10))
	return found
}

// TopicalityChecker периодически спрашивает заявителей, актуальны ли
// их старые заявки. Не больше одного вопроса на заявителя за проход.
type TopicalityChecker struct {
	store         TopicalityStore
	delayer       *RescanDelayer
	notifications chan<- entity.Notification

	period    time.Duration
	threshold time.Duration

	// Control fields
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewTopicalityChecker(
	store TopicalityStore,
	delayer *RescanDelayer,
	notifications chan<- entity.Notification,
) *TopicalityChecker {
	return &TopicalityChecker{
		store:         store,
		delayer:       delayer,
		notifications: notifications,
		period:        60 * time.Second,
		threshold:     720 * time.Hour,
	}
}

func (t *TopicalityChecker) WithSchedule(period, threshold time.Duration) *TopicalityChecker {
	if period > 0 {
		t.period = period
	}
	if threshold > 0 {
		t.threshold = threshold
	}
	return t
}

func (t *TopicalityChecker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.isRunning {
		return errors.New("topicality checker is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancelFunc = cancel
	t.isRunning = true

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer func() {
			t.mu.Lock()
			t.isRunning = false
			t.cancelFunc = nil
			t.mu.Unlock()
		}()

		if err := t.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(runCtx).Error("topicality checker stopped", logx.Error(err))
		}
	}()

	return nil
}

func (t *TopicalityChecker) Stop() {
	t.mu.Lock()

	if !t.isRunning {
		t.mu.Unlock()
		return
	}

	if t.cancelFunc != nil {
		t.cancelFunc()
	}
	t.mu.Unlock()

	t.wg.Wait()
}

func (t *TopicalityChecker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}

func (t *TopicalityChecker) Run(ctx context.Context) error {
	logger(ctx).Info("topicality checker started")

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("topicality checker stopped")
			return ctx.Err()
		default:
		}

		t.RunCycle(ctx)

		if err := sleep(ctx, t.period); err != nil {
			return err
		}
	}
}

// RunCycle один проход по всем заявителям.
func (t *TopicalityChecker) RunCycle(ctx context.Context) {
	apps, err := t.store.LoadAll(ctx)
	if err != nil {
		logger(ctx).Error("failed to load applications", logx.Error(err))
		return
	}

	now := time.Now()

	for applicantID, list := range apps {
		if t.delayer.RecentlyResolved(applicantID) {
			continue
		}

		// Если у заявителя уже висит неотвеченный вопрос, нового не задаём.
		if hasPendingPrompt(list) {
			continue
		}

		for i := range list {
			app := &list[i]

			if !isStale(app, now, t.threshold) {
				continue
			}

			app.TopicalityNotificationSent = true
			app.TopicalityInProgress = true

			if err := t.store.Save(ctx, app); err != nil {
				logger(ctx).Error("failed to save application",
					"applicant_id", applicantID, "idx", app.Index, logx.Error(err))
				break
			}

			t.notify(ctx, entity.Notification{
				ChatID: app.ChatID,
				Text: fmt.Sprintf("Ваша заявка %d. %s | %s т ще актуальна?",
					app.Index+1, app.Culture, app.Quantity),
				Topicality: &entity.TopicalityPrompt{
					ApplicantID: app.ApplicantID,
					Index:       app.Index,
				},
			})

			break
		}
	}
}

func hasPendingPrompt(list []entity.Application) bool {
	for i := range list {
		if list[i].TopicalityInProgress {
			return true
		}
	}
	return false
}

func isStale(app *entity.Application, now time.Time, threshold time.Duration) bool {
	if app.TopicalityNotificationSent {
		return false
	}

	switch app.ProposalStatus {
	case entity.StatusActive, entity.StatusWaiting:
	default:
		return false
	}

	return app.Age(now) >= threshold
}

func (t *TopicalityChecker) notify(ctx context.Context, n entity.Notification) {
	select {
	case t.notifications <- n:
	case <-ctx.Done():
	}
}
