package worker_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"agro_desk/internal/domain/entity"
	"agro_desk/internal/domain/service/pricing"
	"agro_desk/internal/infrastructure/sheets"
	"agro_desk/internal/worker"
)

type fakeStore struct {
	apps     map[int64][]entity.Application
	replaced map[int64][]entity.Application
	saved    []entity.Application
}

func (f *fakeStore) LoadAll(context.Context) (map[int64][]entity.Application, error) {
	out := make(map[int64][]entity.Application, len(f.apps))
	for id, list := range f.apps {
		out[id] = append([]entity.Application(nil), list...)
	}
	return out, nil
}

func (f *fakeStore) ReplaceAll(_ context.Context, apps map[int64][]entity.Application) error {
	f.replaced = apps
	f.apps = make(map[int64][]entity.Application, len(apps))
	for id, list := range apps {
		f.apps[id] = append([]entity.Application(nil), list...)
	}
	return nil
}

func (f *fakeStore) Save(_ context.Context, app *entity.Application) error {
	f.saved = append(f.saved, *app)
	for i := range f.apps[app.ApplicantID] {
		if f.apps[app.ApplicantID][i].Index == app.Index {
			f.apps[app.ApplicantID][i] = *app
		}
	}
	return nil
}

type fakeSheet struct {
	rows      [][]string
	priceRows [][]string
}

func (f *fakeSheet) Rows(context.Context) ([][]string, error)      { return f.rows, nil }
func (f *fakeSheet) PriceRows(context.Context) ([][]string, error) { return f.priceRows, nil }

type fakeEngine struct {
	price     float64
	err       error
	panicOn   int64
	calls     []int64
	onCompute func()
}

func (f *fakeEngine) ComputePrice(_ context.Context, app entity.Application, _ entity.PriceConfig) (float64, error) {
	if app.ApplicantID == f.panicOn {
		panic("boom")
	}
	f.calls = append(f.calls, app.ApplicantID)
	if f.onCompute != nil {
		f.onCompute()
	}
	return f.price, f.err
}

type fakeSettings struct {
	enabled bool
}

func (f fakeSettings) AutoCalcEnabled(context.Context) (bool, error) { return f.enabled, nil }

func ledgerRow(managerPrice string) []string {
	row := make([]string, sheets.ColManagerPrice)
	row[sheets.ColManagerPrice-1] = managerPrice
	return row
}

func newTestReconciler(
	store *fakeStore,
	sheet *fakeSheet,
	engine *fakeEngine,
	settings fakeSettings,
) (*worker.Reconciler, chan entity.Notification) {
	notifications := make(chan entity.Notification, 10)
	r := worker.NewReconciler(store, sheet, engine, settings, worker.NewGate(), notifications)
	return r, notifications
}

func TestRunCycleManagerPriceFirstSet(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {{
			ApplicantID:    42,
			ChatID:         42,
			Culture:        "Пшениця",
			Quantity:       "100",
			ProposalStatus: entity.StatusActive,
			SheetRow:       1,
		}},
	}}
	sheet := &fakeSheet{rows: [][]string{ledgerRow("6500")}}

	r, notifications := newTestReconciler(store, sheet, &fakeEngine{}, fakeSettings{})
	r.RunCycle(context.Background())

	rq.NotNil(store.replaced)
	got := store.replaced[42][0]
	rq.Equal("6500", got.ManagerPrice)
	rq.Equal("6500", got.Proposal)
	rq.Equal(entity.StatusAgreed, got.ProposalStatus)

	rq.Len(notifications, 1)
	n := <-notifications
	rq.Equal(int64(42), n.ChatID)
	rq.Contains(n.Text, "Нова пропозиція")
	rq.Contains(n.Text, "6500")
}

func TestRunCycleManagerPriceChanged(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {{
			ApplicantID:    42,
			ChatID:         42,
			Culture:        "Пшениця",
			Quantity:       "100",
			ManagerPrice:   "6500",
			Proposal:       "6500",
			ProposalStatus: entity.StatusWaiting,
			SheetRow:       1,
		}},
	}}
	sheet := &fakeSheet{rows: [][]string{ledgerRow("6600")}}

	r, notifications := newTestReconciler(store, sheet, &fakeEngine{}, fakeSettings{})
	r.RunCycle(context.Background())

	got := store.replaced[42][0]
	rq.Equal("6600", got.ManagerPrice)
	rq.Equal(entity.StatusAgreed, got.ProposalStatus)

	n := <-notifications
	rq.Contains(n.Text, "змінилась з 6500 на 6600")
}

func TestRunCycleTerminalImmutable(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {{
			ApplicantID:    42,
			ManagerPrice:   "6500",
			ProposalStatus: entity.StatusConfirmed,
			SheetRow:       1,
		}},
	}}
	sheet := &fakeSheet{rows: [][]string{ledgerRow("9999")}}
	engine := &fakeEngine{}

	r, notifications := newTestReconciler(store, sheet, engine, fakeSettings{enabled: true})
	r.RunCycle(context.Background())

	rq.Nil(store.replaced)
	rq.Empty(notifications)
	rq.Empty(engine.calls)
}

func TestRunCycleMalformedManagerPrice(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {{
			ApplicantID:    42,
			ProposalStatus: entity.StatusActive,
			SheetRow:       1,
		}},
	}}
	sheet := &fakeSheet{rows: [][]string{ledgerRow("дорого")}}

	r, notifications := newTestReconciler(store, sheet, &fakeEngine{}, fakeSettings{})
	r.RunCycle(context.Background())

	rq.Nil(store.replaced)
	rq.Empty(notifications)
}

func TestRunCycleAutoPricing(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {{
			ApplicantID:    42,
			ChatID:         42,
			Culture:        "Пшениця",
			Quantity:       "100",
			ProposalStatus: entity.StatusActive,
			SheetRow:       1,
		}},
	}}
	sheet := &fakeSheet{rows: [][]string{ledgerRow("")}}
	engine := &fakeEngine{price: 6700}

	r, notifications := newTestReconciler(store, sheet, engine, fakeSettings{enabled: true})
	r.RunCycle(context.Background())

	got := store.replaced[42][0]
	rq.NotNil(got.BotPrice)
	rq.InDelta(6700, *got.BotPrice, 1e-9)
	rq.Equal("6700", got.Proposal)
	rq.Equal(entity.StatusAgreed, got.ProposalStatus)
	rq.Equal(1, got.PricingAttempts)

	n := <-notifications
	rq.Contains(n.Text, "Автоматична пропозиція")
	rq.Contains(n.Text, "6700")
}

func TestRunCycleAutoPricingDisabled(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {{ApplicantID: 42, ProposalStatus: entity.StatusActive, SheetRow: 1}},
	}}
	sheet := &fakeSheet{rows: [][]string{ledgerRow("")}}
	engine := &fakeEngine{price: 6700}

	r, _ := newTestReconciler(store, sheet, engine, fakeSettings{enabled: false})
	r.RunCycle(context.Background())

	rq.Empty(engine.calls)
	rq.Nil(store.replaced)
}

func TestRunCycleManagerPricePreemptsAutoPricing(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {{
			ApplicantID:    42,
			ManagerPrice:   "6500",
			Proposal:       "6500",
			ProposalStatus: entity.StatusWaiting,
			SheetRow:       1,
		}},
	}}
	sheet := &fakeSheet{rows: [][]string{ledgerRow("6500")}}
	engine := &fakeEngine{price: 6700}

	r, _ := newTestReconciler(store, sheet, engine, fakeSettings{enabled: true})
	r.RunCycle(context.Background())

	rq.Empty(engine.calls)
}

func TestRunCycleNotComputableCountsAttempt(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {{ApplicantID: 42, ProposalStatus: entity.StatusActive, SheetRow: 1}},
	}}
	sheet := &fakeSheet{rows: [][]string{ledgerRow("")}}
	engine := &fakeEngine{err: fmt.Errorf("%w: no tariff", pricing.ErrNotComputable)}

	r, notifications := newTestReconciler(store, sheet, engine, fakeSettings{enabled: true})
	r.RunCycle(context.Background())

	got := store.replaced[42][0]
	rq.Nil(got.BotPrice)
	rq.Equal(entity.StatusActive, got.ProposalStatus)
	rq.Equal(1, got.PricingAttempts)
	rq.Empty(notifications)
}

func TestRunCycleKeepsConcurrentConfirm(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {{
			ApplicantID:    42,
			ChatID:         42,
			Culture:        "Пшениця",
			Quantity:       "100",
			ProposalStatus: entity.StatusActive,
			SheetRow:       1,
		}},
	}}
	sheet := &fakeSheet{rows: [][]string{ledgerRow("")}}
	engine := &fakeEngine{price: 6700}

	// Заявитель подтверждает заявку, пока цикл считает по ней цену.
	engine.onCompute = func() {
		app := store.apps[42][0]
		app.ProposalStatus = entity.StatusConfirmed
		_ = store.Save(context.Background(), &app)
	}

	r, _ := newTestReconciler(store, sheet, engine, fakeSettings{enabled: true})
	r.RunCycle(context.Background())

	got := store.replaced[42][0]
	rq.Equal(entity.StatusConfirmed, got.ProposalStatus)
	rq.Nil(got.BotPrice)
}

func TestRunCycleManagerPhasePersistsBeforeAutoPricing(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {{
			ApplicantID:    42,
			ChatID:         42,
			Culture:        "Пшениця",
			Quantity:       "100",
			ProposalStatus: entity.StatusActive,
			SheetRow:       1,
		}},
		7: {{
			ApplicantID:    7,
			ChatID:         7,
			Culture:        "Ячмінь",
			Quantity:       "50",
			ProposalStatus: entity.StatusActive,
			SheetRow:       2,
		}},
	}}
	sheet := &fakeSheet{rows: [][]string{ledgerRow("6500"), ledgerRow("")}}
	engine := &fakeEngine{price: 6700}

	// К моменту авторасчёта цена менеджера уже в хранилище
	var persistedAtCompute string
	engine.onCompute = func() {
		persistedAtCompute = store.apps[42][0].ManagerPrice
	}

	r, _ := newTestReconciler(store, sheet, engine, fakeSettings{enabled: true})
	r.RunCycle(context.Background())

	rq.Equal([]int64{7}, engine.calls)
	rq.Equal("6500", persistedAtCompute)
	rq.Equal(entity.StatusAgreed, store.apps[42][0].ProposalStatus)
}

func TestRunCycleIsolatesPanics(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		1: {{ApplicantID: 1, ProposalStatus: entity.StatusActive, SheetRow: 1}},
		2: {{ApplicantID: 2, ChatID: 2, ProposalStatus: entity.StatusActive, SheetRow: 2}},
	}}
	sheet := &fakeSheet{rows: [][]string{ledgerRow(""), ledgerRow("")}}
	engine := &fakeEngine{price: 6700, panicOn: 1}

	r, _ := newTestReconciler(store, sheet, engine, fakeSettings{enabled: true})
	r.RunCycle(context.Background())

	// Паника по первой заявке не мешает второй
	rq.Equal([]int64{2}, engine.calls)
	rq.NotNil(store.replaced[2][0].BotPrice)
}
