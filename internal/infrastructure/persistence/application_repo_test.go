package persistence_test

import (
	"context"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"agro_desk/internal/domain/entity"
	"agro_desk/internal/infrastructure/persistence"
	"agro_desk/pkg/dbtest"
)

// testDB подключается к базе из TEST_POSTGRES_DSN и накатывает миграции.
// Без переменной окружения тест пропускается.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN is not set")
	}

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)

	require.NoError(t, dbtest.MigrateFromFile(db, "../../../migrations/001_init.sql"))

	t.Cleanup(func() {
		_, _ = db.Exec(`TRUNCATE applications, settings`)
		_ = db.Close()
	})

	return db
}

func testApplication(applicantID int64, index, sheetRow int) *entity.Application {
	return &entity.Application{
		ID:             "app-test",
		ApplicantID:    applicantID,
		Index:          index,
		ChatID:         applicantID,
		Name:           "Іван",
		Group:          "Зернові",
		Culture:        "Пшениця",
		Quantity:       "25",
		PaymentForm:    "без ПДВ",
		Currency:       "грн",
		Price:          "7000",
		Region:         "Київська",
		District:       "Білоцерківський",
		City:           "Узин",
		ProposalStatus: entity.StatusActive,
		SheetRow:       sheetRow,
		Timestamp:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestApplicationRepositoryRoundTrip(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewApplicationRepository(testDB(t))

	app := testApplication(42, 0, 10)
	rq.NoError(repo.Save(ctx, app))

	got, err := repo.Get(ctx, 42, 0)
	rq.NoError(err)
	rq.Equal(app.Culture, got.Culture)
	rq.Equal(app.Name, got.Name)
	rq.Equal(app.SheetRow, got.SheetRow)
	rq.Nil(got.BotPrice)

	price := 6700.0
	app.BotPrice = &price
	app.ProposalStatus = entity.StatusAgreed
	rq.NoError(repo.Save(ctx, app))

	got, err = repo.Get(ctx, 42, 0)
	rq.NoError(err)
	rq.NotNil(got.BotPrice)
	rq.InDelta(price, *got.BotPrice, 1e-9)
	rq.Equal(entity.StatusAgreed, got.ProposalStatus)
}

func TestApplicationRepositoryDeleteRenumbers(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewApplicationRepository(testDB(t))

	for i, row := range []int{10, 11, 12} {
		app := testApplication(42, i, row)
		app.ID = app.ID + string(rune('a'+i))
		rq.NoError(repo.Save(ctx, app))
	}

	removed, err := repo.Delete(ctx, 42, 0)
	rq.NoError(err)
	rq.Equal(10, removed.SheetRow)

	rq.NoError(repo.ShiftRowsAbove(ctx, removed.SheetRow))

	all, err := repo.LoadAll(ctx)
	rq.NoError(err)
	rq.Len(all[42], 2)
	rq.Equal(0, all[42][0].Index)
	rq.Equal(1, all[42][1].Index)
	rq.Equal(10, all[42][0].SheetRow)
	rq.Equal(11, all[42][1].SheetRow)
}

func TestSettingsRepositoryDefaultsToEnabled(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewSettingsRepository(testDB(t))

	enabled, err := repo.AutoCalcEnabled(ctx)
	rq.NoError(err)
	rq.True(enabled)

	rq.NoError(repo.SetAutoCalcEnabled(ctx, false))

	enabled, err = repo.AutoCalcEnabled(ctx)
	rq.NoError(err)
	rq.False(enabled)
}
