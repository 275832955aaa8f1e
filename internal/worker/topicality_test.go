package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agro_desk/internal/domain/entity"
	"agro_desk/internal/worker"
)

func staleApplication(applicantID int64, index int) entity.Application {
	return entity.Application{
		ApplicantID:    applicantID,
		ChatID:         applicantID,
		Index:          index,
		Culture:        "Пшениця",
		Quantity:       "100",
		ProposalStatus: entity.StatusActive,
		Timestamp:      time.Now().Add(-40 * 24 * time.Hour),
	}
}

func newTestChecker(store *fakeStore) (*worker.TopicalityChecker, *worker.RescanDelayer, chan entity.Notification) {
	notifications := make(chan entity.Notification, 10)
	delayer := worker.NewRescanDelayer(time.Minute)
	checker := worker.NewTopicalityChecker(store, delayer, notifications).
		WithSchedule(time.Minute, 30*24*time.Hour)
	return checker, delayer, notifications
}

func TestTopicalityPromptStale(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {staleApplication(42, 0)},
	}}
	checker, _, notifications := newTestChecker(store)

	checker.RunCycle(context.Background())

	rq.Len(store.saved, 1)
	rq.True(store.saved[0].TopicalityNotificationSent)
	rq.True(store.saved[0].TopicalityInProgress)

	n := <-notifications
	rq.Equal(int64(42), n.ChatID)
	rq.Contains(n.Text, "актуальна")
	rq.NotNil(n.Topicality)
	rq.Equal(int64(42), n.Topicality.ApplicantID)
	rq.Equal(0, n.Topicality.Index)
}

func TestTopicalityAtMostOnePerApplicant(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {staleApplication(42, 0), staleApplication(42, 1)},
	}}
	checker, _, notifications := newTestChecker(store)

	checker.RunCycle(context.Background())

	rq.Len(notifications, 1)
	n := <-notifications
	rq.Equal(0, n.Topicality.Index)

	// Пока висит неотвеченный вопрос, новый не задаётся
	checker.RunCycle(context.Background())
	rq.Empty(notifications)
}

func TestTopicalitySkipsFresh(t *testing.T) {
	rq := require.New(t)

	fresh := staleApplication(42, 0)
	fresh.Timestamp = time.Now()

	store := &fakeStore{apps: map[int64][]entity.Application{42: {fresh}}}
	checker, _, notifications := newTestChecker(store)

	checker.RunCycle(context.Background())

	rq.Empty(notifications)
	rq.Empty(store.saved)
}

func TestTopicalitySkipsTerminalAndRejected(t *testing.T) {
	rq := require.New(t)

	confirmed := staleApplication(42, 0)
	confirmed.ProposalStatus = entity.StatusConfirmed
	rejected := staleApplication(42, 1)
	rejected.ProposalStatus = entity.StatusRejected

	store := &fakeStore{apps: map[int64][]entity.Application{42: {confirmed, rejected}}}
	checker, _, notifications := newTestChecker(store)

	checker.RunCycle(context.Background())

	rq.Empty(notifications)
}

func TestTopicalityDelayerBlocksRescan(t *testing.T) {
	rq := require.New(t)

	store := &fakeStore{apps: map[int64][]entity.Application{
		42: {staleApplication(42, 0)},
	}}
	checker, delayer, notifications := newTestChecker(store)

	delayer.MarkResolved(42)
	checker.RunCycle(context.Background())

	rq.Empty(notifications)
	rq.Empty(store.saved)
}

func TestRescanDelayerExpires(t *testing.T) {
	rq := require.New(t)

	delayer := worker.NewRescanDelayer(20 * time.Millisecond)
	delayer.MarkResolved(42)
	rq.True(delayer.RecentlyResolved(42))
	rq.False(delayer.RecentlyResolved(7))

	rq.Eventually(func() bool {
		return !delayer.RecentlyResolved(42)
	}, time.Second, 5*time.Millisecond)
}
