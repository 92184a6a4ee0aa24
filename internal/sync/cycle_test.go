package sync

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/isirwatch/backend/internal/reconcile"
	"github.com/isirwatch/backend/internal/registry"
	"github.com/isirwatch/backend/internal/tracker"
	"github.com/isirwatch/backend/pkg/db/models"
	"github.com/isirwatch/backend/pkg/logger"
)

type fakeRegistry struct {
	batches     [][]registry.RawTransaction
	fetchCalls  []int64
	fetchErr    error
	supplements map[int]*registry.Supplement
	supErr      error
	supCalls    int
}

func (f *fakeRegistry) FetchTransactions(_ context.Context, fromID int64) ([]registry.RawTransaction, error) {
	f.fetchCalls = append(f.fetchCalls, fromID)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeRegistry) FetchCaseSupplement(_ context.Context, number, _ int) (*registry.Supplement, error) {
	f.supCalls++
	if f.supErr != nil {
		return nil, f.supErr
	}
	return f.supplements[number], nil
}

func setupSyncTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:sync_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Counter{},
		&models.Transaction{},
		&models.StateKind{},
		&models.RoleKind{},
		&models.Adresa{},
		&models.Osoba{},
		&models.Vec{},
		&models.Role{},
		&models.Insolvency{},
		&models.Tracked{},
	))
	return db
}

func newTestCycle(t *testing.T, db *gorm.DB, reg *fakeRegistry) *Cycle {
	t.Helper()

	rec, err := reconcile.NewReconciler(reconcile.ReconcilerParams{Store: reconcile.NewRepository(db)})
	require.NoError(t, err)
	tr, err := tracker.NewTracker(tracker.TrackerParams{Store: tracker.NewRepository(db)})
	require.NoError(t, err)

	cycle, err := NewCycle(CycleParams{
		Logger:   logger.New(logger.Options{Level: zerolog.Disabled, Output: io.Discard}),
		Registry: reg,
		Store:    NewRepository(db),
		Applier:  rec,
		Tracker:  tr,
	})
	require.NoError(t, err)
	return cycle
}

func rawTx(id int64, caseRef, note string) registry.RawTransaction {
	return registry.RawTransaction{
		ID:        id,
		Created:   time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC),
		Published: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC),
		CaseRef:   caseRef,
		EventType: "5",
		Section:   "A",
		Note:      note,
	}
}

const validNote = `<udalost>
  <idOsobyPuvodce>KSJIMBM</idOsobyPuvodce>
  <vec><druhStavRizeni>ÚPADEK</druhStavRizeni></vec>
</udalost>`

func TestFetchLoopAdvancesCursor(t *testing.T) {
	db := setupSyncTestDB(t)
	reg := &fakeRegistry{batches: [][]registry.RawTransaction{
		{rawTx(1, "KSJIMBM 33 INS 1/2026", validNote), rawTx(2, "KSJIMBM 33 INS 2/2026", validNote)},
		{rawTx(3, "KSJIMBM 33 INS 3/2026", validNote)},
	}}
	cycle := newTestCycle(t, db, reg)

	require.NoError(t, cycle.fetchFeed(context.Background()))

	// queried at cursor+1 each round, ending on the empty response
	assert.Equal(t, []int64{1, 3, 4}, reg.fetchCalls)

	cursor, err := NewRepository(db).GetCursor(context.Background(), feedCursor)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cursor)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestFetchLoopRemoteFailureEndsQuietly(t *testing.T) {
	db := setupSyncTestDB(t)
	reg := &fakeRegistry{fetchErr: errors.New("connection refused")}
	cycle := newTestCycle(t, db, reg)

	require.NoError(t, cycle.fetchFeed(context.Background()))

	cursor, err := NewRepository(db).GetCursor(context.Background(), feedCursor)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cursor)
}

func TestFetchLoopRefetchTolerated(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewRepository(db)

	// a row from a crashed previous cycle is already present
	require.NoError(t, repo.InsertTransactions(context.Background(), []models.Transaction{
		transactionFromRaw(rawTx(1, "KSJIMBM 33 INS 1/2026", validNote)),
	}))

	reg := &fakeRegistry{batches: [][]registry.RawTransaction{
		{rawTx(1, "KSJIMBM 33 INS 1/2026", validNote)},
	}}
	cycle := newTestCycle(t, db, reg)
	require.NoError(t, cycle.fetchFeed(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReconcileDistinguishesSkipFromError(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.InsertTransactions(ctx, []models.Transaction{
		transactionFromRaw(rawTx(1, "KSJIMBM 33 INS 1/2026", validNote)), // applies
		transactionFromRaw(rawTx(2, "ABC", validNote)),                   // benign skip
		transactionFromRaw(rawTx(3, "KSJIMBM 33 INS 3/2026", "<udalost><vec>")), // malformed
	}))

	cycle := newTestCycle(t, db, &fakeRegistry{})
	require.NoError(t, cycle.reconcilePending(ctx))
	require.NoError(t, cycle.purgeProcessed(ctx))

	// only the malformed row survives, flagged
	var rows []models.Transaction
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].ID)
	assert.True(t, rows[0].Error)

	// flagged rows are excluded from the next pass
	pending, err := repo.PendingTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	var vecCount int64
	require.NoError(t, db.Model(&models.Vec{}).Count(&vecCount).Error)
	assert.Equal(t, int64(1), vecCount)
}

func TestReconcileTracksSubscribedChanges(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Insolvency{
		UserID: uuid.New(), Desc: "klient A", Number: 1, Year: 2026, Detailed: true,
	}).Error)

	require.NoError(t, repo.InsertTransactions(ctx, []models.Transaction{
		transactionFromRaw(rawTx(1, "KSJIMBM 33 INS 1/2026", validNote)),
	}))

	cycle := newTestCycle(t, db, &fakeRegistry{})
	require.NoError(t, cycle.reconcilePending(ctx))

	var tracked int64
	require.NoError(t, db.Model(&models.Tracked{}).Count(&tracked).Error)
	assert.Equal(t, int64(1), tracked)
}

func TestSupplementSweep(t *testing.T) {
	db := setupSyncTestDB(t)
	ctx := context.Background()

	// ids 1..3: matched, mismatched, not yet available
	require.NoError(t, db.Create(&models.Vec{Court: "KSJIMBM", Number: 10, Year: 2026}).Error)
	require.NoError(t, db.Create(&models.Vec{Court: "MSPH", Number: 11, Year: 2026}).Error)
	require.NoError(t, db.Create(&models.Vec{Court: "KSJICCB", Number: 12, Year: 2026}).Error)

	senate := 33
	reg := &fakeRegistry{supplements: map[int]*registry.Supplement{
		10: {Count: 1, Senate: &senate, Link: "https://isir.justice.cz/detail/10", Organization: "Krajský soud v Brně"},
		11: {Count: 1, Senate: &senate, Link: "https://isir.justice.cz/detail/11", Organization: "Krajský soud v Plzni"},
	}}
	cycle := newTestCycle(t, db, reg)
	require.NoError(t, cycle.supplementSweep(ctx))

	var matched, mismatched, missing models.Vec
	require.NoError(t, db.Where("number = ?", 10).First(&matched).Error)
	require.NoError(t, db.Where("number = ?", 11).First(&mismatched).Error)
	require.NoError(t, db.Where("number = ?", 12).First(&missing).Error)

	require.NotNil(t, matched.Link)
	assert.Equal(t, "https://isir.justice.cz/detail/10", *matched.Link)
	require.NotNil(t, matched.Senate)
	assert.Equal(t, 33, *matched.Senate)

	// organization mismatch and absent data both leave the case for later
	assert.Nil(t, mismatched.Link)
	assert.Nil(t, missing.Link)

	// cursor records the last case considered regardless of match outcome
	cursor, err := NewRepository(db).GetCursor(ctx, supplementCursor)
	require.NoError(t, err)
	assert.Equal(t, int64(missing.ID), cursor)

	// a second sweep revisits the unresolved cases and leaves the cursor alone
	reg.supplements = nil
	require.NoError(t, cycle.supplementSweep(ctx))
	cursor, err = NewRepository(db).GetCursor(ctx, supplementCursor)
	require.NoError(t, err)
	assert.Equal(t, int64(missing.ID), cursor)
}

func TestSupplementSweepTransportFailure(t *testing.T) {
	db := setupSyncTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Vec{Court: "KSJIMBM", Number: 10, Year: 2026}).Error)

	cycle := newTestCycle(t, db, &fakeRegistry{supErr: errors.New("timeout")})
	require.Error(t, cycle.supplementSweep(ctx))

	cursor, err := NewRepository(db).GetCursor(ctx, supplementCursor)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cursor)
}

func TestCleanupPurgesErroneousCases(t *testing.T) {
	db := setupSyncTestDB(t)
	ctx := context.Background()

	state := models.StateKind{Desc: erroneousStateMarker}
	require.NoError(t, db.Create(&state).Error)
	require.NoError(t, db.Create(&models.Vec{Court: "KSJIMBM", Number: 1, Year: 2026, StateKindID: &state.ID}).Error)
	require.NoError(t, db.Create(&models.Vec{Court: "KSJIMBM", Number: 2, Year: 2026}).Error)

	cycle := newTestCycle(t, db, &fakeRegistry{})
	require.NoError(t, cycle.cleanupErroneous(ctx))

	var remaining []models.Vec
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, 2, remaining[0].Number)
}

func TestRunCollectsPhaseFailures(t *testing.T) {
	db := setupSyncTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Vec{Court: "KSJIMBM", Number: 10, Year: 2026}).Error)

	// supplement phase fails, the rest of the cycle still runs
	reg := &fakeRegistry{supErr: errors.New("timeout")}
	cycle := newTestCycle(t, db, reg)

	err := cycle.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supplement sweep")
	assert.NotEmpty(t, reg.fetchCalls)
}

func TestCycleName(t *testing.T) {
	db := setupSyncTestDB(t)
	cycle := newTestCycle(t, db, &fakeRegistry{})
	assert.Equal(t, JobName, cycle.Name())
}
