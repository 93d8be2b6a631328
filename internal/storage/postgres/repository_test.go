//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"lifeline/internal/domain"
	"lifeline/pkg/e"
)

var (
	testPool *pgxpool.Pool
	tc       testcontainers.Container
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	user := "postgres"
	pass := "postgres"
	db := "postgres"

	req := testcontainers.ContainerRequest{
		Image:        "postgis/postgis:16-3.4-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": pass,
			"POSTGRES_DB":       db,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(90 * time.Second),
	}

	var err error
	tc, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Println("cannot start container:", err)
		os.Exit(1)
	}

	host, _ := tc.Host(ctx)
	mappedPort, _ := tc.MappedPort(ctx, "5432/tcp")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, mappedPort.Port(), db)

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Println("pgxpool.New:", err)
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := testPool.Ping(ctx); err != nil {
		fmt.Println("pool.Ping:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := setupSchema(ctx, testPool); err != nil {
		fmt.Println("setupSchema:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	testPool.Close()
	_ = tc.Terminate(ctx)
	os.Exit(code)
}

func setupSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE EXTENSION IF NOT EXISTS postgis;

		CREATE TABLE IF NOT EXISTS volunteers (
			id                  uuid PRIMARY KEY,
			status              text NOT NULL,
			geo_point           geography(Point, 4326) NOT NULL,
			position_updated_at timestamptz NOT NULL,
			active_incident_id  uuid
		);

		CREATE TABLE IF NOT EXISTS incidents (
			id                    uuid PRIMARY KEY,
			patient_id            uuid NOT NULL,
			geo_point             geography(Point, 4326) NOT NULL,
			accuracy_m            double precision NOT NULL DEFAULT 0,
			state                 text NOT NULL,
			assigned_volunteer_id uuid,
			assigned_at           timestamptz,
			created_at            timestamptz NOT NULL
		);

		CREATE TABLE IF NOT EXISTS incident_offers (
			id           bigserial PRIMARY KEY,
			incident_id  uuid NOT NULL REFERENCES incidents (id),
			volunteer_id uuid NOT NULL,
			offered_at   timestamptz NOT NULL,
			deadline     timestamptz NOT NULL,
			round        int NOT NULL,
			outcome      text,
			UNIQUE (incident_id, volunteer_id, round)
		);
	`)
	return err
}

func truncateAll(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `TRUNCATE TABLE incident_offers, incidents, volunteers`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newVolunteerRepo() *VolunteerRepo {
	return NewVolunteerRepo(testPool, testLogger(), 2*time.Minute)
}

func newIncidentRepo() *IncidentRepo {
	return NewIncidentRepo(testPool, testLogger())
}

func mustOnline(t *testing.T, repo *VolunteerRepo, lat, lng float64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := repo.SetOnline(context.Background(), id, domain.Position{
		Lat: lat, Lng: lng, UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	return id
}

func TestVolunteerRepo_ReserveReleaseCycle(t *testing.T) {
	truncateAll(t)

	repo := newVolunteerRepo()
	ctx := context.Background()

	volID := mustOnline(t, repo, 55.75, 37.61)
	incA := uuid.New()
	incB := uuid.New()

	ok, err := repo.TryReserve(ctx, volID, incA)
	if err != nil {
		t.Fatalf("TryReserve: %v", err)
	}
	if !ok {
		t.Fatalf("expected first reserve to succeed")
	}

	ok, err = repo.TryReserve(ctx, volID, incB)
	if err != nil {
		t.Fatalf("TryReserve second: %v", err)
	}
	if ok {
		t.Fatalf("expected second reserve to fail while busy")
	}

	got, err := repo.Get(ctx, volID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.VolunteerOnlineBusy {
		t.Fatalf("expected online_busy got %s", got.Status)
	}
	if got.ActiveIncidentID == nil || *got.ActiveIncidentID != incA {
		t.Fatalf("expected active incident %s got %v", incA, got.ActiveIncidentID)
	}

	if err := repo.Release(ctx, volID); err != nil {
		t.Fatalf("Release: %v", err)
	}

	ok, err = repo.TryReserve(ctx, volID, incB)
	if err != nil {
		t.Fatalf("TryReserve after release: %v", err)
	}
	if !ok {
		t.Fatalf("expected reserve after release to succeed")
	}
}

func TestVolunteerRepo_TryReserve_ConcurrentSingleWinner(t *testing.T) {
	truncateAll(t)

	repo := newVolunteerRepo()
	ctx := context.Background()

	volID := mustOnline(t, repo, 55.75, 37.61)

	const racers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.TryReserve(ctx, volID, uuid.New())
			if err != nil {
				t.Errorf("TryReserve: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestVolunteerRepo_SetOnline_BusyKeepsReservation(t *testing.T) {
	truncateAll(t)

	repo := newVolunteerRepo()
	ctx := context.Background()

	volID := mustOnline(t, repo, 55.75, 37.61)
	incID := uuid.New()

	if ok, err := repo.TryReserve(ctx, volID, incID); err != nil || !ok {
		t.Fatalf("TryReserve: ok=%v err=%v", ok, err)
	}

	err := repo.SetOnline(ctx, volID, domain.Position{Lat: 55.76, Lng: 37.62, UpdatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("SetOnline while busy: %v", err)
	}

	got, err := repo.Get(ctx, volID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.VolunteerOnlineBusy {
		t.Fatalf("expected reservation to survive re-online, got %s", got.Status)
	}
	if got.ActiveIncidentID == nil || *got.ActiveIncidentID != incID {
		t.Fatalf("expected active incident preserved, got %v", got.ActiveIncidentID)
	}
}

func TestVolunteerRepo_UpdatePosition_OfflineRejected(t *testing.T) {
	truncateAll(t)

	repo := newVolunteerRepo()
	ctx := context.Background()

	volID := mustOnline(t, repo, 55.75, 37.61)
	if err := repo.SetOffline(ctx, volID); err != nil {
		t.Fatalf("SetOffline: %v", err)
	}

	err := repo.UpdatePosition(ctx, volID, domain.Position{Lat: 55.76, Lng: 37.62, UpdatedAt: time.Now().UTC()})
	if !errors.Is(err, e.ErrVolunteerOffline) {
		t.Fatalf("expected ErrVolunteerOffline, got: %v", err)
	}
}

func TestVolunteerRepo_NearestIdle_RanksAndFilters(t *testing.T) {
	truncateAll(t)

	repo := newVolunteerRepo()
	ctx := context.Background()

	// Roughly 1.1 km per 0.01 degree of latitude.
	near := mustOnline(t, repo, 55.76, 37.61)
	far := mustOnline(t, repo, 55.79, 37.61)
	mustOnline(t, repo, 56.80, 37.61) // out of radius

	offline := mustOnline(t, repo, 55.7601, 37.61)
	if err := repo.SetOffline(ctx, offline); err != nil {
		t.Fatalf("SetOffline: %v", err)
	}

	stale := uuid.New()
	err := repo.SetOnline(ctx, stale, domain.Position{
		Lat: 55.7602, Lng: 37.61, UpdatedAt: time.Now().UTC().Add(-1 * time.Hour),
	})
	if err != nil {
		t.Fatalf("SetOnline stale: %v", err)
	}

	busy := mustOnline(t, repo, 55.7603, 37.61)
	if ok, err := repo.TryReserve(ctx, busy, uuid.New()); err != nil || !ok {
		t.Fatalf("TryReserve busy: ok=%v err=%v", ok, err)
	}

	got, err := repo.NearestIdle(ctx, 55.75, 37.61, 10, 20)
	if err != nil {
		t.Fatalf("NearestIdle: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 candidates got %d: %+v", len(got), got)
	}
	if got[0].VolunteerID != near || got[1].VolunteerID != far {
		t.Fatalf("unexpected ranking: %+v", got)
	}
	if got[0].DistanceKM >= got[1].DistanceKM {
		t.Fatalf("expected ascending distance: %+v", got)
	}
	if got[0].DistanceKM < 0.9 || got[0].DistanceKM > 1.4 {
		t.Fatalf("implausible distance for near candidate: %v km", got[0].DistanceKM)
	}
}

func TestIncidentRepo_Lifecycle_AssignAndResolve(t *testing.T) {
	truncateAll(t)

	repo := newIncidentRepo()
	ctx := context.Background()

	inc, err := repo.Create(ctx, uuid.New(), domain.Location{Lat: 55.75, Lng: 37.61, AccuracyM: 12})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inc.State != domain.IncidentCreated {
		t.Fatalf("expected created got %s", inc.State)
	}

	if err := repo.BeginDispatch(ctx, inc.ID); err != nil {
		t.Fatalf("BeginDispatch: %v", err)
	}
	if err := repo.BeginDispatch(ctx, inc.ID); !errors.Is(err, e.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double BeginDispatch, got: %v", err)
	}

	volID := uuid.New()
	now := time.Now().UTC()
	if err := repo.RecordOffer(ctx, inc.ID, volID, now, now.Add(25*time.Second), 0); err != nil {
		t.Fatalf("RecordOffer: %v", err)
	}
	if err := repo.RecordOutcome(ctx, inc.ID, volID, domain.OfferAccepted); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}

	ok, err := repo.CommitAssignment(ctx, inc.ID, volID)
	if err != nil {
		t.Fatalf("CommitAssignment: %v", err)
	}
	if !ok {
		t.Fatalf("expected commit to win")
	}

	got, err := repo.Get(ctx, inc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != domain.IncidentAssigned {
		t.Fatalf("expected assigned got %s", got.State)
	}
	if got.AssignedVolunteerID == nil || *got.AssignedVolunteerID != volID {
		t.Fatalf("expected assignee %s got %v", volID, got.AssignedVolunteerID)
	}
	if got.AssignedAt == nil || got.AssignedAt.IsZero() {
		t.Fatalf("expected assigned_at set")
	}
	if len(got.OfferHistory) != 1 {
		t.Fatalf("expected one history entry got %d", len(got.OfferHistory))
	}
	if got.OfferHistory[0].Outcome == nil || *got.OfferHistory[0].Outcome != domain.OfferAccepted {
		t.Fatalf("expected accepted outcome in history, got %+v", got.OfferHistory[0])
	}

	if err := repo.Resolve(ctx, inc.ID); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := repo.Resolve(ctx, inc.ID); !errors.Is(err, e.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double Resolve, got: %v", err)
	}
}

func TestIncidentRepo_CommitAssignment_ConcurrentSingleWinner(t *testing.T) {
	truncateAll(t)

	repo := newIncidentRepo()
	ctx := context.Background()

	inc, err := repo.Create(ctx, uuid.New(), domain.Location{Lat: 55.75, Lng: 37.61})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.BeginDispatch(ctx, inc.ID); err != nil {
		t.Fatalf("BeginDispatch: %v", err)
	}

	const racers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.CommitAssignment(ctx, inc.ID, uuid.New())
			if err != nil {
				t.Errorf("CommitAssignment: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one committed assignment, got %d", wins)
	}
}

func TestIncidentRepo_RecordOffer_DuplicateRoundRejected(t *testing.T) {
	truncateAll(t)

	repo := newIncidentRepo()
	ctx := context.Background()

	inc, err := repo.Create(ctx, uuid.New(), domain.Location{Lat: 55.75, Lng: 37.61})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	volID := uuid.New()
	now := time.Now().UTC()
	if err := repo.RecordOffer(ctx, inc.ID, volID, now, now.Add(25*time.Second), 0); err != nil {
		t.Fatalf("RecordOffer: %v", err)
	}

	err = repo.RecordOffer(ctx, inc.ID, volID, now.Add(time.Second), now.Add(26*time.Second), 0)
	if !errors.Is(err, e.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate round, got: %v", err)
	}

	// A fresh cycle may re-offer to the same volunteer.
	if err := repo.RecordOffer(ctx, inc.ID, volID, now.Add(time.Minute), now.Add(85*time.Second), 1); err != nil {
		t.Fatalf("RecordOffer round 1: %v", err)
	}
}

func TestIncidentRepo_Cancel_ReturnsPreviousAssignee(t *testing.T) {
	truncateAll(t)

	repo := newIncidentRepo()
	ctx := context.Background()

	inc, err := repo.Create(ctx, uuid.New(), domain.Location{Lat: 55.75, Lng: 37.61})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.BeginDispatch(ctx, inc.ID); err != nil {
		t.Fatalf("BeginDispatch: %v", err)
	}

	volID := uuid.New()
	if ok, err := repo.CommitAssignment(ctx, inc.ID, volID); err != nil || !ok {
		t.Fatalf("CommitAssignment: ok=%v err=%v", ok, err)
	}

	prev, err := repo.Cancel(ctx, inc.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if prev == nil || *prev != volID {
		t.Fatalf("expected previous assignee %s got %v", volID, prev)
	}

	got, err := repo.Get(ctx, inc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != domain.IncidentCancelled {
		t.Fatalf("expected cancelled got %s", got.State)
	}
	if got.AssignedVolunteerID != nil || got.AssignedAt != nil {
		t.Fatalf("expected assignment cleared, got %+v", got)
	}

	if _, err := repo.Cancel(ctx, inc.ID); !errors.Is(err, e.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on terminal cancel, got: %v", err)
	}
}

func TestIncidentRepo_Reopen_ClearsAssignment(t *testing.T) {
	truncateAll(t)

	repo := newIncidentRepo()
	ctx := context.Background()

	inc, err := repo.Create(ctx, uuid.New(), domain.Location{Lat: 55.75, Lng: 37.61})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.BeginDispatch(ctx, inc.ID); err != nil {
		t.Fatalf("BeginDispatch: %v", err)
	}

	volID := uuid.New()
	if ok, err := repo.CommitAssignment(ctx, inc.ID, volID); err != nil || !ok {
		t.Fatalf("CommitAssignment: ok=%v err=%v", ok, err)
	}

	ok, err := repo.Reopen(ctx, inc.ID, uuid.New())
	if err != nil {
		t.Fatalf("Reopen stranger: %v", err)
	}
	if ok {
		t.Fatalf("expected reopen by non-assignee to fail")
	}

	ok, err = repo.Reopen(ctx, inc.ID, volID)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if !ok {
		t.Fatalf("expected reopen by assignee to succeed")
	}

	got, err := repo.Get(ctx, inc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != domain.IncidentDispatching {
		t.Fatalf("expected dispatching got %s", got.State)
	}
	if got.AssignedVolunteerID != nil || got.AssignedAt != nil {
		t.Fatalf("expected assignment cleared, got %+v", got)
	}
}

func TestIncidentRepo_MarkUnassignable_OnlyFromDispatching(t *testing.T) {
	truncateAll(t)

	repo := newIncidentRepo()
	ctx := context.Background()

	inc, err := repo.Create(ctx, uuid.New(), domain.Location{Lat: 55.75, Lng: 37.61})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.MarkUnassignable(ctx, inc.ID); !errors.Is(err, e.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from created, got: %v", err)
	}

	if err := repo.BeginDispatch(ctx, inc.ID); err != nil {
		t.Fatalf("BeginDispatch: %v", err)
	}
	if err := repo.MarkUnassignable(ctx, inc.ID); err != nil {
		t.Fatalf("MarkUnassignable: %v", err)
	}

	got, err := repo.Get(ctx, inc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != domain.IncidentUnassignable {
		t.Fatalf("expected unassignable got %s", got.State)
	}
}
