package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/geo"
	"lifeline/internal/metrics"
	"lifeline/internal/storage/memory"
	"lifeline/pkg/e"

	"github.com/google/uuid"
)

type offerCall struct {
	volunteerID uuid.UUID
	summary     domain.OfferSummary
}

// fakeFanout records offers and drives scripted volunteer behavior through
// the coordinator's response path, the same way the HTTP boundary would.
// delay stalls Offer after delivery, simulating a slow push gateway.
type fakeFanout struct {
	mu        sync.Mutex
	offers    []offerCall
	cancelled [][2]uuid.UUID
	onOffer   func(volunteerID uuid.UUID, summary domain.OfferSummary)
	failFor   map[uuid.UUID]bool
	delay     time.Duration
}

func newFakeFanout() *fakeFanout {
	return &fakeFanout{failFor: make(map[uuid.UUID]bool)}
}

func (f *fakeFanout) Offer(ctx context.Context, volunteerID uuid.UUID, summary domain.OfferSummary) error {
	f.mu.Lock()
	f.offers = append(f.offers, offerCall{volunteerID, summary})
	fail := f.failFor[volunteerID]
	hook := f.onOffer
	delay := f.delay
	f.mu.Unlock()

	if fail {
		return errors.New("push gateway unreachable")
	}
	if hook != nil {
		go hook(volunteerID, summary)
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	return nil
}

func (f *fakeFanout) CancelOffer(ctx context.Context, volunteerID, incidentID uuid.UUID) error {
	f.mu.Lock()
	f.cancelled = append(f.cancelled, [2]uuid.UUID{volunteerID, incidentID})
	f.mu.Unlock()
	return nil
}

func (f *fakeFanout) offerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.offers)
}

type fixture struct {
	registry  *memory.VolunteerRegistry
	incidents *memory.IncidentStore
	index     *geo.Index
	mirror    *geo.Mirror
	fanout    *fakeFanout
	coord     *Coordinator
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	if cfg.OfferTTL == 0 {
		cfg.OfferTTL = 40 * time.Millisecond
	}
	if cfg.Candidates == 0 {
		cfg.Candidates = 5
	}
	if cfg.SearchRadiusKM == 0 {
		cfg.SearchRadiusKM = 5
	}
	if cfg.MaxRadiusKM == 0 {
		cfg.MaxRadiusKM = 20
	}
	if cfg.MaxRounds == 0 {
		cfg.MaxRounds = 1
	}

	f := &fixture{
		registry:  memory.NewVolunteerRegistry(),
		incidents: memory.NewIncidentStore(),
		index:     geo.NewIndex(2 * time.Minute),
		fanout:    newFakeFanout(),
	}
	f.mirror = geo.NewMirror(f.registry, f.index)

	coord, err := NewCoordinator(cfg, f.mirror, f.incidents, f.index, f.fanout, metrics.NopSink{}, slog.Default())
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	f.coord = coord
	return f
}

// addVolunteer puts a volunteer online at latOffset degrees north of the
// alert point (~111 km per degree); the mirror indexes them as idle.
func (f *fixture) addVolunteer(t *testing.T, latOffset float64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	pos := domain.Position{Lat: 55.75 + latOffset, Lng: 37.61, UpdatedAt: time.Now().UTC()}
	if err := f.mirror.SetOnline(context.Background(), id, pos); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	return id
}

func (f *fixture) newIncident(t *testing.T) *domain.Incident {
	t.Helper()

	inc, err := f.incidents.Create(context.Background(), uuid.New(), domain.Location{Lat: 55.75, Lng: 37.61, AccuracyM: 25})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return inc
}

func (f *fixture) dispatchAndWait(inc *domain.Incident) {
	f.coord.Launch(inc)
	f.coord.Wait()
}

func outcomes(inc *domain.Incident) []domain.OfferOutcome {
	out := make([]domain.OfferOutcome, 0, len(inc.OfferHistory))
	for _, rec := range inc.OfferHistory {
		if rec.Outcome != nil {
			out = append(out, *rec.Outcome)
		}
	}
	return out
}

// Spec scenario: A declines, B times out, C accepts; expect ASSIGNED to C
// with history [declined, timed_out, accepted].
func TestCoordinator_EscalatesThroughDeclineAndTimeout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()

	volA := f.addVolunteer(t, 0.001)
	volB := f.addVolunteer(t, 0.002)
	volC := f.addVolunteer(t, 0.003)

	inc := f.newIncident(t)

	f.fanout.onOffer = func(volID uuid.UUID, _ domain.OfferSummary) {
		switch volID {
		case volA:
			_ = f.coord.HandleResponse(ctx, inc.ID, volA, domain.ResponseDecline)
		case volB:
			// Silence: the coordinator's own deadline must fire.
		case volC:
			_ = f.coord.HandleResponse(ctx, inc.ID, volC, domain.ResponseAccept)
		}
	}

	f.dispatchAndWait(inc)

	got, err := f.incidents.Get(ctx, inc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != domain.IncidentAssigned {
		t.Fatalf("expected assigned, got %s", got.State)
	}
	if got.AssignedVolunteerID == nil || *got.AssignedVolunteerID != volC {
		t.Fatalf("expected assignment to C, got %v", got.AssignedVolunteerID)
	}

	want := []domain.OfferOutcome{domain.OfferDeclined, domain.OfferTimedOut, domain.OfferAccepted}
	gotOutcomes := outcomes(got)
	if len(gotOutcomes) != len(want) {
		t.Fatalf("expected outcomes %v, got %v", want, gotOutcomes)
	}
	for i := range want {
		if gotOutcomes[i] != want[i] {
			t.Fatalf("outcome %d: expected %s got %s", i, want[i], gotOutcomes[i])
		}
	}

	// The winner is reserved for exactly this incident.
	v, _ := f.registry.Get(ctx, volC)
	if v.Status != domain.VolunteerOnlineBusy || v.ActiveIncidentID == nil || *v.ActiveIncidentID != inc.ID {
		t.Fatalf("winner not reserved: %+v", v)
	}
}

// Spec scenario: zero online volunteers within max radius.
func TestCoordinator_NoCandidates_Unassignable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	inc := f.newIncident(t)

	f.dispatchAndWait(inc)

	got, _ := f.incidents.Get(context.Background(), inc.ID)
	if got.State != domain.IncidentUnassignable {
		t.Fatalf("expected unassignable, got %s", got.State)
	}
	if f.fanout.offerCount() != 0 {
		t.Fatalf("no offers expected, got %d", f.fanout.offerCount())
	}
}

func TestCoordinator_WidensRadiusOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{SearchRadiusKM: 5, MaxRadiusKM: 20})
	ctx := context.Background()

	// ~8 km out: outside the initial radius, inside the doubled one.
	volID := f.addVolunteer(t, 0.072)
	inc := f.newIncident(t)

	f.fanout.onOffer = func(v uuid.UUID, _ domain.OfferSummary) {
		_ = f.coord.HandleResponse(ctx, inc.ID, v, domain.ResponseAccept)
	}

	f.dispatchAndWait(inc)

	got, _ := f.incidents.Get(ctx, inc.ID)
	if got.State != domain.IncidentAssigned || got.AssignedVolunteerID == nil || *got.AssignedVolunteerID != volID {
		t.Fatalf("expected assignment after widening, got %+v", got)
	}
}

// Spec scenario: patient cancels while an offer is outstanding; the pending
// offer is revoked and a late accept is rejected as stale.
func TestCoordinator_CancelRevokesOutstandingOffer(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{OfferTTL: time.Second})
	ctx := context.Background()

	volA := f.addVolunteer(t, 0.001)
	inc := f.newIncident(t)

	offered := make(chan struct{})
	var once sync.Once
	f.fanout.onOffer = func(uuid.UUID, domain.OfferSummary) {
		once.Do(func() { close(offered) })
	}

	f.coord.Launch(inc)
	<-offered

	if _, err := f.incidents.Cancel(ctx, inc.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	f.coord.Abort(inc.ID)
	f.coord.Wait()

	f.fanout.mu.Lock()
	revoked := len(f.fanout.cancelled) == 1 &&
		f.fanout.cancelled[0] == [2]uuid.UUID{volA, inc.ID}
	f.fanout.mu.Unlock()
	if !revoked {
		t.Fatalf("expected the outstanding offer to A to be revoked")
	}

	err := f.coord.HandleResponse(ctx, inc.ID, volA, domain.ResponseAccept)
	if !errors.Is(err, e.ErrStaleResponse) {
		t.Fatalf("late accept must be stale, got %v", err)
	}

	got, _ := f.incidents.Get(ctx, inc.ID)
	if got.State != domain.IncidentCancelled || got.AssignedVolunteerID != nil {
		t.Fatalf("cancelled incident must stay cancelled: %+v", got)
	}
}

// A volunteer whose accept arrives after they were reserved elsewhere is
// treated as a decline and escalation continues.
func TestCoordinator_ReservationConflictFallsThrough(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()

	volA := f.addVolunteer(t, 0.001)
	volB := f.addVolunteer(t, 0.002)

	// A is still in the index but already committed to another incident:
	// the client-race the registry guard exists for.
	if ok, _ := f.registry.TryReserve(ctx, volA, uuid.New()); !ok {
		t.Fatalf("setup reserve failed")
	}

	inc := f.newIncident(t)
	f.fanout.onOffer = func(v uuid.UUID, _ domain.OfferSummary) {
		_ = f.coord.HandleResponse(ctx, inc.ID, v, domain.ResponseAccept)
	}

	f.dispatchAndWait(inc)

	got, _ := f.incidents.Get(ctx, inc.ID)
	if got.State != domain.IncidentAssigned || got.AssignedVolunteerID == nil || *got.AssignedVolunteerID != volB {
		t.Fatalf("expected fallthrough assignment to B, got %+v", got)
	}

	wantOutcomes := []domain.OfferOutcome{domain.OfferDeclined, domain.OfferAccepted}
	gotOutcomes := outcomes(got)
	if len(gotOutcomes) != 2 || gotOutcomes[0] != wantOutcomes[0] || gotOutcomes[1] != wantOutcomes[1] {
		t.Fatalf("expected outcomes %v, got %v", wantOutcomes, gotOutcomes)
	}
}

// Delivery failure counts as a timeout without waiting out the deadline.
func TestCoordinator_DeliveryFailureTreatedAsTimeout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{OfferTTL: time.Second})
	ctx := context.Background()

	volA := f.addVolunteer(t, 0.001)
	volB := f.addVolunteer(t, 0.002)
	f.fanout.failFor[volA] = true

	inc := f.newIncident(t)
	f.fanout.onOffer = func(v uuid.UUID, _ domain.OfferSummary) {
		if v == volB {
			_ = f.coord.HandleResponse(ctx, inc.ID, v, domain.ResponseAccept)
		}
	}

	start := time.Now()
	f.dispatchAndWait(inc)

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("delivery failure must not wait out the deadline, took %s", elapsed)
	}

	got, _ := f.incidents.Get(ctx, inc.ID)
	if got.AssignedVolunteerID == nil || *got.AssignedVolunteerID != volB {
		t.Fatalf("expected assignment to B, got %+v", got)
	}
	gotOutcomes := outcomes(got)
	if len(gotOutcomes) != 2 || gotOutcomes[0] != domain.OfferTimedOut {
		t.Fatalf("undeliverable offer must be recorded as timed out: %v", gotOutcomes)
	}
}

// Everyone stays silent: dispatch must terminate in a bounded number of
// deadline cycles, never loop.
func TestCoordinator_ExhaustionTerminates(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{OfferTTL: 30 * time.Millisecond, MaxRounds: 2})

	f.addVolunteer(t, 0.001)
	f.addVolunteer(t, 0.002)

	inc := f.newIncident(t)

	done := make(chan struct{})
	go func() {
		f.dispatchAndWait(inc)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatch did not terminate after candidate exhaustion")
	}

	got, _ := f.incidents.Get(context.Background(), inc.ID)
	if got.State != domain.IncidentUnassignable {
		t.Fatalf("expected unassignable, got %s", got.State)
	}
	// 2 volunteers × 2 rounds, each offered exactly once per round.
	if f.fanout.offerCount() != 4 {
		t.Fatalf("expected 4 offers, got %d", f.fanout.offerCount())
	}
}

// Sequential offering: at most one outstanding offer per incident, ever.
func TestCoordinator_OffersAreSequential(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{OfferTTL: 30 * time.Millisecond})

	for i := 1; i <= 4; i++ {
		f.addVolunteer(t, float64(i)*0.001)
	}
	inc := f.newIncident(t)

	var maxOutstanding int
	var mu sync.Mutex
	f.fanout.onOffer = func(uuid.UUID, domain.OfferSummary) {
		mu.Lock()
		if n := f.coord.mailbox.outstanding(inc.ID); n > maxOutstanding {
			maxOutstanding = n
		}
		mu.Unlock()
	}

	f.dispatchAndWait(inc)

	if maxOutstanding > 1 {
		t.Fatalf("more than one outstanding offer observed: %d", maxOutstanding)
	}
}

// Offer payloads must stay privacy-reduced before commit: coarse distance
// and accuracy band only.
func TestCoordinator_OfferSummaryIsPrivacyReduced(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()

	f.addVolunteer(t, 0.013) // ~1.44 km
	inc := f.newIncident(t)

	f.fanout.onOffer = func(v uuid.UUID, _ domain.OfferSummary) {
		_ = f.coord.HandleResponse(ctx, inc.ID, v, domain.ResponseAccept)
	}
	f.dispatchAndWait(inc)

	f.fanout.mu.Lock()
	defer f.fanout.mu.Unlock()
	if len(f.fanout.offers) != 1 {
		t.Fatalf("expected one offer, got %d", len(f.fanout.offers))
	}
	summary := f.fanout.offers[0].summary

	if summary.DistanceKM != math.Round(summary.DistanceKM*10)/10 {
		t.Fatalf("distance must be rounded to 0.1 km, got %v", summary.DistanceKM)
	}
	if summary.Accuracy != "precise" {
		t.Fatalf("expected precise accuracy band for 25 m fix, got %q", summary.Accuracy)
	}
	if summary.IncidentID != inc.ID {
		t.Fatalf("summary references wrong incident")
	}
}

// A second accept racing the first is stale; the assignment never changes.
func TestCoordinator_DuplicateAcceptIsStale(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{OfferTTL: time.Second})
	ctx := context.Background()

	volA := f.addVolunteer(t, 0.001)
	inc := f.newIncident(t)

	responded := make(chan error, 2)
	f.fanout.onOffer = func(v uuid.UUID, _ domain.OfferSummary) {
		responded <- f.coord.HandleResponse(ctx, inc.ID, v, domain.ResponseAccept)
		responded <- f.coord.HandleResponse(ctx, inc.ID, v, domain.ResponseAccept)
	}

	f.dispatchAndWait(inc)

	first, second := <-responded, <-responded
	if first != nil {
		t.Fatalf("first accept should be routed, got %v", first)
	}
	if !errors.Is(second, e.ErrStaleResponse) {
		t.Fatalf("duplicate accept must be stale, got %v", second)
	}

	got, _ := f.incidents.Get(ctx, inc.ID)
	if got.AssignedVolunteerID == nil || *got.AssignedVolunteerID != volA {
		t.Fatalf("assignment must stand: %+v", got)
	}
}

// A volunteer committed to one incident drops out of the ranking and never
// receives offers for a second incident while busy.
func TestCoordinator_ReservedVolunteerNotOffered(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()

	volA := f.addVolunteer(t, 0.001)
	volB := f.addVolunteer(t, 0.002)

	f.fanout.onOffer = func(v uuid.UUID, s domain.OfferSummary) {
		_ = f.coord.HandleResponse(ctx, s.IncidentID, v, domain.ResponseAccept)
	}

	first := f.newIncident(t)
	f.dispatchAndWait(first)

	got, _ := f.incidents.Get(ctx, first.ID)
	if got.AssignedVolunteerID == nil || *got.AssignedVolunteerID != volA {
		t.Fatalf("expected first incident assigned to A, got %+v", got)
	}

	second := f.newIncident(t)
	f.dispatchAndWait(second)

	got, _ = f.incidents.Get(ctx, second.ID)
	if got.State != domain.IncidentAssigned || got.AssignedVolunteerID == nil || *got.AssignedVolunteerID != volB {
		t.Fatalf("expected second incident assigned to B, got %+v", got)
	}

	f.fanout.mu.Lock()
	defer f.fanout.mu.Unlock()
	for _, call := range f.fanout.offers {
		if call.volunteerID == volA && call.summary.IncidentID == second.ID {
			t.Fatalf("busy volunteer received an offer for a second incident")
		}
	}
}

// An accept that lands inside the deadline but is read only after the timer
// has fired must still win the assignment, even when offer delivery itself
// outlasts the deadline.
func TestCoordinator_AcceptDuringSlowDeliveryStillAssigns(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{OfferTTL: 50 * time.Millisecond})
	ctx := context.Background()

	volA := f.addVolunteer(t, 0.001)
	inc := f.newIncident(t)

	f.fanout.delay = 200 * time.Millisecond
	f.fanout.onOffer = func(v uuid.UUID, s domain.OfferSummary) {
		_ = f.coord.HandleResponse(ctx, s.IncidentID, v, domain.ResponseAccept)
	}

	f.dispatchAndWait(inc)

	got, _ := f.incidents.Get(ctx, inc.ID)
	if got.State != domain.IncidentAssigned || got.AssignedVolunteerID == nil || *got.AssignedVolunteerID != volA {
		t.Fatalf("in-deadline accept must assign despite slow delivery, got %+v", got)
	}
	gotOutcomes := outcomes(got)
	if len(gotOutcomes) != 1 || gotOutcomes[0] != domain.OfferAccepted {
		t.Fatalf("expected a single accepted outcome, got %v", gotOutcomes)
	}
}
