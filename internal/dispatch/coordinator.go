package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/geo"
	"lifeline/internal/metrics"
	"lifeline/pkg/e"

	"github.com/google/uuid"
)

//go:generate mockgen -source=coordinator.go -destination=mocks/mock.go

// VolunteerRegistry is the volunteer-side half of the double-booking guard.
type VolunteerRegistry interface {
	TryReserve(ctx context.Context, volunteerID, incidentID uuid.UUID) (bool, error)
	Release(ctx context.Context, volunteerID uuid.UUID) error
}

// IncidentStore is the single source of truth for incident lifecycle state.
type IncidentStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	BeginDispatch(ctx context.Context, id uuid.UUID) error
	RecordOffer(ctx context.Context, id, volunteerID uuid.UUID, offeredAt, deadline time.Time, round int) error
	RecordOutcome(ctx context.Context, id, volunteerID uuid.UUID, outcome domain.OfferOutcome) error
	CommitAssignment(ctx context.Context, id, volunteerID uuid.UUID) (bool, error)
	MarkUnassignable(ctx context.Context, id uuid.UUID) error
}

// CandidateSource answers "k nearest rankable volunteers to this point".
type CandidateSource interface {
	NearestIdle(ctx context.Context, lat, lng float64, k int, maxRadiusKM float64) ([]geo.Candidate, error)
}

// Fanout delivers offers to volunteer devices. It only relays; the
// coordinator's deadline timer decides timeouts.
type Fanout interface {
	Offer(ctx context.Context, volunteerID uuid.UUID, summary domain.OfferSummary) error
	CancelOffer(ctx context.Context, volunteerID, incidentID uuid.UUID) error
}

// Config tunes one dispatch cycle.
type Config struct {
	OfferTTL       time.Duration
	Candidates     int
	SearchRadiusKM float64
	MaxRadiusKM    float64
	MaxRounds      int
}

// Coordinator runs the assignment state machine, one goroutine per incident.
// It holds no persistent state of its own; everything durable lives in the
// registry and the incident store, and every guarded transition there is a
// single atomic conditional operation.
type Coordinator struct {
	cfg        Config
	registry   VolunteerRegistry
	incidents  IncidentStore
	candidates CandidateSource
	fanout     Fanout
	mailbox    *mailbox
	sink       metrics.Sink
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.Mutex
	active  map[uuid.UUID]context.CancelFunc
	baseCtx context.Context
	wg      sync.WaitGroup
}

func NewCoordinator(
	cfg Config,
	registry VolunteerRegistry,
	incidents IncidentStore,
	candidates CandidateSource,
	fanout Fanout,
	sink metrics.Sink,
	logger *slog.Logger,
) (*Coordinator, error) {
	if registry == nil || incidents == nil || candidates == nil || fanout == nil {
		return nil, fmt.Errorf("dispatch: nil dependency provided to NewCoordinator")
	}
	if cfg.OfferTTL <= 0 {
		cfg.OfferTTL = 25 * time.Second
	}
	if cfg.Candidates < 1 {
		cfg.Candidates = 5
	}
	if cfg.MaxRounds < 1 {
		cfg.MaxRounds = 1
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}

	return &Coordinator{
		cfg:        cfg,
		registry:   registry,
		incidents:  incidents,
		candidates: candidates,
		fanout:     fanout,
		mailbox:    newMailbox(),
		sink:       sink,
		logger:     logger,
		now:        time.Now,
		active:     make(map[uuid.UUID]context.CancelFunc),
		baseCtx:    context.Background(),
	}, nil
}

// Start binds the coordinator's dispatch goroutines to the application
// context so shutdown interrupts outstanding waits.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	c.baseCtx = ctx
	c.mu.Unlock()
}

// Wait blocks until all in-flight dispatch goroutines have finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Launch starts (or resumes, after a reopen) the dispatch task for the
// incident. It returns immediately; the state machine runs in its own
// goroutine.
func (c *Coordinator) Launch(inc *domain.Incident) {
	c.mu.Lock()
	ctx, cancel := context.WithCancel(c.baseCtx)
	c.active[inc.ID] = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(ctx, inc)
}

// Abort stops the incident's dispatch goroutine, if one is running. The
// caller is responsible for the store-side cancel transition.
func (c *Coordinator) Abort(incidentID uuid.UUID) {
	c.mu.Lock()
	cancel, ok := c.active[incidentID]
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

// HandleResponse routes a volunteer's accept/decline to the incident's
// outstanding offer. Anything that does not match the single open offer is
// stale: late accepts after a winner, duplicate taps, responses for an
// incident that already left dispatching. Stale responses are logged and
// never actioned.
func (c *Coordinator) HandleResponse(ctx context.Context, incidentID, volunteerID uuid.UUID, resp domain.OfferResponse) error {
	const op = "dispatch.Coordinator.HandleResponse"

	if !c.mailbox.deliver(incidentID, volunteerID, resp, c.now()) {
		c.logger.Info("stale offer response discarded",
			slog.String("incident_id", incidentID.String()),
			slog.String("volunteer_id", volunteerID.String()),
			slog.String("response", string(resp)),
		)
		return fmt.Errorf("%s: %w", op, e.ErrStaleResponse)
	}
	return nil
}

type offerResult int

const (
	offerNext      offerResult = iota // declined, timed out, or lost reservation
	offerCommitted                    // assignment committed, dispatch done
	offerStopped                      // cancelled or storage failure, stop without transition
)

func (c *Coordinator) run(ctx context.Context, inc *domain.Incident) {
	defer c.wg.Done()
	defer c.clearActive(inc.ID)

	l := c.logger.With(slog.String("incident_id", inc.ID.String()))
	startedAt := c.now()

	if err := c.incidents.BeginDispatch(ctx, inc.ID); err != nil {
		// A reopened incident is already dispatching; anything else is fatal.
		if !errors.Is(err, e.ErrInvalidTransition) || !c.isDispatching(ctx, inc.ID) {
			l.Error("begin dispatch failed", slog.Any("error", err))
			return
		}
	}

	l.Info("dispatch started",
		slog.Float64("lat", inc.Location.Lat),
		slog.Float64("lng", inc.Location.Lng),
	)

	for round := 1; round <= c.cfg.MaxRounds; round++ {
		candidates, err := c.rankedCandidates(ctx, inc, l)
		if err != nil {
			// Fail closed: leave the incident dispatching rather than guess.
			l.Error("candidate query failed", slog.Any("error", err))
			return
		}
		if len(candidates) == 0 {
			break
		}

		l.Info("dispatch round", slog.Int("round", round), slog.Int("candidates", len(candidates)))

		for _, cand := range candidates {
			if ctx.Err() != nil {
				l.Info("dispatch stopped", slog.String("reason", ctx.Err().Error()))
				return
			}

			switch c.offerAndWait(ctx, inc, cand, round, startedAt, l) {
			case offerCommitted:
				return
			case offerStopped:
				return
			}
		}
	}

	if err := c.incidents.MarkUnassignable(ctx, inc.ID); err != nil {
		// Lost to a concurrent cancel; nothing left to do.
		l.Warn("mark unassignable failed", slog.Any("error", err))
		return
	}
	c.sink.IncidentFinished(string(domain.IncidentUnassignable))
	l.Warn("no volunteers available, incident unassignable")
}

// rankedCandidates queries at the configured radius and widens once (doubled,
// capped) when nothing is found.
func (c *Coordinator) rankedCandidates(ctx context.Context, inc *domain.Incident, l *slog.Logger) ([]geo.Candidate, error) {
	radius := c.cfg.SearchRadiusKM

	candidates, err := c.candidates.NearestIdle(ctx, inc.Location.Lat, inc.Location.Lng, c.cfg.Candidates, radius)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 || radius >= c.cfg.MaxRadiusKM {
		return candidates, nil
	}

	radius = math.Min(radius*2, c.cfg.MaxRadiusKM)
	l.Info("widening search radius", slog.Float64("radius_km", radius))

	return c.candidates.NearestIdle(ctx, inc.Location.Lat, inc.Location.Lng, c.cfg.Candidates, radius)
}

func (c *Coordinator) offerAndWait(ctx context.Context, inc *domain.Incident, cand geo.Candidate, round int, startedAt time.Time, l *slog.Logger) offerResult {
	volID := cand.VolunteerID
	offeredAt := c.now()
	deadline := offeredAt.Add(c.cfg.OfferTTL)

	if err := c.incidents.RecordOffer(ctx, inc.ID, volID, offeredAt, deadline, round); err != nil {
		if errors.Is(err, e.ErrConflict) {
			// Already offered this round; skip to the next candidate.
			return offerNext
		}
		l.Error("record offer failed", slog.Any("error", err))
		return offerStopped
	}

	ch := c.mailbox.open(inc.ID, volID, deadline)
	defer c.mailbox.close(inc.ID)

	summary := domain.OfferSummary{
		IncidentID: inc.ID,
		DistanceKM: math.Round(cand.DistanceKM*10) / 10,
		Accuracy:   accuracyBand(inc.Location.AccuracyM),
		OfferedAt:  offeredAt,
		Deadline:   deadline,
	}

	l.Info("offering incident",
		slog.String("volunteer_id", volID.String()),
		slog.Float64("distance_km", summary.DistanceKM),
		slog.Int("round", round),
	)

	if err := c.fanout.Offer(ctx, volID, summary); err != nil {
		// Transport failure is indistinguishable from a volunteer who never
		// saw the offer; both count as a timeout.
		l.Warn("offer delivery failed", slog.String("volunteer_id", volID.String()), slog.Any("error", err))
		c.recordOutcome(ctx, inc.ID, volID, domain.OfferTimedOut, l)
		return offerNext
	}

	// Anchored to the deadline the mailbox enforces, not to when Offer
	// returned, so a slow fanout cannot stretch the window.
	timer := time.NewTimer(deadline.Sub(c.now()))
	defer timer.Stop()

	select {
	case resp := <-ch:
		return c.settle(ctx, inc, volID, resp, startedAt, l)

	case <-timer.C:
		// A response that beat the deadline may already be buffered; it wins
		// over the timer.
		select {
		case resp := <-ch:
			return c.settle(ctx, inc, volID, resp, startedAt, l)
		default:
		}
		c.recordOutcome(ctx, inc.ID, volID, domain.OfferTimedOut, l)
		if err := c.fanout.CancelOffer(ctx, volID, inc.ID); err != nil {
			l.Warn("cancel offer failed", slog.Any("error", err))
		}
		return offerNext

	case <-ctx.Done():
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.fanout.CancelOffer(cleanupCtx, volID, inc.ID); err != nil {
			l.Warn("cancel offer failed", slog.Any("error", err))
		}
		return offerStopped
	}
}

func (c *Coordinator) settle(ctx context.Context, inc *domain.Incident, volID uuid.UUID, resp domain.OfferResponse, startedAt time.Time, l *slog.Logger) offerResult {
	if resp == domain.ResponseDecline {
		c.recordOutcome(ctx, inc.ID, volID, domain.OfferDeclined, l)
		return offerNext
	}
	return c.commit(ctx, inc, volID, startedAt, l)
}

// commit performs the two-phase accept: reserve the volunteer, then commit
// the assignment. A failed reservation is a decline in disguise; a failed
// commit after a successful reservation rolls the reservation back.
func (c *Coordinator) commit(ctx context.Context, inc *domain.Incident, volID uuid.UUID, startedAt time.Time, l *slog.Logger) offerResult {
	reserved, err := c.registry.TryReserve(ctx, volID, inc.ID)
	if err != nil {
		l.Error("reserve failed", slog.Any("error", err))
		return offerStopped
	}
	if !reserved {
		// Volunteer went busy or offline between offer and accept.
		l.Info("reservation lost, treating accept as decline", slog.String("volunteer_id", volID.String()))
		c.recordOutcome(ctx, inc.ID, volID, domain.OfferDeclined, l)
		return offerNext
	}

	committed, err := c.incidents.CommitAssignment(ctx, inc.ID, volID)
	if err != nil || !committed {
		if relErr := c.registry.Release(ctx, volID); relErr != nil {
			l.Error("release after failed commit", slog.Any("error", relErr))
		}
		if err != nil {
			l.Error("commit failed", slog.Any("error", err))
		} else {
			l.Error("commit conflict after successful reservation", slog.String("volunteer_id", volID.String()))
		}
		return offerStopped
	}

	c.recordOutcome(ctx, inc.ID, volID, domain.OfferAccepted, l)
	c.sink.IncidentFinished(string(domain.IncidentAssigned))
	c.sink.TimeToAssign(c.now().Sub(startedAt))

	l.Info("incident assigned",
		slog.String("volunteer_id", volID.String()),
		slog.Duration("time_to_assign", c.now().Sub(startedAt)),
	)
	return offerCommitted
}

func (c *Coordinator) recordOutcome(ctx context.Context, incidentID, volunteerID uuid.UUID, outcome domain.OfferOutcome, l *slog.Logger) {
	c.sink.OfferResolved(string(outcome))
	if err := c.incidents.RecordOutcome(ctx, incidentID, volunteerID, outcome); err != nil {
		l.Error("record outcome failed", slog.Any("error", err))
	}
}

func (c *Coordinator) isDispatching(ctx context.Context, id uuid.UUID) bool {
	inc, err := c.incidents.Get(ctx, id)
	return err == nil && inc.State == domain.IncidentDispatching
}

func (c *Coordinator) clearActive(id uuid.UUID) {
	c.mu.Lock()
	if cancel, ok := c.active[id]; ok {
		cancel()
		delete(c.active, id)
	}
	c.mu.Unlock()
}

func accuracyBand(accuracyM float64) string {
	if accuracyM > 0 && accuracyM <= 50 {
		return "precise"
	}
	return "approximate"
}
