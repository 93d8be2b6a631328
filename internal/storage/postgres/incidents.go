package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lifeline/internal/domain"
	"lifeline/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IncidentRepo owns incident records and every lifecycle transition. Guarded
// transitions are conditional UPDATEs with the expected source state in the
// WHERE clause; zero rows affected means the guard failed.
type IncidentRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIncidentRepo(pool *pgxpool.Pool, logger *slog.Logger) *IncidentRepo {
	return &IncidentRepo{pool: pool, logger: logger}
}

func (r *IncidentRepo) Create(ctx context.Context, patientID uuid.UUID, loc domain.Location) (*domain.Incident, error) {
	const op = "postgres.Incident.Create"

	if loc.Lat < -90 || loc.Lat > 90 || loc.Lng < -180 || loc.Lng > 180 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	inc := &domain.Incident{
		ID:        uuid.New(),
		PatientID: patientID,
		Location:  loc,
		State:     domain.IncidentCreated,
		CreatedAt: time.Now().UTC(),
	}

	const query = `
		INSERT INTO incidents (id, patient_id, geo_point, accuracy_m, state, created_at)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326), $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		inc.ID,
		inc.PatientID,
		inc.Location.Lng,
		inc.Location.Lat,
		inc.Location.AccuracyM,
		inc.State,
		inc.CreatedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return inc, nil
}

func (r *IncidentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	const op = "postgres.Incident.Get"

	const query = `
		SELECT id,
			   patient_id,
			   ST_Y(geo_point::geometry) AS lat,
			   ST_X(geo_point::geometry) AS lng,
			   accuracy_m,
			   state,
			   assigned_volunteer_id,
			   assigned_at,
			   created_at
		FROM incidents
		WHERE id = $1
	`

	var inc domain.Incident
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&inc.ID,
		&inc.PatientID,
		&inc.Location.Lat,
		&inc.Location.Lng,
		&inc.Location.AccuracyM,
		&inc.State,
		&inc.AssignedVolunteerID,
		&inc.AssignedAt,
		&inc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	history, err := r.offerHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	inc.OfferHistory = history

	return &inc, nil
}

func (r *IncidentRepo) offerHistory(ctx context.Context, id uuid.UUID) ([]domain.OfferRecord, error) {
	const op = "postgres.Incident.offerHistory"

	const query = `
		SELECT volunteer_id, offered_at, deadline, round, outcome
		FROM incident_offers
		WHERE incident_id = $1
		ORDER BY offered_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var history []domain.OfferRecord
	for rows.Next() {
		var rec domain.OfferRecord
		if err := rows.Scan(&rec.VolunteerID, &rec.OfferedAt, &rec.Deadline, &rec.Round, &rec.Outcome); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return history, nil
}

func (r *IncidentRepo) BeginDispatch(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.Incident.BeginDispatch"

	const query = `
		UPDATE incidents SET state = 'dispatching'
		WHERE id = $1 AND state = 'created'
	`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidTransition)
	}
	return nil
}

func (r *IncidentRepo) RecordOffer(ctx context.Context, id, volunteerID uuid.UUID, offeredAt, deadline time.Time, round int) error {
	const op = "postgres.Incident.RecordOffer"

	// The (incident_id, volunteer_id, round) unique constraint enforces the
	// no-repeat-within-a-cycle rule at the store.
	const query = `
		INSERT INTO incident_offers (incident_id, volunteer_id, offered_at, deadline, round)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, id, volunteerID, offeredAt, deadline, round)
	if err != nil {
		wrapped := e.WrapError(ctx, op, err)
		if errors.Is(wrapped, e.ErrUniqueViolation) {
			return fmt.Errorf("%s: duplicate offer in round %d: %w", op, round, e.ErrConflict)
		}
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return wrapped
	}
	return nil
}

func (r *IncidentRepo) RecordOutcome(ctx context.Context, id, volunteerID uuid.UUID, outcome domain.OfferOutcome) error {
	const op = "postgres.Incident.RecordOutcome"

	const query = `
		UPDATE incident_offers SET outcome = $3
		WHERE id = (
			SELECT id FROM incident_offers
			WHERE incident_id = $1 AND volunteer_id = $2 AND outcome IS NULL
			ORDER BY offered_at DESC, id DESC
			LIMIT 1
		)
	`

	cmd, err := r.pool.Exec(ctx, query, id, volunteerID, outcome)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: no open offer for volunteer: %w", op, e.ErrNotFound)
	}
	return nil
}

// CommitAssignment succeeds only while the incident is still dispatching with
// no assignee; false reports a lost commit race, never an error.
func (r *IncidentRepo) CommitAssignment(ctx context.Context, id, volunteerID uuid.UUID) (bool, error) {
	const op = "postgres.Incident.CommitAssignment"

	const query = `
		UPDATE incidents
		SET state = 'assigned', assigned_volunteer_id = $2, assigned_at = NOW()
		WHERE id = $1 AND state = 'dispatching' AND assigned_volunteer_id IS NULL
	`

	cmd, err := r.pool.Exec(ctx, query, id, volunteerID)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return false, e.WrapError(ctx, op, err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *IncidentRepo) Resolve(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.Incident.Resolve"

	const query = `
		UPDATE incidents SET state = 'resolved'
		WHERE id = $1 AND state = 'assigned'
	`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidTransition)
	}
	return nil
}

func (r *IncidentRepo) Cancel(ctx context.Context, id uuid.UUID) (*uuid.UUID, error) {
	const op = "postgres.Incident.Cancel"

	const query = `
		UPDATE incidents
		SET state = 'cancelled', assigned_volunteer_id = NULL, assigned_at = NULL
		WHERE id = $1 AND state IN ('created', 'dispatching', 'assigned')
		RETURNING (SELECT assigned_volunteer_id FROM incidents WHERE id = $1)
	`

	var prev *uuid.UUID
	err := r.pool.QueryRow(ctx, query, id).Scan(&prev)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidTransition)
		}
		r.logger.Error("db queryrow failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return prev, nil
}

func (r *IncidentRepo) MarkUnassignable(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.Incident.MarkUnassignable"

	const query = `
		UPDATE incidents SET state = 'unassignable'
		WHERE id = $1 AND state = 'dispatching'
	`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidTransition)
	}
	return nil
}

// Reopen reverts a withdraw: ASSIGNED → DISPATCHING, conditional on the
// caller still being the assignee.
func (r *IncidentRepo) Reopen(ctx context.Context, id, volunteerID uuid.UUID) (bool, error) {
	const op = "postgres.Incident.Reopen"

	const query = `
		UPDATE incidents
		SET state = 'dispatching', assigned_volunteer_id = NULL, assigned_at = NULL
		WHERE id = $1 AND state = 'assigned' AND assigned_volunteer_id = $2
	`

	cmd, err := r.pool.Exec(ctx, query, id, volunteerID)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return false, e.WrapError(ctx, op, err)
	}
	return cmd.RowsAffected() == 1, nil
}
