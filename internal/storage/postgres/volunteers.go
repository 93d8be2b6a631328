package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/geo"
	"lifeline/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VolunteerRepo is the authoritative volunteer availability store. Reserve and
// release are single conditional UPDATEs; the RowsAffected check is the whole
// concurrency story, there is no read-then-write anywhere.
type VolunteerRepo struct {
	pool           *pgxpool.Pool
	logger         *slog.Logger
	positionMaxAge time.Duration
}

func NewVolunteerRepo(pool *pgxpool.Pool, logger *slog.Logger, positionMaxAge time.Duration) *VolunteerRepo {
	return &VolunteerRepo{pool: pool, logger: logger, positionMaxAge: positionMaxAge}
}

func (r *VolunteerRepo) SetOnline(ctx context.Context, id uuid.UUID, pos domain.Position) error {
	const op = "postgres.Volunteer.SetOnline"

	if pos.Lat < -90 || pos.Lat > 90 || pos.Lng < -180 || pos.Lng > 180 {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}
	if pos.UpdatedAt.IsZero() {
		pos.UpdatedAt = time.Now().UTC()
	}

	// A busy volunteer coming back online keeps its reservation; everyone
	// else lands in online_idle.
	const query = `
		INSERT INTO volunteers (id, status, geo_point, position_updated_at)
		VALUES ($1, 'online_idle', ST_SetSRID(ST_MakePoint($2, $3), 4326), $4)
		ON CONFLICT (id) DO UPDATE
		SET status = CASE WHEN volunteers.status = 'online_busy'
			THEN volunteers.status ELSE 'online_idle' END,
			geo_point           = EXCLUDED.geo_point,
			position_updated_at = EXCLUDED.position_updated_at
	`

	_, err := r.pool.Exec(ctx, query, id, pos.Lng, pos.Lat, pos.UpdatedAt)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (r *VolunteerRepo) SetOffline(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.Volunteer.SetOffline"

	const query = `
		UPDATE volunteers
		SET status = 'offline', active_incident_id = NULL
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

func (r *VolunteerRepo) UpdatePosition(ctx context.Context, id uuid.UUID, pos domain.Position) error {
	const op = "postgres.Volunteer.UpdatePosition"

	if pos.Lat < -90 || pos.Lat > 90 || pos.Lng < -180 || pos.Lng > 180 {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}
	if pos.UpdatedAt.IsZero() {
		pos.UpdatedAt = time.Now().UTC()
	}

	const query = `
		UPDATE volunteers
		SET geo_point           = ST_SetSRID(ST_MakePoint($2, $3), 4326),
			position_updated_at = $4
		WHERE id = $1 AND status <> 'offline'
	`

	cmd, err := r.pool.Exec(ctx, query, id, pos.Lng, pos.Lat, pos.UpdatedAt)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrVolunteerOffline)
	}
	return nil
}

// TryReserve is the volunteer-side half of the double-booking guard: a single
// conditional update that only fires when the row is exactly online_idle with
// no active incident.
func (r *VolunteerRepo) TryReserve(ctx context.Context, id, incidentID uuid.UUID) (bool, error) {
	const op = "postgres.Volunteer.TryReserve"

	const query = `
		UPDATE volunteers
		SET status = 'online_busy', active_incident_id = $2
		WHERE id = $1 AND status = 'online_idle' AND active_incident_id IS NULL
	`

	cmd, err := r.pool.Exec(ctx, query, id, incidentID)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return false, e.WrapError(ctx, op, err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *VolunteerRepo) Release(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.Volunteer.Release"

	const query = `
		UPDATE volunteers
		SET status = 'online_idle', active_incident_id = NULL
		WHERE id = $1 AND status = 'online_busy'
	`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (r *VolunteerRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Volunteer, error) {
	const op = "postgres.Volunteer.Get"

	const query = `
		SELECT id,
			   status,
			   ST_Y(geo_point::geometry) AS lat,
			   ST_X(geo_point::geometry) AS lng,
			   position_updated_at,
			   active_incident_id
		FROM volunteers
		WHERE id = $1
	`

	var v domain.Volunteer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID,
		&v.Status,
		&v.Position.Lat,
		&v.Position.Lng,
		&v.Position.UpdatedAt,
		&v.ActiveIncidentID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}
	return &v, nil
}

// NearestIdle ranks online_idle volunteers with a fresh position by distance
// from the given point. The geography cast keeps ST_DWithin in meters.
func (r *VolunteerRepo) NearestIdle(ctx context.Context, lat, lng float64, k int, maxRadiusKM float64) ([]geo.Candidate, error) {
	const op = "postgres.Volunteer.NearestIdle"

	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || maxRadiusKM <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	const query = `
		SELECT id,
			   ST_Distance(geo_point::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) / 1000 AS distance_km
		FROM volunteers
		WHERE status = 'online_idle'
		  AND position_updated_at >= NOW() - ($4 * INTERVAL '1 second')
		  AND ST_DWithin(
			geo_point::geography,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3 * 1000
		  )
		ORDER BY distance_km ASC, position_updated_at DESC
		LIMIT $5
	`

	rows, err := r.pool.Query(ctx, query, lng, lat, maxRadiusKM, r.positionMaxAge.Seconds(), k)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	candidates := make([]geo.Candidate, 0, k)
	for rows.Next() {
		var c geo.Candidate
		if err := rows.Scan(&c.VolunteerID, &c.DistanceKM); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return candidates, nil
}
