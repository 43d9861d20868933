package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

type snapshotJobRepo struct {
	pool *pgxpool.Pool
}

func NewSnapshotJobRepository(pool *pgxpool.Pool) ports.SnapshotJobRepository {
	return &snapshotJobRepo{pool: pool}
}

const snapshotJobColumns = `
	id, checkpoint_id, status, allow_patterns, total_files, done_files,
	total_bytes, done_bytes, error, created_at, started_at, finished_at
`

func (r *snapshotJobRepo) Create(ctx context.Context, job *domain.SnapshotJob) error {
	patternsJSON, err := json.Marshal(job.AllowPatterns)
	if err != nil {
		return fmt.Errorf("marshal allow patterns: %w", err)
	}

	query := `
		INSERT INTO snapshot_job
			(id, checkpoint_id, status, allow_patterns, total_files, done_files,
			 total_bytes, done_bytes, error, created_at, started_at, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err = r.pool.Exec(ctx, query,
		job.ID, job.CheckpointID, string(job.Status), patternsJSON,
		job.TotalFiles, job.DoneFiles, job.TotalBytes, job.DoneBytes,
		job.Error, job.CreatedAt, job.StartedAt, job.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("create snapshot job: %w", err)
	}
	return nil
}

func (r *snapshotJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SnapshotJob, error) {
	query := `SELECT ` + snapshotJobColumns + ` FROM snapshot_job WHERE id = $1`
	job, err := scanSnapshotJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("get snapshot job by id: %w", err)
	}
	return job, nil
}

func (r *snapshotJobRepo) Update(ctx context.Context, job *domain.SnapshotJob) error {
	query := `
		UPDATE snapshot_job
		SET status=$1, total_files=$2, done_files=$3, total_bytes=$4,
			done_bytes=$5, error=$6, started_at=$7, finished_at=$8
		WHERE id=$9
	`
	result, err := r.pool.Exec(ctx, query,
		string(job.Status), job.TotalFiles, job.DoneFiles, job.TotalBytes,
		job.DoneBytes, job.Error, job.StartedAt, job.FinishedAt, job.ID,
	)
	if err != nil {
		return fmt.Errorf("update snapshot job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrSnapshotNotFound
	}
	return nil
}

func (r *snapshotJobRepo) List(ctx context.Context, filter ports.SnapshotListFilter) ([]*domain.SnapshotJob, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.CheckpointID != nil {
		args = append(args, *filter.CheckpointID)
		conditions = append(conditions, fmt.Sprintf("checkpoint_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM snapshot_job`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count snapshot jobs: %w", err)
	}

	args = append(args, filter.Limit)
	limitArg := len(args)
	args = append(args, filter.Offset)
	offsetArg := len(args)

	query := fmt.Sprintf(`SELECT %s FROM snapshot_job%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		snapshotJobColumns, where, limitArg, offsetArg)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list snapshot jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*domain.SnapshotJob{}
	for rows.Next() {
		job, err := scanSnapshotJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan snapshot job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}

func (r *snapshotJobRepo) ActiveForCheckpoint(ctx context.Context, checkpointID uuid.UUID) (*domain.SnapshotJob, error) {
	query := `
		SELECT ` + snapshotJobColumns + `
		FROM snapshot_job
		WHERE checkpoint_id = $1 AND status IN ('PENDING', 'RUNNING')
		ORDER BY created_at DESC
		LIMIT 1
	`
	job, err := scanSnapshotJob(r.pool.QueryRow(ctx, query, checkpointID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active snapshot job: %w", err)
	}
	return job, nil
}

func scanSnapshotJob(row pgx.Row) (*domain.SnapshotJob, error) {
	var job domain.SnapshotJob
	var status string
	var patternsJSON []byte

	err := row.Scan(
		&job.ID, &job.CheckpointID, &status, &patternsJSON,
		&job.TotalFiles, &job.DoneFiles, &job.TotalBytes, &job.DoneBytes,
		&job.Error, &job.CreatedAt, &job.StartedAt, &job.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Status = domain.SnapshotStatus(status)
	if len(patternsJSON) > 0 {
		if err := json.Unmarshal(patternsJSON, &job.AllowPatterns); err != nil {
			return nil, fmt.Errorf("unmarshal allow patterns: %w", err)
		}
	}
	return &job, nil
}
