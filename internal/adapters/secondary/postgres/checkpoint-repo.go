package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

type checkpointRepo struct {
	pool *pgxpool.Pool
}

func NewCheckpointRepository(pool *pgxpool.Pool) ports.CheckpointRepository {
	return &checkpointRepo{pool: pool}
}

const checkpointColumns = `
	id, created_at, updated_at, name, repo_id, revision, local_path,
	status, size_bytes, file_count, last_synced_at, labels
`

func (r *checkpointRepo) Create(ctx context.Context, cp *domain.Checkpoint) error {
	labelsJSON, err := json.Marshal(cp.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		INSERT INTO checkpoint
			(id, created_at, updated_at, name, repo_id, revision, local_path,
			 status, size_bytes, file_count, last_synced_at, labels)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err = r.pool.Exec(ctx, query,
		cp.ID, cp.CreatedAt, cp.UpdatedAt, cp.Name, cp.RepoID, cp.Revision,
		cp.LocalPath, string(cp.Status), cp.SizeBytes, cp.FileCount,
		cp.LastSyncedAt, labelsJSON,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrCheckpointNameConflict
		}
		return fmt.Errorf("create checkpoint: %w", err)
	}
	return nil
}

func (r *checkpointRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Checkpoint, error) {
	query := `SELECT ` + checkpointColumns + ` FROM checkpoint WHERE id = $1`
	cp, err := scanCheckpoint(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("get checkpoint by id: %w", err)
	}
	return cp, nil
}

func (r *checkpointRepo) GetByParams(ctx context.Context, name string, repoID string) (*domain.Checkpoint, error) {
	conditions := []string{}
	args := []interface{}{}
	if name != "" {
		args = append(args, name)
		conditions = append(conditions, fmt.Sprintf("name = $%d", len(args)))
	}
	if repoID != "" {
		args = append(args, repoID)
		conditions = append(conditions, fmt.Sprintf("repo_id = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return nil, domain.ErrCheckpointNotFound
	}

	query := `SELECT ` + checkpointColumns + ` FROM checkpoint WHERE ` + strings.Join(conditions, " AND ")
	cp, err := scanCheckpoint(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("get checkpoint by params: %w", err)
	}
	return cp, nil
}

func (r *checkpointRepo) Update(ctx context.Context, cp *domain.Checkpoint) error {
	labelsJSON, err := json.Marshal(cp.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	query := `
		UPDATE checkpoint
		SET name=$1, repo_id=$2, revision=$3, local_path=$4, status=$5,
			size_bytes=$6, file_count=$7, last_synced_at=$8, labels=$9,
			updated_at=NOW()
		WHERE id=$10
	`
	result, err := r.pool.Exec(ctx, query,
		cp.Name, cp.RepoID, cp.Revision, cp.LocalPath, string(cp.Status),
		cp.SizeBytes, cp.FileCount, cp.LastSyncedAt, labelsJSON, cp.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrCheckpointNameConflict
		}
		return fmt.Errorf("update checkpoint: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCheckpointNotFound
	}
	return nil
}

func (r *checkpointRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM checkpoint WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCheckpointNotFound
	}
	return nil
}

func (r *checkpointRepo) List(ctx context.Context, filter ports.CheckpointListFilter) ([]*domain.Checkpoint, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR repo_id ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM checkpoint`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count checkpoints: %w", err)
	}

	sortBy := "created_at"
	switch filter.SortBy {
	case "name", "updated_at", "last_synced_at", "size_bytes":
		sortBy = filter.SortBy
	}
	order := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		order = "ASC"
	}

	args = append(args, filter.Limit)
	limitArg := len(args)
	args = append(args, filter.Offset)
	offsetArg := len(args)

	query := fmt.Sprintf(`SELECT %s FROM checkpoint%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		checkpointColumns, where, sortBy, order, limitArg, offsetArg)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	checkpoints := []*domain.Checkpoint{}
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, cp)
	}
	return checkpoints, total, rows.Err()
}

func scanCheckpoint(row pgx.Row) (*domain.Checkpoint, error) {
	var cp domain.Checkpoint
	var status string
	var labelsJSON []byte

	err := row.Scan(
		&cp.ID, &cp.CreatedAt, &cp.UpdatedAt, &cp.Name, &cp.RepoID,
		&cp.Revision, &cp.LocalPath, &status, &cp.SizeBytes, &cp.FileCount,
		&cp.LastSyncedAt, &labelsJSON,
	)
	if err != nil {
		return nil, err
	}

	cp.Status = domain.CheckpointStatus(status)
	cp.Labels = map[string]string{}
	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &cp.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels: %w", err)
		}
	}
	return &cp, nil
}
