package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

type installRepo struct {
	pool *pgxpool.Pool
}

func NewInstallRepository(pool *pgxpool.Pool) ports.InstallRepository {
	return &installRepo{pool: pool}
}

const installColumns = `id, checkpoint_id, host_path, method, status, created_at, updated_at`

func (r *installRepo) Create(ctx context.Context, install *domain.Install) error {
	query := `
		INSERT INTO install (id, checkpoint_id, host_path, method, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.pool.Exec(ctx, query,
		install.ID, install.CheckpointID, install.HostPath,
		string(install.Method), string(install.Status),
		install.CreatedAt, install.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrInstallExists
		}
		return fmt.Errorf("create install: %w", err)
	}
	return nil
}

func (r *installRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Install, error) {
	query := `SELECT ` + installColumns + ` FROM install WHERE id = $1`
	install, err := scanInstall(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstallNotFound
		}
		return nil, fmt.Errorf("get install by id: %w", err)
	}
	return install, nil
}

func (r *installRepo) GetByHostPath(ctx context.Context, hostPath string) (*domain.Install, error) {
	query := `SELECT ` + installColumns + ` FROM install WHERE host_path = $1`
	install, err := scanInstall(r.pool.QueryRow(ctx, query, hostPath))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstallNotFound
		}
		return nil, fmt.Errorf("get install by host path: %w", err)
	}
	return install, nil
}

func (r *installRepo) Update(ctx context.Context, install *domain.Install) error {
	query := `UPDATE install SET status=$1, updated_at=$2 WHERE id=$3`
	result, err := r.pool.Exec(ctx, query, string(install.Status), install.UpdatedAt, install.ID)
	if err != nil {
		return fmt.Errorf("update install: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrInstallNotFound
	}
	return nil
}

func (r *installRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM install WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete install: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrInstallNotFound
	}
	return nil
}

func (r *installRepo) List(ctx context.Context, checkpointID *uuid.UUID) ([]*domain.Install, error) {
	query := `SELECT ` + installColumns + ` FROM install`
	args := []interface{}{}
	if checkpointID != nil {
		query += ` WHERE checkpoint_id = $1`
		args = append(args, *checkpointID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list installs: %w", err)
	}
	defer rows.Close()

	installs := []*domain.Install{}
	for rows.Next() {
		install, err := scanInstall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan install: %w", err)
		}
		installs = append(installs, install)
	}
	return installs, rows.Err()
}

func scanInstall(row pgx.Row) (*domain.Install, error) {
	var install domain.Install
	var method, status string

	err := row.Scan(
		&install.ID, &install.CheckpointID, &install.HostPath,
		&method, &status, &install.CreatedAt, &install.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	install.Method = domain.InstallMethod(method)
	install.Status = domain.InstallStatus(status)
	return &install, nil
}
