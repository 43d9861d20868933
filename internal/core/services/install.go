package services

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

type InstallService struct {
	installs      ports.InstallRepository
	checkpoints   ports.CheckpointRepository
	host          ports.HostStore
	defaultMethod domain.InstallMethod
}

// NewInstallService builds the install service. defaultMethod applies when a
// request does not name one; anything other than "copy" falls back to "link".
func NewInstallService(installs ports.InstallRepository, checkpoints ports.CheckpointRepository, host ports.HostStore, defaultMethod string) *InstallService {
	m := domain.InstallMethod(defaultMethod)
	if m != domain.InstallMethodCopy {
		m = domain.InstallMethodLink
	}
	return &InstallService{installs: installs, checkpoints: checkpoints, host: host, defaultMethod: m}
}

// Install places a READY checkpoint under the host plugin model directory.
func (s *InstallService) Install(ctx context.Context, checkpointID uuid.UUID, method string) (*domain.Install, error) {
	if err := domain.ValidateInstallMethod(method); err != nil {
		return nil, err
	}
	m := domain.InstallMethod(method)
	if m == "" {
		m = s.defaultMethod
	}

	cp, err := s.checkpoints.GetByID(ctx, checkpointID)
	if err != nil {
		return nil, err
	}
	if cp.Status != domain.CheckpointStatusReady {
		return nil, domain.ErrCheckpointNotReady
	}

	// Reject a registered occupant before touching the filesystem.
	if existing, err := s.installs.GetByHostPath(ctx, filepath.Join(s.host.Dir(), cp.Name)); err != nil && !errors.Is(err, domain.ErrInstallNotFound) {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrInstallExists
	}

	hostPath, err := s.host.Place(cp.Name, cp.LocalPath, m)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	install := &domain.Install{
		ID:           uuid.New(),
		CheckpointID: checkpointID,
		HostPath:     hostPath,
		Method:       m,
		Status:       domain.InstallStatusPresent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.installs.Create(ctx, install); err != nil {
		return nil, err
	}
	return install, nil
}

func (s *InstallService) Get(ctx context.Context, id uuid.UUID) (*domain.Install, error) {
	return s.installs.GetByID(ctx, id)
}

func (s *InstallService) List(ctx context.Context, checkpointID *uuid.UUID) ([]*domain.Install, error) {
	return s.installs.List(ctx, checkpointID)
}

func (s *InstallService) Uninstall(ctx context.Context, id uuid.UUID) error {
	install, err := s.installs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.host.Remove(install.HostPath); err != nil {
		return err
	}
	return s.installs.Delete(ctx, id)
}

// Verify re-checks one install against the host directory and updates its
// recorded status.
func (s *InstallService) Verify(ctx context.Context, id uuid.UUID) (*domain.Install, error) {
	install, err := s.installs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status, err := s.host.Verify(install.HostPath)
	if err != nil {
		return nil, err
	}
	if status != install.Status {
		install.Status = status
		install.UpdatedAt = time.Now()
		if err := s.installs.Update(ctx, install); err != nil {
			return nil, err
		}
	}
	return install, nil
}

// VerifyAll re-checks every install. Invoked on demand and by the host
// directory watcher after filesystem events settle.
func (s *InstallService) VerifyAll(ctx context.Context) error {
	installs, err := s.installs.List(ctx, nil)
	if err != nil {
		return err
	}
	for _, install := range installs {
		if _, err := s.Verify(ctx, install.ID); err != nil {
			log.WithError(err).WithField("install_id", install.ID).Warn("verify install failed")
		}
	}
	return nil
}
