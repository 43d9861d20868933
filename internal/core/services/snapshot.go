package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

// SnapshotService runs snapshot downloads: it plans the file set from the hub
// tree listing, downloads the matches into a staging directory with bounded
// parallelism, and swaps the staging directory into the checkpoint's local
// path on success.
type SnapshotService struct {
	checkpoints ports.CheckpointRepository
	jobs        ports.SnapshotJobRepository
	hub         ports.HubClient
	cache       ports.RepoInfoCache
	store       ports.CheckpointStore
	concurrency int

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
	wg      sync.WaitGroup
}

func NewSnapshotService(
	checkpoints ports.CheckpointRepository,
	jobs ports.SnapshotJobRepository,
	hub ports.HubClient,
	cache ports.RepoInfoCache,
	store ports.CheckpointStore,
	concurrency int,
) *SnapshotService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &SnapshotService{
		checkpoints: checkpoints,
		jobs:        jobs,
		hub:         hub,
		cache:       cache,
		store:       store,
		concurrency: concurrency,
		cancels:     make(map[uuid.UUID]context.CancelFunc),
	}
}

func (s *SnapshotService) Get(ctx context.Context, id uuid.UUID) (*domain.SnapshotJob, error) {
	return s.jobs.GetByID(ctx, id)
}

func (s *SnapshotService) List(ctx context.Context, filter ports.SnapshotListFilter) ([]*domain.SnapshotJob, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.jobs.List(ctx, filter)
}

// RepoInfo returns hub metadata for a registered checkpoint, consulting the
// metadata cache first when one is configured.
func (s *SnapshotService) RepoInfo(ctx context.Context, checkpointID uuid.UUID) (*ports.RepoInfo, error) {
	cp, err := s.checkpoints.GetByID(ctx, checkpointID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if info, err := s.cache.Get(ctx, cp.RepoID, cp.Revision); err != nil {
			log.WithError(err).Warn("repo info cache get failed")
		} else if info != nil {
			return info, nil
		}
	}

	info, err := s.hub.RepoInfo(ctx, cp.RepoID, cp.Revision)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cp.RepoID, cp.Revision, info); err != nil {
			log.WithError(err).Warn("repo info cache set failed")
		}
	}
	return info, nil
}

// Plan returns the files a snapshot with the given patterns would download,
// without downloading anything.
func (s *SnapshotService) Plan(ctx context.Context, checkpointID uuid.UUID, patterns []string) ([]ports.HubFile, error) {
	cp, err := s.checkpoints.GetByID(ctx, checkpointID)
	if err != nil {
		return nil, err
	}
	patterns, err = normalizePatterns(patterns)
	if err != nil {
		return nil, err
	}

	files, err := s.hub.ListFiles(ctx, cp.RepoID, cp.Revision)
	if err != nil {
		return nil, err
	}
	return filterFiles(files, patterns), nil
}

// Start creates a snapshot job and launches the download in the background.
// One active job per checkpoint.
func (s *SnapshotService) Start(ctx context.Context, checkpointID uuid.UUID, patterns []string) (*domain.SnapshotJob, error) {
	cp, err := s.checkpoints.GetByID(ctx, checkpointID)
	if err != nil {
		return nil, err
	}

	if active, err := s.jobs.ActiveForCheckpoint(ctx, checkpointID); err != nil {
		return nil, err
	} else if active != nil {
		return nil, domain.ErrSnapshotRunning
	}

	patterns, err = normalizePatterns(patterns)
	if err != nil {
		return nil, err
	}

	job := &domain.SnapshotJob{
		ID:            uuid.New(),
		CheckpointID:  checkpointID,
		Status:        domain.SnapshotStatusPending,
		AllowPatterns: patterns,
		CreatedAt:     time.Now(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	cp.Status = domain.CheckpointStatusSyncing
	if err := s.checkpoints.Update(ctx, cp); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[job.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(runCtx, job, cp)

	return job, nil
}

// Cancel aborts a running job. The partially downloaded staging directory is
// kept on disk so the next snapshot resumes the interrupted transfers.
func (s *SnapshotService) Cancel(ctx context.Context, jobID uuid.UUID) error {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return err
	}

	s.mu.Lock()
	cancel, ok := s.cancels[jobID]
	s.mu.Unlock()
	if !ok {
		return domain.ErrSnapshotNotRunning
	}
	cancel()
	return nil
}

// Close cancels all running jobs and waits for their goroutines to finish.
func (s *SnapshotService) Close() {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *SnapshotService) run(ctx context.Context, job *domain.SnapshotJob, cp *domain.Checkpoint) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		if cancel, ok := s.cancels[job.ID]; ok {
			cancel()
			delete(s.cancels, job.ID)
		}
		s.mu.Unlock()
	}()

	logger := log.WithFields(log.Fields{
		"job_id":     job.ID,
		"checkpoint": cp.Name,
		"repo_id":    cp.RepoID,
	})

	now := time.Now()
	job.Status = domain.SnapshotStatusRunning
	job.StartedAt = &now
	s.persist(job)

	err := s.download(ctx, job, cp)
	switch {
	case err == nil:
		s.finish(job, cp, domain.SnapshotStatusComplete, "")
		logger.WithFields(log.Fields{
			"files": job.DoneFiles,
			"bytes": job.DoneBytes,
		}).Info("snapshot complete")
	case errors.Is(err, context.Canceled):
		s.finish(job, cp, domain.SnapshotStatusCanceled, "canceled")
		logger.Info("snapshot canceled")
	default:
		s.finish(job, cp, domain.SnapshotStatusFailed, err.Error())
		logger.WithError(err).Error("snapshot failed")
	}
}

func (s *SnapshotService) download(ctx context.Context, job *domain.SnapshotJob, cp *domain.Checkpoint) error {
	files, err := s.hub.ListFiles(ctx, cp.RepoID, cp.Revision)
	if err != nil {
		return err
	}

	files = filterFiles(files, job.AllowPatterns)
	if len(files) == 0 {
		return domain.ErrEmptySnapshotPlan
	}

	job.TotalFiles = len(files)
	job.TotalBytes = 0
	for _, f := range files {
		job.TotalBytes += f.Size
	}
	s.persist(job)

	stage, err := s.store.Stage(cp.LocalPath)
	if err != nil {
		return err
	}

	var progressMu sync.Mutex
	progress := func(delta int64) {
		progressMu.Lock()
		job.DoneBytes += delta
		progressMu.Unlock()
	}
	// Persist a copy taken under the lock: worker goroutines keep mutating
	// the counters while the row is written.
	persistProgress := func() {
		progressMu.Lock()
		snapshot := *job
		progressMu.Unlock()
		s.persist(&snapshot)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, f := range files {
		f := f
		g.Go(func() error {
			if err := s.hub.DownloadFile(gctx, cp.RepoID, cp.Revision, f, stage, progress); err != nil {
				return err
			}
			progressMu.Lock()
			job.DoneFiles++
			progressMu.Unlock()
			persistProgress()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, domain.ErrChecksumMismatch) || errors.Is(err, domain.ErrSizeMismatch) {
			// Verification failed: the staged content cannot be trusted,
			// so it must not seed the next run.
			if derr := s.store.Discard(stage); derr != nil {
				log.WithError(derr).WithField("stage", stage).Warn("discard staging dir failed")
			}
			return err
		}
		// Staging dir is left behind: partial files resume on the next run.
		return err
	}

	if err := s.store.Commit(stage, cp.LocalPath); err != nil {
		return err
	}
	return nil
}

// finish records the job outcome and settles the checkpoint status. A failed
// or canceled re-sync of a previously synced checkpoint leaves the old
// directory intact, so the checkpoint stays READY.
func (s *SnapshotService) finish(job *domain.SnapshotJob, cp *domain.Checkpoint, status domain.SnapshotStatus, errMsg string) {
	ctx := context.Background()

	now := time.Now()
	job.Status = status
	job.Error = errMsg
	job.FinishedAt = &now
	s.persist(job)

	switch status {
	case domain.SnapshotStatusComplete:
		cp.Status = domain.CheckpointStatusReady
		cp.LastSyncedAt = &now
		cp.FileCount = job.DoneFiles
		cp.SizeBytes = job.DoneBytes
	default:
		if cp.LastSyncedAt != nil {
			cp.Status = domain.CheckpointStatusReady
		} else {
			cp.Status = domain.CheckpointStatusFailed
		}
	}
	cp.UpdatedAt = now

	if err := s.checkpoints.Update(ctx, cp); err != nil {
		log.WithError(err).Error("update checkpoint after snapshot failed")
	}
}

func (s *SnapshotService) persist(job *domain.SnapshotJob) {
	if err := s.jobs.Update(context.Background(), job); err != nil {
		log.WithError(err).WithField("job_id", job.ID).Error("persist snapshot job failed")
	}
}

func normalizePatterns(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return domain.DefaultAllowPatterns, nil
	}
	if err := domain.ValidateAllowPatterns(patterns); err != nil {
		return nil, err
	}
	return patterns, nil
}

func filterFiles(files []ports.HubFile, patterns []string) []ports.HubFile {
	matched := make([]ports.HubFile, 0, len(files))
	for _, f := range files {
		if domain.MatchAllowPatterns(patterns, f.Path) {
			matched = append(matched, f)
		}
	}
	return matched
}
