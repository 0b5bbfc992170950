package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/reliability"
)

// backupTimeout bounds one full archive-upload-rotate pass.
const backupTimeout = 10 * time.Minute

// BackupStore creates archives and prunes old ones.
type BackupStore interface {
	CreateAndUpload(ctx context.Context) error
	Rotate(ctx context.Context, keys []string, retentionDays int) error
}

// KeyLister lists object keys under a prefix.
type KeyLister interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// BackupJob archives the databases to object storage nightly and rotates
// out archives past the retention window.
type BackupJob struct {
	log           zerolog.Logger
	backups       BackupStore
	lister        KeyLister
	retentionDays int
}

// NewBackupJob creates a new backup job
func NewBackupJob(backups BackupStore, lister KeyLister, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		log:           log.With().Str("job", "backup").Logger(),
		backups:       backups,
		lister:        lister,
		retentionDays: retentionDays,
	}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup"
}

// Run uploads a fresh archive, then rotates old ones. Rotation problems do
// not fail the job; the new archive is already safe.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	if err := j.backups.CreateAndUpload(ctx); err != nil {
		return err
	}

	keys, err := j.lister.ListKeys(ctx, reliability.ArchivePrefix)
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to list backups for rotation")
		return nil
	}
	if err := j.backups.Rotate(ctx, keys, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}
