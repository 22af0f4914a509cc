package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// BackupOptions controls the periodic snapshot of the sqlite file.
type BackupOptions struct {
	Path          string
	Interval      time.Duration
	RetentionDays int
}

// BackupService copies the database file to the backup directory on a
// fixed interval and prunes snapshots older than the retention window.
type BackupService struct {
	dbPath string
	opts   BackupOptions
	logger *zerolog.Logger
}

func NewBackupService(dbPath string, opts BackupOptions, logger *zerolog.Logger) *BackupService {
	if opts.Interval <= 0 {
		opts.Interval = 24 * time.Hour
	}
	if opts.Path == "" {
		opts.Path = "backups"
	}
	return &BackupService{dbPath: dbPath, opts: opts, logger: logger}
}

// Start runs the backup loop until the context is cancelled. The first
// snapshot is taken right away.
func (s *BackupService) Start(ctx context.Context) {
	s.logger.Info().
		Str("path", s.opts.Path).
		Dur("interval", s.opts.Interval).
		Msg("backup service started")

	if err := s.PerformBackup(); err != nil {
		s.logger.Error().Err(err).Msg("initial backup failed")
	}

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup writes one timestamped copy of the database file.
// WAL mode keeps the main file consistent enough for a cold copy.
func (s *BackupService) PerformBackup() error {
	if err := os.MkdirAll(s.opts.Path, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(s.opts.Path, fmt.Sprintf("cronos_%s.db", timestamp))

	source, err := os.Open(s.dbPath)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return err
	}

	s.logger.Info().Str("path", backupPath).Msg("backup completed")
	return nil
}

// CleanupOldBackups removes snapshots older than the retention window.
func (s *BackupService) CleanupOldBackups() {
	if s.opts.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(s.opts.Path)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.opts.RetentionDays)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("deleting old backup")
			_ = os.Remove(filepath.Join(s.opts.Path, file.Name()))
		}
	}
}
