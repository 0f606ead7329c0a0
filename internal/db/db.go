package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ideaspark/internal/auth"
	"ideaspark/internal/jobs"
	pgstore "ideaspark/internal/store/postgres"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB, log *zap.Logger) error {
	if err := gdb.AutoMigrate(
		&pgstore.JournalRow{},
		&jobs.Job{},
		&auth.User{},
	); err != nil {
		return err
	}

	stmts := []string{
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
		`create index if not exists idx_jobs_journal_pending on jobs(journal_key, type) where status = 'PENDING';`,
		`alter table journals drop constraint if exists chk_journals_streak_logged;`,
		`alter table journals add constraint chk_journals_streak_logged check ((streak = 0) = (last_logged = 0));`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	if log != nil {
		log.Info("database migrated")
	}
	return nil
}
