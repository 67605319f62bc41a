package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xp-network/xpnet-go/internal/logger"
)

// journalDSNEnv points the journal tests at an existing database instead of a container
const journalDSNEnv = "XPNET_TEST_JOURNAL_DSN"

var journalDB *gorm.DB

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(runJournalTests(m))
}

func runJournalTests(m *testing.M) int {
	ctx := context.Background()

	dsn := os.Getenv(journalDSNEnv)
	if dsn == "" {
		container, containerDSN, err := startJournalContainer(ctx)
		if err != nil {
			logger.Error(err)
			return 1
		}
		defer func() {
			if err := container.Terminate(ctx); err != nil {
				logger.Error(fmt.Errorf("failed to terminate journal container: %w", err))
			}
		}()
		dsn = containerDSN
	} else {
		logger.Info("Using external journal database", zap.String("env", journalDSNEnv))
	}

	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error(fmt.Errorf("failed to connect to journal database: %w", err))
		return 1
	}
	if err := ConfigureConnectionPool(db, 4, 2, time.Minute, 30*time.Second); err != nil {
		logger.Error(err)
		return 1
	}
	if err := applyJournalSchema(db); err != nil {
		logger.Error(err)
		return 1
	}

	journalDB = db
	return m.Run()
}

// startJournalContainer runs a throwaway postgres and returns its DSN
func startJournalContainer(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("xpnet_journal"),
		postgres.WithUsername("xpnet"),
		postgres.WithPassword("xpnet"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start journal container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get journal DSN: %w", err)
	}
	return container, dsn, nil
}

// applyJournalSchema creates the transfers table from the deployed schema file
func applyJournalSchema(db *gorm.DB) error {
	schemaSQL, err := os.ReadFile(filepath.Join("..", "..", "db", "init_pg_db.sql")) //nolint:gosec,G304
	if err != nil {
		return fmt.Errorf("failed to read journal schema: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if _, err := sqlDB.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to apply journal schema: %w", err)
	}
	return nil
}

// journalInTx returns a store whose writes are rolled back after the test
func journalInTx(t *testing.T) Store {
	tx := journalDB.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })

	return NewPGStore(tx)
}

func TestPGStore(t *testing.T) {
	require.NotNil(t, journalDB, "journal database not initialized")
	RunStoreTests(t, journalInTx)
}
