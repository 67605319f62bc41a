package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/logger"
	"github.com/xp-network/xpnet-go/internal/store/schema"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 10
//   - MaxIdleConns: 2
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 10
	}
	if maxIdleConns == 0 {
		maxIdleConns = 2
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// SaveTransfer inserts the transfer, ignoring a duplicate source event
func (s *pgStore) SaveTransfer(ctx context.Context, event *domain.TransferEvent) error {
	if event == nil {
		return fmt.Errorf("transfer event is required")
	}

	meta, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer event: %w", err)
	}

	fee := event.Fee
	if fee == "" {
		fee = "0"
	}

	record := schema.Transfer{
		AttemptID:   event.AttemptID,
		Kind:        string(event.Kind),
		FromChain:   uint16(event.FromChain),
		ToChain:     uint16(event.ToChain),
		Sender:      event.Sender,
		Receiver:    event.Receiver,
		NftIdentity: event.NftIdentity,
		TxHash:      event.TxHash,
		EventID:     event.EventID,
		Fee:         fee,
		SubmittedAt: event.SubmittedAt,
		Meta:        datatypes.JSON(meta),
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_chain"}, {Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to save transfer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		logger.WarnCtx(ctx, "Transfer already recorded",
			zap.Stringer("fromChain", event.FromChain),
			zap.String("eventID", event.EventID))
	}

	return nil
}

// GetTransferByEventID retrieves a transfer by its source chain event
func (s *pgStore) GetTransferByEventID(ctx context.Context, fromChain domain.ChainNonce, eventID string) (*domain.TransferEvent, error) {
	var record schema.Transfer
	err := s.db.WithContext(ctx).
		Where("from_chain = ? AND event_id = ?", uint16(fromChain), eventID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}

	event := toTransferEvent(record)
	return &event, nil
}

// ListTransfers lists transfers matching filter, newest first
func (s *pgStore) ListTransfers(ctx context.Context, filter TransferFilter) ([]domain.TransferEvent, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := s.db.WithContext(ctx).Model(&schema.Transfer{})
	if filter.Sender != "" {
		query = query.Where("sender = ?", filter.Sender)
	}
	if filter.FromChain != nil {
		query = query.Where("from_chain = ?", uint16(*filter.FromChain))
	}

	var records []schema.Transfer
	err := query.
		Order("submitted_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	events := make([]domain.TransferEvent, len(records))
	for i, r := range records {
		events[i] = toTransferEvent(r)
	}
	return events, nil
}

func toTransferEvent(r schema.Transfer) domain.TransferEvent {
	return domain.TransferEvent{
		AttemptID:   r.AttemptID,
		Kind:        domain.TransferKind(r.Kind),
		FromChain:   domain.ChainNonce(r.FromChain),
		ToChain:     domain.ChainNonce(r.ToChain),
		Sender:      r.Sender,
		Receiver:    r.Receiver,
		NftIdentity: r.NftIdentity,
		TxHash:      r.TxHash,
		EventID:     r.EventID,
		Fee:         r.Fee,
		SubmittedAt: r.SubmittedAt.UTC(),
	}
}
