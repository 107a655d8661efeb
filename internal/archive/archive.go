// Package archive persists an append-only audit trail of domain events and
// reward credits. It is a sidecar consumer of the event stream; the core
// engine never reads from it.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agora/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// EventRecord is a persisted domain event.
type EventRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"uniqueIndex;not null" json:"event_id"`
	Type      string    `gorm:"index;not null" json:"type"`
	Payload   string    `gorm:"not null" json:"payload"`
	EmittedAt time.Time `gorm:"index" json:"emitted_at"`
	CreatedAt time.Time `json:"created_at"`
}

// CreditRecord is a persisted reward credit issued for a like.
type CreditRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"index;not null" json:"event_id"`
	Recipient string    `gorm:"index;not null" json:"recipient"`
	Amount    int64     `gorm:"not null" json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a GORM-backed event archive.
type Store struct {
	db *gorm.DB
}

// Open connects to the archive database and migrates its schema.
// Supported drivers: "sqlite" and "postgres".
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported archive driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("archive connection failed: %w", err)
	}

	if err := db.AutoMigrate(&EventRecord{}, &CreditRecord{}); err != nil {
		return nil, fmt.Errorf("archive migration failed: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an already-open database handle. Used in tests.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&EventRecord{}, &CreditRecord{}); err != nil {
		return nil, fmt.Errorf("archive migration failed: %w", err)
	}
	return &Store{db: db}, nil
}

// Ping verifies the underlying database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record appends the event to the archive. Likes additionally produce a
// CreditRecord so reward payouts stay auditable.
func (s *Store) Record(ctx context.Context, ev models.Event, likeReward int64) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	rec := &EventRecord{
		EventID:   ev.ID,
		Type:      string(ev.Type),
		Payload:   string(payload),
		EmittedAt: ev.At,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("archive event: %w", err)
	}

	if ev.Type == models.EventReactionAdded {
		if liked, ok := ev.Payload["liked"].(bool); ok && liked {
			recipient, _ := ev.Payload["author"].(string)
			credit := &CreditRecord{
				EventID:   ev.ID,
				Recipient: recipient,
				Amount:    likeReward,
			}
			if err := s.db.WithContext(ctx).Create(credit).Error; err != nil {
				return fmt.Errorf("archive credit: %w", err)
			}
		}
	}
	return nil
}

// RecentEvents returns up to limit events, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]EventRecord, error) {
	var out []EventRecord
	err := s.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CreditsFor returns all archived credits for a recipient, oldest first.
func (s *Store) CreditsFor(ctx context.Context, recipient string) ([]CreditRecord, error) {
	var out []CreditRecord
	err := s.db.WithContext(ctx).
		Where("recipient = ?", recipient).
		Order("id asc").
		Find(&out).Error
	return out, err
}
