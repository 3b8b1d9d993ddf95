package postgres

import (
	"context"
	"fmt"
	"time"

	"golang-wa-broadcast/internal/domain"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Delivery is the stored form of a domain.DeliveryEvent.
type Delivery struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	BroadcastID uuid.UUID `gorm:"type:uuid;index;not null"`
	Kind        string    `gorm:"size:16;not null"`
	Number      string    `gorm:"size:32;index;not null"`
	Destination string    `gorm:"size:64;not null"`
	Outcome     string    `gorm:"size:16;index;not null"`
	Error       string
	OccurredAt  time.Time `gorm:"not null"`
	CreatedAt   time.Time
}

// Repository implements ports.DeliveryRepository using PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// New opens a PostgreSQL connection and returns a Repository.
func New(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Repository{db: db}, nil
}

// Migrate creates or updates the deliveries table.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&Delivery{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveDelivery inserts an event, ignoring redeliveries of the same ID.
func (r *Repository) SaveDelivery(ctx context.Context, ev domain.DeliveryEvent) error {
	row := toRow(ev)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("insert delivery %s: %w", ev.ID, err)
	}
	return nil
}

// ListDeliveries returns the events of one broadcast ordered by occurrence.
func (r *Repository) ListDeliveries(ctx context.Context, broadcastID uuid.UUID) ([]domain.DeliveryEvent, error) {
	var rows []Delivery
	err := r.db.WithContext(ctx).
		Where("broadcast_id = ?", broadcastID).
		Order("occurred_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}

	out := make([]domain.DeliveryEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func toRow(ev domain.DeliveryEvent) Delivery {
	return Delivery{
		ID:          ev.ID,
		BroadcastID: ev.BroadcastID,
		Kind:        string(ev.Kind),
		Number:      ev.Number,
		Destination: ev.Destination,
		Outcome:     string(ev.Outcome),
		Error:       ev.Error,
		OccurredAt:  ev.OccurredAt,
	}
}

func fromRow(row Delivery) domain.DeliveryEvent {
	return domain.DeliveryEvent{
		ID:          row.ID,
		BroadcastID: row.BroadcastID,
		Kind:        domain.Kind(row.Kind),
		Number:      row.Number,
		Destination: row.Destination,
		Outcome:     domain.Outcome(row.Outcome),
		Error:       row.Error,
		OccurredAt:  row.OccurredAt,
	}
}
