package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotbox/contexts/election-core/election-indexer/domain/entities"
	domainerrors "ballotbox/contexts/election-core/election-indexer/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository persists the indexer feed and consumer dedup records. The feed
// sequence is the table's auto-increment primary key, so append order is the
// read order.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Models returns every gorm model this repository owns, for AutoMigrate.
func Models() []any {
	return []any{
		&feedModel{},
		&dedupModel{},
	}
}

func (r *Repository) Append(ctx context.Context, entry entities.FeedEntry) (entities.FeedEntry, error) {
	row := feedModel{
		EventID:    strings.TrimSpace(entry.EventID),
		EventType:  strings.TrimSpace(entry.EventType),
		OccurredAt: entry.OccurredAt.UTC(),
		Payload:    []byte(entry.Data),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.FeedEntry{}, domainerrors.ErrEventConflict
		}
		return entities.FeedEntry{}, r.logError("election_feed_repo_append_failed", err, "event_id", row.EventID)
	}
	entry.Seq = row.Seq
	return entry, nil
}

func (r *Repository) List(ctx context.Context, afterSeq uint64, limit int) ([]entities.FeedEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []feedModel
	err := r.db.WithContext(ctx).
		Where("seq > ?", afterSeq).
		Order("seq ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("election_feed_repo_list_failed", err, "after_seq", afterSeq)
	}
	items := make([]entities.FeedEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	key := strings.TrimSpace(eventID)
	var existing dedupModel
	err := r.db.WithContext(ctx).First(&existing, "event_id = ?", key).Error
	switch {
	case err == nil:
		if existing.ExpiresAt.Before(time.Now().UTC()) {
			if err := r.db.WithContext(ctx).Delete(&dedupModel{}, "event_id = ?", key).Error; err != nil {
				return false, r.logError("election_feed_repo_dedup_expire_failed", err, "event_id", key)
			}
		} else {
			if existing.PayloadHash != strings.TrimSpace(payloadHash) {
				return false, domainerrors.ErrEventConflict
			}
			return true, nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, r.logError("election_feed_repo_dedup_lookup_failed", err, "event_id", key)
	}

	row := dedupModel{
		EventID:     key,
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost the race to a concurrent consumer of the same event.
			return true, nil
		}
		return false, r.logError("election_feed_repo_dedup_insert_failed", err, "event_id", key)
	}
	return false, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "election-core/election-indexer",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("election indexer repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type feedModel struct {
	Seq        uint64    `gorm:"column:seq;primaryKey;autoIncrement"`
	EventID    string    `gorm:"column:event_id;uniqueIndex"`
	EventType  string    `gorm:"column:event_type"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
	Payload    []byte    `gorm:"column:payload"`
}

func (feedModel) TableName() string {
	return "election_event_feed"
}

func (m feedModel) toEntity() entities.FeedEntry {
	return entities.FeedEntry{
		Seq:        m.Seq,
		EventID:    m.EventID,
		EventType:  m.EventType,
		OccurredAt: m.OccurredAt,
		Data:       m.Payload,
	}
}

type dedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (dedupModel) TableName() string {
	return "election_consumed_events"
}
