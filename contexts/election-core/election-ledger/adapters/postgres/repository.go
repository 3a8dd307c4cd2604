package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotbox/contexts/election-core/election-ledger/domain/entities"
	domainerrors "ballotbox/contexts/election-core/election-ledger/domain/errors"
	"ballotbox/contexts/election-core/election-ledger/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	// The session and the candidate-id counter are singleton rows.
	singletonRowID = 1
)

// Repository persists the ledger entity set on behalf of the execution
// environment. It implements LedgerRepository, OutboxWriter and
// OutboxRepository against one schema so a single database owns all durable
// state.
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
		&sessionModel{},
		&candidateModel{},
		&voterModel{},
		&counterModel{},
		&outboxModel{},
	}
}

func (r *Repository) GetSession(ctx context.Context) (entities.VotingSession, bool, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).First(&row, "id = ?", singletonRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VotingSession{}, false, nil
		}
		return entities.VotingSession{}, false, r.logError("election_repo_get_session_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveSession(ctx context.Context, session entities.VotingSession) error {
	row := sessionModelFromEntity(session)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":       row.Title,
			"start_time":  row.StartTime,
			"end_time":    row.EndTime,
			"active":      row.Active,
			"total_votes": row.TotalVotes,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("election_repo_save_session_failed", err, "title", session.Title)
	}
	return nil
}

func (r *Repository) ReplaceSlate(ctx context.Context, candidates []entities.Candidate) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&candidateModel{}).Error; err != nil {
			return err
		}
		for position, candidate := range candidates {
			row := candidateModelFromEntity(candidate, position)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return r.logError("election_repo_replace_slate_failed", err, "candidate_count", len(candidates))
	}
	return nil
}

func (r *Repository) ListCandidates(ctx context.Context) ([]entities.Candidate, error) {
	var rows []candidateModel
	err := r.db.WithContext(ctx).Order("position ASC").Find(&rows).Error
	if err != nil {
		return nil, r.logError("election_repo_list_candidates_failed", err)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID uint64) (entities.Candidate, bool, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).First(&row, "id = ?", candidateID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, false, nil
		}
		return entities.Candidate{}, false, r.logError("election_repo_get_candidate_failed", err, "candidate_id", candidateID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.Candidate) error {
	result := r.db.WithContext(ctx).Model(&candidateModel{}).
		Where("id = ?", candidate.ID).
		Updates(map[string]any{
			"name":       candidate.Name,
			"vote_count": candidate.VoteCount,
		})
	if result.Error != nil {
		return r.logError("election_repo_save_candidate_failed", result.Error, "candidate_id", candidate.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCandidateNotFound
	}
	return nil
}

func (r *Repository) NextCandidateID(ctx context.Context) (uint64, error) {
	var next uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row counterModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "id = ?", singletonRowID).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			row = counterModel{ID: singletonRowID, NextCandidateID: 1}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		next = row.NextCandidateID
		row.NextCandidateID++
		return tx.Save(&row).Error
	})
	if err != nil {
		return 0, r.logError("election_repo_next_candidate_id_failed", err)
	}
	return next, nil
}

func (r *Repository) IsAuthorized(ctx context.Context, address string) (bool, error) {
	var row voterModel
	err := r.db.WithContext(ctx).First(&row, "address = ?", strings.TrimSpace(address)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, r.logError("election_repo_is_authorized_failed", err, "address", strings.TrimSpace(address))
	}
	return row.Authorized, nil
}

func (r *Repository) Authorize(ctx context.Context, address string) error {
	row := voterModel{
		Address:    strings.TrimSpace(address),
		Authorized: true,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]any{
			"authorized": true,
		}),
	}).Create(&row).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("election_repo_authorize_failed", err, "address", row.Address)
	}
	return nil
}

func (r *Repository) HasVoted(ctx context.Context, address string) (bool, error) {
	var row voterModel
	err := r.db.WithContext(ctx).First(&row, "address = ?", strings.TrimSpace(address)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, r.logError("election_repo_has_voted_failed", err, "address", strings.TrimSpace(address))
	}
	return row.HasVoted, nil
}

func (r *Repository) MarkVoted(ctx context.Context, address string) error {
	row := voterModel{
		Address:  strings.TrimSpace(address),
		HasVoted: true,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]any{
			"has_voted": true,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("election_repo_mark_voted_failed", err, "address", row.Address)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := outboxModel{
		ID:           outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    createdAt,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("election_repo_append_outbox_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("election_repo_list_pending_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.ID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("election_repo_mark_outbox_published_failed", result.Error, "outbox_id", outboxID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrEventConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "election-core/election-ledger",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("election repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// SystemClock supplies wall-clock time for production wiring.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator issues event identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type sessionModel struct {
	ID         int       `gorm:"column:id;primaryKey"`
	Title      string    `gorm:"column:title"`
	StartTime  time.Time `gorm:"column:start_time"`
	EndTime    time.Time `gorm:"column:end_time"`
	Active     bool      `gorm:"column:active"`
	TotalVotes uint64    `gorm:"column:total_votes"`
}

func (sessionModel) TableName() string {
	return "election_sessions"
}

func sessionModelFromEntity(session entities.VotingSession) sessionModel {
	return sessionModel{
		ID:         singletonRowID,
		Title:      session.Title,
		StartTime:  session.StartTime.UTC(),
		EndTime:    session.EndTime.UTC(),
		Active:     session.Active,
		TotalVotes: session.TotalVotes,
	}
}

func (m sessionModel) toEntity() entities.VotingSession {
	return entities.VotingSession{
		Title:      m.Title,
		StartTime:  m.StartTime,
		EndTime:    m.EndTime,
		Active:     m.Active,
		TotalVotes: m.TotalVotes,
	}
}

type candidateModel struct {
	ID        uint64 `gorm:"column:id;primaryKey"`
	Name      string `gorm:"column:name"`
	VoteCount uint64 `gorm:"column:vote_count"`
	Position  int    `gorm:"column:position"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate, position int) candidateModel {
	return candidateModel{
		ID:        candidate.ID,
		Name:      candidate.Name,
		VoteCount: candidate.VoteCount,
		Position:  position,
	}
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		ID:        m.ID,
		Name:      m.Name,
		VoteCount: m.VoteCount,
	}
}

type voterModel struct {
	Address    string `gorm:"column:address;primaryKey"`
	Authorized bool   `gorm:"column:authorized"`
	HasVoted   bool   `gorm:"column:has_voted"`
}

func (voterModel) TableName() string {
	return "voters"
}

type counterModel struct {
	ID              int    `gorm:"column:id;primaryKey"`
	NextCandidateID uint64 `gorm:"column:next_candidate_id"`
}

func (counterModel) TableName() string {
	return "candidate_counter"
}

type outboxModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "election_outbox"
}
