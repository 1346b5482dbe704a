package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/logger"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
)

const iconColumns = `id, name, category, prompt, image_url, tags, created_at`

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresIconStore implements the store.IconStore interface
// using a PostgreSQL database as the storage backend.
type PostgresIconStore struct {
	db     Querier
	types  *pgtype.Map
	logger *slog.Logger
}

// NewPostgresIconStore creates a new PostgreSQL implementation of the IconStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresIconStore(db Querier, logger *slog.Logger) *PostgresIconStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresIconStore{
		db:     db,
		types:  pgtype.NewMap(),
		logger: logger.With(slog.String("component", "icon_store")),
	}
}

// Ensure PostgresIconStore implements store.IconStore interface
var _ store.IconStore = (*PostgresIconStore)(nil)

// Create implements store.IconStore.Create.
// Returns store.ErrInvalidEntity wrapping the domain error if the icon is invalid.
func (s *PostgresIconStore) Create(ctx context.Context, icon *domain.Icon) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := icon.Validate(); err != nil {
		log.Warn("icon validation failed during create",
			slog.String("error", err.Error()),
			slog.String("icon_id", icon.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	tags := icon.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		INSERT INTO icons (` + iconColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		icon.ID,
		icon.Name,
		icon.Category,
		icon.Prompt,
		icon.ImageURL,
		tags,
		icon.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create icon",
			slog.String("error", err.Error()),
			slog.String("icon_id", icon.ID.String()))
		return store.NewOpError("icon", "create", "insert failed", MapError(err))
	}

	log.Info("icon created successfully",
		slog.String("icon_id", icon.ID.String()),
		slog.String("category", icon.Category))
	return nil
}

// GetByID implements store.IconStore.GetByID.
// Returns store.ErrIconNotFound if the icon does not exist.
func (s *PostgresIconStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Icon, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + iconColumns + ` FROM icons WHERE id = $1`
	icon, err := s.scanIcon(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("icon not found", slog.String("icon_id", id.String()))
			return nil, store.ErrIconNotFound
		}
		log.Error("failed to get icon",
			slog.String("error", err.Error()),
			slog.String("icon_id", id.String()))
		return nil, store.NewOpError("icon", "get", "query failed", MapError(err))
	}
	return icon, nil
}

// List implements store.IconStore.List. Search matches names
// case-insensitively or any tag exactly; results are newest first.
func (s *PostgresIconStore) List(ctx context.Context, filter store.IconFilter) (*store.IconPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildIconFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM icons` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count icons", slog.String("error", err.Error()))
		return nil, store.NewOpError("icon", "list", "count failed", MapError(err))
	}

	listArgs := append(args, filter.PageSize, filter.Offset())
	listQuery := fmt.Sprintf(`SELECT %s FROM icons%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		iconColumns, where, len(args)+1, len(args)+2)

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		log.Error("failed to list icons", slog.String("error", err.Error()))
		return nil, store.NewOpError("icon", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	icons := make([]domain.Icon, 0, filter.PageSize)
	for rows.Next() {
		icon, err := s.scanIcon(rows)
		if err != nil {
			return nil, store.NewOpError("icon", "list", "scan failed", MapError(err))
		}
		icons = append(icons, *icon)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewOpError("icon", "list", "iteration failed", MapError(err))
	}

	log.Debug("icons listed",
		slog.Int("count", len(icons)),
		slog.Int("total", total))
	return &store.IconPage{
		Icons:    icons,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresIconStore) scanIcon(row rowScanner) (*domain.Icon, error) {
	var icon domain.Icon
	err := row.Scan(
		&icon.ID,
		&icon.Name,
		&icon.Category,
		&icon.Prompt,
		&icon.ImageURL,
		s.types.SQLScanner(&icon.Tags),
		&icon.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	icon.CreatedAt = icon.CreatedAt.UTC()
	if icon.Tags == nil {
		icon.Tags = []string{}
	}
	return &icon, nil
}

// buildIconFilter returns the WHERE clause for filter and its arguments.
func buildIconFilter(filter store.IconFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%", search)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR $%d = ANY(tags))", len(args)-1, len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
