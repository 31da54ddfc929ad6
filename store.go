package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// IDB is either a *bun.DB or a bun.Tx
type IDB = bun.IDB

// Record is the capability set the generic store needs from an entity.
// Every entity gets it by embedding BaseEntity.
type Record interface {
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	IsActive() bool
	setActive(active bool)
	prepareCreate(now time.Time)
	prepareUpdate(now time.Time)
}

// EntityStore is the persistence surface consumed by EntityService
type EntityStore[T Record] interface {
	GetByIDTx(ctx context.Context, tx IDB, id uuid.UUID) (T, error)
	ListTx(ctx context.Context, tx IDB, page PageRequest) ([]T, int, error)
	CreateTx(ctx context.Context, tx IDB, record T) (T, error)
	UpdateTx(ctx context.Context, tx IDB, record T) (T, error)
	SoftDeleteTx(ctx context.Context, tx IDB, record T) error
}

// uniqueColumn ties a unique column to the field reported to callers
type uniqueColumn[T Record] struct {
	column string
	field  string
	value  func(T) string
}

// Store is a soft delete aware repository. Reads go through the
// go-repository-bun repository with activeOnly applied, so inactive rows
// never leave the storage boundary.
type Store[T Record] struct {
	repo     repository.Repository[T]
	db       *bun.DB
	resource string
	unique   []uniqueColumn[T]
	now      func() time.Time
}

var _ EntityStore[*User] = (*Store[*User])(nil)

// NewStore creates a store for resource. newRecord must return a fresh
// pointer to the bun model.
func NewStore[T Record](db *bun.DB, resource string, newRecord func() T) *Store[T] {
	repo := repository.NewRepository[T](db, repository.ModelHandlers[T]{
		NewRecord: newRecord,
		GetID: func(record T) uuid.UUID {
			return record.GetID()
		},
		SetID: func(record T, id uuid.UUID) {
			record.SetID(id)
		},
		GetIdentifier: func() string {
			return "id"
		},
	})

	return &Store[T]{
		repo:     repo,
		db:       db,
		resource: resource,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source used to stamp rows
func (s *Store[T]) WithClock(now func() time.Time) *Store[T] {
	if now != nil {
		s.now = now
	}
	return s
}

// WithUniqueColumn registers a column covered by a unique index so a
// constraint failure on it is reported as a uniqueness violation of field.
func (s *Store[T]) WithUniqueColumn(column, field string, value func(T) string) *Store[T] {
	s.unique = append(s.unique, uniqueColumn[T]{column: column, field: field, value: value})
	return s
}

// Resource is the name reported in not found errors
func (s *Store[T]) Resource() string {
	return s.resource
}

// Repository exposes the underlying go-repository-bun repository
func (s *Store[T]) Repository() repository.Repository[T] {
	return s.repo
}

func activeOnly(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("?TableAlias.active = ?", true)
}

func orderByCreation(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC")
}

func (s *Store[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	return s.GetByIDTx(ctx, s.db, id)
}

func (s *Store[T]) GetByIDTx(ctx context.Context, tx IDB, id uuid.UUID) (T, error) {
	record, err := s.repo.GetByIDTx(ctx, tx, id.String(), activeOnly)
	if err != nil {
		var zero T
		return zero, s.mapError(err, record, id.String())
	}
	return record, nil
}

// FindOneByTx loads the active record whose column equals value
func (s *Store[T]) FindOneByTx(ctx context.Context, tx IDB, column, value string) (T, error) {
	record, err := s.repo.GetTx(ctx, tx, activeOnly, repository.SelectBy(column, "=", value))
	if err != nil {
		var zero T
		return zero, s.mapError(err, record, value)
	}
	return record, nil
}

// ExistsByTx reports whether an active record has column equal to value
func (s *Store[T]) ExistsByTx(ctx context.Context, tx IDB, column, value string) (bool, error) {
	total, err := s.repo.CountTx(ctx, tx, activeOnly, repository.SelectBy(column, "=", value))
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (s *Store[T]) List(ctx context.Context, page PageRequest) ([]T, int, error) {
	return s.ListTx(ctx, s.db, page)
}

func (s *Store[T]) ListTx(ctx context.Context, tx IDB, page PageRequest) ([]T, int, error) {
	page = page.normalize()

	records, total, err := s.repo.ListTx(ctx, tx,
		activeOnly,
		orderByCreation,
		repository.SelectPaginate(page.Size, page.Offset()),
	)
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *Store[T]) CreateTx(ctx context.Context, tx IDB, record T) (T, error) {
	record.prepareCreate(s.now())
	created, err := s.repo.CreateTx(ctx, tx, record)
	if err != nil {
		var zero T
		return zero, s.mapError(err, record, record.GetID().String())
	}
	return created, nil
}

// UpdateTx writes record once. The active flag and creation time are
// never touched by an update. The repository update omits zero values,
// so the full row is written here to let optional fields be cleared.
func (s *Store[T]) UpdateTx(ctx context.Context, tx IDB, record T) (T, error) {
	record.prepareUpdate(s.now())
	res, err := tx.NewUpdate().
		Model(record).
		ExcludeColumn("id", "active", "created_at").
		WherePK().
		Where("?TableAlias.active = ?", true).
		Exec(ctx)
	if err != nil {
		var zero T
		return zero, s.mapError(err, record, record.GetID().String())
	}

	if err := repository.SQLExpectedCount(res, 1); err != nil {
		var zero T
		return zero, s.mapError(err, record, record.GetID().String())
	}

	return s.GetByIDTx(ctx, tx, record.GetID())
}

// SoftDeleteTx flips the active flag, rows are never removed
func (s *Store[T]) SoftDeleteTx(ctx context.Context, tx IDB, record T) error {
	_, err := tx.NewUpdate().
		Model(record).
		Set("active = ?", false).
		Set("updated_at = ?", s.now()).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	record.setActive(false)
	return nil
}

// mapError turns missing rows into not found errors and unique index
// failures into uniqueness violations. Anything else is returned as is.
func (s *Store[T]) mapError(err error, record T, id string) error {
	switch {
	case err == nil:
		return nil
	case repository.IsRecordNotFound(err), repository.IsSQLExpectedCountViolation(err):
		return NewNotFoundError(s.resource, id)
	case isUniqueViolation(err):
		return s.uniquenessError(err, record)
	}
	return err
}

func (s *Store[T]) uniquenessError(err error, record T) error {
	msg := err.Error()
	for _, u := range s.unique {
		if !strings.Contains(msg, "."+u.column) {
			continue
		}
		value := ""
		if u.value != nil {
			value = u.value(record)
		}
		return NewUniquenessError(u.field, value)
	}
	return NewUniquenessError(uniqueFailedColumn(msg), "")
}

// isUniqueViolation matches the unique constraint failures reported by
// both sqlite drivers and by the repository error mapping.
func isUniqueViolation(err error) bool {
	if repository.IsDuplicatedKey(err) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// uniqueFailedColumn extracts the column from "UNIQUE constraint failed: table.column"
func uniqueFailedColumn(msg string) string {
	_, rest, found := strings.Cut(msg, "UNIQUE constraint failed: ")
	if !found {
		return ""
	}
	if end := strings.IndexAny(rest, " ,("); end >= 0 {
		rest = rest[:end]
	}
	if _, column, ok := strings.Cut(rest, "."); ok {
		return column
	}
	return rest
}
