package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Mapper converts between the wire form D and the entity T
type Mapper[T Record, D any] interface {
	ToEntity(dto D) (T, error)
	ToDTO(entity T) D
}

// EntityHooks run inside the write transaction before persisting.
// BeforeUpdate receives the stored record and the mapped candidate.
type EntityHooks[T Record] interface {
	BeforeCreate(ctx context.Context, tx IDB, entity T) error
	BeforeUpdate(ctx context.Context, tx IDB, existing, candidate T) error
}

// NoopHooks accepts every write
type NoopHooks[T Record] struct{}

func (NoopHooks[T]) BeforeCreate(context.Context, IDB, T) error {
	return nil
}

func (NoopHooks[T]) BeforeUpdate(context.Context, IDB, T, T) error {
	return nil
}

// EntityService implements the create, update and soft delete lifecycle
// for one entity type. Each operation is its own transaction.
type EntityService[T Record, D any] struct {
	resource     string
	txm          repository.TransactionManager
	store        EntityStore[T]
	mapper       Mapper[T, D]
	hooks        EntityHooks[T]
	logger       Logger
	activitySink ActivitySink
}

func NewEntityService[T Record, D any](resource string, txm repository.TransactionManager, store EntityStore[T], mapper Mapper[T, D]) *EntityService[T, D] {
	return &EntityService[T, D]{
		resource:     resource,
		txm:          txm,
		store:        store,
		mapper:       mapper,
		hooks:        NoopHooks[T]{},
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *EntityService[T, D]) WithHooks(hooks EntityHooks[T]) *EntityService[T, D] {
	if hooks == nil {
		hooks = NoopHooks[T]{}
	}
	s.hooks = hooks
	return s
}

func (s *EntityService[T, D]) WithLogger(logger Logger) *EntityService[T, D] {
	s.logger = normalizeLogger(logger)
	return s
}

// WithActivitySink configures an ActivitySink for emitting entity events.
func (s *EntityService[T, D]) WithActivitySink(sink ActivitySink) *EntityService[T, D] {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// Resource is the entity name used in errors and events
func (s *EntityService[T, D]) Resource() string {
	return s.resource
}

// FindAll returns a page of active entities
func (s *EntityService[T, D]) FindAll(ctx context.Context, req PageRequest) (*Page[D], error) {
	var records []T
	var total int

	err := s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		records, total, err = s.store.ListTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, passthrough(err, "failed to list "+s.resource)
	}

	items := make([]D, 0, len(records))
	for _, record := range records {
		items = append(items, s.mapper.ToDTO(record))
	}
	return newPage(items, total, req), nil
}

func (s *EntityService[T, D]) FindByID(ctx context.Context, id uuid.UUID) (D, error) {
	var record T
	err := s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		record, err = s.store.GetByIDTx(ctx, tx, id)
		return err
	})
	if err != nil {
		var zero D
		return zero, passthrough(err, "failed to get "+s.resource)
	}
	return s.mapper.ToDTO(record), nil
}

// Create maps dto into a new entity, runs BeforeCreate and persists it
func (s *EntityService[T, D]) Create(ctx context.Context, dto D) (D, error) {
	var zero D

	record, err := s.mapper.ToEntity(dto)
	if err != nil {
		return zero, passthrough(err, "failed to map "+s.resource)
	}
	record.SetID(uuid.Nil)

	err = s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.hooks.BeforeCreate(ctx, tx, record); err != nil {
			return err
		}
		created, err := s.store.CreateTx(ctx, tx, record)
		if err != nil {
			return err
		}
		record = created
		return nil
	})
	if err != nil {
		s.logger.Warn("entity create failed", "resource", s.resource, "error", err)
		return zero, passthrough(err, "failed to create "+s.resource)
	}

	s.emit(ctx, ActivityEventEntityCreated, record.GetID())
	return s.mapper.ToDTO(record), nil
}

// Update replaces the active entity id with dto in a single write
func (s *EntityService[T, D]) Update(ctx context.Context, id uuid.UUID, dto D) (D, error) {
	var zero D
	var record T

	err := s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := s.store.GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}

		candidate, err := s.mapper.ToEntity(dto)
		if err != nil {
			return err
		}
		candidate.SetID(id)

		if err := s.hooks.BeforeUpdate(ctx, tx, existing, candidate); err != nil {
			return err
		}

		record, err = s.store.UpdateTx(ctx, tx, candidate)
		return err
	})
	if err != nil {
		s.logger.Warn("entity update failed", "resource", s.resource, "id", id, "error", err)
		return zero, passthrough(err, "failed to update "+s.resource)
	}

	s.emit(ctx, ActivityEventEntityUpdated, id)
	return s.mapper.ToDTO(record), nil
}

// DeleteByID soft deletes the active entity id
func (s *EntityService[T, D]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	err := s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := s.store.GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.store.SoftDeleteTx(ctx, tx, existing)
	})
	if err != nil {
		s.logger.Warn("entity delete failed", "resource", s.resource, "id", id, "error", err)
		return passthrough(err, "failed to delete "+s.resource)
	}

	s.emit(ctx, ActivityEventEntityDeleted, id)
	return nil
}

func (s *EntityService[T, D]) emit(ctx context.Context, eventType ActivityEventType, id uuid.UUID) {
	actor := ActorFromContext(ctx)
	emitActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    actor.ID,
		Resource:  s.resource,
		EntityID:  id.String(),
	})
}
