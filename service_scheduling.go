package auth

import (
	"context"
)

// SchedulingHooks checks that a scheduling belongs to an active user
// and carries a known type.
type SchedulingHooks struct {
	users UserDirectory
}

var _ EntityHooks[*Scheduling] = SchedulingHooks{}

func (h SchedulingHooks) BeforeCreate(ctx context.Context, tx IDB, s *Scheduling) error {
	return h.validate(ctx, tx, s)
}

func (h SchedulingHooks) BeforeUpdate(ctx context.Context, tx IDB, _, candidate *Scheduling) error {
	return h.validate(ctx, tx, candidate)
}

func (h SchedulingHooks) validate(ctx context.Context, tx IDB, s *Scheduling) error {
	if s.Type != "" && !s.Type.IsValid() {
		return NewBadRequestError("unknown scheduling type", map[string]any{"type": s.Type})
	}

	if _, err := h.users.GetByIDTx(ctx, tx, s.UserID); err != nil {
		if IsNotFound(err) {
			return NewBadRequestError("scheduling user does not exist", map[string]any{
				"user_id": s.UserID.String(),
			})
		}
		return err
	}
	return nil
}

// SchedulingService manages schedulings
type SchedulingService = EntityService[*Scheduling, SchedulingDTO]

func NewSchedulingService(repos RepositoryManager) *SchedulingService {
	return NewEntityService[*Scheduling, SchedulingDTO]("scheduling", repos, repos.Schedulings(), SchedulingMapper{}).
		WithHooks(SchedulingHooks{users: repos.Users()})
}
