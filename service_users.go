package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// UserService is the user flavored EntityService
type UserService struct {
	*EntityService[*User, UserDTO]
	users Users
}

func NewUserService(repos RepositoryManager, hasher PasswordHasher) *UserService {
	entities := NewEntityService[*User, UserDTO]("user", repos, repos.Users(), UserMapper{}).
		WithHooks(NewUserValidator(repos.Users(), hasher))
	return &UserService{
		EntityService: entities,
		users:         repos.Users(),
	}
}

func (s *UserService) WithLogger(logger Logger) *UserService {
	s.EntityService.WithLogger(logger)
	return s
}

func (s *UserService) WithActivitySink(sink ActivitySink) *UserService {
	s.EntityService.WithActivitySink(sink)
	return s
}

// Update rejects a payload whose id disagrees with id before touching
// storage. A zero payload id is taken as the path id.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, dto UserDTO) (UserDTO, error) {
	if dto.ID != uuid.Nil && dto.ID != id {
		return UserDTO{}, NewBadRequestError("payload id does not match path id", map[string]any{
			"path_id":    id.String(),
			"payload_id": dto.ID.String(),
		})
	}
	return s.EntityService.Update(ctx, id, dto)
}

// Roles lists every role with its description
func (s *UserService) Roles() []RoleDTO {
	out := make([]RoleDTO, 0, len(Roles))
	for _, r := range Roles {
		out = append(out, RoleDTO{Name: r, Description: r.Description()})
	}
	return out
}

func (s *UserService) FindByLogin(ctx context.Context, login string) (UserDTO, error) {
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		return UserDTO{}, passthrough(err, "failed to find user by login")
	}
	return UserMapper{}.ToDTO(user), nil
}

// Details returns the flattened read model of user id
func (s *UserService) Details(ctx context.Context, id uuid.UUID) (UserDetails, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return UserDetails{}, passthrough(err, "failed to get user details")
	}
	return ToUserDetails(user), nil
}

// ExistsByEmail reports whether an active user has email
func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, NewBadRequestError("email is required", map[string]any{"field": "email"})
	}

	found, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, passthrough(err, "failed to check email")
	}
	return found, nil
}
