package auth

import (
	"context"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UserValidator hashes credentials and keeps login, email and person
// identifier unique among active users.
type UserValidator struct {
	users  UserDirectory
	hasher PasswordHasher
}

var _ EntityHooks[*User] = (*UserValidator)(nil)

func NewUserValidator(users UserDirectory, hasher PasswordHasher) *UserValidator {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &UserValidator{users: users, hasher: hasher}
}

func (v *UserValidator) BeforeCreate(ctx context.Context, tx IDB, user *User) error {
	if user.Password == "" {
		return NewBadRequestError("password is required", map[string]any{"field": "password"})
	}

	if user.Role == "" {
		user.Role = RoleUser
	}
	if err := v.validateRole(user); err != nil {
		return err
	}

	hash, err := v.hasher.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Password = ""

	if user.Person.ID == uuid.Nil {
		user.Person.ID = personID(user.Person.Identifier)
	}

	checks := []uniquenessCheck{
		{field: "identifier", value: user.Person.Identifier, exists: v.users.ExistsByIdentifierTx},
		{field: "login", value: user.Login, exists: v.users.ExistsByLoginTx},
		{field: "email", value: user.Email, exists: v.users.ExistsByEmailTx},
	}
	return runUniquenessChecks(ctx, tx, checks)
}

// BeforeUpdate carries the person id and password hash over from the
// stored user. The role comes from the payload. Uniqueness is only
// checked for values that changed.
func (v *UserValidator) BeforeUpdate(ctx context.Context, tx IDB, existing, candidate *User) error {
	candidate.Person.ID = existing.Person.ID
	candidate.PasswordHash = existing.PasswordHash
	candidate.Password = ""

	if err := v.validateRole(candidate); err != nil {
		return err
	}

	checks := []uniquenessCheck{}
	if candidate.Person.Identifier != existing.Person.Identifier {
		checks = append(checks, uniquenessCheck{field: "identifier", value: candidate.Person.Identifier, exists: v.users.ExistsByIdentifierTx})
	}
	if candidate.Login != existing.Login {
		checks = append(checks, uniquenessCheck{field: "login", value: candidate.Login, exists: v.users.ExistsByLoginTx})
	}
	if candidate.Email != existing.Email {
		checks = append(checks, uniquenessCheck{field: "email", value: candidate.Email, exists: v.users.ExistsByEmailTx})
	}
	return runUniquenessChecks(ctx, tx, checks)
}

// personID derives a stable id from the person identifier so the same
// person keeps its id across accounts.
func personID(identifier string) uuid.UUID {
	if identifier != "" {
		if id, err := hashid.NewUUID(identifier); err == nil {
			return id
		}
	}
	return uuid.New()
}

// validateRole rejects an empty or unknown role. Create defaults the role
// before calling it, an update must always carry one.
func (v *UserValidator) validateRole(user *User) error {
	if user.Role == "" {
		return NewBadRequestError("role is required", map[string]any{"field": "role"})
	}
	if !user.Role.IsValid() {
		return NewBadRequestError("unknown role", map[string]any{"role": user.Role})
	}
	return nil
}

type uniquenessCheck struct {
	field  string
	value  string
	exists func(ctx context.Context, tx IDB, value string) (bool, error)
}

func runUniquenessChecks(ctx context.Context, tx IDB, checks []uniquenessCheck) error {
	for _, check := range checks {
		found, err := check.exists(ctx, tx, check.value)
		if err != nil {
			return err
		}
		if found {
			return NewUniquenessError(check.field, check.value)
		}
	}
	return nil
}
