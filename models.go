package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is the user's role
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleUser         Role = "USER"
	RoleGroomers     Role = "GROOMERS"
	RoleDoctor       Role = "DOCTOR"
	RoleReceptionist Role = "RECEPTIONIST"
)

var roleDescriptions = map[Role]string{
	RoleAdmin:        "Administrador",
	RoleUser:         "Usuario",
	RoleGroomers:     "Tratadores",
	RoleDoctor:       "Médico",
	RoleReceptionist: "Recepcionista",
}

// Roles lists every role in declaration order
var Roles = []Role{RoleAdmin, RoleUser, RoleGroomers, RoleDoctor, RoleReceptionist}

// IsValid checks if the role is one of the predefined roles
func (r Role) IsValid() bool {
	_, ok := roleDescriptions[r]
	return ok
}

// Description is the human readable label of the role
func (r Role) Description() string {
	return roleDescriptions[r]
}

// Authority is the granted authority name carried in access tokens
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

// SchedulingType classifies a scheduling entry
type SchedulingType string

const (
	SchedulingError   SchedulingType = "ERROR"
	SchedulingSuccess SchedulingType = "SUCCESS"
	SchedulingWarning SchedulingType = "WARNING"
)

// IsValid checks if the type is known
func (t SchedulingType) IsValid() bool {
	switch t {
	case SchedulingError, SchedulingSuccess, SchedulingWarning:
		return true
	default:
		return false
	}
}

// BaseEntity is the soft deletable shape shared by every domain entity.
// Active is owned by EntityService, nothing else flips it.
type BaseEntity struct {
	ID        uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Active    bool       `bun:"active,notnull" json:"-"`
	CreatedAt time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

func (b *BaseEntity) GetID() uuid.UUID {
	return b.ID
}

func (b *BaseEntity) SetID(id uuid.UUID) {
	b.ID = id
}

func (b *BaseEntity) IsActive() bool {
	return b.Active
}

func (b *BaseEntity) setActive(active bool) {
	b.Active = active
}

// prepareCreate assigns identity and the active flag for a new row
func (b *BaseEntity) prepareCreate(now time.Time) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.Active = true
	b.CreatedAt = now
	b.UpdatedAt = nil
}

func (b *BaseEntity) prepareUpdate(now time.Time) {
	b.UpdatedAt = &now
}

// Person holds the personal data of a user
type Person struct {
	ID          uuid.UUID  `bun:"id,type:uuid" json:"id"`
	Name        string     `bun:"name" json:"name"`
	Identifier  string     `bun:"identifier,notnull" json:"identifier"`
	PhoneNumber string     `bun:"phone_number" json:"phone_number"`
	BirthDate   *time.Time `bun:"birth_date,nullzero" json:"birth_date,omitempty"`
}

// User is the user model. Password only carries the plaintext received
// on create and is never stored.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	BaseEntity
	Person       Person `bun:"embed:person_" json:"person"`
	Login        string `bun:"login,notnull" json:"login"`
	PasswordHash string `bun:"password_hash,notnull" json:"-"`
	Password     string `bun:"-" json:"-"`
	Email        string `bun:"email,notnull" json:"email"`
	Role         Role   `bun:"role,notnull" json:"role"`
}

// Authorities lists the granted authorities of the user
func (u *User) Authorities() []string {
	if u.Role == "" {
		return nil
	}
	return []string{u.Role.Authority()}
}

// RefreshToken is a server side record of an issued refresh token.
// It is owned by the user lifecycle and has no identity outside auth.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rft"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Token         string    `bun:"token,notnull,unique" json:"token"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Used          bool      `bun:"used,notnull" json:"used"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

// NewRefreshToken creates an unused record for user issued at now
func NewRefreshToken(token string, userID uuid.UUID, now time.Time) *RefreshToken {
	return &RefreshToken{
		ID:        uuid.New(),
		Token:     token,
		UserID:    userID,
		Used:      false,
		CreatedAt: now,
	}
}

// IsValid reports whether the record may still be exchanged. This window
// is independent from the expiry signed into the token string.
func (r *RefreshToken) IsValid(now time.Time, window time.Duration) bool {
	if r == nil || r.Used {
		return false
	}
	return now.Sub(r.CreatedAt) <= window
}

// Scheduling is an agenda entry owned by a user
type Scheduling struct {
	bun.BaseModel `bun:"table:schedulings,alias:sch"`
	BaseEntity
	UserID      uuid.UUID      `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Title       string         `bun:"title" json:"title"`
	Description string         `bun:"description" json:"description"`
	Month       int            `bun:"month" json:"month"`
	Day         int            `bun:"day" json:"day"`
	Year        int            `bun:"year" json:"year"`
	Type        SchedulingType `bun:"type" json:"type"`
}
