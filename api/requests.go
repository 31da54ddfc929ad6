package api

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"

	auth "github.com/goliatone/go-petcare-auth"
)

// DefaultPhoneRegion is used to parse numbers without a country prefix
var DefaultPhoneRegion = "BR"

var (
	errNilUUID      = errors.New("cannot be blank")
	errInvalidPhone = errors.New("must be a valid phone number")
)

func notNilUUID(value interface{}) error {
	if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
		return errNilUUID
	}
	return nil
}

func phoneNumber(value interface{}) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	if _, err := phonenumbers.Parse(raw, DefaultPhoneRegion); err != nil {
		return errInvalidPhone
	}
	return nil
}

// AuthenticateRequest is the credential payload
type AuthenticateRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r AuthenticateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshRequest carries the refresh token to exchange
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

func roleValues() []any {
	out := make([]any, 0, len(auth.Roles))
	for _, r := range auth.Roles {
		out = append(out, r)
	}
	return out
}

// ValidateUser checks the shape of a user payload. The password is only
// required when creating, the role only when updating.
func ValidateUser(creating bool) func(auth.UserDTO) error {
	return func(dto auth.UserDTO) error {
		password := []validation.Rule{validation.Length(6, auth.MaxPasswordLength)}
		role := []validation.Rule{validation.In(roleValues()...)}
		if creating {
			password = append([]validation.Rule{validation.Required}, password...)
		} else {
			role = append([]validation.Rule{validation.Required}, role...)
		}

		if err := validation.ValidateStruct(&dto,
			validation.Field(&dto.Login, validation.Required, validation.Length(3, 100)),
			validation.Field(&dto.Email, validation.Required, validation.Length(6, 100), is.Email),
			validation.Field(&dto.Password, password...),
			validation.Field(&dto.Role, role...),
		); err != nil {
			return err
		}

		person := dto.Person
		return validation.ValidateStruct(&person,
			validation.Field(&person.Name, validation.Required, validation.Length(1, 200)),
			validation.Field(&person.Identifier, validation.Required, validation.Length(1, 50)),
			validation.Field(&person.PhoneNumber, validation.Length(8, 20), is.Digit, validation.By(phoneNumber)),
		)
	}
}

// ValidateScheduling checks the shape of a scheduling payload
func ValidateScheduling(dto auth.SchedulingDTO) error {
	return validation.ValidateStruct(&dto,
		validation.Field(&dto.UserID, validation.By(notNilUUID)),
		validation.Field(&dto.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&dto.Month, validation.Required, validation.Min(1), validation.Max(12)),
		validation.Field(&dto.Day, validation.Required, validation.Min(1), validation.Max(31)),
		validation.Field(&dto.Year, validation.Required, validation.Min(1900)),
		validation.Field(&dto.Type, validation.In(auth.SchedulingError, auth.SchedulingSuccess, auth.SchedulingWarning)),
	)
}

// invalidPayload converts ozzo errors into a bad request
func invalidPayload(err error) error {
	fields := map[string]any{}
	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			fields[field] = ferr.Error()
		}
	} else {
		fields["payload"] = err.Error()
	}
	return auth.NewBadRequestError("invalid payload", map[string]any{"fields": fields})
}
