package auth

import "strings"

// UserMapper converts between UserDTO and User
type UserMapper struct{}

var _ Mapper[*User, UserDTO] = UserMapper{}

func (UserMapper) ToEntity(dto UserDTO) (*User, error) {
	user := &User{
		Person: Person{
			ID:          dto.Person.ID,
			Name:        strings.TrimSpace(dto.Person.Name),
			Identifier:  strings.TrimSpace(dto.Person.Identifier),
			PhoneNumber: strings.TrimSpace(dto.Person.PhoneNumber),
			BirthDate:   dto.Person.BirthDate,
		},
		Login:    strings.TrimSpace(dto.Login),
		Password: dto.Password,
		Email:    strings.ToLower(strings.TrimSpace(dto.Email)),
		Role:     dto.Role,
	}
	user.ID = dto.ID
	return user, nil
}

// ToDTO never copies the password
func (UserMapper) ToDTO(user *User) UserDTO {
	if user == nil {
		return UserDTO{}
	}
	return UserDTO{
		ID: user.ID,
		Person: PersonDTO{
			ID:          user.Person.ID,
			Name:        user.Person.Name,
			Identifier:  user.Person.Identifier,
			PhoneNumber: user.Person.PhoneNumber,
			BirthDate:   user.Person.BirthDate,
		},
		Login: user.Login,
		Email: user.Email,
		Role:  user.Role,
	}
}

// ToUserDetails flattens user into its read model
func ToUserDetails(user *User) UserDetails {
	return UserDetails{
		ID:          user.ID,
		Name:        user.Person.Name,
		Identifier:  user.Person.Identifier,
		Email:       user.Email,
		PhoneNumber: user.Person.PhoneNumber,
		BirthDate:   user.Person.BirthDate,
		Role:        user.Role,
		Login:       user.Login,
	}
}

// SchedulingMapper converts between SchedulingDTO and Scheduling
type SchedulingMapper struct{}

var _ Mapper[*Scheduling, SchedulingDTO] = SchedulingMapper{}

func (SchedulingMapper) ToEntity(dto SchedulingDTO) (*Scheduling, error) {
	s := &Scheduling{
		UserID:      dto.UserID,
		Title:       strings.TrimSpace(dto.Title),
		Description: dto.Description,
		Month:       dto.Month,
		Day:         dto.Day,
		Year:        dto.Year,
		Type:        dto.Type,
	}
	s.ID = dto.ID
	return s, nil
}

func (SchedulingMapper) ToDTO(s *Scheduling) SchedulingDTO {
	if s == nil {
		return SchedulingDTO{}
	}
	return SchedulingDTO{
		ID:          s.ID,
		UserID:      s.UserID,
		Title:       s.Title,
		Description: s.Description,
		Month:       s.Month,
		Day:         s.Day,
		Year:        s.Year,
		Type:        s.Type,
	}
}
