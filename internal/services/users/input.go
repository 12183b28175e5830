package users

import (
	"strings"

	"cvportal/internal/apperr"
	"cvportal/internal/models"
	"cvportal/internal/rbac"
	"cvportal/internal/validation"
)

type CreateInput struct {
	Username    string    `json:"username" validate:"required,min=3,max=64"`
	Email       string    `json:"email" validate:"required,email"`
	Password    string    `json:"password" validate:"required,min=8,max=72"`
	Role        rbac.Role `json:"role" validate:"omitempty,oneof=admin super_user manager user"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Department  string    `json:"department"`
	Position    string    `json:"position"`
	PhoneNumber string    `json:"phoneNumber"`
	IsActive    *bool     `json:"isActive"`
}

func (in *CreateInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = rbac.RoleUser
	}
}

func (in CreateInput) validate() error {
	return validation.Struct(in)
}

// UpdateInput is a partial update: a nil field is left as is.
type UpdateInput struct {
	Username    *string    `json:"username" validate:"omitnil,min=3,max=64"`
	Email       *string    `json:"email" validate:"omitnil,email"`
	Password    *string    `json:"password" validate:"omitnil,min=8,max=72"`
	Role        *rbac.Role `json:"role" validate:"omitnil,oneof=admin super_user manager user"`
	FirstName   *string    `json:"firstName"`
	LastName    *string    `json:"lastName"`
	Department  *string    `json:"department"`
	Position    *string    `json:"position"`
	PhoneNumber *string    `json:"phoneNumber"`
	IsActive    *bool      `json:"isActive"`
}

func (in *UpdateInput) normalize() {
	if in.Username != nil {
		v := strings.TrimSpace(*in.Username)
		in.Username = &v
	}
	if in.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &v
	}
}

func (in UpdateInput) validate() error {
	return validation.Struct(in)
}

func (in UpdateInput) apply(u *models.UserProfile) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.Username, in.Username)
	set(&u.Email, in.Email)
	set(&u.FirstName, in.FirstName)
	set(&u.LastName, in.LastName)
	set(&u.Department, in.Department)
	set(&u.Position, in.Position)
	set(&u.PhoneNumber, in.PhoneNumber)
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
}

type Filter struct {
	Search string
	Role   string
}

func (f Filter) validate() error {
	if f.Role != "" && !rbac.Role(f.Role).Valid() {
		return apperr.Invalid("role", "must be one of: "+roleChoices())
	}
	return nil
}

func roleChoices() string {
	names := make([]string, len(rbac.Roles))
	for i, r := range rbac.Roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
