package dto

import "github.com/google/uuid"

type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=120"`
	PhotoURL        *string `json:"photo_url" validate:"omitempty,url"`
	Password        *string `json:"password" validate:"omitempty,min=8,max=72"`
	CurrentPassword string  `json:"current_password"`
}

type ChangeRoleRequest struct {
	Role      string     `json:"role" validate:"required,oneof=candidate leader admin"`
	CompanyID *uuid.UUID `json:"company_id"`
}

type ListUsersQuery struct {
	Search string `query:"q"`
	Role   string `query:"role" validate:"omitempty,oneof=candidate leader admin"`
	Page   int    `query:"page"`
}
