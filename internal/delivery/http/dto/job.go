package dto

import "time"

type CreateJobRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Description    string     `json:"description" validate:"max=10000"`
	Role           string     `json:"role" validate:"max=120"`
	Location       string     `json:"location" validate:"max=120"`
	EmploymentType string     `json:"employmentType" validate:"max=60"`
	SalaryRange    string     `json:"salaryRange" validate:"max=120"`
	Requirements   []string   `json:"requirements" validate:"max=50,dive,max=500"`
	Tags           []string   `json:"tags" validate:"max=20,dive,max=40"`
	ApplyByDate    *time.Time `json:"applyByDate"`
}

// UpdateJobRequest is a partial update; absent fields are left alone.
type UpdateJobRequest struct {
	Title          *string    `json:"title" validate:"omitempty,max=200"`
	Description    *string    `json:"description" validate:"omitempty,max=10000"`
	Role           *string    `json:"role" validate:"omitempty,max=120"`
	Location       *string    `json:"location" validate:"omitempty,max=120"`
	EmploymentType *string    `json:"employmentType" validate:"omitempty,max=60"`
	SalaryRange    *string    `json:"salaryRange" validate:"omitempty,max=120"`
	Requirements   []string   `json:"requirements" validate:"omitempty,max=50,dive,max=500"`
	Tags           []string   `json:"tags" validate:"omitempty,max=20,dive,max=40"`
	Status         *string    `json:"status" validate:"omitempty,oneof=active archived"`
	ApplyByDate    *time.Time `json:"applyByDate"`
}

type ReorderJobRequest struct {
	FromOrder int `json:"fromOrder" validate:"required,gte=1"`
	ToOrder   int `json:"toOrder" validate:"required,gte=1"`
}
