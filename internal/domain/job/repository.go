package job

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	Search   string
	Status   Status
	Sort     string
	Page     int
	PageSize int
}

const (
	SortOrder     = "order"
	SortTitle     = "title"
	SortCreatedAt = "createdAt"
)

type Repository interface {
	Create(ctx context.Context, j Job) error
	Update(ctx context.Context, j Job) error
	GetByID(ctx context.Context, id uuid.UUID) (Job, error)
	List(ctx context.Context, f ListFilter) ([]Job, int, error)
	ListOrdered(ctx context.Context) ([]Job, error)
	UpdateOrders(ctx context.Context, jobs []Job) error
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	MaxOrder(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}
