package locations

import (
	"context"
	"errors"
	"strings"
)

// RepositoryPort abstracts the location store for the service.
type RepositoryPort interface {
	List(ctx context.Context) ([]Location, error)
	GetByName(ctx context.Context, name string) (Location, error)
	Create(ctx context.Context, loc Location) (Location, error)
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Location, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByName(ctx context.Context, name string) (Location, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *Service) Create(ctx context.Context, loc Location) (Location, error) {
	if strings.TrimSpace(loc.Code) == "" {
		return Location{}, errors.New("location code is required")
	}
	if strings.TrimSpace(loc.Name) == "" {
		return Location{}, errors.New("location name is required")
	}
	return s.repo.Create(ctx, loc)
}
