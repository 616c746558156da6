package items

import (
	"context"

	"github.com/stockbook/stockbook/internal/ledger"
)

// RepositoryPort abstracts the item store for the service.
type RepositoryPort interface {
	List(ctx context.Context) ([]Item, error)
	GetByName(ctx context.Context, name string) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByName(ctx context.Context, name string) (Item, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *Service) Create(ctx context.Context, item Item) (Item, error) {
	if err := s.validate(item); err != nil {
		return Item{}, err
	}
	return s.repo.Create(ctx, item)
}

// AttributeMap projects the master into the lookup the ledger joins
// onto snapshot rows. It satisfies ledger.ItemMasterPort.
func (s *Service) AttributeMap(ctx context.Context) (map[string]ledger.ItemAttributes, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	master := make(map[string]ledger.ItemAttributes, len(all))
	for _, item := range all {
		master[item.Name] = ledger.ItemAttributes{
			Code:          item.Code,
			Manufacturer:  item.Manufacturer,
			Category:      item.Category,
			Subcategory:   item.Subcategory,
			Unit:          item.Unit,
			StandardPrice: item.StandardPrice,
		}
	}
	return master, nil
}
