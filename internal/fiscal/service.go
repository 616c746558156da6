package fiscal

import "context"

// CalendarSource abstracts the calendar store for the service.
type CalendarSource interface {
	List(ctx context.Context) ([]Period, error)
}

// Service answers period lookups.
type Service struct {
	repo CalendarSource
}

// NewService builds Service.
func NewService(repo CalendarSource) *Service {
	return &Service{repo: repo}
}

// List returns the calendar with resolved windows.
func (s *Service) List(ctx context.Context) ([]Period, error) {
	return s.repo.List(ctx)
}

// Resolve returns the reporting window for a period label.
func (s *Service) Resolve(ctx context.Context, label string) (Window, error) {
	periods, err := s.repo.List(ctx)
	if err != nil {
		return Window{}, err
	}
	return ResolveWindow(periods, label)
}
