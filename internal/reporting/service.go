package reporting

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/stockbook/stockbook/internal/fiscal"
	"github.com/stockbook/stockbook/internal/ledger"
	"github.com/stockbook/stockbook/internal/masterdata/locations"
	"github.com/stockbook/stockbook/internal/platform/cache"
)

// EventSource reads the stock log.
type EventSource interface {
	List(ctx context.Context, filter ledger.EventFilter) ([]ledger.Event, error)
}

// ItemSource supplies item-master attributes.
type ItemSource interface {
	AttributeMap(ctx context.Context) (map[string]ledger.ItemAttributes, error)
}

// LocationSource supplies the location master.
type LocationSource interface {
	List(ctx context.Context) ([]locations.Location, error)
}

// PeriodSource resolves period labels to reporting windows.
type PeriodSource interface {
	Resolve(ctx context.Context, label string) (fiscal.Window, error)
}

// Service assembles period-close reports.
type Service struct {
	events  EventSource
	items   ItemSource
	locs    LocationSource
	periods PeriodSource
	cache   *cache.Store
}

// NewService builds Service. The cache store may be nil.
func NewService(events EventSource, items ItemSource, locs LocationSource, periods PeriodSource, store *cache.Store) *Service {
	return &Service{events: events, items: items, locs: locs, periods: periods, cache: store}
}

// Report computes reconciliation rows for the labelled period. Empty
// location or item selections mean "all known".
func (s *Service) Report(ctx context.Context, label string, locNames, itemNames []string) ([]Row, error) {
	key, err := s.cache.BuildKey(ctx, reportKeyParts(label, locNames, itemNames)...)
	if err != nil {
		return nil, err
	}
	var rows []Row
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (any, error) {
		return s.buildReport(ctx, label, locNames, itemNames)
	})
	return rows, err
}

// WriteWorkbook renders the labelled period as an xlsx workbook.
func (s *Service) WriteWorkbook(ctx context.Context, w io.Writer, label string, locNames, itemNames []string) error {
	window, err := s.periods.Resolve(ctx, label)
	if err != nil {
		return err
	}
	rows, err := s.buildReport(ctx, label, locNames, itemNames)
	if err != nil {
		return err
	}
	return WriteWorkbook(w, label, window, rows)
}

func (s *Service) buildReport(ctx context.Context, label string, locNames, itemNames []string) ([]Row, error) {
	window, err := s.periods.Resolve(ctx, label)
	if err != nil {
		return nil, err
	}

	refs, err := s.resolveLocations(ctx, locNames)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}

	events, err := s.events.List(ctx, ledger.EventFilter{Until: window.End, Locations: names})
	if err != nil {
		return nil, err
	}
	master, err := s.items.AttributeMap(ctx)
	if err != nil {
		return nil, err
	}
	items := itemNames
	if len(items) == 0 {
		items = allItemNames(master, events)
	}
	return BuildRows(events, master, refs, items, window), nil
}

func (s *Service) resolveLocations(ctx context.Context, locNames []string) ([]LocationRef, error) {
	all, err := s.locs.List(ctx)
	if err != nil {
		return nil, err
	}
	var requested map[string]struct{}
	if len(locNames) > 0 {
		requested = make(map[string]struct{}, len(locNames))
		for _, name := range locNames {
			requested[name] = struct{}{}
		}
	}
	refs := make([]LocationRef, 0, len(all))
	for _, loc := range all {
		if requested != nil {
			if _, ok := requested[loc.Name]; !ok {
				continue
			}
		}
		refs = append(refs, LocationRef{Code: loc.Code, Name: loc.Name})
	}
	return refs, nil
}

// allItemNames merges master entries with names only present in the
// log, so unregistered items still get a reconciliation line.
func allItemNames(master map[string]ledger.ItemAttributes, events []ledger.Event) []string {
	seen := make(map[string]struct{}, len(master))
	for name := range master {
		seen[name] = struct{}{}
	}
	for _, e := range events {
		seen[e.ItemName] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func reportKeyParts(label string, locNames, itemNames []string) []string {
	return []string{
		"report", label,
		strings.Join(locNames, ","),
		strings.Join(itemNames, ","),
	}
}
