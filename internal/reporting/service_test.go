package reporting

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stockbook/stockbook/internal/fiscal"
	"github.com/stockbook/stockbook/internal/ledger"
	"github.com/stockbook/stockbook/internal/masterdata/locations"
)

type fakeEvents struct {
	events []ledger.Event
}

func (f *fakeEvents) List(_ context.Context, filter ledger.EventFilter) ([]ledger.Event, error) {
	var allowed map[string]struct{}
	if len(filter.Locations) > 0 {
		allowed = make(map[string]struct{}, len(filter.Locations))
		for _, loc := range filter.Locations {
			allowed[loc] = struct{}{}
		}
	}
	var out []ledger.Event
	for _, e := range f.events {
		if !filter.Until.IsZero() && e.OccurredAt.After(filter.Until) {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[e.LocationName]; !ok {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeItems map[string]ledger.ItemAttributes

func (f fakeItems) AttributeMap(context.Context) (map[string]ledger.ItemAttributes, error) {
	return f, nil
}

type fakeLocations []locations.Location

func (f fakeLocations) List(context.Context) ([]locations.Location, error) {
	return f, nil
}

type fakePeriods map[string]fiscal.Window

func (f fakePeriods) Resolve(_ context.Context, label string) (fiscal.Window, error) {
	window, ok := f[label]
	if !ok {
		return fiscal.Window{}, fiscal.ErrPeriodNotFound
	}
	return window, nil
}

func newTestReportingService() *Service {
	events := &fakeEvents{events: []ledger.Event{
		mv(date(2025, 3, 10), ledger.OpPurchaseIn, "+5", 100),
		mv(date(2025, 4, 5), ledger.OpPurchaseIn, "+10", 100),
		mv(date(2025, 4, 20), ledger.OpStocktake, "correction: 15→12", 0),
	}}
	locs := fakeLocations{
		{Code: "01", Name: "main"},
		{Code: "02", Name: "annex"},
	}
	periods := fakePeriods{"2025-04": april}
	return NewService(events, fakeItems{}, locs, periods, nil)
}

func TestServiceReportDefaultsToAllLocationsAndItems(t *testing.T) {
	svc := newTestReportingService()

	rows, err := svc.Report(context.Background(), "2025-04", nil, nil)
	require.NoError(t, err)

	// The cable item folded over both known locations; annex has no
	// events and stays at zero throughout.
	require.Len(t, rows, 2)
	require.Equal(t, "main", rows[0].LocationName)
	require.EqualValues(t, 12, rows[0].Reported)
	require.EqualValues(t, -3, rows[0].Variance)
	require.Equal(t, "annex", rows[1].LocationName)
	require.EqualValues(t, 0, rows[1].Book)
}

func TestServiceReportRestrictsLocations(t *testing.T) {
	svc := newTestReportingService()

	rows, err := svc.Report(context.Background(), "2025-04", []string{"main"}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "main", rows[0].LocationName)
	require.Equal(t, "01", rows[0].LocationCode)
}

func TestServiceReportUnknownPeriod(t *testing.T) {
	svc := newTestReportingService()

	_, err := svc.Report(context.Background(), "1999-01", nil, nil)
	require.ErrorIs(t, err, fiscal.ErrPeriodNotFound)
}

func TestServiceWriteWorkbook(t *testing.T) {
	svc := newTestReportingService()

	var buf bytes.Buffer
	err := svc.WriteWorkbook(context.Background(), &buf, "2025-04", []string{"main"}, nil)
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer book.Close()

	title, err := book.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	require.Contains(t, title, "2025-04")

	reported, err := book.GetCellValue(sheetName, "J5")
	require.NoError(t, err)
	require.Equal(t, "12", reported)
}

func TestAllItemNamesMergesMasterAndLog(t *testing.T) {
	master := map[string]ledger.ItemAttributes{"bolt": {}}
	events := []ledger.Event{
		mv(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), ledger.OpPurchaseIn, "+1", 10),
	}
	names := allItemNames(master, events)
	require.Equal(t, []string{"bolt", "cable"}, names)
}
