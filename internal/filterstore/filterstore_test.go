package filterstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

type stubFetcher struct {
	preset schemas.EnterprisePreset
	err    error
}

func (f stubFetcher) EnterprisePreset(ctx context.Context) (schemas.EnterprisePreset, error) {
	return f.preset, f.err
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return NewStore(dir, zap.NewNop()), dir
}

func TestInitAppliesEnterprisePreset(t *testing.T) {
	s, _ := newTestStore(t)
	require.False(t, s.Ready(), "store must not be ready before Init")

	s.Init(context.Background(), stubFetcher{preset: schemas.EnterprisePreset{Severities: []int{4, 5}}})

	assert.True(t, s.Ready())
	assert.Equal(t, "severities=4,5", s.QueryString())
}

func TestInitFailsOpenOnPresetError(t *testing.T) {
	s, _ := newTestStore(t)
	s.Init(context.Background(), stubFetcher{err: errors.New("boom")})

	assert.True(t, s.Ready(), "preset failure must not block readiness")
	assert.Equal(t, "", s.QueryString())
}

func TestPersistedTupleWinsOverPreset(t *testing.T) {
	s, dir := newTestStore(t)
	s.Init(context.Background(), stubFetcher{preset: schemas.EnterprisePreset{Severities: []int{4, 5}}})
	s.SetSeverities([]int{3})
	s.SetTypes([]string{"Confirmed"})

	// A second session on the same state dir restores the edited tuple,
	// not the enterprise default.
	s2 := NewStore(dir, zap.NewNop())
	s2.Init(context.Background(), stubFetcher{preset: schemas.EnterprisePreset{Severities: []int{4, 5}}})

	assert.Equal(t, "severities=3&types=Confirmed", s2.QueryString())
}

func TestMalformedPersistedStateFallsBackToDefaults(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFile), []byte("{not json"), 0o600))

	s.Init(context.Background(), stubFetcher{preset: schemas.EnterprisePreset{Severities: []int{5}}})

	assert.Equal(t, "severities=5", s.QueryString())
}

func TestQueryStringCanonicalOrder(t *testing.T) {
	s, _ := newTestStore(t)
	s.Init(context.Background(), stubFetcher{})

	// Set in reverse of the canonical key order on purpose.
	s.SetReportID(9)
	s.SetDateRange("2025-01-01", "2025-02-01")
	s.SetFreshness(schemas.FreshnessStale)
	s.SetOSClasses([]string{"Linux", "Windows"})
	s.SetLayers([]int{2})
	s.SetTypes([]string{"Confirmed", "Potential"})
	s.SetSeverities([]int{4, 5})

	want := "severities=4,5&types=Confirmed,Potential&layers=2&os=Linux,Windows" +
		"&freshness=stale&date_from=2025-01-01&date_to=2025-02-01&report_id=9"
	assert.Equal(t, want, s.QueryString())
	assert.Equal(t, want, s.QueryString(), "identical state must serialize identically")
}

func TestQueryStringOmitsDefaultFreshness(t *testing.T) {
	s, _ := newTestStore(t)
	s.Init(context.Background(), stubFetcher{})

	s.SetFreshness(schemas.FreshnessStale)
	assert.Contains(t, s.QueryString(), "freshness=stale")

	s.SetFreshness(schemas.FreshnessActive)
	assert.NotContains(t, s.QueryString(), "freshness")
}

func TestDateRangeAndReportIDAreTransient(t *testing.T) {
	s, dir := newTestStore(t)
	s.Init(context.Background(), stubFetcher{})
	s.SetSeverities([]int{5})
	s.SetDateRange("2025-01-01", "")
	s.SetReportID(7)

	s2 := NewStore(dir, zap.NewNop())
	s2.Init(context.Background(), stubFetcher{})

	q := s2.QueryString()
	assert.Contains(t, q, "severities=5")
	assert.NotContains(t, q, "date_from")
	assert.NotContains(t, q, "report_id")
}

func TestResetRestoresDefaultsAndForgetsState(t *testing.T) {
	preset := schemas.EnterprisePreset{Severities: []int{4, 5}, Types: []string{"Confirmed"}}
	s, dir := newTestStore(t)
	s.Init(context.Background(), stubFetcher{preset: preset})

	s.SetSeverities([]int{1})
	s.SetDateRange("2025-01-01", "2025-02-01")
	s.SetReportID(3)

	s.Reset()

	assert.Equal(t, "severities=4,5&types=Confirmed", s.QueryString(),
		"reset restores the enterprise defaults, never an empty predicate")
	_, err := os.Stat(filepath.Join(dir, stateFile))
	assert.True(t, os.IsNotExist(err), "reset must remove the persisted tuple")

	// A new session after reset starts from the defaults again.
	s2 := NewStore(dir, zap.NewNop())
	s2.Init(context.Background(), stubFetcher{preset: preset})
	assert.Equal(t, "severities=4,5&types=Confirmed", s2.QueryString())
}

func TestSummaryReadsAsOneLine(t *testing.T) {
	s, _ := newTestStore(t)
	s.Init(context.Background(), stubFetcher{})

	assert.Equal(t, "Filters: none", s.Summary())

	s.SetSeverities([]int{4, 5})
	s.SetFreshness(schemas.FreshnessAll)
	got := s.Summary()
	assert.Contains(t, got, "severities 4,5")
	assert.Contains(t, got, "freshness all")
}
