// Package filterstore is the single source of truth for the active data
// predicate. Precedence is three-tiered: explicit session edits win over the
// persisted prior-session tuple, which wins over the server-side enterprise
// default preset fetched once at initialization.
package filterstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const stateFile = "filters.json"

// PresetFetcher supplies the enterprise default preset.
type PresetFetcher interface {
	EnterprisePreset(ctx context.Context) (schemas.EnterprisePreset, error)
}

// persisted is the on-disk filter tuple. The report ID and date range are
// deliberately absent: both are transient navigation state.
type persisted struct {
	Severities []int             `json:"severities"`
	Types      []string          `json:"types"`
	Layers     []int             `json:"layers"`
	OSClasses  []string          `json:"os_classes"`
	Freshness  schemas.Freshness `json:"freshness"`
}

// Store holds the active filter predicate.
type Store struct {
	mu     sync.Mutex
	dir    string
	logger *zap.Logger

	severities []int
	types      []string
	layers     []int
	osClasses  []string
	freshness  schemas.Freshness
	dateFrom   string
	dateTo     string
	reportID   int

	// defaults caches the enterprise preset fetched at Init for Reset.
	defaults schemas.EnterprisePreset
	ready    bool
}

// NewStore creates an uninitialized store persisting under dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{
		dir:       dir,
		logger:    logger.Named("filterstore"),
		freshness: schemas.FreshnessActive,
	}
}

// Init resolves the initial predicate: it fetches the enterprise preset
// (failure is non-fatal — the store fails open with empty defaults), then
// hydrates from the persisted tuple when present and well-formed, otherwise
// applies the defaults. Readiness flips true only after this resolution, and
// dependent views must not fetch before that.
func (s *Store) Init(ctx context.Context, fetcher PresetFetcher) {
	preset, err := fetcher.EnterprisePreset(ctx)
	if err != nil {
		s.logger.Warn("enterprise preset fetch failed; continuing with empty defaults", zap.Error(err))
		preset = schemas.EnterprisePreset{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = preset

	if state, ok := s.loadPersisted(); ok {
		s.severities = state.Severities
		s.types = state.Types
		s.layers = state.Layers
		s.osClasses = state.OSClasses
		s.freshness = state.Freshness
		if s.freshness == "" {
			s.freshness = schemas.FreshnessActive
		}
	} else {
		s.applyDefaultsLocked()
	}
	s.ready = true
}

// Ready reports whether initialization has resolved. Views gate their first
// fetch on this to avoid requesting unfiltered data.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// SetSeverities replaces the severity filter and persists the tuple.
func (s *Store) SetSeverities(v []int) { s.mutate(func() { s.severities = v }) }

// SetTypes replaces the vulnerability-type filter and persists the tuple.
func (s *Store) SetTypes(v []string) { s.mutate(func() { s.types = v }) }

// SetLayers replaces the layer filter and persists the tuple.
func (s *Store) SetLayers(v []int) { s.mutate(func() { s.layers = v }) }

// SetOSClasses replaces the OS-class filter and persists the tuple.
func (s *Store) SetOSClasses(v []string) { s.mutate(func() { s.osClasses = v }) }

// SetFreshness replaces the freshness bucket and persists the tuple.
func (s *Store) SetFreshness(v schemas.Freshness) { s.mutate(func() { s.freshness = v }) }

// SetDateRange sets the transient date window (YYYY-MM-DD bounds, either may
// be empty). Not persisted.
func (s *Store) SetDateRange(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dateFrom, s.dateTo = from, to
}

// SetReportID scopes the predicate to one scan report. Transient; never
// persisted.
func (s *Store) SetReportID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportID = id
}

// Reset restores the cached enterprise defaults (never an empty predicate),
// clears the date range and report ID, and removes the persisted tuple so a
// later start does not resurrect pre-reset state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyDefaultsLocked()
	s.dateFrom, s.dateTo = "", ""
	s.reportID = 0
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove persisted filters", zap.Error(err))
	}
}

// Snapshot returns a copy of the current predicate for display.
func (s *Store) Snapshot() (severities []int, types []string, layers []int, osClasses []string, freshness schemas.Freshness, dateFrom, dateTo string, reportID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.severities...),
		append([]string(nil), s.types...),
		append([]int(nil), s.layers...),
		append([]string(nil), s.osClasses...),
		s.freshness, s.dateFrom, s.dateTo, s.reportID
}

// QueryString derives the canonical query string: non-empty fields only, in
// a fixed key order, arrays comma-joined. Freshness is omitted at its
// default ("active") so default requests stay canonical and cacheable. Two
// calls with identical logical state produce byte-identical strings.
func (s *Store) QueryString() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parts []string
	if len(s.severities) > 0 {
		parts = append(parts, "severities="+joinInts(s.severities))
	}
	if len(s.types) > 0 {
		parts = append(parts, "types="+strings.Join(s.types, ","))
	}
	if len(s.layers) > 0 {
		parts = append(parts, "layers="+joinInts(s.layers))
	}
	if len(s.osClasses) > 0 {
		parts = append(parts, "os="+strings.Join(s.osClasses, ","))
	}
	if s.freshness != "" && s.freshness != schemas.FreshnessActive {
		parts = append(parts, "freshness="+string(s.freshness))
	}
	if s.dateFrom != "" {
		parts = append(parts, "date_from="+s.dateFrom)
	}
	if s.dateTo != "" {
		parts = append(parts, "date_to="+s.dateTo)
	}
	if s.reportID != 0 {
		parts = append(parts, "report_id="+strconv.Itoa(s.reportID))
	}
	return strings.Join(parts, "&")
}

// Summary renders a one-line human description of the active predicate, used
// in report headers.
func (s *Store) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parts []string
	if len(s.severities) > 0 {
		parts = append(parts, "severities "+joinInts(s.severities))
	}
	if len(s.types) > 0 {
		parts = append(parts, "types "+strings.Join(s.types, ", "))
	}
	if len(s.layers) > 0 {
		parts = append(parts, "layers "+joinInts(s.layers))
	}
	if len(s.osClasses) > 0 {
		parts = append(parts, "OS "+strings.Join(s.osClasses, ", "))
	}
	if s.freshness != "" && s.freshness != schemas.FreshnessActive {
		parts = append(parts, "freshness "+string(s.freshness))
	}
	if s.dateFrom != "" || s.dateTo != "" {
		parts = append(parts, fmt.Sprintf("dates %s..%s", s.dateFrom, s.dateTo))
	}
	if s.reportID != 0 {
		parts = append(parts, "report "+strconv.Itoa(s.reportID))
	}
	if len(parts) == 0 {
		return "Filters: none"
	}
	return "Filters: " + strings.Join(parts, " | ")
}

func (s *Store) mutate(apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply()
	s.persistLocked()
}

func (s *Store) applyDefaultsLocked() {
	s.severities = append([]int(nil), s.defaults.Severities...)
	s.types = append([]string(nil), s.defaults.Types...)
	s.layers = append([]int(nil), s.defaults.Layers...)
	s.osClasses = nil
	s.freshness = schemas.FreshnessActive
}

func (s *Store) persistLocked() {
	state := persisted{
		Severities: s.severities,
		Types:      s.types,
		Layers:     s.layers,
		OSClasses:  s.osClasses,
		Freshness:  s.freshness,
	}
	raw, err := json.Marshal(state)
	if err != nil {
		s.logger.Warn("failed to encode filter state", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path(), raw, 0o600); err != nil {
		s.logger.Warn("failed to persist filter state", zap.Error(err))
	}
}

// loadPersisted returns the stored tuple and whether it was present and
// well-formed. Malformed state is treated as absent.
func (s *Store) loadPersisted() (persisted, bool) {
	var state persisted
	raw, err := os.ReadFile(s.path())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read persisted filters", zap.Error(err))
		}
		return state, false
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn("persisted filters malformed; applying defaults", zap.Error(err))
		return state, false
	}
	return state, true
}

func (s *Store) path() string {
	return filepath.Join(s.dir, stateFile)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
