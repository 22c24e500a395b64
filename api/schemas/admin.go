package schemas

// EnterprisePreset is the server-stored default filter predicate applied to
// all users absent a personal override.
type EnterprisePreset struct {
	Severities []int    `json:"severities"`
	Types      []string `json:"types"`
	Layers     []int    `json:"layers"`
	Name       string   `json:"name,omitempty"`
}

// UserPreset is a personal saved filter predicate.
type UserPreset struct {
	ID         int      `json:"id,omitempty"`
	Name       string   `json:"name"`
	Severities []int    `json:"severities"`
	Types      []string `json:"types"`
	Layers     []int    `json:"layers"`
}

// FreshnessSettings holds the day thresholds behind the freshness filter.
type FreshnessSettings struct {
	StaleDays int `json:"stale_days"`
	HideDays  int `json:"hide_days"`
}

// ImportJob is one row of the import history.
type ImportJob struct {
	ID            int    `json:"id"`
	ScanReportID  int    `json:"scan_report_id"`
	Filename      string `json:"filename"`
	Source        string `json:"source"`
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	RowsProcessed int    `json:"rows_processed"`
	RowsTotal     int    `json:"rows_total"`
	StartedAt     string `json:"started_at,omitempty"`
	EndedAt       string `json:"ended_at,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// ImportList is a paginated import history page.
type ImportList struct {
	Items []ImportJob `json:"items"`
	Total int         `json:"total"`
}

// ImportUploadResult is returned after a manual scan-export upload.
type ImportUploadResult struct {
	JobID         int    `json:"job_id"`
	ReportID      int    `json:"report_id"`
	Status        string `json:"status"`
	RowsProcessed int    `json:"rows_processed"`
}

// User is a dashboard account.
type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	ProfileID   int    `json:"profile_id"`
	ProfileName string `json:"profile_name,omitempty"`
	AuthType    string `json:"auth_type,omitempty"`
	IsActive    bool   `json:"is_active"`
	LastLogin   string `json:"last_login,omitempty"`
}

// UserList is the paginated user listing.
type UserList struct {
	Items []User `json:"items"`
	Total int    `json:"total"`
}

// UserCreate is the payload for creating an account.
type UserCreate struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	ProfileID int    `json:"profile_id"`
	AuthType  string `json:"auth_type,omitempty"`
}

// UserUpdate carries optional account mutations.
type UserUpdate struct {
	Password  *string `json:"password,omitempty"`
	ProfileID *int    `json:"profile_id,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// Profile is an authorization profile assignable to users.
type Profile struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Layer is an administrator-defined categorization bucket assigned to
// vulnerabilities via pattern-matching rules.
type Layer struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Position int    `json:"position"`
}

// LayerRule maps a match field pattern to a layer.
type LayerRule struct {
	ID         int    `json:"id,omitempty"`
	LayerID    int    `json:"layer_id"`
	MatchField string `json:"match_field"`
	Pattern    string `json:"pattern"`
	Priority   int    `json:"priority"`
}

// ReclassifyStart acknowledges a reclassification job request.
type ReclassifyStart struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// ReclassifyStatus reports asynchronous reclassification progress.
type ReclassifyStatus struct {
	Running      bool   `json:"running"`
	Progress     int    `json:"progress"`
	TotalRules   int    `json:"total_rules"`
	RulesApplied int    `json:"rules_applied"`
	Classified   int    `json:"classified"`
	Error        string `json:"error,omitempty"`
	Dirty        *bool  `json:"dirty,omitempty"`
}

// Preferences is the user's personal dashboard state: widget layout,
// free-form settings, and the last release-notes version seen. Fields left
// empty in an update are preserved server-side.
type Preferences struct {
	Layout          []map[string]any `json:"layout,omitempty"`
	Settings        map[string]any   `json:"settings,omitempty"`
	LastSeenVersion string           `json:"last_seen_version,omitempty"`
}

// WatchPath is a directory the import watcher polls for scan-export drops.
type WatchPath struct {
	ID           int    `json:"id,omitempty"`
	Path         string `json:"path"`
	Pattern      string `json:"pattern,omitempty"`
	Recursive    bool   `json:"recursive"`
	Enabled      bool   `json:"enabled"`
	IgnoreBefore string `json:"ignore_before,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// WatchPathUpdate carries optional watch-path mutations.
type WatchPathUpdate struct {
	Path         *string `json:"path,omitempty"`
	Pattern      *string `json:"pattern,omitempty"`
	Recursive    *bool   `json:"recursive,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
	IgnoreBefore *string `json:"ignore_before,omitempty"`
}

// WatcherStatus is the live state of the import watcher service.
type WatcherStatus struct {
	Running     bool `json:"running"`
	ActivePaths int  `json:"active_paths"`
	KnownFiles  int  `json:"known_files"`
}

// ServiceStatus is one service entry of the monitoring snapshot.
type ServiceStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// SystemMetrics carries host-level resource usage for monitoring.
type SystemMetrics struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	DiskPercent   float64 `json:"disk_percent"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// MonitoringSnapshot is the full /api/monitoring payload.
type MonitoringSnapshot struct {
	Services []ServiceStatus `json:"services"`
	Metrics  SystemMetrics   `json:"metrics"`
	Alerts   []Alert         `json:"alerts"`
}

// Alert is an active monitoring alert.
type Alert struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// TrendDataPoint is one sample of a trend query result.
type TrendDataPoint struct {
	Date  string `json:"date"`
	Label string `json:"label,omitempty"`
	Value int    `json:"value"`
}

// TrendQueryRequest asks the backend for a time series over the dataset.
type TrendQueryRequest struct {
	Metric     string   `json:"metric"`
	GroupBy    string   `json:"group_by,omitempty"`
	Severities []int    `json:"severities,omitempty"`
	Types      []string `json:"types,omitempty"`
	DateFrom   string   `json:"date_from,omitempty"`
	DateTo     string   `json:"date_to,omitempty"`
}

// TrendQueryResponse carries the resulting series.
type TrendQueryResponse struct {
	Metric string           `json:"metric"`
	Points []TrendDataPoint `json:"points"`
}

// TrendTemplate is a saved trend query.
type TrendTemplate struct {
	ID      int               `json:"id,omitempty"`
	Name    string            `json:"name"`
	Request TrendQueryRequest `json:"request"`
}
