package schemas

// Severity is the scanner's 1-5 confirmed-vulnerability rating.
type Severity int

const (
	SeverityMinimal  Severity = 1
	SeverityMedium   Severity = 2
	SeveritySerious  Severity = 3
	SeverityCritical Severity = 4
	SeverityUrgent   Severity = 5
)

// Label returns the human-readable name for a severity level.
func (s Severity) Label() string {
	switch s {
	case SeverityMinimal:
		return "Minimal"
	case SeverityMedium:
		return "Medium"
	case SeveritySerious:
		return "Serious"
	case SeverityCritical:
		return "Critical"
	case SeverityUrgent:
		return "Urgent"
	default:
		return "Unknown"
	}
}

// RGB returns the display color associated with a severity level.
func (s Severity) RGB() (r, g, b int) {
	switch s {
	case SeverityUrgent:
		return 166, 29, 36
	case SeverityCritical:
		return 231, 76, 60
	case SeveritySerious:
		return 243, 156, 18
	case SeverityMedium:
		return 241, 196, 15
	default:
		return 127, 140, 141
	}
}

// Freshness buckets vulnerabilities by recency of last detection.
type Freshness string

const (
	FreshnessActive Freshness = "active"
	FreshnessStale  Freshness = "stale"
	FreshnessAll    Freshness = "all"
)

// SeverityCount is one slice of the dashboard severity distribution.
type SeverityCount struct {
	Severity int `json:"severity"`
	Count    int `json:"count"`
}

// TopVuln is a dashboard entry for a frequently occurring vulnerability.
type TopVuln struct {
	QID      int    `json:"qid"`
	Title    string `json:"title"`
	Severity int    `json:"severity"`
	Count    int    `json:"count"`
}

// TopHost is a dashboard entry for a host ranked by vulnerability count.
type TopHost struct {
	IP        string `json:"ip"`
	DNS       string `json:"dns,omitempty"`
	OS        string `json:"os,omitempty"`
	HostCount int    `json:"host_count"`
}

// CoherenceCheck reports a consistency discrepancy detected during import.
type CoherenceCheck struct {
	CheckType     string `json:"check_type"`
	Entity        string `json:"entity,omitempty"`
	ExpectedValue string `json:"expected_value"`
	ActualValue   string `json:"actual_value"`
	Severity      string `json:"severity"`
}

// DashboardOverview is the aggregate payload behind the main dashboard view.
type DashboardOverview struct {
	TotalVulns           int              `json:"total_vulns"`
	HostCount            int              `json:"host_count"`
	CriticalCount        int              `json:"critical_count"`
	SeverityDistribution []SeverityCount  `json:"severity_distribution"`
	TopVulns             []TopVuln        `json:"top_vulns"`
	TopHosts             []TopHost        `json:"top_hosts"`
	CoherenceChecks      []CoherenceCheck `json:"coherence_checks"`
}

// VulnDetail is the full record for a single QID.
type VulnDetail struct {
	QID               int      `json:"qid"`
	Title             string   `json:"title"`
	Severity          int      `json:"severity"`
	Type              string   `json:"type,omitempty"`
	Category          string   `json:"category,omitempty"`
	CVSSBase          string   `json:"cvss_base,omitempty"`
	CVSS3Base         string   `json:"cvss3_base,omitempty"`
	Threat            string   `json:"threat,omitempty"`
	Impact            string   `json:"impact,omitempty"`
	Solution          string   `json:"solution,omitempty"`
	VendorReference   string   `json:"vendor_reference,omitempty"`
	CVEIDs            []string `json:"cve_ids,omitempty"`
	AffectedHostCount int      `json:"affected_host_count"`
	TotalOccurrences  int      `json:"total_occurrences"`
}

// VulnHostItem is one affected host in a vulnerability detail listing.
type VulnHostItem struct {
	IP            string `json:"ip"`
	DNS           string `json:"dns,omitempty"`
	OS            string `json:"os,omitempty"`
	Port          int    `json:"port,omitempty"`
	Protocol      string `json:"protocol,omitempty"`
	VulnStatus    string `json:"vuln_status,omitempty"`
	FirstDetected string `json:"first_detected,omitempty"`
	LastDetected  string `json:"last_detected,omitempty"`
}

// PaginatedVulnHosts is a page of hosts affected by a QID.
type PaginatedVulnHosts struct {
	Items    []VulnHostItem `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// HostDetail is the full record for a single host.
type HostDetail struct {
	IP        string `json:"ip"`
	DNS       string `json:"dns,omitempty"`
	NetBIOS   string `json:"netbios,omitempty"`
	OS        string `json:"os,omitempty"`
	OSCPE     string `json:"os_cpe,omitempty"`
	FirstSeen string `json:"first_seen,omitempty"`
	LastSeen  string `json:"last_seen,omitempty"`
	VulnCount int    `json:"vuln_count"`
}

// HostVulnItem is one vulnerability occurrence on a host.
type HostVulnItem struct {
	QID            int    `json:"qid"`
	Title          string `json:"title"`
	Severity       int    `json:"severity"`
	Type           string `json:"type,omitempty"`
	Category       string `json:"category,omitempty"`
	VulnStatus     string `json:"vuln_status,omitempty"`
	Port           int    `json:"port,omitempty"`
	Protocol       string `json:"protocol,omitempty"`
	FirstDetected  string `json:"first_detected,omitempty"`
	LastDetected   string `json:"last_detected,omitempty"`
	TrackingMethod string `json:"tracking_method,omitempty"`
}

// PaginatedHostVulns is a page of vulnerabilities found on a host.
type PaginatedHostVulns struct {
	Items    []HostVulnItem `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
