package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

// rawQueryPath appends an already-canonical query string (as produced by the
// filter store) without re-encoding it, so identical filter state always
// yields an identical request line.
func rawQueryPath(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}

// DashboardOverview fetches the filtered dashboard aggregates.
func (c *Client) DashboardOverview(ctx context.Context, filterQuery string) (schemas.DashboardOverview, error) {
	var out schemas.DashboardOverview
	err := c.GetJSON(ctx, rawQueryPath("/api/dashboard/overview", filterQuery), &out)
	return out, err
}

// VulnDetail fetches the full record for one QID.
func (c *Client) VulnDetail(ctx context.Context, qid int) (schemas.VulnDetail, error) {
	var out schemas.VulnDetail
	err := c.GetJSON(ctx, fmt.Sprintf("/api/vulnerabilities/%d", qid), &out)
	return out, err
}

// VulnHosts fetches one page of hosts affected by a QID.
func (c *Client) VulnHosts(ctx context.Context, qid, page, pageSize int) (schemas.PaginatedVulnHosts, error) {
	var out schemas.PaginatedVulnHosts
	err := c.GetJSON(ctx, fmt.Sprintf("/api/vulnerabilities/%d/hosts?%s", qid, pageQuery(page, pageSize)), &out)
	return out, err
}

// HostDetail fetches the full record for one host.
func (c *Client) HostDetail(ctx context.Context, ip string) (schemas.HostDetail, error) {
	var out schemas.HostDetail
	err := c.GetJSON(ctx, "/api/hosts/"+url.PathEscape(ip), &out)
	return out, err
}

// HostVulns fetches one page of vulnerabilities found on a host.
func (c *Client) HostVulns(ctx context.Context, ip string, page, pageSize int) (schemas.PaginatedHostVulns, error) {
	var out schemas.PaginatedHostVulns
	err := c.GetJSON(ctx, fmt.Sprintf("/api/hosts/%s/vulnerabilities?%s", url.PathEscape(ip), pageQuery(page, pageSize)), &out)
	return out, err
}

// EnterprisePreset fetches the server-stored default filter predicate.
func (c *Client) EnterprisePreset(ctx context.Context) (schemas.EnterprisePreset, error) {
	var out schemas.EnterprisePreset
	err := c.GetJSON(ctx, "/api/presets/enterprise", &out)
	return out, err
}

// UpdateEnterprisePreset replaces the enterprise preset (admin only).
func (c *Client) UpdateEnterprisePreset(ctx context.Context, preset schemas.EnterprisePreset) (schemas.EnterprisePreset, error) {
	var out schemas.EnterprisePreset
	err := c.PutJSON(ctx, "/api/presets/enterprise", preset, &out)
	return out, err
}

// UserPresets lists the caller's saved presets.
func (c *Client) UserPresets(ctx context.Context) ([]schemas.UserPreset, error) {
	var out []schemas.UserPreset
	err := c.GetJSON(ctx, "/api/presets/user", &out)
	return out, err
}

// CreateUserPreset saves a personal preset.
func (c *Client) CreateUserPreset(ctx context.Context, preset schemas.UserPreset) (schemas.UserPreset, error) {
	var out schemas.UserPreset
	err := c.PostJSON(ctx, "/api/presets/user", preset, &out)
	return out, err
}

// DeleteUserPreset removes a personal preset.
func (c *Client) DeleteUserPreset(ctx context.Context, id int) error {
	return c.Delete(ctx, fmt.Sprintf("/api/presets/user/%d", id))
}

// FreshnessSettings fetches the stale/hide day thresholds.
func (c *Client) FreshnessSettings(ctx context.Context) (schemas.FreshnessSettings, error) {
	var out schemas.FreshnessSettings
	err := c.GetJSON(ctx, "/api/settings/freshness", &out)
	return out, err
}

// UpdateFreshnessSettings replaces the thresholds (admin only).
func (c *Client) UpdateFreshnessSettings(ctx context.Context, s schemas.FreshnessSettings) (schemas.FreshnessSettings, error) {
	var out schemas.FreshnessSettings
	err := c.PutJSON(ctx, "/api/settings/freshness", s, &out)
	return out, err
}

// Imports lists import history, most recent first.
func (c *Client) Imports(ctx context.Context, page, pageSize int) (schemas.ImportList, error) {
	var out schemas.ImportList
	err := c.GetJSON(ctx, "/api/imports?"+pageQuery(page, pageSize), &out)
	return out, err
}

// UploadImport submits a scan export file for ingestion.
func (c *Client) UploadImport(ctx context.Context, fileName string, content []byte) (schemas.ImportUploadResult, error) {
	var out schemas.ImportUploadResult
	err := c.UploadFile(ctx, "/api/imports/upload", "file", fileName, content, &out)
	return out, err
}

// DeleteImport removes an import and its report data.
func (c *Client) DeleteImport(ctx context.Context, id int) error {
	return c.Delete(ctx, fmt.Sprintf("/api/imports/%d", id))
}

// Users lists accounts.
func (c *Client) Users(ctx context.Context, page, pageSize int) (schemas.UserList, error) {
	var out schemas.UserList
	err := c.GetJSON(ctx, "/api/users?"+pageQuery(page, pageSize), &out)
	return out, err
}

// Profiles lists the authorization profiles assignable to users.
func (c *Client) Profiles(ctx context.Context) ([]schemas.Profile, error) {
	var out []schemas.Profile
	err := c.GetJSON(ctx, "/api/users/profiles", &out)
	return out, err
}

// CreateUser creates an account (admin only).
func (c *Client) CreateUser(ctx context.Context, u schemas.UserCreate) (schemas.User, error) {
	var out schemas.User
	err := c.PostJSON(ctx, "/api/users", u, &out)
	return out, err
}

// UpdateUser applies partial account mutations (admin only).
func (c *Client) UpdateUser(ctx context.Context, id int, u schemas.UserUpdate) (schemas.User, error) {
	var out schemas.User
	err := c.PutJSON(ctx, fmt.Sprintf("/api/users/%d", id), u, &out)
	return out, err
}

// DeleteUser removes an account (admin only).
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.Delete(ctx, fmt.Sprintf("/api/users/%d", id))
}

// Layers lists categorization layers in display order.
func (c *Client) Layers(ctx context.Context) ([]schemas.Layer, error) {
	var out []schemas.Layer
	err := c.GetJSON(ctx, "/api/layers", &out)
	return out, err
}

// CreateLayer adds a layer (admin only).
func (c *Client) CreateLayer(ctx context.Context, l schemas.Layer) (schemas.Layer, error) {
	var out schemas.Layer
	err := c.PostJSON(ctx, "/api/layers", l, &out)
	return out, err
}

// UpdateLayer mutates a layer (admin only).
func (c *Client) UpdateLayer(ctx context.Context, id int, l schemas.Layer) (schemas.Layer, error) {
	var out schemas.Layer
	err := c.PutJSON(ctx, fmt.Sprintf("/api/layers/%d", id), l, &out)
	return out, err
}

// DeleteLayer removes a layer (admin only).
func (c *Client) DeleteLayer(ctx context.Context, id int) error {
	return c.Delete(ctx, fmt.Sprintf("/api/layers/%d", id))
}

// LayerRules lists the classification rules of a layer.
func (c *Client) LayerRules(ctx context.Context, layerID int) ([]schemas.LayerRule, error) {
	var out []schemas.LayerRule
	err := c.GetJSON(ctx, fmt.Sprintf("/api/layers/%d/rules", layerID), &out)
	return out, err
}

// CreateLayerRule adds a classification rule (admin only).
func (c *Client) CreateLayerRule(ctx context.Context, layerID int, r schemas.LayerRule) (schemas.LayerRule, error) {
	var out schemas.LayerRule
	err := c.PostJSON(ctx, fmt.Sprintf("/api/layers/%d/rules", layerID), r, &out)
	return out, err
}

// DeleteLayerRule removes a classification rule (admin only).
func (c *Client) DeleteLayerRule(ctx context.Context, layerID, ruleID int) error {
	return c.Delete(ctx, fmt.Sprintf("/api/layers/%d/rules/%d", layerID, ruleID))
}

// StartReclassify kicks off the asynchronous reclassification job.
func (c *Client) StartReclassify(ctx context.Context) (schemas.ReclassifyStart, error) {
	var out schemas.ReclassifyStart
	err := c.PostJSON(ctx, "/api/layers/reclassify", nil, &out)
	return out, err
}

// ReclassifyStatus polls reclassification progress.
func (c *Client) ReclassifyStatus(ctx context.Context) (schemas.ReclassifyStatus, error) {
	var out schemas.ReclassifyStatus
	err := c.GetJSON(ctx, "/api/layers/reclassify/status", &out)
	return out, err
}

// UploadLogo replaces the branding logo (admin only).
func (c *Client) UploadLogo(ctx context.Context, fileName string, content []byte) error {
	return c.UploadFile(ctx, "/api/branding/logo", "file", fileName, content, nil)
}

// DeleteLogo removes the custom logo, restoring the default (admin only).
func (c *Client) DeleteLogo(ctx context.Context) error {
	return c.Delete(ctx, "/api/branding/logo")
}

// LogoTemplate downloads the SVG template for producing a conforming logo.
func (c *Client) LogoTemplate(ctx context.Context) ([]byte, error) {
	return c.GetBytes(ctx, "/api/branding/template")
}

// Preferences fetches the current user's personal dashboard preferences.
func (c *Client) Preferences(ctx context.Context) (schemas.Preferences, error) {
	var out schemas.Preferences
	err := c.GetJSON(ctx, "/api/user/preferences", &out)
	return out, err
}

// UpdatePreferences merges the given fields into the stored preferences;
// empty fields are left untouched server-side.
func (c *Client) UpdatePreferences(ctx context.Context, p schemas.Preferences) (schemas.Preferences, error) {
	var out schemas.Preferences
	err := c.PutJSON(ctx, "/api/user/preferences", p, &out)
	return out, err
}

// ResetLayout restores the default dashboard widget layout.
func (c *Client) ResetLayout(ctx context.Context) error {
	return c.Delete(ctx, "/api/user/preferences/layout")
}

// WatchPaths lists the directories the import watcher monitors (admin only).
func (c *Client) WatchPaths(ctx context.Context) ([]schemas.WatchPath, error) {
	var out []schemas.WatchPath
	err := c.GetJSON(ctx, "/api/watcher/paths", &out)
	return out, err
}

// CreateWatchPath registers a directory with the import watcher (admin only).
func (c *Client) CreateWatchPath(ctx context.Context, wp schemas.WatchPath) (schemas.WatchPath, error) {
	var out schemas.WatchPath
	err := c.PostJSON(ctx, "/api/watcher/paths", wp, &out)
	return out, err
}

// UpdateWatchPath applies a partial edit to a watched directory (admin only).
func (c *Client) UpdateWatchPath(ctx context.Context, id int, upd schemas.WatchPathUpdate) (schemas.WatchPath, error) {
	var out schemas.WatchPath
	err := c.PutJSON(ctx, fmt.Sprintf("/api/watcher/paths/%d", id), upd, &out)
	return out, err
}

// DeleteWatchPath stops watching a directory (admin only).
func (c *Client) DeleteWatchPath(ctx context.Context, id int) error {
	return c.Delete(ctx, fmt.Sprintf("/api/watcher/paths/%d", id))
}

// WatcherStatus reports whether the watcher service is running and how many
// paths and files it tracks (admin only).
func (c *Client) WatcherStatus(ctx context.Context) (schemas.WatcherStatus, error) {
	var out schemas.WatcherStatus
	err := c.GetJSON(ctx, "/api/watcher/status", &out)
	return out, err
}

// Monitoring fetches the service/metrics/alerts snapshot.
func (c *Client) Monitoring(ctx context.Context) (schemas.MonitoringSnapshot, error) {
	var out schemas.MonitoringSnapshot
	err := c.GetJSON(ctx, "/api/monitoring", &out)
	return out, err
}

// TrendQuery runs an ad-hoc trend query.
func (c *Client) TrendQuery(ctx context.Context, req schemas.TrendQueryRequest) (schemas.TrendQueryResponse, error) {
	var out schemas.TrendQueryResponse
	err := c.PostJSON(ctx, "/api/trends/query", req, &out)
	return out, err
}

// TrendTemplates lists saved trend queries.
func (c *Client) TrendTemplates(ctx context.Context) ([]schemas.TrendTemplate, error) {
	var out []schemas.TrendTemplate
	err := c.GetJSON(ctx, "/api/trends/templates", &out)
	return out, err
}

// CreateTrendTemplate saves a trend query for reuse.
func (c *Client) CreateTrendTemplate(ctx context.Context, t schemas.TrendTemplate) (schemas.TrendTemplate, error) {
	var out schemas.TrendTemplate
	err := c.PostJSON(ctx, "/api/trends/templates", t, &out)
	return out, err
}

// DeleteTrendTemplate removes a saved trend query.
func (c *Client) DeleteTrendTemplate(ctx context.Context, id int) error {
	return c.Delete(ctx, fmt.Sprintf("/api/trends/templates/%d", id))
}

func pageQuery(page, pageSize int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("page_size", strconv.Itoa(pageSize))
	return v.Encode()
}
