package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"sort"

	"github.com/thoreinstein/smartmcp/internal/config"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/mcpconfig"
	"github.com/thoreinstein/smartmcp/internal/redact"
	"github.com/thoreinstein/smartmcp/internal/registry"
)

// ConfigCheck validates the loaded configuration.
type ConfigCheck struct {
	cfg *config.Config
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck creates a check of cfg.
func NewConfigCheck(cfg *config.Config) *ConfigCheck {
	return &ConfigCheck{cfg: cfg}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string { return "config" }

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string { return "config" }

// Run validates every configuration field.
func (c *ConfigCheck) Run(_ context.Context) *CheckResult {
	errs := config.Validate(c.cfg)
	if len(errs) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("configuration is valid (store backend %s)", c.cfg.Store.Backend),
		}
	}

	problems := make([]string, len(errs))
	for i, err := range errs {
		problems[i] = err.Error()
	}
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityError,
		Message:  fmt.Sprintf("%d invalid configuration value(s)", len(errs)),
		Details:  map[string]any{"errors": problems},
		FixHint:  "Run: smartmcp config list",
	}
}

// Lister reads the configured server entries.
type Lister interface {
	List(ctx context.Context) ([]mcpconfig.Entry, error)
	Path() string
}

// StoreCheck verifies the server configuration file can be read.
type StoreCheck struct {
	store Lister
}

var _ Check = (*StoreCheck)(nil)

// NewStoreCheck creates a check of st.
func NewStoreCheck(st Lister) *StoreCheck {
	return &StoreCheck{store: st}
}

// Name returns the unique identifier for this check.
func (c *StoreCheck) Name() string { return "servers-file" }

// Category returns the grouping for this check.
func (c *StoreCheck) Category() string { return "store" }

// Run lists the configured servers and reports repeated keys.
func (c *StoreCheck) Run(ctx context.Context) *CheckResult {
	path := c.store.Path()
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": path},
	}

	entries, err := c.store.List(ctx)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = SeverityWarning
		result.Message = path + " does not exist"
		result.FixHint = "Check project_root and source_file, or run from the project directory"
		return result
	case errors.Is(err, errors.ErrExtraction):
		result.Status = SeverityError
		result.Message = err.Error()
		result.FixHint = "The file must declare 'const servers: Record<string, any> = { ... };'"
		return result
	case err != nil:
		result.Status = SeverityError
		result.Message = err.Error()
		return result
	}

	keys := make([]string, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
		seen[e.Key]++
	}
	result.Details["servers"] = keys

	var dupes []string
	for k, n := range seen {
		if n > 1 {
			dupes = append(dupes, k)
		}
	}
	if len(dupes) > 0 {
		sort.Strings(dupes)
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d servers configured, repeated keys: %v", len(entries), dupes)
		result.Details["duplicates"] = dupes
		result.FixHint = "Later entries shadow earlier ones in most MCP clients; set store.duplicates to reject to prevent this"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%d servers configured in %s", len(entries), path)
	return result
}

// Searcher is the registry search used by RegistryCheck.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) registry.SearchResult
}

// RegistryCheck verifies the registry answers a search.
type RegistryCheck struct {
	searcher  Searcher
	apiKeyEnv string
}

var _ Check = (*RegistryCheck)(nil)

// NewRegistryCheck creates a check of s. apiKeyEnv names the environment
// variable holding the registry API key.
func NewRegistryCheck(s Searcher, apiKeyEnv string) *RegistryCheck {
	return &RegistryCheck{searcher: s, apiKeyEnv: apiKeyEnv}
}

// Name returns the unique identifier for this check.
func (c *RegistryCheck) Name() string { return "registry" }

// Category returns the grouping for this check.
func (c *RegistryCheck) Category() string { return "registry" }

// Run performs a one-result search.
func (c *RegistryCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{},
	}

	key := ""
	if c.apiKeyEnv != "" {
		key = os.Getenv(c.apiKeyEnv)
		result.Details["api_key_env"] = c.apiKeyEnv
	}
	if key != "" {
		result.Details["api_key"] = redact.MaskValue(key)
	}

	res := c.searcher.Search(ctx, "mcp", 1)
	if res.OK() {
		result.Status = SeverityPass
		result.Message = "registry answered a search"
		if key == "" {
			result.Status = SeverityInfo
			result.Message = "registry answered without an API key"
		}
		return result
	}

	result.Details["reason"] = res.Unavailable.Reason
	if res.Unavailable.StatusCode != 0 {
		result.Details["status_code"] = res.Unavailable.StatusCode
	}
	result.Message = "registry unavailable: " + res.Unavailable.Reason

	authFailure := slices.Contains([]int{401, 403}, res.Unavailable.StatusCode)
	switch {
	case authFailure && key == "":
		result.Status = SeverityError
		result.FixHint = fmt.Sprintf("export %s=<your Smithery API key>", c.apiKeyEnv)
	case authFailure:
		result.Status = SeverityError
		result.FixHint = fmt.Sprintf("The key in %s was rejected; create a new one", c.apiKeyEnv)
	default:
		// discover reports an unavailable registry without failing
		result.Status = SeverityWarning
		result.FixHint = "Check network access to registry.base_url"
	}
	return result
}

// PathPermissionCheck validates the modes of the files and directories
// smartmcp writes.
type PathPermissionCheck struct {
	PermissionFixer

	files   []string
	private []string
	dirs    []string
}

var (
	_ Check = (*PathPermissionCheck)(nil)
	_ Fixer = (*PathPermissionCheck)(nil)
)

// NewPathPermissionCheck creates a check of the given files and directories.
// Paths that do not exist are skipped.
func NewPathPermissionCheck(files, dirs []string) *PathPermissionCheck {
	return &PathPermissionCheck{files: files, dirs: dirs}
}

// WithPrivateFiles adds files that must not be readable by other users,
// such as the memory database.
func (c *PathPermissionCheck) WithPrivateFiles(paths ...string) *PathPermissionCheck {
	c.private = append(c.private, paths...)
	return c
}

// Name returns the unique identifier for this check.
func (c *PathPermissionCheck) Name() string { return "path-permissions" }

// Category returns the grouping for this check.
func (c *PathPermissionCheck) Category() string { return "filesystem" }

// pathIssue is one mode problem. Want is the mode --fix applies, zero when
// chmod cannot help.
type pathIssue struct {
	Path        string
	Kind        string // "file", "private file" or "directory"
	Problem     string
	Severity    Severity
	Permissions string
	Fixable     bool
	Want        os.FileMode
	FixHint     string
}

// Run executes the path and permission diagnostic check.
func (c *PathPermissionCheck) Run(_ context.Context) *CheckResult {
	var issues []pathIssue
	checked := 0

	for _, f := range c.files {
		if found, fileIssues := c.checkFile(f, false); found {
			checked++
			issues = append(issues, fileIssues...)
		}
	}
	for _, f := range c.private {
		if found, fileIssues := c.checkFile(f, true); found {
			checked++
			issues = append(issues, fileIssues...)
		}
	}
	for _, d := range c.dirs {
		if found, dirIssues := c.checkDirectory(d); found {
			checked++
			issues = append(issues, dirIssues...)
		}
	}

	c.setIssues(issues)
	return c.buildResult(issues, checked)
}

func (c *PathPermissionCheck) checkFile(path string, private bool) (bool, []pathIssue) {
	kind, want := "file", sharedFilePerm
	if private {
		kind, want = "private file", privateFilePerm
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return true, []pathIssue{{
			Path:     path,
			Kind:     kind,
			Problem:  fmt.Sprintf("cannot stat file: %v", err),
			Severity: SeverityError,
		}}
	}

	f, err := os.Open(path)
	if err != nil {
		return true, []pathIssue{{
			Path:        path,
			Kind:        kind,
			Problem:     "file is not readable",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     fmt.Sprintf("chmod %o %s", want, path),
		}}
	}
	f.Close()

	// Unix permissions don't apply on Windows
	if runtime.GOOS == "windows" {
		return true, nil
	}
	perm := info.Mode().Perm()
	issue := pathIssue{
		Path:        path,
		Kind:        kind,
		Severity:    SeverityWarning,
		Permissions: formatPermissions(info.Mode()),
		Fixable:     true,
		Want:        want,
		FixHint:     fmt.Sprintf("chmod %o %s", want, path),
	}
	switch {
	case perm&0o002 != 0:
		issue.Problem = "file is world-writable (security risk)"
	case private && perm&0o077 != 0:
		issue.Problem = "file is readable by other users"
	default:
		return true, nil
	}
	return true, []pathIssue{issue}
}

func (c *PathPermissionCheck) checkDirectory(path string) (bool, []pathIssue) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return true, []pathIssue{{
			Path:     path,
			Kind:     "directory",
			Problem:  fmt.Sprintf("cannot stat directory: %v", err),
			Severity: SeverityError,
		}}
	}
	if !info.IsDir() {
		return true, []pathIssue{{
			Path:     path,
			Kind:     "directory",
			Problem:  "expected directory but found file",
			Severity: SeverityError,
		}}
	}

	var issues []pathIssue
	if !isDirectoryWritable(path) {
		issues = append(issues, pathIssue{
			Path:        path,
			Kind:        "directory",
			Problem:     "directory is not writable",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+w " + path,
		})
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o002 != 0 {
		issues = append(issues, pathIssue{
			Path:        path,
			Kind:        "directory",
			Problem:     "directory is world-writable (security risk)",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			Want:        dirPerm,
			FixHint:     fmt.Sprintf("chmod %o %s", dirPerm, path),
		})
	}
	return true, issues
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func isDirectoryWritable(path string) bool {
	tmpFile, err := os.CreateTemp(path, ".smartmcp-doctor-*")
	if err != nil {
		return false
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	os.Remove(tmpPath)
	return true
}

// buildResult constructs the final CheckResult from accumulated issues.
func (c *PathPermissionCheck) buildResult(issues []pathIssue, checked int) *CheckResult {
	if len(issues) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("all %d paths have valid permissions", checked),
		}
	}

	status := SeverityWarning
	fixable := false
	issueDetails := make([]map[string]any, 0, len(issues))
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			status = SeverityError
		}
		fixable = fixable || issue.Fixable

		m := map[string]any{
			"path":     issue.Path,
			"type":     issue.Kind,
			"problem":  issue.Problem,
			"severity": issue.Severity.String(),
		}
		if issue.Permissions != "" {
			m["permissions"] = issue.Permissions
		}
		if issue.FixHint != "" {
			m["fix_hint"] = issue.FixHint
		}
		issueDetails = append(issueDetails, m)
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   status,
		Message:  fmt.Sprintf("%d issue(s) in %d paths", len(issues), checked),
		Details: map[string]any{
			"checked_paths": checked,
			"issue_count":   len(issues),
			"issues":        issueDetails,
		},
		Fixable: fixable,
	}
	if fixable {
		result.FixHint = "Run: smartmcp doctor --fix"
	} else {
		result.FixHint = issues[0].FixHint
	}
	return result
}

// formatPermissions returns the octal and symbolic form of mode, e.g.
// "0644 (-rw-r--r--)".
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o (%s)", mode.Perm(), mode.Perm())
}
