package doctor

import (
	"fmt"
	"os"
	"slices"

	"github.com/thoreinstein/smartmcp/internal/errors"
)

// Fixer is implemented by checks that `smartmcp doctor --fix` can repair.
// CanFix and Fix report on the most recent Run.
type Fixer interface {
	CanFix() bool
	Fix() []FixResult
}

// FixResult is the outcome of one repair.
type FixResult struct {
	Path        string `json:"path"`
	Fixed       bool   `json:"fixed"`
	Description string `json:"description"`
	Error       error  `json:"-"`
}

// Modes applied by --fix. The memory database holds tool payloads and
// stays private to the user.
const (
	sharedFilePerm  os.FileMode = 0o644
	privateFilePerm os.FileMode = 0o600
	dirPerm         os.FileMode = 0o755
)

// PermissionFixer repairs the mode problems found by PathPermissionCheck.
type PermissionFixer struct {
	pending []pathIssue
}

// CanFix reports whether the last Run found a problem chmod can repair.
func (f *PermissionFixer) CanFix() bool {
	return slices.ContainsFunc(f.pending, func(i pathIssue) bool { return i.Fixable })
}

// Fix applies every pending repair once.
func (f *PermissionFixer) Fix() []FixResult {
	var results []FixResult
	for _, issue := range f.pending {
		if issue.Fixable {
			results = append(results, issue.fix())
		}
	}
	f.pending = nil
	return results
}

func (f *PermissionFixer) setIssues(issues []pathIssue) {
	f.pending = issues
}

func (i pathIssue) fix() FixResult {
	res := FixResult{Path: i.Path}
	if i.Want == 0 {
		res.Description = "no target mode for " + i.Kind
		res.Error = errors.Newf("cannot repair %s %s", i.Kind, i.Path)
		return res
	}
	if err := os.Chmod(i.Path, i.Want); err != nil {
		res.Description = fmt.Sprintf("chmod %04o failed: %v", i.Want, err)
		res.Error = errors.Wrapf(err, "chmod %04o %s", i.Want, i.Path)
		return res
	}
	res.Fixed = true
	res.Description = fmt.Sprintf("chmod %04o", i.Want)
	return res
}
