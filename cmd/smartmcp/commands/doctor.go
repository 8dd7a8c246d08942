package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/smartmcp/cmd/smartmcp/commands/flags"
	"github.com/thoreinstein/smartmcp/internal/cli"
	"github.com/thoreinstein/smartmcp/internal/doctor"
	"github.com/thoreinstein/smartmcp/internal/errors"
	"github.com/thoreinstein/smartmcp/internal/paths"
)

var (
	doctorJSON    bool
	doctorVerbose bool
	doctorOffline bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "all", false,
		"show every check including passed ones")
	doctorCmd.Flags().BoolVar(&doctorOffline, "offline", false,
		"skip the registry check")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"fix permission problems that can be fixed automatically")
	doctorCmd.MarkFlagsMutuallyExclusive("json", "all")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Run diagnostic checks on the smartmcp configuration, the server
configuration file, the directories smartmcp writes and the registry.

Output modes:
  (default)   Show errors and warnings
  --all       Show all checks including passed ones
  --json      Machine-readable JSON output

Exit codes:
  0 - No errors (warnings may be present)
  2 - Errors present`,
	Example: `  # Check everything
  smartmcp doctor

  # Skip the network check and fix file permissions
  smartmcp doctor --offline --fix

See Also: smartmcp config list`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	app, err := flags.OpenApp(cmd, cli.OpenOptions{})
	if err != nil {
		return err
	}

	runner := doctor.NewRunner(
		doctor.NewConfigCheck(app.Config),
		doctor.NewStoreCheck(app.Store),
		doctor.NewPathPermissionCheck(
			[]string{app.Store.Path()},
			[]string{filepath.Dir(app.Store.Path()), app.Config.Backup.Dir, paths.LockDir()},
		).WithPrivateFiles(app.Config.Memory.File),
	)
	if !doctorOffline {
		runner.AddCheck(doctor.NewRegistryCheck(app.Registry, app.Config.Registry.APIKeyEnv))
	}

	return runDoctorWithWriter(cmd.Context(), cmd.OutOrStdout(), runner)
}

func runDoctorWithWriter(ctx context.Context, w io.Writer, runner *doctor.Runner) error {
	report := runner.Run(ctx)

	var fixes []doctor.FixResult
	if doctorFix {
		for _, check := range runner.Checks() {
			if f, ok := check.(doctor.Fixer); ok && f.CanFix() {
				fixes = append(fixes, f.Fix()...)
			}
		}
	}

	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		out := struct {
			*doctor.Report
			Fixes []doctor.FixResult `json:"fixes,omitempty"`
		}{report, fixes}
		if err := enc.Encode(out); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
	} else {
		writeDoctorText(w, report, fixes)
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	return nil
}

func writeDoctorText(w io.Writer, report *doctor.Report, fixes []doctor.FixResult) {
	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status.Problem()
		if !doctorVerbose && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	for _, f := range fixes {
		hasOutput = true
		icon := color.GreenString("✓")
		if !f.Fixed {
			icon = color.RedString("✗")
		}
		fmt.Fprintf(w, "%s fixed %s: %s\n", icon, f.Path, f.Description)
	}

	if hasOutput {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}

// errDoctorErrors is returned when any check reports an error.
var errDoctorErrors = errors.New("doctor found errors")
