package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/smartmcp/cmd"
	"github.com/thoreinstein/smartmcp/internal/errors"
)

// Output formats of gen-doc.
const (
	docFormatMarkdown = "markdown"
	docFormatMan      = "man"
)

var genDocCmd = &cobra.Command{
	Use:   "gen-doc",
	Short: "Generate reference pages for the CLI",
	Long: `Generate one reference page per command.

Markdown pages carry front matter for the documentation site; man pages go
to section 1 and can be installed with the release archive.`,
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		outputDir, _ := c.Flags().GetString("dir")
		format, _ := c.Flags().GetString("format")
		if outputDir == "" {
			return errors.NewUserError(errors.New("output directory is required"), "Pass --dir <path>")
		}
		if err := genDocs(c.Root(), outputDir, format); err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "Generated %s pages in %s\n", format, outputDir)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringP("dir", "d", "", "Output directory for documentation")
	genDocCmd.Flags().String("format", docFormatMarkdown, "Page format: markdown or man")
	rootCmd.AddCommand(genDocCmd)
}

func genDocs(root *cobra.Command, outputDir, format string) error {
	var gen func() error
	switch format {
	case docFormatMarkdown, "":
		gen = func() error {
			return doc.GenMarkdownTreeCustom(root, outputDir, filePrepender, linkHandler)
		}
	case docFormatMan:
		gen = func() error {
			return doc.GenManTree(root, &doc.GenManHeader{
				Title:   strings.ToUpper(cmd.Name),
				Section: "1",
				Source:  cmd.Name + " " + cmd.ResolvedVersion(),
				Manual:  "smartmcp manual",
			}, outputDir)
		}
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", format), "Use --format markdown or --format man")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	root.DisableAutoGenTag = true
	if err := gen(); err != nil {
		return errors.Wrapf(err, "generating %s pages", format)
	}
	return nil
}

// filePrepender adds front matter titled after the command path, so
// smartmcp_mcp_add.md is titled "smartmcp mcp add".
func filePrepender(filename string) string {
	name := filepath.Base(filename)
	title := strings.ReplaceAll(strings.TrimSuffix(name, filepath.Ext(name)), "_", " ")
	return fmt.Sprintf("---\ntitle: %q\ndescription: %q\n---\n", title, "Reference for the "+title+" command")
}

func linkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return "/docs/reference/" + strings.ToLower(base) + "/"
}
