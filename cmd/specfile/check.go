package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/orbit-ml/specfile/pkg/cli"
	"github.com/orbit-ml/specfile/pkg/specfile/specification"
)

var checkFlags struct {
	files  []string
	format string
}

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Validate a specification",
	Long: `Read, merge and validate specification files.

The check command runs the whole pipeline: YAML parsing, header checks,
directive and reference resolution, and validation of every section of
the declared kind. All problems found are reported, each with its file,
line and a suggestion where one is known.

Examples:
  # Check one file
  specfile check -f polyaxonfile.yaml

  # Check a base document merged with an overlay
  specfile check -f polyaxonfile.yaml -f overrides.yaml

  # JSON output for CI
  specfile check -f polyaxonfile.yaml --format json`,
	RunE: checkSpecification,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringArrayVarP(&checkFlags.files, "file", "f", nil, "specification file, repeat to merge several")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")
}

// CheckResult is the outcome of checking one specification.
type CheckResult struct {
	Files    []string    `json:"files"`
	Valid    bool        `json:"valid"`
	Kind     string      `json:"kind,omitempty"`
	Project  string      `json:"project,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Issues   []cli.Issue `json:"issues,omitempty"`
}

func checkSpecification(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(checkFlags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}
	cfg, tel, err := setup(cmd)
	if err != nil {
		return err
	}
	defer shutdown(tel)

	files, err := specFiles(cfg, checkFlags.files, args)
	if err != nil {
		return err
	}

	spec, loadErr := newLoader(cfg, tel).Load(commandContext(cmd), files...)
	result := checkResult(files, spec, loadErr)

	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		if err := cli.NewFormatter(format).FormatTo(out, result); err != nil {
			return cli.NewCommandError("check", err)
		}
	} else {
		printCheck(out, result)
	}

	if !result.Valid {
		return &cli.InvalidError{Files: files, Issues: len(result.Issues)}
	}
	return nil
}

func checkResult(files []string, spec *specification.Specification, err error) CheckResult {
	result := CheckResult{Files: files}
	if err != nil {
		result.Issues = cli.Issues(err)
		return result
	}

	result.Valid = true
	result.Kind = string(spec.Descriptor().Kind())
	if header, err := spec.Header(); err == nil && header.Project != nil {
		result.Project = header.Project.Name
	}
	if space, err := spec.Matrix(); err == nil && space != nil {
		result.Warnings = space.Warnings()
	}
	return result
}

func printCheck(w io.Writer, result CheckResult) {
	if result.Valid {
		fmt.Fprintf(w, "✓ %v: valid %s", result.Files, result.Kind)
		if result.Project != "" {
			fmt.Fprintf(w, " (project %s)", result.Project)
		}
		fmt.Fprintln(w)
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  ⚠ %s\n", warning)
		}
		return
	}

	fmt.Fprintf(w, "✗ %v: %d issue(s)\n", result.Files, len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "  %s\n", formatIssue(issue))
		if issue.Suggestion != "" {
			fmt.Fprintf(w, "    → %s\n", issue.Suggestion)
		}
	}
}

func formatIssue(issue cli.Issue) string {
	var where string
	switch {
	case issue.File != "" && issue.Line > 0:
		where = fmt.Sprintf("%s:%d:%d: ", issue.File, issue.Line, issue.Column)
	case issue.Line > 0:
		where = fmt.Sprintf("line %d: ", issue.Line)
	}
	msg := issue.Message
	if issue.Path != "" {
		msg = issue.Path + ": " + msg
	}
	if issue.Type != "" {
		return fmt.Sprintf("%s[%s] %s", where, issue.Type, msg)
	}
	return where + msg
}
