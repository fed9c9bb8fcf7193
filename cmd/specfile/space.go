package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orbit-ml/specfile/pkg/cli"
	"github.com/orbit-ml/specfile/pkg/specfile/group"
)

var spaceFlags struct {
	files  []string
	format string
}

var spaceCmd = &cobra.Command{
	Use:   "space [files...]",
	Short: "Describe the search space of a group",
	Long: `Print the search strategy, size and parameters of a group's matrix.

Examples:
  specfile space -f sweep.yaml
  specfile space -f sweep.yaml --format yaml`,
	RunE: describeSpace,
}

func init() {
	rootCmd.AddCommand(spaceCmd)

	spaceCmd.Flags().StringArrayVarP(&spaceFlags.files, "file", "f", nil, "specification file, repeat to merge several")
	spaceCmd.Flags().StringVar(&spaceFlags.format, "format", "text", "output format: text, json, yaml")
}

// SpaceSummary describes a group's search space.
type SpaceSummary struct {
	Project     string         `json:"project" yaml:"project"`
	Strategy    string         `json:"strategy" yaml:"strategy"`
	Concurrency int            `json:"concurrency" yaml:"concurrency"`
	Cardinality int            `json:"cardinality" yaml:"cardinality"`
	Seed        uint64         `json:"seed" yaml:"seed"`
	Params      []ParamSummary `json:"params" yaml:"params"`
}

// ParamSummary describes one matrix parameter.
type ParamSummary struct {
	Name         string   `json:"name" yaml:"name"`
	Kind         string   `json:"kind" yaml:"kind"`
	Distribution string   `json:"distribution" yaml:"distribution"`
	Enumerable   bool     `json:"enumerable" yaml:"enumerable"`
	Warnings     []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func describeSpace(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(spaceFlags.format, cli.FormatText, cli.FormatJSON, cli.FormatYAML)
	if err != nil {
		return err
	}
	cfg, tel, err := setup(cmd)
	if err != nil {
		return err
	}
	defer shutdown(tel)

	files, err := specFiles(cfg, spaceFlags.files, args)
	if err != nil {
		return err
	}

	loader := newLoader(cfg, tel)
	spec, err := loader.Load(commandContext(cmd), files...)
	if err != nil {
		printCheck(cmd.ErrOrStderr(), checkResult(files, nil, err))
		return &cli.InvalidError{Files: files, Issues: len(cli.Issues(err))}
	}
	expander, err := loader.Expander(spec)
	if err != nil {
		return cli.NewCommandError("space", err)
	}
	summary, err := summarizeSpace(expander)
	if err != nil {
		return cli.NewCommandError("space", err)
	}
	if project, err := spec.Project(); err == nil && project != nil {
		summary.Project = project.Name
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatText {
		return printSpace(out, summary)
	}
	return cli.NewFormatter(format).FormatTo(out, summary)
}

func summarizeSpace(expander *group.Expander) (SpaceSummary, error) {
	plan, err := expander.Plan()
	if err != nil {
		return SpaceSummary{}, err
	}
	space, err := expander.SearchSpace()
	if err != nil {
		return SpaceSummary{}, err
	}

	summary := SpaceSummary{
		Strategy:    string(plan.Strategy),
		Concurrency: plan.Concurrency,
		Cardinality: plan.Cardinality,
		Seed:        expander.Seed(),
	}
	for _, name := range space.Names() {
		dist, _ := space.Get(name)
		summary.Params = append(summary.Params, ParamSummary{
			Name:         name,
			Kind:         string(dist.Kind()),
			Distribution: dist.String(),
			Enumerable:   dist.IsEnumerable(),
			Warnings:     dist.Warnings(),
		})
	}
	return summary, nil
}

func printSpace(w io.Writer, s SpaceSummary) error {
	size := fmt.Sprint(s.Cardinality)
	if s.Cardinality < 0 {
		size = "unbounded"
	}
	fmt.Fprintf(w, "Project:     %s\n", s.Project)
	fmt.Fprintf(w, "Strategy:    %s\n", s.Strategy)
	fmt.Fprintf(w, "Concurrency: %d\n", s.Concurrency)
	fmt.Fprintf(w, "Points:      %s\n", size)
	fmt.Fprintf(w, "Seed:        %d\n\n", s.Seed)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAM\tKIND\tDISTRIBUTION")
	for _, p := range s.Params {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Kind, p.Distribution)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, p := range s.Params {
		for _, warning := range p.Warnings {
			fmt.Fprintf(w, "⚠ %s: %s\n", p.Name, warning)
		}
	}
	return nil
}
