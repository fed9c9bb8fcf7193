package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/orbit-ml/specfile/pkg/cli"
	"github.com/orbit-ml/specfile/pkg/config"
	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	"github.com/orbit-ml/specfile/pkg/specfile/group"
	"github.com/orbit-ml/specfile/pkg/specfile/parser"
)

var expandFlags struct {
	files    []string
	n        int
	seed     int64
	workers  int
	format   string
	progress bool
}

var expandCmd = &cobra.Command{
	Use:   "expand [files...]",
	Short: "Materialize the experiments of a group",
	Long: `Expand a group specification into one experiment specification per
point of its search space.

Grid search expands every point. Random search draws -n points, or
settings.random_search.n_experiments when -n is 0. Hyperband allocates
experiments itself, so -n selects how many sampled points to print.

Random points depend only on the seed and their index: settings.seed wins
over --seed, which wins over expansion.seed from the configuration. Without
any of them the seed is derived from the document.

YAML output is a stream of documents; JSON output has one experiment per
line.

Examples:
  # Every point of a grid
  specfile expand -f sweep.yaml

  # 20 random points, reproducibly
  specfile expand -f sweep.yaml -n 20 --seed 7 --format json`,
	RunE: expandGroup,
}

func init() {
	rootCmd.AddCommand(expandCmd)

	expandCmd.Flags().StringArrayVarP(&expandFlags.files, "file", "f", nil, "specification file, repeat to merge several")
	expandCmd.Flags().IntVarP(&expandFlags.n, "num", "n", 0, "number of experiments (0 uses the group settings)")
	expandCmd.Flags().Int64Var(&expandFlags.seed, "seed", -1, "seed for random points (negative leaves it unset)")
	expandCmd.Flags().IntVar(&expandFlags.workers, "workers", 0, "experiments built in parallel (0 uses the configuration)")
	expandCmd.Flags().StringVar(&expandFlags.format, "format", "", "output format: yaml, json (default from configuration)")
	expandCmd.Flags().BoolVar(&expandFlags.progress, "progress", false, "report progress on stderr")
}

func expandGroup(cmd *cobra.Command, args []string) error {
	cfg, tel, err := setup(cmd)
	if err != nil {
		return err
	}
	defer shutdown(tel)

	formatFlag := expandFlags.format
	if formatFlag == "" {
		formatFlag = cfg.Expansion.Format
	}
	format, err := cli.ParseFormat(formatFlag, cli.FormatYAML, cli.FormatJSON)
	if err != nil {
		return err
	}
	files, err := specFiles(cfg, expandFlags.files, args)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	loader := newLoader(cfg, tel)
	spec, err := loader.Load(ctx, files...)
	if err != nil {
		printCheck(cmd.ErrOrStderr(), checkResult(files, nil, err))
		return &cli.InvalidError{Files: files, Issues: len(cli.Issues(err))}
	}

	expander, err := loader.Expander(spec, expansionOptions(cfg)...)
	if err != nil {
		return cli.NewCommandError("expand", err)
	}

	out := cmd.OutOrStdout()
	if expandFlags.progress {
		return expandWithProgress(cmd, expander, out, format)
	}

	experiments, err := expander.Expand(ctx, expandFlags.n)
	if err != nil {
		return cli.NewCommandError("expand", err)
	}
	for _, exp := range experiments {
		if err := writeExperiment(out, exp, format); err != nil {
			return cli.NewCommandError("expand", err)
		}
	}
	return nil
}

func expandWithProgress(cmd *cobra.Command, expander *group.Expander, out io.Writer, format cli.OutputFormat) error {
	total, err := expander.Count(expandFlags.n)
	if err != nil {
		return cli.NewCommandError("expand", err)
	}

	progress := cli.NewProgressReporter(cmd.ErrOrStderr())
	progress.Start(int64(total))
	done := 0
	for exp, err := range expander.All(commandContext(cmd), expandFlags.n) {
		if err != nil {
			progress.Error(err)
			return cli.NewCommandError("expand", err)
		}
		if err := writeExperiment(out, exp, format); err != nil {
			return cli.NewCommandError("expand", err)
		}
		done++
		progress.Update(int64(done))
	}
	progress.Finish()
	return nil
}

func expansionOptions(cfg *config.Config) []group.Option {
	var opts []group.Option
	switch {
	case expandFlags.seed >= 0:
		opts = append(opts, group.WithSeed(uint64(expandFlags.seed)))
	case cfg.Expansion.Seed != nil:
		opts = append(opts, group.WithSeed(*cfg.Expansion.Seed))
	}
	workers := expandFlags.workers
	if workers <= 0 {
		workers = cfg.Expansion.Workers
	}
	if workers > 0 {
		opts = append(opts, group.WithWorkers(workers))
	}
	return opts
}

// experimentNode lays an experiment out for output, with its identity and
// parameters ahead of the resolved document.
func experimentNode(exp *group.Experiment) (*ast.Node, error) {
	doc, err := exp.Spec.Document()
	if err != nil {
		return nil, err
	}
	return ast.Mapping(
		ast.E("index", ast.Scalar(exp.Index)),
		ast.E("id", ast.Scalar(exp.ID.String())),
		ast.E("params", exp.Params.Node()),
		ast.E("specification", doc),
	), nil
}

func writeExperiment(w io.Writer, exp *group.Experiment, format cli.OutputFormat) error {
	node, err := experimentNode(exp)
	if err != nil {
		return err
	}

	if format == cli.FormatJSON {
		data, err := json.Marshal(node)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	data, err := parser.Encode(node)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "---\n%s", data)
	return err
}
