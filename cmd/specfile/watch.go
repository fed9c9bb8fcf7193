package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/orbit-ml/specfile/pkg/cli"
	"github.com/orbit-ml/specfile/pkg/server"
	"github.com/orbit-ml/specfile/pkg/specfile/specification"
	"github.com/orbit-ml/specfile/pkg/specfile/watch"
)

var watchFlags struct {
	files  []string
	listen string
}

var watchCmd = &cobra.Command{
	Use:   "watch [files...]",
	Short: "Revalidate a specification whenever its files change",
	Long: `Watch specification files and rebuild the specification after every
change, printing the outcome of each build.

With a listen address (--listen or watch.listen_address) the command also
serves Prometheus metrics and health probes. Readiness follows the last
build: it fails while the specification is invalid.

Examples:
  specfile watch -f polyaxonfile.yaml
  specfile watch -f polyaxonfile.yaml --listen 127.0.0.1:9090`,
	RunE: watchSpecification,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringArrayVarP(&watchFlags.files, "file", "f", nil, "specification file, repeat to merge several")
	watchCmd.Flags().StringVar(&watchFlags.listen, "listen", "", "address for metrics and health endpoints")
}

func watchSpecification(cmd *cobra.Command, args []string) error {
	cfg, tel, err := setup(cmd)
	if err != nil {
		return err
	}
	defer shutdown(tel)

	files, err := specFiles(cfg, watchFlags.files, args)
	if err != nil {
		return err
	}

	logger := tel.Logger().Logger
	loader := newLoader(cfg, tel)
	w, err := watch.New(files, func(ctx context.Context) (*specification.Specification, error) {
		return loader.Load(ctx, files...)
	}, watch.WithDebounce(cfg.Watch.Debounce), watch.WithLogger(logger))
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer w.Stop()
	tel.Health().RegisterCheck("specification", w.Check)

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	out := cmd.OutOrStdout()
	g, gctx := errgroup.WithContext(ctx)

	address := watchFlags.listen
	if address == "" {
		address = cfg.Watch.ListenAddress
	}
	if address != "" {
		srv := server.NewServer(address, tel.Handler(), server.WithLogger(logger))
		g.Go(func() error { return srv.Start(gctx) })
	}
	g.Go(func() error {
		return w.Watch(gctx, func(r watch.Result) { printReload(out, files, r) })
	})

	if err := g.Wait(); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

func printReload(w io.Writer, files []string, r watch.Result) {
	fmt.Fprintf(w, "[%s] generation %d", r.Time.Format("15:04:05"), r.Generation)
	if r.Trigger != "" {
		fmt.Fprintf(w, " after change to %s", r.Trigger)
	}
	fmt.Fprintln(w)
	printCheck(w, checkResult(files, r.Spec, r.Err))
}
