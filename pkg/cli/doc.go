/*
Package cli provides the helpers shared by the specfile commands.

Output Formatting:

Command results are printed as text, JSON or YAML:

	format, err := cli.ParseFormat(flags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Issues:

Specification errors are flattened into Issue values with their file,
line, field path and suggestion:

	for _, issue := range cli.Issues(err) {
		fmt.Printf("%s:%d: %s\n", issue.File, issue.Line, issue.Message)
	}

Exit codes:

ExitCode maps the error returned by a command to the process status: 2 for
invalid specifications, 3 for configuration and flag errors, 1 otherwise.

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(total)
	for i := range total {
		// build experiment i
		progress.Update(i + 1)
	}
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
