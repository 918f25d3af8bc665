/*
Package cli provides the small command-line pieces the gateway binary
needs: output formatters for `run --dry-run`'s configuration summary, and a
typed error hierarchy distinguishing configuration errors from
command-execution errors.

Output Formatting:

The cli package supports text and JSON output for the dry-run summary:

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := newDryRunSummary(cfg)
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}
*/
package cli
