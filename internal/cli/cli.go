package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/specialistvlad/pathscript/internal/app"
	"github.com/specialistvlad/pathscript/internal/runtype"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

type options struct {
	logLevel  string
	logFormat string

	output         string
	format         string
	force          bool
	uploadURL      string
	previewURL         string
	previewNamespace   string
	previewEvent       string
	previewReplyEvent  string
	previewTimeout     time.Duration
	previewInsecureTLS bool
}

// NewRootCommand builds the pathscript command tree. Scripts and listings
// go to outW; logs go to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{}
	env := environ()

	root := &cobra.Command{
		Use:   "pathscript",
		Short: "Generate OpenPathSampling run scripts",
		Long: `pathscript turns a description of an engine, collective variables and
state volumes into a runnable OpenPathSampling script.

Descriptions are .hcl or .yaml files, or a directory of them. Every flag
can also be set with a PATHSCRIPT_ environment variable, e.g.
PATHSCRIPT_LOG_LEVEL=debug.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyEnv(cmd.Flags(), env); err != nil {
				return usageError(err)
			}
			slog.Debug("Arguments parsed successfully.", "command", cmd.Name())
			return nil
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info",
		"Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text",
		"Log output format. Options: 'text' or 'json'.")

	root.AddCommand(
		newGenerateCommand(opts, outW, errW),
		newValidateCommand(opts, outW, errW),
		newRunTypesCommand(outW),
	)
	return root
}

func (o *options) config(path string) (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		DescriptionPath:    path,
		Format:             strings.ToLower(o.format),
		OutputPath:         o.output,
		Force:              o.force,
		UploadURL:          o.uploadURL,
		PreviewURL:         o.previewURL,
		PreviewNamespace:   o.previewNamespace,
		PreviewEvent:       o.previewEvent,
		PreviewReplyEvent:  o.previewReplyEvent,
		PreviewTimeout:     o.previewTimeout,
		PreviewInsecureTLS: o.previewInsecureTLS,
		LogFormat:          strings.ToLower(o.logFormat),
		LogLevel:           strings.ToLower(o.logLevel),
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

func addFormatFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.format, "format", "",
		"Description format: 'hcl' or 'yaml'. Picked from the file extension when empty.")
}

func newGenerateCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate PATH",
		Short: "Render a description into a run script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(args[0])
			if err != nil {
				return err
			}
			_, err = app.NewApp(outW, errW, cfg).Run(cmd.Context())
			return err
		},
	}
	addFormatFlag(cmd, opts)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "run.py",
		"Output file or directory. Use '-' for stdout.")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing output file.")
	cmd.Flags().StringVar(&opts.uploadURL, "upload-url", "", "Pre-signed URL to PUT the script to.")
	cmd.Flags().StringVar(&opts.previewURL, "preview-url", "", "socket.io server to push the script to.")
	cmd.Flags().StringVar(&opts.previewNamespace, "preview-namespace", "/", "socket.io namespace of the preview server.")
	cmd.Flags().StringVar(&opts.previewEvent, "preview-event", "script", "Event name used for the preview.")
	cmd.Flags().StringVar(&opts.previewReplyEvent, "preview-reply-event", "", "Wait for the server to answer with this event.")
	cmd.Flags().BoolVar(&opts.previewInsecureTLS, "preview-insecure", false, "Skip TLS certificate verification for the preview server.")
	cmd.Flags().DurationVar(&opts.previewTimeout, "preview-timeout", 15*time.Second, "How long to wait for the preview server.")
	return cmd
}

func newValidateCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate PATH",
		Short: "Check that a description renders, without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(args[0])
			if err != nil {
				return err
			}
			res, err := app.NewApp(outW, errW, cfg).Validate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(outW, "%s: ok (%s run, %d bytes)\n", args[0], res.RunType, len(res.Text))
			return nil
		},
	}
	addFormatFlag(cmd, opts)
	return cmd
}

func newRunTypesCommand(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "run-types",
		Short: "List the supported run types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(outW, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLABEL\tARTIFACT\tPARAMETERS")
			for _, rt := range runtype.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rt, rt.Label(), rt.DefaultArtifact(), strings.Join(rt.Parameters(), ", "))
			}
			return tw.Flush()
		},
	}
}

// Execute runs the command line in args. Usage problems come back as an
// *ExitError with code 2.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if isUsageError(err) {
		return usageError(err)
	}
	return err
}

// isUsageError matches the argument errors cobra returns as plain errors.
func isUsageError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "accepts ") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "requires at least")
}
