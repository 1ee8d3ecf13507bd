package runtime

import (
	"github.com/CliForge/pinterest-ads-cli/internal/media"
	"github.com/CliForge/pinterest-ads-cli/internal/sources"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth"
	"github.com/CliForge/pinterest-ads-cli/pkg/progress"
	"github.com/spf13/cobra"
)

// newMediaUploadCmd creates `media upload`.
func (rt *Runtime) newMediaUploadCmd() *cobra.Command {
	var (
		mediaType string
		file      string
		wait      bool
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Register, upload and optionally wait for a media file",
		Long: `Register a media upload, send the file to the returned upload URL and,
with --wait, poll until processing succeeds or fails.

The file may be a local path, @path, file://path, an http(s) URL or
s3://bucket/key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cred, err := auth.ForScheme("bearer", rt.credentials(ctx))
			if err != nil {
				return err
			}
			client, err := rt.newClient()
			if err != nil {
				return err
			}

			cfg := rt.progressConfig
			if cfg == nil {
				cfg = progress.DefaultConfig()
				cfg.Writer = rt.stderr
			}
			tracker := progress.NewTracker(progress.New(cfg))

			opts := []media.Option{
				media.WithLogger(rt.logger),
				media.WithObserver(func(state media.State, detail string) {
					tracker.Observe(string(state), detail)
				}),
			}
			orchestrator := media.New(client, cred, append(opts, rt.mediaOptions...)...)

			var result any
			err = rt.sourceResolver().With(ctx, file, func(f *sources.SourceFile) error {
				var uerr error
				result, uerr = orchestrator.Upload(ctx, mediaType, f, wait)
				return uerr
			})
			if err != nil {
				return err
			}

			render := rt.renderOptions()
			render.Raw = true
			return rt.outputManager.Render(rt.stdout, result, render)
		},
	}

	cmd.Flags().StringVar(&mediaType, "media-type", "", "Media type to register, e.g. video")
	cmd.Flags().StringVar(&file, "file", "", "File to upload: path, @path, URL or s3://bucket/key")
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until processing finishes")
	_ = cmd.MarkFlagRequired("media-type")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
