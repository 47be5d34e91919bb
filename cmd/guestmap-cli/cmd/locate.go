package cmd

import (
	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/guestmap"
	"github.com/spf13/cobra"
)

func newLocateCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "locate [ip]",
		Short: "Resolve a position from an IP address",
		Long: `Resolve an approximate position the way the widget falls back when the
browser cannot provide one. Without an argument the caller's own public
address is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.load(cmd); err != nil {
				return err
			}
			ip := ""
			if len(args) == 1 {
				ip = args[0]
			}

			resolver := guestmap.NewResolver(opts.ipLocator(), opts.logger)
			viewer, err := resolver.Resolve(cmd.Context(), domain.DefaultViewerLocation(), guestmap.Unavailable{}, ip)

			p := opts.printer(cmd)
			if format == "json" {
				return p.JSON(viewer)
			}
			if err != nil {
				p.Warn("Location unavailable: " + err.Error())
			}
			p.Viewer(viewer)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	return cmd
}
