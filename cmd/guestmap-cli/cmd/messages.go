package cmd

import (
	"errors"
	"fmt"

	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/guestmap"
	"github.com/spf13/cobra"
)

func newMessagesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Read and post guest map messages",
	}
	cmd.AddCommand(newMessagesListCmd(opts), newMessagesPostCmd(opts))
	return cmd
}

func newMessagesListCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List messages grouped by location",
		Long: `List every message known to the message API, grouped the same way the
map groups its markers: messages at exactly the same coordinates share a group.

Examples:
  guestmap-cli messages list                 # table of groups
  guestmap-cli messages list --format json   # machine-readable groups
  guestmap-cli messages list --local         # read from the local API`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported output format %q, use table or json", format)
			}
			if err := opts.load(cmd); err != nil {
				return err
			}

			groups, err := opts.service().Groups(cmd.Context(), "")
			if err != nil {
				return fmt.Errorf("load messages: %w", err)
			}

			p := opts.printer(cmd)
			if format == "json" {
				return p.JSON(struct {
					Groups []domain.LocationGroup `json:"groups"`
					Count  int                    `json:"count"`
				}{Groups: groups, Count: len(groups)})
			}
			if len(groups) == 0 {
				p.Info("No messages yet")
				return nil
			}
			p.Groups(groups)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	return cmd
}

func newMessagesPostCmd(opts *options) *cobra.Command {
	var (
		draft    domain.DraftMessage
		lat, lng float64
		noWait   bool
	)
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Submit a message to the map",
		Long: `Submit a message the same way the widget does. The position comes from
--lat/--lng when both are given, otherwise from the IP location service.
Without a resolvable position the message is pinned at the default map centre.

Examples:
  guestmap-cli messages post --name Ada --message "Hello from here"
  guestmap-cli messages post --name Ada --message Hi --lat 48.85 --lng 2.35`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("lat") != flags.Changed("lng") {
				return errors.New("--lat and --lng must be given together")
			}
			if err := opts.load(cmd); err != nil {
				return err
			}

			ctx := cmd.Context()
			svc := opts.service()
			p := opts.printer(cmd)

			var primary guestmap.Geolocator = guestmap.Unavailable{}
			if flags.Changed("lat") {
				primary = guestmap.ReportedPosition{Coordinates: &domain.Coordinates{Latitude: lat, Longitude: lng}}
			}
			st := svc.Locate(ctx, svc.NewWidget(), primary, "")
			if st.Viewer.Resolved {
				p.Info(fmt.Sprintf("Position %.5f, %.5f (%s)", st.Viewer.Latitude, st.Viewer.Longitude, st.Viewer.Source))
			} else {
				p.Warn("Location unavailable, using the default map centre")
			}

			st, err := svc.Submit(ctx, "", st, draft)
			if err != nil {
				var verr *guestmap.ValidationError
				if errors.As(err, &verr) {
					for _, f := range verr.Fields {
						p.Failure(f.Message)
					}
					return errors.New("message rejected")
				}
				p.Failure("Your message could not be sent.")
				return err
			}

			if noWait {
				p.Success("Message accepted")
				return nil
			}
			p.Info("Sending...")
			if _, err := svc.WaitSent(ctx, st); err != nil {
				return err
			}
			p.Success("Thanks for submitting a message")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&draft.Name, "name", "n", "", "Your name")
	flags.StringVarP(&draft.Message, "message", "m", "", "The message to leave on the map")
	flags.Float64Var(&lat, "lat", 0, "Latitude of the message")
	flags.Float64Var(&lng, "lng", 0, "Longitude of the message")
	flags.BoolVar(&noWait, "no-wait", false, "Return as soon as the API accepts the message")
	return cmd
}
