package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/nfrund/guestmap/cmd/guestmap-cli/internal/output"
	"github.com/nfrund/guestmap/internal/config"
	"github.com/nfrund/guestmap/internal/guestmap"
	"github.com/nfrund/guestmap/internal/ipapi"
	"github.com/nfrund/guestmap/internal/logging"
	"github.com/nfrund/guestmap/internal/messageapi"
	"github.com/nfrund/guestmap/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// options are the persistent flags plus the lazily loaded configuration
// shared by every subcommand.
type options struct {
	apiURL   string
	ipapiURL string
	local    bool
	noColor  bool
	verbose  bool

	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "guestmap-cli",
		Short: "Guest map command-line client",
		Long: `guestmap-cli talks to the guest map message API and location service
without a browser.

Available commands:
  messages list    Show the messages on the map grouped by location
  messages post    Submit a message tagged with your location
  locate           Resolve an approximate position from an IP address
  version          Print the CLI version

Use "guestmap-cli [command] --help" for more information about a specific command.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", "", "Message API URL (defaults to MESSAGES_API_URL)")
	flags.StringVar(&opts.ipapiURL, "ipapi-url", "", "IP location service URL (defaults to IPAPI_URL)")
	flags.BoolVar(&opts.local, "local", false, "Use MESSAGES_API_LOCAL_URL instead of the production API")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable coloured output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(newVersionCmd(), newMessagesCmd(opts), newLocateCmd(opts))
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (o *options) load(cmd *cobra.Command) error {
	if o.cfg != nil {
		return nil
	}
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	o.cfg = cfg
	o.logger = logging.NewWithWriter(cmd.ErrOrStderr(), os.Getenv("LOG_FORMAT"), level)
	o.metrics = observability.NewMetrics(prometheus.NewRegistry())
	return nil
}

func (o *options) messageStore() *messageapi.Client {
	url := o.apiURL
	if url == "" {
		url = o.cfg.GetMessagesAPIURL()
		if o.local {
			url = o.cfg.GetMessagesAPILocalURL()
		}
	}
	return messageapi.NewClient(url, o.cfg.GetHTTPTimeout(), o.metrics, o.logger)
}

func (o *options) ipLocator() *ipapi.Client {
	url := o.ipapiURL
	if url == "" {
		url = o.cfg.GetIPAPIURL()
	}
	return ipapi.NewClient(url, o.cfg.GetHTTPTimeout(), o.metrics, o.logger)
}

func (o *options) service() *guestmap.Service {
	return guestmap.NewService(guestmap.Dependencies{
		Stores:     guestmap.SingleStore{Store: o.messageStore()},
		Resolver:   guestmap.NewResolver(o.ipLocator(), o.logger),
		Logger:     o.logger,
		SentDelay:  o.cfg.GetSentDelay(),
		LegacyKeys: o.cfg.GetLegacyCoordinateKey(),
	})
}

func (o *options) printer(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), !o.noColor)
}
