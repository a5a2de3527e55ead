// Command emsquery runs flight queries against an EMS analytics service.
//
// Configuration is read from --config (any format viper understands) and from
// EMSQUERY_* environment variables, for example EMSQUERY_USER and
// EMSQUERY_PASSWORD.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/emsquery"
	"github.com/hugr-lab/emsquery/query"
)

const envPrefix = "EMSQUERY_"

var (
	configFile   string
	logLevel     string
	systemID     string
	metadataFile string
)

var rootCmd = &cobra.Command{
	Use:           "emsquery",
	Short:         "Query EMS flight data",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&systemID, "system", "", "EMS system id (overrides config)")
	rootCmd.PersistentFlags().StringVar(&metadataFile, "metadata", "", "metadata cache file, loaded if present and saved on exit")

	rootCmd.AddCommand(newQueryCmd(), newFieldsCmd(), newSystemsCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newClient builds a client from the config file, environment and flags.
func newClient() (*emsquery.Client, error) {
	cfg, err := emsquery.LoadConfig(configFile, envPrefix)
	if err != nil {
		return nil, err
	}
	if systemID != "" {
		cfg.SystemID = systemID
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", logLevel)
	}
	cfg.LogLevel = &level

	client, err := emsquery.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if metadataFile != "" {
		if err := loadMetadata(client); err != nil {
			return nil, err
		}
	}
	return client, nil
}

func loadMetadata(client *emsquery.Client) error {
	f, err := os.Open(metadataFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return client.LoadMetadata(f)
}

func saveMetadata(client *emsquery.Client) error {
	if metadataFile == "" {
		return nil
	}
	f, err := os.Create(metadataFile)
	if err != nil {
		return err
	}
	if err := client.SaveMetadata(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseOrder splits "field[:asc|:desc]". Field names may contain colons.
func parseOrder(s string) (string, query.Order) {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		switch o := query.Order(strings.TrimSpace(s[i+1:])); o {
		case query.OrderAsc, query.OrderDesc:
			return strings.TrimSpace(s[:i]), o
		}
	}
	return s, query.OrderAsc
}
