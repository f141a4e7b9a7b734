package main

import (
	"encoding/json"
	"fmt"
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/geostorm/internal/config"
	"github.com/dshills/geostorm/internal/session"
	"github.com/dshills/geostorm/internal/store"
)

// Version is the workbench version.
const Version = "0.3.0"

var (
	configFile  string
	logLevel    string
	watchConfig bool

	cfg config.Config
	log = logrus.New()

	watcher *config.Watcher
)

var rootCmd = &cobra.Command{
	Use:   "geostorm",
	Short: "A headless editing workbench for vector map features.",
	Long: `Geostorm loads GeoJSON feature collections into an editing session
and runs the same geometry operations an interactive map host would
trigger: union, difference, split, simplify, scale, rotate, copy.
Every operation is recorded in undo/redo history and can be verified
with --check-undo.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if watcher != nil {
			watcher.Close()
			watcher = nil
		}
	},
}

// startup loads the configuration and prepares logging for every
// subcommand.
func startup() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	log.SetLevel(cfg.Log.LogrusLevel())
	log.SetOutput(os.Stderr)

	if watchConfig {
		watcher, err = config.NewWatcher(configFile, func(next config.Config, err error) {
			if err != nil {
				log.WithError(err).Warn("config reload failed")
				return
			}
			cfg = next
			log.SetLevel(cfg.Log.LogrusLevel())
			log.WithField("path", configFile).Info("configuration reloaded")
		}, config.WithLogger(log.WithField("component", "config")))
		if err != nil {
			return fmt.Errorf("watching configuration: %w", err)
		}
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "geostorm.toml", "configuration file location")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&watchConfig, "watch", false, "reload the configuration file when it changes")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the geostorm version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("geostorm v%s\n", Version)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
}

// loadSession reads a GeoJSON collection into a fresh in-memory store and
// opens an editing session over it. The returned ids are the resolved ids
// in file order.
func loadSession(path string) (*session.Session, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	st := store.NewMemStore()
	ids, err := st.ImportCollection(fc)
	if err != nil {
		return nil, nil, fmt.Errorf("importing %s: %w", path, err)
	}

	s := session.New(st, session.WithConfig(cfg), session.WithLogger(log))
	log.WithFields(logrus.Fields{"path": path, "features": len(ids)}).Debug("collection loaded")
	return s, ids, nil
}

// writeCollection writes the collection to path, or to stdout when path
// is empty or "-".
func writeCollection(path string, fc *geojson.FeatureCollection) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.WithFields(logrus.Fields{"path": path, "features": len(fc.Features)}).Info("collection written")
	return nil
}
