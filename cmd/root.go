package cmd

import (
	"os"
	"path/filepath"

	"emperror.dev/errors"
	"github.com/NYTimes/logrotate"
	"github.com/apex/log"
	"github.com/apex/log/handlers/multi"
	"github.com/spf13/cobra"

	"github.com/pterodactyl/transactfs/config"
	"github.com/pterodactyl/transactfs/loggers/cli"
)

var (
	configPath = config.DefaultLocation
	debug      = false
)

var root = &cobra.Command{
	Use:   "transactfs",
	Short: "Apply filesystem changes that can be rolled back",
	Long: `Applies a plan of filesystem operations. When a plan runs in a transaction every
deleted or overwritten entry is kept in a recycle bin until all of the steps
completed, and a failing step puts everything back the way it was.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfiguration,
}

func init() {
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultLocation, "set the location for the configuration file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "pass in order to run in debug mode")

	root.AddCommand(applyCmd)
	root.AddCommand(versionCmd)
}

func Execute() error {
	return root.Execute()
}

// initConfiguration loads the configuration, stores it globally and sets up
// logging before any command runs.
func initConfiguration(cmd *cobra.Command, _ []string) error {
	c, err := readConfiguration(cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if debug {
		c.Debug = true
	}
	config.Set(c)

	if err := configureLogging(c.LogDirectory, c.Debug); err != nil {
		return err
	}
	if err := c.ConfigureDirectories(); err != nil {
		return err
	}

	if c.GetPath() != "" {
		log.WithField("path", c.GetPath()).Debug("loaded configuration from path")
	} else {
		log.Debug("no configuration file found, using default values")
	}
	return nil
}

// Get the configuration based on the arguments provided. When no location was
// passed the usual locations are searched, and if none of them has a file the
// default configuration is used.
func readConfiguration(explicit bool) (*config.Configuration, error) {
	p := configPath
	if !explicit {
		found, err := FindConfiguration()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return config.NewAtPath("")
			}
			return nil, err
		}
		p = found
	}

	if !filepath.IsAbs(p) {
		d, err := os.Getwd()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		p = filepath.Clean(filepath.Join(d, p))
	}

	if s, err := os.Stat(p); err != nil {
		return nil, errors.WithStack(err)
	} else if s.IsDir() {
		return nil, errors.New("cannot use directory as configuration file path")
	}

	return config.Load(p)
}

// configureLogging sets the level and handler of the global logger. When a log
// directory is configured entries are also written to a rotating log file.
func configureLogging(logDir string, debug bool) error {
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	if logDir == "" {
		log.SetHandler(cli.Default)
		return nil
	}

	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return errors.WithStack(err)
	}
	p := filepath.Join(logDir, "transactfs.log")
	w, err := logrotate.NewFile(p)
	if err != nil {
		return errors.WithMessage(err, "failed to open process log file")
	}

	log.SetHandler(multi.New(
		cli.Default,
		cli.New(w.File, false),
	))

	log.WithField("path", p).Debug("writing log files to disk")
	return nil
}
