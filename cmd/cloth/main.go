package main

import (
	"io"
	"os"
	"runtime"
	"strings"

	"diesel.com/cloth/app"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//glfw needs the main thread
func init() {
	runtime.LockOSThread()
}

type options struct {
	configPath string
	envFile    string
	logLevel   string
	logJSON    bool
	logFile    string
	profile    string
}

//cli state shared by the subcommands, filled in by the root pre run
type cli struct {
	opts     options
	log      *logrus.Logger
	cfg      app.Config
	profiler interface{ Stop() }
	closers  []io.Closer
}

func main() {
	c := &cli{log: logrus.New()}
	err := c.root().Execute()
	c.teardown()
	if err != nil {
		os.Exit(1)
	}
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "cloth",
		Short:         "Mass spring cloth simulation",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&c.opts.configPath, "config", "c", "", "config file (toml, yaml or json)")
	f.StringVar(&c.opts.envFile, "env-file", "", "dotenv file loaded before the config (default ./.env if present)")
	f.StringVar(&c.opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	f.BoolVar(&c.opts.logJSON, "log-json", false, "log as JSON")
	f.StringVar(&c.opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	f.StringVar(&c.opts.profile, "profile", "", "write a cpu or mem profile to the working directory")

	root.AddCommand(c.viewCmd(), c.termCmd(), c.simCmd(), c.configCmd())
	return root
}

func (c *cli) setup() error {
	if err := c.setupLog(); err != nil {
		return err
	}
	if err := app.LoadEnv(c.opts.envFile); err != nil {
		return err
	}
	cfg, err := app.LoadConfig(c.opts.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	switch strings.ToLower(c.opts.profile) {
	case "":
	case "cpu":
		c.profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet)
	case "mem":
		c.profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet)
	default:
		return errors.Errorf("unknown profile mode %q, want cpu or mem", c.opts.profile)
	}
	return nil
}

func (c *cli) setupLog() error {
	level, err := logrus.ParseLevel(c.opts.logLevel)
	if err != nil {
		return errors.Wrap(err, "parsing log level")
	}
	c.log.SetLevel(level)
	if c.opts.logJSON {
		c.log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		c.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	c.log.SetOutput(os.Stderr)
	if c.opts.logFile != "" {
		f, err := os.OpenFile(c.opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(err, "opening log file")
		}
		c.log.SetOutput(f)
		c.closers = append(c.closers, f)
	}
	return nil
}

func (c *cli) teardown() {
	if c.profiler != nil {
		c.profiler.Stop()
	}
	for _, cl := range c.closers {
		cl.Close()
	}
}
