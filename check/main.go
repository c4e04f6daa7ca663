package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"machinerun.io/lvspace"
	"machinerun.io/lvspace/linux"
	"machinerun.io/lvspace/mockos"
)

var version string

// exitFatal is the status of a check that could not be completed. It is the
// same as GroupSpace; only GroupSpace prints a diagnostic.
const exitFatal = 1

func newApp() *cli.App {
	return &cli.App{
		Name:    "check",
		Version: version,
		Usage:   "Check there is enough space in lvm volume groups before acting",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "vgs",
				Value:   lvspace.DefaultVGSCommand,
				Usage:   "Path of the vgs command",
				EnvVars: []string{"LVSPACE_VGS"},
			},
			&cli.StringFlag{
				Name:    "lvs",
				Value:   lvspace.DefaultLVSCommand,
				Usage:   "Path of the lvs command",
				EnvVars: []string{"LVSPACE_LVS"},
			},
			&cli.StringFlag{
				Name:    "mtab",
				Value:   lvspace.DefaultMountTablePath,
				Usage:   "Mount table read by the resize check",
				EnvVars: []string{"LVSPACE_MTAB"},
			},
			&cli.StringFlag{
				Name:    "fixture",
				Usage:   "Read volume groups and mounts from a json layout instead of the system",
				EnvVars: []string{"LVSPACE_FIXTURE"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log informational messages to stderr",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log debug messages to stderr",
			},
		},
		Before: setupLogging,
		Action: unknownCheck,
		Commands: []*cli.Command{
			{
				Name:      string(lvspace.CheckSnapshots),
				Usage:     "Check the volume groups have free space for the requested snapshots",
				ArgsUsage: "VOLUMES_JSON",
				Action:    checkAction(lvspace.CheckSnapshots),
			},
			{
				Name:      string(lvspace.CheckResize),
				Usage:     "Check the volume groups and filesystems allow the requested resizes",
				ArgsUsage: "VOLUMES_JSON",
				Action:    checkAction(lvspace.CheckResize),
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(exitFatal)
	}
}

// unknownCheck runs when no subcommand matched. A mistyped check must not
// exit with the status of a check outcome.
func unknownCheck(c *cli.Context) error {
	if c.Args().Present() {
		return fmt.Errorf("unknown check '%s'", c.Args().First())
	}

	return cli.ShowAppHelp(c)
}

func setupLogging(c *cli.Context) error {
	logger := log.StandardLogger()
	logger.SetOutput(os.Stderr)
	logger.Formatter = &log.TextFormatter{FullTimestamp: true}

	switch {
	case c.Bool("debug"):
		logger.SetLevel(log.DebugLevel)
	case c.Bool("verbose"):
		logger.SetLevel(log.InfoLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}

	return nil
}

func newSystem(c *cli.Context, config lvspace.Config) (lvspace.System, error) {
	if fixture := c.String("fixture"); fixture != "" {
		log.WithField("fixture", fixture).Info("using layout instead of the system")

		sys, err := mockos.Load(fixture)
		if err != nil {
			return nil, err
		}

		return sys, nil
	}

	return linux.System(config), nil
}

func checkAction(kind lvspace.CheckKind) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return fmt.Errorf("%s takes exactly one json argument, got %d", kind, c.Args().Len())
		}

		config := lvspace.DefaultConfig()
		config.VGSCommand = c.String("vgs")
		config.LVSCommand = c.String("lvs")
		config.MountTablePath = c.String("mtab")

		sys, err := newSystem(c, config)
		if err != nil {
			return err
		}

		result, err := lvspace.Run(sys, config, kind, []byte(c.Args().First()))
		if err != nil {
			return err
		}

		return report(c.App.Writer, kind, result)
	}
}

// report prints the diagnostic of a failed check and returns the exit
// status as a cli.ExitCoder.
func report(w io.Writer, kind lvspace.CheckKind, result lvspace.Result) error {
	log.WithFields(log.Fields{"check": kind, "outcome": result.Outcome}).Info("check done")

	if result.OK() {
		return nil
	}

	if err := result.Write(w); err != nil {
		return errors.Wrap(err, "failed to write diagnostic")
	}

	return cli.Exit("", result.Outcome.ExitCode())
}
