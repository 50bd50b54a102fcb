// Command ccs811ctl drives a CCS811 gas sensor from a Linux host.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	flagConfig   = "config"
	flagBus      = "bus"
	flagAddress  = "address"
	flagWakePin  = "wake-pin"
	flagLogLevel = "log-level"
	flagMode     = "mode"
	flagYes      = "yes"
	flagTimeout  = "timeout"
	flagTrace    = "trace"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ccs811ctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ccs811ctl",
		Usage: "inspect and run a CCS811 eCO2/eTVOC sensor",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				EnvVars: []string{"CCS811_CONFIG"},
			},
			&cli.StringFlag{
				Name:  flagBus,
				Usage: "I2C bus name (overrides config)",
			},
			&cli.UintFlag{
				Name:  flagAddress,
				Usage: "7-bit address, 0x5A or 0x5B (overrides config)",
			},
			&cli.StringFlag{
				Name:  flagWakePin,
				Usage: "nWAKE GPIO name (overrides config)",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "debug, info, warn or error (overrides config)",
			},
			&cli.BoolFlag{
				Name:  flagTrace,
				Usage: "log every I2C transaction (implies --log-level debug)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "print hardware and firmware versions",
				Action: infoAction,
			},
			{
				Name:   "status",
				Usage:  "print the STATUS register",
				Action: statusAction,
			},
			{
				Name:   "verify",
				Usage:  "verify the application image (boot loader only)",
				Action: verifyAction,
			},
			{
				Name:  "erase",
				Usage: "erase the application image (boot loader only)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: flagYes, Usage: "confirm the erase"},
				},
				Action: eraseAction,
			},
			{
				Name:   "start",
				Usage:  "start the application firmware",
				Action: startAction,
			},
			{
				Name:  "read",
				Usage: "start the application and print one result",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagMode, Usage: "measurement mode (overrides config)"},
					&cli.DurationFlag{Name: flagTimeout, Value: defaultReadTimeout, Usage: "give up after this long"},
				},
				Action: readAction,
			},
			{
				Name:  "watch",
				Usage: "sample periodically until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagMode, Usage: "measurement mode (overrides config)"},
				},
				Action: watchAction,
			},
		},
	}
}
