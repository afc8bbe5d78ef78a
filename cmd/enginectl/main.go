// Command enginectl is the headless simulation runner: it loads a resource
// tree and a TOML config, spins up a sync Agent, drives it for a fixed
// number of ticks (or forever), and logs a debug line as each tick completes.
// It exists to give the ambient CLI/config/logging stack (internal/logx,
// internal/engconfig) a concrete, compilable home (SPEC_FULL.md §C); the
// engine itself has no CLI surface of its own.
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/embervale/actioncore/engine"
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/internal/engconfig"
	"github.com/embervale/actioncore/internal/logx"
	"github.com/embervale/actioncore/resource"
)

const gitVersion = "0.1.0"

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file (overrides built-in defaults)",
	}
	ticksFlag = cli.IntFlag{
		Name:  "ticks",
		Usage: "number of ticks to run before exiting (0 = run until interrupted)",
		Value: 100,
	}
	dumpConfigCommand = cli.Command{
		Name:   "dumpconfig",
		Usage:  "print the effective configuration as TOML and exit",
		Action: dumpConfig,
	}
	runCommand = cli.Command{
		Name:   "run",
		Usage:  "run the simulation headlessly",
		Action: run,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "enginectl"
	app.Usage = "headless runner for the action-game simulation core"
	app.Version = gitVersion
	app.Flags = []cli.Flag{configFlag, ticksFlag}
	app.Commands = []cli.Command{runCommand, dumpConfigCommand}
	app.Action = run // `enginectl -ticks 50` runs directly without a subcommand

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "enginectl:", err)
		os.Exit(1)
	}
}

func loadConfig(ctx *cli.Context) (engconfig.Config, error) {
	cfg := engconfig.Defaults
	if path := ctx.GlobalString(configFlag.Name); path != "" {
		if err := engconfig.Load(path, &cfg); err != nil {
			return cfg, fmt.Errorf("loading config: %w", err)
		}
	}
	return cfg, nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	out, err := engconfig.Dump(&cfg)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	level, err := logx.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log := logx.Default()
	log.SetLevel(level)

	var resources *resource.Cache
	if cfg.Resources.Root != "" {
		if _, statErr := os.Stat(cfg.Resources.Root); statErr == nil {
			resources, err = resource.Load(cfg.Resources.Root)
			if err != nil {
				return fmt.Errorf("loading resources: %w", err)
			}
			resources.PersistDir = cfg.Resources.PersistDir
			log.Info("loaded resources", "root", cfg.Resources.Root, "count", len(resources.Order()))
		} else {
			log.Warn("resource root not found, running without resources", "root", cfg.Resources.Root)
		}
	}

	agent := engine.NewAgent(cfg.Engine.TickDuration())
	if resources != nil {
		agent.Engine().SetResources(resources)
	}

	agent.Command(engine.CmdNewStage{})
	agent.Command(engine.CmdNewCharacter{
		Position:  fx.V3(0, fx.FromRatio(1, 10), 0),
		Direction: fx.V2(0, fx.One),
		Speed:     fx.FromRatio(1, 2),
		IsMain:    true,
	})

	ticks := ctx.GlobalInt(ticksFlag.Name)
	log.Info("starting run", "tick_rate", cfg.Engine.TickRate, "ticks", ticks)

	for i := 0; ticks == 0 || i < ticks; i++ {
		if err := agent.Tick(); err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
		log.Debug("tick complete", "n", i)
	}

	log.Info("run complete", "ticks", ticks)
	return nil
}
