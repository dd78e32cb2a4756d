package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/fwessels/sixcc"
	"github.com/fwessels/sixcc/internal/config"
	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/logger"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "sixcc"
	app.Usage = "Preprocess a C source file"
	app.ArgsUsage = "<file.c>"
	app.HideVersion = true
	// -D values may contain commas
	app.DisableSliceFlagSeparator = true
	app.Flags = []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "include",
			Aliases: []string{"I"},
			Usage:   "Add a directory to the header search path",
		},
		&cli.StringSliceFlag{
			Name:    "define",
			Aliases: []string{"D"},
			Usage:   "Define NAME or NAME=VALUE",
		},
		&cli.StringSliceFlag{
			Name:    "undefine",
			Aliases: []string{"U"},
			Usage:   "Undefine NAME",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error (overrides the configuration)",
		},
		&cli.StringFlag{
			Name:  "color",
			Value: "auto",
			Usage: "Color diagnostics: auto, always or never",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the token stream to this file instead of stdout",
		},
	}
	app.Action = run
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "sixcc: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one input file")
	}
	name := c.Args().First()

	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	color, err := useColor(c.String("color"), c.App.ErrWriter)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "read input")
	}

	opts := sixcc.OptionsFromConfig(cfg)
	opts.IncludeDirs = append(opts.IncludeDirs, c.StringSlice("include")...)
	opts.Defines = append(opts.Defines, c.StringSlice("define")...)
	opts.Undefines = append(opts.Undefines, c.StringSlice("undefine")...)
	opts.Logger = logger.New("preprocessor", &logger.Config{
		Level:  level,
		JSON:   cfg.LogFormat == "json",
		Output: c.App.ErrWriter,
	})

	res, err := sixcc.Preprocess(name, src, opts)
	if res != nil {
		for _, d := range res.Warnings {
			if rerr := diag.Render(c.App.ErrWriter, d, color); rerr != nil {
				return rerr
			}
		}
	}
	if err != nil {
		var d *diag.Diagnostic
		if errors.As(err, &d) {
			_ = diag.Render(c.App.ErrWriter, d, color)
			return cli.Exit("", 1)
		}
		return err
	}

	if path := c.String("output"); path != "" {
		return writeOutput(path, res.Text())
	}
	_, err = fmt.Fprintln(c.App.Writer, res.Text())
	return err
}

// writeOutput writes text to path. A failure to close the file is
// reported like a failed write.
func writeOutput(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if _, err := fmt.Fprintln(f, text); err != nil {
		f.Close()
		return errors.Wrap(err, "write output")
	}
	return errors.Wrap(f.Close(), "close output")
}

func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		f, ok := w.(*os.File)
		return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())), nil
	}
	return false, fmt.Errorf("invalid --color %q", mode)
}
