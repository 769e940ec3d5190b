package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [text, json, yaml]",
		Value: formatText,
	}

	catalogFlag = &urfave.StringFlag{
		Name:    "catalog",
		Usage:   "Path to a clinical catalog YAML file (optional, defaults to the built-in catalog)",
		Sources: urfave.EnvVars("CLINICAL_CATALOG_PATH"),
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logger.InitCLI(os.Stderr, false)

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logger.Log.WithError(err).Error("fatal error")
		os.Exit(1)
	}
}

func newApp() *urfave.Command {
	return &urfave.Command{
		Name:    "risk-cli",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Usage:   "Score AFI admission records and explain the mortality risk",
		Flags: []urfave.Flag{
			debugFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			scoreCmd,
			formCmd,
			auditCmd,
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			if cmd.Bool(debugFlag.Name) {
				logger.InitCLI(os.Stderr, true)
			}
			switch f := cmd.String(formatFlag.Name); f {
			case formatText, formatJSON, formatYAML:
			case "yml":
			default:
				return ctx, fmt.Errorf("unsupported output format %q", f)
			}
			return ctx, nil
		},
	}
}

func output(cmd *urfave.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func outputFormat(cmd *urfave.Command) string {
	f := cmd.String(formatFlag.Name)
	if f == "yml" {
		return formatYAML
	}
	return f
}

// encode writes v as indented JSON or, for yaml, as YAML with the JSON field names.
func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		return yaml.NewEncoder(w).Encode(generic)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
