package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/synaptica-ai/afi-risk/pkg/assessment"
	"github.com/synaptica-ai/afi-risk/pkg/clinical"
	"github.com/synaptica-ai/afi-risk/pkg/common/config"
	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
	"github.com/synaptica-ai/afi-risk/pkg/explain"
	"github.com/synaptica-ai/afi-risk/pkg/features"
	"github.com/synaptica-ai/afi-risk/pkg/ml/artifact"
	"github.com/synaptica-ai/afi-risk/pkg/report"
	"github.com/synaptica-ai/afi-risk/pkg/risk"
	urfave "github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

var (
	modelFlag = &urfave.StringFlag{
		Name:     "model",
		Usage:    "Path to the model bundle file or artifact directory",
		Sources:  urfave.EnvVars("MODEL_PATH"),
		Required: true,
	}

	inputFlag = &urfave.StringFlag{
		Name:     "input",
		Usage:    "Path to a JSON record of field values, - for stdin",
		Required: true,
	}

	viewFlag = &urfave.StringFlag{
		Name:  "view",
		Usage: "Report view [model, clinical]",
		Value: string(report.ModelView),
	}

	pdfFlag = &urfave.StringFlag{
		Name:  "pdf",
		Usage: "Write the PDF report to this path (optional)",
	}

	chartFlag = &urfave.StringFlag{
		Name:  "chart",
		Usage: "Write the contribution chart PNG to this path (optional)",
	}
)

var scoreCmd = &urfave.Command{
	Name:  "score",
	Usage: "Score a patient record and explain each feature's contribution",
	Flags: []urfave.Flag{
		modelFlag,
		inputFlag,
		catalogFlag,
		viewFlag,
		pdfFlag,
		chartFlag,
	},
	Action: cmdScore,
}

func cmdScore(_ context.Context, cmd *urfave.Command) error {
	cfg := config.Load()

	model, err := artifact.Load(cmd.String(modelFlag.Name))
	if err != nil {
		return err
	}
	cat, err := clinical.Load(cmd.String(catalogFlag.Name))
	if err != nil {
		return err
	}
	bands := risk.Bands{Low: cfg.LowRiskCutpoint, Moderate: cfg.ModerateRiskCutpoint}
	pipeline, err := assessment.NewPipeline(features.DefaultSchema(), cat, model, bands, cfg.AnnotationThreshold)
	if err != nil {
		return err
	}

	rec, err := readRecord(cmd.String(inputFlag.Name))
	if err != nil {
		return err
	}

	eval, err := pipeline.Evaluate(rec)
	if err != nil {
		return err
	}
	logger.Log.WithFields(map[string]interface{}{
		"tier":        eval.Tier,
		"probability": eval.Probability,
	}).Debug("record scored")

	result := &assessment.Result{
		View:         report.ParseView(cmd.String(viewFlag.Name)),
		ModelVersion: cfg.ModelVersion,
		CreatedAt:    time.Now().UTC(),
		Evaluation:   *eval,
	}

	var g errgroup.Group
	if path := cmd.String(pdfFlag.Name); path != "" {
		g.Go(func() error {
			return writeFile(path, func(w io.Writer) error {
				return report.WritePDF(w, result.Document(result.View, cfg.ReportTopN))
			})
		})
	}
	if path := cmd.String(chartFlag.Name); path != "" {
		g.Go(func() error {
			return writeFile(path, func(w io.Writer) error {
				return report.WriteChart(w, result.Table)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := output(cmd)
	if f := outputFormat(cmd); f != formatText {
		return encode(w, f, result.Render(result.View))
	}
	return printText(w, result, cfg.ReportTopN)
}

func readRecord(path string) (features.Record, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var rec features.Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding input record: %w", err)
	}
	return rec, nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Log.WithField("path", path).Info("file written")
	return nil
}

func printText(w io.Writer, result *assessment.Result, topN int) error {
	fmt.Fprintf(w, "Predicted Survival Probability: %.2f%%\n", result.Probability*100)
	fmt.Fprintf(w, "Outcome: %s\n", result.Tier.Outcome())
	fmt.Fprintf(w, "Score: %.4f\n\n", result.Score)

	fmt.Fprintln(w, "Top Contributors to Mortality Risk:")
	for _, r := range result.Table.Top(topN) {
		fmt.Fprintf(w, "  - %s: %+.2f\n", r.Feature, r.Contribution)
	}
	fmt.Fprintf(w, "\n%s\n", result.View.Title())

	ranked := result.Table.ByContribution()
	maxAbs := ranked.MaxAbs()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if result.View == report.ClinicalView {
		fmt.Fprintln(tw, "FEATURE\tINPUT VALUE\tRISK IMPACT\t")
	} else {
		fmt.Fprintln(tw, "FEATURE\tINPUT VALUE\tRISK WEIGHT\tRISK IMPACT\t")
	}
	for _, r := range ranked {
		impact := explain.FormatImpact(r.Contribution) + " " + explain.RiskBar(r.Contribution, maxAbs, 15)
		if result.View == report.ClinicalView {
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", r.Feature, r.Display, impact)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%.4f\t%s\t\n", r.Feature, r.Display, r.Weight, impact)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, report.SignCaption)

	if len(result.Annotations) > 0 {
		fmt.Fprintln(w, "\nClinical Notes:")
		for _, a := range result.Annotations {
			fmt.Fprintf(w, "  - %s\n", a.Message)
		}
	}

	fmt.Fprintln(w)
	for _, note := range report.Footnotes(result.View) {
		fmt.Fprintln(w, note)
	}
	return nil
}
