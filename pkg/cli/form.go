package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/synaptica-ai/afi-risk/pkg/clinical"
	"github.com/synaptica-ai/afi-risk/pkg/features"
	urfave "github.com/urfave/cli/v3"
)

var formCmd = &urfave.Command{
	Name:   "form",
	Usage:  "Print the input fields and the values each one accepts",
	Flags:  []urfave.Flag{catalogFlag},
	Action: cmdForm,
}

func cmdForm(_ context.Context, cmd *urfave.Command) error {
	cat, err := clinical.Load(cmd.String(catalogFlag.Name))
	if err != nil {
		return err
	}
	form := features.DefaultSchema().Form(clinical.NewEncoder(cat))

	w := output(cmd)
	if f := outputFormat(cmd); f != formatText {
		return encode(w, f, form)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tKIND\tACCEPTS")
	for _, f := range form {
		accepts := strings.Join(f.Options, " | ")
		if f.Bounds != nil {
			accepts = fmt.Sprintf("%g..%g (default %g)", f.Bounds.Min, f.Bounds.Max, f.Bounds.Default)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, f.Kind, accepts)
	}
	return tw.Flush()
}
