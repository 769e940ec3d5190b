package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/synaptica-ai/afi-risk/pkg/audit"
	"github.com/synaptica-ai/afi-risk/pkg/common/config"
	"github.com/synaptica-ai/afi-risk/pkg/common/database"
	urfave "github.com/urfave/cli/v3"
)

var limitFlag = &urfave.IntFlag{
	Name:  "limit",
	Usage: "Number of assessments to list",
	Value: 20,
}

var auditCmd = &urfave.Command{
	Name:   "audit",
	Usage:  "List the most recent audited assessments from Postgres",
	Flags:  []urfave.Flag{limitFlag},
	Action: cmdAudit,
}

func cmdAudit(ctx context.Context, cmd *urfave.Command) error {
	db, err := database.GetPostgres(config.Load())
	if err != nil {
		return fmt.Errorf("connecting to audit database: %w", err)
	}
	defer database.ClosePostgres()

	logs, err := audit.NewRepository(db).Recent(ctx, int(cmd.Int(limitFlag.Name)))
	if err != nil {
		return fmt.Errorf("querying assessments: %w", err)
	}

	w := output(cmd)
	if f := outputFormat(cmd); f != formatText {
		return encode(w, f, logs)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tTIER\tPROBABILITY\tMODEL")
	for _, l := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%s\n", l.ID, l.CreatedAt.Format("2006-01-02 15:04:05"), l.Tier, l.Probability, l.ModelVersion)
	}
	return tw.Flush()
}
