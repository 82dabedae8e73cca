package report

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
)

// RenderSummary prints the user summary as a console table.
func RenderSummary(out io.Writer, records []domain.UserRecord, windows domain.Windows) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(SummaryHeader(windows))
	for _, row := range SummaryStrings(records) {
		table.Append(row)
	}
	table.Render()
}

// RenderAudit prints the repository audit trail as a console table.
func RenderAudit(out io.Writer, audit []domain.RepoAuditEntry) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(AuditHeader())
	for _, entry := range audit {
		table.Append([]string{entry.RepoKey, entry.DefaultBranch})
	}
	table.Render()
}
