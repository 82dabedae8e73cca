package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
)

// SummaryHeader returns the Summary sheet column names for the given
// scan windows.
func SummaryHeader(w domain.Windows) []string {
	return []string{
		"User ID",
		fmt.Sprintf("Commit to Default Branch (Last %d Days)", w.DefaultBranchDays),
		fmt.Sprintf("Commit to Any Branch (Last %d Days)", w.AnyBranchDays),
		fmt.Sprintf("Any Activity (Last %d Days)", w.AnyBranchDays),
		fmt.Sprintf("Last Push Seen (if no commit in last %dd)", w.AnyBranchDays),
		"Source (default commit)",
		"Source (any commit)",
		"Source (any activity)",
	}
}

// AuditHeader returns the RepoAudit column names.
func AuditHeader() []string {
	return []string{"repo", "default_branch"}
}

// SummaryRows renders one spreadsheet row per tracked user, in the
// order given. Booleans stay native so the sheet can filter on them.
func SummaryRows(records []domain.UserRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		rows = append(rows, summaryCells(rec))
	}
	return rows
}

func summaryCells(rec domain.UserRecord) []interface{} {
	return []interface{}{
		rec.Login,
		rec.DefaultCommitSeen,
		rec.AnyCommitSeen,
		rec.AnyActivitySeen,
		lastPushString(rec),
		rec.DefaultCommitSource,
		rec.AnyCommitSource,
		rec.AnyActivitySource,
	}
}

// SummaryStrings renders the summary rows as plain strings for
// console tables.
func SummaryStrings(records []domain.UserRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Login,
			strconv.FormatBool(rec.DefaultCommitSeen),
			strconv.FormatBool(rec.AnyCommitSeen),
			strconv.FormatBool(rec.AnyActivitySeen),
			lastPushString(rec),
			rec.DefaultCommitSource,
			rec.AnyCommitSource,
			rec.AnyActivitySource,
		})
	}
	return rows
}

// AuditRows renders the repository audit trail as spreadsheet rows.
func AuditRows(audit []domain.RepoAuditEntry) [][]interface{} {
	rows := make([][]interface{}, 0, len(audit))
	for _, entry := range audit {
		rows = append(rows, []interface{}{entry.RepoKey, entry.DefaultBranch})
	}
	return rows
}

func lastPushString(rec domain.UserRecord) string {
	if rec.LastPushDate == nil {
		return ""
	}
	return rec.LastPushDate.UTC().Format(time.RFC3339)
}
