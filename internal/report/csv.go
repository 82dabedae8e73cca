package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
)

// WriteAuditCSV writes the repository audit trail to a CSV file next
// to the spreadsheet report, for consumers that just want the plain
// visit log.
func WriteAuditCSV(path string, audit []domain.RepoAuditEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audit csv %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(AuditHeader()); err != nil {
		return fmt.Errorf("failed to write audit csv: %w", err)
	}
	for _, entry := range audit {
		if err := w.Write([]string{entry.RepoKey, entry.DefaultBranch}); err != nil {
			return fmt.Errorf("failed to write audit csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write audit csv: %w", err)
	}
	return nil
}
