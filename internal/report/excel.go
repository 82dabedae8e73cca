package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
)

const (
	summarySheet = "Summary"
	auditSheet   = "RepoAudit"
)

// WriteWorkbook writes the two-sheet activity report to path. Unlike
// the scans, a report that cannot be written is a hard failure for
// the whole run.
func WriteWorkbook(path string, records []domain.UserRecord, audit []domain.RepoAuditEntry, windows domain.Windows) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to prepare sheet %s: %w", summarySheet, err)
	}
	if _, err := f.NewSheet(auditSheet); err != nil {
		return fmt.Errorf("failed to prepare sheet %s: %w", auditSheet, err)
	}

	if err := writeSheet(f, summarySheet, SummaryHeader(windows), SummaryRows(records)); err != nil {
		return err
	}
	if err := writeSheet(f, auditSheet, AuditHeader(), AuditRows(audit)); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write sheet %s: %w", sheet, err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sheet, err)
		}
	}
	return nil
}
