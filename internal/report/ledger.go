package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"github.com/smallbiznis/freelanceflow/internal/invoice/export"
	"github.com/smallbiznis/freelanceflow/internal/invoice/format"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	ledgerSheet = "Invoices"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

var ledgerHeaders = []string{
	"Invoice Number",
	"Client",
	"Issue Date",
	"Due Date",
	"Status",
	"Items",
	"Subtotal",
	"Tax Rate",
	"Tax",
	"Total",
}

// Filename builds "<slug>-<YYYY-MM-DD>.<ext>".
func Filename(title string, at time.Time, ext string) string {
	name := slug.Make(title)
	if name == "" {
		name = "report"
	}
	return fmt.Sprintf("%s-%s.%s", name, at.UTC().Format(domain.DateLayout), ext)
}

func (s *Service) ledgerRows(ctx context.Context, req domain.ListInvoiceRequest) ([][]string, time.Time, error) {
	invoices, err := s.invoices.List(ctx, req)
	if err != nil {
		return nil, time.Time{}, err
	}
	now := s.clock.Now()
	money := format.NewMoney("")

	rows := make([][]string, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, []string{
			inv.InvoiceNumber,
			inv.Client,
			inv.IssuedDate.Format(domain.DateLayout),
			inv.DueDate.Format(domain.DateLayout),
			string(inv.DisplayStatus(now)),
			strconv.Itoa(len(inv.WorkItems)),
			money.Plain(inv.Subtotal),
			format.Percent(inv.TaxRate),
			money.Plain(inv.TaxAmount),
			money.Plain(inv.Amount),
		})
	}
	return rows, now, nil
}

func (s *Service) ledgerTitle() string {
	return s.invoicing.Get().BusinessName + " invoices"
}

// LedgerCSV writes the filtered invoice list as CSV.
func (s *Service) LedgerCSV(ctx context.Context, req domain.ListInvoiceRequest) (export.Artifact, error) {
	started := time.Now()
	rows, now, err := s.ledgerRows(ctx, req)
	if err != nil {
		return export.Artifact{}, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ledgerHeaders); err != nil {
		return export.Artifact{}, err
	}
	if err := w.WriteAll(rows); err != nil {
		s.metrics.RecordExport("csv", false, 0, time.Since(started))
		return export.Artifact{}, fmt.Errorf("csv write: %w", err)
	}

	s.metrics.RecordExport("csv", true, 0, time.Since(started))
	s.log.Info("ledger exported", zap.String("format", "csv"), zap.Int("rows", len(rows)))
	return export.Artifact{
		Filename:    Filename(s.ledgerTitle(), now, "csv"),
		ContentType: ContentTypeCSV,
		Data:        buf.Bytes(),
	}, nil
}

// LedgerXLSX writes the filtered invoice list as a single-sheet workbook.
// Money columns are numeric cells.
func (s *Service) LedgerXLSX(ctx context.Context, req domain.ListInvoiceRequest) (export.Artifact, error) {
	started := time.Now()
	rows, now, err := s.ledgerRows(ctx, req)
	if err != nil {
		return export.Artifact{}, err
	}

	data, err := buildWorkbook(rows)
	if err != nil {
		s.metrics.RecordExport("xlsx", false, 0, time.Since(started))
		return export.Artifact{}, err
	}

	s.metrics.RecordExport("xlsx", true, 0, time.Since(started))
	s.log.Info("ledger exported", zap.String("format", "xlsx"), zap.Int("rows", len(rows)))
	return export.Artifact{
		Filename:    Filename(s.ledgerTitle(), now, "xlsx"),
		ContentType: ContentTypeXLSX,
		Data:        data,
	}, nil
}

func buildWorkbook(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	amountFmt := "#,##0.00"
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	w := &sheetWriter{f: f, sheet: ledgerSheet}
	for i, h := range ledgerHeaders {
		w.value(i+1, 1, h)
	}
	w.style("A1", "J1", bold)

	for r, row := range rows {
		for c, value := range row {
			if c >= 5 {
				if n, ok := numeric(value); ok {
					w.value(c+1, r+2, n)
					continue
				}
			}
			w.value(c+1, r+2, value)
		}
	}
	if len(rows) > 0 {
		w.style("G2", fmt.Sprintf("J%d", len(rows)+1), amount)
	}

	w.width("A", "A", 16)
	w.width("B", "B", 28)
	w.width("C", "E", 12)
	w.width("F", "F", 8)
	w.width("G", "J", 14)
	if w.err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error from a run of cell writes; later
// writes are skipped once one has failed.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) value(col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, v)
}

func (w *sheetWriter) style(from, to string, id int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, from, to, id)
}

func (w *sheetWriter) width(from, to string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(w.sheet, from, to, width)
}

func numeric(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
