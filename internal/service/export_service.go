package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/opsdesk/opsdesk-api/internal/models"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/export"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

// ExportFormat names a supported agenda export format.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

type agendaReader interface {
	AgendaFor(ctx context.Context, ownerID string, day timegrid.Day, includeCompleted bool) ([]models.AgendaEntry, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult is a rendered document ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a day's agenda into downloadable documents.
type ExportService struct {
	agenda agendaReader
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(agenda agendaReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{agenda: agenda, csv: csv, pdf: pdf, logger: logger}
}

// Agenda renders the merged agenda for a date, completed tasks included.
func (s *ExportService) Agenda(ctx context.Context, ownerID string, day timegrid.Day, format ExportFormat) (*ExportResult, error) {
	entries, err := s.agenda.AgendaFor(ctx, ownerID, day, true)
	if err != nil {
		return nil, err
	}

	dataset := agendaDataset(day, entries)
	switch format {
	case FormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("agenda-%s.csv", day),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("agenda-%s.pdf", day),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func agendaDataset(day timegrid.Day, entries []models.AgendaEntry) export.Dataset {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		timeLabel := entry.Time
		if timeLabel == models.EndOfDayKey {
			timeLabel = "all day"
		}
		switch entry.Kind {
		case models.AgendaEntryEvent:
			rows = append(rows, []string{
				timeLabel, "event", entry.Event.Title, string(entry.Event.EventType), "",
			})
		case models.AgendaEntryTask:
			status := "open"
			if entry.Task.Completed {
				status = "done"
			}
			rows = append(rows, []string{
				timeLabel, "task", entry.Task.Title, strings.ToLower(string(entry.Task.Priority)), status,
			})
		}
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Agenda %s", day),
		Headers: []string{"Time", "Kind", "Title", "Detail", "Status"},
		Rows:    rows,
	}
}
