package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/materials-service/internal/models"
	"github.com/SAP-F-2025/materials-service/internal/repositories"
	"github.com/SAP-F-2025/materials-service/internal/validator"
)

const (
	exportSheetName  = "Materials"
	summarySheetName = "Summary"
)

// exportBatchSize bounds how many rows are loaded per repository call.
const exportBatchSize = 500

type importExportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *importExportService) ExportMaterials(ctx context.Context, w io.Writer, filters repositories.MaterialFilters) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), exportSheetName)

	headers := []string{"ID", "Title", "Subject", "Description", "Owner ID", "File URL", "Created At", "Updated At"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(exportSheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := 2
	filters.Limit = exportBatchSize
	filters.Offset = 0
	for {
		materials, _, err := s.repo.Material().List(ctx, nil, filters)
		if err != nil {
			return fmt.Errorf("failed to list materials for export: %w", err)
		}
		if len(materials) == 0 {
			break
		}

		for _, m := range materials {
			if err := s.writeRow(f, row, m); err != nil {
				return err
			}
			row++
		}

		if len(materials) < exportBatchSize {
			break
		}
		filters.Offset += exportBatchSize
	}

	if err := s.writeSummary(ctx, f); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	s.logger.Info("Materials exported", "rows", row-2)
	return nil
}

// writeSummary adds a sheet with aggregate counts across all materials,
// unconstrained by the export filters.
func (s *importExportService) writeSummary(ctx context.Context, f *excelize.File) error {
	stats, err := s.repo.Material().GetStats(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to load material stats: %w", err)
	}

	if _, err := f.NewSheet(summarySheetName); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Total materials", stats.TotalMaterials},
		{"With attachment", stats.WithFile},
		{"Distinct owners", stats.OwnerCount},
	}
	for i, pair := range rows {
		for j, v := range pair {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("failed to build summary cell: %w", err)
			}
			if err := f.SetCellValue(summarySheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write summary: %w", err)
			}
		}
	}

	return nil
}

func (s *importExportService) writeRow(f *excelize.File, row int, m *models.Material) error {
	values := []interface{}{
		m.ID,
		m.Title,
		deref(m.Subject),
		deref(m.Description),
		m.UserID,
		deref(m.FileURL),
		m.CreatedAt.Format("2006-01-02 15:04:05"),
		m.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("failed to build cell: %w", err)
		}
		if err := f.SetCellValue(exportSheetName, cell, v); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
