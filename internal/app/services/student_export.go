package services

import (
	"context"
	"fmt"
	"io"

	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ExportSheet is the worksheet holding the exported roster
const ExportSheet = "Alumnos"

// ExportHeader is the first row of the exported roster
var ExportHeader = []interface{}{
	"ID", "RUT", "Nombre", "Apellido", "Fecha de nacimiento", "Edad",
	"Cinturón", "Nivel", "Cinturón completo", "Foto", "Fecha de registro",
}

// ExportStudents writes the roster to w as an XLSX workbook
func (s *studentServiceImpl) ExportStudents(ctx context.Context, w io.Writer) error {
	students, err := s.students.List(ctx)
	if err != nil {
		return fmt.Errorf("error retrieving students: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing export workbook")
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return fmt.Errorf("failed to name export sheet: %w", err)
	}

	header := ExportHeader
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	today := s.now()
	for i, st := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address export row: %w", err)
		}
		row := []interface{}{
			st.ID,
			st.RUT,
			st.FirstName,
			st.LastName,
			st.BirthDate.Format(models.DateLayout),
			st.AgeAt(today),
			st.Belt,
			st.Level,
			st.BeltLabel(),
			st.PhotoName(),
			st.RegisteredAt.Format(models.TimestampLayout),
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write export row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(ExportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze export header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write export workbook: %w", err)
	}

	logger.Info().Int("students", len(students)).Msg("Roster exported")
	return nil
}
