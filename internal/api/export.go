package api

import (
	"net/http"

	"github.com/xuri/excelize/v2"
)

// handleExport downloads the currently loaded holiday dates as a
// spreadsheet, for manual auditing of the calendar in use.
// GET /api/admin/holidays/export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed; use GET")
		return
	}

	dates := s.holidays.Oracle().Dates()

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Holidays"
	f.SetSheetName("Sheet1", sheet)
	if err := f.SetCellValue(sheet, "A1", "date"); err != nil {
		s.logger.Error().Err(err).Msg("build holidays export")
		writeError(w, http.StatusInternalServerError, "InternalServerError", "an unexpected error occurred")
		return
	}
	for i, d := range dates {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			s.logger.Error().Err(err).Msg("build holidays export")
			writeError(w, http.StatusInternalServerError, "InternalServerError", "an unexpected error occurred")
			return
		}
		if err := f.SetCellValue(sheet, cell, d); err != nil {
			s.logger.Error().Err(err).Msg("build holidays export")
			writeError(w, http.StatusInternalServerError, "InternalServerError", "an unexpected error occurred")
			return
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="holidays.xlsx"`)
	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("write holidays export")
	}
}
