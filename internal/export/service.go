package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/storylingo/storylingo/internal/repository"
)

// Service is a tiny façade over the vocabulary repository that produces
// XLSX bytes for downloads.
type Service struct {
	vocabRepo repository.VocabularyRepository
	logger    *slog.Logger
}

func NewService(repo repository.VocabularyRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{vocabRepo: repo, logger: logger}
}

// ExportVocabularyXLSX returns an XLSX workbook (as bytes) with every
// saved word matching opts. Ordering follows the listing: most recently
// seen first.
func (s *Service) ExportVocabularyXLSX(ctx context.Context, userID uuid.UUID, opts repository.ListWordsOptions) ([]byte, error) {
	start := time.Now()

	words, err := s.vocabRepo.ListWords(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("query vocabulary: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Vocabulary"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Word",
		"Translation",
		"Language",
		"Times Reviewed",
		"Last Seen",
		"Added",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, w := range words {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, w.Word)
		write(2, w.Translation)
		write(3, w.LanguageCode)
		write(4, w.HoverCount)
		write(5, w.LastSeenAt.Format("2006-01-02"))
		write(6, w.CreatedAt.Format("2006-01-02"))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 24) // word
	_ = f.SetColWidth(sheet, "B", "B", 32) // translation
	_ = f.SetColWidth(sheet, "C", "C", 10) // language
	_ = f.SetColWidth(sheet, "D", "D", 14) // reviews
	_ = f.SetColWidth(sheet, "E", "F", 12) // dates

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"user_id", userID.String(),
		"rows", len(words),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
