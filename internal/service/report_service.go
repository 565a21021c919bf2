package service

import (
	"context"
	"fmt"

	"glowdesk/internal/export"
	"glowdesk/internal/repository"

	"github.com/rs/zerolog"
)

// reportService implements ReportService.
type reportService struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewReportService creates a new report service.
func NewReportService(stockRepo repository.StockRepository, productRepo repository.ProductRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "report").Logger(),
	}
}

// StockCSV renders the stock report in the back-office CSV dialect.
func (s *reportService) StockCSV(ctx context.Context) ([]byte, error) {
	levels, err := s.stockRepo.ListLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}

	productIDs := make([]string, len(levels))
	for i, level := range levels {
		productIDs[i] = level.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	nameByID := make(map[string]string, len(products))
	for _, p := range products {
		nameByID[p.ID] = p.Name
	}

	w := export.NewWriter()
	if err := w.Write([]string{"Artikel", "Produkt", "Bestand", "Mindestbestand", "Maximalbestand", "Niedrig"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, level := range levels {
		maxCap := ""
		if level.MaxCap != nil {
			maxCap = export.FormatInt(*level.MaxCap)
		}
		record := []string{
			level.ProductID,
			nameByID[level.ProductID],
			export.FormatInt(level.Quantity),
			export.FormatInt(level.MinThreshold),
			maxCap,
			export.FormatBool(level.LowStock()),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	out, err := w.Bytes()
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("rows", len(levels)).Msg("stock report rendered")
	return out, nil
}
