package service

import (
	"context"
	"strings"
	"testing"

	"glowdesk/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_StockCSV(t *testing.T) {
	ctx := context.Background()

	maxCap := 50
	levels := []model.StockLevel{
		{ProductID: "P001", Quantity: 12, MinThreshold: 5, MaxCap: &maxCap},
		{ProductID: "P002", Quantity: 2, MinThreshold: 5},
	}
	products := []model.Product{
		{ID: "P001", Name: "Shampoo", Price: 2500},
		{ID: "P002", Name: "Conditioner", Price: 1000},
	}

	mockStock := new(MockStockRepository)
	mockProducts := new(MockProductRepository)
	mockStock.On("ListLevels", ctx).Return(levels, nil)
	mockProducts.On("GetByIDs", ctx, []string{"P001", "P002"}).Return(products, nil)

	svc := NewReportService(mockStock, mockProducts, zerolog.Nop())

	out, err := svc.StockCSV(ctx)

	require.NoError(t, err)

	doc := string(out)
	assert.True(t, strings.HasPrefix(doc, "\xef\xbb\xbf"), "document must start with a UTF-8 BOM")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(doc, "\xef\xbb\xbf")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Artikel;Produkt;Bestand;Mindestbestand;Maximalbestand;Niedrig", lines[0])
	assert.Equal(t, "P001;Shampoo;12;5;50;Nein", lines[1])
	assert.Equal(t, "P002;Conditioner;2;5;;Ja", lines[2])
}

func TestReportService_StockCSV_Empty(t *testing.T) {
	ctx := context.Background()

	mockStock := new(MockStockRepository)
	mockProducts := new(MockProductRepository)
	mockStock.On("ListLevels", ctx).Return([]model.StockLevel{}, nil)
	mockProducts.On("GetByIDs", ctx, []string{}).Return([]model.Product{}, nil)

	svc := NewReportService(mockStock, mockProducts, zerolog.Nop())

	out, err := svc.StockCSV(ctx)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(out), "\xef\xbb\xbf")), "\n")
	require.Len(t, lines, 1)
}
