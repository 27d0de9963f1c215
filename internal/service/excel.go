package service

import (
	"bytes"
	"fmt"

	"github.com/cleberrangel/estimate-histogram-api/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	estimatesSheet = "Estimativas"
	histogramSheet = "Histograma"
)

// ExcelExporter gera a planilha de exportação com as estimativas e o
// histograma atual
type ExcelExporter struct{}

// NewExcelExporter cria um novo exportador
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Generate gera a planilha com uma aba de estimativas e uma aba com os
// baldes do histograma
func (g *ExcelExporter) Generate(estimates []model.Estimate, hist model.Histogram) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Renomeia a sheet padrão
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, estimatesSheet); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}

	if err := g.writeEstimates(f, estimates); err != nil {
		return nil, fmt.Errorf("escrever estimativas: %w", err)
	}

	if err := g.writeHistogram(f, hist); err != nil {
		return nil, fmt.Errorf("escrever histograma: %w", err)
	}

	// Escreve para buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}

	return buf, nil
}

// writeEstimates escreve a aba de estimativas
func (g *ExcelExporter) writeEstimates(f *excelize.File, estimates []model.Estimate) error {
	headers := []string{"ID", "Descrição", "Mínimo", "Máximo"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(estimatesSheet, cell, header); err != nil {
			return err
		}
	}

	for row, est := range estimates {
		values := []interface{}{est.ID, est.Description, est.Min, est.Max}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(estimatesSheet, cell, value); err != nil {
				return err
			}
		}
	}

	// Ajusta largura das colunas
	if err := f.SetColWidth(estimatesSheet, "A", "A", 8); err != nil {
		return err
	}
	return f.SetColWidth(estimatesSheet, "B", "D", 18)
}

// writeHistogram escreve a aba com os baldes do histograma
func (g *ExcelExporter) writeHistogram(f *excelize.File, hist model.Histogram) error {
	if _, err := f.NewSheet(histogramSheet); err != nil {
		return err
	}

	headers := []string{"De", "Até", "Contagem"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(histogramSheet, cell, header); err != nil {
			return err
		}
	}

	for row, bucket := range hist.Buckets {
		values := []interface{}{bucket.From, bucket.To, bucket.Count}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(histogramSheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(histogramSheet, "A", "C", 14)
}
