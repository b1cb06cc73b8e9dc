// Package export формирует документы для выгрузки из приложения.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// ErrEmptyText возвращается, если выгружать нечего.
var ErrEmptyText = errors.New("empty text")

const brand = "FECHA INSTALAÇÃO"

var (
	colorBackground = [3]int{15, 23, 41}
	colorAccent     = [3]int{235, 89, 13}
	colorText       = [3]int{237, 240, 250}
	colorMuted      = [3]int{191, 199, 217}
)

// SocialProofPDF возвращает одностраничный PDF A4 с постом о закрытой сделке.
func SocialProofPDF(text string, generatedAt time.Time) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Prova Social - "+brand, true)
	pdf.SetMargins(18, 20, 18)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageWidth, pageHeight := pdf.GetPageSize()

	pdf.SetFillColor(colorBackground[0], colorBackground[1], colorBackground[2])
	pdf.Rect(0, 0, pageWidth, pageHeight, "F")
	pdf.SetFillColor(colorAccent[0], colorAccent[1], colorAccent[2])
	pdf.Rect(0, 0, pageWidth, 6, "F")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(colorText[0], colorText[1], colorText[2])
	pdf.CellFormat(0, 8, tr(brand), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
	pdf.CellFormat(0, 6, generatedAt.UTC().Format("02/01/2006 15:04 UTC"), "", 1, "L", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetTextColor(colorText[0], colorText[1], colorText[2])
	pdf.CellFormat(0, 12, tr("SERVIÇO FECHADO"), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 13)
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = printable(line)
		if line == "" {
			pdf.Ln(4)
			continue
		}
		pdf.MultiCell(0, 7, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output error: %w", err)
	}

	return buf.Bytes(), nil
}

// printable оставляет только символы Latin-1: встроенные шрифты PDF не содержат эмодзи.
func printable(s string) string {
	s = strings.Map(func(r rune) rune {
		if r > 0xFF {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
