package export

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/quidz-backend/internal/domain/coaching"
	"github.com/yungbote/quidz-backend/internal/modules/progress"
)

var (
	chartFontOnce sync.Once
	chartFont     *truetype.Font
	chartFontErr  error
)

func chartFace(size float64) (font.Face, error) {
	chartFontOnce.Do(func() {
		chartFont, chartFontErr = truetype.Parse(goregular.TTF)
	})
	if chartFontErr != nil {
		return nil, fmt.Errorf("failed to parse chart font: %w", chartFontErr)
	}
	return truetype.NewFace(chartFont, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone}), nil
}

var (
	chartBG     = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	chartGrid   = color.NRGBA{R: 0xE2, G: 0xE8, B: 0xF0, A: 0xFF}
	chartAxis   = color.NRGBA{R: 0x64, G: 0x74, B: 0x8B, A: 0xFF}
	chartLine   = color.NRGBA{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF}
	chartMarker = color.NRGBA{R: 0x1E, G: 0x40, B: 0xAF, A: 0xFF}
)

// MoodChartPNG draws the daily mood averages as a line chart on a fixed 1..5
// scale. With no points it renders the empty frame and a note.
func MoodChartPNG(points []progress.MoodPoint, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid chart size %dx%d", width, height)
	}
	face, err := chartFace(14)
	if err != nil {
		return nil, err
	}

	const (
		padLeft   = 48.0
		padRight  = 16.0
		padTop    = 16.0
		padBottom = 36.0
	)
	w, h := float64(width), float64(height)
	plotW := w - padLeft - padRight
	plotH := h - padTop - padBottom

	dc := gg.NewContext(width, height)
	dc.SetColor(chartBG)
	dc.Clear()
	dc.SetFontFace(face)

	yFor := func(v float64) float64 {
		return padTop + plotH - (v-coaching.MoodMin)/(coaching.MoodMax-coaching.MoodMin)*plotH
	}

	dc.SetLineWidth(1)
	for v := coaching.MoodMin; v <= coaching.MoodMax; v++ {
		y := yFor(float64(v))
		dc.SetColor(chartGrid)
		dc.DrawLine(padLeft, y, padLeft+plotW, y)
		dc.Stroke()
		dc.SetColor(chartAxis)
		dc.DrawStringAnchored(fmt.Sprintf("%d", v), padLeft-10, y, 1, 0.35)
	}
	dc.SetColor(chartAxis)
	dc.DrawLine(padLeft, padTop, padLeft, padTop+plotH)
	dc.DrawLine(padLeft, padTop+plotH, padLeft+plotW, padTop+plotH)
	dc.Stroke()

	if len(points) == 0 {
		dc.DrawStringAnchored("Keine Stimmungseintraege im Zeitraum", padLeft+plotW/2, padTop+plotH/2, 0.5, 0.5)
		return encodePNG(dc)
	}

	xFor := func(i int) float64 {
		if len(points) == 1 {
			return padLeft + plotW/2
		}
		return padLeft + float64(i)*plotW/float64(len(points)-1)
	}

	dc.SetColor(chartLine)
	dc.SetLineWidth(2.5)
	for i, p := range points {
		if i == 0 {
			dc.MoveTo(xFor(i), yFor(p.Value))
			continue
		}
		dc.LineTo(xFor(i), yFor(p.Value))
	}
	dc.Stroke()

	dc.SetColor(chartMarker)
	for i, p := range points {
		dc.DrawCircle(xFor(i), yFor(p.Value), 3.5)
		dc.Fill()
	}

	dc.SetColor(chartAxis)
	dc.DrawStringAnchored(shortDate(points[0].Date), xFor(0), h-padBottom/2, 0, 0.5)
	if len(points) > 1 {
		last := len(points) - 1
		dc.DrawStringAnchored(shortDate(points[last].Date), xFor(last), h-padBottom/2, 1, 0.5)
	}
	return encodePNG(dc)
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// shortDate turns 2006-01-02 into 02.01.
func shortDate(iso string) string {
	if len(iso) != len("2006-01-02") {
		return iso
	}
	return iso[8:10] + "." + iso[5:7] + "."
}
