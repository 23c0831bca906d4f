package table

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/ports"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	DefaultFontSize = 12.0

	cellPaddingX = 10.0
	cellPaddingY = 6.0
	margin       = 24.0
	minCellWidth = 48.0
)

var (
	backgroundColor = color.White
	headerFill      = color.NRGBA{R: 0xE8, G: 0xEC, B: 0xF1, A: 0xFF}
	stripeFill      = color.NRGBA{R: 0xF7, G: 0xF8, B: 0xFA, A: 0xFF}
	gridColor       = color.NRGBA{R: 0xB0, G: 0xB7, B: 0xC0, A: 0xFF}
	textColor       = color.NRGBA{R: 0x1F, G: 0x23, B: 0x28, A: 0xFF}
	negativeColor   = color.NRGBA{R: 0xB4, G: 0x23, B: 0x18, A: 0xFF}
)

// Renderer draws an agent's records as a PNG table with a bold header row.
type Renderer struct {
	regular font.Face
	bold    font.Face
	size    float64
}

var _ ports.ArtifactRenderer = (*Renderer)(nil)

func NewRenderer(size float64) (*Renderer, error) {
	if size <= 0 {
		size = DefaultFontSize
	}

	regular, err := loadFace(goregular.TTF, size)
	if err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	bold, err := loadFace(gobold.TTF, size)
	if err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}

	return &Renderer{regular: regular, bold: bold, size: size}, nil
}

func loadFace(ttf []byte, size float64) (font.Face, error) {
	parsed, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse TTF: %w", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     96,
		Hinting: font.HintingFull,
	}), nil
}

func (r *Renderer) Render(ctx context.Context, group domain.AgentGroup, destination string) (domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, err
	}
	if len(group.Columns) == 0 {
		return domain.Artifact{}, fmt.Errorf("agent %s has no columns to render", group.Agent)
	}

	grid := buildGrid(group)
	widths := r.columnWidths(grid)
	rowHeight := math.Ceil(r.lineHeight() + 2*cellPaddingY)

	tableWidth := 0.0
	for _, w := range widths {
		tableWidth += w
	}
	tableHeight := rowHeight * float64(len(grid.rows)+1)

	dc := gg.NewContext(int(math.Ceil(tableWidth+2*margin)), int(math.Ceil(tableHeight+2*margin)))
	dc.SetColor(backgroundColor)
	dc.Clear()

	y := margin
	r.drawRow(dc, grid.header, grid.money, widths, y, rowHeight, headerFill, true)
	for i, row := range grid.rows {
		y += rowHeight
		var fill color.Color
		if i%2 == 1 {
			fill = stripeFill
		}
		r.drawRow(dc, row, grid.money, widths, y, rowHeight, fill, false)
	}

	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(margin, margin, tableWidth, tableHeight)
	dc.Stroke()

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return domain.Artifact{}, fmt.Errorf("create artifact directory: %w", err)
	}
	if err := dc.SavePNG(destination); err != nil {
		return domain.Artifact{}, fmt.Errorf("write %s: %w", destination, err)
	}

	return domain.Artifact{Agent: group.Agent, Path: destination}, nil
}

func (r *Renderer) lineHeight() float64 {
	metrics := r.regular.Metrics()
	return float64(metrics.Height.Ceil())
}

func (r *Renderer) columnWidths(g grid) []float64 {
	measure := gg.NewContext(1, 1)
	widths := make([]float64, len(g.header))

	measure.SetFontFace(r.bold)
	for i, label := range g.header {
		w, _ := measure.MeasureString(label)
		widths[i] = w
	}

	measure.SetFontFace(r.regular)
	for _, row := range g.rows {
		for i, cell := range row {
			w, _ := measure.MeasureString(cell)
			widths[i] = math.Max(widths[i], w)
		}
	}

	for i := range widths {
		widths[i] = math.Max(math.Ceil(widths[i]+2*cellPaddingX), minCellWidth)
	}
	return widths
}

func (r *Renderer) drawRow(dc *gg.Context, cells []string, money []bool, widths []float64, y, height float64, fill color.Color, header bool) {
	face := r.regular
	if header {
		face = r.bold
	}
	dc.SetFontFace(face)

	x := margin
	for i, cell := range cells {
		if fill != nil {
			dc.SetColor(fill)
			dc.DrawRectangle(x, y, widths[i], height)
			dc.Fill()
		}

		dc.SetColor(gridColor)
		dc.SetLineWidth(1)
		dc.DrawRectangle(x, y, widths[i], height)
		dc.Stroke()

		dc.SetColor(textColor)
		if !header && money[i] && strings.Contains(cell, "-") {
			dc.SetColor(negativeColor)
		}

		centerY := y + height/2
		switch {
		case header:
			dc.DrawStringAnchored(cell, x+widths[i]/2, centerY, 0.5, 0.35)
		case money[i]:
			dc.DrawStringAnchored(cell, x+widths[i]-cellPaddingX, centerY, 1, 0.35)
		default:
			dc.DrawStringAnchored(cell, x+cellPaddingX, centerY, 0, 0.35)
		}

		x += widths[i]
	}
}

// grid is the display form of a group: money columns formatted, every row as
// wide as the header.
type grid struct {
	header []string
	money  []bool
	rows   [][]string
}

func buildGrid(group domain.AgentGroup) grid {
	g := grid{
		header: group.Columns,
		money:  make([]bool, len(group.Columns)),
		rows:   make([][]string, 0, len(group.Records)),
	}
	for i, column := range group.Columns {
		g.money[i] = domain.IsMoneyColumn(column)
	}

	for _, record := range group.Records {
		row := make([]string, len(group.Columns))
		for i := range row {
			if i >= len(record.Cells) {
				continue
			}
			cell := strings.TrimSpace(record.Cells[i])
			if g.money[i] {
				cell = domain.FormatBRL(cell)
			}
			row[i] = cell
		}
		g.rows = append(g.rows, row)
	}

	return g
}
