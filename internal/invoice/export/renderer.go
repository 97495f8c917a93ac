package export

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/phpdave11/gofpdf"
)

const pageMargin = 15

// gofpdf reads its defaults when maroto.New builds the document, and the
// defaults are process-wide. fpdfDefaults serialises that window.
var fpdfDefaults sync.Mutex

func init() {
	// Fonts, images and links are otherwise emitted in map order.
	gofpdf.SetDefaultCatalogSort(true)
}

var ErrEmptyPlan = errors.New("empty_plan")

// Renderer turns a layout plan into document bytes.
type Renderer interface {
	Render(ctx context.Context, plan Plan) ([]byte, error)
}

// PDFRenderer renders plans with maroto. Pages are built explicitly so the
// planner's breaks are the only breaks.
type PDFRenderer struct {
	Author string
}

func NewPDFRenderer(author string) *PDFRenderer {
	return &PDFRenderer{Author: author}
}

func (r *PDFRenderer) Render(ctx context.Context, plan Plan) ([]byte, error) {
	if len(plan.Pages) == 0 {
		return nil, ErrEmptyPlan
	}

	builder := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(pageMargin).
		WithTopMargin(pageMargin).
		WithRightMargin(pageMargin).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    8,
		}).
		WithTitle(plan.Title, true).
		WithCreator("FreelanceFlow", true)
	if r.Author != "" {
		builder = builder.WithAuthor(r.Author, true)
	}
	if !plan.GeneratedAt.IsZero() {
		builder = builder.WithCreationDate(plan.GeneratedAt)
	}

	fpdfDefaults.Lock()
	gofpdf.SetDefaultModificationDate(plan.GeneratedAt)
	m := maroto.New(builder.Build())
	fpdfDefaults.Unlock()

	pages := make([]core.Page, 0, len(plan.Pages))
	for _, p := range plan.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pg := page.New()
		for _, rw := range p.Rows() {
			pg.Add(buildRow(rw))
		}
		pages = append(pages, pg)
	}
	m.AddPages(pages...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func buildRow(rw Row) core.Row {
	cols := make([]core.Col, 0, len(rw.Cells))
	for _, cell := range rw.Cells {
		cols = append(cols, buildCol(cell))
	}
	return row.New(rw.Height).Add(cols...)
}

func buildCol(cell Cell) core.Col {
	switch {
	case cell.Image != nil:
		ext := extension.Png
		if cell.Image.Format == LogoFormatJPEG {
			ext = extension.Jpg
		}
		return image.NewFromBytesCol(cell.Span, cell.Image.Data, ext, props.Rect{
			Percent: 90,
			Center:  true,
		})
	case cell.Rule != nil:
		return line.NewCol(cell.Span, props.Line{
			Color:     toColor(cell.Rule),
			Thickness: 0.3,
		})
	case cell.Text != "":
		return text.NewCol(cell.Span, cell.Text, textProps(cell))
	default:
		return col.New(cell.Span)
	}
}

func textProps(cell Cell) props.Text {
	style := fontstyle.Normal
	switch {
	case cell.Style.Bold && cell.Style.Italic:
		style = fontstyle.BoldItalic
	case cell.Style.Bold:
		style = fontstyle.Bold
	case cell.Style.Italic:
		style = fontstyle.Italic
	}

	a := align.Left
	switch cell.Align {
	case AlignCenter:
		a = align.Center
	case AlignRight:
		a = align.Right
	}

	return props.Text{
		Size:  cell.Style.Size,
		Style: style,
		Align: a,
		Top:   1,
		Color: toColor(cell.Style.Color),
	}
}

func toColor(c *RGB) *props.Color {
	if c == nil {
		return nil
	}
	return &props.Color{Red: c.R, Green: c.G, Blue: c.B}
}
