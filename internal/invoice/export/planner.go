package export

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/smallbiznis/freelanceflow/internal/invoice/domain"
	"github.com/smallbiznis/freelanceflow/internal/invoice/format"
)

// Page geometry in millimetres for an A4 sheet with 15mm side and top
// margins and room for the page number at the bottom.
const (
	DefaultPageBudget = 250.0
	gridColumns       = 12
	notesWrapWidth    = 95
)

// Align is a horizontal text alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// RGB is an 8-bit colour.
type RGB struct {
	R, G, B int
}

var (
	colorPrimary = &RGB{R: 60, G: 80, B: 224}
	colorMuted   = &RGB{R: 100, G: 116, B: 139}
	colorRule    = &RGB{R: 200, G: 200, B: 200}

	statusColors = map[domain.InvoiceStatus]*RGB{
		domain.StatusPaid:    {R: 34, G: 197, B: 94},
		domain.StatusPending: {R: 245, G: 158, B: 11},
		domain.StatusOverdue: {R: 239, G: 68, B: 68},
	}
)

type Style struct {
	Size   float64
	Bold   bool
	Italic bool
	Color  *RGB
}

// Cell occupies Span grid columns of a row. A cell carries text, a
// horizontal rule, an image or nothing.
type Cell struct {
	Span  int
	Text  string
	Style Style
	Align Align
	Rule  *RGB
	Image *Logo
}

type Row struct {
	Height float64
	Cells  []Cell
}

// BlockKind identifies what a block renders; pagination treats item
// blocks specially.
type BlockKind string

const (
	BlockTitle  BlockKind = "title"
	BlockBillTo BlockKind = "bill_to"
	BlockItems  BlockKind = "items_header"
	BlockItem   BlockKind = "item"
	BlockTotals BlockKind = "totals"
	BlockStatus BlockKind = "status"
	BlockNotes  BlockKind = "notes"
	BlockFooter BlockKind = "footer"
)

// Block is a run of rows that must stay on one page.
type Block struct {
	Kind BlockKind
	Rows []Row
}

func (b Block) Height() float64 {
	var h float64
	for _, r := range b.Rows {
		h += r.Height
	}
	return h
}

type Page struct {
	Blocks []Block
	Used   float64
}

func (p Page) Rows() []Row {
	var rows []Row
	for _, b := range p.Blocks {
		rows = append(rows, b.Rows...)
	}
	return rows
}

// Plan is the fully laid out document. GeneratedAt is the only field that
// varies between exports of an unchanged invoice; the PDF renderer stamps it
// as both CreationDate and ModDate, so equal plans render to equal bytes.
type Plan struct {
	Title       string
	Filename    string
	Pages       []Page
	GeneratedAt time.Time
}

// Document is the planner input.
type Document struct {
	Invoice     domain.Invoice
	Logo        *Logo
	GeneratedAt time.Time
}

// Planner lays out invoices into pages. It performs no I/O.
type Planner struct {
	Budget           float64
	DescriptionLimit int
	Footer           string
	Money            format.Money
}

func NewPlanner(descriptionLimit int, footer, currencySymbol string) Planner {
	return Planner{
		Budget:           DefaultPageBudget,
		DescriptionLimit: descriptionLimit,
		Footer:           footer,
		Money:            format.NewMoney(currencySymbol),
	}
}

// Plan lays out doc. A block that does not fit below the cursor moves to a
// new page; item rows that continue on a new page get the column header
// repeated above them.
func (p Planner) Plan(doc Document) Plan {
	budget := p.Budget
	if budget <= 0 {
		budget = DefaultPageBudget
	}

	inv := doc.Invoice
	plan := Plan{
		Title:       "Invoice " + inv.InvoiceNumber,
		Filename:    format.DocumentFilename(inv.InvoiceNumber, "pdf"),
		GeneratedAt: doc.GeneratedAt,
	}

	page := Page{}
	flush := func() {
		plan.Pages = append(plan.Pages, page)
		page = Page{}
	}

	inTable := false
	for _, block := range p.blocks(doc) {
		h := block.Height()
		if page.Used > 0 && page.Used+h > budget {
			flush()
			if block.Kind == BlockItem && inTable {
				header := Block{Kind: BlockItems, Rows: columnHeaderRows()}
				page.Blocks = append(page.Blocks, header)
				page.Used += header.Height()
			}
		}
		page.Blocks = append(page.Blocks, block)
		page.Used += h
		inTable = block.Kind == BlockItem
	}
	if len(page.Blocks) > 0 {
		flush()
	}
	return plan
}

func (p Planner) blocks(doc Document) []Block {
	inv := doc.Invoice
	blocks := []Block{p.titleBlock(inv, doc.Logo), billToBlock(inv)}

	items := p.itemRows(inv.WorkItems)
	header := append([]Row{textRow(8, "Work Items:", Style{Size: 12, Bold: true})}, columnHeaderRows()...)
	if len(items) == 0 {
		blocks = append(blocks, Block{Kind: BlockItems, Rows: header})
	} else {
		// heading stays with the first item
		blocks = append(blocks, Block{Kind: BlockItem, Rows: append(header, items[0])})
		for _, row := range items[1:] {
			blocks = append(blocks, Block{Kind: BlockItem, Rows: []Row{row}})
		}
	}

	blocks = append(blocks, p.totalsBlock(inv))
	blocks = append(blocks, Block{Kind: BlockStatus, Rows: []Row{
		spacer(3),
		statusRow(inv.DisplayStatus(doc.GeneratedAt)),
	}})

	if notes := strings.TrimSpace(inv.Notes); notes != "" {
		lines := wrapText(notes, notesWrapWidth)
		first := []Row{spacer(4), textRow(7, "Notes:", Style{Size: 11, Bold: true})}
		first = append(first, textRow(5, lines[0], Style{Size: 10}))
		blocks = append(blocks, Block{Kind: BlockNotes, Rows: first})
		for _, line := range lines[1:] {
			blocks = append(blocks, Block{Kind: BlockNotes, Rows: []Row{textRow(5, line, Style{Size: 10})}})
		}
	}

	blocks = append(blocks, p.footerBlock(doc.GeneratedAt))
	return blocks
}

func (p Planner) titleBlock(inv domain.Invoice, logo *Logo) Block {
	headerHeight := 14.0
	logoCell := Cell{Span: 3}
	if logo != nil {
		headerHeight = 30
		logoCell.Image = logo
	}
	return Block{Kind: BlockTitle, Rows: []Row{
		{Height: headerHeight, Cells: []Cell{
			{Span: 9, Text: "INVOICE", Style: Style{Size: 24, Bold: true, Color: colorPrimary}},
			logoCell,
		}},
		textRow(6, "Invoice Number: "+inv.InvoiceNumber, Style{Size: 11}),
		textRow(6, "Issue Date: "+format.LongDate(inv.IssuedDate), Style{Size: 11}),
		textRow(6, "Due Date: "+format.LongDate(inv.DueDate), Style{Size: 11}),
		spacer(6),
	}}
}

func billToBlock(inv domain.Invoice) Block {
	return Block{Kind: BlockBillTo, Rows: []Row{
		textRow(7, "Bill To:", Style{Size: 12, Bold: true}),
		textRow(6, inv.Client, Style{Size: 11}),
		spacer(6),
	}}
}

func columnHeaderRows() []Row {
	head := Style{Size: 10, Bold: true, Color: colorMuted}
	return []Row{
		{Height: 7, Cells: []Cell{
			{Span: 6, Text: "Description", Style: head},
			{Span: 2, Text: "Qty", Style: head, Align: AlignRight},
			{Span: 2, Text: "Rate", Style: head, Align: AlignRight},
			{Span: 2, Text: "Amount", Style: head, Align: AlignRight},
		}},
		ruleRow(2, colorRule),
	}
}

func (p Planner) itemRows(items []domain.WorkItem) []Row {
	limit := p.DescriptionLimit
	if limit <= 0 {
		limit = 50
	}
	body := Style{Size: 10}
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, Row{Height: 7, Cells: []Cell{
			{Span: 6, Text: format.TruncateDescription(item.Description, limit), Style: body},
			{Span: 2, Text: format.Quantity(item.Quantity), Style: body, Align: AlignRight},
			{Span: 2, Text: p.Money.Line(item.Rate), Style: body, Align: AlignRight},
			{Span: 2, Text: p.Money.Line(item.Amount), Style: body, Align: AlignRight},
		}})
	}
	return rows
}

func (p Planner) totalsBlock(inv domain.Invoice) Block {
	label := Style{Size: 10}
	rows := []Row{
		ruleRow(3, colorRule),
		totalsRow(7, "Subtotal:", p.Money.Line(inv.Subtotal), label),
	}
	if inv.HasTax() {
		rows = append(rows, totalsRow(7, "Tax ("+format.Percent(inv.TaxRate)+"%):", p.Money.Line(inv.TaxAmount), label))
	}
	rows = append(rows,
		Row{Height: 3, Cells: []Cell{{Span: 6}, {Span: 6, Rule: colorPrimary}}},
		totalsRow(9, "Total:", p.Money.Line(inv.Amount), Style{Size: 13, Bold: true, Color: colorPrimary}),
	)
	return Block{Kind: BlockTotals, Rows: rows}
}

func (p Planner) footerBlock(generatedAt time.Time) Block {
	footer := p.Footer
	if footer == "" {
		footer = "Thank you for your business!"
	}
	return Block{Kind: BlockFooter, Rows: []Row{
		spacer(10),
		{Height: 7, Cells: []Cell{{Span: gridColumns, Text: footer, Style: Style{Size: 10, Italic: true, Color: colorMuted}, Align: AlignCenter}}},
		{Height: 5, Cells: []Cell{{Span: gridColumns, Text: "Generated on " + generatedAt.UTC().Format("January 2, 2006 15:04 UTC"), Style: Style{Size: 8, Color: colorMuted}, Align: AlignCenter}}},
	}}
}

func textRow(height float64, text string, style Style) Row {
	return Row{Height: height, Cells: []Cell{{Span: gridColumns, Text: text, Style: style}}}
}

func totalsRow(height float64, label, value string, style Style) Row {
	return Row{Height: height, Cells: []Cell{
		{Span: 6},
		{Span: 3, Text: label, Style: style, Align: AlignRight},
		{Span: 3, Text: value, Style: style, Align: AlignRight},
	}}
}

func ruleRow(height float64, color *RGB) Row {
	return Row{Height: height, Cells: []Cell{{Span: gridColumns, Rule: color}}}
}

func spacer(height float64) Row {
	return Row{Height: height, Cells: []Cell{{Span: gridColumns}}}
}

// statusRow prints the status as of GeneratedAt, so an unpaid invoice past
// its due date reads Overdue while the plan stays a function of the document.
func statusRow(status domain.InvoiceStatus) Row {
	return textRow(6, "Status: "+statusLabel(status), Style{Size: 12, Color: statusColors[status]})
}

func statusLabel(status domain.InvoiceStatus) string {
	s := string(status)
	if s == "" {
		s = string(domain.StatusPending)
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// wrapText breaks s into lines of at most width runes on word boundaries.
// Explicit newlines are kept; words longer than width are split.
func wrapText(s string, width int) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range words {
			for utf8.RuneCountInString(word) > width {
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				runes := []rune(word)
				lines = append(lines, string(runes[:width]))
				word = string(runes[width:])
			}
			switch {
			case line == "":
				line = word
			case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
