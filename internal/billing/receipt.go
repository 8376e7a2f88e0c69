package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ReceiptLayout holds the fixed column widths of the printed document.
type ReceiptLayout struct {
	Width      int
	NameWidth  int
	PriceWidth int
	QtyWidth   int
	AmtWidth   int
}

// DefaultReceiptLayout matches a 48-column thermal roll.
var DefaultReceiptLayout = ReceiptLayout{
	Width:      48,
	NameWidth:  22,
	PriceWidth: 7,
	QtyWidth:   7,
	AmtWidth:   7,
}

// Receipt is one rendered bill document.
type Receipt struct {
	Serial   string
	Customer string
	IssuedAt time.Time
	Lines    []LineItem
	Total    float64
}

// ReceiptRenderer builds fixed-width receipt text for the receipt sink.
// Serial numbers come from a snowflake node so reprints are traceable
// without a store round-trip.
type ReceiptRenderer struct {
	layout ReceiptLayout
	node   *snowflake.Node
}

func NewReceiptRenderer(layout ReceiptLayout) (*ReceiptRenderer, error) {
	if layout.Width <= 0 {
		layout = DefaultReceiptLayout
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}
	return &ReceiptRenderer{layout: layout, node: node}, nil
}

// NewReceipt stamps a receipt with a fresh serial and the current time.
func (r *ReceiptRenderer) NewReceipt(customer string, lines []LineItem, total float64) Receipt {
	return Receipt{
		Serial:   r.node.Generate().String(),
		Customer: customer,
		IssuedAt: time.Now(),
		Lines:    lines,
		Total:    total,
	}
}

// Render produces the printable document: header, numbered line table with
// each column truncated to its width, and a right-aligned total footer.
func (r *ReceiptRenderer) Render(rc Receipt) string {
	l := r.layout
	rule := strings.Repeat("-", l.Width)

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(center("RECEIPT", l.Width))
	line(fmt.Sprintf("No: %s", rc.Serial))
	line(fmt.Sprintf("Customer: %s  %s", rc.Customer, rc.IssuedAt.Format("2006-01-02 15:04")))
	line(rule)
	line(fmt.Sprintf("%-4s%-*s%-*s%-*s%-*s",
		"No.", l.NameWidth, "Name", l.PriceWidth, "Price", l.QtyWidth, "Qty", l.AmtWidth, "Amt"))
	line(rule)

	for i, item := range rc.Lines {
		name := clip(item.Name, l.NameWidth-1)
		price := clip(fmt.Sprintf("%.2f", item.Price), l.PriceWidth)
		qty := clip(strconv.FormatFloat(item.Quantity, 'f', -1, 64), l.QtyWidth)
		amt := clip(fmt.Sprintf("%.2f", item.Total()), l.AmtWidth)
		line(fmt.Sprintf("%-4d%-*s%-*s%-*s%-*s",
			i+1, l.NameWidth, name, l.PriceWidth, price, l.QtyWidth, qty, l.AmtWidth, amt))
	}

	line(rule)
	line(fmt.Sprintf("%*s", l.Width, fmt.Sprintf("TOTAL: %.2f", rc.Total)))
	b.WriteString(rule)
	return b.String()
}

func clip(s string, w int) string {
	if w > 0 && len(s) > w {
		return s[:w]
	}
	return s
}

func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	left := (w - len(s)) / 2
	right := w - len(s) - left
	return strings.Repeat("-", left) + s + strings.Repeat("-", right)
}
