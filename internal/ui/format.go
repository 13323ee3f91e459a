package ui

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders numbers with the grouping and decimal marks of a
// locale.
type Formatter struct {
	p *message.Printer
}

func NewFormatter(tag language.Tag) Formatter {
	return Formatter{p: message.NewPrinter(tag)}
}

// Money renders v with two decimals, e.g. "$1,234.50" in en-US.
func (f Formatter) Money(v float64) string {
	if v < 0 {
		return "-" + f.p.Sprintf("$%.2f", -v)
	}
	return f.p.Sprintf("$%.2f", v)
}

func (f Formatter) Int(v int) string {
	return f.p.Sprintf("%d", v)
}

// Percent renders v, already in percent units, with one decimal.
func (f Formatter) Percent(v float64) string {
	return f.p.Sprintf("%.1f%%", v)
}

// OptPercent renders nil as "n/a".
func (f Formatter) OptPercent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return f.Percent(*v)
}

func (f Formatter) Days(v float64) string {
	return f.p.Sprintf("%.1fd", v)
}
