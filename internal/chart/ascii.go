package chart

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/iwvelando/compound-curves/pkg/format"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	defaultASCIIWidth  = 60
	defaultASCIIHeight = 12
)

var ansiCandidates = []struct {
	color asciigraph.AnsiColor
	hex   string
}{
	{asciigraph.Blue, "#0000ff"},
	{asciigraph.Red, "#ff0000"},
	{asciigraph.Green, "#008000"},
	{asciigraph.Yellow, "#ffff00"},
	{asciigraph.Magenta, "#ff00ff"},
	{asciigraph.Cyan, "#00ffff"},
	{asciigraph.Orange, "#ffa500"},
	{asciigraph.Purple, "#800080"},
	{asciigraph.Brown, "#a52a2a"},
	{asciigraph.Pink, "#ffc0cb"},
	{asciigraph.Gray, "#808080"},
	{asciigraph.Olive, "#808000"},
	{asciigraph.White, "#ffffff"},
}

// NearestANSI maps a #rrggbb color to the closest terminal color by Lab
// distance. Unparseable input maps to asciigraph.Default.
func NearestANSI(hex string) asciigraph.AnsiColor {
	target, err := colorful.Hex(hex)
	if err != nil {
		return asciigraph.Default
	}
	best := asciigraph.Default
	bestDist := -1.0
	for _, c := range ansiCandidates {
		candidate, err := colorful.Hex(c.hex)
		if err != nil {
			continue
		}
		if d := target.DistanceLab(candidate); bestDist < 0 || d < bestDist {
			best, bestDist = c.color, d
		}
	}
	return best
}

// ASCII renders the series and the principal reference line for a terminal.
func ASCII(series []Series, opts Options) string {
	if opts.Width <= 0 {
		opts.Width = defaultASCIIWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultASCIIHeight
	}

	last := horizon(series, opts.Years)
	data := make([][]float64, 0, len(series)+1)
	colors := make([]asciigraph.AnsiColor, 0, len(series)+1)

	reference := make([]float64, last+1)
	for i := range reference {
		reference[i] = opts.Principal
	}
	data = append(data, reference)
	colors = append(colors, NearestANSI(ReferenceColor))

	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			ys[i] = p.Value
		}
		data = append(data, ys)
		colors = append(colors, NearestANSI(s.Color))
	}

	min, max := valueRange(series, opts.Principal)
	caption := opts.Title
	if caption == "" {
		caption = fmt.Sprintf("years 0-%d, principal %s", last, format.Currency(opts.Principal))
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.LowerBound(min),
		asciigraph.UpperBound(max),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	)
}

// Legend lists series names with their colors, one per line.
func Legend(series []Series) string {
	var b strings.Builder
	for _, s := range series {
		fmt.Fprintf(&b, "%s %s\n", s.Color, s.Name)
	}
	return b.String()
}
