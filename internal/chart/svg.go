package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/compound-curves/pkg/format"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	defaultSVGWidth  = 960
	defaultSVGHeight = 480
)

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// SVG renders the series as an SVG line chart with a legend.
func SVG(w io.Writer, series []Series, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = defaultSVGWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultSVGHeight
	}

	last := horizon(series, opts.Years)
	chartSeries := make([]gochart.Series, 0, len(series)+1)
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			xs[i] = float64(p.Year)
			ys[i] = p.Value
		}
		chartSeries = append(chartSeries, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: hexColor(s.Color),
				StrokeWidth: 2,
			},
		})
	}
	chartSeries = append(chartSeries, gochart.ContinuousSeries{
		Name:    "Principal " + format.Currency(opts.Principal),
		XValues: []float64{0, float64(last)},
		YValues: []float64{opts.Principal, opts.Principal},
		Style: gochart.Style{
			StrokeColor:     hexColor(ReferenceColor),
			StrokeWidth:     1,
			StrokeDashArray: []float64{5, 5},
		},
	})

	min, max := valueRange(series, opts.Principal)
	ch := gochart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  "Year",
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(last)},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%d", int(f))
				}
				return ""
			},
		},
		YAxis: gochart.YAxis{
			Name:  "Value",
			Range: &gochart.ContinuousRange{Min: min, Max: max},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return format.Currency(f)
				}
				return ""
			},
		},
		Series: chartSeries,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
