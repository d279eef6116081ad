// Package plot renders frequency series as interactive HTML charts.
package plot

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/RMahshie/fluxloop/internal/series"
	"github.com/RMahshie/fluxloop/pkg/units"
)

// ErrEmptyFigure is returned when a figure has no curve to draw.
var ErrEmptyFigure = errors.New("figure has no curves")

// Curve is one labelled line of a figure.
type Curve struct {
	Label  string
	Series *series.FrequencySeries
}

// Figure is a chart with a logarithmic frequency axis. Curves are drawn in
// Unit; nil curves are skipped.
type Figure struct {
	Title  string
	YName  string
	Unit   units.Unit
	LogY   bool
	Curves []Curve
}

// Chart builds the echarts line chart of f.
func (f Figure) Chart() (*charts.Line, error) {
	yType := "value"
	if f.LogY {
		yType = "log"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			BackgroundColor: "#ffffff",
			Width:           "100%",
			Height:          "500px",
			PageTitle:       f.Title,
		}),
		charts.WithTitleOpts(opts.Title{Title: f.Title}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:         opts.Bool(true),
			Orient:       "horizontal",
			SelectedMode: "multiple",
			Type:         "scroll",
			Top:          "30px",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "cross",
				Snap: opts.Bool(true),
			},
		}),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: opts.Bool(true),
			Feature: &opts.ToolBoxFeature{
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{
					Show:  opts.Bool(true),
					Type:  "png",
					Title: "Save as image",
				},
				Restore: &opts.ToolBoxFeatureRestore{
					Show:  opts.Bool(true),
					Title: "Restore",
				},
			},
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "f [Hz]",
			Type: "log",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  fmt.Sprintf("%s [%s]", f.YName, f.Unit),
			Type:  yType,
			Show:  opts.Bool(true),
			Scale: opts.Bool(true),
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
	)

	drawn := 0
	for _, c := range f.Curves {
		if c.Series == nil || c.Series.Len() == 0 {
			continue
		}
		data, err := lineData(c.Series, f.Unit, f.LogY)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Label, err)
		}
		line.AddSeries(c.Label, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
		drawn++
	}
	if drawn == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFigure, f.Title)
	}
	return line, nil
}

// lineData pairs each sample with its frequency, as a log axis needs
// explicit x values. Non-positive values cannot be drawn on a log y axis
// and are dropped.
func lineData(s *series.FrequencySeries, u units.Unit, logY bool) ([]opts.LineData, error) {
	values, err := s.Values(u)
	if err != nil {
		return nil, err
	}
	freqs := s.Frequencies()
	data := make([]opts.LineData, 0, len(values))
	for i, v := range values {
		if logY && v <= 0 {
			continue
		}
		data = append(data, opts.LineData{Value: []float64{freqs[i], v}})
	}
	return data, nil
}

// Render writes every figure to w as one HTML page. Empty figures are
// skipped; at least one must be drawable.
func Render(w io.Writer, title string, figures ...Figure) error {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)

	n := 0
	for _, f := range figures {
		chart, err := f.Chart()
		if errors.Is(err, ErrEmptyFigure) {
			continue
		}
		if err != nil {
			return err
		}
		page.AddCharts(chart)
		n++
	}
	if n == 0 {
		return ErrEmptyFigure
	}
	return page.Render(w)
}
