package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// showMap renders the live map (HTML) as an ECharts scatter: the movement
// path, the active or last scan's points, detected objects, and boundary
// feature samples, all in world centimeters. This is a debugging-only page
// (no auth) to eyeball the map without a frontend.
func (s *Server) showMap(w http.ResponseWriter, r *http.Request) {
	pathPts := make([]opts.ScatterData, 0)
	maxAbs := 0.0
	track := func(x, y float64) {
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
	}

	history := s.mp.MovementHistory()
	for _, p := range history {
		track(p.X, p.Y)
		pathPts = append(pathPts, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
	}

	scanPts := make([]opts.ScatterData, 0)
	scanCount := 0
	if rec := s.mp.ActiveOrLastScan(); rec != nil {
		scanCount = len(rec.Points)
		for _, pt := range rec.Points {
			track(pt.WorldX, pt.WorldY)
			scanPts = append(scanPts, opts.ScatterData{Value: []interface{}{pt.WorldX, pt.WorldY}})
		}
	}

	objects := s.mp.Objects()
	objectPts := make([]opts.ScatterData, 0, len(objects))
	for _, obj := range objects {
		track(obj.WorldX, obj.WorldY)
		objectPts = append(objectPts, opts.ScatterData{Value: []interface{}{obj.WorldX, obj.WorldY}})
	}

	features := s.mp.FeatureSamples()
	featurePts := make([]opts.ScatterData, 0, len(features))
	for _, f := range features {
		track(f.WorldX, f.WorldY)
		featurePts = append(featurePts, opts.ScatterData{Value: []interface{}{f.WorldX, f.WorldY}})
	}

	// Add a small padding so points at the edges are visible
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	pose := s.mp.CurrentPose()
	subtitle := fmt.Sprintf(
		"pose=(%.1f, %.1f) heading=%.1f path=%d scan=%d objects=%d features=%d",
		pose.X, pose.Y, pose.Heading,
		len(history), scanCount, len(objects), len(features),
	)

	// Force a square plot by using equal width/height and symmetric axis ranges
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Robot Map", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Robot Map", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (cm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (cm)", NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries("path", pathPts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#9e9e9e"}))
	scatter.AddSeries("scan", scanPts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#35b779"}))
	scatter.AddSeries("objects", objectPts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"}))
	scatter.AddSeries("features", featurePts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#fde725"}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render map: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
