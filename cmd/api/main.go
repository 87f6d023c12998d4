package main

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	trendline "github.com/vigneshwaranr/highcharts-trendline"
	"github.com/vigneshwaranr/highcharts-trendline/internal/chartio"
	"github.com/vigneshwaranr/highcharts-trendline/internal/config"
	"github.com/vigneshwaranr/highcharts-trendline/internal/forecast"
	"github.com/vigneshwaranr/highcharts-trendline/internal/store"
	"github.com/vigneshwaranr/highcharts-trendline/internal/telemetry"
)

func init() {
	godotenv.Load(".env")
}

var crossingStore *store.Store

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx := context.Background()
	shutdown, err := telemetry.Init(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("telemetry init")
	}
	defer shutdown(ctx)

	if config.DBPath != "" {
		crossingStore, err = store.Open(config.DBPath)
		if err != nil {
			log.Warn().Err(err).Str("path", config.DBPath).Msg("crossing history disabled")
		} else {
			defer crossingStore.Close()
		}
	}

	http.HandleFunc("/api/intersect", securityHeaders(rateLimitCompute(handleIntersect)))
	http.HandleFunc("/api/trendline", securityHeaders(rateLimitCompute(handleTrendline)))
	http.HandleFunc("/api/crossing", securityHeaders(rateLimitCompute(handleCrossing)))
	http.HandleFunc("/api/health", securityHeaders(handleHealth))

	port := "8000"
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}
	log.Info().Str("port", port).Msg("listening")
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

type intersectRequest struct {
	Line1   json.RawMessage `json:"line1"`
	Line2   json.RawMessage `json:"line2"`
	Options *optionsPayload `json:"options"`
}

type optionsPayload struct {
	InterceptPointShape string                 `json:"intercept_point_shape"`
	Template            map[string]interface{} `json:"template"`
}

func (o *optionsPayload) toOptions() (*trendline.Options, error) {
	if o == nil {
		return nil, nil
	}
	opts := &trendline.Options{Template: o.Template}
	switch o.InterceptPointShape {
	case "", "pair":
		opts.InterceptShape = trendline.ShapePair
	case "labeledPoint":
		opts.InterceptShape = trendline.ShapeLabeled
	default:
		return nil, trendline.ErrInvalidOptions
	}
	return opts, nil
}

func handleIntersect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, span := telemetry.Tracer().Start(r.Context(), "api.intersect")
	defer span.End()

	var req intersectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	line1, err := parseLine(req.Line1)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "line1: "+err.Error())
		return
	}
	line2, err := parseLine(req.Line2)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "line2: "+err.Error())
		return
	}
	opts, err := req.Options.toOptions()
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "unknown intercept_point_shape")
		return
	}

	res, err := trendline.ComputeIntersection(line1, line2, opts)
	if err != nil {
		// Parallel and rejected are the normal "keep your original data"
		// outcomes, not request faults.
		switch {
		case errors.Is(err, trendline.ErrParallel):
			jsonResponse(w, map[string]interface{}{"error": "parallel"})
		case errors.Is(err, trendline.ErrRejected):
			jsonResponse(w, map[string]interface{}{"error": "rejected"})
		default:
			errorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	span.SetAttributes(attribute.Float64("intersect.x", res.X), attribute.Float64("intersect.y", res.Y))
	jsonResponse(w, res)
}

type trendlineRequest struct {
	Data json.RawMessage `json:"data"`
}

func handleTrendline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, span := telemetry.Tracer().Start(r.Context(), "api.trendline")
	defer span.End()

	var req trendlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	points, err := chartio.ParseJSON(req.Data)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "data: "+err.Error())
		return
	}
	res := trendline.FitTrendline(points)
	if !isFinite(res.Slope) || !isFinite(res.Intercept) {
		// Zero retained samples or zero x-variance: the fit is undefined and
		// the caller keeps its original data.
		jsonResponse(w, map[string]interface{}{"error": "degenerate fit"})
		return
	}
	span.SetAttributes(attribute.Int("fit.points", len(res.Points)))
	jsonResponse(w, res)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type crossingRequest struct {
	Name1   string          `json:"name1"`
	Name2   string          `json:"name2"`
	Series1 json.RawMessage `json:"series1"`
	Series2 json.RawMessage `json:"series2"`
	Save    bool            `json:"save"`
}

func handleCrossing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req crossingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s1, err := chartio.ParseJSON(req.Series1)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "series1: "+err.Error())
		return
	}
	s2, err := chartio.ParseJSON(req.Series2)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "series2: "+err.Error())
		return
	}

	res, err := forecast.Crossing(r.Context(), req.Name1, req.Name2, s1, s2)
	if err != nil {
		if errors.Is(err, trendline.ErrParallel) {
			jsonResponse(w, map[string]interface{}{"error": "parallel"})
			return
		}
		jsonResponse(w, map[string]interface{}{"error": err.Error()})
		return
	}

	saved := false
	if req.Save && crossingStore != nil && isAdmin(r) {
		if err := crossingStore.SaveCrossing(res); err != nil {
			log.Warn().Err(err).Msg("save crossing")
		} else {
			saved = true
		}
	}

	jsonResponse(w, map[string]interface{}{
		"x":          res.X,
		"y":          res.Y,
		"slope1":     res.Slope1,
		"intercept1": res.Intercept1,
		"slope2":     res.Slope2,
		"intercept2": res.Intercept2,
		"line1":      res.Line1,
		"line2":      res.Line2,
		"saved":      saved,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"})
}

func parseLine(raw json.RawMessage) (trendline.PolyLine, error) {
	return chartio.ParseJSON(raw)
}

func jsonResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func errorResponse(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
