package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	trendline "github.com/vigneshwaranr/highcharts-trendline"
	"github.com/vigneshwaranr/highcharts-trendline/internal/chartio"
	"github.com/vigneshwaranr/highcharts-trendline/internal/config"
	"github.com/vigneshwaranr/highcharts-trendline/internal/forecast"
	"github.com/vigneshwaranr/highcharts-trendline/internal/store"
	"github.com/vigneshwaranr/highcharts-trendline/internal/telemetry"
	"github.com/vigneshwaranr/highcharts-trendline/internal/wasmfit"
)

func init() {
	godotenv.Load(".env")
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	line1Path := flag.String("line1", "", "CSV file for the first series (x,y rows or one y column)")
	line2Path := flag.String("line2", "", "CSV file for the second series")
	json1 := flag.String("json1", "", "First series as inline JSON (overrides -line1)")
	json2 := flag.String("json2", "", "Second series as inline JSON (overrides -line2)")
	name1 := flag.String("name1", "series1", "Label for the first series")
	name2 := flag.String("name2", "series2", "Label for the second series")
	out1 := flag.String("out1", "", "Write fitted first line (crossing inserted) to CSV")
	out2 := flag.String("out2", "", "Write fitted second line (crossing inserted) to CSV")
	save := flag.Bool("save", false, "Record the crossing in the history database")
	history := flag.Int("history", 0, "Print the N most recent crossings and exit")
	flag.Parse()

	ctx := context.Background()
	shutdown, err := telemetry.Init(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("telemetry init")
	}
	defer shutdown(ctx)

	if *history > 0 {
		printHistory(*history)
		return
	}

	s1, err := loadSeries(*json1, *line1Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load first series: %v\n", err)
		os.Exit(1)
	}
	s2, err := loadSeries(*json2, *line2Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load second series: %v\n", err)
		os.Exit(1)
	}

	if wasmfit.Available() {
		log.Info().Msg("using WASM fit engine")
	}

	res, err := forecast.Crossing(ctx, *name1, *name2, s1, s2)
	if err != nil {
		// No crossing is a normal outcome: report and leave the data alone.
		fmt.Printf("No crossing: %v\n", err)
		return
	}

	fmt.Printf("%s: y = %.6g*x + %.6g\n", res.Name1, res.Slope1, res.Intercept1)
	fmt.Printf("%s: y = %.6g*x + %.6g\n", res.Name2, res.Slope2, res.Intercept2)
	fmt.Printf("Trends cross at (%.6g, %.6g)\n", res.X, res.Y)

	if *out1 != "" {
		if err := writeLine(*out1, res.Line1); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write %s: %v\n", *out1, err)
			os.Exit(1)
		}
	}
	if *out2 != "" {
		if err := writeLine(*out2, res.Line2); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write %s: %v\n", *out2, err)
			os.Exit(1)
		}
	}

	if *save {
		saveCrossing(res)
	}
}

func loadSeries(inlineJSON, csvPath string) (trendline.PolyLine, error) {
	switch {
	case inlineJSON != "":
		return chartio.ParseJSON([]byte(inlineJSON))
	case csvPath != "":
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return chartio.ReadCSV(f)
	default:
		return nil, fmt.Errorf("no input (use -line1/-line2 or -json1/-json2)")
	}
}

func writeLine(path string, line trendline.PolyLine) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return chartio.WriteCSV(f, line)
}

func saveCrossing(res *forecast.Result) {
	if config.DBPath == "" {
		fmt.Fprintln(os.Stderr, "TRENDLINE_DB not set, crossing not saved.")
		return
	}
	st, err := store.Open(config.DBPath)
	if err != nil {
		log.Warn().Err(err).Msg("open history database")
		return
	}
	defer st.Close()
	if err := st.SaveCrossing(res); err != nil {
		log.Warn().Err(err).Msg("save crossing")
		return
	}
	fmt.Println("Crossing saved.")
}

func printHistory(limit int) {
	if config.DBPath == "" {
		fmt.Fprintln(os.Stderr, "TRENDLINE_DB not set.")
		os.Exit(1)
	}
	st, err := store.Open(config.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open history database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()
	crossings, err := st.RecentCrossings(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read history: %v\n", err)
		os.Exit(1)
	}
	if len(crossings) == 0 {
		fmt.Println("No crossings recorded.")
		return
	}
	for _, c := range crossings {
		fmt.Printf("  %s  %s x %s  at (%.6g, %.6g)  slopes %.4g / %.4g\n",
			c.ComputedAt.Format("2006-01-02 15:04"), c.Series1, c.Series2, c.X, c.Y, c.Slope1, c.Slope2)
	}
}
