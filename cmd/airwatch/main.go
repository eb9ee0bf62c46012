package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/airwatch/internal/client"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/search"
	"github.com/lox/airwatch/internal/source"
	"github.com/lox/airwatch/internal/store"
	"github.com/lox/airwatch/internal/synth"
)

type Globals struct {
	DB      string        `help:"Path to SQLite database." default:"data/airwatch.db" env:"AIRWATCH_DB"`
	Server  string        `help:"Query a remote airwatch server instead of computing locally." env:"AIRWATCH_SERVER"`
	Latency time.Duration `help:"Artificial delay added to synthetic lookups." default:"0s" env:"AIRWATCH_LATENCY"`

	SourceRate  float64 `help:"Maximum data source lookups per second (0 for unlimited)." default:"0" env:"AIRWATCH_SOURCE_RATE"`
	SourceBurst int     `help:"Data source rate limit burst." default:"5"`
}

type CLI struct {
	Globals

	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Load environment variables from this file.'"`

	Serve    ServeCmd    `cmd:"" help:"Run the dashboard HTTP server and alert monitor."`
	Current  CurrentCmd  `cmd:"" help:"Show current conditions for a location."`
	Forecast ForecastCmd `cmd:"" help:"Show the 24 hour and 7 day forecast for a location."`
	Trends   TrendsCmd   `cmd:"" help:"Show 12 months of averages for a location."`
	Search   SearchCmd   `cmd:"" help:"Find locations matching a query."`
	Monitor  MonitorCmd  `cmd:"" help:"Evaluate alerts for the configured location."`
	Export   ExportCmd   `cmd:"" help:"Write CSV reports for a location to a directory or FTP server."`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("airwatch"),
		kong.Description("Synthetic air quality dashboard and alerting."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}

// source returns the remote server when --server is set, otherwise the
// local synthetic generator. --source-rate throttles either one.
func (g *Globals) source() source.Source {
	var src source.Source
	if g.Server != "" {
		src = client.New(g.Server)
	} else {
		src = source.NewSynthetic(synth.New(), g.Latency)
	}
	if g.SourceRate > 0 {
		burst := g.SourceBurst
		if burst < 1 {
			burst = 1
		}
		src = source.NewRateLimited(src, g.SourceRate, burst)
	}
	return src
}

func (g *Globals) openStore() (*store.Store, error) {
	if dir := filepath.Dir(g.DB); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	st, err := store.Open(g.DB)
	if err != nil {
		return nil, err
	}
	log.Println("database migrated")
	return st, nil
}

func resolve(name string) models.Location {
	if loc, ok := search.Find(name); ok {
		return loc
	}
	return models.Location{Name: name}
}
