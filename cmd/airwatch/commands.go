package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lox/airwatch/internal/advice"
	"github.com/lox/airwatch/internal/alerts"
	"github.com/lox/airwatch/internal/api"
	"github.com/lox/airwatch/internal/client"
	"github.com/lox/airwatch/internal/export"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/monitor"
	"github.com/lox/airwatch/internal/search"
	"github.com/lox/airwatch/internal/source"
)

type ServeCmd struct {
	Port            string        `help:"HTTP server port." default:"8080" env:"PORT"`
	NoMonitor       bool          `help:"Disable the background alert monitor."`
	MonitorInterval time.Duration `help:"How often the monitor evaluates alerts." default:"5m" env:"AIRWATCH_MONITOR_INTERVAL"`
	RateLimit       float64       `help:"Maximum API requests per second (0 for unlimited)." default:"0" env:"AIRWATCH_RATE_LIMIT"`
	RateBurst       int           `help:"API rate limit burst." default:"20"`
	OpenAIKey       string        `name:"openai-key" help:"OpenAI API key for tailored advice." env:"OPENAI_API_KEY"`
	OpenAIModel     string        `name:"openai-model" help:"Chat model used for advice." default:"gpt-4o-mini" env:"OPENAI_MODEL"`
	AdvicePerMinute int           `help:"Maximum advice completions per minute." default:"10"`
}

func (c *ServeCmd) Run(g *Globals, ctx context.Context) error {
	st, err := g.openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	src := g.source()
	advisor := advice.NewAdvisor(nil)
	if c.OpenAIKey != "" {
		n, err := advice.NewOpenAINarrator(c.OpenAIKey, c.OpenAIModel, c.AdvicePerMinute)
		if err != nil {
			return fmt.Errorf("advice narrator: %w", err)
		}
		advisor = advice.NewAdvisor(n)
		log.Printf("advice: using %s via openai", c.OpenAIModel)
	}

	server := api.NewServer(st, src, advisor, c.Port)
	server.SetRateLimit(c.RateLimit, c.RateBurst)

	if !c.NoMonitor {
		m := monitor.New(st, src, alerts.NewLogNotifier(log.Default()))
		m.SetInterval(c.MonitorInterval)
		go m.Run(ctx)
	} else {
		log.Println("monitor disabled (--no-monitor)")
	}

	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

type CurrentCmd struct {
	Location string `arg:"" help:"Location name, e.g. \"Paris, France\"."`
}

func (c *CurrentCmd) Run(g *Globals, ctx context.Context) error {
	r, err := g.source().Current(ctx, resolve(c.Location))
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", r.Location.Name)
	fmt.Printf("AQI %d (%s), primary pollutant %s\n", r.Air.AQI, r.Air.Category, r.Air.PrimaryPollutant)
	fmt.Printf("%s\n\n", r.Air.Summary)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, m := range r.Air.Measurements {
		fmt.Fprintf(w, "%s\t%g\t%s\n", m.Parameter, m.Value, m.Unit)
	}
	w.Flush()

	fmt.Printf("\n%.0f°F (feels like %.0f°F), wind %.0f mph %s\n",
		r.Weather.Temperature, r.Weather.FeelsLike, r.Weather.WindSpeed, r.Weather.WindDirection)
	return nil
}

type ForecastCmd struct {
	Location string `arg:"" help:"Location name."`
}

func (c *ForecastCmd) Run(g *Globals, ctx context.Context) error {
	f, err := g.source().Forecast(ctx, resolve(c.Location))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HOUR\tPM2.5\tO3")
	for _, p := range f.Hourly {
		fmt.Fprintf(w, "%s\t%g\t%g\n", p.Time, p.Values[models.PM25], p.Values[models.O3])
	}
	fmt.Fprintln(w, "\nDAY\tPM2.5\tO3")
	for _, p := range f.Daily {
		fmt.Fprintf(w, "%s\t%g\t%g\n", p.Day, p.Values[models.PM25], p.Values[models.O3])
	}
	return w.Flush()
}

type TrendsCmd struct {
	Location string `arg:"" help:"Location name."`
}

func (c *TrendsCmd) Run(g *Globals, ctx context.Context) error {
	points, err := g.source().History(ctx, resolve(c.Location))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tPM2.5\tO3")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%g\t%g\n", p.Month, p.Values[models.PM25], p.Values[models.O3])
	}
	return w.Flush()
}

type SearchCmd struct {
	Query       []string `arg:"" optional:"" help:"Search text."`
	Interactive bool     `short:"i" help:"Read queries from stdin as you type; enter a result number to select it."`
}

func (c *SearchCmd) Run(g *Globals, ctx context.Context) error {
	if c.Interactive {
		return interactiveSearch(ctx, os.Stdin, os.Stdout, search.Mock{Latency: g.Latency})
	}
	q := strings.Join(c.Query, " ")
	var (
		locs []models.Location
		err  error
	)
	if g.Server != "" {
		locs, err = client.New(g.Server).Locations(ctx, q)
	} else {
		locs, err = search.Mock{Latency: g.Latency}.Search(ctx, q)
	}
	if err != nil {
		return err
	}
	if len(locs) == 0 {
		fmt.Println("no matching locations")
		return nil
	}
	for _, l := range locs {
		fmt.Printf("%s\t%.4f, %.4f\n", l.Name, l.Lat, l.Lon)
	}
	return nil
}

type MonitorCmd struct {
	Once     bool          `help:"Evaluate once and exit."`
	Interval time.Duration `help:"How often to evaluate alerts." default:"5m" env:"AIRWATCH_MONITOR_INTERVAL"`
	Cooldown time.Duration `help:"Minimum time between repeats of the same alert." default:"1h"`
}

func (c *MonitorCmd) Run(g *Globals, ctx context.Context) error {
	st, err := g.openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	m := monitor.New(st, g.source(), alerts.NewLogNotifier(log.Default()))
	m.SetInterval(c.Interval)
	m.SetCooldown(c.Cooldown)

	if !c.Once {
		m.Run(ctx)
		return nil
	}

	events, err := m.RunOnce(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("no alerts fired")
	}
	recent, err := st.RecentAlertEvents(10)
	if err != nil {
		return err
	}
	for _, e := range recent {
		fmt.Printf("%s\t%s\t%s\n", humanize.Time(e.FiredAt), e.Location, e.Message)
	}
	return nil
}

type ExportCmd struct {
	Location    string `arg:"" help:"Location name."`
	Dir         string `help:"Directory to write reports into." default:"exports" type:"path"`
	FTPAddr     string `name:"ftp-addr" help:"Upload to this FTP server (host:port) instead of a directory." env:"AIRWATCH_FTP_ADDR"`
	FTPUser     string `name:"ftp-user" help:"FTP user name." env:"AIRWATCH_FTP_USER"`
	FTPPassword string `name:"ftp-password" help:"FTP password." env:"AIRWATCH_FTP_PASSWORD"`
	FTPDir      string `name:"ftp-dir" help:"Remote directory for uploads." env:"AIRWATCH_FTP_DIR"`
}

func (c *ExportCmd) Run(g *Globals, ctx context.Context) error {
	files, err := buildReports(ctx, g.source(), resolve(c.Location))
	if err != nil {
		return err
	}

	var pub export.Publisher = export.Dir{Path: c.Dir}
	if c.FTPAddr != "" {
		pub = export.FTP{Addr: c.FTPAddr, User: c.FTPUser, Password: c.FTPPassword, Dir: c.FTPDir}
	}
	return pub.Publish(ctx, files)
}

func buildReports(ctx context.Context, src source.Source, loc models.Location) ([]export.File, error) {
	f, err := src.Forecast(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	history, err := src.History(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return export.Build(loc.Name, f, history)
}
