package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/AbdulWasayUl/go-athan-clock/internal/config"
	"github.com/AbdulWasayUl/go-athan-clock/internal/countdown"
	"github.com/AbdulWasayUl/go-athan-clock/internal/display"
	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/internal/scheduler"
	"github.com/AbdulWasayUl/go-athan-clock/models"
	"github.com/AbdulWasayUl/go-athan-clock/services/athan"
	"github.com/urfave/cli"
)

var errNoCity = errors.New("no city given: use --city, or --lat and --lon")

var (
	cityFlags = []cli.Flag{
		cli.StringFlag{
			Name:  "city, c",
			Usage: "city to search for; the first match is used",
		},
		cli.Float64Flag{
			Name:  "lat",
			Usage: "latitude in decimal degrees",
		},
		cli.Float64Flag{
			Name:  "lon",
			Usage: "longitude in decimal degrees",
		},
		cli.StringFlag{
			Name:  "name",
			Usage: "label shown for --lat/--lon",
		},
	}

	logFileFlag = cli.StringFlag{
		Name:  "log-file",
		Usage: "write logs to this file instead of stderr",
	}
)

// cityFinder is the part of the athan service used to pick a city from flags.
type cityFinder interface {
	Search(ctx context.Context, query string) ([]models.City, error)
	Recent(ctx context.Context) ([]models.City, error)
}

// resolveCity picks the city from explicit coordinates, then a search query,
// then the most recently selected city.
func resolveCity(ctx context.Context, c *cli.Context, finder cityFinder) (models.City, error) {
	if c.IsSet("lat") || c.IsSet("lon") {
		if !c.IsSet("lat") || !c.IsSet("lon") {
			return models.City{}, errNoCity
		}
		lat, lon := c.Float64("lat"), c.Float64("lon")
		name := c.String("name")
		if name == "" {
			name = strconv.FormatFloat(lat, 'f', 4, 64) + ", " + strconv.FormatFloat(lon, 'f', 4, 64)
		}
		return models.City{Name: name, Lat: lat, Lon: lon}, nil
	}

	if query := strings.TrimSpace(c.String("city")); query != "" {
		cities, err := finder.Search(ctx, query)
		if err != nil {
			return models.City{}, fmt.Errorf("search %q: %w", query, err)
		}
		if len(cities) == 0 {
			return models.City{}, fmt.Errorf("no city found for %q", query)
		}
		return cities[0], nil
	}

	cities, err := finder.Recent(ctx)
	if err != nil {
		logger.Warn("Failed to load recent cities: %v", err)
	}
	if len(cities) == 0 {
		return models.City{}, errNoCity
	}
	return cities[0], nil
}

func run(c *cli.Context) error {
	if path := c.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else {
		logger.SetOutput(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	a, err := setup(ctx, cfg, display.NewTerminal(os.Stdout))
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	city, err := resolveCity(ctx, c, a.svc)
	if err != nil {
		return err
	}
	if err := a.svc.SelectCity(ctx, city); err != nil {
		return err
	}

	sch, err := scheduler.New(cfg.RefreshInterval)
	if err != nil {
		return err
	}
	if err := sch.StartJob(ctx, []scheduler.Refreshable{a.svc}); err != nil {
		return err
	}
	defer sch.Stop()

	<-ctx.Done()
	logger.Info("Received interrupt signal. Shutting down gracefully...")
	return nil
}

func next(c *cli.Context) error {
	ctx := context.Background()
	a, err := setup(ctx, config.Load(), display.NewRecorder())
	if err != nil {
		return err
	}
	defer a.close(ctx)

	city, err := resolveCity(ctx, c, a.svc)
	if err != nil {
		return err
	}
	snap, err := a.svc.Next(ctx, city)
	if err != nil {
		return err
	}
	printSnapshot(c.App.Writer, snap)
	return nil
}

func search(c *cli.Context) error {
	query := strings.Join(c.Args(), " ")
	if strings.TrimSpace(query) == "" {
		return cli.ShowCommandHelp(c, c.Command.Name)
	}

	ctx := context.Background()
	a, err := setup(ctx, config.Load(), display.NewRecorder())
	if err != nil {
		return err
	}
	defer a.close(ctx)

	cities, err := a.svc.Search(ctx, query)
	if err != nil {
		return err
	}
	printCities(c.App.Writer, cities, "no cities found for "+strconv.Quote(query))
	return nil
}

func recent(c *cli.Context) error {
	ctx := context.Background()
	a, err := setup(ctx, config.Load(), display.NewRecorder())
	if err != nil {
		return err
	}
	defer a.close(ctx)

	cities, err := a.svc.Recent(ctx)
	if err != nil {
		return err
	}
	printCities(c.App.Writer, cities, "no recent cities")
	return nil
}

func clearCache(c *cli.Context) error {
	ctx := context.Background()
	a, err := setup(ctx, config.Load(), display.NewRecorder())
	if err != nil {
		return err
	}
	defer a.close(ctx)

	if err := a.svc.ClearCaches(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "caches cleared")
	return nil
}

func printCities(w io.Writer, cities []models.City, empty string) {
	if len(cities) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for i, city := range cities {
		fmt.Fprintf(w, "%d. %s (%.4f, %.4f)\n", i+1, city.Name, city.Lat, city.Lon)
	}
}

func printSnapshot(w io.Writer, snap athan.Snapshot) {
	fmt.Fprintf(w, "%s  [%s]\n", snap.City.Name, snap.Timezone.ZoneName)
	if snap.PrayerTimes.Hijri != "" {
		fmt.Fprintf(w, "%s\n", snap.PrayerTimes.Hijri)
	}
	fmt.Fprintf(w, "Local time: %s\n\n", countdown.FormatClock(snap.CityNow))

	for _, e := range models.Events {
		v := snap.PrayerTimes.Get(e)
		if v == "" {
			v = "--:--"
		}
		marker := " "
		if snap.Next != nil && snap.Next.Name == e {
			marker = ">"
		}
		fmt.Fprintf(w, "%s %-8s %s\n", marker, e.Label(), v)
	}

	if snap.Next == nil {
		fmt.Fprintf(w, "\nNo upcoming prayer  %s\n", snap.Countdown)
		return
	}
	fmt.Fprintf(w, "\nNext: %s in %s\n", snap.Next.Name.Label(), snap.Countdown)
}
