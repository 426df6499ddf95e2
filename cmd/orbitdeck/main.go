// Command orbitdeck is a terminal dashboard for crewed spaceflight
// missions: a live ISS ground track plus lunar trajectory diagrams for the
// Artemis missions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/artemisops/orbitdeck/internal/bus"
	"github.com/artemisops/orbitdeck/internal/feeds"
	"github.com/artemisops/orbitdeck/internal/logging"
	"github.com/artemisops/orbitdeck/internal/missions"
	"github.com/artemisops/orbitdeck/internal/orbitmap"
	"github.com/artemisops/orbitdeck/internal/ui"
)

const (
	defaultRefresh = 5 * time.Second
	minRefresh     = 1 * time.Second
	maxRefresh     = 5 * time.Minute

	headlessWidth  = 100
	headlessHeight = 32
)

// CLI flags for headless mode
var (
	renderMode    bool
	watchInterval time.Duration
	listMode      bool
)

func main() {
	mission := flag.String("mission", "", "Mission to open first (e.g., iss, artemis-ii)")
	refresh := flag.Duration("refresh", defaultRefresh, "Position refresh interval (e.g., 5s, 1m)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&renderMode, "render", false, "Render one frame to stdout instead of the TUI")
	flag.DurationVar(&watchInterval, "watch", 0, "With -render, repeat at interval (e.g., 30s)")
	flag.BoolVar(&listMode, "list", false, "List supported mission types and exit")
	flag.Parse()

	if *refresh < minRefresh {
		*refresh = minRefresh
	} else if *refresh > maxRefresh {
		*refresh = maxRefresh
	}

	logger := logging.New(logging.ParseLevel(*logLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if listMode {
		printSupported()
		return
	}

	events := bus.New()
	feedClient := feeds.NewClient()
	router := orbitmap.NewRouter(events, logger, feedClient)

	opts := orbitmap.DefaultOptions()
	opts.UpdateInterval = *refresh

	if renderMode {
		runHeadless(ctx, router, *mission, opts)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "stdout is not a terminal; use -render for one-shot output")
		os.Exit(1)
	}

	list := missionList(ctx, *mission, logger)
	model := ui.New(router, list, opts)

	p := tea.NewProgram(model, tea.WithAltScreen())

	// TUI redraws come from the map event bus, not a fetch loop here; the
	// renderers own their tracking timers.
	unwire := ui.WireBus(events, p.Send)
	defer unwire()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// missionList builds the cycle order for the dashboard: the live catalog
// when reachable, the built-in fallback otherwise, with the ISS tracker
// always present.
func missionList(ctx context.Context, first string, logger *logging.Logger) []missions.Mission {
	iss := missions.Mission{
		Slug: "iss", Name: "ISS Expedition", Type: "iss",
		Spacecraft: "ISS",
	}

	catalogCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	catalog := missions.NewClient()
	upcoming, err := catalog.FetchUpcoming(catalogCtx)
	if err != nil {
		logger.Warn("mission catalog unavailable: %v", err)
		upcoming = []missions.Mission{missions.FallbackMission()}
	}
	if len(upcoming) == 0 {
		upcoming = []missions.Mission{missions.FallbackMission()}
	}

	list := append([]missions.Mission{iss}, upcoming...)

	// Rotate the requested mission to the front.
	if first != "" {
		slug := missions.Slugify(first)
		for i, m := range list {
			if m.Slug == slug || orbitmap.NormalizeMissionType(m.Type) == orbitmap.NormalizeMissionType(first) {
				list[0], list[i] = list[i], list[0]
				break
			}
		}
	}
	return list
}

func printSupported() {
	types := orbitmap.SupportedMissions()
	sort.Strings(types)
	fmt.Println("Supported mission types:")
	for _, t := range types {
		fmt.Printf("  %-12s %s\n", t, orbitmap.CategoryOf(t))
	}
	fmt.Println("\nUnlisted types fall back to the earth-orbit tracker.")
}

// runHeadless renders frames to stdout without starting the TUI.
func runHeadless(ctx context.Context, router *orbitmap.Router, mission string, opts orbitmap.Options) {
	if mission == "" {
		mission = "iss"
	}

	w, h := headlessWidth, headlessHeight
	if tw, th, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw >= 40 && th >= 12 {
		w, h = tw, th-1
	}

	surfaces := orbitmap.NewSurfaces()
	surfaces.Register(&orbitmap.Container{ID: "headless", Width: w, Height: h})

	d := orbitmap.MissionDescriptor{Type: mission, ID: missions.Slugify(mission)}
	m, err := router.CreateAndInit(surfaces, "headless", d, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer m.Destroy()

	// One-shot output needs no timer.
	m.StopTracking()

	outputOnce := func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := m.FetchPosition(fetchCtx); err != nil {
			return err
		}
		fmt.Println(m.Render())
		return nil
	}

	if watchInterval == 0 {
		if err := outputOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := outputOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Println()
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}
