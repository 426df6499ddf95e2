package server

import (
	"context"
	"time"

	"github.com/artemisops/orbitdeck/internal/feeds"
	"github.com/artemisops/orbitdeck/internal/logging"
	"github.com/artemisops/orbitdeck/internal/missions"
	"github.com/artemisops/orbitdeck/internal/state"
	"github.com/artemisops/orbitdeck/internal/store"
)

// CrewRefreshInterval spaces out crew roster polls; the roster changes on
// the order of weeks.
const CrewRefreshInterval = 30 * time.Minute

// Poller drives the periodic feed fetches for the daemon, updating shared
// state, persisting snapshots, and broadcasting to websocket clients.
type Poller struct {
	feeds   *feeds.Client
	catalog *missions.Client
	state   *state.Manager
	store   *store.Store
	hub     *Hub
	logger  *logging.Logger

	interval time.Duration
	craft    string
}

// NewPoller creates a poller. A nil store disables persistence.
func NewPoller(fc *feeds.Client, mc *missions.Client, st *state.Manager, db *store.Store, hub *Hub, logger *logging.Logger, interval time.Duration, craft string) *Poller {
	if fc == nil {
		fc = feeds.NewClient()
	}
	if mc == nil {
		mc = missions.NewClient()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if craft == "" {
		craft = "ISS"
	}
	return &Poller{
		feeds:    fc,
		catalog:  mc,
		state:    st,
		store:    db,
		hub:      hub,
		logger:   logger.Named("poller"),
		interval: interval,
		craft:    craft,
	}
}

// Run polls until the context is cancelled. The first position and crew
// fetches happen immediately rather than waiting one interval.
func (p *Poller) Run(ctx context.Context) {
	p.syncCatalog(ctx)
	p.pollCrew(ctx)
	p.pollPosition(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	crewTicker := time.NewTicker(CrewRefreshInterval)
	defer crewTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollPosition(ctx)
		case <-crewTicker.C:
			p.pollCrew(ctx)
		}
	}
}

// syncCatalog refreshes the mission catalog once at startup. On failure the
// persisted catalog (or built-in fallback) keeps serving.
func (p *Poller) syncCatalog(ctx context.Context) {
	list, err := p.catalog.FetchUpcoming(ctx)
	if err != nil {
		p.logger.Warn("mission catalog sync failed: %v", err)
		p.state.SetMission(p.cachedMission())
		return
	}

	if p.store != nil {
		if err := p.store.UpsertMissions(list); err != nil {
			p.logger.Error("persist mission catalog: %v", err)
		}
	}
	if len(list) > 0 {
		p.state.SetMission(list[0])
	} else {
		p.state.SetMission(missions.FallbackMission())
	}
}

// cachedMission returns the persisted mission, or the built-in fallback.
func (p *Poller) cachedMission() missions.Mission {
	if p.store != nil {
		if all, err := p.store.Missions(); err == nil && len(all) > 0 {
			return all[0]
		}
	}
	return missions.FallbackMission()
}

func (p *Poller) pollPosition(ctx context.Context) {
	start := time.Now()
	pos, err := p.feeds.FetchPosition(ctx)
	dur := time.Since(start)

	p.state.UpdatePosition(pos, dur, err)

	if err != nil {
		p.logger.Warn("position poll failed: %v", err)
		if p.store != nil {
			if lerr := p.store.LogSync(store.KindPosition, false, err.Error()); lerr != nil {
				p.logger.Debug("log sync: %v", lerr)
			}
		}
		return
	}

	if p.store != nil {
		if err := p.store.PutSnapshot(store.KindPosition, pos); err != nil {
			p.logger.Error("persist position: %v", err)
		}
		if err := p.store.LogSync(store.KindPosition, true, pos.Source); err != nil {
			p.logger.Debug("log sync: %v", err)
		}
	}

	if p.hub != nil {
		p.hub.Broadcast(Message{Type: "position", Data: pos})
	}

	p.resolveLocation(ctx, pos)
}

func (p *Poller) resolveLocation(ctx context.Context, pos feeds.Position) {
	loc, err := p.feeds.ReverseGeocode(ctx, pos.Latitude, pos.Longitude)
	if err != nil {
		loc = feeds.Location{Place: feeds.CoordinateLabel(pos.Latitude, pos.Longitude)}
	}
	p.state.SetLocation(loc)

	if p.store != nil && err == nil {
		if serr := p.store.PutSnapshot(store.KindLocation, loc); serr != nil {
			p.logger.Debug("persist location: %v", serr)
		}
	}
}

func (p *Poller) pollCrew(ctx context.Context) {
	crew, err := p.feeds.FetchCrew(ctx, p.craft)
	if err != nil {
		p.logger.Warn("crew poll failed: %v", err)
		return
	}
	p.state.SetCrew(crew)

	if p.store != nil {
		if err := p.store.PutSnapshot(store.KindCrew, crew); err != nil {
			p.logger.Debug("persist crew: %v", err)
		}
	}
	if p.hub != nil {
		p.hub.Broadcast(Message{Type: "crew", Data: crew})
	}
}
