package orbitmap

import (
	"strings"

	"github.com/artemisops/orbitdeck/internal/bus"
	"github.com/artemisops/orbitdeck/internal/feeds"
	"github.com/artemisops/orbitdeck/internal/logging"
)

// Category groups mission types by the renderer class that serves them.
type Category string

const (
	CategoryEarthOrbit   Category = "earth-orbit"
	CategoryFreeReturn   Category = "free-return"
	CategoryLunarLanding Category = "lunar-landing"
)

// missionAliases folds alternate spellings of a mission type onto its
// canonical slug, applied after normalization.
var missionAliases = map[string]string{
	"iss-expedition":              "iss",
	"international-space-station": "iss",
	"expedition":                  "iss",
	"artemis-1":                   "artemis-i",
	"artemis-2":                   "artemis-ii",
	"artemis-3":                   "artemis-iii",
	"artemis-4":                   "artemis-iv",
	"dragon":                      "crew-dragon",
	"cst-100":                     "starliner",
	"cst-100-starliner":           "starliner",
}

// missionCategories is the first dispatch level: canonical mission type to
// renderer category.
var missionCategories = map[string]Category{
	"iss":         CategoryEarthOrbit,
	"crew-dragon": CategoryEarthOrbit,
	"starliner":   CategoryEarthOrbit,
	"artemis-i":   CategoryFreeReturn,
	"artemis-ii":  CategoryFreeReturn,
	"artemis-iii": CategoryLunarLanding,
	"artemis-iv":  CategoryLunarLanding,
}

// NormalizeMissionType canonicalizes a raw mission-type string: lowercase,
// whitespace and underscores collapsed to single hyphens, known aliases
// folded. Idempotent, so already-normalized input passes through unchanged.
func NormalizeMissionType(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '_' || r == '-'
	}), "-")
	if alias, ok := missionAliases[s]; ok {
		return alias
	}
	return s
}

// CategoryOf resolves a raw mission type to its renderer category. Unknown
// types land in the earth-orbit category so every mission gets some map.
func CategoryOf(raw string) Category {
	if cat, ok := missionCategories[NormalizeMissionType(raw)]; ok {
		return cat
	}
	return CategoryEarthOrbit
}

// IsSupported reports whether the mission type maps to a category
// explicitly rather than through the fallback.
func IsSupported(raw string) bool {
	_, ok := missionCategories[NormalizeMissionType(raw)]
	return ok
}

// SupportedMissions lists the canonical mission types with an explicit
// category mapping.
func SupportedMissions() []string {
	out := make([]string, 0, len(missionCategories))
	for t := range missionCategories {
		out = append(out, t)
	}
	return out
}

// Router builds the right renderer for a mission. Resolution runs in two
// levels, type to category and category to constructor, and never fails:
// anything unresolvable degrades to the base renderer with an error event.
type Router struct {
	events *bus.Bus
	logger *logging.Logger
	feeds  *feeds.Client

	constructors map[Category]func(Options) Map
}

// NewRouter creates a router with the standard three renderer classes
// registered.
func NewRouter(events *bus.Bus, logger *logging.Logger, client *feeds.Client) *Router {
	if logger == nil {
		logger = logging.Discard()
	}
	if client == nil {
		client = feeds.NewClient()
	}
	r := &Router{
		events: events,
		logger: logger.Named("router"),
		feeds:  client,
	}
	r.constructors = map[Category]func(Options) Map{
		CategoryEarthOrbit: func(o Options) Map {
			return NewLiveOrbitMap(o, events, logger, client, DefaultCraft)
		},
		CategoryFreeReturn: func(o Options) Map {
			return NewFreeReturnTrajectoryMap(o, events, logger)
		},
		CategoryLunarLanding: func(o Options) Map {
			return NewLunarLandingTrajectoryMap(o, events, logger)
		},
	}
	return r
}

// CreateMap builds a renderer for the mission descriptor and hands it the
// mission payload. It always returns a usable Map.
func (r *Router) CreateMap(d MissionDescriptor, opts Options) Map {
	m := r.createMap(descriptorType(d), opts)
	m.SetMissionData(d)
	return m
}

// descriptorType resolves the routable type string from a descriptor:
// type, then ID, then name.
func descriptorType(d MissionDescriptor) string {
	switch {
	case d.Type != "":
		return d.Type
	case d.ID != "":
		return d.ID
	default:
		return d.Name
	}
}

// CreateMapForType builds a renderer from a raw mission-type string. A
// category without a registered constructor degrades to the base renderer;
// that is a wiring bug, so it is logged and published as an error event.
func (r *Router) CreateMapForType(raw string) Map {
	return r.createMap(raw, DefaultOptions())
}

func (r *Router) createMap(raw string, opts Options) Map {
	cat := CategoryOf(raw)
	ctor, ok := r.constructors[cat]
	if !ok {
		r.logger.Error("no renderer registered for category %q (mission type %q)", cat, raw)
		if r.events != nil {
			r.events.Publish(bus.Event{
				Topic:   EventError,
				Mission: NormalizeMissionType(raw),
				Payload: ErrNoRenderer,
			})
		}
		return newBaseMap(opts, r.events, r.logger)
	}
	if !IsSupported(raw) {
		r.logger.Info("unknown mission type %q, using earth-orbit renderer", raw)
	}
	return ctor(opts)
}

// CreateAndInit builds a renderer for the descriptor and mounts it on the
// named container. A missing container is the one hard failure the router
// reports.
func (r *Router) CreateAndInit(surfaces *Surfaces, containerID string, d MissionDescriptor, opts Options) (Map, error) {
	c, ok := surfaces.Lookup(containerID)
	if !ok {
		return nil, ErrContainerNotFound
	}
	m := r.createMap(descriptorType(d), opts)
	m.SetMissionData(d)
	if err := m.Init(c); err != nil {
		return nil, err
	}
	return m, nil
}
