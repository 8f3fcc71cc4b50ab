package explainengine

import (
	"fmt"
	"sync"

	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/store"
)

// Deps bundles what any engine construction might need. Not every engine
// uses every field.
type Deps struct {
	Config *config.Explanation
	Store  *store.Store
}

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
)

// Register adds a named engine factory, following the builtinPlugins
// init()-registration idiom (plugins/base_plugin.go) rather than a
// switch statement enumerating transports by hand.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Build resolves the configured mode/transport to a registered factory and
// constructs the engine.
func Build(deps Deps) (Engine, error) {
	name := resolveName(deps.Config)
	registryMu.Lock()
	factory, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("explainengine: no engine registered for %q", name)
	}
	return factory(deps)
}

func resolveName(cfg *config.Explanation) string {
	if cfg == nil || cfg.Mode == config.EngineNone {
		return "none"
	}
	if cfg.Mode == config.EngineIntegrated {
		return "integrated"
	}
	return string(cfg.Transport)
}
