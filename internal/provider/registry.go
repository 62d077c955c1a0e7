package provider

// Registry is an ordered list of strategies. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	strategies []Strategy
}

// NewRegistry creates a registry. extra strategies are registered ahead of
// the built-ins, so a configured provider overrides a built-in one whose
// host it also matches.
func NewRegistry(extra ...Strategy) *Registry {
	builtins := Builtins()
	strategies := make([]Strategy, 0, len(extra)+len(builtins))
	strategies = append(strategies, extra...)
	strategies = append(strategies, builtins...)
	return &Registry{strategies: strategies}
}

// Select returns the first strategy whose host substring occurs in host,
// or the default strategy.
func (r *Registry) Select(host string) Strategy {
	for _, s := range r.strategies {
		if s.Matches(host) {
			return s
		}
	}
	return Default()
}

// Lookup returns the strategy registered under name.
func (r *Registry) Lookup(name string) (Strategy, bool) {
	for _, s := range r.strategies {
		if s.Name == name {
			return s, true
		}
	}
	return Strategy{}, false
}

// Strategies returns a copy of the registered strategies in match order.
func (r *Registry) Strategies() []Strategy {
	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}
