package collector

import "sync"

// Registry manages collector plugins
type Registry struct {
	mu      sync.RWMutex
	funds   map[string]FundCollector
	markets map[string]MarketCollector
}

// NewRegistry creates a new collector registry
func NewRegistry() *Registry {
	return &Registry{
		funds:   make(map[string]FundCollector),
		markets: make(map[string]MarketCollector),
	}
}

// RegisterFund adds a fund collector to the registry
func (r *Registry) RegisterFund(c FundCollector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funds[c.Name()] = c
}

// RegisterMarket adds a market collector to the registry
func (r *Registry) RegisterMarket(c MarketCollector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markets[c.Name()] = c
}

// Fund retrieves a fund collector by name
func (r *Registry) Fund(name string) (FundCollector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.funds[name]
	return c, ok
}

// Market retrieves a market collector by name
func (r *Registry) Market(name string) (MarketCollector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.markets[name]
	return c, ok
}

// FundCollectors returns all registered fund collectors
func (r *Registry) FundCollectors() []FundCollector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]FundCollector, 0, len(r.funds))
	for _, c := range r.funds {
		result = append(result, c)
	}
	return result
}

// MarketCollectors returns all registered market collectors
func (r *Registry) MarketCollectors() []MarketCollector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]MarketCollector, 0, len(r.markets))
	for _, c := range r.markets {
		result = append(result, c)
	}
	return result
}
