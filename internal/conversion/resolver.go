// Package conversion resolves unit conversion factors from a set of directed
// conversion rules, optionally scoped to a single ingredient.
package conversion

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pos-inventory/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MaxPathDepth is the longest chain of rules a conversion may follow.
const MaxPathDepth = 10

// RuleSource supplies the current conversion rules.
type RuleSource interface {
	// ListRules returns every stored conversion rule.
	ListRules(ctx context.Context) ([]model.ConversionRule, error)
}

// Resolver computes conversion factors. It caches the rule set and the
// per-ingredient graphs built from it until Invalidate is called.
// A Resolver is safe for concurrent use.
type Resolver struct {
	source RuleSource
	logger zerolog.Logger

	mu      sync.RWMutex
	rules   []model.ConversionRule
	loaded  bool
	version uint64
	graphs  map[graphKey]*graph
}

// NewResolver creates a resolver backed by source.
func NewResolver(source RuleSource, logger zerolog.Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: logger.With().Str("component", "conversion-resolver").Logger(),
		graphs: make(map[graphKey]*graph),
	}
}

// Resolve returns the factor that converts a quantity in fromUnit into
// toUnit for the given ingredient. A nil ingredientID only uses generic rules.
func (r *Resolver) Resolve(ctx context.Context, fromUnit, toUnit string, ingredientID *int64) (decimal.Decimal, error) {
	if fromUnit == toUnit {
		return decimal.NewFromInt(1), nil
	}

	g, err := r.graphFor(ctx, ingredientID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	factor, ok := g.shortestPath(fromUnit, toUnit, MaxPathDepth)
	if !ok {
		r.logger.Debug().
			Str("from_unit", fromUnit).
			Str("to_unit", toUnit).
			Interface("ingredient_id", ingredientID).
			Msg("no conversion path")
		return decimal.Decimal{}, &model.NoConversionPathError{FromUnit: fromUnit, ToUnit: toUnit}
	}

	return factor, nil
}

// Invalidate drops the cached rules so the next resolution reloads them.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = nil
	r.loaded = false
	r.graphs = make(map[graphKey]*graph)
	r.version++

	r.logger.Debug().Uint64("version", r.version).Msg("conversion cache invalidated")
}

func (r *Resolver) graphFor(ctx context.Context, ingredientID *int64) (*graph, error) {
	key := keyFor(ingredientID)

	r.mu.RLock()
	if g, ok := r.graphs[key]; ok {
		r.mu.RUnlock()
		return g, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have built it while we waited for the lock.
	if g, ok := r.graphs[key]; ok {
		return g, nil
	}

	if !r.loaded {
		rules, err := r.source.ListRules(ctx)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to load conversion rules")
			return nil, fmt.Errorf("failed to load conversion rules: %w", err)
		}
		r.rules = r.validRules(rules)
		r.loaded = true

		r.logger.Debug().
			Int("rule_count", len(r.rules)).
			Uint64("version", r.version).
			Msg("conversion rules loaded")
	}

	g := buildGraph(r.rules, ingredientID)
	r.graphs[key] = g
	return g, nil
}

func (r *Resolver) validRules(rules []model.ConversionRule) []model.ConversionRule {
	valid := make([]model.ConversionRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.Factor.IsPositive() || rule.FromUnit == "" || rule.ToUnit == "" {
			r.logger.Warn().
				Int64("rule_id", rule.ID).
				Str("from_unit", rule.FromUnit).
				Str("to_unit", rule.ToUnit).
				Str("factor", rule.Factor.String()).
				Msg("skipping invalid conversion rule")
			continue
		}
		valid = append(valid, rule)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].ID < valid[j].ID
	})
	return valid
}

type graphKey struct {
	ingredientID int64
	generic      bool
}

func keyFor(ingredientID *int64) graphKey {
	if ingredientID == nil {
		return graphKey{generic: true}
	}
	return graphKey{ingredientID: *ingredientID}
}
