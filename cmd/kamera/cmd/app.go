package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/MeKo-Tech/kamera/internal/catalog"
	"github.com/MeKo-Tech/kamera/internal/config"
	"github.com/MeKo-Tech/kamera/internal/engine"
	"github.com/MeKo-Tech/kamera/internal/resolver"
	"github.com/sourcegraph/conc"
	"gopkg.in/yaml.v3"
)

const (
	outputFormatJSON = "json"
	outputFormatYAML = "yaml"
)

// engineFactory builds the engine constructor for the pool. Tests swap it
// for an in-memory engine.
var engineFactory = func(cfg *config.Config) engine.Factory {
	return engine.TesseractFactory(cfg.ToTesseractConfig())
}

// openStore loads the catalog directory and applies the configured aliases.
func openStore(cfg *config.Config) (*catalog.Store, error) {
	data, err := catalog.LoadDir(cfg.Catalog.Dir)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	store, err := catalog.NewStore(data, catalog.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	if err := applyAliases(store, cfg.Catalog.Aliases); err != nil {
		return nil, err
	}
	return store, nil
}

// startWatch keeps store in sync with the catalog directory until ctx is done
// or the returned stop func is called, but only when catalog.watch is set.
// stop waits for the watcher to exit.
func startWatch(ctx context.Context, cfg *config.Config, store *catalog.Store) (stop func()) {
	if !cfg.Catalog.Watch {
		return func() {}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	w := catalog.NewWatcher(cfg.Catalog.Dir, store, slog.Default())
	w.SetDebounce(cfg.Catalog.WatchDebounce)

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := w.Run(ctx); err != nil {
			slog.Warn("catalog watcher stopped; lookups keep the loaded catalog", "error", err)
		}
	})
	return func() {
		cancel()
		wg.Wait()
	}
}

// emptyStore serves lookups that only use the fixed vocabularies.
func emptyStore() *catalog.Store {
	store, err := catalog.NewStore(catalog.Data{}, catalog.WithLogger(slog.Default()))
	if err != nil {
		// an empty catalog has nothing to reject
		panic(err)
	}
	return store
}

func applyAliases(store *catalog.Store, aliases map[string]string) error {
	for _, key := range slices.Sorted(maps.Keys(aliases)) {
		if err := store.Rename(key, aliases[key]); err != nil {
			return fmt.Errorf("alias %s=%s: %w", key, aliases[key], err)
		}
	}
	return nil
}

type lookupFunc = func(*resolver.Resolver, string, ...resolver.LookupOption) resolver.Result

// domain binds a resolver entry point to a CLI name.
type domain struct {
	needsCatalog bool
	lookup       lookupFunc
}

var domains = map[string]domain{
	"stat":      {lookup: (*resolver.Resolver).Stat},
	"element":   {lookup: (*resolver.Resolver).Element},
	"slot":      {lookup: gearSlot},
	"weapon":    {needsCatalog: true, lookup: (*resolver.Resolver).Weapon},
	"set":       {needsCatalog: true, lookup: (*resolver.Resolver).SetName},
	"piece":     {needsCatalog: true, lookup: (*resolver.Resolver).SetFromPieceName},
	"character": {needsCatalog: true, lookup: (*resolver.Resolver).Character},
	"devitem":   {needsCatalog: true, lookup: (*resolver.Resolver).DevelopmentItem},
	"material":  {needsCatalog: true, lookup: (*resolver.Resolver).Material},
}

func gearSlot(r *resolver.Resolver, s string, _ ...resolver.LookupOption) resolver.Result {
	return r.GearSlot(s)
}

func domainNames() []string {
	return slices.Sorted(maps.Keys(domains))
}

// newLookup prepares the resolver entry point for name. With catalog.watch
// set, catalog-backed lookups follow file edits until ctx is done; release
// stops the watcher and must be called once the lookup is no longer needed.
func newLookup(ctx context.Context, cfg *config.Config, name string) (lookup func(string) resolver.Result, release func(), err error) {
	d, ok := domains[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown domain %q (must be one of: %v)", name, domainNames())
	}

	store := emptyStore()
	release = func() {}
	if d.needsCatalog {
		if store, err = openStore(cfg); err != nil {
			return nil, nil, err
		}
		release = startWatch(ctx, cfg, store)
	}

	r := resolver.New(store,
		resolver.WithDefaultThreshold(cfg.Resolver.MinConfidence),
		resolver.WithLogger(slog.Default()))
	return func(s string) resolver.Result { return d.lookup(r, s) }, release, nil
}

// resultRecord is the serialized form of a resolver.Result.
type resultRecord struct {
	Input  string  `json:"input" yaml:"input"`
	Value  string  `json:"value" yaml:"value"`
	Key    string  `json:"key,omitempty" yaml:"key,omitempty"`
	Status string  `json:"status" yaml:"status"`
	Method string  `json:"method" yaml:"method"`
	Score  float64 `json:"score" yaml:"score"`
}

func newResultRecord(r resolver.Result) resultRecord {
	return resultRecord{
		Input:  r.Input,
		Value:  r.OrInput(),
		Key:    r.Key,
		Status: r.Status.String(),
		Method: r.Method.String(),
		Score:  r.Score,
	}
}

func (r resultRecord) String() string {
	if r.Status != resolver.StatusResolved.String() {
		return fmt.Sprintf("%s\t%s\t(%s)", r.Input, r.Value, r.Status)
	}
	return fmt.Sprintf("%s\t%s\t(%s %.1f)", r.Input, r.Value, r.Method, r.Score)
}

// writeOutput encodes v as JSON or YAML, or calls text for the text format.
func writeOutput(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case outputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}
