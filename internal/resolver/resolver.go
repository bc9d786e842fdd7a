// Package resolver maps noisy recognized text onto canonical catalog values.
//
// Every lookup runs against the catalog snapshot current at call time and
// returns a Result. Callers that want the legacy string contract use
// Result.OrInput.
package resolver

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/MeKo-Tech/kamera/internal/catalog"
	"github.com/MeKo-Tech/kamera/internal/metrics"
	"github.com/MeKo-Tech/kamera/internal/similarity"
)

// Domain names used in logs and metrics.
const (
	DomainStat      = "stat"
	DomainElement   = "element"
	DomainWeapon    = "weapon"
	DomainSet       = "artifact_set"
	DomainPiece     = "artifact_piece"
	DomainCharacter = "character"
	DomainDevItem   = "development_item"
	DomainMaterial  = "material"
	DomainSlot      = "gear_slot"
)

// SnapshotSource provides the catalog version to resolve against.
type SnapshotSource interface {
	Snapshot() *catalog.Snapshot
}

// Resolver resolves text per catalog domain.
type Resolver struct {
	source    SnapshotSource
	threshold float64
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDefaultThreshold sets the threshold used when a call does not pass one.
func WithDefaultThreshold(t float64) Option {
	return func(r *Resolver) { r.threshold = t }
}

// WithLogger sets the logger for match diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver reading from source.
func New(source SnapshotSource, opts ...Option) *Resolver {
	r := &Resolver{source: source, threshold: DefaultThreshold, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Threshold returns the default minimum confidence.
func (r *Resolver) Threshold() float64 { return r.threshold }

// LookupOption adjusts a single lookup.
type LookupOption func(*lookup)

type lookup struct {
	threshold float64
}

// WithThreshold overrides the minimum confidence for one call.
func WithThreshold(t float64) LookupOption {
	return func(l *lookup) { l.threshold = t }
}

func (r *Resolver) options(opts []LookupOption) lookup {
	l := lookup{threshold: r.threshold}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// Stat resolves a stat label such as "CRIT Rate" to its code.
func (r *Resolver) Stat(input string, opts ...LookupOption) Result {
	l := r.options(opts)
	return r.finish(DomainStat, Match(input, r.source.Snapshot().Stats(), l.threshold))
}

// Element resolves an element name.
func (r *Resolver) Element(input string, opts ...LookupOption) Result {
	l := r.options(opts)
	return r.finish(DomainElement, Match(input, r.source.Snapshot().Elements(), l.threshold))
}

// Weapon resolves a weapon name.
func (r *Resolver) Weapon(input string, opts ...LookupOption) Result {
	l := r.options(opts)
	return r.finish(DomainWeapon, Match(input, r.source.Snapshot().Weapons(), l.threshold))
}

// SetName resolves an artifact set name.
func (r *Resolver) SetName(input string, opts ...LookupOption) Result {
	l := r.options(opts)
	return r.finish(DomainSet, Match(input, r.source.Snapshot().ArtifactSets(), l.threshold))
}

// Character resolves a character name. Characters with a custom name are
// matched by that name instead of their catalog key.
func (r *Resolver) Character(input string, opts ...LookupOption) Result {
	l := r.options(opts)
	return r.finish(DomainCharacter, Match(input, r.source.Snapshot().CharacterNames(), l.threshold))
}

// Material resolves a material name.
func (r *Resolver) Material(input string, opts ...LookupOption) Result {
	l := r.options(opts)
	return r.finish(DomainMaterial, Match(input, r.source.Snapshot().Materials(), l.threshold))
}

// DevelopmentItem resolves against development items first and falls back to
// materials when that finds nothing.
func (r *Resolver) DevelopmentItem(input string, opts ...LookupOption) Result {
	l := r.options(opts)
	snap := r.source.Snapshot()
	res := Match(input, snap.DevItems(), l.threshold)
	if res.Status == StatusNoMatch {
		return r.finish(DomainMaterial, Match(input, snap.Materials(), l.threshold))
	}
	return r.finish(DomainDevItem, res)
}

// SetFromPieceName resolves the set an artifact belongs to from the piece
// name. An exact piece match wins outright; otherwise the best scoring piece
// above the threshold decides.
func (r *Resolver) SetFromPieceName(input string, opts ...LookupOption) Result {
	l := r.options(opts)
	res := Result{Input: input}
	key := catalog.Normalize(input)
	if key == "" {
		res.Status = StatusInvalid
		return r.finish(DomainPiece, res)
	}

	keyLen := similarity.RuneLen(key)
	var best catalog.ArtifactSet
	bestScore := 0.0
	for _, set := range r.source.Snapshot().ArtifactSets().All() {
		for _, piece := range set.Pieces {
			if piece.Key == key {
				return r.finish(DomainPiece, resolved(res, set.Key, set.Name, MethodExact, 100))
			}
			res.Compared++
			maxLen := max(keyLen, similarity.RuneLen(piece.Key))
			budget := similarity.EditBudget(maxLen, max(l.threshold, bestScore))
			d, ok := similarity.BoundedDistance(key, piece.Key, budget)
			if !ok {
				continue
			}
			if s := similarity.FromDistance(d, maxLen); s > l.threshold && s > bestScore {
				best, bestScore = set, s
			}
		}
	}
	if best.Key == "" {
		res.Status = StatusNoMatch
		return r.finish(DomainPiece, res)
	}
	return r.finish(DomainPiece, resolved(res, best.Key, best.Name, MethodPiece, bestScore))
}

// GearSlot returns the first gear slot named within input.
func (r *Resolver) GearSlot(input string) Result {
	res := Result{Input: input}
	key := catalog.Normalize(input)
	if key == "" {
		res.Status = StatusInvalid
		return r.finish(DomainSlot, res)
	}
	for _, slot := range catalog.GearSlots() {
		if strings.Contains(key, slot) {
			return r.finish(DomainSlot, resolved(res, slot, slot, MethodSubstring, similarity.Similarity(key, slot)))
		}
	}
	res.Status = StatusNoMatch
	return r.finish(DomainSlot, res)
}

func (r *Resolver) finish(domain string, res Result) Result {
	metrics.Resolved(domain, res.Method.String(), res.Status.String())
	if res.Method == MethodFuzzy && domain != DomainStat {
		r.logger.Debug("closest catalog match",
			"domain", domain,
			"input", res.Input,
			"key", res.Key,
			"score", res.Score)
	}
	return res
}

// IsValidStat reports whether s is a stat code.
func (r *Resolver) IsValidStat(s string) bool {
	return r.source.Snapshot().Stats().HasValue(s)
}

// IsValidElement reports whether s is an element name or key.
func (r *Resolver) IsValidElement(s string) bool {
	t := r.source.Snapshot().Elements()
	return t.HasValue(s) || t.HasKey(catalog.Normalize(s))
}

// IsValidWeapon reports whether s is a weapon name or key.
func (r *Resolver) IsValidWeapon(s string) bool {
	t := r.source.Snapshot().Weapons()
	return t.HasValue(s) || t.HasKey(catalog.Normalize(s))
}

// IsValidSetName reports whether s is an artifact set name or key.
func (r *Resolver) IsValidSetName(s string) bool {
	t := r.source.Snapshot().ArtifactSets()
	return t.HasKey(s) || t.HasValue(s) || t.HasKey(catalog.Normalize(s))
}

// IsValidMaterial reports whether s is a material name or key.
func (r *Resolver) IsValidMaterial(s string) bool {
	t := r.source.Snapshot().Materials()
	return t.HasValue(s) || t.HasKey(catalog.Normalize(s))
}

// IsEnhancementMaterial reports whether s names an enhancement material or
// any other known material.
func (r *Resolver) IsEnhancementMaterial(s string) bool {
	return slices.Contains(catalog.EnhancementMaterials(), catalog.Normalize(s)) || r.IsValidMaterial(s)
}

// IsValidCharacter reports whether s names a character. Any text mentioning
// the Traveler is accepted since its label carries the element; the Wanderer
// must be named exactly.
func (r *Resolver) IsValidCharacter(s string) bool {
	if strings.Contains(s, catalog.TravelerName) || s == catalog.WandererName {
		return true
	}
	snap := r.source.Snapshot()
	key := catalog.Normalize(s)
	return snap.Characters().HasKey(key) || snap.CharacterNames().HasKey(key)
}

// CharacterElements returns the elements of the character named s, looked
// up by catalog key first and then by custom name.
func (r *Resolver) CharacterElements(s string) ([]string, bool) {
	key := catalog.Normalize(s)
	if key == "" {
		return nil, false
	}
	snap := r.source.Snapshot()
	c, ok := snap.Characters().Lookup(key)
	if !ok {
		c, ok = snap.CharacterNames().Lookup(key)
	}
	if !ok {
		return nil, false
	}
	return slices.Clone(c.Elements), true
}

// CharacterMatchesElement reports whether the character named name has
// element among its elements.
func (r *Resolver) CharacterMatchesElement(name, element string) bool {
	elements, ok := r.CharacterElements(name)
	return ok && slices.Contains(elements, catalog.Normalize(element))
}

// IsValidSlot reports whether s is one of the gear slot names.
func (r *Resolver) IsValidSlot(s string) bool {
	return slices.Contains(catalog.GearSlots(), s)
}
