// Package taxonomy maps digest items onto the closed set of normalized
// category tags and extracts compliance labels from their flags.
//
// The label and token tables live in taxonomy.yaml, embedded at build time.
// A deployment can extend them with an override file passed to Load.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/juansegiraldo/KeplerNewsletter/internal/dedupe"
	"github.com/juansegiraldo/KeplerNewsletter/internal/models"
)

// Uncategorized is the tag for items nothing else matched.
const Uncategorized = "uncategorized"

//go:embed taxonomy.yaml
var defaultYAML []byte

// File is the on-disk shape of a taxonomy table.
type File struct {
	Canonical []string          `yaml:"canonical"`
	Folded    map[string]string `yaml:"folded"`
	Localized map[string]string `yaml:"localized"`
	FlagRules []FlagRule        `yaml:"flag_rules"`
}

// FlagRule infers a category from compliance flags.
type FlagRule struct {
	Category string   `yaml:"category"`
	Keys     []string `yaml:"keys"`
	Tokens   []string `yaml:"tokens"`
}

// Taxonomy is a validated, lookup-ready table.
type Taxonomy struct {
	canonical map[string]struct{}
	tags      []string
	folded    map[string]string
	localized map[string]string
	rules     []FlagRule
}

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
)

// Default returns the embedded taxonomy.
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		f, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded taxonomy: %v", err))
		}
		tax, err := New(f)
		if err != nil {
			panic(fmt.Sprintf("embedded taxonomy: %v", err))
		}
		defaultTax = tax
	})
	return defaultTax
}

// Parse decodes a YAML taxonomy table.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	return &f, nil
}

// Load returns the embedded taxonomy extended with the table at path. An
// empty path yields the embedded taxonomy unchanged.
func Load(path string) (*Taxonomy, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base, err := Parse(defaultYAML)
	if err != nil {
		return nil, err
	}
	tax, err := New(Extend(base, override))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tax, nil
}

// Extend layers override on top of base. Canonical tags and flag rules are
// appended (rules for an existing category gain the new keys and tokens);
// folded and localized entries replace those with the same label.
func Extend(base, override *File) *File {
	out := &File{
		Canonical: dedupe.AppendUnique(base.Canonical, override.Canonical...),
		Folded:    make(map[string]string, len(base.Folded)+len(override.Folded)),
		Localized: make(map[string]string, len(base.Localized)+len(override.Localized)),
	}
	for k, v := range base.Folded {
		out.Folded[k] = v
	}
	for k, v := range override.Folded {
		out.Folded[k] = v
	}
	for k, v := range base.Localized {
		out.Localized[k] = v
	}
	for k, v := range override.Localized {
		out.Localized[k] = v
	}

	out.FlagRules = make([]FlagRule, 0, len(base.FlagRules)+len(override.FlagRules))
	for _, r := range base.FlagRules {
		out.FlagRules = append(out.FlagRules, FlagRule{
			Category: r.Category,
			Keys:     append([]string(nil), r.Keys...),
			Tokens:   append([]string(nil), r.Tokens...),
		})
	}
	for _, r := range override.FlagRules {
		merged := false
		for i := range out.FlagRules {
			if out.FlagRules[i].Category == r.Category {
				out.FlagRules[i].Keys = dedupe.AppendUnique(out.FlagRules[i].Keys, r.Keys...)
				out.FlagRules[i].Tokens = dedupe.AppendUnique(out.FlagRules[i].Tokens, r.Tokens...)
				merged = true
				break
			}
		}
		if !merged {
			out.FlagRules = append(out.FlagRules, r)
		}
	}
	return out
}

// New validates f and builds the lookup tables. Every mapping target must be
// a canonical tag so the output taxonomy stays closed.
func New(f *File) (*Taxonomy, error) {
	t := &Taxonomy{
		canonical: make(map[string]struct{}, len(f.Canonical)+1),
		folded:    make(map[string]string, len(f.Folded)),
		localized: make(map[string]string, len(f.Localized)),
	}
	for _, tag := range f.Canonical {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return nil, fmt.Errorf("empty canonical tag")
		}
		if _, dup := t.canonical[tag]; !dup {
			t.canonical[tag] = struct{}{}
			t.tags = append(t.tags, tag)
		}
	}
	t.canonical[Uncategorized] = struct{}{}

	for label, tag := range f.Folded {
		if !t.IsCanonical(tag) {
			return nil, fmt.Errorf("folded label %q targets unknown tag %q", label, tag)
		}
		t.folded[strings.TrimSpace(label)] = tag
	}
	for label, tag := range f.Localized {
		if !t.IsCanonical(tag) {
			return nil, fmt.Errorf("localized label %q targets unknown tag %q", label, tag)
		}
		key := Fold(label)
		if key == "" {
			return nil, fmt.Errorf("empty localized label for tag %q", tag)
		}
		t.localized[key] = tag
	}
	for _, r := range f.FlagRules {
		if !t.IsCanonical(r.Category) {
			return nil, fmt.Errorf("flag rule targets unknown tag %q", r.Category)
		}
		rule := FlagRule{Category: r.Category}
		for _, k := range r.Keys {
			if k = Fold(k); k != "" {
				rule.Keys = append(rule.Keys, k)
			}
		}
		for _, tok := range r.Tokens {
			if tok = Fold(tok); tok != "" {
				rule.Tokens = append(rule.Tokens, tok)
			}
		}
		t.rules = append(t.rules, rule)
	}
	return t, nil
}

// IsCanonical reports whether tag belongs to the closed output set.
func (t *Taxonomy) IsCanonical(tag string) bool {
	_, ok := t.canonical[tag]
	return ok
}

// Tags returns the canonical tags in declaration order, then Uncategorized.
func (t *Taxonomy) Tags() []string {
	return append(append([]string(nil), t.tags...), Uncategorized)
}

// NormalizeCategory picks the item's tag. An explicit primary_category wins
// (canonical first, then localized); compliance flags are a fallback.
func (t *Taxonomy) NormalizeCategory(fields map[string]any) string {
	var primary string
	if classification, ok := fields["classification"].(map[string]any); ok {
		primary = models.Text(classification["primary_category"])
	}

	if primary != "" {
		if tag, ok := t.folded[primary]; ok {
			return tag
		}
		if _, ok := t.canonical[primary]; ok && primary != Uncategorized {
			return primary
		}
		if tag, ok := t.localized[Fold(primary)]; ok {
			return tag
		}
	}

	if tag, ok := t.categoryFromFlags(fields["compliance_flags"]); ok {
		return tag
	}
	return Uncategorized
}

func (t *Taxonomy) categoryFromFlags(flags any) (string, bool) {
	switch f := flags.(type) {
	case map[string]any:
		truthy := make(map[string]struct{}, len(f))
		for k, v := range f {
			if models.Truthy(v) {
				truthy[Fold(k)] = struct{}{}
			}
		}
		for _, r := range t.rules {
			for _, k := range r.Keys {
				if _, ok := truthy[k]; ok {
					return r.Category, true
				}
			}
		}
	case []any, string:
		entries := flagStrings(f)
		for _, r := range t.rules {
			for _, e := range entries {
				folded := Fold(e)
				for _, tok := range r.Tokens {
					if strings.Contains(folded, tok) {
						return r.Category, true
					}
				}
			}
		}
	}
	return "", false
}

// ComplianceLabels turns object-shaped or list-shaped compliance flags into
// a sorted, de-duplicated label list. Object keys are kept when their value is
// truthy; list entries are kept as written. A single string counts as a
// one-element list. Anything else yields an empty list.
func ComplianceLabels(flags any) []string {
	var labels []string
	switch f := flags.(type) {
	case map[string]any:
		for k, v := range f {
			if models.Truthy(v) {
				labels = append(labels, k)
			}
		}
	case []any, string:
		labels = flagStrings(f)
	}
	return SortedUnion(labels)
}

// SortedUnion merges label lists into one sorted list without duplicates.
func SortedUnion(lists ...[]string) []string {
	set := dedupe.NewOrderedSet()
	for _, l := range lists {
		for _, s := range l {
			if s != "" {
				set.Add(s)
			}
		}
	}
	out := set.Values()
	if out == nil {
		out = []string{}
	}
	sort.Strings(out)
	return out
}

func flagStrings(flags any) []string {
	switch f := flags.(type) {
	case string:
		if s := strings.TrimSpace(f); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(f))
		for _, e := range f {
			if s := models.Text(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
