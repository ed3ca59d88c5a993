// Package catalog holds the static tables the resolver and path mapper work
// from: curated images, fallback categories, path patterns and keyword lists.
// A Catalog is immutable once built.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDocument []byte

// Document is the on-disk shape of a catalog.
type Document struct {
	Curated       []CuratedEntry `yaml:"curated"         json:"curated"`
	Fallback      FallbackTable  `yaml:"fallback"        json:"fallback"`
	Patterns      []PatternRule  `yaml:"patterns"        json:"patterns"`
	Keywords      Keywords       `yaml:"keywords"        json:"keywords"`
	Directories   DirectoryRules `yaml:"directories"     json:"directories"`
	Manufacturers []Manufacturer `yaml:"manufacturers"   json:"manufacturers"`
	SizeHintHosts []string       `yaml:"size_hint_hosts" json:"size_hint_hosts"`
}

// CuratedEntry is a hand-maintained known-good image.
type CuratedEntry struct {
	Key         string   `yaml:"key"         json:"key"`
	Description string   `yaml:"description" json:"description"`
	Primary     string   `yaml:"primary"     json:"primary"`
	Fallbacks   []string `yaml:"fallbacks"   json:"fallbacks"`
}

// URLs returns the primary followed by the fallbacks.
func (e CuratedEntry) URLs() []string {
	urls := make([]string, 0, 1+len(e.Fallbacks))
	if e.Primary != "" {
		urls = append(urls, e.Primary)
	}
	return append(urls, e.Fallbacks...)
}

// FallbackCategory is a coarse category with a fixed list of images.
type FallbackCategory struct {
	Name     string   `yaml:"name"     json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	URLs     []string `yaml:"urls"     json:"urls"`
}

// FallbackTable is the last resolution tier.
type FallbackTable struct {
	Default    string             `yaml:"default"    json:"default"`
	Categories []FallbackCategory `yaml:"categories" json:"categories"`
}

// PatternRule maps a broken path shape to a target directory and filename.
type PatternRule struct {
	Name      string `yaml:"name"      json:"name"`
	Regex     string `yaml:"regex"     json:"regex"`
	Directory string `yaml:"directory" json:"directory"`
	// Filename is a template using {1}, {2}, ... for capture groups. Empty keeps the basename.
	Filename string `yaml:"filename" json:"filename"`
	Priority int    `yaml:"priority" json:"priority"`

	re *regexp.Regexp
}

// Match reports whether p has the rule's shape and returns the reconstructed filename.
func (r PatternRule) Match(p string) (string, bool) {
	groups := r.re.FindStringSubmatch(p)
	if groups == nil {
		return "", false
	}
	if r.Filename == "" {
		return path.Base(p), true
	}

	name := r.Filename
	for i := len(groups) - 1; i >= 1; i-- {
		name = strings.ReplaceAll(name, "{"+strconv.Itoa(i)+"}", groups[i])
	}
	return name, true
}

// Keywords feed the similarity scorer.
type Keywords struct {
	Products []string `yaml:"products" json:"products"`
	Features []string `yaml:"features" json:"features"`
}

// DirectoryRule classifies a path into a content directory.
type DirectoryRule struct {
	Name     string   `yaml:"name"     json:"name"`
	Markers  []string `yaml:"markers"  json:"markers"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DirectoryRules are evaluated in order, then Default applies.
type DirectoryRules struct {
	Default string          `yaml:"default" json:"default"`
	Rules   []DirectoryRule `yaml:"rules"   json:"rules"`
}

// Manufacturer is an offline press-kit asset table.
type Manufacturer struct {
	Name     string              `yaml:"name"      json:"name"`
	Keywords []string            `yaml:"keywords"  json:"keywords"`
	PressKit string              `yaml:"press_kit" json:"press_kit"`
	Assets   []ManufacturerAsset `yaml:"assets"    json:"assets"`
}

// ManufacturerAsset is one press image, selected when Match occurs in the reference.
type ManufacturerAsset struct {
	Match string `yaml:"match" json:"match"`
	Path  string `yaml:"path"  json:"path"`
}

// Catalog is the compiled, read-only form of a Document.
type Catalog struct {
	doc       Document
	curated   map[string]int
	fallbacks map[string]int
	hosts     map[string]bool
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultDocument, ".yaml")
}

// Load reads a catalog file, or the embedded default when file is empty.
func Load(file string) (*Catalog, error) {
	if file == "" {
		return Default()
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	c, err := Parse(data, filepath.Ext(file))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", file, err)
	}
	return c, nil
}

// Parse decodes a catalog. ext selects the format: .json and .jsonc accept
// comments and trailing commas, anything else is read as YAML.
func Parse(data []byte, ext string) (*Catalog, error) {
	var doc Document

	switch strings.ToLower(ext) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode json catalog: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml catalog: %w", err)
		}
	}

	return New(doc)
}

// New validates and compiles a document. The document is deep-copied.
func New(doc Document) (*Catalog, error) {
	doc = cloneDocument(doc)

	c := &Catalog{
		doc:       doc,
		curated:   make(map[string]int, len(doc.Curated)),
		fallbacks: make(map[string]int, len(doc.Fallback.Categories)),
		hosts:     make(map[string]bool, len(doc.SizeHintHosts)),
	}

	for i, entry := range doc.Curated {
		key := strings.ToLower(strings.TrimSpace(entry.Key))
		if key == "" {
			return nil, fmt.Errorf("curated entry %d has no key", i)
		}
		if len(entry.URLs()) == 0 {
			return nil, fmt.Errorf("curated entry %s has no urls", key)
		}
		c.doc.Curated[i].Key = key
		c.curated[key] = i
	}

	for i, category := range doc.Fallback.Categories {
		name := strings.ToLower(category.Name)
		if name == "" {
			return nil, fmt.Errorf("fallback category %d has no name", i)
		}
		if len(category.URLs) == 0 {
			return nil, fmt.Errorf("fallback category %s has no urls", name)
		}
		c.doc.Fallback.Categories[i].Name = name
		c.fallbacks[name] = i
	}
	if def := doc.Fallback.Default; def != "" {
		if _, ok := c.fallbacks[strings.ToLower(def)]; !ok {
			return nil, fmt.Errorf("default fallback category %s is not defined", def)
		}
		c.doc.Fallback.Default = strings.ToLower(def)
	}

	for i, rule := range doc.Patterns {
		re, err := regexp.Compile(rule.Regex)
		if err != nil {
			return nil, fmt.Errorf("pattern %s: %w", rule.Name, err)
		}
		c.doc.Patterns[i].re = re
	}

	for _, host := range doc.SizeHintHosts {
		c.hosts[strings.ToLower(host)] = true
	}

	if c.doc.Directories.Default == "" {
		c.doc.Directories.Default = "products"
	}

	return c, nil
}

func cloneDocument(doc Document) Document {
	out := doc
	out.Curated = make([]CuratedEntry, len(doc.Curated))
	for i, e := range doc.Curated {
		e.Fallbacks = append([]string(nil), e.Fallbacks...)
		out.Curated[i] = e
	}
	out.Fallback.Categories = make([]FallbackCategory, len(doc.Fallback.Categories))
	for i, cat := range doc.Fallback.Categories {
		cat.Keywords = append([]string(nil), cat.Keywords...)
		cat.URLs = append([]string(nil), cat.URLs...)
		out.Fallback.Categories[i] = cat
	}
	out.Patterns = append([]PatternRule(nil), doc.Patterns...)
	out.Keywords.Products = append([]string(nil), doc.Keywords.Products...)
	out.Keywords.Features = append([]string(nil), doc.Keywords.Features...)
	out.Directories.Rules = make([]DirectoryRule, len(doc.Directories.Rules))
	for i, rule := range doc.Directories.Rules {
		rule.Markers = append([]string(nil), rule.Markers...)
		rule.Keywords = append([]string(nil), rule.Keywords...)
		out.Directories.Rules[i] = rule
	}
	out.Manufacturers = make([]Manufacturer, len(doc.Manufacturers))
	for i, m := range doc.Manufacturers {
		m.Keywords = append([]string(nil), m.Keywords...)
		m.Assets = append([]ManufacturerAsset(nil), m.Assets...)
		out.Manufacturers[i] = m
	}
	out.SizeHintHosts = append([]string(nil), doc.SizeHintHosts...)
	return out
}

// ErrNoCuratedMatch is returned when no curated key matches a name.
var ErrNoCuratedMatch = errors.New("no curated match")

func stripExt(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// LookupCurated matches name against curated keys: exact first (with or
// without extension), then the longest key contained in name or containing it.
func (c *Catalog) LookupCurated(name string) (CuratedEntry, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return CuratedEntry{}, ErrNoCuratedMatch
	}

	if i, ok := c.curated[name]; ok {
		return c.cloneCurated(i), nil
	}

	bare := stripExt(name)
	best, bestLen := -1, 0
	for i, entry := range c.doc.Curated {
		key := stripExt(entry.Key)
		if key == bare {
			return c.cloneCurated(i), nil
		}
		if key == "" {
			continue
		}
		if strings.Contains(bare, key) || strings.Contains(key, bare) {
			if len(key) > bestLen {
				best, bestLen = i, len(key)
			}
		}
	}

	if best < 0 {
		return CuratedEntry{}, ErrNoCuratedMatch
	}
	return c.cloneCurated(best), nil
}

func (c *Catalog) cloneCurated(i int) CuratedEntry {
	e := c.doc.Curated[i]
	e.Fallbacks = append([]string(nil), e.Fallbacks...)
	return e
}

// Curated returns every curated entry sorted by key.
func (c *Catalog) Curated() []CuratedEntry {
	out := make([]CuratedEntry, len(c.doc.Curated))
	for i := range c.doc.Curated {
		out[i] = c.cloneCurated(i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// FallbackCategory returns a category by name.
func (c *Catalog) FallbackCategory(name string) (FallbackCategory, bool) {
	i, ok := c.fallbacks[strings.ToLower(name)]
	if !ok {
		return FallbackCategory{}, false
	}
	cat := c.doc.Fallback.Categories[i]
	cat.Keywords = append([]string(nil), cat.Keywords...)
	cat.URLs = append([]string(nil), cat.URLs...)
	return cat, true
}

// InferCategory picks the first category, in table order, whose name or keyword
// occurs in any of the given texts. It falls back to the default category, then
// to the first one.
func (c *Catalog) InferCategory(texts ...string) (FallbackCategory, bool) {
	lowered := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}

	for _, cat := range c.doc.Fallback.Categories {
		needles := append([]string{cat.Name}, cat.Keywords...)
		for _, needle := range needles {
			needle = strings.ToLower(needle)
			if needle == "" {
				continue
			}
			for _, text := range lowered {
				if strings.Contains(text, needle) {
					return c.FallbackCategory(cat.Name)
				}
			}
		}
	}

	if c.doc.Fallback.Default != "" {
		return c.FallbackCategory(c.doc.Fallback.Default)
	}
	if len(c.doc.Fallback.Categories) > 0 {
		return c.FallbackCategory(c.doc.Fallback.Categories[0].Name)
	}
	return FallbackCategory{}, false
}

// Patterns returns the path rules in evaluation order.
func (c *Catalog) Patterns() []PatternRule {
	return append([]PatternRule(nil), c.doc.Patterns...)
}

// ProductKeywords returns the product keyword list.
func (c *Catalog) ProductKeywords() []string {
	return append([]string(nil), c.doc.Keywords.Products...)
}

// FeatureKeywords returns the feature keyword list.
func (c *Catalog) FeatureKeywords() []string {
	return append([]string(nil), c.doc.Keywords.Features...)
}

// ClassifyDirectory picks the content directory for a path: the first rule
// whose marker occurs in the path or whose keyword occurs in the filename.
func (c *Catalog) ClassifyDirectory(p string) string {
	lowerPath := strings.ToLower(p)
	name := path.Base(lowerPath)

	for _, rule := range c.doc.Directories.Rules {
		for _, marker := range rule.Markers {
			if strings.Contains(lowerPath, strings.ToLower(marker)) {
				return rule.Name
			}
		}
		for _, keyword := range rule.Keywords {
			if strings.Contains(name, strings.ToLower(keyword)) {
				return rule.Name
			}
		}
	}
	return c.doc.Directories.Default
}

// Manufacturers returns the press-kit tables.
func (c *Catalog) Manufacturers() []Manufacturer {
	out := make([]Manufacturer, len(c.doc.Manufacturers))
	for i, m := range c.doc.Manufacturers {
		m.Keywords = append([]string(nil), m.Keywords...)
		m.Assets = append([]ManufacturerAsset(nil), m.Assets...)
		out[i] = m
	}
	return out
}

// SupportsSizeHints reports whether host accepts sizing query parameters.
func (c *Catalog) SupportsSizeHints(host string) bool {
	return c.hosts[strings.ToLower(host)]
}
