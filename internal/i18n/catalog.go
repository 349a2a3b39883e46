// Package i18n serves UI and API messages from per-locale YAML catalogs.
// Every component looks its strings up by key; nothing is duplicated per
// language in code.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yml
var locales embed.FS

// Fallback is used for keys a locale does not translate.
var Fallback = language.English

type componentMessages map[string]map[string]string

// Catalog holds every loaded locale.
type Catalog struct {
	tags    []language.Tag
	entries map[language.Tag]componentMessages
	matcher language.Matcher
}

// Load parses the embedded locale files.
func Load() (*Catalog, error) {
	files, err := locales.ReadDir("locales")
	if err != nil {
		return nil, err
	}

	c := &Catalog{entries: make(map[language.Tag]componentMessages)}
	for _, f := range files {
		name := strings.TrimSuffix(f.Name(), path.Ext(f.Name()))
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("locale file %s: %w", f.Name(), err)
		}
		b, err := locales.ReadFile(path.Join("locales", f.Name()))
		if err != nil {
			return nil, err
		}
		var messages componentMessages
		if err := yaml.Unmarshal(b, &messages); err != nil {
			return nil, fmt.Errorf("locale file %s: %w", f.Name(), err)
		}
		c.entries[tag] = messages
	}

	if _, ok := c.entries[Fallback]; !ok {
		return nil, fmt.Errorf("missing %s locale", Fallback)
	}

	// The fallback must come first so the matcher defaults to it.
	c.tags = append(c.tags, Fallback)
	others := make([]language.Tag, 0, len(c.entries)-1)
	for tag := range c.entries {
		if tag != Fallback {
			others = append(others, tag)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	c.tags = append(c.tags, others...)
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// MustLoad is Load for package initialisation and tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Locales lists the loaded locales, fallback first.
func (c *Catalog) Locales() []language.Tag {
	return append([]language.Tag(nil), c.tags...)
}

// Match picks the best loaded locale for an Accept-Language header value.
func (c *Catalog) Match(acceptLanguage string) language.Tag {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return Fallback
	}
	_, index, confidence := c.matcher.Match(prefs...)
	if confidence == language.No {
		return Fallback
	}
	return c.tags[index]
}

// Messages returns the strings of one component in the given locale.
func (c *Catalog) Messages(tag language.Tag, component string) Messages {
	m := Messages{component: component, fallback: c.entries[Fallback][component]}
	if entries, ok := c.entries[tag]; ok {
		m.primary = entries[component]
	}
	return m
}

// Messages resolves keys for a single component.
type Messages struct {
	component string
	primary   map[string]string
	fallback  map[string]string
}

// Get returns the localized string for key, falling back to English and then
// to the key itself.
func (m Messages) Get(key string) string {
	if s, ok := m.primary[key]; ok {
		return s
	}
	if s, ok := m.fallback[key]; ok {
		return s
	}
	return key
}

// Format is Get followed by placeholder substitution.
func (m Messages) Format(key string, values map[string]string) string {
	return Format(m.Get(key), values)
}

// Format replaces %name% placeholders in template with values[name].
// Unknown placeholders are left as they are.
func Format(template string, values map[string]string) string {
	if len(values) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, "%"+k+"%", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
