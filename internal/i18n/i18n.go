// Package i18n renders user-facing messages from embedded locale catalogs.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"sort"
	"strings"

	"github.com/qaforum/apiserver/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// LangParam is the query parameter that selects a language explicitly.
const LangParam = "lang"

// BaseTag is the source locale every catalog key must exist in.
var BaseTag = language.AmericanEnglish

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds the loaded catalogs and the languages they cover.
type Bundle struct {
	catalog *catalog.Builder
	tags    []language.Tag
	matcher language.Matcher
}

// Load reads the catalogs embedded in this package.
func Load() (*Bundle, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS reads every locales/*.yaml file in fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	builder := catalog.NewBuilder(catalog.Fallback(BaseTag))
	// The base locale goes first so that matching falls back to it.
	tags := []language.Tag{BaseTag}
	seenBase := false

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		tag, err := language.Parse(strings.TrimSpace(file.Locale))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: invalid locale %q: %w", path, file.Locale, err)
		}
		if len(file.Messages) == 0 {
			return nil, fmt.Errorf("catalog %s: messages map is required", path)
		}
		for key, msg := range file.Messages {
			if err := builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("catalog %s: key %s: %w", path, key, err)
			}
		}
		if tag == BaseTag {
			seenBase = true
			continue
		}
		tags = append(tags, tag)
	}

	if !seenBase {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseTag)
	}

	return &Bundle{
		catalog: builder,
		tags:    tags,
		matcher: language.NewMatcher(tags),
	}, nil
}

// Tags returns the supported languages, base locale first.
func (b *Bundle) Tags() []language.Tag {
	return append([]language.Tag(nil), b.tags...)
}

// Printer returns a printer bound to the bundle's catalog.
func (b *Bundle) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(b.catalog))
}

// Match picks the closest supported language for the given preferences.
func (b *Bundle) Match(preferred ...language.Tag) language.Tag {
	if len(preferred) == 0 {
		return BaseTag
	}
	_, index, confidence := b.matcher.Match(preferred...)
	if confidence == language.No {
		return BaseTag
	}
	return b.tags[index]
}

// ResolveTag determines the language for r from the lang query parameter
// or the Accept-Language header.
func (b *Bundle) ResolveTag(r *http.Request) language.Tag {
	if r == nil {
		return BaseTag
	}
	if raw := strings.TrimSpace(r.URL.Query().Get(LangParam)); raw != "" {
		if tag, err := language.Parse(raw); err == nil {
			return b.Match(tag)
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			return b.Match(tags...)
		}
	}
	return BaseTag
}

// Render formats msg for the printer's language.
func Render(p *message.Printer, msg types.Message) string {
	return p.Sprintf(msg.Key, msg.Args...)
}

// RenderAll formats a list of messages.
func RenderAll(p *message.Printer, msgs []types.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, Render(p, msg))
	}
	return out
}
