// Package extract pulls version strings out of fetched pages. A Rule is
// plain data, so every monitored source is configuration rather than code.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rule kinds.
const (
	KindText     = "text"
	KindSelector = "selector"
)

var (
	ErrBadRule     = errors.New("invalid extraction rule")
	ErrNoMatch     = errors.New("version pattern not found")
	ErrBadDocument = errors.New("could not parse document")
)

// Extraction is the result of applying a Rule to a page.
type Extraction struct {
	Version string
	From    string
	Beta    bool
}

// Rule describes how to find a version on a page.
//
// Kind "text" flattens the whole document to normalized text and applies
// Pattern to it. Kind "selector" runs a CSS selector and applies Pattern
// to each matched element's text; the first match whose text does not
// trip a skip marker wins, and if every match trips one, the first match
// is used with Beta set.
//
// Group selects the capture group holding the version (default 1).
// FromGroup optionally names a second group reported as the previous
// published version.
type Rule struct {
	Kind        string   `yaml:"kind" json:"kind" validate:"required,oneof=text selector"`
	Selector    string   `yaml:"selector,omitempty" json:"selector,omitempty"`
	Pattern     string   `yaml:"pattern" json:"pattern" validate:"required"`
	Group       int      `yaml:"group,omitempty" json:"group,omitempty" validate:"min=0"`
	FromGroup   int      `yaml:"from_group,omitempty" json:"from_group,omitempty" validate:"min=0"`
	SkipMarkers []string `yaml:"skip_markers,omitempty" json:"skip_markers,omitempty"`

	compiled *regexp.Regexp
}

// Validate checks the rule shape and compiles the pattern.
func (r *Rule) Validate() error {
	switch r.Kind {
	case KindText:
		if r.Selector != "" {
			return fmt.Errorf("%w: selector is only valid for kind %q", ErrBadRule, KindSelector)
		}
	case KindSelector:
		if r.Selector == "" {
			return fmt.Errorf("%w: kind %q needs a selector", ErrBadRule, KindSelector)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrBadRule, r.Kind)
	}
	_, err := r.regexp()
	return err
}

// Extract applies the rule to a fetched page body.
func (r *Rule) Extract(body []byte) (Extraction, error) {
	switch r.Kind {
	case KindText:
		return r.extractText(body)
	case KindSelector:
		return r.extractSelector(body)
	default:
		return Extraction{}, fmt.Errorf("%w: unknown kind %q", ErrBadRule, r.Kind)
	}
}

func (r *Rule) extractText(body []byte) (Extraction, error) {
	re, err := r.regexp()
	if err != nil {
		return Extraction{}, err
	}
	text, err := Flatten(body)
	if err != nil {
		return Extraction{}, err
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Extraction{}, fmt.Errorf("%w (first %d chars: %q)", ErrNoMatch, snippetLen, snippet(text))
	}
	return r.fromMatch(m)
}

func (r *Rule) extractSelector(body []byte) (Extraction, error) {
	re, err := r.regexp()
	if err != nil {
		return Extraction{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}

	var (
		candidates []Extraction
		ruleErr    error
	)
	doc.Find(r.Selector).Each(func(_ int, sel *goquery.Selection) {
		if ruleErr != nil {
			return
		}
		text := strings.Join(strings.Fields(sel.Text()), " ")
		m := re.FindStringSubmatch(text)
		if m == nil {
			return
		}
		ex, err := r.fromMatch(m)
		if err != nil {
			ruleErr = err
			return
		}
		ex.Beta = r.skip(text)
		candidates = append(candidates, ex)
	})
	if ruleErr != nil {
		return Extraction{}, ruleErr
	}
	if len(candidates) == 0 {
		flat, _ := Flatten(body)
		return Extraction{}, fmt.Errorf("%w (first %d chars: %q)", ErrNoMatch, snippetLen, snippet(flat))
	}

	// Prefer the first non-prerelease candidate, fall back to the first.
	for _, c := range candidates {
		if !c.Beta {
			return c, nil
		}
	}
	return candidates[0], nil
}

func (r *Rule) fromMatch(m []string) (Extraction, error) {
	g := r.Group
	if g == 0 {
		g = 1
	}
	if g >= len(m) {
		return Extraction{}, fmt.Errorf("%w: pattern has no capture group %d", ErrBadRule, g)
	}
	ex := Extraction{Version: m[g]}
	if r.FromGroup > 0 {
		if r.FromGroup >= len(m) {
			return Extraction{}, fmt.Errorf("%w: pattern has no capture group %d", ErrBadRule, r.FromGroup)
		}
		ex.From = m[r.FromGroup]
	}
	return ex, nil
}

// skip reports whether element text trips a skip marker. A literal '?'
// always counts, changelog pages mark prereleases with mangled entities.
func (r *Rule) skip(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range r.SkipMarkers {
		if marker == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return strings.Contains(text, "?")
}

func (r *Rule) regexp() (*regexp.Regexp, error) {
	if r.compiled == nil {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRule, err)
		}
		r.compiled = re
	}
	return r.compiled, nil
}

const snippetLen = 200

func snippet(text string) string {
	if len(text) > snippetLen {
		return text[:snippetLen]
	}
	return text
}
