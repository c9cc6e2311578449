// Package protect hides non-citation bracket constructs behind opaque
// placeholder tokens so the citation matcher cannot see them, and restores
// them verbatim once rewriting is done.
package protect

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Reason identifies the kind of bracket construct a placeholder stands for.
type Reason string

// Protected construct kinds.
const (
	MarkdownLink     Reason = "markdown_link"
	Wikilink         Reason = "wikilink"
	Image            Reason = "image"
	ImageWikilink    Reason = "image_wikilink"
	ExistingFootnote Reason = "existing_footnote"
)

// Placeholder tokens are framed by private-use runes that cannot appear in
// prose, with a 96-bit random hex suffix in between.
const (
	tokenOpen  = "\uE000"
	tokenClose = "\uE001"
	tokenBytes = 12
)

// Replacement records one placeholder substitution for later restoration.
type Replacement struct {
	Placeholder string
	Original    string
	Reason      Reason
}

// pattern pairs a construct regex with its reason. Order matters: the most
// specific pattern must run first so an image-wikilink is not half-eaten by
// the plain wikilink pattern.
type pattern struct {
	re     *regexp.Regexp
	reason Reason
}

var patterns = []pattern{
	{regexp.MustCompile(`!\[\[[^\]]+\]\]`), ImageWikilink},
	{regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`), Image},
	{regexp.MustCompile(`\[\[[^\]]+\]\]`), Wikilink},
	{regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`), MarkdownLink},
	{regexp.MustCompile(`\[\^[^\]]+\]`), ExistingFootnote},
}

// Protector owns the placeholder bookkeeping for a single normalization pass.
// It is not safe for concurrent use and must not be reused across documents.
type Protector struct {
	replacements []Replacement
}

// New returns an empty Protector.
func New() *Protector {
	return &Protector{}
}

// Protect substitutes every non-citation bracket construct in text with a
// unique placeholder and records the substitutions. The returned text contains
// no markdown links, wikilinks, images, image-wikilinks, or footnote markers.
func (p *Protector) Protect(text string) string {
	for _, pat := range patterns {
		text = p.protectPattern(text, pat.re, pat.reason)
	}
	return text
}

func (p *Protector) protectPattern(text string, re *regexp.Regexp, reason Reason) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		token := newToken(text)
		p.replacements = append(p.replacements, Replacement{
			Placeholder: token,
			Original:    match,
			Reason:      reason,
		})
		return token
	})
}

// Restore substitutes every recorded placeholder back to its original text.
// Placeholders are disjoint and never nest, so order does not matter.
func (p *Protector) Restore(text string) string {
	for _, r := range p.replacements {
		text = strings.Replace(text, r.Placeholder, r.Original, 1)
	}
	return text
}

// Replacements returns the recorded substitutions, in protection order.
func (p *Protector) Replacements() []Replacement {
	return p.replacements
}

// Count returns the number of protected constructs.
func (p *Protector) Count() int {
	return len(p.replacements)
}

// newToken synthesizes a placeholder that does not occur in text, resampling
// on the (effectively impossible) collision.
func newToken(text string) string {
	for {
		buf := make([]byte, tokenBytes)
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("protect: reading random bytes: %v", err))
		}
		token := tokenOpen + hex.EncodeToString(buf) + tokenClose
		if !strings.Contains(text, token) {
			return token
		}
	}
}
