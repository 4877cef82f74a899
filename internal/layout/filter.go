package layout

import (
	"github.com/dgallion1/docoutline/internal/doctree"
)

// Reason explains why a line was rejected as a heading candidate.
type Reason int

const (
	Keep Reason = iota
	ReasonTooShort
	ReasonNoLetters
	ReasonBoilerplate
	ReasonRunning
	ReasonBodyText
)

func (r Reason) String() string {
	switch r {
	case Keep:
		return "keep"
	case ReasonTooShort:
		return "too_short"
	case ReasonNoLetters:
		return "no_letters"
	case ReasonBoilerplate:
		return "boilerplate"
	case ReasonRunning:
		return "running"
	case ReasonBodyText:
		return "body_text"
	default:
		return "unknown"
	}
}

func noiseReason(text string, cfg Config) Reason {
	t := collapseSpace(text)
	if runeCount(t) < cfg.MinHeadingChars {
		return ReasonTooShort
	}
	if !hasLetter(t) {
		return ReasonNoLetters
	}
	for _, re := range cfg.BoilerplatePatterns {
		if re.MatchString(t) {
			return ReasonBoilerplate
		}
	}
	return Keep
}

// IsNoise reports whether text can never be a heading or title: too short,
// without letters, or matching a boilerplate pattern.
func IsNoise(text string, cfg Config) bool {
	return noiseReason(text, cfg.withDefaults()) != Keep
}

// Filter decides which lines are heading candidates. Every rule depends only
// on the line and the Profile, so filtering a filtered set is a no-op.
type Filter struct {
	cfg     Config
	profile *Profile
}

// NewFilter creates a filter backed by a document profile.
func NewFilter(profile *Profile) *Filter {
	return &Filter{cfg: profile.cfg, profile: profile}
}

// Check returns Keep or the first rule l fails.
func (f *Filter) Check(l doctree.Line) Reason {
	if r := noiseReason(l.Text, f.cfg); r != Keep {
		return r
	}
	if f.profile.IsRunning(l) {
		return ReasonRunning
	}
	body := f.profile.BodySizeFor(l.Page)
	if body > 0 && l.FontSize < body*f.cfg.MinSizeRatio-1e-9 {
		return ReasonBodyText
	}
	return Keep
}

// Candidates returns the lines that pass every rule, in input order.
func (f *Filter) Candidates(lines []doctree.Line) []doctree.Candidate {
	var out []doctree.Candidate
	for _, l := range lines {
		if f.Check(l) != Keep {
			continue
		}
		out = append(out, doctree.Candidate{Line: l, FirstPage: l.Page == 0})
	}
	return out
}

// Refilter applies the rules to existing candidates.
func (f *Filter) Refilter(cands []doctree.Candidate) []doctree.Candidate {
	lines := make([]doctree.Line, len(cands))
	for i, c := range cands {
		lines[i] = c.Line
	}
	return f.Candidates(lines)
}

// Rejections counts rejected lines by reason.
func (f *Filter) Rejections(lines []doctree.Line) map[Reason]int {
	out := map[Reason]int{}
	for _, l := range lines {
		if r := f.Check(l); r != Keep {
			out[r]++
		}
	}
	return out
}
