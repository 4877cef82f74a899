package layout

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// normalizeText applies NFKC (unfolding ligatures such as "ﬁ" and
// full-width forms) and maps exotic spaces to ASCII spaces. Leading and
// trailing whitespace is preserved because it carries word boundaries.
func normalizeText(s string) string {
	s = norm.NFKC.String(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\u00ad' || r == '\u200b' || r == '\ufeff':
			return -1
		case unicode.IsSpace(r):
			return ' '
		}
		return r
	}, s)
}

// collapseSpace trims and collapses internal whitespace runs to one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// signature is the case-insensitive, whitespace-normalized form of a line
// used to match repeats across pages.
func signature(s string) string {
	return folder.String(collapseSpace(s))
}

// SameText reports whether two strings are equal once whitespace and case
// are normalized.
func SameText(a, b string) bool {
	return signature(a) == signature(b)
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// fontStyle infers bold and italic from a font name, e.g.
// "ABCDEE+Helvetica-BoldOblique".
func fontStyle(fontName string) (bold, italic bool) {
	name := strings.ToLower(fontName)
	for _, k := range []string{"bold", "black", "heavy", "semibold", "demibold"} {
		if strings.Contains(name, k) {
			bold = true
			break
		}
	}
	italic = strings.Contains(name, "italic") || strings.Contains(name, "oblique")
	return bold, italic
}

var sectionNumberRe = regexp.MustCompile(`^\d+(\.\d+)*\.?\s`)
