// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"strings"

	"github.com/tomtom215/marquee/internal/recommend"
)

// minTokenLen drops single-character tokens such as the "2" in "Toy Story 2".
const minTokenLen = 2

// tokenize normalizes text and splits it into lower-case word tokens of at
// least minTokenLen characters.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(recommend.NormalizeTitle(text)))
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// terms returns the word n-grams of text up to maxN, unigrams first.
func terms(text string, maxN int) []string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	out := make([]string, 0, len(tokens)*maxN)
	out = append(out, tokens...)
	for n := 2; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
