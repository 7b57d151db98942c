// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package sentiment

import (
	"context"
	"strings"
	"unicode"
)

// Lexicon is an offline scorer based on a small weighted word list.
//
// Each known word contributes its weight. A negator ("not", "never", ...)
// within the two preceding words flips and halves the next weight, and an
// intensifier ("very", "really", ...) scales it by 1.3. The polarity is the
// mean contribution of the matched words, so text without known words is 0.
type Lexicon struct {
	words map[string]float64
}

// NewLexicon returns a Lexicon with the built-in English word list.
// Extra entries override built-in weights.
func NewLexicon(extra map[string]float64) *Lexicon {
	words := make(map[string]float64, len(defaultLexicon)+len(extra))
	for w, v := range defaultLexicon {
		words[w] = v
	}
	for w, v := range extra {
		words[strings.ToLower(w)] = v
	}
	return &Lexicon{words: words}
}

// Polarity implements Scorer.
func (l *Lexicon) Polarity(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var sum float64
	matched := 0
	negateUntil, boost := -1, 1.0
	for i, tok := range tokens {
		switch {
		case negators[tok]:
			negateUntil = i + 2
			continue
		case intensifiers[tok]:
			boost = 1.3
			continue
		}

		w, ok := l.words[tok]
		if !ok {
			continue
		}
		w *= boost
		if i <= negateUntil {
			w *= -0.5
		}
		sum += w
		matched++
		boost = 1
	}

	if matched == 0 {
		return 0, nil
	}
	return Clamp(sum / float64(matched))
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "isn't": true, "wasn't": true,
	"don't": true, "didn't": true, "doesn't": true, "hardly": true, "nothing": true,
}

var intensifiers = map[string]bool{
	"very": true, "really": true, "extremely": true, "so": true, "truly": true, "incredibly": true,
}

var defaultLexicon = map[string]float64{
	// positive
	"amazing": 0.9, "awesome": 0.9, "beautiful": 0.85, "best": 1.0, "brilliant": 0.9,
	"charming": 0.6, "classic": 0.5, "delightful": 0.8, "enjoy": 0.5, "enjoyed": 0.5,
	"excellent": 1.0, "fantastic": 0.9, "fun": 0.4, "funny": 0.35, "good": 0.7,
	"great": 0.8, "incredible": 0.9, "like": 0.3, "liked": 0.4, "love": 0.6,
	"loved": 0.7, "lovely": 0.6, "masterpiece": 1.0, "moving": 0.5, "nice": 0.6,
	"perfect": 1.0, "recommend": 0.5, "superb": 1.0, "touching": 0.5, "wonderful": 1.0,
	"entertaining": 0.5, "gripping": 0.6, "stunning": 0.8, "favorite": 0.6, "fresh": 0.3,
	// negative
	"annoying": -0.8, "awful": -1.0, "bad": -0.7, "bland": -0.5, "boring": -1.0,
	"confusing": -0.4, "disappointing": -0.6, "dull": -0.5, "hate": -0.8, "hated": -0.9,
	"horrible": -1.0, "mediocre": -0.4, "mess": -0.5, "poor": -0.4, "predictable": -0.3,
	"ridiculous": -0.3, "silly": -0.3, "slow": -0.3, "stupid": -0.8, "terrible": -1.0,
	"ugly": -0.7, "waste": -0.2, "worse": -0.4, "worst": -1.0, "weak": -0.4,
	"overrated": -0.5, "forgettable": -0.5, "painful": -0.7, "meh": -0.2, "pointless": -0.5,
}
