// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/marquee/internal/recommend"
)

// ItemLookup resolves movie metadata by ID.
type ItemLookup interface {
	GetItem(ctx context.Context, id int) (recommend.Item, error)
}

// Collaborative ranks the items that the trusted fans of a seed item like
// disproportionately often compared with everyone else.
//
// For a seed item s:
//
//	fans(s)      = trusted users who rated s
//	fanRate(i)   = |fans who rated i > liked| / |fans(s)|
//	candidates   = { i : fanRate(i) > minFanShare }
//	generalRate(i) = |users who rated i > liked| / |users who rated any candidate > liked|
//	score(i)     = fanRate(i) / generalRate(i)
//
// The general rate is normalized over the candidate set only, not the whole
// population. Items with a zero general rate are dropped.
type Collaborative struct {
	thresholds  recommend.Thresholds
	topN        int
	excludeSeed bool
	items       ItemLookup
}

// NewCollaborative creates a collaborative scorer.
//
//nolint:gocritic // hugeParam: config passed by value for immutability
func NewCollaborative(th recommend.Thresholds, limits recommend.LimitsConfig, items ItemLookup) *Collaborative {
	topN := limits.TopN
	if topN <= 0 {
		topN = 10
	}
	return &Collaborative{
		thresholds:  th,
		topN:        topN,
		excludeSeed: limits.ExcludeSeed,
		items:       items,
	}
}

// Name returns the scorer identifier.
func (c *Collaborative) Name() string {
	return "collaborative"
}

// candidateScore holds the intermediate rates of one candidate.
type candidateScore struct {
	itemID  int
	fanRate float64
	general float64
	score   float64
}

// Score returns up to topN items anchored on seedItemID, best first.
// No trusted fans, or no candidate above the fan share, yields an empty
// result and no error.
func (c *Collaborative) Score(ctx context.Context, seedItemID int, pool *recommend.TrustPool, all *recommend.RatingIndex) ([]recommend.ScoredItem, error) {
	ranked, err := c.rank(ctx, seedItemID, pool, all)
	if err != nil || len(ranked) == 0 {
		return nil, err
	}
	return c.resolve(ctx, ranked)
}

// rank computes and orders the candidate scores.
func (c *Collaborative) rank(ctx context.Context, seedItemID int, pool *recommend.TrustPool, all *recommend.RatingIndex) ([]candidateScore, error) {
	fans := pool.Fans(seedItemID)
	if len(fans) == 0 {
		return nil, nil
	}

	liked := c.thresholds.LikedThreshold

	// How many fans liked each item.
	fanLikes := make(map[int]int)
	for _, fan := range fans {
		for _, r := range all.ByUser(fan) {
			if r.Score > liked {
				fanLikes[r.ItemID]++
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := make([]candidateScore, 0, len(fanLikes))
	for itemID, n := range fanLikes {
		if c.excludeSeed && itemID == seedItemID {
			continue
		}
		rate := float64(n) / float64(len(fans))
		if rate > c.thresholds.MinFanShare {
			candidates = append(candidates, candidateScore{itemID: itemID, fanRate: rate})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Everyone who liked a candidate, and how many liked each one.
	likers := make(map[int]struct{})
	generalLikes := make([]int, len(candidates))
	for i := range candidates {
		for _, r := range all.ByItem(candidates[i].itemID) {
			if r.Score > liked {
				generalLikes[i]++
				likers[r.UserID] = struct{}{}
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored := candidates[:0]
	for i, cand := range candidates {
		if generalLikes[i] == 0 {
			continue
		}
		cand.general = float64(generalLikes[i]) / float64(len(likers))
		cand.score = cand.fanRate / cand.general
		scored = append(scored, cand)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].itemID < scored[j].itemID
	})
	return scored, nil
}

// resolve attaches titles to the best topN candidates. Items that vanished
// from the record store are skipped.
func (c *Collaborative) resolve(ctx context.Context, ranked []candidateScore) ([]recommend.ScoredItem, error) {
	out := make([]recommend.ScoredItem, 0, c.topN)
	for _, cand := range ranked {
		if len(out) == c.topN {
			break
		}

		var item recommend.Item
		if c.items != nil {
			var err error
			item, err = c.items.GetItem(ctx, cand.itemID)
			if errors.Is(err, recommend.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("resolve item %d: %w", cand.itemID, err)
			}
		} else {
			item.ID = cand.itemID
		}

		out = append(out, recommend.ScoredItem{
			ID:          item.ID,
			Title:       item.Title,
			Score:       cand.score,
			FanRate:     cand.fanRate,
			GeneralRate: cand.general,
		})
	}
	return out, nil
}
