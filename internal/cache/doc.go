// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package cache provides a thread-safe, generic in-memory cache with TTL support.

It memoizes recommendation responses. Keys built with GenerateKey embed the
trust pool generation and index size, so a recomputed pool or an ingested
movie produces new keys and stale entries age out on their own.

# Usage

	c := cache.New[*recommend.Response](5*time.Minute, 10000)
	defer c.Close()

	key := cache.GenerateKey("recommend", params)
	if resp, ok := c.Get(key); ok {
	    return resp
	}

# Thread Safety

All methods are safe for concurrent use. Expired entries are removed lazily
on Get and by a background sweep that stops on Close.
*/
package cache
