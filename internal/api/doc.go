// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api provides the HTTP REST API for Marquee.

Routes are served by chi. Every JSON response uses the same envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "request_id": "..."}}
	{"status": "error", "data": null, "metadata": {...}, "error": {"code": "NOT_FOUND", "message": "..."}}

# Endpoints

Recommendations:
  - POST /api/v1/recommend              {"title": "...", "k": 10}

Movies and ratings:
  - POST   /api/v1/movies               {"id": 1, "title": "Toy Story (1995)"}
  - GET    /api/v1/movies/{movieID}
  - GET    /api/v1/movies/{movieID}/rating             average and vote count
  - GET    /api/v1/movies/{movieID}/rating/{userID}    one user's rating
  - POST   /api/v1/movies/{movieID}/ratings            {"user_id": 7, "rating": 4.5}
  - DELETE /api/v1/movies/{movieID}/ratings/{userID}

Reviews:
  - GET    /api/v1/movies/{movieID}/comments
  - POST   /api/v1/movies/{movieID}/comments           {"user_id": 7, "content": "..."}
  - PUT    /api/v1/comments/{commentID}                {"content": "..."}
  - DELETE /api/v1/comments/{commentID}

Operations:
  - GET /api/v1/status, /health, /health/live, /health/ready, /metrics

# Error Codes

VALIDATION_ERROR, INVALID_JSON, INVALID_ID and INVALID_QUERY map to 400,
NOT_FOUND to 404, RATE_LIMITED to 429, SENTIMENT_UNAVAILABLE to 503 and
TIMEOUT to 504.
*/
package api
