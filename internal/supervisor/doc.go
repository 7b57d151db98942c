// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor provides process supervision for Marquee using suture v4.

Long-running services live in a three-layer tree:

	RootSupervisor ("marquee")
	├── DataSupervisor ("data-layer")
	│   └── TrustPoolService
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventRouterService (if events.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so an event router crash loop
does not take the HTTP server down with it.

# Usage

	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewTrustPoolService(pool, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)

# Failure Handling

Suture keeps a decaying failure counter per supervisor. When it exceeds
FailureThreshold the supervisor waits FailureBackoff before the next
restart. Services signal their intent through their return value:

	nil                    stopped cleanly, not restarted
	error                  crashed, restarted
	suture.ErrDoNotRestart stopped for good

Stores, the title index and the sentiment client are libraries, not
services, and are not supervised.

# Debugging Shutdown Issues

	report, _ := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logger.Warn("service did not stop", "service", svc.Name)
	}
*/
package supervisor
