// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides key verification and link-code generation.

# Request Key

Every Slack request must carry the shared key as a query parameter:

	POST /addCoffee?key=<AUTH_KEY>

VerifyRequestKey compares it in constant time. An empty configured key
rejects every request rather than allowing open access.

# Admin Key

`/coffee auth <key>` promotes a user to admin when the presented key
matches the configured ADMIN_KEY:

	err := auth.VerifyAdminKey(presented, cfg.AdminKey)

Failures are indistinguishable from unknown commands so the endpoint
doesn't advertise that an admin mechanism exists.

# Link Codes

Link codes tie a user's accounts together across workspaces:

	code, err := auth.GenerateLinkCode()  // "cedar-otter-quartz-dawn"

Codes are four random words chosen with crypto/rand, valid for 24 hours
and consumed on first use.
*/
package auth
