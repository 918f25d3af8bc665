/*
Package auth provides two-tier API key authentication for the gateway:
a client tier guarding the OpenAI-compatible endpoints, and an admin tier
guarding the credential-pool management endpoints.

# Basic Usage

	clientValidator := auth.NewAPIKeyValidator(auth.TierClient, cfg.SecurityAdapterAPIKeys)
	clientAuth := auth.NewAPIKeyMiddleware(clientValidator, nil, logger)

	adminValidator := auth.NewAPIKeyValidator(auth.TierAdmin, cfg.SecurityAdminAPIKeys)
	adminAuth := auth.NewAPIKeyMiddleware(adminValidator, nil, logger)

	http.Handle("/v1/", clientAuth.Handle(chatHandler))
	http.Handle("/admin/", adminAuth.Handle(adminHandler))

# Insecure Mode

If no keys are configured for the client tier, every request is accepted
and a warning is logged on each one — this mirrors the behavior operators
rely on when first standing up a deployment without credentials wired in
yet. The admin tier has no such fallback: an unconfigured admin key set
always rejects with 403.

# Key Sources

DefaultSources accepts either an X-API-Key header or an
Authorization: Bearer header, tried in that order.
*/
package auth
