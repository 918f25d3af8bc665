/*
Package security provides API key authentication for the gateway's HTTP
surface: a tiered validator (client vs. admin keys) and middleware that
extracts and checks credentials from incoming requests.

# API Key Authentication

Validate API keys in HTTP middleware:

	validator := auth.NewAPIKeyValidator(auth.TierClient, apiKeys)
	middleware := auth.NewAPIKeyMiddleware(validator, auth.DefaultSources(), logger)

	http.Handle("/", middleware.Handle(handler))
*/
package security
