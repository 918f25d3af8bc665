// Command gateway runs the OpenAI-compatible Gemini gateway: it accepts
// OpenAI chat-completion requests, translates them to the Gemini API,
// dispatches them through a rotating pool of upstream credentials, and
// translates the response back.
//
// Usage:
//
//	# Start the server with configuration from the environment
//	gateway run
//
//	# Show version information
//	gateway version
package main

func main() {
	Execute()
}
