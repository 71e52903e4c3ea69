// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the feed handler. These give clients
// a more specific reason for closure than the standard codes.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidGameIDError  = 3001 // Game ID in the WS URL was malformed or unknown.
	FeedUnavailable     = 3002 // Upstream feed subscription could not be established.
)
