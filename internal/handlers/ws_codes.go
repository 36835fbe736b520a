// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// StatusServerShutdown is sent to every match socket while the server drains before exit.
const StatusServerShutdown websocket.StatusCode = 3000
