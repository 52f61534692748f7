// Package notify pushes "download finished" notifications to Plex Home
// Theater clients over their JSON-RPC interface.
package notify
