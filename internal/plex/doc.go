// Package plex talks to plex.tv and to a Plex Media Server: password sign-in
// for the account token, resource discovery to find a reachable server, and
// the library section endpoints used to trigger scans.
package plex
