// Package resolve maps NZBGet download categories to Plex library section
// ids under the four refresh modes.
package resolve
