// Package refresh orchestrates library refreshes for a finished download:
// token acquisition, server location, category resolution, dispatch, and a
// single re-authentication when the server rejects the stored token.
package refresh
