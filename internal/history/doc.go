// Package history keeps a SQLite journal of refresh runs so operators can
// see what past downloads triggered without digging through NZBGet logs.
package history
