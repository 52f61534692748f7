// Package logging builds the process-wide slog logger. Console output is a
// single key=value line per record because NZBGet captures script stderr and
// folds it into the job log; a JSON handler is available for log shippers.
package logging
