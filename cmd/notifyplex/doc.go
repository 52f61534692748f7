// Package main hosts the NotifyPlex CLI entrypoint and command graph.
//
// The Cobra-based command tree serves two audiences: NZBGet, which invokes
// `notifyplex run` as a post-processing script and reads the 93/94/95 exit
// codes, and operators, who use the remaining commands to inspect sections,
// test connectivity, manage the persisted token, and review run history.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
