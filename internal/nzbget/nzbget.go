package nzbget

import "strings"

// NZBGet post-processing exit codes. The daemon treats anything else as a
// script crash.
const (
	ExitSuccess = 93
	ExitError   = 94
	ExitNone    = 95
)

// LookupFunc reads one environment variable, reporting whether it was set.
type LookupFunc func(key string) (string, bool)

// Download carries the per-job fields NZBGet exports to post-processing
// scripts, including the DNZB proper-name headers when the indexer supplied
// them.
type Download struct {
	Name        string
	Category    string
	Status      string
	ProperName  string
	EpisodeName string
	MovieYear   string
}

// FromEnv reads the NZBPP_* job variables using lookup.
func FromEnv(lookup LookupFunc) Download {
	get := func(key string) string {
		value, _ := lookup(key)
		return strings.TrimSpace(value)
	}
	return Download{
		Name:        get("NZBPP_NZBNAME"),
		Category:    get("NZBPP_CATEGORY"),
		Status:      get("NZBPP_STATUS"),
		ProperName:  get("NZBPR__DNZB_PROPERNAME"),
		EpisodeName: get("NZBPR__DNZB_EPISODENAME"),
		MovieYear:   get("NZBPR__DNZB_MOVIEYEAR"),
	}
}

// HasStatus reports whether the daemon exported a job status at all. Very old
// NZBGet releases predate NZBPP_STATUS; treat those jobs as successful.
func (d Download) HasStatus() bool {
	return d.Status != ""
}

// Succeeded reports whether the download finished in any SUCCESS substatus.
func (d Download) Succeeded() bool {
	if !d.HasStatus() {
		return true
	}
	return strings.HasPrefix(d.Status, "SUCCESS/")
}
