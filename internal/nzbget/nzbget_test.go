package nzbget_test

import (
	"testing"

	"notifyplex/internal/nzbget"
)

func lookupFrom(env map[string]string) nzbget.LookupFunc {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func TestFromEnvReadsJobVariables(t *testing.T) {
	download := nzbget.FromEnv(lookupFrom(map[string]string{
		"NZBPP_NZBNAME":           "Some.Show.S01E02.1080p",
		"NZBPP_CATEGORY":          "tv",
		"NZBPP_STATUS":            "SUCCESS/ALL",
		"NZBPR__DNZB_PROPERNAME":  "Some Show",
		"NZBPR__DNZB_EPISODENAME": "The Pilot",
	}))

	if download.Name != "Some.Show.S01E02.1080p" {
		t.Errorf("Name = %q", download.Name)
	}
	if download.Category != "tv" {
		t.Errorf("Category = %q", download.Category)
	}
	if download.ProperName != "Some Show" || download.EpisodeName != "The Pilot" {
		t.Errorf("DNZB headers = %q / %q", download.ProperName, download.EpisodeName)
	}
	if !download.Succeeded() {
		t.Error("SUCCESS/ALL should report success")
	}
}

func TestSucceeded(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"success all", "SUCCESS/ALL", true},
		{"success unpack", "SUCCESS/UNPACK", true},
		{"failure", "FAILURE/PAR", false},
		{"warning", "WARNING/SCRIPT", false},
		{"missing status on old daemon", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			download := nzbget.Download{Status: tt.status}
			if got := download.Succeeded(); got != tt.want {
				t.Errorf("Succeeded() with status %q = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestHasStatus(t *testing.T) {
	if (nzbget.Download{}).HasStatus() {
		t.Error("empty status should report false")
	}
	if !(nzbget.Download{Status: "FAILURE/HEALTH"}).HasStatus() {
		t.Error("set status should report true")
	}
}
