package main

import (
	"testing"

	"notifyplex/internal/plex"
)

func TestTokenStatusAndClear(t *testing.T) {
	home := setupCLIHome(t)
	t.Setenv("NZBPO_PLEXIP", "plex.local:32400")

	out, err := runCLI(t, "token", "status")
	if err != nil {
		t.Fatalf("token status: %v", err)
	}
	requireContains(t, out, "Token present: no")

	// Seed a record the way a successful run would.
	store := plex.NewFileTokenStore(home + "/.config/notifyplex/plex_auth.json")
	if err := store.Save(plex.TokenRecord{
		Token:            "tok",
		ServerURL:        "http://plex.local:32400",
		ClientIdentifier: "client-id",
	}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	out, err = runCLI(t, "token", "status")
	if err != nil {
		t.Fatalf("token status: %v", err)
	}
	requireContains(t, out, "Token present: yes")
	requireContains(t, out, "http://plex.local:32400")

	if _, err := runCLI(t, "token", "clear"); err != nil {
		t.Fatalf("token clear: %v", err)
	}

	out, err = runCLI(t, "token", "status")
	if err != nil {
		t.Fatalf("token status after clear: %v", err)
	}
	requireContains(t, out, "Token present: no")
}
