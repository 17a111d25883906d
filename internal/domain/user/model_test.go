package user

import "testing"

func TestCapability_AdminOf(t *testing.T) {
	t.Parallel()

	c := Capability{UserID: "u1", LeagueID: "league-1", IsLeagueAdmin: true}
	if !c.AdminOf("league-1") {
		t.Fatalf("expected admin of own league")
	}
	if c.AdminOf("league-2") {
		t.Fatalf("admin capability must not leak to another league")
	}
	if (Capability{UserID: "u1", IsLeagueAdmin: true}).AdminOf("") {
		t.Fatalf("admin capability without league must not match empty league")
	}
}

func TestCapability_Captains(t *testing.T) {
	t.Parallel()

	c := Capability{UserID: "u1", CaptainOf: []string{"team-a"}}
	if !c.Captains("team-a") {
		t.Fatalf("expected captain of team-a")
	}
	if c.Captains("team-b") || c.Captains("") {
		t.Fatalf("unexpected captaincy")
	}
}
