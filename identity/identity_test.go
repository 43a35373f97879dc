package identity

import (
	"testing"

	"github.com/McNamara84/ernie-sub002/graph"
)

func TestResolveCollapsesSpellingVariants(t *testing.T) {
	// The same person appears as a creator with an umlaut and as a point
	// of contact with the transliterated spelling.
	candidates := []Candidate{
		{
			Kind:       graph.AgentPerson,
			GivenName:  "Christoph",
			FamilyName: "Förste",
			Roles:      []graph.Role{graph.RoleCreator},
			Position:   0,
			IsAuthor:   true,
		},
		{
			Kind:       graph.AgentPerson,
			GivenName:  "Christoph",
			FamilyName: "Foerste",
			Roles:      []graph.Role{graph.RoleContactPerson},
			Email:      "foerste@gfz-potsdam.de",
			Position:   1,
		},
	}

	got := Resolve(candidates)
	if len(got.Authors) != 1 {
		t.Fatalf("authors = %d, want 1", len(got.Authors))
	}
	if len(got.Contributors) != 0 {
		t.Fatalf("contributors = %d, want 0", len(got.Contributors))
	}

	author := got.Authors[0]
	if !author.IsContact {
		t.Error("author not flagged as contact")
	}
	if author.Email != "foerste@gfz-potsdam.de" {
		t.Errorf("email = %q, want contact member's email", author.Email)
	}
	if author.Agent.FamilyName != "Förste" {
		t.Errorf("family name = %q, want the creator spelling", author.Agent.FamilyName)
	}
	wantRoles := []graph.Role{graph.RoleCreator, graph.RoleContactPerson}
	if len(author.Roles) != len(wantRoles) {
		t.Fatalf("roles = %v, want %v", author.Roles, wantRoles)
	}
	for i, r := range wantRoles {
		if author.Roles[i] != r {
			t.Errorf("roles[%d] = %q, want %q", i, author.Roles[i], r)
		}
	}
}

func TestResolveKeepsDistinctORCIDsApart(t *testing.T) {
	candidates := []Candidate{
		{
			Kind:       graph.AgentPerson,
			GivenName:  "Jan",
			FamilyName: "Smith",
			ORCID:      "0000-0001-5000-0001",
			Position:   0,
			IsAuthor:   true,
		},
		{
			Kind:       graph.AgentPerson,
			GivenName:  "Jan",
			FamilyName: "Smith",
			ORCID:      "0000-0001-5000-0002",
			Position:   1,
			IsAuthor:   true,
		},
	}

	got := Resolve(candidates)
	if len(got.Authors) != 2 {
		t.Fatalf("authors = %d, want 2", len(got.Authors))
	}
	if got.Authors[0].Agent.ORCID == got.Authors[1].Agent.ORCID {
		t.Error("distinct ORCIDs were merged")
	}
	if got.Authors[0].Position != 0 || got.Authors[1].Position != 1 {
		t.Errorf("positions = %d, %d, want 0, 1", got.Authors[0].Position, got.Authors[1].Position)
	}
}

func TestResolveAttachesORCIDFromLaterAppearance(t *testing.T) {
	candidates := []Candidate{
		{
			Kind:       graph.AgentPerson,
			GivenName:  "Maria",
			FamilyName: "Keller",
			Position:   0,
			IsAuthor:   true,
		},
		{
			Kind:       graph.AgentPerson,
			GivenName:  "Maria",
			FamilyName: "Keller",
			ORCID:      "https://orcid.org/0000-0002-1825-0097",
			Roles:      []graph.Role{graph.RoleDataCollector},
			Position:   1,
		},
	}

	got := Resolve(candidates)
	if len(got.Authors) != 1 {
		t.Fatalf("authors = %d, want 1", len(got.Authors))
	}
	if got.Authors[0].Agent.ORCID != "0000-0002-1825-0097" {
		t.Errorf("ORCID = %q, want bare normalized form", got.Authors[0].Agent.ORCID)
	}
	if len(got.Contributors) != 0 {
		t.Errorf("contributors = %d, want the collector absorbed into the author", len(got.Contributors))
	}
}

func TestResolveIdentifierlessStaysAloneUnderConflict(t *testing.T) {
	// Two identified people share the name; a third identifier-less
	// appearance must not be guessed onto either of them.
	candidates := []Candidate{
		{Kind: graph.AgentPerson, GivenName: "Li", FamilyName: "Wei", ORCID: "0000-0001-5000-0001", Position: 0, IsAuthor: true},
		{Kind: graph.AgentPerson, GivenName: "Li", FamilyName: "Wei", ORCID: "0000-0001-5000-0002", Position: 1, IsAuthor: true},
		{Kind: graph.AgentPerson, GivenName: "Li", FamilyName: "Wei", Roles: []graph.Role{graph.RoleEditor}, Position: 2},
	}

	got := Resolve(candidates)
	if len(got.Authors) != 2 {
		t.Fatalf("authors = %d, want 2", len(got.Authors))
	}
	if len(got.Contributors) != 1 {
		t.Fatalf("contributors = %d, want the ambiguous appearance kept separate", len(got.Contributors))
	}
	if got.Contributors[0].Agent.ORCID != "" {
		t.Errorf("ambiguous contributor acquired ORCID %q", got.Contributors[0].Agent.ORCID)
	}
}

func TestResolveIdentifierlessJoinsSoleIdentified(t *testing.T) {
	candidates := []Candidate{
		{Kind: graph.AgentPerson, GivenName: "Ana", FamilyName: "Costa", ORCID: "0000-0002-1825-0097", Position: 0, IsAuthor: true},
		{Kind: graph.AgentPerson, GivenName: "Ana", FamilyName: "Costa", Roles: []graph.Role{graph.RoleContactPerson}, Email: "costa@example.org", Position: 1},
	}

	got := Resolve(candidates)
	if len(got.Authors) != 1 {
		t.Fatalf("authors = %d, want 1", len(got.Authors))
	}
	if !got.Authors[0].IsContact {
		t.Error("contact flag lost in merge")
	}
	if got.Authors[0].Email != "costa@example.org" {
		t.Errorf("email = %q, want contact member's", got.Authors[0].Email)
	}
}

func TestResolveNamelessNeverMerge(t *testing.T) {
	candidates := []Candidate{
		{Kind: graph.AgentPerson, Roles: []graph.Role{graph.RoleOther}, Position: 0},
		{Kind: graph.AgentPerson, Roles: []graph.Role{graph.RoleOther}, Position: 1},
	}

	got := Resolve(candidates)
	if len(got.Contributors) != 2 {
		t.Fatalf("contributors = %d, want 2 separate nameless entries", len(got.Contributors))
	}
}

func TestResolveContributorOnlyGroup(t *testing.T) {
	candidates := []Candidate{
		{Kind: graph.AgentPerson, GivenName: "Jan", FamilyName: "Novak", Roles: []graph.Role{graph.RoleDataCurator}, Position: 0},
		{Kind: graph.AgentPerson, GivenName: "Jan", FamilyName: "Novak", Roles: []graph.Role{graph.RoleDataCurator, graph.RoleEditor}, Position: 1},
	}

	got := Resolve(candidates)
	if len(got.Authors) != 0 {
		t.Fatalf("authors = %d, want 0", len(got.Authors))
	}
	if len(got.Contributors) != 1 {
		t.Fatalf("contributors = %d, want 1", len(got.Contributors))
	}
	roles := got.Contributors[0].Roles
	if len(roles) != 2 || roles[0] != graph.RoleDataCurator || roles[1] != graph.RoleEditor {
		t.Errorf("roles = %v, want deduplicated [DataCurator Editor]", roles)
	}
}

func TestMatchStored(t *testing.T) {
	stored := []graph.Agent{
		{Kind: graph.AgentPerson, GivenName: "Maria", FamilyName: "Keller", ORCID: "0000-0002-1825-0097"},
		{Kind: graph.AgentPerson, GivenName: "Jan", FamilyName: "Smith"},
	}

	tests := []struct {
		name      string
		candidate Candidate
		want      int // index into stored, -1 for no match
	}{
		{
			name:      "identifier and name match",
			candidate: Candidate{Kind: graph.AgentPerson, GivenName: "Maria", FamilyName: "Keller", ORCID: "0000-0002-1825-0097"},
			want:      0,
		},
		{
			name:      "identifier matches but name differs",
			candidate: Candidate{Kind: graph.AgentPerson, GivenName: "M", FamilyName: "Kellermann", ORCID: "0000-0002-1825-0097"},
			want:      -1,
		},
		{
			name:      "name matches but identifier differs",
			candidate: Candidate{Kind: graph.AgentPerson, GivenName: "Maria", FamilyName: "Keller", ORCID: "0000-0001-5000-0009"},
			want:      -1,
		},
		{
			name:      "both without identifier",
			candidate: Candidate{Kind: graph.AgentPerson, GivenName: "Jan", FamilyName: "Smith"},
			want:      1,
		},
		{
			name:      "candidate lacks identifier the stored agent has",
			candidate: Candidate{Kind: graph.AgentPerson, GivenName: "Maria", FamilyName: "Keller"},
			want:      -1,
		},
		{
			name:      "umlaut variant still matches",
			candidate: Candidate{Kind: graph.AgentPerson, GivenName: "Marià", FamilyName: "Keller", ORCID: "0000-0002-1825-0097"},
			want:      -1, // accented a is not an umlaut transliteration
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchStored(tt.candidate, stored)
			if tt.want < 0 {
				if got != nil {
					t.Fatalf("matched %q, want no match", got.DisplayName())
				}
				return
			}
			if got == nil {
				t.Fatal("no match, want one")
			}
			if got != &stored[tt.want] {
				t.Errorf("matched %q, want %q", got.DisplayName(), stored[tt.want].DisplayName())
			}
		})
	}
}

func TestDedupeInstitutions(t *testing.T) {
	contributors := []graph.Contributor{
		{Agent: graph.Agent{Kind: graph.AgentInstitution, Name: "GFZ  Potsdam"}, Roles: []graph.Role{graph.RoleHostingInstitution}},
		{Agent: graph.Agent{Kind: graph.AgentPerson, GivenName: "Jan", FamilyName: "Novak"}},
		{Agent: graph.Agent{Kind: graph.AgentInstitution, Name: "gfz potsdam", ROR: "04z8jg394"}, Roles: []graph.Role{graph.RoleSponsor}},
	}

	got := DedupeInstitutions(contributors)
	if len(got) != 2 {
		t.Fatalf("contributors = %d, want 2", len(got))
	}
	inst := got[0]
	if inst.Agent.ROR != "04z8jg394" {
		t.Errorf("ROR = %q, want backfilled from duplicate", inst.Agent.ROR)
	}
	if len(inst.Roles) != 2 {
		t.Errorf("roles = %v, want both roles merged", inst.Roles)
	}
}
