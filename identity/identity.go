// Package identity deduplicates agent appearances into canonical
// identities.
//
// A person can appear several times for one resource: as a creator, again
// as a point of contact under a slightly different spelling, and once more
// in a contributor list with an extra role. Resolve collapses those
// appearances into one identity per person while keeping genuinely
// different people apart. The resolver is a pure function over its input;
// it performs no I/O and never fails. When the evidence is ambiguous it
// keeps identities separate: duplicate entries are recoverable, silently
// merged strangers are not.
package identity

import (
	"strings"

	"github.com/McNamara84/ernie-sub002/graph"
	"github.com/McNamara84/ernie-sub002/helpers"
)

// Candidate is one appearance of an agent in the input, in any role.
type Candidate struct {
	Kind graph.AgentKind

	GivenName  string
	FamilyName string
	ORCID      string

	// Name is the institution name for institution candidates.
	Name string
	ROR  string

	Roles        []graph.Role
	Email        string
	Website      string
	Affiliations []graph.Affiliation

	// Position is the ordinal of the appearance in the input.
	Position int

	// IsAuthor marks appearances from the creator list. Groups containing
	// at least one author appearance emit an Author and are dropped from
	// the contributor output entirely.
	IsAuthor bool
}

// Agent converts the candidate to its graph agent form.
func (c Candidate) Agent() graph.Agent {
	return graph.Agent{
		Kind:         c.Kind,
		GivenName:    strings.TrimSpace(c.GivenName),
		FamilyName:   strings.TrimSpace(c.FamilyName),
		ORCID:        graph.NormalizeIdentifier(c.ORCID, graph.IdentifierORCID),
		Name:         helpers.NormalizeWhitespace(c.Name),
		ROR:          graph.NormalizeIdentifier(c.ROR, graph.IdentifierROR),
		Affiliations: c.Affiliations,
	}
}

// Key returns the normalized comparison key for the candidate's display
// name.
func (c Candidate) Key() string {
	return helpers.NormalizeKey(c.Agent().DisplayName())
}

func (c Candidate) identifier() string {
	return c.Agent().Identifier()
}

func (c Candidate) isContact() bool {
	for _, r := range c.Roles {
		if r.IsContact() {
			return true
		}
	}
	return false
}

// Resolution is the output of Resolve: deduplicated author and
// contributor lists with contact flags set and roles accumulated.
type Resolution struct {
	Authors      []graph.Author
	Contributors []graph.Contributor
}

type group struct {
	members []Candidate
	first   int // position of the first-seen member
}

// Resolve groups the candidate appearances into canonical identities.
//
// Appearances group by normalized display-name key. Within a name group,
// distinct non-empty identifiers (ORCID, or ROR for institutions) split
// the group: the same name with two ORCIDs is two people. Identifier-less
// appearances join the identified subgroup only when the name group holds
// at most one distinct identifier; with conflicting identifiers in play
// they stay on their own rather than guess.
func Resolve(candidates []Candidate) Resolution {
	groups := bucketCandidates(candidates)

	var resolution Resolution
	for _, g := range groups {
		if containsAuthor(g.members) {
			resolution.Authors = append(resolution.Authors, buildAuthor(g.members))
		} else {
			resolution.Contributors = append(resolution.Contributors, buildContributor(g.members))
		}
	}

	for i := range resolution.Authors {
		resolution.Authors[i].Position = i
	}
	for i := range resolution.Contributors {
		resolution.Contributors[i].Position = i
	}
	return resolution
}

// bucketCandidates groups appearances by (name key, identifier subkey),
// preserving first-seen order.
func bucketCandidates(candidates []Candidate) []*group {
	// Distinct non-empty identifiers per name key decide whether
	// identifier-less appearances may join an identified subgroup.
	idsByName := make(map[string]map[string]bool)
	for _, c := range candidates {
		key := c.Key()
		if key == "" {
			continue
		}
		if id := c.identifier(); id != "" {
			if idsByName[key] == nil {
				idsByName[key] = make(map[string]bool)
			}
			idsByName[key][id] = true
		}
	}

	var ordered []*group
	index := make(map[[2]string]*group)
	for i, c := range candidates {
		key := c.Key()
		if key == "" {
			// Nameless appearances never merge with anything.
			ordered = append(ordered, &group{members: []Candidate{c}, first: i})
			continue
		}

		subkey := c.identifier()
		if subkey == "" && len(idsByName[key]) == 1 {
			for id := range idsByName[key] {
				subkey = id
			}
		}

		bucket := [2]string{key, subkey}
		if g, ok := index[bucket]; ok {
			g.members = append(g.members, c)
			continue
		}
		g := &group{members: []Candidate{c}, first: i}
		index[bucket] = g
		ordered = append(ordered, g)
	}
	return ordered
}

func containsAuthor(members []Candidate) bool {
	for _, m := range members {
		if m.IsAuthor {
			return true
		}
	}
	return false
}

// canonicalAgent merges the group members into one agent. The first
// member provides the display name parts (for author groups, the first
// author appearance); later members only fill parts the canonical member
// left empty, and contribute identifiers and affiliations.
func canonicalAgent(members []Candidate) graph.Agent {
	primary := members[0]
	for _, m := range members {
		if m.IsAuthor {
			primary = m
			break
		}
	}

	agent := primary.Agent()
	for _, m := range members {
		other := m.Agent()
		if agent.GivenName == "" {
			agent.GivenName = other.GivenName
		}
		if agent.FamilyName == "" {
			agent.FamilyName = other.FamilyName
		}
		if agent.Name == "" {
			agent.Name = other.Name
		}
		if agent.ORCID == "" {
			agent.ORCID = other.ORCID
		}
		if agent.ROR == "" {
			agent.ROR = other.ROR
		}
		agent.Affiliations = graph.MergeAffiliations(agent.Affiliations, other.Affiliations)
	}
	return agent
}

func mergedRoles(members []Candidate) []graph.Role {
	var roles []graph.Role
	for _, m := range members {
		roles = graph.MergeRoles(roles, m.Roles)
	}
	return roles
}

func buildAuthor(members []Candidate) graph.Author {
	author := graph.Author{
		Agent: canonicalAgent(members),
		Roles: mergedRoles(members),
	}

	// Contact metadata comes preferentially from the member that carries
	// the contact role, even when that member is not the one naming the
	// canonical identity.
	for _, m := range members {
		if m.isContact() {
			author.IsContact = true
			if author.Email == "" {
				author.Email = strings.TrimSpace(m.Email)
			}
			if author.Website == "" {
				author.Website = strings.TrimSpace(m.Website)
			}
		}
	}
	for _, m := range members {
		if author.Email == "" {
			author.Email = strings.TrimSpace(m.Email)
		}
		if author.Website == "" {
			author.Website = strings.TrimSpace(m.Website)
		}
	}
	return author
}

func buildContributor(members []Candidate) graph.Contributor {
	return graph.Contributor{
		Agent: canonicalAgent(members),
		Roles: mergedRoles(members),
	}
}

// MatchStored decides whether a candidate may reuse a pre-existing stored
// agent. Reuse requires the identifier AND the normalized display-name key
// to match; an identifier match alone must not link the candidate to an
// unrelated record, and a bare name match with disagreeing identifiers
// must not rename an existing one. Returns nil when no stored agent
// qualifies.
func MatchStored(c Candidate, stored []graph.Agent) *graph.Agent {
	key := c.Key()
	if key == "" {
		return nil
	}
	id := c.identifier()

	for i := range stored {
		if helpers.NormalizeKey(stored[i].DisplayName()) != key {
			continue
		}
		if stored[i].Identifier() != id {
			continue
		}
		return &stored[i]
	}
	return nil
}

// DedupeInstitutions collapses institution contributors whose names are
// equal after whitespace normalization, ignoring case. Role lists merge
// onto the first occurrence.
func DedupeInstitutions(contributors []graph.Contributor) []graph.Contributor {
	seen := make(map[string]int)
	var out []graph.Contributor
	for _, c := range contributors {
		if c.Agent.IsPerson() {
			out = append(out, c)
			continue
		}
		key := strings.ToLower(helpers.NormalizeWhitespace(c.Agent.Name))
		if i, ok := seen[key]; ok {
			out[i].Roles = graph.MergeRoles(out[i].Roles, c.Roles)
			if out[i].Agent.ROR == "" {
				out[i].Agent.ROR = c.Agent.ROR
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, c)
	}
	for i := range out {
		out[i].Position = i
	}
	return out
}
