package graph

import "strings"

// AgentKind tags the two agent variants.
type AgentKind string

const (
	AgentPerson      AgentKind = "Person"
	AgentInstitution AgentKind = "Institution"
)

// Affiliation is an institutional affiliation of a person.
type Affiliation struct {
	Name string `json:"name"`
	ROR  string `json:"ror,omitempty"`
}

// Agent is a person or an institution. Person agents use GivenName,
// FamilyName and ORCID; institution agents use Name and ROR. The display
// string is always preserved as entered; normalization happens only on
// comparison keys.
type Agent struct {
	Kind AgentKind `json:"kind"`

	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
	ORCID      string `json:"orcid,omitempty"`

	Name string `json:"name,omitempty"`
	ROR  string `json:"ror,omitempty"`

	Affiliations []Affiliation `json:"affiliations,omitempty"`
}

// IsPerson reports whether the agent is a person.
func (a Agent) IsPerson() bool {
	return a.Kind != AgentInstitution
}

// DisplayName returns the agent's name in "Family, Given" form for people,
// or whichever part exists; institutions return their name as is.
func (a Agent) DisplayName() string {
	if !a.IsPerson() {
		return strings.TrimSpace(a.Name)
	}
	family := strings.TrimSpace(a.FamilyName)
	given := strings.TrimSpace(a.GivenName)
	switch {
	case family != "" && given != "":
		return family + ", " + given
	case family != "":
		return family
	default:
		return given
	}
}

// Identifier returns the agent's persistent identifier, ORCID for people
// and ROR for institutions.
func (a Agent) Identifier() string {
	if a.IsPerson() {
		return a.ORCID
	}
	return a.ROR
}

// Author is a creator link on a resource. The link carries position and
// contact metadata; the Agent itself may be shared across links.
type Author struct {
	Agent     Agent  `json:"agent"`
	Position  int    `json:"position"`
	IsContact bool   `json:"isContact,omitempty"`
	Email     string `json:"email,omitempty"`
	Website   string `json:"website,omitempty"`
	Roles     []Role `json:"roles,omitempty"`
}

// HasRole reports whether the author carries the given role.
func (a Author) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Contributor is a non-creator agent link with one or more roles.
type Contributor struct {
	Agent    Agent  `json:"agent"`
	Position int    `json:"position"`
	Roles    []Role `json:"roles,omitempty"`
}

// HasRole reports whether the contributor carries the given role.
func (c Contributor) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// MergeAffiliations appends affiliations not already present, comparing
// names with internal whitespace collapsed and case ignored.
func MergeAffiliations(existing []Affiliation, more []Affiliation) []Affiliation {
	seen := make(map[string]int, len(existing))
	for i, aff := range existing {
		seen[affiliationKey(aff.Name)] = i
	}
	for _, aff := range more {
		if strings.TrimSpace(aff.Name) == "" {
			continue
		}
		key := affiliationKey(aff.Name)
		if i, ok := seen[key]; ok {
			if existing[i].ROR == "" && aff.ROR != "" {
				existing[i].ROR = aff.ROR
			}
			continue
		}
		existing = append(existing, aff)
		seen[key] = len(existing) - 1
	}
	return existing
}

func affiliationKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
