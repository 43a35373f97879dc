package graph

import "strings"

// Role is the closed role vocabulary for agent links. It mirrors the
// DataCite contributorType list plus the authorship marker. Free-text
// labels from upstream systems parse through ParseRole, which falls back
// to RoleOther rather than failing.
type Role string

const (
	RoleCreator               Role = "Creator"
	RoleContactPerson         Role = "ContactPerson"
	RoleDataCollector         Role = "DataCollector"
	RoleDataCurator           Role = "DataCurator"
	RoleDataManager           Role = "DataManager"
	RoleDistributor           Role = "Distributor"
	RoleEditor                Role = "Editor"
	RoleHostingInstitution    Role = "HostingInstitution"
	RoleProducer              Role = "Producer"
	RoleProjectLeader         Role = "ProjectLeader"
	RoleProjectManager        Role = "ProjectManager"
	RoleProjectMember         Role = "ProjectMember"
	RoleRegistrationAgency    Role = "RegistrationAgency"
	RoleRegistrationAuthority Role = "RegistrationAuthority"
	RoleRelatedPerson         Role = "RelatedPerson"
	RoleResearcher            Role = "Researcher"
	RoleResearchGroup         Role = "ResearchGroup"
	RoleRightsHolder          Role = "RightsHolder"
	RoleSponsor               Role = "Sponsor"
	RoleSupervisor            Role = "Supervisor"
	RoleTranslator            Role = "Translator"
	RoleWorkPackageLeader     Role = "WorkPackageLeader"
	RoleOther                 Role = "Other"
)

// roleLabels maps collapsed free-text labels to roles. Keys are lower-case
// with spaces, hyphens and underscores removed, so "pointOfContact",
// "Point of Contact" and "point-of-contact" all land on the same entry.
var roleLabels = map[string]Role{
	"creator":               RoleCreator,
	"author":                RoleCreator,
	"contactperson":         RoleContactPerson,
	"pointofcontact":        RoleContactPerson,
	"contact":               RoleContactPerson,
	"datacollector":         RoleDataCollector,
	"collector":             RoleDataCollector,
	"datacurator":           RoleDataCurator,
	"curator":               RoleDataCurator,
	"datamanager":           RoleDataManager,
	"distributor":           RoleDistributor,
	"editor":                RoleEditor,
	"hostinginstitution":    RoleHostingInstitution,
	"producer":              RoleProducer,
	"projectleader":         RoleProjectLeader,
	"projectmanager":        RoleProjectManager,
	"projectmember":         RoleProjectMember,
	"registrationagency":    RoleRegistrationAgency,
	"registrationauthority": RoleRegistrationAuthority,
	"relatedperson":         RoleRelatedPerson,
	"researcher":            RoleResearcher,
	"researchgroup":         RoleResearchGroup,
	"rightsholder":          RoleRightsHolder,
	"sponsor":               RoleSponsor,
	"funder":                RoleSponsor,
	"supervisor":            RoleSupervisor,
	"translator":            RoleTranslator,
	"workpackageleader":     RoleWorkPackageLeader,
	"other":                 RoleOther,
}

// ParseRole maps a free-text role label to the closed vocabulary.
// Unrecognized labels become RoleOther; an empty label stays empty so
// callers can tell "no role given" from "unknown role".
func ParseRole(label string) Role {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}
	key := strings.ToLower(trimmed)
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	if role, ok := roleLabels[key]; ok {
		return role
	}
	return RoleOther
}

// IsContact reports whether the role carries point-of-contact semantics.
func (r Role) IsContact() bool {
	return r == RoleContactPerson
}

// IsAuthorship reports whether the role marks a creator.
func (r Role) IsAuthorship() bool {
	return r == RoleCreator
}

// ContributorType returns the DataCite contributorType string for the role.
// Creator has no contributorType; it reports Other so that a creator role
// leaking into a contributor list still serializes to valid output.
func (r Role) ContributorType() string {
	if r == "" || r == RoleCreator {
		return string(RoleOther)
	}
	return string(r)
}

// AppendRole appends role to roles unless it is empty or already present,
// preserving first-seen order.
func AppendRole(roles []Role, role Role) []Role {
	if role == "" {
		return roles
	}
	for _, r := range roles {
		if r == role {
			return roles
		}
	}
	return append(roles, role)
}

// MergeRoles folds every role in more into roles, first-seen order kept.
func MergeRoles(roles []Role, more []Role) []Role {
	for _, r := range more {
		roles = AppendRole(roles, r)
	}
	return roles
}
