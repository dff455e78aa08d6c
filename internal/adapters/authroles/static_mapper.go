package authroles

import (
	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
)

// StaticRoleMapper maps SSO group claims by simple string membership rules.
// Membership in AdminGroup wins; everyone else authenticates as a student.
type StaticRoleMapper struct {
	AdminGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	return domainauth.RoleStudent
}
