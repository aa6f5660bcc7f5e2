// Package iam composes the five IAM input shapes into one canonical,
// side-effect-free set of binding operations. The package is pure: every
// function takes immutable inputs and returns fresh values, so a
// reconciliation pass can run the composition any number of times with the
// same result.
package iam

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/chasinandrew/cloud-foundation-fabric/pkg/apis/projectfactory/v1alpha1"
)

// Source tags a binding with the input shape it came from. The tag decides
// the binding's authority semantics during the merge, and is preserved in
// diagnostics.
type Source string

const (
	// SourceGroup marks bindings expanded from a named binding group. Group
	// bindings are authoritative for their role; the distinct tag exists only
	// so diagnostics can point back at the group label.
	SourceGroup Source = "Group"

	// SourceRoleAuthoritative marks bindings expanded from the role-keyed
	// authoritative map. The member set declared for a role is complete:
	// members not listed are revoked.
	SourceRoleAuthoritative Source = "RoleAuthoritative"

	// SourceRoleAdditive marks bindings expanded from the role-keyed additive
	// map. Each (role, member) pair is an independent grant.
	SourceRoleAdditive Source = "RoleAdditive"

	// SourceMemberAdditive marks bindings expanded from the member-keyed
	// additive map. Identical semantics to SourceRoleAdditive.
	SourceMemberAdditive Source = "MemberAdditive"
)

// Authoritative reports whether bindings from this source own their role's
// complete member set.
func (s Source) Authoritative() bool {
	return s == SourceGroup || s == SourceRoleAuthoritative
}

// Binding is the canonical form every IAM input shape is normalized into:
// one role, one member, one source tag.
type Binding struct {
	Role   string
	Member string
	Source Source
}

// Grant is a (role, member) pair from an additive source. Grants are
// independent facts: they never replace or revoke anything.
type Grant struct {
	Role   string
	Member string
}

// Normalize expands the four binding shapes of an IAMConfig into canonical
// bindings. The full-authority Policy shape is not expanded here; it bypasses
// normalization entirely because, when present, it alone is the IAM state.
//
// Normalize performs no deduplication. Duplicate (role, member) pairs across
// shapes are legal and collapse during the merge.
func Normalize(cfg *v1alpha1.IAMConfig) []Binding {
	var bindings []Binding

	for role, members := range cfg.Roles {
		for _, member := range members {
			bindings = append(bindings, Binding{Role: role, Member: member, Source: SourceRoleAuthoritative})
		}
	}
	for _, group := range cfg.Bindings {
		for _, member := range group.Members {
			bindings = append(bindings, Binding{Role: group.Role, Member: member, Source: SourceGroup})
		}
	}
	for role, members := range cfg.RolesAdditive {
		for _, member := range members {
			bindings = append(bindings, Binding{Role: role, Member: member, Source: SourceRoleAdditive})
		}
	}
	for member, roles := range cfg.ByPrincipals {
		for _, role := range roles {
			bindings = append(bindings, Binding{Role: role, Member: member, Source: SourceMemberAdditive})
		}
	}

	return bindings
}

// DeclaredAuthoritativeRoles returns every role named by an authoritative
// shape, whether or not it has members. A role declared with an empty member
// list carries real meaning (revoke every binding for the role), so the merge
// must see it even though no canonical Binding is produced for it.
func DeclaredAuthoritativeRoles(cfg *v1alpha1.IAMConfig) sets.Set[string] {
	declared := sets.New[string]()
	for role := range cfg.Roles {
		declared.Insert(role)
	}
	for _, group := range cfg.Bindings {
		declared.Insert(group.Role)
	}
	return declared
}
