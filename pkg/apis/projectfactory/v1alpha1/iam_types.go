package v1alpha1

// IAMConfig carries the five IAM input shapes. The shapes differ in authority
// semantics, not just layout:
//
//   - Roles and Bindings are authoritative per role: the member set declared
//     for a role is the complete set for that role, and any member not listed
//     is implicitly revoked.
//   - RolesAdditive and ByPrincipals are additive: each (role, member) pair is
//     an independent grant that never revokes anything.
//   - Policy, when present, is the entire IAM state for the container and is
//     mutually exclusive with every other shape.
//
// Duplicate declarations across shapes are legal; deduplication happens when
// the shapes are merged, not here.
type IAMConfig struct {
	// Roles binds a complete member list to each role, keyed by role name.
	// Authoritative: members absent from a listed role are revoked.
	//
	// Example:
	//   roles:
	//     roles/viewer: ["group:devs@example.com"]
	// +kubebuilder:validation:Optional
	Roles map[string][]string `json:"roles,omitempty"`

	// Bindings declares named groups of authoritative bindings. The key is a
	// logical label used only in diagnostics and output; each value binds a
	// complete member list to one role, with the same implicit-revocation
	// semantics as Roles. Two bindings (or a binding and a Roles entry)
	// naming the same role contribute to a single unioned member set.
	// +kubebuilder:validation:Optional
	Bindings map[string]GroupBinding `json:"bindings,omitempty"`

	// RolesAdditive grants members to roles without taking ownership of the
	// role's member set, keyed by role name. Grants here coexist with any
	// authoritative bindings for the same role.
	// +kubebuilder:validation:Optional
	RolesAdditive map[string][]string `json:"rolesAdditive,omitempty"`

	// ByPrincipals grants roles to members, keyed by member. A convenience
	// transposition of RolesAdditive with identical additive semantics.
	//
	// Example:
	//   byPrincipals:
	//     group:devs@example.com: ["roles/viewer", "roles/browser"]
	// +kubebuilder:validation:Optional
	ByPrincipals map[string][]string `json:"byPrincipals,omitempty"`

	// Policy, when non-nil, is the full IAM policy for the container: the
	// complete role to member-set mapping, replacing every other shape. A
	// role absent from the policy has zero bindings. Mutually exclusive with
	// all other fields of IAMConfig.
	// +kubebuilder:validation:Optional
	Policy IAMPolicy `json:"policy,omitempty"`
}

// GroupBinding binds a complete member list to a single role under a logical
// label chosen by the configuration author.
type GroupBinding struct {
	// Role is the role being bound. Role names are opaque to this system;
	// the provider validates them.
	// +kubebuilder:validation:Required
	Role string `json:"role"`

	// Members is the complete member set for the role. Members are principal
	// identifiers ("user:", "group:", "serviceAccount:") or service identity
	// shortcodes. An empty list revokes every binding for the role.
	// +kubebuilder:validation:Required
	Members []string `json:"members"`
}

// IAMPolicy is a full-authority role to members mapping. A nil map means "no
// policy supplied"; an empty non-nil map is a valid policy that revokes
// everything.
type IAMPolicy map[string][]string

// Empty reports whether no IAM input shape carries any data. The Policy shape
// is intentionally excluded: a non-nil Policy alongside any other non-empty
// shape is a configuration conflict, and the distinction matters to that
// check.
func (c *IAMConfig) Empty() bool {
	return len(c.Roles) == 0 &&
		len(c.Bindings) == 0 &&
		len(c.RolesAdditive) == 0 &&
		len(c.ByPrincipals) == 0
}
