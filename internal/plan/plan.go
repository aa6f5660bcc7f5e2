// Package plan assembles the canonical operation set for one reconciliation
// pass: the merged IAM bindings, the effective organization policies, and the
// service identity dependencies the provisioning layer must sequence. The
// plan is the system's only output; nothing in this package talks to a
// provider.
package plan

import (
	"github.com/chasinandrew/cloud-foundation-fabric/internal/serviceagent"
	"github.com/chasinandrew/cloud-foundation-fabric/pkg/apis/projectfactory/v1alpha1"
)

// Mode states which IAM partition scheme the plan carries.
type Mode string

const (
	// ModeBindings is the normal partitioned output: authoritative role
	// bindings plus additive grants.
	ModeBindings Mode = "Bindings"

	// ModeFullPolicy means a full-authority policy was supplied and is the
	// entire IAM state; the authoritative and additive partitions are empty.
	ModeFullPolicy Mode = "FullPolicy"
)

// Plan is the validated canonical operation set produced by one pass. It is
// complete or absent: on any composition error no plan is returned. All
// slices are sorted so equal inputs yield byte-identical serialized plans.
type Plan struct {
	Metadata Metadata `json:"metadata"`

	IAM IAMPlan `json:"iam"`

	// OrgPolicies is the effective constraint set after merging file-loaded
	// and inline declarations, inline winning per constraint.
	OrgPolicies map[string]v1alpha1.OrgPolicy `json:"orgPolicies,omitempty"`

	// ServiceIdentities lists identities the provisioning layer must create
	// unconditionally at container creation time.
	ServiceIdentities []serviceagent.ServiceIdentity `json:"serviceIdentities,omitempty"`

	// Dependencies are ordering edges: each names a binding that may only be
	// applied after the referenced service identity has been materialized.
	Dependencies []DependencyEdge `json:"dependencies,omitempty"`

	// Discovery maps shortcode to principal for identities already
	// resolvable from static inputs, for reuse by other passes.
	Discovery map[string]string `json:"discovery,omitempty"`
}

// Metadata identifies the pass and the container it plans for.
type Metadata struct {
	// UID is a fresh identifier minted per pass, for correlating logs and
	// provisioning calls.
	UID string `json:"uid"`

	ProjectID string `json:"projectID"`
	Parent    string `json:"parent"`
}

// IAMPlan is the partitioned binding operation set.
type IAMPlan struct {
	Mode Mode `json:"mode"`

	// Authoritative carries one entry per authoritatively-declared role with
	// the role's complete member set. Members absent from an entry are
	// revoked by the provisioning layer; an entry with no members strips the
	// role entirely.
	Authoritative []RoleBindingOp `json:"authoritative,omitempty"`

	// Additive carries independent grants that never revoke anything.
	Additive []GrantOp `json:"additive,omitempty"`

	// FullPolicy is the entire IAM state when Mode is ModeFullPolicy.
	FullPolicy []RoleBindingOp `json:"fullPolicy,omitempty"`
}

// RoleBindingOp binds a complete, sorted member set to one role.
type RoleBindingOp struct {
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

// GrantOp adds a single member to a role without owning the role's member
// set.
type GrantOp struct {
	Role   string `json:"role"`
	Member string `json:"member"`
}

// DependencyEdge sequences one binding after one identity materialization.
type DependencyEdge struct {
	// Role and Member identify the binding; Member is in its symbolic
	// "serviceAgent:" form.
	Role   string `json:"role"`
	Member string `json:"member"`

	// Shortcode and Service identify the identity that must exist first.
	Shortcode string `json:"shortcode"`
	Service   string `json:"service"`
}
