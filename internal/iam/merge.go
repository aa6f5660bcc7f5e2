package iam

import (
	"cmp"
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/chasinandrew/cloud-foundation-fabric/internal/configerr"
	"github.com/chasinandrew/cloud-foundation-fabric/pkg/apis/projectfactory/v1alpha1"
)

// PolicyOps is the partitioned binding operation set handed to the external
// provisioning layer, which applies it verbatim.
//
// The Authoritative partition carries implicit revocation semantics: for
// every role present, the associated member set is exactly what the container
// must end up with. Any member the provider currently holds for that role and
// that is absent here is revoked. This is the most consequential behavior in
// the system; an empty set for a role is a valid entry that strips the role
// entirely.
//
// The Additive partition never revokes. Each grant coexists with whatever
// else holds for its role, including an authoritative entry for the same
// role.
type PolicyOps struct {
	// Authoritative maps each authoritatively-declared role to its complete
	// member set.
	Authoritative map[string]sets.Set[string]

	// Additive is the union of all (role, member) grants from additive
	// sources.
	Additive sets.Set[Grant]

	// FullPolicy, when non-nil, is the entire IAM state for the container
	// and the other two partitions are empty.
	FullPolicy map[string]sets.Set[string]
}

// Merge combines canonical bindings into a PolicyOps. All merging is plain
// set union, so the result does not depend on input order.
//
// When a full-authority policy is supplied it must be the only input;
// supplying it alongside any binding or declared role fails with a
// ConfigConflict. Callers normally run ValidateExclusive before normalizing,
// which reports the conflict with better context; the check here keeps Merge
// safe on its own.
func Merge(bindings []Binding, policy v1alpha1.IAMPolicy, declared sets.Set[string]) (*PolicyOps, error) {
	if policy != nil && (len(bindings) > 0 || declared.Len() > 0) {
		return nil, configerr.NewConfigConflict("iam.policy",
			"a full IAM policy cannot be merged with other bindings")
	}

	if policy != nil {
		full := make(map[string]sets.Set[string], len(policy))
		for role, members := range policy {
			full[role] = sets.New(members...)
		}
		return &PolicyOps{FullPolicy: full}, nil
	}

	ops := &PolicyOps{
		Authoritative: make(map[string]sets.Set[string]),
		Additive:      sets.New[Grant](),
	}

	// Declared-but-empty authoritative roles become empty sets, so the
	// revocation they express survives into the output.
	for role := range declared {
		ops.Authoritative[role] = sets.New[string]()
	}

	for _, binding := range bindings {
		if binding.Source.Authoritative() {
			members, ok := ops.Authoritative[binding.Role]
			if !ok {
				members = sets.New[string]()
				ops.Authoritative[binding.Role] = members
			}
			members.Insert(binding.Member)
			continue
		}
		ops.Additive.Insert(Grant{Role: binding.Role, Member: binding.Member})
	}

	return ops, nil
}

// AuthoritativeRoles returns the authoritative partition's roles in sorted
// order, for deterministic output.
func (o *PolicyOps) AuthoritativeRoles() []string {
	return sets.List(sets.KeySet(o.Authoritative))
}

// AdditiveGrants returns the additive partition as a slice ordered by role
// then member.
func (o *PolicyOps) AdditiveGrants() []Grant {
	grants := o.Additive.UnsortedList()
	slices.SortFunc(grants, func(a, b Grant) int {
		if c := cmp.Compare(a.Role, b.Role); c != 0 {
			return c
		}
		return cmp.Compare(a.Member, b.Member)
	})
	return grants
}
