// Package orgpolicy merges organization policy constraint declarations from
// their two sources: inline configuration and factory-loaded files.
package orgpolicy

import (
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/chasinandrew/cloud-foundation-fabric/internal/configerr"
	"github.com/chasinandrew/cloud-foundation-fabric/pkg/apis/projectfactory/v1alpha1"
)

// Merge combines file-loaded and inline constraint declarations into the
// effective policy set. Precedence is whole-object: for every constraint
// declared by both sources the inline policy replaces the loaded one
// entirely, with no field-level merging. Constraints declared by only one
// source pass through unchanged.
//
// Every policy is normalized (shorthand folded into rules) and its rule
// shapes validated; a malformed rule fails the merge with an
// InvalidPolicyRule naming the constraint. Merge never mutates its inputs
// and returns a fresh map.
func Merge(loaded, inline map[string]v1alpha1.OrgPolicy) (map[string]v1alpha1.OrgPolicy, error) {
	merged := make(map[string]v1alpha1.OrgPolicy, len(loaded)+len(inline))

	for name, policy := range loaded {
		normalized, err := normalize(name, policy)
		if err != nil {
			return nil, err
		}
		merged[name] = normalized
	}
	for name, policy := range inline {
		normalized, err := normalize(name, policy)
		if err != nil {
			return nil, err
		}
		merged[name] = normalized
	}

	return merged, nil
}

func normalize(name string, policy v1alpha1.OrgPolicy) (v1alpha1.OrgPolicy, error) {
	if errs := v1alpha1.ValidateOrgPolicy(field.NewPath(name), policy); len(errs) > 0 {
		return v1alpha1.OrgPolicy{}, configerr.NewInvalidPolicyRule(name, errs.ToAggregate().Error())
	}
	return policy.Normalize(), nil
}
