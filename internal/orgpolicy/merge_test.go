package orgpolicy_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/chasinandrew/cloud-foundation-fabric/internal/configerr"
	"github.com/chasinandrew/cloud-foundation-fabric/internal/orgpolicy"
	"github.com/chasinandrew/cloud-foundation-fabric/pkg/apis/projectfactory/v1alpha1"
)

func TestMergeInlineReplacesLoadedWholesale(t *testing.T) {
	loaded := map[string]v1alpha1.OrgPolicy{
		"compute.vmExternalIpAccess": {
			InheritFromParent: ptr.To(true),
			Rules: []v1alpha1.PolicyRule{
				{Deny: &v1alpha1.PolicyRuleValues{All: true}},
			},
		},
		"iam.disableServiceAccountKeyCreation": {
			Rules: []v1alpha1.PolicyRule{
				{Enforce: ptr.To(true)},
			},
		},
	}
	inline := map[string]v1alpha1.OrgPolicy{
		"compute.vmExternalIpAccess": {
			Rules: []v1alpha1.PolicyRule{
				{Allow: &v1alpha1.PolicyRuleValues{Values: []string{"projects/test/zones/a/instances/vm"}}},
			},
		},
	}

	merged, err := orgpolicy.Merge(loaded, inline)
	require.NoError(t, err)
	require.Len(t, merged, 2)

	// Replacement is whole-object: nothing from the loaded declaration
	// survives, not even fields the inline one left unset.
	got := merged["compute.vmExternalIpAccess"]
	assert.Nil(t, got.InheritFromParent)
	if diff := cmp.Diff(inline["compute.vmExternalIpAccess"], got); diff != "" {
		t.Errorf("inline policy not taken verbatim (-want +got):\n%s", diff)
	}

	// Keys present only in the loaded map pass through unchanged.
	if diff := cmp.Diff(loaded["iam.disableServiceAccountKeyCreation"], merged["iam.disableServiceAccountKeyCreation"]); diff != "" {
		t.Errorf("loaded-only policy altered (-want +got):\n%s", diff)
	}
}

func TestMergeNormalizesShorthand(t *testing.T) {
	loaded := map[string]v1alpha1.OrgPolicy{
		"iam.disableServiceAccountKeyCreation": {Enforce: ptr.To(true)},
		"compute.trustedImageProjects": {
			Allow: &v1alpha1.PolicyRuleValues{Values: []string{"projects/trusted"}},
		},
	}

	merged, err := orgpolicy.Merge(loaded, nil)
	require.NoError(t, err)

	enforce := merged["iam.disableServiceAccountKeyCreation"]
	require.Len(t, enforce.Rules, 1)
	assert.Nil(t, enforce.Enforce, "shorthand must be folded into the rules list")
	require.NotNil(t, enforce.Rules[0].Enforce)
	assert.True(t, *enforce.Rules[0].Enforce)

	allow := merged["compute.trustedImageProjects"]
	require.Len(t, allow.Rules, 1)
	require.NotNil(t, allow.Rules[0].Allow)
	assert.Equal(t, []string{"projects/trusted"}, allow.Rules[0].Allow.Values)
}

func TestMergePreservesRuleOrder(t *testing.T) {
	policy := v1alpha1.OrgPolicy{
		Rules: []v1alpha1.PolicyRule{
			{
				Allow: &v1alpha1.PolicyRuleValues{All: true},
				Condition: &v1alpha1.PolicyRuleCondition{
					Expression: "resource.matchTagId('tagKeys/1', 'tagValues/1')",
					Title:      "exempted",
				},
			},
			{Deny: &v1alpha1.PolicyRuleValues{All: true}},
		},
	}

	merged, err := orgpolicy.Merge(map[string]v1alpha1.OrgPolicy{"compute.vmExternalIpAccess": policy}, nil)
	require.NoError(t, err)

	rules := merged["compute.vmExternalIpAccess"].Rules
	require.Len(t, rules, 2)
	assert.NotNil(t, rules[0].Condition, "conditioned rule must stay first")
	assert.NotNil(t, rules[1].Deny)
}

func TestMergeRejectsMalformedRules(t *testing.T) {
	testCases := []struct {
		name   string
		policy v1alpha1.OrgPolicy
	}{
		{
			name: "enforce and allow in one rule",
			policy: v1alpha1.OrgPolicy{
				Rules: []v1alpha1.PolicyRule{
					{Enforce: ptr.To(true), Allow: &v1alpha1.PolicyRuleValues{All: true}},
				},
			},
		},
		{
			name: "allow without all or values",
			policy: v1alpha1.OrgPolicy{
				Rules: []v1alpha1.PolicyRule{
					{Allow: &v1alpha1.PolicyRuleValues{}},
				},
			},
		},
		{
			name: "deny with both all and values",
			policy: v1alpha1.OrgPolicy{
				Rules: []v1alpha1.PolicyRule{
					{Deny: &v1alpha1.PolicyRuleValues{All: true, Values: []string{"x"}}},
				},
			},
		},
		{
			name: "empty rule",
			policy: v1alpha1.OrgPolicy{
				Rules: []v1alpha1.PolicyRule{{}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := orgpolicy.Merge(map[string]v1alpha1.OrgPolicy{"custom.constraint": tc.policy}, nil)
			require.Error(t, err)
			assert.True(t, configerr.IsInvalidPolicyRule(err), "expected InvalidPolicyRule, got %v", err)
		})
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	loaded := map[string]v1alpha1.OrgPolicy{
		"iam.disableServiceAccountKeyCreation": {Enforce: ptr.To(true)},
	}
	inline := map[string]v1alpha1.OrgPolicy{
		"iam.disableServiceAccountKeyCreation": {Enforce: ptr.To(false)},
	}

	_, err := orgpolicy.Merge(loaded, inline)
	require.NoError(t, err)

	assert.NotNil(t, loaded["iam.disableServiceAccountKeyCreation"].Enforce,
		"loaded input must not be normalized in place")
	assert.Empty(t, loaded["iam.disableServiceAccountKeyCreation"].Rules)
}
