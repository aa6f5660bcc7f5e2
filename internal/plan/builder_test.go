package plan_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chasinandrew/cloud-foundation-fabric/internal/configerr"
	"github.com/chasinandrew/cloud-foundation-fabric/internal/plan"
	"github.com/chasinandrew/cloud-foundation-fabric/pkg/apis/projectfactory/v1alpha1"
)

func baseConfig() *v1alpha1.ProjectConfig {
	return &v1alpha1.ProjectConfig{
		Spec: v1alpha1.ProjectConfigSpec{
			Parent:    "folders/1234567890",
			ProjectID: "test-project",
		},
	}
}

func TestBuildAuthoritativeAndAdditiveCoexist(t *testing.T) {
	cfg := baseConfig()
	cfg.Spec.IAM = v1alpha1.IAMConfig{
		Roles: map[string][]string{
			"roles/viewer": {"group:b@example.com"},
		},
		RolesAdditive: map[string][]string{
			"roles/viewer": {"group:a@example.com"},
		},
	}

	builder := &plan.Builder{}
	p, err := builder.Build(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, plan.ModeBindings, p.IAM.Mode)
	assert.Equal(t, []plan.RoleBindingOp{
		{Role: "roles/viewer", Members: []string{"group:b@example.com"}},
	}, p.IAM.Authoritative)
	assert.Equal(t, []plan.GrantOp{
		{Role: "roles/viewer", Member: "group:a@example.com"},
	}, p.IAM.Additive)
}

func TestBuildDeferredShortcodeRecordsDependency(t *testing.T) {
	cfg := baseConfig()
	cfg.Spec.IAM = v1alpha1.IAMConfig{
		RolesAdditive: map[string][]string{
			"roles/editor": {"cloudservices"},
		},
	}

	builder := &plan.Builder{}
	p, err := builder.Build(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []plan.GrantOp{
		{Role: "roles/editor", Member: "serviceAgent:cloudservices"},
	}, p.IAM.Additive)
	assert.Equal(t, []plan.DependencyEdge{
		{
			Role:      "roles/editor",
			Member:    "serviceAgent:cloudservices",
			Shortcode: "cloudservices",
			Service:   "cloudresourcemanager.googleapis.com",
		},
	}, p.Dependencies)
}

func TestBuildEagerShortcodeRewritesAndDiscovers(t *testing.T) {
	cfg := baseConfig()
	cfg.Spec.IAM = v1alpha1.IAMConfig{
		Roles: map[string][]string{
			"roles/appengine.appAdmin": {"gae"},
		},
	}

	builder := &plan.Builder{}
	p, err := builder.Build(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []plan.RoleBindingOp{
		{
			Role:    "roles/appengine.appAdmin",
			Members: []string{"serviceAccount:test-project@appspot.gserviceaccount.com"},
		},
	}, p.IAM.Authoritative)
	assert.Empty(t, p.Dependencies)
	assert.Equal(t, map[string]string{
		"gae": "test-project@appspot.gserviceaccount.com",
	}, p.Discovery)
}

func TestBuildFullPolicyConflict(t *testing.T) {
	cfg := baseConfig()
	cfg.Spec.IAM = v1alpha1.IAMConfig{
		Roles:  map[string][]string{"roles/viewer": {"group:devs@example.com"}},
		Policy: v1alpha1.IAMPolicy{"roles/owner": {"group:admins@example.com"}},
	}

	builder := &plan.Builder{}
	p, err := builder.Build(cfg, nil)
	require.Error(t, err)
	assert.True(t, configerr.IsConfigConflict(err))
	assert.Nil(t, p, "no partial plan may be produced on failure")
}

func TestBuildFullPolicyMode(t *testing.T) {
	cfg := baseConfig()
	cfg.Spec.IAM = v1alpha1.IAMConfig{
		Policy: v1alpha1.IAMPolicy{
			"roles/owner":  {"group:admins@example.com"},
			"roles/viewer": {"group:devs@example.com", "cloudservices"},
		},
	}

	builder := &plan.Builder{}
	p, err := builder.Build(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, plan.ModeFullPolicy, p.IAM.Mode)
	assert.Empty(t, p.IAM.Authoritative)
	assert.Empty(t, p.IAM.Additive)
	assert.Equal(t, []plan.RoleBindingOp{
		{Role: "roles/owner", Members: []string{"group:admins@example.com"}},
		{Role: "roles/viewer", Members: []string{"group:devs@example.com", "serviceAgent:cloudservices"}},
	}, p.IAM.FullPolicy)
	require.Len(t, p.Dependencies, 1)
	assert.Equal(t, "cloudservices", p.Dependencies[0].Shortcode)
}

func TestBuildUnknownShortcode(t *testing.T) {
	cfg := baseConfig()
	cfg.Spec.IAM = v1alpha1.IAMConfig{
		RolesAdditive: map[string][]string{
			"roles/editor": {"no-such-agent"},
		},
	}

	builder := &plan.Builder{}
	_, err := builder.Build(cfg, nil)
	require.Error(t, err)
	assert.True(t, configerr.IsUnknownShortcode(err))
}

func TestBuildRegistersActivatedServices(t *testing.T) {
	cfg := baseConfig()
	cfg.Spec.Services = []string{
		"compute.googleapis.com",
		"container.googleapis.com",
		// Registered, but exists without activation: not in the output.
		"cloudresourcemanager.googleapis.com",
		// No managed identity in the agent table; ignored.
		"logging.googleapis.com",
	}

	builder := &plan.Builder{}
	p, err := builder.Build(cfg, nil)
	require.NoError(t, err)

	var services []string
	for _, identity := range p.ServiceIdentities {
		services = append(services, identity.Service)
	}
	assert.Equal(t, []string{"compute.googleapis.com", "container.googleapis.com"}, services)
}

func TestBuildMergesOrgPolicies(t *testing.T) {
	enforce := true
	cfg := baseConfig()
	cfg.Spec.OrgPolicies = map[string]v1alpha1.OrgPolicy{
		"compute.vmExternalIpAccess": {
			Rules: []v1alpha1.PolicyRule{
				{Allow: &v1alpha1.PolicyRuleValues{All: true}},
			},
		},
	}
	loaded := map[string]v1alpha1.OrgPolicy{
		"compute.vmExternalIpAccess": {
			Rules: []v1alpha1.PolicyRule{
				{Deny: &v1alpha1.PolicyRuleValues{All: true}},
			},
		},
		"iam.disableServiceAccountKeyCreation": {Enforce: &enforce},
	}

	builder := &plan.Builder{}
	p, err := builder.Build(cfg, loaded)
	require.NoError(t, err)

	require.Len(t, p.OrgPolicies, 2)
	assert.NotNil(t, p.OrgPolicies["compute.vmExternalIpAccess"].Rules[0].Allow,
		"inline declaration must win over the loaded one")
	assert.Len(t, p.OrgPolicies["iam.disableServiceAccountKeyCreation"].Rules, 1)
}

func TestBuildMalformedInlineOrgPolicyIsTyped(t *testing.T) {
	// Inline and file-loaded declarations share one rule-shape check, so a
	// malformed inline rule carries the same error type as a loaded one.
	enforce := true
	cfg := baseConfig()
	cfg.Spec.OrgPolicies = map[string]v1alpha1.OrgPolicy{
		"compute.vmExternalIpAccess": {
			Rules: []v1alpha1.PolicyRule{
				{Enforce: &enforce, Allow: &v1alpha1.PolicyRuleValues{All: true}},
			},
		},
	}

	builder := &plan.Builder{}
	p, err := builder.Build(cfg, nil)
	require.Error(t, err)
	assert.True(t, configerr.IsInvalidPolicyRule(err), "expected InvalidPolicyRule, got %v", err)
	assert.Nil(t, p)
}

func TestBuildInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Spec.Parent = "divisions/12"

	builder := &plan.Builder{}
	_, err := builder.Build(cfg, nil)
	assert.Error(t, err)
}

func TestBuildOutputIsDeterministic(t *testing.T) {
	cfg := baseConfig()
	cfg.Spec.IAM = v1alpha1.IAMConfig{
		Roles: map[string][]string{
			"roles/viewer": {"user:c@example.com", "user:a@example.com", "user:b@example.com"},
			"roles/editor": {"group:ops@example.com"},
		},
		ByPrincipals: map[string][]string{
			"group:devs@example.com": {"roles/browser", "roles/logging.viewer"},
		},
	}

	builder := &plan.Builder{}
	first, err := builder.Build(cfg, nil)
	require.NoError(t, err)
	second, err := builder.Build(cfg, nil)
	require.NoError(t, err)

	// Everything except the per-pass UID must be identical.
	first.Metadata.UID = ""
	second.Metadata.UID = ""
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("plans for identical input differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, []string{"user:a@example.com", "user:b@example.com", "user:c@example.com"},
		first.IAM.Authoritative[1].Members)
}
