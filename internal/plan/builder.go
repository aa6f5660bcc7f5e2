package plan

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/chasinandrew/cloud-foundation-fabric/internal/configerr"
	"github.com/chasinandrew/cloud-foundation-fabric/internal/iam"
	"github.com/chasinandrew/cloud-foundation-fabric/internal/orgpolicy"
	"github.com/chasinandrew/cloud-foundation-fabric/internal/serviceagent"
	"github.com/chasinandrew/cloud-foundation-fabric/pkg/apis/projectfactory/v1alpha1"
)

// Builder runs the composition pipeline: validate the configuration,
// normalize the IAM shapes, resolve shortcode references against a fresh
// service identity registry, merge bindings and organization policies, and
// assemble the resulting Plan.
//
// The builder performs no I/O. File-loaded organization policies are passed
// in by the caller, already parsed; the zero-value Builder composes against
// the built-in service agent table.
type Builder struct {
	// Table overrides the built-in service agent table.
	Table *serviceagent.Table
}

// Build composes one plan. It is all-or-nothing: any configuration defect
// aborts the pass with a typed error and no partial plan.
func (b *Builder) Build(cfg *v1alpha1.ProjectConfig, loadedPolicies map[string]v1alpha1.OrgPolicy) (*Plan, error) {
	p, err := b.build(cfg, loadedPolicies)
	if err != nil {
		passesTotal.WithLabelValues("failure").Inc()
		reason := string(configerr.ReasonForError(err))
		if reason == "" {
			reason = "InvalidConfig"
		}
		failuresTotal.WithLabelValues(reason).Inc()
		return nil, err
	}
	passesTotal.WithLabelValues("success").Inc()
	bindingsEmitted.Add(float64(bindingCount(&p.IAM)))
	return p, nil
}

// bindingCount counts individual (role, member) bindings in the plan. A
// revocation entry with no members contributes nothing.
func bindingCount(p *IAMPlan) int {
	count := len(p.Additive)
	for _, op := range p.Authoritative {
		count += len(op.Members)
	}
	for _, op := range p.FullPolicy {
		count += len(op.Members)
	}
	return count
}

func (b *Builder) build(cfg *v1alpha1.ProjectConfig, loadedPolicies map[string]v1alpha1.OrgPolicy) (*Plan, error) {
	if errs := v1alpha1.ValidateProjectConfig(cfg); len(errs) > 0 {
		return nil, errs.ToAggregate()
	}
	if err := iam.ValidateExclusive(&cfg.Spec.IAM); err != nil {
		return nil, err
	}

	table := b.Table
	if table == nil {
		table = serviceagent.DefaultTable()
	}
	registry := serviceagent.NewRegistry(table, cfg.Spec.ProjectID)

	// Activated services with a managed identity register eagerly, so their
	// principals are referenceable before the services themselves are usable.
	for _, service := range cfg.Spec.Services {
		if _, ok := table.ByService(service); !ok {
			continue
		}
		if _, err := registry.Register(service); err != nil {
			return nil, err
		}
	}

	edges := sets.New[DependencyEdge]()

	bindings := iam.Normalize(&cfg.Spec.IAM)
	for i, binding := range bindings {
		member, err := resolveMember(registry, binding.Role, binding.Member, edges)
		if err != nil {
			return nil, err
		}
		bindings[i].Member = member
	}

	var policy v1alpha1.IAMPolicy
	if cfg.Spec.IAM.Policy != nil {
		policy = make(v1alpha1.IAMPolicy, len(cfg.Spec.IAM.Policy))
		for role, members := range cfg.Spec.IAM.Policy {
			resolved := make([]string, len(members))
			for i, raw := range members {
				member, err := resolveMember(registry, role, raw, edges)
				if err != nil {
					return nil, err
				}
				resolved[i] = member
			}
			policy[role] = resolved
		}
	}

	ops, err := iam.Merge(bindings, policy, iam.DeclaredAuthoritativeRoles(&cfg.Spec.IAM))
	if err != nil {
		return nil, err
	}

	orgPolicies, err := orgpolicy.Merge(loadedPolicies, cfg.Spec.OrgPolicies)
	if err != nil {
		return nil, err
	}
	if len(orgPolicies) == 0 {
		orgPolicies = nil
	}

	return &Plan{
		Metadata: Metadata{
			UID:       uuid.NewString(),
			ProjectID: cfg.Spec.ProjectID,
			Parent:    cfg.Spec.Parent,
		},
		IAM:               iamPlan(ops),
		OrgPolicies:       orgPolicies,
		ServiceIdentities: requiredIdentities(registry),
		Dependencies:      sortedEdges(edges),
		Discovery:         discovery(registry),
	}, nil
}

// resolveMember rewrites a shortcode member into its principal or symbolic
// form, recording a dependency edge when the binding must wait for identity
// materialization. Non-shortcode members pass through untouched.
func resolveMember(registry *serviceagent.Registry, role, member string, edges sets.Set[DependencyEdge]) (string, error) {
	kind, token, err := v1alpha1.ParseMember(member)
	if err != nil {
		return "", err
	}
	if kind != v1alpha1.ShortcodeKind {
		return member, nil
	}

	resolution, err := registry.Resolve(token)
	if err != nil {
		return "", err
	}
	if resolution.Deferred {
		edges.Insert(DependencyEdge{
			Role:      role,
			Member:    resolution.Member,
			Shortcode: resolution.Identity.Shortcode,
			Service:   resolution.Identity.Service,
		})
	}
	return resolution.Member, nil
}

func iamPlan(ops *iam.PolicyOps) IAMPlan {
	if ops.FullPolicy != nil {
		return IAMPlan{
			Mode:       ModeFullPolicy,
			FullPolicy: roleBindingOps(ops.FullPolicy),
		}
	}

	out := IAMPlan{
		Mode:          ModeBindings,
		Authoritative: roleBindingOps(ops.Authoritative),
	}
	for _, grant := range ops.AdditiveGrants() {
		out.Additive = append(out.Additive, GrantOp{Role: grant.Role, Member: grant.Member})
	}
	return out
}

func roleBindingOps(byRole map[string]sets.Set[string]) []RoleBindingOp {
	roles := sets.List(sets.KeySet(byRole))
	ops := make([]RoleBindingOp, 0, len(roles))
	for _, role := range roles {
		ops = append(ops, RoleBindingOp{Role: role, Members: sets.List(byRole[role])})
	}
	return ops
}

func requiredIdentities(registry *serviceagent.Registry) []serviceagent.ServiceIdentity {
	var identities []serviceagent.ServiceIdentity
	for _, identity := range registry.Required() {
		identities = append(identities, *identity)
	}
	slices.SortFunc(identities, func(a, b serviceagent.ServiceIdentity) int {
		return cmp.Compare(a.Service, b.Service)
	})
	return identities
}

func sortedEdges(edges sets.Set[DependencyEdge]) []DependencyEdge {
	sorted := edges.UnsortedList()
	slices.SortFunc(sorted, func(a, b DependencyEdge) int {
		if c := cmp.Compare(a.Role, b.Role); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Member, b.Member); c != 0 {
			return c
		}
		return cmp.Compare(a.Shortcode, b.Shortcode)
	})
	if len(sorted) == 0 {
		return nil
	}
	return sorted
}

func discovery(registry *serviceagent.Registry) map[string]string {
	d := registry.Discovery()
	if len(d) == 0 {
		return nil
	}
	return d
}
