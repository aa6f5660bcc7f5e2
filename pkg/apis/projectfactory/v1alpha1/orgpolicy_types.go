package v1alpha1

// OrgPolicy declares the desired state of one organization policy constraint.
// Constraints restrict allowed configurations within the container's scope;
// this system only composes and orders the declarations, it never evaluates
// them.
//
// A policy may be written in two equivalent forms: the general form with an
// explicit Rules list, or a shorthand with a single top-level Enforce, Allow
// or Deny. Normalize folds the shorthand into Rules so downstream code only
// ever sees the general form.
type OrgPolicy struct {
	// InheritFromParent controls whether the parent container's policy for
	// the same constraint is merged with this one by the governing platform.
	// +kubebuilder:validation:Optional
	InheritFromParent *bool `json:"inheritFromParent,omitempty"`

	// Reset restores the constraint to its platform default, discarding any
	// inherited or previously configured rules.
	// +kubebuilder:validation:Optional
	Reset bool `json:"reset,omitempty"`

	// Rules is an ordered list of policy rules. The governing platform
	// evaluates them in order, first matching condition wins; this system
	// preserves the order and never reorders or deduplicates rules.
	// +kubebuilder:validation:Optional
	Rules []PolicyRule `json:"rules,omitempty"`

	// Enforce is shorthand for a single unconditioned boolean rule.
	// Mutually exclusive with Allow, Deny and Rules.
	// +kubebuilder:validation:Optional
	Enforce *bool `json:"enforce,omitempty"`

	// Allow is shorthand for a single unconditioned allow rule.
	// Mutually exclusive with Enforce, Deny and Rules.
	// +kubebuilder:validation:Optional
	Allow *PolicyRuleValues `json:"allow,omitempty"`

	// Deny is shorthand for a single unconditioned deny rule.
	// Mutually exclusive with Enforce, Allow and Rules.
	// +kubebuilder:validation:Optional
	Deny *PolicyRuleValues `json:"deny,omitempty"`
}

// PolicyRule is a single entry in a constraint's ordered rule list. Exactly
// one of Enforce, Allow or Deny must be set.
type PolicyRule struct {
	// Enforce turns a boolean constraint on or off.
	// +kubebuilder:validation:Optional
	Enforce *bool `json:"enforce,omitempty"`

	// Allow lists permitted values for a list constraint.
	// +kubebuilder:validation:Optional
	Allow *PolicyRuleValues `json:"allow,omitempty"`

	// Deny lists rejected values for a list constraint.
	// +kubebuilder:validation:Optional
	Deny *PolicyRuleValues `json:"deny,omitempty"`

	// Condition optionally guards the rule. Conditions are evaluated by the
	// governing platform, not by this system.
	// +kubebuilder:validation:Optional
	Condition *PolicyRuleCondition `json:"condition,omitempty"`
}

// PolicyRuleValues selects either every value or an explicit value set for a
// list constraint. Exactly one of All or Values must be set.
type PolicyRuleValues struct {
	// All selects every value.
	// +kubebuilder:validation:Optional
	All bool `json:"all,omitempty"`

	// Values is an explicit value set.
	// +kubebuilder:validation:Optional
	Values []string `json:"values,omitempty"`
}

// PolicyRuleCondition guards a rule with a CEL expression evaluated by the
// governing platform.
type PolicyRuleCondition struct {
	// +kubebuilder:validation:Required
	Expression string `json:"expression"`
	// +kubebuilder:validation:Optional
	Title string `json:"title,omitempty"`
	// +kubebuilder:validation:Optional
	Description string `json:"description,omitempty"`
	// +kubebuilder:validation:Optional
	Location string `json:"location,omitempty"`
}

// Normalize returns a copy of the policy with any shorthand Enforce, Allow or
// Deny folded into the Rules list as a single unconditioned rule. Policies
// already in the general form are returned unchanged. Normalize never mutates
// the receiver.
func (p OrgPolicy) Normalize() OrgPolicy {
	if p.Enforce == nil && p.Allow == nil && p.Deny == nil {
		return p
	}

	out := OrgPolicy{
		InheritFromParent: p.InheritFromParent,
		Reset:             p.Reset,
	}
	out.Rules = append(out.Rules, PolicyRule{
		Enforce: p.Enforce,
		Allow:   p.Allow,
		Deny:    p.Deny,
	})
	out.Rules = append(out.Rules, p.Rules...)
	return out
}
