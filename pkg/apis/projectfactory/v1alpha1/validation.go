package v1alpha1

import (
	"fmt"
	"regexp"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

const maxPrefixLength = 9

var (
	parentRegexp    = regexp.MustCompile(`^(organizations|folders)/[0-9]+$`)
	projectIDRegexp = regexp.MustCompile(`^[a-z][a-z0-9-]{4,28}[a-z0-9]$`)
)

// ValidateProjectConfig checks the structural validity of a ProjectConfig.
// It covers everything that can be decided by looking at the document alone;
// cross-shape authority conflicts and shortcode resolution are checked during
// plan composition, where the service agent table is in scope. Org policy
// rule shape is likewise left to the policy merge, so a malformed rule is
// classified identically whether it was declared inline or loaded from a
// factory file.
func ValidateProjectConfig(cfg *ProjectConfig) field.ErrorList {
	errs := field.ErrorList{}
	specPath := field.NewPath("spec")

	if cfg.Spec.Parent == "" {
		errs = append(errs, field.Required(specPath.Child("parent"), ""))
	} else if !parentRegexp.MatchString(cfg.Spec.Parent) {
		errs = append(errs, field.Invalid(specPath.Child("parent"), cfg.Spec.Parent,
			"must be in the form organizations/<number> or folders/<number>"))
	}

	if cfg.Spec.ProjectID == "" {
		errs = append(errs, field.Required(specPath.Child("projectID"), ""))
	} else if !projectIDRegexp.MatchString(cfg.Spec.ProjectID) {
		errs = append(errs, field.Invalid(specPath.Child("projectID"), cfg.Spec.ProjectID,
			"must be 6-30 characters of lowercase letters, digits and hyphens, starting with a letter"))
	}

	if len(cfg.Spec.Prefix) > maxPrefixLength {
		errs = append(errs, field.TooLongMaxLength(specPath.Child("prefix"), cfg.Spec.Prefix, maxPrefixLength))
	}

	errs = append(errs, ValidateIAMConfig(specPath.Child("iam"), &cfg.Spec.IAM)...)

	return errs
}

// ValidateIAMConfig checks member syntax and binding shape across the five
// IAM input shapes. It deliberately does not check authority exclusivity:
// mixing the full Policy shape with other shapes is a composition conflict,
// reported with its own error type during the merge pass.
func ValidateIAMConfig(path *field.Path, cfg *IAMConfig) field.ErrorList {
	errs := field.ErrorList{}

	errs = append(errs, validateRoleMembers(path.Child("roles"), cfg.Roles)...)
	errs = append(errs, validateRoleMembers(path.Child("rolesAdditive"), cfg.RolesAdditive)...)
	errs = append(errs, validateRoleMembers(path.Child("policy"), cfg.Policy)...)

	bindingsPath := path.Child("bindings")
	for name, binding := range cfg.Bindings {
		bindingPath := bindingsPath.Key(name)
		if binding.Role == "" {
			errs = append(errs, field.Required(bindingPath.Child("role"), ""))
		}
		membersPath := bindingPath.Child("members")
		for i, member := range binding.Members {
			errs = append(errs, validateMember(membersPath.Index(i), member)...)
		}
	}

	principalsPath := path.Child("byPrincipals")
	for member, roles := range cfg.ByPrincipals {
		memberPath := principalsPath.Key(member)
		errs = append(errs, validateMember(memberPath, member)...)
		if len(roles) == 0 {
			errs = append(errs, field.Required(memberPath, "at least one role is required"))
		}
	}

	return errs
}

// ValidateOrgPolicy checks that a policy uses either the shorthand or the
// general rule form, and that every rule carries exactly one of enforce,
// allow or deny.
func ValidateOrgPolicy(path *field.Path, policy OrgPolicy) field.ErrorList {
	errs := field.ErrorList{}

	shorthand := 0
	if policy.Enforce != nil {
		shorthand++
	}
	if policy.Allow != nil {
		shorthand++
	}
	if policy.Deny != nil {
		shorthand++
	}
	if shorthand > 1 {
		errs = append(errs, field.Invalid(path, "",
			"at most one of enforce, allow or deny may be set at the policy level"))
	}
	if shorthand > 0 && len(policy.Rules) > 0 {
		errs = append(errs, field.Invalid(path, "",
			"shorthand enforce/allow/deny cannot be combined with an explicit rules list"))
	}

	if policy.Allow != nil {
		errs = append(errs, validateRuleValues(path.Child("allow"), policy.Allow)...)
	}
	if policy.Deny != nil {
		errs = append(errs, validateRuleValues(path.Child("deny"), policy.Deny)...)
	}

	rulesPath := path.Child("rules")
	for i, rule := range policy.Rules {
		errs = append(errs, validatePolicyRule(rulesPath.Index(i), rule)...)
	}

	return errs
}

func validatePolicyRule(path *field.Path, rule PolicyRule) field.ErrorList {
	errs := field.ErrorList{}

	set := 0
	if rule.Enforce != nil {
		set++
	}
	if rule.Allow != nil {
		set++
	}
	if rule.Deny != nil {
		set++
	}
	if set != 1 {
		errs = append(errs, field.Invalid(path, "",
			"exactly one of enforce, allow or deny must be set"))
	}

	if rule.Allow != nil {
		errs = append(errs, validateRuleValues(path.Child("allow"), rule.Allow)...)
	}
	if rule.Deny != nil {
		errs = append(errs, validateRuleValues(path.Child("deny"), rule.Deny)...)
	}
	if rule.Condition != nil && rule.Condition.Expression == "" {
		errs = append(errs, field.Required(path.Child("condition", "expression"), ""))
	}

	return errs
}

func validateRuleValues(path *field.Path, values *PolicyRuleValues) field.ErrorList {
	if values.All && len(values.Values) > 0 {
		return field.ErrorList{field.Invalid(path, values.Values,
			"all and values are mutually exclusive")}
	}
	if !values.All && len(values.Values) == 0 {
		return field.ErrorList{field.Invalid(path, "",
			"one of all or values must be set")}
	}
	return nil
}

func validateRoleMembers(path *field.Path, roles map[string][]string) field.ErrorList {
	errs := field.ErrorList{}
	for role, members := range roles {
		// An empty member list is legal for authoritative shapes: it revokes
		// every binding for the role.
		rolePath := path.Key(role)
		for i, member := range members {
			errs = append(errs, validateMember(rolePath.Index(i), member)...)
		}
	}
	return errs
}

func validateMember(path *field.Path, member string) field.ErrorList {
	if _, _, err := ParseMember(member); err != nil {
		return field.ErrorList{field.Invalid(path, member, fmt.Sprintf(
			"must be a '%s:', '%s:', '%s:' or '%s:' principal, or a service identity shortcode",
			UserKind, GroupKind, ServiceAccountKind, DomainKind))}
	}
	return nil
}
