package iam

import (
	"strings"

	"github.com/chasinandrew/cloud-foundation-fabric/internal/configerr"
	"github.com/chasinandrew/cloud-foundation-fabric/pkg/apis/projectfactory/v1alpha1"
)

// ValidateExclusive enforces the one hard authority rule: the full Policy
// shape cannot be combined with any other IAM shape. When Policy is set it is
// the entire IAM state for the container, so any other non-empty shape is a
// contract violation, not something to merge silently.
//
// Overlap between the two authoritative shapes (a role declared both in Roles
// and by a binding group) is deliberately not an error: both are
// authoritative contributions to the same role and their member sets union
// during the merge.
func ValidateExclusive(cfg *v1alpha1.IAMConfig) error {
	if cfg.Policy == nil || cfg.Empty() {
		return nil
	}

	var shapes []string
	if len(cfg.Roles) > 0 {
		shapes = append(shapes, "roles")
	}
	if len(cfg.Bindings) > 0 {
		shapes = append(shapes, "bindings")
	}
	if len(cfg.RolesAdditive) > 0 {
		shapes = append(shapes, "rolesAdditive")
	}
	if len(cfg.ByPrincipals) > 0 {
		shapes = append(shapes, "byPrincipals")
	}

	return configerr.NewConfigConflict("iam.policy",
		"the full IAM policy is mutually exclusive with all other IAM shapes, found: "+
			strings.Join(shapes, ", "))
}
