// Package v1alpha1 contains configuration schema definitions for the
// projectfactory v1alpha1 API group.
//
// The types in this package describe the desired access-control and
// governance state of a single cloud resource container (a project or
// folder): IAM bindings in their five input shapes, organization policy
// constraints, and the set of services whose managed identities must be
// referenceable. They are plain configuration objects decoded from YAML;
// provisioning of the container itself is out of scope.
//
// +groupName=projectfactory.fabric.dev
package v1alpha1
