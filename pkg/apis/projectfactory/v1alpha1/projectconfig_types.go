package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ProjectConfig describes the desired governance state for one resource
// container. It is the root document consumed by the plan builder: every
// reconciliation pass decodes a fresh copy, composes it into a canonical
// operation set, and discards it. Nothing in here is mutated across runs.
type ProjectConfig struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ProjectConfigSpec   `json:"spec,omitempty"`
	Status ProjectConfigStatus `json:"status,omitempty"`
}

// ProjectConfigSpec defines the desired state of the container's access
// control and policy configuration.
type ProjectConfigSpec struct {
	// Parent is the resource container that owns the project, in the form
	// "organizations/<number>" or "folders/<number>".
	//
	// Example: "folders/1234567890"
	// +kubebuilder:validation:Required
	Parent string `json:"parent"`

	// Prefix is an optional string prepended to the project identifier,
	// commonly used to namespace projects per team or environment.
	// +kubebuilder:validation:Optional
	Prefix string `json:"prefix,omitempty"`

	// ProjectID is the user-assigned identifier of the project. Unlike the
	// numeric project number, it is known before the container exists and
	// may therefore be used when composing principal identifiers.
	// +kubebuilder:validation:Required
	ProjectID string `json:"projectID"`

	// Services lists the service APIs activated on the project. Each entry
	// registers the corresponding managed service identity so that bindings
	// may reference it by shortcode before the service itself is usable.
	//
	// Example: ["compute.googleapis.com", "container.googleapis.com"]
	// +kubebuilder:validation:Optional
	Services []string `json:"services,omitempty"`

	// IAM carries the five IAM input shapes. See IAMConfig for the authority
	// semantics of each shape.
	// +kubebuilder:validation:Optional
	IAM IAMConfig `json:"iam,omitempty"`

	// OrgPolicies declares organization policy constraints inline, keyed by
	// constraint name. Inline declarations take precedence over constraints
	// loaded from OrgPoliciesDataPath: when both declare the same constraint
	// the inline value replaces the loaded one wholesale.
	// +kubebuilder:validation:Optional
	OrgPolicies map[string]OrgPolicy `json:"orgPolicies,omitempty"`

	// OrgPoliciesDataPath points at a directory of YAML files declaring
	// additional organization policy constraints. The files are loaded by an
	// external collaborator into the same OrgPolicy shape; this field only
	// records where to find them.
	// +kubebuilder:validation:Optional
	OrgPoliciesDataPath string `json:"orgPoliciesDataPath,omitempty"`
}

// ProjectConfigStatus records values assigned by the external provisioning
// layer once the container exists. It is never written by the plan builder.
type ProjectConfigStatus struct {
	// ProjectNumber is the numeric identifier assigned at creation time.
	// It is used only to validate that principal identifiers reported back
	// by the provisioning layer are well formed, never to compute them.
	// +kubebuilder:validation:Optional
	ProjectNumber int64 `json:"projectNumber,omitempty"`
}
