package serviceagent

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chasinandrew/cloud-foundation-fabric/internal/configerr"
)

// DeferredMemberPrefix prefixes the symbolic member emitted for identities
// whose principal is unknown until the container exists. The provisioning
// layer substitutes the concrete principal after materialization.
const DeferredMemberPrefix = "serviceAgent:"

// ServiceIdentity is a platform-managed principal tracked by the registry.
type ServiceIdentity struct {
	// Service is the service API that owns the identity.
	Service string `json:"service"`

	// Shortcode is the symbolic token bindings use to reference it.
	Shortcode string `json:"shortcode"`

	// Principal is the concrete principal identifier when it is computable
	// from static inputs, or empty while materialization is pending.
	Principal string `json:"principal,omitempty"`

	// RequiresActivation marks identities the provisioning layer must create
	// unconditionally at container creation time.
	RequiresActivation bool `json:"requiresActivation"`
}

// Resolution is the outcome of resolving one shortcode reference.
type Resolution struct {
	// Identity is the registered identity the reference points at.
	Identity *ServiceIdentity

	// Member is the rewritten member string: a concrete
	// "serviceAccount:" principal when the identity is resolvable from
	// static inputs, or a symbolic "serviceAgent:" member otherwise.
	Member string

	// Deferred reports whether the binding carrying this member may only be
	// applied after the identity has been materialized.
	Deferred bool
}

// Registry tracks which service identities a reconciliation pass references
// or must materialize. A fresh registry is built per pass from the static
// agent table and the container's static identifier; it holds no state
// across passes.
//
// Registration is idempotent per service: repeated registration or repeated
// shortcode resolution returns the same identity.
type Registry struct {
	table      *Table
	projectID  string
	identities map[string]*ServiceIdentity
}

// NewRegistry builds a registry over the given agent table for one
// container.
func NewRegistry(table *Table, projectID string) *Registry {
	return &Registry{
		table:      table,
		projectID:  projectID,
		identities: make(map[string]*ServiceIdentity),
	}
}

// Register records that the identity owned by the given service must be
// tracked for this pass. Idempotent: registering the same service twice
// returns the identical ServiceIdentity. Unknown services fail with
// UnknownShortcode.
func (r *Registry) Register(service string) (*ServiceIdentity, error) {
	if identity, ok := r.identities[service]; ok {
		return identity, nil
	}

	agent, ok := r.table.ByService(service)
	if !ok {
		return nil, configerr.NewUnknownShortcode(service)
	}

	identity := &ServiceIdentity{
		Service:            agent.Service,
		Shortcode:          agent.Shortcode,
		RequiresActivation: agent.RequiresActivation,
	}
	if !agent.Deferred() {
		identity.Principal = strings.ReplaceAll(agent.Principal, projectIDPlaceholder, r.projectID)
	}
	r.identities[service] = identity
	return identity, nil
}

// Resolve expands a shortcode token into its member form. Identities whose
// principal depends only on static inputs are rewritten eagerly; identities
// embedding the creation-time project number stay symbolic and are flagged
// deferred so the caller can record a materialization dependency. Unknown
// tokens fail with UnknownShortcode.
func (r *Registry) Resolve(shortcode string) (Resolution, error) {
	agent, ok := r.table.ByShortcode(shortcode)
	if !ok {
		return Resolution{}, configerr.NewUnknownShortcode(shortcode)
	}

	identity, err := r.Register(agent.Service)
	if err != nil {
		return Resolution{}, err
	}

	if agent.Deferred() {
		return Resolution{
			Identity: identity,
			Member:   DeferredMemberPrefix + agent.Shortcode,
			Deferred: true,
		}, nil
	}
	return Resolution{
		Identity: identity,
		Member:   "serviceAccount:" + identity.Principal,
	}, nil
}

// Discovery returns the shortcode to principal mapping for every registered
// identity that is already resolvable, for reuse by other reconciliation
// passes.
func (r *Registry) Discovery() map[string]string {
	discovery := make(map[string]string)
	for _, identity := range r.identities {
		if identity.Principal != "" {
			discovery[identity.Shortcode] = identity.Principal
		}
	}
	return discovery
}

// Required returns the registered identities the provisioning layer must
// create unconditionally at container creation time, rather than lazily on
// first use.
func (r *Registry) Required() []*ServiceIdentity {
	var required []*ServiceIdentity
	for _, identity := range r.identities {
		if identity.RequiresActivation {
			required = append(required, identity)
		}
	}
	return required
}

// ValidatePrincipal checks that a principal reported back by the
// provisioning layer for the given shortcode is well formed with respect to
// the container's identifiers. The project number is only ever used for this
// validation; principals are never computed from it here.
func (r *Registry) ValidatePrincipal(shortcode, principal string, projectNumber int64) error {
	agent, ok := r.table.ByShortcode(shortcode)
	if !ok {
		return configerr.NewUnknownShortcode(shortcode)
	}

	expected := strings.ReplaceAll(agent.Principal, projectIDPlaceholder, r.projectID)
	expected = strings.ReplaceAll(expected, projectNumberPlaceholder, strconv.FormatInt(projectNumber, 10))
	if principal != expected {
		return fmt.Errorf("principal %q for service agent %q is malformed, expected %q", principal, shortcode, expected)
	}
	return nil
}
