// Package serviceagent resolves symbolic shortcode references to
// platform-managed service identities.
//
// An identity's principal embeds either the static project identifier or the
// numeric project number. The number is assigned by the provider at creation
// time and is not owned by this system, so principals depending on it are
// never computed here: resolution yields a symbolic member plus a
// materialization dependency instead, and the provisioning layer substitutes
// the concrete principal once the identity exists.
package serviceagent

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"sigs.k8s.io/yaml"
)

//go:embed service_agents.yaml
var defaultTableYAML []byte

const (
	projectIDPlaceholder     = "{project_id}"
	projectNumberPlaceholder = "{project_number}"
)

// Agent is one row of the static service identity table.
type Agent struct {
	// Shortcode is the symbolic token usable as an IAM member.
	Shortcode string `json:"shortcode"`

	// Service is the service API that owns the identity.
	Service string `json:"service"`

	// Principal is the identity's principal template. It may reference
	// {project_id} (static, known before creation) or {project_number}
	// (assigned at creation time).
	Principal string `json:"principal"`

	// RequiresActivation marks identities that must be materialized by a
	// provider-side activation call before they can be referenced.
	RequiresActivation bool `json:"requiresActivation"`
}

// Deferred reports whether the agent's principal depends on the
// creation-time project number and therefore cannot be computed by this
// system.
func (a Agent) Deferred() bool {
	return strings.Contains(a.Principal, projectNumberPlaceholder)
}

// Table indexes agents by shortcode and by owning service.
type Table struct {
	byShortcode map[string]Agent
	byService   map[string]Agent
}

// NewTable builds a table from explicit agent rows, later rows overriding
// earlier ones with the same shortcode.
func NewTable(agents []Agent) *Table {
	t := &Table{
		byShortcode: make(map[string]Agent, len(agents)),
		byService:   make(map[string]Agent, len(agents)),
	}
	for _, agent := range agents {
		t.byShortcode[agent.Shortcode] = agent
		t.byService[agent.Service] = agent
	}
	return t
}

// ByShortcode looks up an agent by its symbolic token.
func (t *Table) ByShortcode(shortcode string) (Agent, bool) {
	agent, ok := t.byShortcode[shortcode]
	return agent, ok
}

// ByService looks up an agent by its owning service API.
func (t *Table) ByService(service string) (Agent, bool) {
	agent, ok := t.byService[service]
	return agent, ok
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// DefaultTable returns the built-in agent table. The embedded data is parsed
// once; a malformed embed is a programming error and panics.
func DefaultTable() *Table {
	defaultTableOnce.Do(func() {
		var agents []Agent
		if err := yaml.UnmarshalStrict(defaultTableYAML, &agents); err != nil {
			panic(fmt.Sprintf("embedded service agent table is malformed: %s", err))
		}
		defaultTable = NewTable(agents)
	})
	return defaultTable
}
