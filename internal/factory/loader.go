// Package factory loads organization policy constraint declarations from a
// directory of data files, the file-sourced half of the policy merge. The
// composition core is agnostic to the file format; everything format-shaped
// lives here.
package factory

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/chasinandrew/cloud-foundation-fabric/internal/configerr"
	"github.com/chasinandrew/cloud-foundation-fabric/pkg/apis/projectfactory/v1alpha1"
)

// LoadOrgPolicies reads every YAML file in dir into one constraint-keyed
// policy map. Each file is a map of constraint name to OrgPolicy; files whose
// base name starts with "_" are treated as templates or scratch data and
// skipped, as are non-YAML files.
//
// The same constraint declared in two files has no defined precedence (file
// order is an accident of directory listing), so it fails with
// DuplicatePolicyKey rather than merging silently.
func LoadOrgPolicies(dir string) (map[string]v1alpha1.OrgPolicy, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading org policy directory: %w", err)
	}

	policies := make(map[string]v1alpha1.OrgPolicy)
	declaredIn := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if strings.HasPrefix(name, "_") || (ext != ".yaml" && ext != ".yml") {
			slog.Debug("skipping non-policy file", slog.String("file", name))
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading org policy file %q: %w", path, err)
		}

		var filePolicies map[string]v1alpha1.OrgPolicy
		if err := yaml.UnmarshalStrict(data, &filePolicies); err != nil {
			return nil, fmt.Errorf("parsing org policy file %q: %w", path, err)
		}

		for constraint, policy := range filePolicies {
			if previous, ok := declaredIn[constraint]; ok {
				return nil, configerr.NewDuplicatePolicyKey(constraint,
					fmt.Sprintf("declared in both %q and %q", previous, name))
			}
			declaredIn[constraint] = name
			policies[constraint] = policy
		}

		slog.Debug("loaded org policy file",
			slog.String("file", name),
			slog.Int("constraints", len(filePolicies)))
	}

	return policies, nil
}
