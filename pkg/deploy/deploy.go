package deploy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cuemby/iscsigw/pkg/types"
)

// Generator builds the final daemon config handed to the orchestrator
type Generator struct {
	FSID    string
	MonHost string
}

// NewGenerator creates a generator for the cluster identified by fsid
func NewGenerator(fsid, monHost string) *Generator {
	return &Generator{FSID: fsid, MonHost: monHost}
}

// Generate returns the merged config and the dependency list for d.
// The last dependency is a sha256 digest of every input, so identical
// inputs always produce an identical list.
func (g *Generator) Generate(d *types.DaemonDeployment) (map[string]any, []string, error) {
	if d.Spec == nil {
		return nil, nil, fmt.Errorf("deployment %s has no spec", d.Identity.Name())
	}

	files := make(map[string]string, len(d.ExtraFiles))
	for name, content := range d.ExtraFiles {
		files[name] = content
	}

	config := map[string]any{
		"config":  g.minimalConfig(),
		"keyring": d.Keyring,
		"files":   files,
	}

	digest, err := fingerprint(config, d.Spec)
	if err != nil {
		return nil, nil, err
	}

	deps := []string{"spec:" + d.Spec.ServiceName()}
	if d.Spec.Pool != "" {
		deps = append(deps, "pool:"+d.Spec.Pool)
	}
	for name := range files {
		deps = append(deps, "file:"+name)
	}
	sort.Strings(deps)
	deps = append(deps, "sha256:"+digest)

	return config, deps, nil
}

func (g *Generator) minimalConfig() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# minimal ceph.conf for %s\n", g.FSID)
	b.WriteString("[global]\n")
	fmt.Fprintf(&b, "\tfsid = %s\n", g.FSID)
	fmt.Fprintf(&b, "\tmon_host = %s\n", g.MonHost)
	return b.String()
}

// fingerprint hashes the JSON encoding of config and spec.
// encoding/json sorts map keys, which keeps the digest stable.
func fingerprint(config map[string]any, spec *types.ServiceSpec) (string, error) {
	data, err := json.Marshal(struct {
		Config map[string]any     `json:"config"`
		Spec   *types.ServiceSpec `json:"spec"`
	}{config, spec})
	if err != nil {
		return "", fmt.Errorf("failed to encode deployment inputs: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
