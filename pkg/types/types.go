package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServiceTypeISCSI is the only service kind handled by iscsigw
const ServiceTypeISCSI = "iscsi"

// DaemonTypeISCSI is the daemon type of an iSCSI gateway instance
const DaemonTypeISCSI = "iscsi"

// ServiceSpec is the desired state of a gateway service as recorded in the spec store
type ServiceSpec struct {
	ServiceType   string     `json:"service_type" yaml:"service_type"`
	ServiceID     string     `json:"service_id" yaml:"service_id"`
	Placement     *Placement `json:"placement,omitempty" yaml:"placement,omitempty"`
	Unmanaged     bool       `json:"unmanaged,omitempty" yaml:"unmanaged,omitempty"`
	Pool          string     `json:"pool" yaml:"pool"`
	TrustedIPList string     `json:"trusted_ip_list,omitempty" yaml:"trusted_ip_list,omitempty"`
	APIPort       int        `json:"api_port,omitempty" yaml:"api_port,omitempty"`
	APIUser       string     `json:"api_user,omitempty" yaml:"api_user,omitempty"`
	APIPassword   string     `json:"api_password,omitempty" yaml:"api_password,omitempty"`
	APISecure     bool       `json:"api_secure,omitempty" yaml:"api_secure,omitempty"`
	SSLCert       Blob       `json:"ssl_cert,omitempty" yaml:"ssl_cert,omitempty"`
	SSLKey        Blob       `json:"ssl_key,omitempty" yaml:"ssl_key,omitempty"`
}

// ServiceName returns the spec store key, e.g. "iscsi.gw1"
func (s *ServiceSpec) ServiceName() string {
	if s.ServiceID == "" {
		return s.ServiceType
	}
	return s.ServiceType + "." + s.ServiceID
}

// SecureAPI reports whether the gateway API is served over TLS.
// Both certificate and key must be present, a lone cert or key does not count.
func (s *ServiceSpec) SecureAPI() bool {
	return s.APISecure && s.SSLCert.IsSet() && s.SSLKey.IsSet()
}

// Validate checks the fields every iscsi spec must carry
func (s *ServiceSpec) Validate() error {
	if s.ServiceType != ServiceTypeISCSI {
		return fmt.Errorf("unexpected service type %q, want %q", s.ServiceType, ServiceTypeISCSI)
	}
	if s.ServiceID == "" {
		return fmt.Errorf("service_id is required")
	}
	if s.Pool == "" {
		return fmt.Errorf("pool is required for %s", s.ServiceName())
	}
	if s.APIPort < 0 || s.APIPort > 65535 {
		return fmt.Errorf("api_port %d out of range", s.APIPort)
	}
	return nil
}

// Placement describes where daemons of a service should run
type Placement struct {
	Hosts []string `json:"hosts,omitempty" yaml:"hosts,omitempty"`
	Label string   `json:"label,omitempty" yaml:"label,omitempty"`
	Count int      `json:"count,omitempty" yaml:"count,omitempty"`
}

// String renders the placement for log output
func (p *Placement) String() string {
	if p == nil {
		return "<none>"
	}
	var parts []string
	if p.Count > 0 {
		parts = append(parts, fmt.Sprintf("count:%d", p.Count))
	}
	if p.Label != "" {
		parts = append(parts, "label:"+p.Label)
	}
	if len(p.Hosts) > 0 {
		parts = append(parts, strings.Join(p.Hosts, ";"))
	}
	if len(parts) == 0 {
		return "<none>"
	}
	return strings.Join(parts, " ")
}

// Blob holds PEM material given either as a single string or as an ordered
// list of lines/parts. The list form is joined with newlines by String.
type Blob struct {
	parts []string
	list  bool
}

// NewBlob returns a single-valued blob
func NewBlob(s string) Blob {
	if s == "" {
		return Blob{}
	}
	return Blob{parts: []string{s}}
}

// NewBlobList returns a blob built from an ordered sequence of parts
func NewBlobList(parts ...string) Blob {
	if len(parts) == 0 {
		return Blob{}
	}
	return Blob{parts: append([]string(nil), parts...), list: true}
}

// IsSet reports whether the blob carries any data
func (b Blob) IsSet() bool {
	for _, p := range b.parts {
		if p != "" {
			return true
		}
	}
	return false
}

// String returns the normalized single-string form
func (b Blob) String() string {
	return strings.Join(b.parts, "\n")
}

// Parts returns the blob as it was supplied
func (b Blob) Parts() []string {
	return append([]string(nil), b.parts...)
}

func (b Blob) MarshalJSON() ([]byte, error) {
	if !b.IsSet() {
		return []byte("null"), nil
	}
	if b.list {
		return json.Marshal(b.parts)
	}
	return json.Marshal(b.parts[0])
}

func (b *Blob) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = NewBlob(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("blob must be a string or a list of strings: %w", err)
	}
	*b = NewBlobList(list...)
	return nil
}

func (b Blob) MarshalYAML() (interface{}, error) {
	if !b.IsSet() {
		return nil, nil
	}
	if b.list {
		return b.parts, nil
	}
	return b.parts[0], nil
}

func (b *Blob) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*b = Blob{}
			return nil
		}
		*b = NewBlob(node.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*b = NewBlobList(list...)
		return nil
	default:
		return fmt.Errorf("line %d: blob must be a string or a list of strings", node.Line)
	}
}

// DaemonIdentity names one daemon instance, e.g. iscsi.gw1.abcdef
type DaemonIdentity struct {
	DaemonType string `json:"daemon_type" yaml:"daemon_type"`
	DaemonID   string `json:"daemon_id" yaml:"daemon_id"`
}

// Name returns "<type>.<id>"
func (d DaemonIdentity) Name() string {
	return d.DaemonType + "." + d.DaemonID
}

// ServiceToken returns the part of the daemon id before the first '.'
func (d DaemonIdentity) ServiceToken() string {
	token, _, _ := strings.Cut(d.DaemonID, ".")
	return token
}

// DaemonDeployment is the deployable bundle for one daemon.
// It is built fresh for every create/redeploy/reconfigure.
type DaemonDeployment struct {
	Identity    DaemonIdentity    `json:"identity" yaml:"identity"`
	Host        string            `json:"host" yaml:"host"`
	Spec        *ServiceSpec      `json:"spec,omitempty" yaml:"spec,omitempty"`
	Keyring     string            `json:"keyring,omitempty" yaml:"keyring,omitempty"`
	ExtraFiles  map[string]string `json:"extra_files,omitempty" yaml:"extra_files,omitempty"`
	FinalConfig map[string]any    `json:"final_config,omitempty" yaml:"final_config,omitempty"`
	Deps        []string          `json:"deps,omitempty" yaml:"deps,omitempty"`
}

// DaemonDescription is a live daemon as reported by the orchestrator
type DaemonDescription struct {
	DaemonType string `json:"daemon_type" yaml:"daemon_type"`
	DaemonID   string `json:"daemon_id" yaml:"daemon_id"`
	Hostname   string `json:"hostname" yaml:"hostname"`
}

// Identity returns the daemon's identity
func (d *DaemonDescription) Identity() DaemonIdentity {
	return DaemonIdentity{DaemonType: d.DaemonType, DaemonID: d.DaemonID}
}

// Name returns "<type>.<id>"
func (d *DaemonDescription) Name() string {
	return d.Identity().Name()
}

// ServiceName derives the owning service from the daemon id
func (d *DaemonDescription) ServiceName() string {
	return d.DaemonType + "." + d.Identity().ServiceToken()
}

// GatewayRegistration is one dashboard-side gateway entry
type GatewayRegistration struct {
	ServiceURL string `json:"service_url"`
}

// GatewayList is the output of `dashboard iscsi-gateway-list`
type GatewayList struct {
	Gateways map[string]GatewayRegistration `json:"gateways"`
}

// CommandRequest is a command for the cluster command interface.
// Unused fields are omitted from the JSON encoding.
type CommandRequest struct {
	Prefix string   `json:"prefix"`
	Entity string   `json:"entity,omitempty"`
	Caps   []string `json:"caps,omitempty"`
	Key    string   `json:"key,omitempty"`
	Val    string   `json:"val,omitempty"`
	Value  string   `json:"value,omitempty"`
	Name   string   `json:"name,omitempty"`
	Format string   `json:"format,omitempty"`

	// Inbuf is passed as input buffer, never as an argument
	Inbuf string `json:"-"`
}
