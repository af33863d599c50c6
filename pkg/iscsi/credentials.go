package iscsi

import (
	"fmt"

	"github.com/cuemby/iscsigw/pkg/events"
	"github.com/cuemby/iscsigw/pkg/metrics"
	"github.com/cuemby/iscsigw/pkg/mon"
	"github.com/cuemby/iscsigw/pkg/types"
)

// gatewayCaps is the exact capability set of a gateway identity
var gatewayCaps = []string{
	"mon", `profile rbd, allow command "osd blocklist", allow command "config-key get" with "key" prefix "iscsi/"`,
	"mgr", `allow command "service status"`,
	"osd", "allow rwx",
}

// GatewayCaps returns the capabilities requested for every gateway identity
func GatewayCaps() []string {
	return append([]string(nil), gatewayCaps...)
}

// ProvisionCredentials gets or creates the gateway's auth identity and stores
// any TLS material from spec under the gateway's config-key prefix.
// Command failures are returned unchanged; a keyring already issued is not
// revoked when a later write fails, the next reconciliation repeats the calls.
func (s *Service) ProvisionCredentials(spec *types.ServiceSpec, daemonID string) (string, error) {
	entity := authEntity(daemonID)
	keyring, err := s.mon.CheckMonCommand(types.CommandRequest{
		Prefix: mon.PrefixAuthGetOrCreate,
		Entity: entity,
		Caps:   GatewayCaps(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get or create auth entity %s: %w", entity, err)
	}
	metrics.KeyringsIssued.Inc()
	s.observer.Emit(events.NewEvent(events.EventKeyringIssued, "Issued gateway keyring", map[string]string{
		"entity": entity,
	}))

	if spec.SSLCert.IsSet() {
		if err := s.storeTLSMaterial(daemonID, certSuffix, spec.SSLCert); err != nil {
			return "", err
		}
	}
	if spec.SSLKey.IsSet() {
		if err := s.storeTLSMaterial(daemonID, keySuffix, spec.SSLKey); err != nil {
			return "", err
		}
	}

	return keyring, nil
}

func (s *Service) storeTLSMaterial(daemonID, suffix string, blob types.Blob) error {
	key := TLSConfigKey(daemonID, suffix)
	_, err := s.mon.CheckMonCommand(types.CommandRequest{
		Prefix: mon.PrefixConfigKeySet,
		Key:    key,
		Val:    blob.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}

	kind := "crt"
	if suffix == keySuffix {
		kind = "key"
	}
	metrics.TLSMaterialStored.WithLabelValues(kind).Inc()
	s.observer.Emit(events.NewEvent(events.EventTLSMaterialStored, "Stored gateway TLS material", map[string]string{
		"key":  key,
		"kind": kind,
	}))
	return nil
}

// TLSConfigKey returns the config-key path for a gateway's TLS file,
// e.g. iscsi/client.iscsi.gw1.x/iscsi-gateway.crt
func TLSConfigKey(daemonID, suffix string) string {
	return fmt.Sprintf("%s/%s/%s", TYPE, clientName(daemonID), suffix)
}

// authEntity names the gateway's identity, e.g. client.iscsi.gw1.x
func authEntity(daemonID string) string {
	return "client." + TYPE + "." + daemonID
}
