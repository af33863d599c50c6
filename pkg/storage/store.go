package storage

import (
	"errors"

	"github.com/cuemby/iscsigw/pkg/types"
)

// ErrNotFound is returned when a key has no value in the store
var ErrNotFound = errors.New("not found")

// Store defines the interface for local cluster state storage
type Store interface {
	// Service specs
	SaveSpec(spec *types.ServiceSpec) error
	GetSpec(serviceName string) (*types.ServiceSpec, error)
	ListSpecs() ([]*types.ServiceSpec, error)
	DeleteSpec(serviceName string) error

	// Daemons
	SaveDaemon(daemon *types.DaemonDescription) error
	ListDaemons() ([]*types.DaemonDescription, error)
	ListDaemonsByService(serviceName string) ([]*types.DaemonDescription, error)
	DeleteDaemon(name string) error

	// Cluster config-key storage
	SetConfigKey(key, value string) error
	GetConfigKey(key string) (string, error)
	ListConfigKeys(prefix string) (map[string]string, error)

	// Auth entities
	SaveAuthEntity(entity *AuthEntity) error
	GetAuthEntity(name string) (*AuthEntity, error)

	// Dashboard registry
	SaveGateway(name string, gw types.GatewayRegistration) error
	DeleteGateway(name string) error
	ListGateways() (map[string]types.GatewayRegistration, error)
	SetDashboardSetting(key, value string) error
	GetDashboardSetting(key string) (string, error)

	// Utility
	Close() error
}

// AuthEntity is a stored authentication identity and its capabilities
type AuthEntity struct {
	Entity string   `json:"entity"`
	Key    string   `json:"key"`
	Caps   []string `json:"caps"`
}
