package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cuemby/iscsigw/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketSpecs             = []byte("specs")
	bucketDaemons           = []byte("daemons")
	bucketConfigKeys        = []byte("config_keys")
	bucketAuth              = []byte("auth")
	bucketGateways          = []byte("dashboard_gateways")
	bucketDashboardSettings = []byte("dashboard_settings")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, "iscsigw.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketSpecs,
			bucketDaemons,
			bucketConfigKeys,
			bucketAuth,
			bucketGateways,
			bucketDashboardSettings,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) put(bucket []byte, key string, v interface{}) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *BoltStore) get(bucket []byte, key string, v interface{}) error {
	return s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%s %q: %w", bucket, key, ErrNotFound)
		}
		return json.Unmarshal(data, v)
	})
}

func (s *BoltStore) delete(bucket []byte, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
}

// Spec operations
func (s *BoltStore) SaveSpec(spec *types.ServiceSpec) error {
	return s.put(bucketSpecs, spec.ServiceName(), spec)
}

func (s *BoltStore) GetSpec(serviceName string) (*types.ServiceSpec, error) {
	var spec types.ServiceSpec
	if err := s.get(bucketSpecs, serviceName, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *BoltStore) ListSpecs() ([]*types.ServiceSpec, error) {
	var specs []*types.ServiceSpec
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSpecs).ForEach(func(k, v []byte) error {
			var spec types.ServiceSpec
			if err := json.Unmarshal(v, &spec); err != nil {
				return err
			}
			specs = append(specs, &spec)
			return nil
		})
	})
	return specs, err
}

func (s *BoltStore) DeleteSpec(serviceName string) error {
	return s.delete(bucketSpecs, serviceName)
}

// Daemon operations
func (s *BoltStore) SaveDaemon(daemon *types.DaemonDescription) error {
	return s.put(bucketDaemons, daemon.Name(), daemon)
}

// ListDaemons returns daemons in key order, which keeps per-host output stable
func (s *BoltStore) ListDaemons() ([]*types.DaemonDescription, error) {
	var daemons []*types.DaemonDescription
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDaemons).ForEach(func(k, v []byte) error {
			var daemon types.DaemonDescription
			if err := json.Unmarshal(v, &daemon); err != nil {
				return err
			}
			daemons = append(daemons, &daemon)
			return nil
		})
	})
	return daemons, err
}

func (s *BoltStore) ListDaemonsByService(serviceName string) ([]*types.DaemonDescription, error) {
	daemons, err := s.ListDaemons()
	if err != nil {
		return nil, err
	}

	var filtered []*types.DaemonDescription
	for _, daemon := range daemons {
		if daemon.ServiceName() == serviceName {
			filtered = append(filtered, daemon)
		}
	}
	return filtered, nil
}

func (s *BoltStore) DeleteDaemon(name string) error {
	return s.delete(bucketDaemons, name)
}

// Config-key operations. Values are stored raw, not JSON encoded.
func (s *BoltStore) SetConfigKey(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketConfigKeys).Put([]byte(key), []byte(value))
	})
}

func (s *BoltStore) GetConfigKey(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketConfigKeys).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("config-key %q: %w", key, ErrNotFound)
		}
		value = string(data)
		return nil
	})
	return value, err
}

func (s *BoltStore) ListConfigKeys(prefix string) (map[string]string, error) {
	keys := make(map[string]string)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketConfigKeys).Cursor()
		p := []byte(prefix)
		for k, v := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
			keys[string(k)] = string(v)
		}
		return nil
	})
	return keys, err
}

// Auth operations
func (s *BoltStore) SaveAuthEntity(entity *AuthEntity) error {
	return s.put(bucketAuth, entity.Entity, entity)
}

func (s *BoltStore) GetAuthEntity(name string) (*AuthEntity, error) {
	var entity AuthEntity
	if err := s.get(bucketAuth, name, &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// Dashboard operations
func (s *BoltStore) SaveGateway(name string, gw types.GatewayRegistration) error {
	return s.put(bucketGateways, name, gw)
}

func (s *BoltStore) DeleteGateway(name string) error {
	return s.delete(bucketGateways, name)
}

func (s *BoltStore) ListGateways() (map[string]types.GatewayRegistration, error) {
	gateways := make(map[string]types.GatewayRegistration)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGateways).ForEach(func(k, v []byte) error {
			var gw types.GatewayRegistration
			if err := json.Unmarshal(v, &gw); err != nil {
				return err
			}
			gateways[string(k)] = gw
			return nil
		})
	})
	return gateways, err
}

func (s *BoltStore) SetDashboardSetting(key, value string) error {
	return s.put(bucketDashboardSettings, key, value)
}

func (s *BoltStore) GetDashboardSetting(key string) (string, error) {
	var value string
	if err := s.get(bucketDashboardSettings, key, &value); err != nil {
		return "", err
	}
	return value, nil
}
