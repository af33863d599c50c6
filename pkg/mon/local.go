package mon

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cuemby/iscsigw/pkg/storage"
	"github.com/cuemby/iscsigw/pkg/types"
)

// SSLVerificationSetting is the dashboard setting key written by
// `dashboard set-iscsi-api-ssl-verification`
const SSLVerificationSetting = "ISCSI_API_SSL_VERIFICATION"

// LocalCommander serves cluster commands from a local store.
// It stands in for the monitor and dashboard when iscsigw runs standalone.
type LocalCommander struct {
	mu    sync.Mutex
	store storage.Store
	pools []string
	now   func() time.Time
}

// NewLocalCommander creates a commander over store that knows about pools
func NewLocalCommander(store storage.Store, pools []string) *LocalCommander {
	return &LocalCommander{
		store: store,
		pools: append([]string(nil), pools...),
		now:   time.Now,
	}
}

// CheckMonCommand dispatches req on its prefix
func (c *LocalCommander) CheckMonCommand(req types.CommandRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch req.Prefix {
	case PrefixAuthGetOrCreate:
		return c.authGetOrCreate(req)

	case PrefixConfigKeySet:
		if req.Key == "" {
			return "", &CommandError{Prefix: req.Prefix, Code: EINVAL, Message: "key is required"}
		}
		if err := c.store.SetConfigKey(req.Key, req.Val); err != nil {
			return "", err
		}
		return "", nil

	case PrefixConfigKeyGet:
		value, err := c.store.GetConfigKey(req.Key)
		if errors.Is(err, storage.ErrNotFound) {
			return "", &CommandError{Prefix: req.Prefix, Code: ENOENT, Message: fmt.Sprintf("error obtaining '%s': (2) No such file or directory", req.Key)}
		}
		return value, err

	case PrefixOSDPoolLs:
		if req.Format == "json" {
			data, err := json.Marshal(c.pools)
			return string(data), err
		}
		return strings.Join(c.pools, "\n"), nil

	case PrefixDashboardGatewayList:
		gateways, err := c.store.ListGateways()
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(types.GatewayList{Gateways: gateways})
		return string(data), err

	case PrefixDashboardGatewayAdd:
		return c.gatewayAdd(req)

	case PrefixDashboardGatewayRm:
		gateways, err := c.store.ListGateways()
		if err != nil {
			return "", err
		}
		if _, ok := gateways[req.Name]; !ok {
			return "", &CommandError{Prefix: req.Prefix, Code: ENOENT, Message: fmt.Sprintf("iSCSI gateway '%s' does not exist", req.Name)}
		}
		if err := c.store.DeleteGateway(req.Name); err != nil {
			return "", err
		}
		return "Success", nil

	case PrefixDashboardSSLVerify:
		if req.Value != "true" && req.Value != "false" {
			return "", &CommandError{Prefix: req.Prefix, Code: EINVAL, Message: fmt.Sprintf("invalid value %q", req.Value)}
		}
		if err := c.store.SetDashboardSetting(SSLVerificationSetting, req.Value); err != nil {
			return "", err
		}
		return "Option " + SSLVerificationSetting + " updated", nil

	default:
		return "", &CommandError{Prefix: req.Prefix, Code: EINVAL, Message: "unknown command"}
	}
}

func (c *LocalCommander) authGetOrCreate(req types.CommandRequest) (string, error) {
	if req.Entity == "" {
		return "", &CommandError{Prefix: req.Prefix, Code: EINVAL, Message: "entity is required"}
	}
	if len(req.Caps)%2 != 0 {
		return "", &CommandError{Prefix: req.Prefix, Code: EINVAL, Message: "caps must be service/profile pairs"}
	}

	existing, err := c.store.GetAuthEntity(req.Entity)
	switch {
	case err == nil:
		if !slices.Equal(capsMap(existing.Caps), capsMap(req.Caps)) {
			return "", &CommandError{
				Prefix:  req.Prefix,
				Code:    EINVAL,
				Message: fmt.Sprintf("key for %s exists but cap does not match", req.Entity),
			}
		}
		return formatKeyring(existing), nil
	case !errors.Is(err, storage.ErrNotFound):
		return "", err
	}

	key, err := c.generateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	entity := &storage.AuthEntity{Entity: req.Entity, Key: key, Caps: append([]string(nil), req.Caps...)}
	if err := c.store.SaveAuthEntity(entity); err != nil {
		return "", err
	}
	return formatKeyring(entity), nil
}

func (c *LocalCommander) gatewayAdd(req types.CommandRequest) (string, error) {
	if req.Inbuf == "" {
		return "", &CommandError{Prefix: req.Prefix, Code: EINVAL, Message: "service url is required in the input buffer"}
	}
	u, err := url.Parse(req.Inbuf)
	if err != nil || u.Host == "" {
		return "", &CommandError{Prefix: req.Prefix, Code: EINVAL, Message: "invalid service url"}
	}
	name := req.Name
	if name == "" {
		name = u.Hostname()
	}
	if err := c.store.SaveGateway(name, types.GatewayRegistration{ServiceURL: req.Inbuf}); err != nil {
		return "", err
	}
	return "Success", nil
}

// generateKey builds a secret in the cluster key encoding:
// le16 type, le32 sec, le32 nsec, le16 length, then the secret bytes.
func (c *LocalCommander) generateKey() (string, error) {
	secret := make([]byte, 16)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	now := c.now()
	buf := make([]byte, 12, 12+len(secret))
	binary.LittleEndian.PutUint16(buf[0:], 1)
	binary.LittleEndian.PutUint32(buf[2:], uint32(now.Unix()))
	binary.LittleEndian.PutUint32(buf[6:], uint32(now.Nanosecond()))
	binary.LittleEndian.PutUint16(buf[10:], uint16(len(secret)))
	buf = append(buf, secret...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

func formatKeyring(entity *storage.AuthEntity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n\tkey = %s\n", entity.Entity, entity.Key)
	caps := capsPairs(entity.Caps)
	for _, p := range caps {
		fmt.Fprintf(&b, "\tcaps %s = %q\n", p[0], p[1])
	}
	return b.String()
}

// capsMap flattens caps into sorted "service=profile" strings for comparison
func capsMap(caps []string) []string {
	var out []string
	for _, p := range capsPairs(caps) {
		out = append(out, p[0]+"="+p[1])
	}
	return out
}

func capsPairs(caps []string) [][2]string {
	var pairs [][2]string
	for i := 0; i+1 < len(caps); i += 2 {
		pairs = append(pairs, [2]string{caps[i], caps[i+1]})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	return pairs
}
