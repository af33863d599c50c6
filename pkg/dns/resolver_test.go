package dns

import (
	"errors"
	"net"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSystemLookup(string) ([]net.IP, error) {
	return nil, errors.New("no such host")
}

// startTestServer serves A records for the given names on a random UDP port
func startTestServer(t *testing.T, records map[string]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		msg := &dns.Msg{}
		msg.SetReply(r)
		for _, q := range r.Question {
			ip, ok := records[q.Name]
			if !ok || q.Qtype != dns.TypeA {
				msg.Rcode = dns.RcodeNameError
				continue
			}
			msg.Answer = append(msg.Answer, &dns.A{
				Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 30},
				A:   net.ParseIP(ip),
			})
		}
		_ = w.WriteMsg(msg)
	})

	started := make(chan struct{})
	server := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = server.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = server.Shutdown() })

	return pc.LocalAddr().String()
}

func TestResolveIPLiteral(t *testing.T) {
	r := NewResolver(nil, nil)
	r.lookupIP = noSystemLookup

	assert.Equal(t, "10.0.0.5", r.ResolveIP("10.0.0.5"))
	assert.Equal(t, "fd00::1", r.ResolveIP("fd00::1"))
}

func TestResolveIPStaticHosts(t *testing.T) {
	r := NewResolver(map[string]string{"Host-A": "10.0.0.1"}, nil)
	r.lookupIP = noSystemLookup

	assert.Equal(t, "10.0.0.1", r.ResolveIP("host-a"))
}

func TestResolveIPUpstream(t *testing.T) {
	addr := startTestServer(t, map[string]string{"host-b.": "10.0.0.2"})

	r := NewResolver(nil, []string{addr})
	r.lookupIP = noSystemLookup

	assert.Equal(t, "10.0.0.2", r.ResolveIP("host-b"))
}

func TestResolveIPSystemFallbackPrefersIPv4(t *testing.T) {
	r := NewResolver(nil, nil)
	r.lookupIP = func(string) ([]net.IP, error) {
		return []net.IP{net.ParseIP("fd00::2"), net.ParseIP("10.0.0.3")}, nil
	}

	assert.Equal(t, "10.0.0.3", r.ResolveIP("host-c"))

	r.lookupIP = func(string) ([]net.IP, error) {
		return []net.IP{net.ParseIP("fd00::2")}, nil
	}
	assert.Equal(t, "fd00::2", r.ResolveIP("host-c"))
}

func TestResolveIPUnresolvable(t *testing.T) {
	addr := startTestServer(t, map[string]string{})

	r := NewResolver(nil, []string{addr})
	r.lookupIP = noSystemLookup

	assert.Equal(t, "host-d", r.ResolveIP("host-d"))
}
