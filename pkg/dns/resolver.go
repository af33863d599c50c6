package dns

import (
	"net"
	"strings"
	"time"

	"github.com/cuemby/iscsigw/pkg/log"
	"github.com/miekg/dns"
)

// Resolver maps gateway hostnames to IP addresses.
// Lookups go static table, then the configured DNS servers, then the
// system resolver. A host that cannot be resolved maps to itself.
type Resolver struct {
	hosts    map[string]string
	upstream []string
	client   *dns.Client
	lookupIP func(host string) ([]net.IP, error)
}

// NewResolver creates a resolver with a static host table and upstream DNS servers
func NewResolver(hosts map[string]string, upstream []string) *Resolver {
	static := make(map[string]string, len(hosts))
	for name, ip := range hosts {
		static[strings.ToLower(name)] = ip
	}
	return &Resolver{
		hosts:    static,
		upstream: upstream,
		client:   &dns.Client{Net: "udp", Timeout: 2 * time.Second},
		lookupIP: net.LookupIP,
	}
}

// ResolveIP returns the address to reach hostname at
func (r *Resolver) ResolveIP(hostname string) string {
	if ip := net.ParseIP(hostname); ip != nil {
		return hostname
	}

	if ip, ok := r.hosts[strings.ToLower(hostname)]; ok {
		return ip
	}

	if ip := r.queryUpstream(hostname); ip != "" {
		return ip
	}

	ips, err := r.lookupIP(hostname)
	if err == nil && len(ips) > 0 {
		return pickIP(ips).String()
	}

	log.Logger.Warn().
		Err(err).
		Str("component", "dns").
		Str("hostname", hostname).
		Msg("cannot resolve ip for host, using hostname")
	return hostname
}

func (r *Resolver) queryUpstream(hostname string) string {
	if len(r.upstream) == 0 {
		return ""
	}

	msg := &dns.Msg{}
	msg.SetQuestion(dns.Fqdn(hostname), dns.TypeA)
	msg.RecursionDesired = true

	for _, upstream := range r.upstream {
		resp, _, err := r.client.Exchange(msg, upstream)
		if err != nil {
			log.Logger.Debug().
				Err(err).
				Str("component", "dns").
				Str("upstream", upstream).
				Msg("failed to query upstream")
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			continue
		}
		for _, rr := range resp.Answer {
			if a, ok := rr.(*dns.A); ok {
				return a.A.String()
			}
		}
	}
	return ""
}

// pickIP prefers the first IPv4 address
func pickIP(ips []net.IP) net.IP {
	for _, ip := range ips {
		if ip.To4() != nil {
			return ip
		}
	}
	return ips[0]
}
