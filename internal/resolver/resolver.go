// Package resolver looks up reverse DNS names for hop addresses.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	gocache "github.com/patrickmn/go-cache"
)

// ErrNoName is returned when an address has no PTR record
var ErrNoName = errors.New("no PTR record")

// Resolver maps an IP address to a host name
type Resolver interface {
	LookupAddr(ctx context.Context, ip string) (string, error)
}

// DNSResolver sends PTR queries to a single DNS server
type DNSResolver struct {
	client *dns.Client
	server string
	cache  *gocache.Cache
}

// NewDNSResolver creates a resolver querying server ("host:port").
// Answers, including misses, are kept for ttl.
func NewDNSResolver(server string, timeout, ttl time.Duration) *DNSResolver {
	return &DNSResolver{
		client: &dns.Client{Timeout: timeout},
		server: server,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// LookupAddr returns the first PTR name for ip without the trailing dot
func (r *DNSResolver) LookupAddr(ctx context.Context, ip string) (string, error) {
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid address %q", ip)
	}
	if v, ok := r.cache.Get(ip); ok {
		name := v.(string)
		if name == "" {
			return "", ErrNoName
		}
		return name, nil
	}

	arpa, err := dns.ReverseAddr(ip)
	if err != nil {
		return "", fmt.Errorf("failed to build reverse name for %s: %w", ip, err)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(arpa, dns.TypePTR)

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return "", fmt.Errorf("failed to query PTR for %s: %w", ip, err)
	}

	for _, ans := range resp.Answer {
		if ptr, ok := ans.(*dns.PTR); ok {
			name := strings.TrimSuffix(ptr.Ptr, ".")
			r.cache.SetDefault(ip, name)
			return name, nil
		}
	}

	if resp.Rcode == dns.RcodeSuccess || resp.Rcode == dns.RcodeNameError {
		r.cache.SetDefault(ip, "")
	}
	return "", ErrNoName
}

// Nop never resolves anything
type Nop struct{}

// LookupAddr always returns ErrNoName
func (Nop) LookupAddr(context.Context, string) (string, error) {
	return "", ErrNoName
}
