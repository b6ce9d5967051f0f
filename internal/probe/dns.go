package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNS classifications.
const (
	ClassResolves  = "RESOLVES"
	ClassNXDomain  = "NXDOMAIN"
	ClassNoARecord = "NO_A_RECORD"
	ClassServFail  = "SERVFAIL_or_TIMEOUT"
	ClassInvalid   = "INVALID_NAME"
)

type DNSStatus struct {
	Domain        string
	HasAOrAAAA    bool
	IPs           []net.IP
	CNAME         string
	HasNS         bool
	Nameservers   []string
	Class         string
	ResolverError string
}

// DNSProbe succeeds when Host has at least one A or AAAA record.
type DNSProbe struct {
	Host     string
	Timeout  time.Duration
	Resolver *net.Resolver // nil uses the OS resolver
}

func (d *DNSProbe) Execute(ctx context.Context) Outcome {
	return timed(func() Outcome {
		s := d.Lookup(ctx)
		if s.Class == ClassResolves {
			return Succeeded(s.Class)
		}
		if s.ResolverError != "" {
			return Failed("%s: %s", s.Class, s.ResolverError)
		}
		return Failed("%s", s.Class)
	})
}

// Lookup classifies the host. NS records are consulted only to tell an
// existing zone without addresses apart from a missing name.
func (d *DNSProbe) Lookup(ctx context.Context) DNSStatus {
	s := DNSStatus{Domain: strings.TrimSpace(d.Host)}
	if s.Domain == "" || strings.Contains(s.Domain, "://") {
		s.Class = ClassInvalid
		return s
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r := d.Resolver
	if r == nil {
		r = net.DefaultResolver
	}

	ips, err := r.LookupIP(ctx, "ip", s.Domain)
	if err == nil && len(ips) > 0 {
		s.HasAOrAAAA = true
		s.IPs = ips
		s.Class = ClassResolves
		return s
	}
	if err != nil {
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) {
			if de.IsNotFound {
				s.Class = ClassNXDomain
			} else if de.IsTemporary || de.Timeout() {
				s.Class = ClassServFail
			}
		}
	}

	if cname, err := r.LookupCNAME(ctx, s.Domain); err == nil && !strings.EqualFold(cname, s.Domain+".") {
		s.CNAME = strings.TrimSuffix(cname, ".")
	}

	if ns, err := r.LookupNS(ctx, s.Domain); err == nil && len(ns) > 0 {
		s.HasNS = true
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
		if s.Class == ClassNXDomain || s.Class == "" {
			s.Class = ClassNoARecord
		}
	}

	if s.Class == "" {
		if s.ResolverError != "" {
			s.Class = ClassServFail
		} else {
			s.Class = ClassNXDomain
		}
	}
	return s
}
