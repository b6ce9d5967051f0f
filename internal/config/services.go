package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the service file: process-wide defaults, notifier credentials and
// the monitored services keyed by their identifier.
type File struct {
	TelegramToken        string             `yaml:"telegram_token" json:"telegram_token"`
	TelegramChatID       int64              `yaml:"telegram_chat_id" json:"telegram_chat_id"`
	CheckIntervalSuccess uint64             `yaml:"check_interval_success" json:"check_interval_success"`
	CheckIntervalFail    uint64             `yaml:"check_interval_fail" json:"check_interval_fail"`
	NotifyFailures       uint64             `yaml:"notify_failures" json:"notify_failures"`
	Rereport             uint64             `yaml:"rereport" json:"rereport"`
	WebPort              *uint16            `yaml:"web_port,omitempty" json:"web_port,omitempty"`
	APIBearerToken       string             `yaml:"api_bearer_token,omitempty" json:"api_bearer_token,omitempty"`
	Services             map[string]Service `yaml:"services" json:"services"`
}

// Service is one monitored target as declared in the file. Its identifier is
// the key it is stored under in File.Services.
type Service struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Overrides   `yaml:",inline"`
	Check       Check `yaml:"check" json:"check"`
}

// Overrides holds the optional per-service knobs. A nil field means "use the
// process-wide default".
type Overrides struct {
	CheckIntervalSuccess *uint64 `yaml:"check_interval_success,omitempty" json:"check_interval_success,omitempty"`
	CheckIntervalFail    *uint64 `yaml:"check_interval_fail,omitempty" json:"check_interval_fail,omitempty"`
	NotifyFailures       *uint64 `yaml:"notify_failures,omitempty" json:"notify_failures,omitempty"`
	Rereport             *uint64 `yaml:"rereport,omitempty" json:"rereport,omitempty"`
}

// Defaults are the process-wide values every service falls back to.
type Defaults struct {
	SuccessInterval time.Duration
	FailureInterval time.Duration
	NotifyFailures  uint64
	Rereport        uint64
}

func (f *File) Defaults() Defaults {
	return Defaults{
		SuccessInterval: time.Duration(f.CheckIntervalSuccess) * time.Millisecond,
		FailureInterval: time.Duration(f.CheckIntervalFail) * time.Millisecond,
		NotifyFailures:  f.NotifyFailures,
		Rereport:        f.Rereport,
	}
}

func (o Overrides) SuccessInterval(d Defaults) time.Duration {
	if o.CheckIntervalSuccess != nil {
		return time.Duration(*o.CheckIntervalSuccess) * time.Millisecond
	}
	return d.SuccessInterval
}

func (o Overrides) FailureInterval(d Defaults) time.Duration {
	if o.CheckIntervalFail != nil {
		return time.Duration(*o.CheckIntervalFail) * time.Millisecond
	}
	return d.FailureInterval
}

func (o Overrides) NotifyThreshold(d Defaults) uint64 {
	if o.NotifyFailures != nil {
		return *o.NotifyFailures
	}
	return d.NotifyFailures
}

func (o Overrides) RereportInterval(d Defaults) uint64 {
	if o.Rereport != nil {
		return *o.Rereport
	}
	return d.Rereport
}

// Check selects exactly one probe variant.
type Check struct {
	HTTP        *HTTPCheck        `yaml:"http,omitempty" json:"http,omitempty"`
	Certificate *CertificateCheck `yaml:"certificate,omitempty" json:"certificate,omitempty"`
	TCPPing     *TCPPingCheck     `yaml:"tcpPing,omitempty" json:"tcpPing,omitempty"`
	DNS         *DNSCheck         `yaml:"dns,omitempty" json:"dns,omitempty"`
}

// Kind names the selected variant, or "" when none is set.
func (c Check) Kind() string {
	switch {
	case c.HTTP != nil:
		return "http"
	case c.Certificate != nil:
		return "certificate"
	case c.TCPPing != nil:
		return "tcpPing"
	case c.DNS != nil:
		return "dns"
	}
	return ""
}

// Timeout is the probe deadline of the selected variant.
func (c Check) Timeout() time.Duration {
	switch {
	case c.HTTP != nil:
		return c.HTTP.Timeout()
	case c.Certificate != nil:
		return c.Certificate.Timeout()
	case c.TCPPing != nil:
		return c.TCPPing.Timeout()
	case c.DNS != nil:
		return c.DNS.Timeout()
	}
	return 0
}

func (c Check) variants() int {
	n := 0
	for _, set := range []bool{c.HTTP != nil, c.Certificate != nil, c.TCPPing != nil, c.DNS != nil} {
		if set {
			n++
		}
	}
	return n
}

type HTTPCheck struct {
	URL            string  `yaml:"url" json:"url"`
	ExpectedStatus *uint16 `yaml:"expected_status,omitempty" json:"expected_status,omitempty"`
	TimeoutMS      *uint64 `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty"`
}

func (h HTTPCheck) Expected() int {
	if h.ExpectedStatus != nil {
		return int(*h.ExpectedStatus)
	}
	return 200
}

func (h HTTPCheck) Timeout() time.Duration { return msOr(h.TimeoutMS, 10*time.Second) }

type CertificateCheck struct {
	Host             string  `yaml:"host" json:"host"`
	Port             uint16  `yaml:"port" json:"port"`
	DaysBeforeExpiry *uint64 `yaml:"days_before_expiry,omitempty" json:"days_before_expiry,omitempty"`
	TimeoutMS        *uint64 `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty"`
}

func (c CertificateCheck) Threshold() uint64 {
	if c.DaysBeforeExpiry != nil {
		return *c.DaysBeforeExpiry
	}
	return 30
}

func (c CertificateCheck) Timeout() time.Duration { return msOr(c.TimeoutMS, 5*time.Second) }

type TCPPingCheck struct {
	Host      string  `yaml:"host" json:"host"`
	Port      uint16  `yaml:"port" json:"port"`
	TimeoutMS *uint64 `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty"`
}

func (t TCPPingCheck) Timeout() time.Duration { return msOr(t.TimeoutMS, time.Second) }

type DNSCheck struct {
	Host      string  `yaml:"host" json:"host"`
	TimeoutMS *uint64 `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty"`
}

func (d DNSCheck) Timeout() time.Duration { return msOr(d.TimeoutMS, 3*time.Second) }

func msOr(v *uint64, def time.Duration) time.Duration {
	if v == nil || *v == 0 {
		return def
	}
	return time.Duration(*v) * time.Millisecond
}

// Clone returns a deep copy of f; nothing reachable from the copy is shared
// with f.
func (f *File) Clone() *File {
	if f == nil {
		return nil
	}
	cp := *f
	cp.WebPort = clonePtr(f.WebPort)
	if f.Services != nil {
		cp.Services = make(map[string]Service, len(f.Services))
		for id, s := range f.Services {
			s.CheckIntervalSuccess = clonePtr(s.CheckIntervalSuccess)
			s.CheckIntervalFail = clonePtr(s.CheckIntervalFail)
			s.NotifyFailures = clonePtr(s.NotifyFailures)
			s.Rereport = clonePtr(s.Rereport)
			s.Check = s.Check.clone()
			cp.Services[id] = s
		}
	}
	return &cp
}

func (c Check) clone() Check {
	var out Check
	if c.HTTP != nil {
		h := *c.HTTP
		h.ExpectedStatus = clonePtr(h.ExpectedStatus)
		h.TimeoutMS = clonePtr(h.TimeoutMS)
		out.HTTP = &h
	}
	if c.Certificate != nil {
		cc := *c.Certificate
		cc.DaysBeforeExpiry = clonePtr(cc.DaysBeforeExpiry)
		cc.TimeoutMS = clonePtr(cc.TimeoutMS)
		out.Certificate = &cc
	}
	if c.TCPPing != nil {
		t := *c.TCPPing
		t.TimeoutMS = clonePtr(t.TimeoutMS)
		out.TCPPing = &t
	}
	if c.DNS != nil {
		d := *c.DNS
		d.TimeoutMS = clonePtr(d.TimeoutMS)
		out.DNS = &d
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Parse decodes a YAML service file. Unknown keys are rejected so typos in
// check variants do not silently disable a probe.
func Parse(b []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode service file: %w", err)
	}
	return &f, nil
}

// Load reads, validates and normalizes the service file at path.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service file: %w", err)
	}
	f, err := Parse(b)
	if err != nil {
		return nil, err
	}
	if err := Validate(f); err != nil {
		return nil, err
	}
	Normalize(f)
	return f, nil
}

// Marshal encodes f as YAML.
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode service file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
