package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

var (
	ErrNoCheck        = errors.New("no check configured")
	ErrMultipleChecks = errors.New("more than one check configured")
)

// Validate checks the service file and reports every problem it finds.
// It MUST NOT mutate the file.
func Validate(f *File) error {
	if f == nil {
		return errors.New("service file is empty")
	}

	var err error
	if f.CheckIntervalSuccess == 0 {
		err = multierr.Append(err, errors.New("check_interval_success must be > 0"))
	}
	if f.CheckIntervalFail == 0 {
		err = multierr.Append(err, errors.New("check_interval_fail must be > 0"))
	}
	if f.NotifyFailures == 0 {
		err = multierr.Append(err, errors.New("notify_failures must be >= 1"))
	}

	// stable error order
	ids := make([]string, 0, len(f.Services))
	for id := range f.Services {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			err = multierr.Append(err, errors.New("service with empty id"))
			continue
		}
		if e := validateService(f.Services[id]); e != nil {
			err = multierr.Append(err, fmt.Errorf("service %q: %w", id, e))
		}
	}
	return err
}

func validateService(s Service) error {
	var err error
	if strings.TrimSpace(s.Name) == "" {
		err = multierr.Append(err, errors.New("name is required"))
	}
	if p := s.CheckIntervalSuccess; p != nil && *p == 0 {
		err = multierr.Append(err, errors.New("check_interval_success must be > 0"))
	}
	if p := s.CheckIntervalFail; p != nil && *p == 0 {
		err = multierr.Append(err, errors.New("check_interval_fail must be > 0"))
	}
	if p := s.NotifyFailures; p != nil && *p == 0 {
		err = multierr.Append(err, errors.New("notify_failures must be >= 1"))
	}

	switch s.Check.variants() {
	case 0:
		return multierr.Append(err, ErrNoCheck)
	case 1:
	default:
		return multierr.Append(err, ErrMultipleChecks)
	}

	c := s.Check
	switch {
	case c.HTTP != nil:
		u, e := url.Parse(strings.TrimSpace(c.HTTP.URL))
		if e != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			err = multierr.Append(err, fmt.Errorf("http: invalid url %q", c.HTTP.URL))
		}
		if p := c.HTTP.ExpectedStatus; p != nil && (*p < 100 || *p > 599) {
			err = multierr.Append(err, fmt.Errorf("http: expected_status %d out of range", *p))
		}
	case c.Certificate != nil:
		err = multierr.Append(err, hostPort("certificate", c.Certificate.Host, c.Certificate.Port))
	case c.TCPPing != nil:
		err = multierr.Append(err, hostPort("tcpPing", c.TCPPing.Host, c.TCPPing.Port))
	case c.DNS != nil:
		if strings.TrimSpace(c.DNS.Host) == "" {
			err = multierr.Append(err, errors.New("dns: host is required"))
		}
	}
	return err
}

func hostPort(kind, host string, port uint16) error {
	var err error
	if strings.TrimSpace(host) == "" {
		err = multierr.Append(err, fmt.Errorf("%s: host is required", kind))
	}
	if port == 0 {
		err = multierr.Append(err, fmt.Errorf("%s: port is required", kind))
	}
	return err
}
