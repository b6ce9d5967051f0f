package config

import "strings"

// Normalize trims whitespace from user-supplied strings.
// It MUST be called only after Validate().
func Normalize(f *File) {
	if f == nil {
		return
	}
	for id, s := range f.Services {
		s.Name = strings.TrimSpace(s.Name)
		s.Description = strings.TrimSpace(s.Description)
		switch c := s.Check; {
		case c.HTTP != nil:
			c.HTTP.URL = strings.TrimSpace(c.HTTP.URL)
		case c.Certificate != nil:
			c.Certificate.Host = strings.TrimSpace(c.Certificate.Host)
		case c.TCPPing != nil:
			c.TCPPing.Host = strings.TrimSpace(c.TCPPing.Host)
		case c.DNS != nil:
			c.DNS.Host = strings.TrimSpace(c.DNS.Host)
		}
		f.Services[id] = s
	}
}

// Normalized returns a trimmed deep copy of f, leaving f untouched.
// Like Normalize, it MUST be called only after Validate().
func Normalized(f *File) *File {
	cp := f.Clone()
	Normalize(cp)
	return cp
}
