// Package cookiejar implements a single-site cookie store that can be
// snapshotted and restored, which net/http/cookiejar cannot do.
package cookiejar

import (
	"strings"
	"sync"
)

type Record struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

type Entry struct {
	Name   string `json:"name"`
	Record Record `json:"record"`
}

// Jar keeps at most one record per cookie name, last write wins.
// It is keyed by name rather than by domain since a single jar only
// ever talks to one judge deployment.
type Jar struct {
	mu    sync.Mutex
	names []string
	byKey map[string]Record
}

func New() *Jar {
	return &Jar{byKey: map[string]Record{}}
}

func (j *Jar) store(r Record) {
	if _, ok := j.byKey[r.Name]; !ok {
		j.names = append(j.names, r.Name)
	}
	j.byKey[r.Name] = r
}

// SetFromHeader parses one Set-Cookie header value. The first name=value
// pair is the cookie identity; path= and domain= attributes are honored
// case-insensitively, everything else (expires, httponly, ...) is ignored.
func (j *Jar) SetFromHeader(header, domain string) {
	parts := strings.Split(header, ";")
	if len(parts) == 0 {
		return
	}
	name, value, ok := strings.Cut(strings.TrimSpace(parts[0]), "=")
	if !ok || name == "" {
		return
	}
	rec := Record{
		Name:   name,
		Value:  value,
		Domain: domain,
		Path:   "/",
	}
	for _, attr := range parts[1:] {
		k, v, _ := strings.Cut(strings.TrimSpace(attr), "=")
		switch strings.ToLower(k) {
		case "path":
			rec.Path = v
		case "domain":
			rec.Domain = v
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.store(rec)
}

// HeaderFor renders the Cookie request header for the given host.
// Domain matching is deliberately loose in both directions so that a
// cookie set on "openjudge.cn" is sent to "group.openjudge.cn" and
// vice versa.
func (j *Jar) HeaderFor(domain string) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	var pairs []string
	for _, name := range j.names {
		rec := j.byKey[name]
		if rec.Domain == "" ||
			strings.Contains(domain, rec.Domain) ||
			strings.Contains(rec.Domain, domain) {
			pairs = append(pairs, rec.Name+"="+rec.Value)
		}
	}
	return strings.Join(pairs, "; ")
}

func (j *Jar) Set(name, value, domain, path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.store(Record{Name: name, Value: value, Domain: domain, Path: path})
}

func (j *Jar) Get(name string) (Record, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	rec, ok := j.byKey[name]
	return rec, ok
}

func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.names = nil
	j.byKey = map[string]Record{}
}

// Export snapshots the jar in insertion order. Import(Export()) must
// reproduce identical HeaderFor output for every domain.
func (j *Jar) Export() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries := make([]Entry, 0, len(j.names))
	for _, name := range j.names {
		entries = append(entries, Entry{Name: name, Record: j.byKey[name]})
	}
	return entries
}

func (j *Jar) Import(entries []Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.names = nil
	j.byKey = map[string]Record{}
	for _, e := range entries {
		rec := e.Record
		if rec.Name == "" {
			rec.Name = e.Name
		}
		j.store(rec)
	}
}
