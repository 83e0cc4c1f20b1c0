// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package images serves remote images restricted to a configured allowlist.
package images

import "strings"

// Allowlist answers whether a remote host may be fetched. Lookup is
// case-insensitive and exact; no wildcard or suffix matching. The configured
// order is preserved for display purposes.
type Allowlist struct {
	hosts []string
	index map[string]struct{}
}

// NewAllowlist builds an allowlist from hosts. The slice is copied; the
// caller's order is kept verbatim.
func NewAllowlist(hosts []string) *Allowlist {
	a := &Allowlist{
		hosts: append([]string(nil), hosts...),
		index: make(map[string]struct{}, len(hosts)),
	}
	for _, h := range hosts {
		a.index[strings.ToLower(h)] = struct{}{}
	}
	return a
}

// Allows reports whether host is on the allowlist.
func (a *Allowlist) Allows(host string) bool {
	_, ok := a.index[strings.ToLower(host)]
	return ok
}

// Hosts returns the allowed hosts in configured order.
func (a *Allowlist) Hosts() []string {
	return append([]string(nil), a.hosts...)
}

// Len returns the number of allowed hosts.
func (a *Allowlist) Len() int {
	return len(a.hosts)
}
