package registry

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// aliasSeparator joins multi-valued alias-table cells.
const aliasSeparator = ";"

// WriteAliasTable persists the registry as an id alias table:
// a tab-separated table, one row per canonical entity,
// with one column per namespace in namespaces and semicolon-joined ids
// in each cell. Row order is entity-index order, so LoadAliasTable
// replays Intern calls in the same sequence and reproduces identical
// index assignments.
func WriteAliasTable(r *Registry, w io.Writer, namespaces []Namespace) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprint(bw, "domain"); err != nil {
		return err
	}
	for _, ns := range namespaces {
		if _, err := fmt.Fprintf(bw, "\t%s", ns); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(bw); err != nil {
		return err
	}

	r.mu.RLock()
	entities := make([]EntityIndex, 0, len(r.domain))
	for e := range r.domain {
		entities = append(entities, e)
	}
	r.mu.RUnlock()
	sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })

	for _, e := range entities {
		domain, _ := r.DomainOf(e)
		if _, err := fmt.Fprint(bw, domain); err != nil {
			return err
		}
		for _, ns := range namespaces {
			ids := r.ExternalOf(e, ns)
			if _, err := fmt.Fprintf(bw, "\t%s", strings.Join(ids, aliasSeparator)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadAliasTable replays an alias table written by WriteAliasTable into
// r: the first non-empty cell in a row interns the entity (fixing its
// index), every remaining non-empty cell in that row is aliased onto it.
// Rows must be supplied in the order they were written for index
// assignment to match.
func LoadAliasTable(r *Registry, rd io.Reader) error {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return err
		}
		return fmt.Errorf("alias table: empty input")
	}
	header := strings.Split(scanner.Text(), "\t")
	if len(header) < 2 {
		return fmt.Errorf("alias table: header must list at least one namespace column")
	}
	namespaces := make([]Namespace, len(header)-1)
	for i, h := range header[1:] {
		namespaces[i] = Namespace(h)
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != len(header) {
			return fmt.Errorf("alias table: row has %d columns, want %d", len(cols), len(header))
		}
		domain, err := ParseDomain(cols[0])
		if err != nil {
			return err
		}

		var idx EntityIndex
		assigned := false
		for i, ns := range namespaces {
			for _, id := range splitNonEmpty(cols[i+1]) {
				if !assigned {
					idx, err = r.Intern(ns, domain, id)
					if err != nil {
						return err
					}
					assigned = true
					continue
				}
				// ICD-10 cells may carry unexpanded range expressions;
				// expand them at ingest.
				if ns == NamespaceICD10 {
					if err := r.AliasICD10(id, idx); err != nil {
						return err
					}
					continue
				}
				if err := r.Alias(ns, id, idx); err != nil {
					return err
				}
			}
		}
	}
	return scanner.Err()
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, aliasSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseDomain parses Domain.String()'s output ("gene"/"disease") back
// into a Domain.
func ParseDomain(s string) (Domain, error) {
	switch s {
	case "gene":
		return Gene, nil
	case "disease":
		return Disease, nil
	default:
		return 0, fmt.Errorf("unknown domain %q", s)
	}
}
