package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bionetslab/digest-go/internal/annotstore"
	annotduck "github.com/bionetslab/digest-go/internal/annotstore/duckstore"
	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/distmat"
	distduck "github.com/bionetslab/digest-go/internal/distmat/duckstore"
	"github.com/bionetslab/digest-go/internal/registry"
)

// loadedStore bundles the three collaborators the validation engine needs
// at startup: the identifier registry, the
// annotation store, and the sparse distance store, all loaded from one
// store directory.
type loadedStore struct {
	Reg    *registry.Registry
	Annot  *annotstore.Store
	Dist   *distmat.Store
	coefs  []coefficient.Coefficient
	domain []registry.Domain
}

// loadStore opens the DuckDB-backed persistence files under dir (see
// internal/distmat/duckstore, internal/annotstore/duckstore) and replays
// them into fresh in-memory stores. The registry is rebuilt first from
// dir/registry.tsv (the alias-table format of
// internal/registry.LoadAliasTable) so entity indices line up with the
// ones baked into the duckdb snapshots. A missing file of either kind is
// not an error: loadStore just returns empty stores, ready to be filled
// by the extender.
func loadStore(dir string) (*loadedStore, error) {
	ls := &loadedStore{
		Reg:    registry.New(),
		Annot:  annotstore.New(),
		Dist:   distmat.New(),
		coefs:  []coefficient.Coefficient{coefficient.Jaccard, coefficient.Overlap},
		domain: []registry.Domain{registry.Gene, registry.Disease},
	}

	regPath := filepath.Join(dir, "registry.tsv")
	if f, err := os.Open(regPath); err == nil {
		defer f.Close()
		if err := registry.LoadAliasTable(ls.Reg, f); err != nil {
			return nil, fmt.Errorf("load registry %s: %w", regPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open registry %s: %w", regPath, err)
	}

	if err := ls.loadAnnotations(dir); err != nil {
		return nil, err
	}
	if err := ls.loadDistances(dir); err != nil {
		return nil, err
	}
	return ls, nil
}

func (ls *loadedStore) loadAnnotations(dir string) error {
	path := filepath.Join(dir, "annotations.duckdb")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := annotduck.Open(path)
	if err != nil {
		return fmt.Errorf("open annotation store %s: %w", path, err)
	}
	defer db.Close()

	for _, domain := range ls.domain {
		for _, cat := range annotstore.CategoriesFor(domain) {
			if err := db.Load(domain, cat, ls.Annot); err != nil {
				return fmt.Errorf("load annotations %s/%s: %w", domain, cat, err)
			}
		}
	}
	return nil
}

func (ls *loadedStore) loadDistances(dir string) error {
	path := filepath.Join(dir, "distances.duckdb")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := distduck.Open(path)
	if err != nil {
		return fmt.Errorf("open distance store %s: %w", path, err)
	}
	defer db.Close()

	for _, domain := range ls.domain {
		for _, coef := range ls.coefs {
			entities, err := db.LoadDirectory(domain, coef)
			if err != nil {
				return fmt.Errorf("load directory %s/%s: %w", domain, coef, err)
			}
			if len(entities) == 0 {
				continue
			}
			ls.Dist.AppendEntities(domain, coef, entities)

			for _, cat := range annotstore.CategoriesFor(domain) {
				triples, err := db.LoadTriples(domain, string(cat), coef, entities)
				if err != nil {
					return fmt.Errorf("load triples %s/%s/%s: %w", domain, cat, coef, err)
				}
				if len(triples) == 0 {
					continue
				}
				rows := make([]uint32, len(triples))
				cols := make([]uint32, len(triples))
				values := make([]float32, len(triples))
				for i, t := range triples {
					ri, _ := ls.Dist.RowOf(domain, coef, t.I)
					rj, _ := ls.Dist.RowOf(domain, coef, t.J)
					rows[i], cols[i] = ri, rj
					values[i] = float32(t.Value)
				}
				if err := ls.Dist.InsertTriples(domain, string(cat), coef, rows, cols, values); err != nil {
					return fmt.Errorf("insert triples %s/%s/%s: %w", domain, cat, coef, err)
				}
			}
		}
	}
	return nil
}
