// Command dbinspect prints a read-only overview of a PauseMemo database:
// how many keys each key family holds and how many bytes they use.
//
// It takes the same flags and environment as the server.
package main

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pausememo/pausememo/internal/config"
	"github.com/pausememo/pausememo/internal/store"
	"github.com/pausememo/pausememo/internal/store/sqlite"
)

const sampleKeys = 3

type family struct {
	Name    string
	Keys    int
	Bytes   int
	Samples []string
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var backend store.Backend
	if cfg.Storage.Backend == config.BackendSQLite {
		backend, err = sqlite.Open(cfg.Storage.SQLitePath(), nil)
	} else {
		backend, err = store.Open(cfg.Storage.BadgerPath(), nil, store.Options{ReadOnly: true})
	}
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer backend.Close()

	keys := store.NewKeyspace(cfg.Storage.KeyPrefix)
	families, foreign, err := inspect(context.Background(), backend, keys)
	if err != nil {
		log.Fatalf("Error inspecting database: %v", err)
	}

	fmt.Printf("=== %s (%s) ===\n\n", cfg.Storage.DataPath, cfg.Storage.Backend)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Family", "Keys", "Bytes", "Sample"})
	total := 0
	for _, f := range families {
		total += f.Keys
		t.AppendRow(table.Row{f.Name, f.Keys, f.Bytes, strings.Join(f.Samples, "\n")})
	}
	t.AppendFooter(table.Row{"total", total, "", ""})
	t.Render()

	if foreign > 0 {
		fmt.Printf("\n%d keys outside the %q prefix were ignored\n", foreign, keys.Prefix())
	}
}

// inspect groups every key under the keyspace into families. Per-record keys
// such as interruption:event:<id> collapse to interruption:event:*.
func inspect(ctx context.Context, backend store.Backend, keys store.Keyspace) ([]family, int, error) {
	all, err := backend.AllKeys(ctx)
	if err != nil {
		return nil, 0, err
	}

	owned := make([]string, 0, len(all))
	foreign := 0
	for _, k := range all {
		if keys.Owns(k) {
			owned = append(owned, k)
		} else {
			foreign++
		}
	}
	slices.Sort(owned)

	values, err := backend.MultiGet(ctx, owned)
	if err != nil {
		return nil, 0, err
	}

	byName := make(map[string]*family)
	for _, kv := range values {
		rel := keys.Relative(kv.Key)
		name := familyName(rel)

		f, ok := byName[name]
		if !ok {
			f = &family{Name: name}
			byName[name] = f
		}
		f.Keys++
		f.Bytes += len(kv.Value)
		if len(f.Samples) < sampleKeys {
			f.Samples = append(f.Samples, rel)
		}
	}

	families := make([]family, 0, len(byName))
	for _, f := range byName {
		families = append(families, *f)
	}
	slices.SortFunc(families, func(a, b family) int { return cmp.Compare(a.Name, b.Name) })
	return families, foreign, nil
}

func familyName(rel string) string {
	parts := strings.SplitN(rel, ":", 3)
	if len(parts) < 3 {
		return rel
	}
	return parts[0] + ":" + parts[1] + ":*"
}
