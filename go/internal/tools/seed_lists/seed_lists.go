package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maelkermann/plouf-plouf/go/internal/dbconfig"
	"github.com/maelkermann/plouf-plouf/go/internal/savedlists/db"
	"gopkg.in/yaml.v3"
)

const defaultPath = "go/internal/assets/name_lists.yaml"

type seedFile struct {
	Lists []seedList `yaml:"lists"`
}

// seedList mirrors one entry of the YAML file. ID is optional.
type seedList struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Names []string `yaml:"names"`
}

func main() {
	path := defaultPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the YAML lists
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read YAML: %v\n", err)
		os.Exit(1)
	}
	lists, err := parseLists(data, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse YAML: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		fmt.Fprintf(os.Stderr, "create schema: %v\n", err)
		os.Exit(1)
	}

	// 3) Upsert and count
	var (
		total    = len(lists)
		inserted int
		skipped  int
		errs     int
	)

	for _, l := range lists {
		names, err := json.Marshal(l.Names)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error encoding list %s: %v\n", l.ID, err)
			errs++
			continue
		}
		cmdTag, err := pool.Exec(ctx, `
            INSERT INTO name_lists (id, name, names, created_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (id) DO NOTHING
        `,
			l.ID, l.Name, names, createdAt(l.ID),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting list %s: %v\n", l.ID, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Name lists seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}

// parseLists validates the file and assigns ids to entries without one
func parseLists(data []byte, now time.Time) ([]seedList, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	next := now.UnixMilli()
	for i := range f.Lists {
		l := &f.Lists[i]
		l.Name = strings.TrimSpace(l.Name)
		if l.Name == "" {
			return nil, fmt.Errorf("list %d: name is required", i)
		}
		if len(l.Names) == 0 {
			return nil, fmt.Errorf("list %q: no names", l.Name)
		}
		if l.ID == "" {
			for seen[strconv.FormatInt(next, 10)] {
				next++
			}
			l.ID = strconv.FormatInt(next, 10)
			next++
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("list %q: duplicate id %s", l.Name, l.ID)
		}
		seen[l.ID] = true
	}
	if len(f.Lists) == 0 {
		return nil, errors.New("no lists in file")
	}
	return f.Lists, nil
}

// createdAt recovers the creation instant from a millisecond id
func createdAt(id string) time.Time {
	ms, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.UnixMilli(ms).UTC()
}
