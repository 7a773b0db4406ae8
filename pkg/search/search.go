// Package search turns a query string into matching objects of a catalog.
//
// Queries are expr-lang boolean expressions evaluated once per object, e.g.
//
//	map_type == "Shrine" && map_name == "Sky"
//	name contains "Korok" and y > 1000
//
// Each object exposes hash_id, name, map_name, map_type, x, y, z and props, with
// the keys of props also available as top-level names. An empty query matches
// every object.
package search

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/tracker/pkg/core"
)

// ErrInvalidQuery is returned for queries that do not compile or do not yield a boolean.
var ErrInvalidQuery = errors.New("invalid query")

// Object is one searchable game-world object.
type Object struct {
	HashID  string         `yaml:"hash_id" json:"hash_id"`
	Name    string         `yaml:"name" json:"name"`
	MapName string         `yaml:"map_name" json:"map_name"`
	MapType string         `yaml:"map_type" json:"map_type"`
	Pos     [3]float64     `yaml:"pos,flow" json:"pos"`
	Props   map[string]any `yaml:"props,omitempty" json:"props,omitempty"`
}

// Item converts the object to a checklist item.
func (o Object) Item() core.ListItem {
	return core.ListItem{
		HashID:  o.HashID,
		Name:    o.Name,
		MapName: o.MapName,
		MapType: o.MapType,
		Pos:     o.Pos,
	}
}

func (o Object) env() map[string]any {
	env := make(map[string]any, len(o.Props)+8)
	for k, v := range o.Props {
		env[k] = v
	}
	env["hash_id"] = o.HashID
	env["name"] = o.Name
	env["map_name"] = o.MapName
	env["map_type"] = o.MapType
	env["x"] = o.Pos[0]
	env["y"] = o.Pos[1]
	env["z"] = o.Pos[2]
	env["props"] = o.Props
	return env
}

// Catalog is the set of objects queries run against.
type Catalog struct {
	Objects []Object `yaml:"objects" json:"objects"`
}

// ParseCatalog decodes a catalog document. JSON input is accepted as YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	seen := make(map[string]bool, len(c.Objects))
	for i, o := range c.Objects {
		if o.HashID == "" {
			return nil, fmt.Errorf("catalog object %d has no hash_id", i)
		}
		if seen[o.HashID] {
			return nil, fmt.Errorf("catalog object %q listed twice", o.HashID)
		}
		seen[o.HashID] = true
	}
	return &c, nil
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// Query is a compiled query.
type Query struct {
	source  string
	program *exprvm.Program
}

// Compile parses a query.
func Compile(query string) (*Query, error) {
	q := &Query{source: strings.TrimSpace(query)}
	if q.source == "" {
		return q, nil
	}
	program, err := exprlang.Compile(q.source,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	q.program = program
	return q, nil
}

// String returns the query source.
func (q *Query) String() string {
	return q.source
}

// Match reports whether o satisfies the query.
func (q *Query) Match(o Object) (bool, error) {
	if q.program == nil {
		return true, nil
	}
	out, err := exprlang.Run(q.program, o.env())
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrInvalidQuery, o.HashID, err)
	}
	switch v := out.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q yields %T, not bool", ErrInvalidQuery, q.source, out)
	}
}

// Search returns the catalog objects matching query as checklist items, ordered by hash_id.
func (c *Catalog) Search(query string) ([]core.ListItem, error) {
	q, err := Compile(query)
	if err != nil {
		return nil, err
	}
	var out []core.ListItem
	for _, o := range c.Objects {
		ok, err := q.Match(o)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, o.Item())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HashID < out[j].HashID })
	return out, nil
}
