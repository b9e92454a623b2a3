package skills

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// relationsKey is the top-level YAML key holding the entry list.
const relationsKey = "relations"

// LoadEntries reads a YAML relation file of the form
//
//	relations:
//	  - skill: react
//	    related:
//	      - skill: javascript
//	        credit: 60
//
// Entries are returned unvalidated; pass them to NewTable.
func LoadEntries(_ context.Context, path string) ([]Entry, error) {
	k := koanf.New("/")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadRelations, path, err)
	}

	var entries []Entry
	if err := k.UnmarshalWithConf(relationsKey, &entries, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadRelations, path, err)
	}
	return entries, nil
}

// LoadFile reads a relation file and builds a validated Table.
func LoadFile(ctx context.Context, path string) (*Table, error) {
	entries, err := LoadEntries(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewTable(entries)
}
