package main

import (
	"fmt"
	"strconv"

	"github.com/aretw0/tracker/pkg/core"
	"github.com/aretw0/tracker/pkg/search"
)

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		fatal("Invalid list id", fmt.Errorf("%q", s))
	}
	return id
}

// searchCatalog runs query against the catalog file at path.
func searchCatalog(path, query string) []core.ListItem {
	catalog, err := search.LoadCatalog(path)
	if err != nil {
		fatal("Error loading catalog", err)
	}
	items, err := catalog.Search(query)
	if err != nil {
		fatal("Error running query", err)
	}
	return items
}
