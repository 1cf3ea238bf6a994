package models

import (
	"sort"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

// ResolveVariantKey canonicalizes a set of attribute value ids into the
// string key used by stock balances and ledger queries. The key is order
// independent: duplicates are dropped, ids are rendered in decimal and
// sorted lexicographically, then joined with commas. An empty set resolves
// to the empty string, the key of the "no variant" bucket.
//
// Lexicographic (not numeric) ordering is part of the storage contract;
// changing it would orphan every existing balance row.
func ResolveVariantKey(attributeValueIds []int) string {
	if len(attributeValueIds) == 0 {
		return ""
	}

	unique := utils.UniqueSlice(attributeValueIds)
	parts := make([]string, 0, len(unique))
	for _, id := range unique {
		parts = append(parts, strconv.Itoa(id))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// VariantKeyIds parses a stored variant key back into attribute value ids.
// Used when rehydrating ledger rows for display.
func VariantKeyIds(key string) ([]int, error) {
	if key == "" {
		return nil, nil
	}
	parts := strings.Split(key, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
