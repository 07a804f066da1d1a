package directory

import (
	"sort"
	"strings"

	"orgchart/internal/platform/graph"
)

// ResolveLicenses maps assigned license SKU ids to friendly labels, falling
// back to the raw SKU id when the subscription map has no entry. Labels are
// de-duplicated case-insensitively and returned in alphabetical order.
func ResolveLicenses(entries []graph.AssignedLicense, skuMap map[string]string) (skuIDs []string, labels []string) {
	seen := make(map[string]struct{})

	for _, entry := range entries {
		if entry.SkuID == "" {
			continue
		}
		skuIDs = append(skuIDs, entry.SkuID)

		friendly := skuMap[strings.ToLower(entry.SkuID)]
		if friendly == "" {
			friendly = entry.SkuID
		}
		key := strings.ToLower(friendly)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		labels = append(labels, friendly)
	}

	sort.Slice(labels, func(i, j int) bool {
		return strings.ToLower(labels[i]) < strings.ToLower(labels[j])
	})
	return skuIDs, labels
}
