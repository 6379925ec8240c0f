package survey

import (
	"sort"

	"goimpact/domain/core"
)

// SortKeys orders keys by market then value.
func SortKeys(keys []core.GroupKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
