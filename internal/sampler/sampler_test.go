package sampler

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bionetslab/digest-go/internal/registry"
)

func TestSplitKeepReplaceWidensReplacementCountPerPercentage(t *testing.T) {
	original := []registry.EntityIndex{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	rng := NewRng(42)

	keepers, replaced := splitKeepReplace(original, 30, rng)
	assert.Len(t, replaced, 3)
	assert.Len(t, keepers, 7)
}

func TestSplitKeepReplaceZeroPercentKeepsEverything(t *testing.T) {
	original := []registry.EntityIndex{1, 2, 3}
	keepers, replaced := splitKeepReplace(original, 0, NewRng(1))
	assert.Empty(t, replaced)
	assert.Equal(t, original, keepers)
}

func TestSplitKeepReplacePreservesRelativeOrder(t *testing.T) {
	original := []registry.EntityIndex{1, 2, 3, 4, 5, 6, 7, 8}
	keepers, replaced := splitKeepReplace(original, 50, NewRng(9))
	assert.True(t, sort.IsSorted(entityIndexSlice(keepers)))
	assert.True(t, sort.IsSorted(entityIndexSlice(replaced)))
}

type entityIndexSlice []registry.EntityIndex

func (s entityIndexSlice) Len() int           { return len(s) }
func (s entityIndexSlice) Less(i, j int) bool { return s[i] < s[j] }
func (s entityIndexSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
