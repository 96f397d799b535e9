package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDesignationsVariants(t *testing.T) {
	terms := NormalizeDesignations([]string{"Wonen - Tuin 2"})
	assert.Equal(t, []string{"wonen - tuin 2", "tuin 2", "wonen - tuin"}, terms)
}

func TestNormalizeDesignationsDeduplicatesInOrder(t *testing.T) {
	terms := NormalizeDesignations([]string{"A-B", "A-B", "C 2"})
	assert.Equal(t, []string{"a-b", "b", "c 2", "c"}, terms)
}

func TestNormalizeDesignationsSkipsEmpty(t *testing.T) {
	terms := NormalizeDesignations([]string{"  ", "", "Wonen"})
	assert.Equal(t, []string{"wonen"}, terms)
}

func TestNormalizeDesignationsNoVariantsForSimpleLabel(t *testing.T) {
	terms := NormalizeDesignations([]string{"Groen"})
	assert.Equal(t, []string{"groen"}, terms)
}
