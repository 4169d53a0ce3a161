package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAcceptsGrammar(t *testing.T) {
	cases := map[string]string{
		"A1":      "A1",
		"f18":     "F18",
		" h36 ":   "H36",
		"b 7":     "B7",
		"C  12":   "C12",
		"g9":      "G9",
		"  a 36 ": "A36",
	}
	for input, want := range cases {
		got, err := Normalize(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestNormalizeRejectsOutsideGrammar(t *testing.T) {
	invalid := []string{
		"", " ", "I1", "Z5", "A0", "A37", "A100", "H007", "18F", "AA1",
		"A", "7", "A-3", "A1.5", "A 1 2",
	}
	for _, input := range invalid {
		_, err := Normalize(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, canonical := range All() {
		got, err := Normalize(canonical)
		require.NoError(t, err)
		assert.Equal(t, canonical, got)
	}
}

func TestAllCoversEveryRackPosition(t *testing.T) {
	all := All()
	assert.Len(t, all, 8*36)
	assert.Equal(t, "A1", all[0])
	assert.Equal(t, "H36", all[len(all)-1])
}
