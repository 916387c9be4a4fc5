package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "medvault/pkg/domain-errors"
)

func TestParseRegion(t *testing.T) {
	t.Run("accepts supported regions", func(t *testing.T) {
		for _, region := range Regions() {
			parsed, err := ParseRegion(region.String())
			require.NoError(t, err)
			assert.Equal(t, region, parsed)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParseRegion("")
		require.Error(t, err)
		assert.True(t, dErrors.IsCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects unsupported jurisdictions", func(t *testing.T) {
		_, err := ParseRegion("APAC")
		require.Error(t, err)
		assert.True(t, dErrors.IsCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("is case sensitive", func(t *testing.T) {
		_, err := ParseRegion("us")
		assert.Error(t, err)
	})
}
