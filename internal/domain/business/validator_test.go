package business

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("accepts name with location keyword", func(t *testing.T) {
		err := Validate(Candidate{Name: "Aloha Dental", IslandText: "Honolulu, HI", Source: "test"})
		assert.NoError(t, err)
	})

	t.Run("accepts address-only location", func(t *testing.T) {
		err := Validate(Candidate{Name: "Maui Brewing", Address: "605 Lipoa Pkwy, Kihei"})
		assert.NoError(t, err)
	})

	t.Run("does not require phone website or industry", func(t *testing.T) {
		err := Validate(Candidate{Name: "Hana Ranch", IslandText: "Maui"})
		assert.NoError(t, err)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		err := Validate(Candidate{Name: "   ", IslandText: "Honolulu"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidationRejected))

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, ReasonNameRequired, vErr.Reason)
	})

	t.Run("rejects missing location", func(t *testing.T) {
		err := Validate(Candidate{Name: "Mystery Co", Phone: "808-523-8585"})
		require.Error(t, err)

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, ReasonLocationRequired, vErr.Reason)
	})
}
