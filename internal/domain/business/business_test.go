package business

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBusiness(t *testing.T, f Fields) *Business {
	t.Helper()
	b, err := NewBusiness(f, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return b
}

func baseFields() Fields {
	return Normalize(Candidate{
		Name:        "Aloha Dental",
		IslandText:  "Honolulu, HI",
		Website:     "https://a.com",
		Description: "Family dentistry",
		Source:      "directory",
	})
}

func TestNewBusiness(t *testing.T) {
	t.Run("creates with source list", func(t *testing.T) {
		b := newTestBusiness(t, baseFields())
		assert.Equal(t, "Aloha Dental", b.Name)
		assert.Equal(t, []string{"directory"}, b.Sources)
		assert.Equal(t, 1, b.Version)
		assert.Equal(t, b.CreatedAt, b.UpdatedAt)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewBusiness(Fields{Island: IslandOahu}, time.Now())
		assert.Error(t, err)
	})

	t.Run("rejects invalid island", func(t *testing.T) {
		f := baseFields()
		f.Island = Island("Atlantis")
		_, err := NewBusiness(f, time.Now())
		assert.Error(t, err)
	})
}

func TestBusiness_MergeFrom(t *testing.T) {
	later := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("never overwrites a non-empty field", func(t *testing.T) {
		b := newTestBusiness(t, baseFields())
		incoming := baseFields()
		incoming.Website = "https://b.com"

		b.MergeFrom(incoming, later)
		assert.Equal(t, "https://a.com", b.Website)
	})

	t.Run("fills empty fields", func(t *testing.T) {
		b := newTestBusiness(t, baseFields())
		incoming := baseFields()
		incoming.Phone = "(808) 523-8585"
		incoming.Address = "1 Bishop St"

		changed := b.MergeFrom(incoming, later)
		assert.True(t, changed)
		assert.Equal(t, "(808) 523-8585", b.Phone)
		assert.Equal(t, "1 Bishop St", b.Address)
	})

	t.Run("replaces description only when strictly longer", func(t *testing.T) {
		b := newTestBusiness(t, baseFields())

		shorter := baseFields()
		shorter.Description = "Dentist"
		b.MergeFrom(shorter, later)
		assert.Equal(t, "Family dentistry", b.Description)

		equal := baseFields()
		equal.Description = "Family dentistrx"
		b.MergeFrom(equal, later)
		assert.Equal(t, "Family dentistry", b.Description)

		longer := baseFields()
		longer.Description = "Family dentistry serving Honolulu since 1982"
		b.MergeFrom(longer, later)
		assert.Equal(t, "Family dentistry serving Honolulu since 1982", b.Description)
	})

	t.Run("appends new sources once", func(t *testing.T) {
		b := newTestBusiness(t, baseFields())
		incoming := baseFields()
		incoming.Source = "places"

		b.MergeFrom(incoming, later)
		b.MergeFrom(incoming, later)
		assert.Equal(t, []string{"directory", "places"}, b.Sources)
	})

	t.Run("bumps updated_at and version", func(t *testing.T) {
		b := newTestBusiness(t, baseFields())
		b.MergeFrom(baseFields(), later)
		assert.Equal(t, later, b.UpdatedAt)
		assert.Equal(t, 2, b.Version)
	})

	t.Run("identical input changes nothing but the timestamp", func(t *testing.T) {
		b := newTestBusiness(t, baseFields())
		assert.False(t, b.MergeFrom(baseFields(), later))
	})

	t.Run("Other industry is filled by a specific one", func(t *testing.T) {
		b := newTestBusiness(t, baseFields())
		require.Equal(t, IndustryOther, b.Industry)
		incoming := baseFields()
		incoming.Industry = IndustryHealthcare
		b.MergeFrom(incoming, later)
		assert.Equal(t, IndustryHealthcare, b.Industry)

		incoming.Industry = IndustryRetail
		b.MergeFrom(incoming, later)
		assert.Equal(t, IndustryHealthcare, b.Industry)
	})

	t.Run("revenue derived once headcount is known", func(t *testing.T) {
		b := newTestBusiness(t, baseFields())
		n := 4
		incoming := baseFields()
		incoming.EmployeeCountEstimate = &n
		incoming.AnnualRevenueEstimate = nil
		b.MergeFrom(incoming, later)
		require.NotNil(t, b.AnnualRevenueEstimate)
		assert.Equal(t, "600000", b.AnnualRevenueEstimate.String())
	})
}
