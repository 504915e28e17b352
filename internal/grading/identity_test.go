package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }

func TestCompositeIdentity_Identify(t *testing.T) {
	r := NewCompositeIdentity()

	tests := []struct {
		name     string
		mask     Mask
		expected string
	}{
		{
			name:     "explicit id wins",
			mask:     Mask{ID: "m-7", Name: "Sky", Type: MaskSky},
			expected: "m-7",
		},
		{
			name:     "name when no id",
			mask:     Mask{Name: "Sky", Type: MaskSky, ReferenceX: fptr(0.5)},
			expected: "name:Sky",
		},
		{
			name:     "composite from type and coordinates",
			mask:     Mask{Type: MaskFaceSkin, SubCategoryID: iptr(2), ReferenceX: fptr(0.5), ReferenceY: fptr(0.4)},
			expected: "face_skin:2:0.5:0.4",
		},
		{
			name:     "coordinates truncated to four characters",
			mask:     Mask{Type: MaskSky, ReferenceX: fptr(0.45678), ReferenceY: fptr(0.123456)},
			expected: "sky::0.45:0.12",
		},
		{
			name:     "missing parts collapse to empty strings",
			mask:     Mask{Type: MaskSubject},
			expected: "subject:::",
		},
		{
			name:     "fully empty mask still yields a key",
			mask:     Mask{},
			expected: ":::",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.Identify(&tt.mask))
		})
	}
}

func TestCompositeIdentity_IdentifyIsDeterministic(t *testing.T) {
	r := NewCompositeIdentity()
	m := Mask{Type: MaskSky, SubCategoryID: iptr(1), ReferenceX: fptr(0.3333), ReferenceY: fptr(0.9)}

	first := r.Identify(&m)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Identify(&m))
	}
}

func TestCompositeIdentity_FindIndex(t *testing.T) {
	r := NewCompositeIdentity()
	list := []Mask{
		{Name: "Sky", Type: MaskSky},
		{Type: MaskFaceSkin, ReferenceX: fptr(0.5), ReferenceY: fptr(0.4)},
		{Name: "Sky", Type: MaskLinearGradient}, // duplicate identity, later in list
	}

	// Ties break by list order: the first "Sky" wins.
	assert.Equal(t, 0, r.FindIndex(list, &Mask{Name: "Sky"}))
	assert.Equal(t, 1, r.FindIndex(list, &Mask{Type: MaskFaceSkin, ReferenceX: fptr(0.5), ReferenceY: fptr(0.4)}))
	assert.Equal(t, -1, r.FindIndex(list, &Mask{Name: "Water"}))
	assert.Equal(t, -1, r.FindIndex(nil, &Mask{Name: "Sky"}))
}

func TestCompositeIdentity_FindIndexFlexible(t *testing.T) {
	r := NewCompositeIdentity()
	list := []Mask{
		{ID: "a", Name: "Foreground", Type: MaskSubject},
		{ID: "b", Name: "Sky", Type: MaskSky},
		{ID: "c", Type: MaskFaceSkin, SubCategoryID: iptr(1)},
		{ID: "d", Type: MaskFaceSkin, SubCategoryID: iptr(2)},
	}

	tests := []struct {
		name     string
		op       MaskOverrideOp
		expected int
	}{
		{
			name:     "strict identity tier",
			op:       MaskOverrideOp{Mask: Mask{ID: "c"}},
			expected: 2,
		},
		{
			name:     "name tier when identity misses",
			op:       MaskOverrideOp{Mask: Mask{ID: "zzz", Name: "Sky"}},
			expected: 1,
		},
		{
			name:     "type tier alone",
			op:       MaskOverrideOp{Mask: Mask{Type: MaskFaceSkin}},
			expected: 2,
		},
		{
			name:     "type tier refined by sub-category",
			op:       MaskOverrideOp{Mask: Mask{Type: MaskFaceSkin, SubCategoryID: iptr(2)}},
			expected: 3,
		},
		{
			name:     "sub-category refinement with no match",
			op:       MaskOverrideOp{Mask: Mask{Type: MaskFaceSkin, SubCategoryID: iptr(9)}},
			expected: -1,
		},
		{
			name:     "no tier matches",
			op:       MaskOverrideOp{Mask: Mask{Type: MaskWater}},
			expected: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.FindIndexFlexible(list, &tt.op))
		})
	}
}

func TestCompositeIdentity_FirstSuccessfulTierWins(t *testing.T) {
	r := NewCompositeIdentity()

	// The name tier matches index 1; the type tier would have matched
	// index 0. Once a tier succeeds, looser tiers are never consulted.
	list := []Mask{
		{ID: "g1", Type: MaskSky},
		{ID: "g2", Name: "Blue Sky", Type: MaskLinearGradient},
	}
	op := MaskOverrideOp{Mask: Mask{Name: "Blue Sky", Type: MaskSky}}

	idx := r.FindIndexFlexible(list, &op)
	require.Equal(t, 1, idx)
}
