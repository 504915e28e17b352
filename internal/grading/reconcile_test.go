package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOverrides_UpdateExistingByName(t *testing.T) {
	base := []Mask{
		{Name: "Sky", Type: MaskSky, Adjustments: MaskAdjustments{Exposure: fptr(0)}},
	}
	ops := []MaskOverrideOp{
		{Op: OpUpdate, Mask: Mask{Name: "Sky", Adjustments: MaskAdjustments{Exposure: fptr(-0.3)}}},
	}

	out := ApplyOverrides(base, ops)

	require.Len(t, out, 1)
	assert.Equal(t, "Sky", out[0].Name)
	assert.Equal(t, MaskSky, out[0].Type)
	assert.Equal(t, -0.3, *out[0].Adjustments.Exposure)

	// Inputs are never mutated.
	assert.Equal(t, 0.0, *base[0].Adjustments.Exposure)
}

func TestApplyOverrides_AddThenRemoveByCoordinates(t *testing.T) {
	ops := []MaskOverrideOp{
		{Op: OpAdd, Mask: Mask{
			Type: MaskFaceSkin, ReferenceX: fptr(0.5), ReferenceY: fptr(0.4),
			Adjustments: MaskAdjustments{Clarity: fptr(0.2)},
		}},
		{Op: OpRemove, Mask: Mask{Type: MaskFaceSkin, ReferenceX: fptr(0.5), ReferenceY: fptr(0.4)}},
	}

	out := ApplyOverrides(nil, ops)
	assert.Empty(t, out)
}

func TestApplyOverrides_RemoveAllTruncates(t *testing.T) {
	base := []Mask{
		{Name: "Sky", Type: MaskSky},
		{Name: "Water", Type: MaskWater},
	}

	tests := []struct {
		name          string
		ops           []MaskOverrideOp
		expectedNames []string
	}{
		{
			name:          "remove_all empties the list",
			ops:           []MaskOverrideOp{{Op: OpRemoveAll}},
			expectedNames: nil,
		},
		{
			name:          "clear is an alias",
			ops:           []MaskOverrideOp{{Op: OpClear}},
			expectedNames: nil,
		},
		{
			name: "later ops in the batch apply against the empty list",
			ops: []MaskOverrideOp{
				{Op: OpRemoveAll},
				{Op: OpAdd, Mask: Mask{Name: "Fresh", Type: MaskSubject}},
			},
			expectedNames: []string{"Fresh"},
		},
		{
			name: "remove_all ignores its other fields",
			ops: []MaskOverrideOp{
				{Op: OpRemoveAll, Mask: Mask{Name: "Sky"}},
			},
			expectedNames: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyOverrides(base, tt.ops)
			var names []string
			for _, m := range out {
				names = append(names, m.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
			require.Len(t, base, 2, "base must stay intact")
		})
	}
}

func TestApplyOverrides_UpdateMissingUpserts(t *testing.T) {
	ops := []MaskOverrideOp{
		{Op: OpUpdate, Mask: Mask{Type: MaskSky, Adjustments: MaskAdjustments{Saturation: fptr(0.4)}}},
	}

	out := ApplyOverrides([]Mask{}, ops)

	require.Len(t, out, 1)
	assert.Equal(t, MaskSky, out[0].Type)
	assert.Equal(t, 0.4, *out[0].Adjustments.Saturation)
	assert.NotEmpty(t, out[0].ID, "appended entry gets an addressable id")
}

func TestApplyOverrides_RemoveMissingIsNoop(t *testing.T) {
	base := []Mask{{Name: "Sky", Type: MaskSky}}
	ops := []MaskOverrideOp{{Op: OpRemove, Mask: Mask{Name: "Water"}}}

	out := ApplyOverrides(base, ops)
	require.Len(t, out, 1)
	assert.Equal(t, "Sky", out[0].Name)
}

func TestApplyOverrides_RepeatedAddComposesNeverDuplicates(t *testing.T) {
	ops := []MaskOverrideOp{
		{Op: OpAdd, Mask: Mask{Name: "Sky", Type: MaskSky, Adjustments: MaskAdjustments{Exposure: fptr(0.1)}}},
		{Op: OpAdd, Mask: Mask{Name: "Sky", Adjustments: MaskAdjustments{Saturation: fptr(0.2)}}},
	}

	out := ApplyOverrides(nil, ops)

	require.Len(t, out, 1)
	assert.Equal(t, MaskSky, out[0].Type)
	assert.Equal(t, 0.1, *out[0].Adjustments.Exposure)
	assert.Equal(t, 0.2, *out[0].Adjustments.Saturation)
}

func TestApplyOverrides_Idempotence(t *testing.T) {
	base := []Mask{{Name: "Sky", Type: MaskSky, Adjustments: MaskAdjustments{Exposure: fptr(0.2)}}}

	ops := [][]MaskOverrideOp{
		{{Op: OpAdd, Mask: Mask{Name: "Sky", Adjustments: MaskAdjustments{Exposure: fptr(0.5)}}}},
		{{Op: OpUpdate, Mask: Mask{Name: "Sky", Adjustments: MaskAdjustments{Contrast: fptr(-0.1)}}}},
		{{Op: OpAdd, Mask: Mask{Type: MaskWater, ReferenceX: fptr(0.25), ReferenceY: fptr(0.75)}}},
	}

	for _, op := range ops {
		once := ApplyOverrides(base, op)
		twice := ApplyOverrides(once, op)
		assert.Equal(t, once, twice)
	}
}

func TestApplyOverrides_DefaultOpIsAdd(t *testing.T) {
	ops := []MaskOverrideOp{
		{Mask: Mask{Name: "Sky", Type: MaskSky}},
	}

	out := ApplyOverrides(nil, ops)
	require.Len(t, out, 1)
	assert.Equal(t, "name:Sky", out[0].ID)
}

func TestApplyOverrides_UpdatePreservesPreviousID(t *testing.T) {
	base := []Mask{{ID: "stable-1", Name: "Sky", Type: MaskSky}}
	ops := []MaskOverrideOp{
		{Op: OpUpdate, Mask: Mask{ID: "proposer-guess", Name: "Sky", Adjustments: MaskAdjustments{Dehaze: fptr(0.3)}}},
	}

	out := ApplyOverrides(base, ops)

	require.Len(t, out, 1, "name tier still resolves the mismatched id")
	assert.Equal(t, "stable-1", out[0].ID, "previous id wins over the op's")
	assert.Equal(t, 0.3, *out[0].Adjustments.Dehaze)
}

func TestApplyOverrides_UpdateOverwritesGeometry(t *testing.T) {
	base := []Mask{{
		ID: "g", Type: MaskRadialGradient,
		Radius: fptr(0.2), Feather: fptr(0.5),
		Adjustments: MaskAdjustments{Exposure: fptr(0.1)},
	}}
	ops := []MaskOverrideOp{
		{Op: OpUpdate, Mask: Mask{ID: "g", Radius: fptr(0.35)}},
	}

	out := ApplyOverrides(base, ops)

	require.Len(t, out, 1)
	assert.Equal(t, 0.35, *out[0].Radius)
	assert.Equal(t, 0.5, *out[0].Feather, "untouched geometry survives")
	assert.Equal(t, 0.1, *out[0].Adjustments.Exposure, "untouched adjustments survive")
}

func TestApplyOverrides_OrderSensitivity(t *testing.T) {
	addThenRemove := []MaskOverrideOp{
		{Op: OpAdd, Mask: Mask{Name: "Sky", Type: MaskSky}},
		{Op: OpRemove, Mask: Mask{Name: "Sky"}},
	}
	removeThenAdd := []MaskOverrideOp{
		{Op: OpRemove, Mask: Mask{Name: "Sky"}},
		{Op: OpAdd, Mask: Mask{Name: "Sky", Type: MaskSky}},
	}

	assert.Empty(t, ApplyOverrides(nil, addThenRemove))
	assert.Len(t, ApplyOverrides(nil, removeThenAdd), 1)
}

func TestApplyOverrides_MalformedOpStillProcessed(t *testing.T) {
	// An op with no identifying fields at all still resolves: the
	// composite key degrades to the empty signal and upserts.
	ops := []MaskOverrideOp{
		{Op: OpUpdate, Mask: Mask{Adjustments: MaskAdjustments{Exposure: fptr(0.1)}}},
	}

	out := ApplyOverrides(nil, ops)
	require.Len(t, out, 1)
	assert.Equal(t, ":::", out[0].ID)
}
