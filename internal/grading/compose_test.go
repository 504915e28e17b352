package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(NewEngine(NewCompositeIdentity()))
}

func TestComputeEffective_Precedence(t *testing.T) {
	p := newTestPipeline()

	base := &AdjustmentRecord{Contrast: fptr(10)}
	style := &StyleOverride{Contrast: fptr(20)}
	global := &AdjustmentRecord{Contrast: fptr(30)}

	eff := p.ComputeEffective(base, style, nil, nil, global)

	require.NotNil(t, eff.Contrast)
	assert.Equal(t, 30.0, *eff.Contrast, "global override is the highest tier")
}

func TestComputeEffective_StyleProxiesThreeFields(t *testing.T) {
	p := newTestPipeline()

	base := &AdjustmentRecord{
		Exposure: fptr(0.5), Contrast: fptr(5), Vibrance: fptr(5), Saturation: fptr(5),
	}
	style := &StyleOverride{Contrast: fptr(22), Vibrance: fptr(33), Saturation: fptr(44)}

	eff := p.ComputeEffective(base, style, nil, nil, nil)

	assert.Equal(t, 22.0, *eff.Contrast)
	assert.Equal(t, 33.0, *eff.Vibrance)
	assert.Equal(t, 44.0, *eff.Saturation)
	assert.Equal(t, 0.5, *eff.Exposure, "style sliders only touch their proxies")
}

func TestComputeEffective_AcceptedPlusPendingLayering(t *testing.T) {
	p := newTestPipeline()

	base := &AdjustmentRecord{}
	accepted := []MaskOverrideOp{
		{Op: OpAdd, Mask: Mask{Name: "A", Adjustments: MaskAdjustments{Exposure: fptr(0.1)}}},
	}
	pending := []MaskOverrideOp{
		{Op: OpUpdate, Mask: Mask{Name: "A", Adjustments: MaskAdjustments{Exposure: fptr(0.5)}}},
	}

	eff := p.ComputeEffective(base, nil, accepted, pending, nil)

	require.Len(t, eff.Masks, 1)
	assert.Equal(t, "A", eff.Masks[0].Name)
	assert.Equal(t, 0.5, *eff.Masks[0].Adjustments.Exposure)
}

func TestComputeEffective_BaseUnchanged(t *testing.T) {
	p := newTestPipeline()

	base := &AdjustmentRecord{
		Exposure: fptr(1),
		Masks:    []Mask{{Name: "Sky", Type: MaskSky}},
	}
	ops := []MaskOverrideOp{{Op: OpRemoveAll}}
	global := &AdjustmentRecord{Exposure: fptr(2)}

	eff := p.ComputeEffective(base, nil, ops, nil, global)

	assert.Empty(t, eff.Masks)
	assert.Equal(t, 2.0, *eff.Exposure)

	assert.Equal(t, 1.0, *base.Exposure)
	require.Len(t, base.Masks, 1)
}

func TestComputeEffective_IsPureFunctionOfInputs(t *testing.T) {
	p := newTestPipeline()

	base := &AdjustmentRecord{Contrast: fptr(10), Masks: []Mask{{Name: "Sky", Type: MaskSky}}}
	style := &StyleOverride{Vibrance: fptr(15)}
	accepted := []MaskOverrideOp{
		{Op: OpUpdate, Mask: Mask{Name: "Sky", Adjustments: MaskAdjustments{Exposure: fptr(-0.2)}}},
	}
	global := &AdjustmentRecord{Temperature: fptr(-8)}

	first := p.ComputeEffective(base, style, accepted, nil, global)
	second := p.ComputeEffective(base, style, accepted, nil, global)

	assert.Equal(t, first, second)
}

func TestComputeEffective_GlobalOverlayCoversScalarGroups(t *testing.T) {
	p := newTestPipeline()

	base := &AdjustmentRecord{
		HueBlue:     fptr(-10),
		GrainAmount: fptr(20),
		ToneCurve:   []CurvePoint{{Input: 0, Output: 0}, {Input: 255, Output: 255}},
	}
	global := &AdjustmentRecord{
		HueBlue:             fptr(12),
		LumRed:              fptr(-30),
		VignetteAmount:      fptr(-40),
		ColorGradeShadowHue: fptr(220),
		ToneCurve:           []CurvePoint{{Input: 0, Output: 16}},
	}

	eff := p.ComputeEffective(base, nil, nil, nil, global)

	assert.Equal(t, 12.0, *eff.HueBlue)
	assert.Equal(t, -30.0, *eff.LumRed)
	assert.Equal(t, -40.0, *eff.VignetteAmount)
	assert.Equal(t, 220.0, *eff.ColorGradeShadowHue)
	assert.Equal(t, 20.0, *eff.GrainAmount, "fields absent from the override survive")
	require.Len(t, eff.ToneCurve, 1)
	assert.Equal(t, 16.0, eff.ToneCurve[0].Output)
}

func TestMergeStyle(t *testing.T) {
	assert.Nil(t, MergeStyle(nil, nil))

	merged := MergeStyle(
		&StyleOverride{Contrast: fptr(10), Vibrance: fptr(20)},
		&StyleOverride{Vibrance: fptr(25)},
	)
	require.NotNil(t, merged)
	assert.Equal(t, 10.0, *merged.Contrast)
	assert.Equal(t, 25.0, *merged.Vibrance)
	assert.Nil(t, merged.Saturation)
}

func TestMergeGlobal(t *testing.T) {
	assert.Nil(t, MergeGlobal(nil, nil))

	merged := MergeGlobal(
		&AdjustmentRecord{Exposure: fptr(0.5), Tint: fptr(3)},
		&AdjustmentRecord{Tint: fptr(-3)},
	)
	require.NotNil(t, merged)
	assert.Equal(t, 0.5, *merged.Exposure)
	assert.Equal(t, -3.0, *merged.Tint)
}
