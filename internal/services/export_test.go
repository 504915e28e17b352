package services

import (
	"strings"
	"testing"

	"github.com/lumen-studio/lumen-api/internal/grading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestRender_NilRecordFails(t *testing.T) {
	s := NewPresetService()
	_, err := s.Render(nil, grading.DefaultExportFlags())
	assert.Error(t, err)
}

func TestRender_OnlySpecifiedFieldsAppear(t *testing.T) {
	s := NewPresetService()
	record := &grading.AdjustmentRecord{
		Exposure: f(0.25),
		Contrast: f(-12),
	}

	out, err := s.Render(record, grading.DefaultExportFlags())
	require.NoError(t, err)

	assert.Contains(t, out, "[lumen-preset]")
	assert.Contains(t, out, "version = "+presetFormatVersion)
	assert.Contains(t, out, "exposure = 0.25")
	assert.Contains(t, out, "contrast = -12")
	assert.NotContains(t, out, "highlights", "nil fields never appear")
	assert.NotContains(t, out, "saturation")
}

func TestRender_MaskSection(t *testing.T) {
	s := NewPresetService()
	record := &grading.AdjustmentRecord{
		Masks: []grading.Mask{
			{
				ID:   "m-1",
				Name: "Sky",
				Type: grading.MaskSky,
				Adjustments: grading.MaskAdjustments{
					Exposure:   f(-0.4),
					Saturation: f(0.2),
				},
			},
		},
	}

	out, err := s.Render(record, grading.DefaultExportFlags())
	require.NoError(t, err)

	assert.Contains(t, out, "[mask.0]")
	assert.Contains(t, out, "id = m-1")
	assert.Contains(t, out, "name = Sky")
	assert.Contains(t, out, "type = sky")
	assert.Contains(t, out, "local_exposure = -0.4")
	assert.Contains(t, out, "local_saturation = 0.2")
}

func TestRender_FlagsSuppressSections(t *testing.T) {
	s := NewPresetService()
	record := &grading.AdjustmentRecord{
		GrainAmount: f(0.3),
		PointColors: []grading.PointColor{
			{SrcHue: 0.5, SrcSat: 0.5, SrcLum: 0.5, HueShift: f(0.1)},
		},
		Masks: []grading.Mask{
			{ID: "m-1", Type: grading.MaskSky},
		},
	}

	out, err := s.Render(record, grading.ExportFlags{})
	require.NoError(t, err)

	assert.NotContains(t, out, "[grain]")
	assert.NotContains(t, out, "[point_color.0]")
	assert.NotContains(t, out, "[mask.0]")

	out, err = s.Render(record, grading.DefaultExportFlags())
	require.NoError(t, err)

	assert.Contains(t, out, "amount = 0.3")
	assert.Contains(t, out, "[point_color.0]")
	assert.Contains(t, out, "[mask.0]")
}

func TestRender_StableKeyOrder(t *testing.T) {
	s := NewPresetService()
	record := &grading.AdjustmentRecord{
		Exposure:   f(0.1),
		Contrast:   f(0.2),
		Highlights: f(0.3),
		Shadows:    f(0.4),
	}

	first, err := s.Render(record, grading.DefaultExportFlags())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		next, renderErr := s.Render(record, grading.DefaultExportFlags())
		require.NoError(t, renderErr)
		assert.Equal(t, first, next, "output must be byte-stable across runs")
	}

	// Within a section, keys are sorted
	contrastIdx := strings.Index(first, "contrast =")
	exposureIdx := strings.Index(first, "exposure =")
	assert.Less(t, contrastIdx, exposureIdx)
}
