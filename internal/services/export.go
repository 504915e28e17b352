package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumen-studio/lumen-api/internal/grading"
)

const presetFormatVersion = "1.2"

// PresetService renders an effective adjustment record into the
// interchange preset text consumed by desktop editors. It implements
// grading.Renderer. Only specified fields are emitted; a nil field never
// appears in the output.
type PresetService struct{}

func NewPresetService() *PresetService {
	return &PresetService{}
}

// Render produces the preset text for an effective record.
func (s *PresetService) Render(record *grading.AdjustmentRecord, flags grading.ExportFlags) (string, error) {
	if record == nil {
		return "", fmt.Errorf("nil adjustment record")
	}

	var b strings.Builder
	b.WriteString("[lumen-preset]\n")
	b.WriteString("version = " + presetFormatVersion + "\n")

	writeScalarSection(&b, "tone", map[string]*float64{
		"exposure":   record.Exposure,
		"contrast":   record.Contrast,
		"highlights": record.Highlights,
		"shadows":    record.Shadows,
		"whites":     record.Whites,
		"blacks":     record.Blacks,
		"clarity":    record.Clarity,
		"vibrance":   record.Vibrance,
		"saturation": record.Saturation,
	})

	writeScalarSection(&b, "white_balance", map[string]*float64{
		"temperature": record.Temperature,
		"tint":        record.Tint,
	})

	writeScalarSection(&b, "color_grade", map[string]*float64{
		"shadow_hue":     record.ColorGradeShadowHue,
		"shadow_sat":     record.ColorGradeShadowSat,
		"shadow_luma":    record.ColorGradeShadowLuma,
		"midtone_hue":    record.ColorGradeMidtoneHue,
		"midtone_sat":    record.ColorGradeMidtoneSat,
		"midtone_luma":   record.ColorGradeMidtoneLuma,
		"highlight_hue":  record.ColorGradeHighlightHue,
		"highlight_sat":  record.ColorGradeHighlightSat,
		"highlight_luma": record.ColorGradeHighlightLuma,
	})

	writeScalarSection(&b, "hsl", map[string]*float64{
		"hue_red": record.HueRed, "hue_orange": record.HueOrange,
		"hue_yellow": record.HueYellow, "hue_green": record.HueGreen,
		"hue_aqua": record.HueAqua, "hue_blue": record.HueBlue,
		"hue_purple": record.HuePurple, "hue_magenta": record.HueMagenta,
		"sat_red": record.SatRed, "sat_orange": record.SatOrange,
		"sat_yellow": record.SatYellow, "sat_green": record.SatGreen,
		"sat_aqua": record.SatAqua, "sat_blue": record.SatBlue,
		"sat_purple": record.SatPurple, "sat_magenta": record.SatMagenta,
		"lum_red": record.LumRed, "lum_orange": record.LumOrange,
		"lum_yellow": record.LumYellow, "lum_green": record.LumGreen,
		"lum_aqua": record.LumAqua, "lum_blue": record.LumBlue,
		"lum_purple": record.LumPurple, "lum_magenta": record.LumMagenta,
	})

	writeCurve(&b, "tone_curve", record.ToneCurve)
	writeCurve(&b, "tone_curve_red", record.ToneCurveRed)
	writeCurve(&b, "tone_curve_green", record.ToneCurveGreen)
	writeCurve(&b, "tone_curve_blue", record.ToneCurveBlue)

	if flags.IncludeGrain {
		writeScalarSection(&b, "grain", map[string]*float64{
			"amount":    record.GrainAmount,
			"size":      record.GrainSize,
			"frequency": record.GrainFrequency,
		})
	}

	writeScalarSection(&b, "vignette", map[string]*float64{
		"amount":             record.VignetteAmount,
		"midpoint":           record.VignetteMidpoint,
		"feather":            record.VignetteFeather,
		"roundness":          record.VignetteRoundness,
		"style":              record.VignetteStyle,
		"highlight_contrast": record.VignetteHighlightContrast,
	})

	if flags.IncludePointColors {
		for i, pc := range record.PointColors {
			b.WriteString(fmt.Sprintf("\n[point_color.%d]\n", i))
			b.WriteString(fmt.Sprintf("src = %s/%s/%s\n",
				formatValue(pc.SrcHue), formatValue(pc.SrcSat), formatValue(pc.SrcLum)))
			writeScalarPairs(&b, map[string]*float64{
				"hue_shift":    pc.HueShift,
				"sat_shift":    pc.SatShift,
				"lum_shift":    pc.LumShift,
				"range_amount": pc.RangeAmount,
			})
		}
	}

	if flags.IncludeMasks {
		for i := range record.Masks {
			writeMask(&b, i, &record.Masks[i])
		}
	}

	return b.String(), nil
}

func writeMask(b *strings.Builder, index int, mask *grading.Mask) {
	b.WriteString(fmt.Sprintf("\n[mask.%d]\n", index))
	if mask.ID != "" {
		b.WriteString("id = " + mask.ID + "\n")
	}
	if mask.Name != "" {
		b.WriteString("name = " + mask.Name + "\n")
	}
	if mask.Type != "" {
		b.WriteString("type = " + string(mask.Type) + "\n")
	}
	if mask.SubCategoryID != nil {
		b.WriteString(fmt.Sprintf("sub_category = %d\n", *mask.SubCategoryID))
	}
	if mask.Invert != nil && *mask.Invert {
		b.WriteString("invert = true\n")
	}

	writeScalarPairs(b, map[string]*float64{
		"reference_x": mask.ReferenceX,
		"reference_y": mask.ReferenceY,
		"start_x":     mask.StartX,
		"start_y":     mask.StartY,
		"end_x":       mask.EndX,
		"end_y":       mask.EndY,
		"radius":      mask.Radius,
		"angle":       mask.Angle,
		"feather":     mask.Feather,
		"range_min":   mask.RangeMin,
		"range_max":   mask.RangeMax,
	})

	adj := mask.Adjustments
	writeScalarPairs(b, map[string]*float64{
		"local_exposure":    adj.Exposure,
		"local_contrast":    adj.Contrast,
		"local_highlights":  adj.Highlights,
		"local_shadows":     adj.Shadows,
		"local_clarity":     adj.Clarity,
		"local_saturation":  adj.Saturation,
		"local_temperature": adj.Temperature,
		"local_tint":        adj.Tint,
		"local_sharpness":   adj.Sharpness,
		"local_dehaze":      adj.Dehaze,
	})
}

func writeScalarSection(b *strings.Builder, section string, fields map[string]*float64) {
	if !anySet(fields) {
		return
	}
	b.WriteString("\n[" + section + "]\n")
	writeScalarPairs(b, fields)
}

// writeScalarPairs emits set fields in sorted key order so output is
// stable across runs.
func writeScalarPairs(b *strings.Builder, fields map[string]*float64) {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k + " = " + formatValue(*fields[k]) + "\n")
	}
}

func writeCurve(b *strings.Builder, section string, points []grading.CurvePoint) {
	if points == nil {
		return
	}
	b.WriteString("\n[" + section + "]\n")
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, fmt.Sprintf("%s:%s", formatValue(p.Input), formatValue(p.Output)))
	}
	b.WriteString("points = " + strings.Join(parts, ", ") + "\n")
}

func anySet(fields map[string]*float64) bool {
	for _, v := range fields {
		if v != nil {
			return true
		}
	}
	return false
}

func formatValue(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
