package grading

// Pipeline materializes the effective record from a base record and the
// override tiers. The output is a pure function of its inputs and is
// recomputed on every tier change, never cached.
type Pipeline struct {
	engine *Engine
}

// NewPipeline creates a composition pipeline over the given engine.
func NewPipeline(engine *Engine) *Pipeline {
	return &Pipeline{engine: engine}
}

// ComputeEffective layers the tiers onto base in fixed, strictly
// increasing precedence:
//
//  1. base, copied verbatim
//  2. style-slider proxies (contrast, vibrance, saturation)
//  3. masks: accepted ops replayed first, pending ops on top
//  4. global scalar overrides, which may re-override step 2
func (p *Pipeline) ComputeEffective(
	base *AdjustmentRecord,
	style *StyleOverride,
	accepted []MaskOverrideOp,
	pending []MaskOverrideOp,
	global *AdjustmentRecord,
) *AdjustmentRecord {
	eff := base.Clone()

	if style != nil {
		if style.Contrast != nil {
			eff.Contrast = style.Contrast
		}
		if style.Vibrance != nil {
			eff.Vibrance = style.Vibrance
		}
		if style.Saturation != nil {
			eff.Saturation = style.Saturation
		}
	}

	var baseMasks []Mask
	if base != nil {
		baseMasks = base.Masks
	}
	eff.Masks = p.engine.Apply(p.engine.Apply(baseMasks, accepted), pending)

	if global != nil {
		overlayRecord(eff, global)
	}

	return eff
}

// MergeStyle layers a style patch over an accepted style override,
// returning nil when neither carries a value.
func MergeStyle(accepted, patch *StyleOverride) *StyleOverride {
	if accepted == nil && patch == nil {
		return nil
	}
	merged := StyleOverride{}
	if accepted != nil {
		merged = *accepted
	}
	if patch != nil {
		if patch.Contrast != nil {
			merged.Contrast = patch.Contrast
		}
		if patch.Vibrance != nil {
			merged.Vibrance = patch.Vibrance
		}
		if patch.Saturation != nil {
			merged.Saturation = patch.Saturation
		}
	}
	return &merged
}

// MergeGlobal layers a global-field patch over an accepted global
// override, returning nil when neither carries a value.
func MergeGlobal(accepted, patch *AdjustmentRecord) *AdjustmentRecord {
	if accepted == nil && patch == nil {
		return nil
	}
	merged := accepted.Clone()
	if patch != nil {
		overlayRecord(merged, patch)
	}
	return merged
}

// overlayRecord overwrites every top-level scalar field dst with the
// value src carries. Masks are deliberately excluded: the mask collection
// is owned by the reconciliation tiers, never by the global override.
func overlayRecord(dst, src *AdjustmentRecord) {
	if src.Exposure != nil {
		dst.Exposure = src.Exposure
	}
	if src.Contrast != nil {
		dst.Contrast = src.Contrast
	}
	if src.Highlights != nil {
		dst.Highlights = src.Highlights
	}
	if src.Shadows != nil {
		dst.Shadows = src.Shadows
	}
	if src.Whites != nil {
		dst.Whites = src.Whites
	}
	if src.Blacks != nil {
		dst.Blacks = src.Blacks
	}
	if src.Clarity != nil {
		dst.Clarity = src.Clarity
	}
	if src.Vibrance != nil {
		dst.Vibrance = src.Vibrance
	}
	if src.Saturation != nil {
		dst.Saturation = src.Saturation
	}
	if src.Temperature != nil {
		dst.Temperature = src.Temperature
	}
	if src.Tint != nil {
		dst.Tint = src.Tint
	}

	if src.ColorGradeShadowHue != nil {
		dst.ColorGradeShadowHue = src.ColorGradeShadowHue
	}
	if src.ColorGradeShadowSat != nil {
		dst.ColorGradeShadowSat = src.ColorGradeShadowSat
	}
	if src.ColorGradeShadowLuma != nil {
		dst.ColorGradeShadowLuma = src.ColorGradeShadowLuma
	}
	if src.ColorGradeMidtoneHue != nil {
		dst.ColorGradeMidtoneHue = src.ColorGradeMidtoneHue
	}
	if src.ColorGradeMidtoneSat != nil {
		dst.ColorGradeMidtoneSat = src.ColorGradeMidtoneSat
	}
	if src.ColorGradeMidtoneLuma != nil {
		dst.ColorGradeMidtoneLuma = src.ColorGradeMidtoneLuma
	}
	if src.ColorGradeHighlightHue != nil {
		dst.ColorGradeHighlightHue = src.ColorGradeHighlightHue
	}
	if src.ColorGradeHighlightSat != nil {
		dst.ColorGradeHighlightSat = src.ColorGradeHighlightSat
	}
	if src.ColorGradeHighlightLuma != nil {
		dst.ColorGradeHighlightLuma = src.ColorGradeHighlightLuma
	}

	if src.HueRed != nil {
		dst.HueRed = src.HueRed
	}
	if src.HueOrange != nil {
		dst.HueOrange = src.HueOrange
	}
	if src.HueYellow != nil {
		dst.HueYellow = src.HueYellow
	}
	if src.HueGreen != nil {
		dst.HueGreen = src.HueGreen
	}
	if src.HueAqua != nil {
		dst.HueAqua = src.HueAqua
	}
	if src.HueBlue != nil {
		dst.HueBlue = src.HueBlue
	}
	if src.HuePurple != nil {
		dst.HuePurple = src.HuePurple
	}
	if src.HueMagenta != nil {
		dst.HueMagenta = src.HueMagenta
	}

	if src.SatRed != nil {
		dst.SatRed = src.SatRed
	}
	if src.SatOrange != nil {
		dst.SatOrange = src.SatOrange
	}
	if src.SatYellow != nil {
		dst.SatYellow = src.SatYellow
	}
	if src.SatGreen != nil {
		dst.SatGreen = src.SatGreen
	}
	if src.SatAqua != nil {
		dst.SatAqua = src.SatAqua
	}
	if src.SatBlue != nil {
		dst.SatBlue = src.SatBlue
	}
	if src.SatPurple != nil {
		dst.SatPurple = src.SatPurple
	}
	if src.SatMagenta != nil {
		dst.SatMagenta = src.SatMagenta
	}

	if src.LumRed != nil {
		dst.LumRed = src.LumRed
	}
	if src.LumOrange != nil {
		dst.LumOrange = src.LumOrange
	}
	if src.LumYellow != nil {
		dst.LumYellow = src.LumYellow
	}
	if src.LumGreen != nil {
		dst.LumGreen = src.LumGreen
	}
	if src.LumAqua != nil {
		dst.LumAqua = src.LumAqua
	}
	if src.LumBlue != nil {
		dst.LumBlue = src.LumBlue
	}
	if src.LumPurple != nil {
		dst.LumPurple = src.LumPurple
	}
	if src.LumMagenta != nil {
		dst.LumMagenta = src.LumMagenta
	}

	if src.ToneCurve != nil {
		dst.ToneCurve = cloneCurve(src.ToneCurve)
	}
	if src.ToneCurveRed != nil {
		dst.ToneCurveRed = cloneCurve(src.ToneCurveRed)
	}
	if src.ToneCurveGreen != nil {
		dst.ToneCurveGreen = cloneCurve(src.ToneCurveGreen)
	}
	if src.ToneCurveBlue != nil {
		dst.ToneCurveBlue = cloneCurve(src.ToneCurveBlue)
	}

	if src.GrainAmount != nil {
		dst.GrainAmount = src.GrainAmount
	}
	if src.GrainSize != nil {
		dst.GrainSize = src.GrainSize
	}
	if src.GrainFrequency != nil {
		dst.GrainFrequency = src.GrainFrequency
	}

	if src.VignetteAmount != nil {
		dst.VignetteAmount = src.VignetteAmount
	}
	if src.VignetteMidpoint != nil {
		dst.VignetteMidpoint = src.VignetteMidpoint
	}
	if src.VignetteFeather != nil {
		dst.VignetteFeather = src.VignetteFeather
	}
	if src.VignetteRoundness != nil {
		dst.VignetteRoundness = src.VignetteRoundness
	}
	if src.VignetteStyle != nil {
		dst.VignetteStyle = src.VignetteStyle
	}
	if src.VignetteHighlightContrast != nil {
		dst.VignetteHighlightContrast = src.VignetteHighlightContrast
	}

	if src.PointColors != nil {
		dst.PointColors = append([]PointColor(nil), src.PointColors...)
	}
}
