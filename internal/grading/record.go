// Package grading owns the adjustment-record data model and the
// override-composition engine: layering style sliders, global scalar
// overrides and mask-patch tiers onto a base record to produce the
// effective record used for preview and preset export.
package grading

// AdjustmentRecord is the full parameter set describing a color-grading
// preset. Every field is independently optional: a nil pointer means
// "unspecified", never zero. Values mirror the develop-module ranges of
// common raw editors (tone in [-100,100] style scales, HSL in [-100,100]).
type AdjustmentRecord struct {
	// Global tone
	Exposure   *float64 `json:"exposure,omitempty"`
	Contrast   *float64 `json:"contrast,omitempty"`
	Highlights *float64 `json:"highlights,omitempty"`
	Shadows    *float64 `json:"shadows,omitempty"`
	Whites     *float64 `json:"whites,omitempty"`
	Blacks     *float64 `json:"blacks,omitempty"`
	Clarity    *float64 `json:"clarity,omitempty"`
	Vibrance   *float64 `json:"vibrance,omitempty"`
	Saturation *float64 `json:"saturation,omitempty"`

	// White balance
	Temperature *float64 `json:"temperature,omitempty"`
	Tint        *float64 `json:"tint,omitempty"`

	// Color grading (three zones x hue/sat/luma)
	ColorGradeShadowHue     *float64 `json:"colorGradeShadowHue,omitempty"`
	ColorGradeShadowSat     *float64 `json:"colorGradeShadowSat,omitempty"`
	ColorGradeShadowLuma    *float64 `json:"colorGradeShadowLuma,omitempty"`
	ColorGradeMidtoneHue    *float64 `json:"colorGradeMidtoneHue,omitempty"`
	ColorGradeMidtoneSat    *float64 `json:"colorGradeMidtoneSat,omitempty"`
	ColorGradeMidtoneLuma   *float64 `json:"colorGradeMidtoneLuma,omitempty"`
	ColorGradeHighlightHue  *float64 `json:"colorGradeHighlightHue,omitempty"`
	ColorGradeHighlightSat  *float64 `json:"colorGradeHighlightSat,omitempty"`
	ColorGradeHighlightLuma *float64 `json:"colorGradeHighlightLuma,omitempty"`

	// HSL (eight bands x hue/sat/luma)
	HueRed     *float64 `json:"hueRed,omitempty"`
	HueOrange  *float64 `json:"hueOrange,omitempty"`
	HueYellow  *float64 `json:"hueYellow,omitempty"`
	HueGreen   *float64 `json:"hueGreen,omitempty"`
	HueAqua    *float64 `json:"hueAqua,omitempty"`
	HueBlue    *float64 `json:"hueBlue,omitempty"`
	HuePurple  *float64 `json:"huePurple,omitempty"`
	HueMagenta *float64 `json:"hueMagenta,omitempty"`

	SatRed     *float64 `json:"satRed,omitempty"`
	SatOrange  *float64 `json:"satOrange,omitempty"`
	SatYellow  *float64 `json:"satYellow,omitempty"`
	SatGreen   *float64 `json:"satGreen,omitempty"`
	SatAqua    *float64 `json:"satAqua,omitempty"`
	SatBlue    *float64 `json:"satBlue,omitempty"`
	SatPurple  *float64 `json:"satPurple,omitempty"`
	SatMagenta *float64 `json:"satMagenta,omitempty"`

	LumRed     *float64 `json:"lumRed,omitempty"`
	LumOrange  *float64 `json:"lumOrange,omitempty"`
	LumYellow  *float64 `json:"lumYellow,omitempty"`
	LumGreen   *float64 `json:"lumGreen,omitempty"`
	LumAqua    *float64 `json:"lumAqua,omitempty"`
	LumBlue    *float64 `json:"lumBlue,omitempty"`
	LumPurple  *float64 `json:"lumPurple,omitempty"`
	LumMagenta *float64 `json:"lumMagenta,omitempty"`

	// Tone curves (nil = unspecified, empty slice = explicit linear curve)
	ToneCurve      []CurvePoint `json:"toneCurve,omitempty"`
	ToneCurveRed   []CurvePoint `json:"toneCurveRed,omitempty"`
	ToneCurveGreen []CurvePoint `json:"toneCurveGreen,omitempty"`
	ToneCurveBlue  []CurvePoint `json:"toneCurveBlue,omitempty"`

	// Grain
	GrainAmount    *float64 `json:"grainAmount,omitempty"`
	GrainSize      *float64 `json:"grainSize,omitempty"`
	GrainFrequency *float64 `json:"grainFrequency,omitempty"`

	// Vignette
	VignetteAmount            *float64 `json:"vignetteAmount,omitempty"`
	VignetteMidpoint          *float64 `json:"vignetteMidpoint,omitempty"`
	VignetteFeather           *float64 `json:"vignetteFeather,omitempty"`
	VignetteRoundness         *float64 `json:"vignetteRoundness,omitempty"`
	VignetteStyle             *float64 `json:"vignetteStyle,omitempty"`
	VignetteHighlightContrast *float64 `json:"vignetteHighlightContrast,omitempty"`

	// Targeted point-color corrections
	PointColors []PointColor `json:"pointColors,omitempty"`

	// Local adjustments (ordered; identity handled by the resolver)
	Masks []Mask `json:"masks,omitempty"`
}

// CurvePoint is one control point of a tone curve, both axes in [0,255].
type CurvePoint struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// PointColor is a single targeted color correction anchored at a sampled
// source color.
type PointColor struct {
	SrcHue      float64  `json:"srcHue"`
	SrcSat      float64  `json:"srcSat"`
	SrcLum      float64  `json:"srcLum"`
	HueShift    *float64 `json:"hueShift,omitempty"`
	SatShift    *float64 `json:"satShift,omitempty"`
	LumShift    *float64 `json:"lumShift,omitempty"`
	RangeAmount *float64 `json:"rangeAmount,omitempty"`
}

// MaskType enumerates the supported local-adjustment mask variants.
type MaskType string

const (
	// Geometric
	MaskLinearGradient MaskType = "linear_gradient"
	MaskRadialGradient MaskType = "radial_gradient"
	MaskBrush          MaskType = "brush"
	MaskRectangle      MaskType = "rectangle"
	MaskEllipse        MaskType = "ellipse"
	MaskLuminanceRange MaskType = "luminance_range"
	MaskColorRange     MaskType = "color_range"
	MaskDepthRange     MaskType = "depth_range"

	// Subject
	MaskSubject    MaskType = "subject"
	MaskBackground MaskType = "background"
	MaskObject     MaskType = "object"
	MaskPerson     MaskType = "person"

	// Anatomical
	MaskFaceSkin MaskType = "face_skin"
	MaskBodySkin MaskType = "body_skin"
	MaskEyes     MaskType = "eyes"
	MaskEyebrows MaskType = "eyebrows"
	MaskLips     MaskType = "lips"
	MaskTeeth    MaskType = "teeth"
	MaskHair     MaskType = "hair"
	MaskClothing MaskType = "clothing"

	// Landscape
	MaskSky          MaskType = "sky"
	MaskVegetation   MaskType = "vegetation"
	MaskWater        MaskType = "water"
	MaskArchitecture MaskType = "architecture"
	MaskMountains    MaskType = "mountains"
)

// Mask is a named local-adjustment region with its own bounded parameter
// sub-record. Geometry fields are type-specific and optional; absent
// fields survive merges untouched.
type Mask struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name,omitempty"`
	Type          MaskType `json:"type,omitempty"`
	SubCategoryID *int     `json:"subCategoryId,omitempty"`

	// Anchor point (normalized image coordinates)
	ReferenceX *float64 `json:"referenceX,omitempty"`
	ReferenceY *float64 `json:"referenceY,omitempty"`

	// Gradient endpoints
	StartX *float64 `json:"startX,omitempty"`
	StartY *float64 `json:"startY,omitempty"`
	EndX   *float64 `json:"endX,omitempty"`
	EndY   *float64 `json:"endY,omitempty"`

	// Radial / area parameters
	Radius  *float64 `json:"radius,omitempty"`
	Angle   *float64 `json:"angle,omitempty"`
	Feather *float64 `json:"feather,omitempty"`

	// Range masks (luminance/color/depth)
	RangeMin *float64 `json:"rangeMin,omitempty"`
	RangeMax *float64 `json:"rangeMax,omitempty"`

	Invert *bool `json:"invert,omitempty"`

	Adjustments MaskAdjustments `json:"adjustments"`
}

// MaskAdjustments holds the bounded local adjustments of one mask.
// All values live in [-1,1]; nil means the field is untouched.
type MaskAdjustments struct {
	Exposure    *float64 `json:"local_exposure,omitempty"`
	Contrast    *float64 `json:"local_contrast,omitempty"`
	Highlights  *float64 `json:"local_highlights,omitempty"`
	Shadows     *float64 `json:"local_shadows,omitempty"`
	Clarity     *float64 `json:"local_clarity,omitempty"`
	Saturation  *float64 `json:"local_saturation,omitempty"`
	Temperature *float64 `json:"local_temperature,omitempty"`
	Tint        *float64 `json:"local_tint,omitempty"`
	Sharpness   *float64 `json:"local_sharpness,omitempty"`
	Dehaze      *float64 `json:"local_dehaze,omitempty"`
}

// MaskOp is a patch instruction kind for the reconciliation engine.
type MaskOp string

const (
	OpAdd       MaskOp = "add"
	OpUpdate    MaskOp = "update"
	OpRemove    MaskOp = "remove"
	OpRemoveAll MaskOp = "remove_all"
	OpClear     MaskOp = "clear"
)

// MaskOverrideOp is one entry of an override tier: a mask-shaped record
// plus an operation. remove_all/clear ignore every other field. An empty
// Op defaults to add.
type MaskOverrideOp struct {
	Op MaskOp `json:"op,omitempty"`
	Mask
}

// StyleOverride carries the simplified user-facing style sliders. Each
// proxies one top-level record field.
type StyleOverride struct {
	Contrast   *float64 `json:"contrast,omitempty"`
	Vibrance   *float64 `json:"vibrance,omitempty"`
	Saturation *float64 `json:"saturation,omitempty"`
}

// TextPatch carries optional edits to recipe text fields.
type TextPatch struct {
	Name        *string `json:"name,omitempty"`
	Prompt      *string `json:"prompt,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PendingModification is the staged bundle produced by the proposer.
// It is preview-only until Accept merges it into persisted tiers.
type PendingModification struct {
	StylePatch  *StyleOverride    `json:"style,omitempty"`
	GlobalPatch *AdjustmentRecord `json:"global,omitempty"`
	MaskOps     []MaskOverrideOp  `json:"maskOps,omitempty"`
	TextPatch   TextPatch         `json:"text"`
}

// Clone returns a deep copy of the record. Pointer targets are treated
// as immutable values throughout the engine, so only slices need fresh
// backing arrays.
func (r *AdjustmentRecord) Clone() *AdjustmentRecord {
	if r == nil {
		return &AdjustmentRecord{}
	}
	out := *r
	out.ToneCurve = cloneCurve(r.ToneCurve)
	out.ToneCurveRed = cloneCurve(r.ToneCurveRed)
	out.ToneCurveGreen = cloneCurve(r.ToneCurveGreen)
	out.ToneCurveBlue = cloneCurve(r.ToneCurveBlue)
	out.PointColors = append([]PointColor(nil), r.PointColors...)
	out.Masks = CloneMasks(r.Masks)
	return &out
}

func cloneCurve(points []CurvePoint) []CurvePoint {
	if points == nil {
		return nil
	}
	return append([]CurvePoint(nil), points...)
}

// CloneMasks copies a mask list into a fresh backing array.
func CloneMasks(masks []Mask) []Mask {
	if masks == nil {
		return nil
	}
	return append([]Mask(nil), masks...)
}
