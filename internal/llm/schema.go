package llm

const (
	// Local adjustment bounds
	localAdjustmentMin = -1.0
	localAdjustmentMax = 1.0

	// Develop-scale bounds shared by most global sliders
	globalScaleMin = -100.0
	globalScaleMax = 100.0

	// Exposure is stop-based, not develop-scale
	exposureMin = -5.0
	exposureMax = 5.0
)

// maskTypeEnum lists every mask variant the proposer may emit. Keep in
// sync with grading.MaskType.
func maskTypeEnum() []string {
	return []string{
		"linear_gradient", "radial_gradient", "brush", "rectangle", "ellipse",
		"luminance_range", "color_range", "depth_range",
		"subject", "background", "object", "person",
		"face_skin", "body_skin", "eyes", "eyebrows", "lips", "teeth", "hair", "clothing",
		"sky", "vegetation", "water", "architecture", "mountains",
	}
}

// GetGradingProposalSchema returns the JSON schema for a grading proposal
// bundle. The schema mirrors grading.PendingModification: style sliders,
// global scalar overrides, an ordered mask-op tier and text patches.
// Note: OpenAI requires additionalProperties: false, which means all
// properties must be listed; op-specific optional fields stay nullable.
func GetGradingProposalSchema() map[string]any {
	scalar := func(minimum, maximum float64) map[string]any {
		return map[string]any{
			"type":    []string{"number", "null"},
			"minimum": minimum,
			"maximum": maximum,
		}
	}
	coordinate := map[string]any{
		"type":    []string{"number", "null"},
		"minimum": 0,
		"maximum": 1,
	}

	localAdjustments := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"local_exposure":    scalar(localAdjustmentMin, localAdjustmentMax),
			"local_contrast":    scalar(localAdjustmentMin, localAdjustmentMax),
			"local_highlights":  scalar(localAdjustmentMin, localAdjustmentMax),
			"local_shadows":     scalar(localAdjustmentMin, localAdjustmentMax),
			"local_clarity":     scalar(localAdjustmentMin, localAdjustmentMax),
			"local_saturation":  scalar(localAdjustmentMin, localAdjustmentMax),
			"local_temperature": scalar(localAdjustmentMin, localAdjustmentMax),
			"local_tint":        scalar(localAdjustmentMin, localAdjustmentMax),
			"local_sharpness":   scalar(localAdjustmentMin, localAdjustmentMax),
			"local_dehaze":      scalar(localAdjustmentMin, localAdjustmentMax),
		},
		"required": []string{
			"local_exposure", "local_contrast", "local_highlights", "local_shadows",
			"local_clarity", "local_saturation", "local_temperature", "local_tint",
			"local_sharpness", "local_dehaze",
		},
		"additionalProperties": false,
	}

	maskOp := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"op": map[string]any{
				"type": "string",
				"enum": []string{"add", "update", "remove", "remove_all", "clear"},
			},
			"id":   map[string]any{"type": []string{"string", "null"}},
			"name": map[string]any{"type": []string{"string", "null"}},
			"type": map[string]any{
				"type": []string{"string", "null"},
				"enum": maskTypeEnum(),
			},
			"subCategoryId": map[string]any{"type": []string{"integer", "null"}},
			"referenceX":    coordinate,
			"referenceY":    coordinate,
			"startX":        coordinate,
			"startY":        coordinate,
			"endX":          coordinate,
			"endY":          coordinate,
			"radius":        coordinate,
			"angle":         scalar(-360, 360),
			"feather":       coordinate,
			"rangeMin":      coordinate,
			"rangeMax":      coordinate,
			"invert":        map[string]any{"type": []string{"boolean", "null"}},
			"adjustments":   localAdjustments,
		},
		"required": []string{
			"op", "id", "name", "type", "subCategoryId",
			"referenceX", "referenceY", "startX", "startY", "endX", "endY",
			"radius", "angle", "feather", "rangeMin", "rangeMax", "invert",
			"adjustments",
		},
		"additionalProperties": false,
	}

	globalOverride := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"exposure":    scalar(exposureMin, exposureMax),
			"contrast":    scalar(globalScaleMin, globalScaleMax),
			"highlights":  scalar(globalScaleMin, globalScaleMax),
			"shadows":     scalar(globalScaleMin, globalScaleMax),
			"whites":      scalar(globalScaleMin, globalScaleMax),
			"blacks":      scalar(globalScaleMin, globalScaleMax),
			"clarity":     scalar(globalScaleMin, globalScaleMax),
			"vibrance":    scalar(globalScaleMin, globalScaleMax),
			"saturation":  scalar(globalScaleMin, globalScaleMax),
			"temperature": scalar(globalScaleMin, globalScaleMax),
			"tint":        scalar(globalScaleMin, globalScaleMax),
		},
		"required": []string{
			"exposure", "contrast", "highlights", "shadows", "whites", "blacks",
			"clarity", "vibrance", "saturation", "temperature", "tint",
		},
		"additionalProperties": false,
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"style": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"contrast":   scalar(globalScaleMin, globalScaleMax),
					"vibrance":   scalar(globalScaleMin, globalScaleMax),
					"saturation": scalar(globalScaleMin, globalScaleMax),
				},
				"required":             []string{"contrast", "vibrance", "saturation"},
				"additionalProperties": false,
			},
			"global": globalOverride,
			"maskOps": map[string]any{
				"type":  "array",
				"items": maskOp,
			},
			"name":        map[string]any{"type": []string{"string", "null"}},
			"prompt":      map[string]any{"type": []string{"string", "null"}},
			"description": map[string]any{"type": []string{"string", "null"}},
		},
		"required":             []string{"style", "global", "maskOps", "name", "prompt", "description"},
		"additionalProperties": false,
	}
}
