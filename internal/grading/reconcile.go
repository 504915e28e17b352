package grading

// Engine replays mask-patch operations against a mask collection. It is
// pure: inputs are never mutated, every application works on a copy.
type Engine struct {
	ids IdentityResolver
}

// NewEngine creates a reconciliation engine with the given resolver.
func NewEngine(ids IdentityResolver) *Engine {
	return &Engine{ids: ids}
}

// ApplyOverrides is a convenience wrapper using the composite resolver.
func ApplyOverrides(base []Mask, ops []MaskOverrideOp) []Mask {
	return NewEngine(NewCompositeIdentity()).Apply(base, ops)
}

// Apply processes ops strictly in order against an accumulating copy of
// base and returns the result. Operations form a sequential patch log:
// order sensitivity is intentional, and replaying an unchanged add or
// update against its own output is a no-op.
func (e *Engine) Apply(base []Mask, ops []MaskOverrideOp) []Mask {
	out := CloneMasks(base)

	for i := range ops {
		op := &ops[i]
		switch op.Op {
		case OpRemoveAll, OpClear:
			// Truncate; later ops in the same batch apply to the empty list.
			out = nil
		case OpRemove:
			if idx := e.ids.FindIndexFlexible(out, op); idx >= 0 {
				out = append(out[:idx], out[idx+1:]...)
			}
		default:
			// add, update, and anything unrecognized share upsert
			// semantics: merge into the match, or append.
			out = e.upsert(out, op)
		}
	}

	return out
}

func (e *Engine) upsert(list []Mask, op *MaskOverrideOp) []Mask {
	if idx := e.ids.FindIndexFlexible(list, op); idx >= 0 {
		list[idx] = mergeMask(&list[idx], &op.Mask)
		return list
	}

	entry := op.Mask
	if entry.ID == "" {
		// Assign the resolved identity so later ops can address the entry.
		entry.ID = e.ids.Identify(&op.Mask)
	}
	return append(list, entry)
}

// mergeMask layers the fields a patch actually carries over the previous
// mask. Geometry and meta fields overwrite; adjustments merge key by key
// so unspecified keys survive. The previous id wins when both exist.
func mergeMask(prev, patch *Mask) Mask {
	merged := *prev

	if patch.Name != "" {
		merged.Name = patch.Name
	}
	if patch.Type != "" {
		merged.Type = patch.Type
	}
	if patch.SubCategoryID != nil {
		merged.SubCategoryID = patch.SubCategoryID
	}
	if patch.ReferenceX != nil {
		merged.ReferenceX = patch.ReferenceX
	}
	if patch.ReferenceY != nil {
		merged.ReferenceY = patch.ReferenceY
	}
	if patch.StartX != nil {
		merged.StartX = patch.StartX
	}
	if patch.StartY != nil {
		merged.StartY = patch.StartY
	}
	if patch.EndX != nil {
		merged.EndX = patch.EndX
	}
	if patch.EndY != nil {
		merged.EndY = patch.EndY
	}
	if patch.Radius != nil {
		merged.Radius = patch.Radius
	}
	if patch.Angle != nil {
		merged.Angle = patch.Angle
	}
	if patch.Feather != nil {
		merged.Feather = patch.Feather
	}
	if patch.RangeMin != nil {
		merged.RangeMin = patch.RangeMin
	}
	if patch.RangeMax != nil {
		merged.RangeMax = patch.RangeMax
	}
	if patch.Invert != nil {
		merged.Invert = patch.Invert
	}

	merged.Adjustments = mergeAdjustments(&prev.Adjustments, &patch.Adjustments)

	if prev.ID != "" {
		merged.ID = prev.ID
	} else {
		merged.ID = patch.ID
	}

	return merged
}

func mergeAdjustments(prev, patch *MaskAdjustments) MaskAdjustments {
	merged := *prev
	if patch.Exposure != nil {
		merged.Exposure = patch.Exposure
	}
	if patch.Contrast != nil {
		merged.Contrast = patch.Contrast
	}
	if patch.Highlights != nil {
		merged.Highlights = patch.Highlights
	}
	if patch.Shadows != nil {
		merged.Shadows = patch.Shadows
	}
	if patch.Clarity != nil {
		merged.Clarity = patch.Clarity
	}
	if patch.Saturation != nil {
		merged.Saturation = patch.Saturation
	}
	if patch.Temperature != nil {
		merged.Temperature = patch.Temperature
	}
	if patch.Tint != nil {
		merged.Tint = patch.Tint
	}
	if patch.Sharpness != nil {
		merged.Sharpness = patch.Sharpness
	}
	if patch.Dehaze != nil {
		merged.Dehaze = patch.Dehaze
	}
	return merged
}
