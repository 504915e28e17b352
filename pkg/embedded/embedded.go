package embedded

import (
	_ "embed"
)

// Embed all prompt data files
//
//go:embed data/core_data/system_prompt.txt
var SystemPromptTxt []byte

//go:embed data/core_data/mask_guidelines.txt
var MaskGuidelinesTxt []byte

//go:embed data/core_data/output_format_instructions.txt
var OutputFormatInstructionsTxt []byte
