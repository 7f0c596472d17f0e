package embedded

import (
	_ "embed"
)

// Embed all producer prompt data files
//
//go:embed data/system_prompt.txt
var SystemPromptTxt []byte

//go:embed data/output_format_instructions.txt
var OutputFormatInstructionsTxt []byte

//go:embed data/arrangement_guidelines.txt
var ArrangementGuidelinesTxt []byte
