// Package prompts builds model instructions from a style and the user's text.
package prompts

import (
	"embed"
	"fmt"
	"strings"

	"github.com/sant0-9/reportgenie/internal/errs"
	"github.com/sant0-9/reportgenie/internal/style"
)

//go:embed preamble.md
var Preamble string

//go:embed output.md
var OutputContract string

//go:embed rules/*.md
var rules embed.FS

const (
	modePrefix  = "Mode: "
	inputMarker = "\n\nInput:\n"
)

// EmptyInputMessage is shown when there is nothing to format
const EmptyInputMessage = "Please enter some text to begin."

// Instruction is the complete text sent to the model gateway
type Instruction string

// Build composes the instruction for s. The raw text is appended verbatim as
// the final section.
func Build(s style.Style, rawText string) (Instruction, error) {
	if strings.TrimSpace(rawText) == "" {
		return "", errs.New(errs.KindEmptyInput, EmptyInputMessage)
	}

	info, err := style.Lookup(s)
	if err != nil {
		return "", err
	}

	ruleBlock, err := Rules(info.Template)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(Preamble))
	b.WriteString("\n\n")
	b.WriteString(modePrefix)
	b.WriteString(info.Template)
	b.WriteString("\n")
	b.WriteString(ruleBlock)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(OutputContract))
	b.WriteString(inputMarker)
	b.WriteString(rawText)

	return Instruction(b.String()), nil
}

// Rules returns the rule block for a template identifier
func Rules(template string) (string, error) {
	data, err := rules.ReadFile("rules/" + template + ".md")
	if err != nil {
		return "", errs.Wrap(err, errs.KindUnknownStyle, fmt.Sprintf("no rules for template %s", template))
	}
	return strings.TrimSpace(string(data)), nil
}

// Template returns the template identifier named in the instruction
func (i Instruction) Template() string {
	s := string(i)
	idx := strings.Index(s, "\n"+modePrefix)
	if idx < 0 {
		return ""
	}
	rest := s[idx+1+len(modePrefix):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}

// Input returns the user's text exactly as it was given to Build
func (i Instruction) Input() string {
	s := string(i)
	idx := strings.Index(s, inputMarker)
	if idx < 0 {
		return ""
	}
	return s[idx+len(inputMarker):]
}

func (i Instruction) String() string {
	return string(i)
}
