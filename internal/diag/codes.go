package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Классификатор строк TAC
	TACInfo              Code = 1000
	TACUnrecognizedLine  Code = 1001
	TACMalformedCondJump Code = 1002
	TACEmptyAssignSide   Code = 1003
	TACDuplicateLabel    Code = 1004

	// Симулятор
	SimInfo            Code = 2000
	SimUnresolvedLabel Code = 2001
	SimStepLimit       Code = 2002
	SimOpaqueCall      Code = 2003
	SimArrayOperation  Code = 2004
	SimNotComputable   Code = 2005
	SimArraySizeDecl   Code = 2006
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	TACInfo:              "TAC information",
	TACUnrecognizedLine:  "Unrecognized line",
	TACMalformedCondJump: "Malformed conditional jump",
	TACEmptyAssignSide:   "Assignment with an empty side",
	TACDuplicateLabel:    "Duplicate label definition",
	SimInfo:              "Simulator information",
	SimUnresolvedLabel:   "Jump to unresolved label",
	SimStepLimit:         "Step limit exceeded",
	SimOpaqueCall:        "Call treated as opaque",
	SimArrayOperation:    "Array or pointer operation",
	SimNotComputable:     "Expression not computable",
	SimArraySizeDecl:     "Array size declaration skipped",
}

// ID returns the stable short identifier, e.g. "TAC1001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("TAC%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SIM%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
