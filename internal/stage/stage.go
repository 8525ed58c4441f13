// Package stage pulls one section out of the compiler's combined stage
// output (AST, three-address code, optimisation report, assembly).
package stage

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Section selects a compiler stage.
type Section uint8

const (
	SectionAST Section = iota + 1
	SectionTAC
	SectionOptimize
	SectionAsm
)

func (s Section) String() string {
	switch s {
	case SectionAST:
		return "ast"
	case SectionTAC:
		return "tac"
	case SectionOptimize:
		return "optimize"
	case SectionAsm:
		return "asm"
	}
	return "unknown"
}

// ParseSection accepts the names printed by String plus the compiler's
// stage flags (ir, asm).
func ParseSection(s string) (Section, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ast":
		return SectionAST, true
	case "tac", "ir":
		return SectionTAC, true
	case "optimize", "opt":
		return SectionOptimize, true
	case "asm":
		return SectionAsm, true
	}
	return 0, false
}

// bannerPrefix starts every numbered stage banner.
const bannerPrefix = "=========="

type rule struct {
	header func(line string) bool
	stop   func(line string) bool
}

func containsAny(line string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func bannerFor(num string) func(string) bool {
	return func(line string) bool {
		return strings.HasPrefix(line, bannerPrefix) && strings.Contains(line, num+".")
	}
}

var rules = map[Section]rule{
	SectionAST: {
		header: func(l string) bool { return containsAny(l, "抽象语法树", "AST") },
		stop:   bannerFor("3"),
	},
	SectionTAC: {
		header: func(l string) bool { return strings.Contains(l, "中间代码") && containsAny(l, "TAC", "三地址码") },
		stop:   bannerFor("5"),
	},
	SectionOptimize: {
		header: func(l string) bool { return strings.Contains(l, "代码优化") && containsAny(l, "Optimization", "优化") },
		stop:   bannerFor("6"),
	},
	SectionAsm: {
		header: func(l string) bool {
			return containsAny(l, "目标代码", "汇编") && containsAny(l, "x86", "Intel", "语法")
		},
		stop: func(l string) bool { return strings.Contains(l, "编译完成") },
	},
}

// Extract returns the body of section s: every non-blank line after its
// header up to the next stage banner, with "===" separators dropped. The
// second result is false when the header never appears.
func Extract(output string, s Section) (string, bool) {
	r, ok := rules[s]
	if !ok {
		return "", false
	}
	output = norm.NFC.String(output)

	var (
		body  []string
		found bool
	)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if r.header(line) {
			found = true
			continue
		}
		if !found {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "===" {
			continue
		}
		if r.stop(line) {
			break
		}
		body = append(body, line)
	}
	if !found {
		return "", false
	}
	return strings.Join(body, "\n"), true
}

// TAC returns the three-address-code section, or the whole input when it
// carries no stage headers (a bare dump).
func TAC(output string) string {
	if body, ok := Extract(output, SectionTAC); ok {
		return body
	}
	return output
}
