package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tacsim/internal/stage"
	"tacsim/internal/tac"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file|-]",
	Short: "Show how each TAC line is classified",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	classifyCmd.Flags().Bool("raw", false, "treat input as a bare TAC dump")
	classifyCmd.Flags().Bool("skips", false, "include skipped lines")
}

type classifiedInstr struct {
	Index int    `json:"index"`
	Line  int    `json:"line"`
	Op    string `json:"op"`
	Text  string `json:"text"`
}

type classifiedLabel struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

type classifyPayload struct {
	Instructions []classifiedInstr `json:"instructions"`
	Labels       []classifiedLabel `json:"labels"`
	Diagnostics  []string          `json:"diagnostics,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return fmt.Errorf("failed to get raw flag: %w", err)
	}
	skips, err := cmd.Flags().GetBool("skips")
	if err != nil {
		return fmt.Errorf("failed to get skips flag: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	text, _, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	if !raw {
		text = stage.TAC(text)
	}

	prog := tac.Classify(text, cfg.SimOptions().ClassifyOptions())
	payload := buildClassifyPayload(prog, skips)

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "pretty":
		colorize, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		renderClassifyPretty(cmd.OutOrStdout(), payload, colorize)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func buildClassifyPayload(prog tac.Program, skips bool) classifyPayload {
	var p classifyPayload
	for i, in := range prog.Instructions {
		if in.Op == tac.OpSkip && !skips {
			continue
		}
		p.Instructions = append(p.Instructions, classifiedInstr{
			Index: i,
			Line:  in.Line,
			Op:    in.Op.String(),
			Text:  in.String(),
		})
	}
	for name, idx := range prog.Labels {
		p.Labels = append(p.Labels, classifiedLabel{Name: name, Index: idx})
	}
	slices.SortFunc(p.Labels, func(a, b classifiedLabel) int {
		if a.Index != b.Index {
			return a.Index - b.Index
		}
		return strings.Compare(a.Name, b.Name)
	})
	for _, d := range prog.Diagnostics {
		p.Diagnostics = append(p.Diagnostics, d.String())
	}
	return p
}

func renderClassifyPretty(out io.Writer, p classifyPayload, colorize bool) {
	opColor := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	warn := color.New(color.FgYellow)
	for _, c := range []*color.Color{opColor, dim, warn} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, in := range p.Instructions {
		fmt.Fprintf(out, "%4d %s %s %s\n",
			in.Index,
			dim.Sprintf("line %-4d", in.Line),
			opColor.Sprintf("%-6s", in.Op),
			in.Text)
	}
	if len(p.Labels) > 0 {
		fmt.Fprintln(out, "labels:")
		for _, l := range p.Labels {
			fmt.Fprintf(out, "  %s -> %d\n", l.Name, l.Index)
		}
	}
	if len(p.Diagnostics) > 0 {
		fmt.Fprintln(out, "diagnostics:")
		for _, d := range p.Diagnostics {
			fmt.Fprintln(out, "  "+warn.Sprint(d))
		}
	}
}
