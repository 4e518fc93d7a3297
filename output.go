package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

type styles struct {
	title lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
	muted lipgloss.Style
}

// newStyles returns the styles used to print on w.
// color is one of auto, always or never; with auto, styles are only used on terminals.
func newStyles(w io.Writer, color string) styles {
	r := lipgloss.NewRenderer(w)
	switch color {
	case "always":
		r.SetColorProfile(termenv.ANSI256)
	case "never":
		r.SetColorProfile(termenv.Ascii)
	default:
		if !isTerminal(w) {
			r.SetColorProfile(termenv.Ascii)
		}
	}
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4")),
		good:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("#F4D03F")),
		bad:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#2C4A54")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) print(reports []*report) error {
	if a.cfg.Output.Format == "yaml" {
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	}
	for _, r := range reports {
		a.printText(r)
	}
	return nil
}

// printText prints a report like:
//
//	pb.yaml: OPTIMAL
//	{a:[1] b:[1 2] c:[2]} 9
//	c expanded: 12
//	...
//
// Statistics are only printed in debug mode.
func (a *app) printText(r *report) {
	st := a.styles
	status := st.good.Render(r.Status)
	if r.Status != "OPTIMAL" {
		status = st.warn.Render(r.Status)
	}
	fmt.Fprintf(a.out, "%s: %s\n", st.title.Render(r.File), status)
	if len(r.res) == 0 {
		fmt.Fprintln(a.out, st.muted.Render("no maximal assignment found"))
	}
	for _, as := range r.res {
		fmt.Fprintln(a.out, r.scale.Format(as))
	}
	if a.cfg.Log.Level != "debug" {
		return
	}
	lines := []string{
		fmt.Sprintf("c expanded: %d", r.Stats.Expanded),
		fmt.Sprintf("c generated: %d", r.Stats.Generated),
		fmt.Sprintf("c duplicates: %d", r.Stats.Duplicates),
		fmt.Sprintf("c maximal: %d", r.Stats.Maximal),
		fmt.Sprintf("c max open: %d", r.Stats.MaxOpen),
		fmt.Sprintf("c duration: %v", r.Stats.Duration),
	}
	fmt.Fprintln(a.out, st.muted.Render(strings.Join(lines, "\n")))
}
