package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/OpenGG/modswap/internal/modswap"
)

const noneLabel = "none"

// renderer writes the console views. Styles degrade to plain text when w is
// not a terminal.
type renderer struct {
	w      io.Writer
	muted  lipgloss.Style
	normal lipgloss.Style
	set    lipgloss.Style
	errs   lipgloss.Style
}

func newRenderer(w io.Writer) *renderer {
	r := lipgloss.NewRenderer(w)
	return &renderer{
		w:      w,
		muted:  r.NewStyle().Foreground(lipgloss.Color("#7D7D7D")),
		normal: r.NewStyle().Foreground(lipgloss.Color("#A5A5A5")),
		set:    r.NewStyle().Foreground(lipgloss.Color("6")).Underline(true),
		errs:   r.NewStyle().Foreground(lipgloss.Color("1")).Underline(true),
	}
}

func displayName(pointer string) string {
	if pointer == "" {
		return noneLabel
	}
	return pointer
}

func (r *renderer) current(pointer string) {
	fmt.Fprintf(r.w, "Current configuration: %s\n", displayName(pointer))
}

func (r *renderer) sets(names []string, active string) {
	fmt.Fprintln(r.w, "Configurations:")
	for i, name := range names {
		line := fmt.Sprintf("\t%s %s", r.muted.Render(fmt.Sprintf("(%d)", i+1)), r.set.Render(name))
		if name == active {
			line += " " + r.muted.Render("(active)")
		}
		fmt.Fprintln(r.w, line)
	}
}

func (r *renderer) shellHelp() {
	fmt.Fprintln(r.w, "Commands:")
	fmt.Fprintf(r.w, "\t%s\n", r.normal.Render("exit Exits the program."))
	fmt.Fprintf(r.w, "\t%s\n", r.muted.Render("(Can also Ctrl+C without messing things up if you already swapped the config)"))
	fmt.Fprintf(r.w, "\t%s\n", r.normal.Render("swap <number> Swaps the current config with the numbered config."))
	fmt.Fprintf(r.w, "\t%s\n", r.normal.Render("list Reloads and shows the configurations."))
	fmt.Fprintf(r.w, "\t%s\n", r.normal.Render("status Shows what is active on disk."))
	fmt.Fprintf(r.w, "\t%s\n", r.normal.Render("recover Undoes an interrupted swap."))
}

func (r *renderer) status(root string, st modswap.Status) {
	fmt.Fprintf(r.w, "Root: %s\n", root)
	r.current(st.Pointer)
	fmt.Fprintf(r.w, "Loose payloads: %d\n", len(st.Loose))
	for _, name := range st.Loose {
		fmt.Fprintf(r.w, "\t%s\n", r.normal.Render(name))
	}
	if len(st.Sets) > 0 {
		fmt.Fprintln(r.w, "Sets:")
	}
	for i, set := range st.Sets {
		detail := fmt.Sprintf("%d parked", set.Payloads)
		if set.Active {
			detail += ", active"
		}
		fmt.Fprintf(r.w, "\t%s %s %s\n",
			r.muted.Render(fmt.Sprintf("(%d)", i+1)),
			r.set.Render(set.Name),
			r.muted.Render("("+detail+")"))
	}
	for _, problem := range st.Problems {
		r.warn("Warning: " + problem)
	}
}

func (r *renderer) warn(msg string) {
	fmt.Fprintln(r.w, r.errs.Render(msg))
}
