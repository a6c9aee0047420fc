// Package report renders solve results for human operators. Nothing
// here is part of the functional contract; it only surfaces the
// conditions and data the orchestrator flags.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/MacroFinanceHub/dynare/internal/model"
	"github.com/MacroFinanceHub/dynare/internal/num"
	"github.com/MacroFinanceHub/dynare/internal/steadystate"
)

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	numStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

func statusLine(st steadystate.Status) string {
	switch {
	case st.Ok():
		return okStyle.Render("STEADY STATE FOUND")
	case st.Code == steadystate.CodeComplex:
		return warnStyle.Render(fmt.Sprintf("COMPLEX STEADY STATE (imaginary mass %.3g, real part kept)", st.Magnitude))
	default:
		return failStyle.Render(fmt.Sprintf("FAILED: %s", st))
	}
}

// WriteResult prints the status banner and the steady-state table.
func WriteResult(w io.Writer, m *model.Descriptor, ys num.Vec, st steadystate.Status) {
	fmt.Fprintln(w, statusLine(st))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", dimStyle.Render("VARIABLE"), dimStyle.Render("STEADY STATE"))
	for i, v := range ys {
		fmt.Fprintf(tw, "%s\t%s\n", m.VarName(i), numStyle.Render(fmt.Sprintf("%.6g", v)))
	}
	tw.Flush()
}

// WriteResiduals lists per-equation residuals, flagging the ones above
// tolerance.
func WriteResiduals(w io.Writer, resid num.Vec, tol float64) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", dimStyle.Render("EQUATION"), dimStyle.Render("RESIDUAL"))
	for i, r := range resid {
		mark := ""
		if r > tol || r < -tol || r != r {
			mark = failStyle.Render(" !")
		}
		fmt.Fprintf(tw, "%d\t%.6g%s\n", i+1, r, mark)
	}
	tw.Flush()
}

// Summary is a one-line result for list views.
func Summary(name string, st steadystate.Status, iterations int) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString("  ")
	if st.Ok() {
		b.WriteString(okStyle.Render("ok"))
	} else {
		b.WriteString(failStyle.Render(st.String()))
	}
	if iterations > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d iterations)", iterations)))
	}
	return b.String()
}
