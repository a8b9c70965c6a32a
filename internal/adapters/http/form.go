package web

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"brochure/internal/domain/portfolio"
)

// decodePortfolio binds editor form fields to a portfolio. Values are kept
// exactly as typed. Row fields are named "<section>.<index>.<field>"; rows
// keep the order of their indices, and gaps left by removed rows are closed.
func decodePortfolio(form url.Values) portfolio.Portfolio {
	p := portfolio.New()
	p.Name = form.Get("name")
	p.Email = form.Get("email")
	p.GithubProfile = form.Get("githubProfile")

	rows := rowFields(form)
	for _, i := range sortedIndices(rows[portfolio.SectionLanguages]) {
		p.ProgrammingLanguages = append(p.ProgrammingLanguages, decodeSkill(rows[portfolio.SectionLanguages][i]))
	}
	for _, i := range sortedIndices(rows[portfolio.SectionLibraries]) {
		p.Libraries = append(p.Libraries, decodeSkill(rows[portfolio.SectionLibraries][i]))
	}
	for _, i := range sortedIndices(rows[portfolio.SectionFrameworks]) {
		p.Frameworks = append(p.Frameworks, decodeSkill(rows[portfolio.SectionFrameworks][i]))
	}
	for _, i := range sortedIndices(rows[portfolio.SectionProjects]) {
		f := rows[portfolio.SectionProjects][i]
		p.Projects = append(p.Projects, portfolio.Project{
			ProjectName:        f["projectName"],
			ProjectDescription: f["projectDescription"],
			TechnologiesUsed:   f["technologiesUsed"],
			ProjectLink:        f["projectLink"],
			ProjectDuration:    f["projectDuration"],
		})
	}
	return p
}

// rowFields groups "<section>.<index>.<field>" keys by section and index.
func rowFields(form url.Values) map[portfolio.Section]map[int]map[string]string {
	out := make(map[portfolio.Section]map[int]map[string]string)
	for key, vals := range form {
		parts := strings.SplitN(key, ".", 3)
		if len(parts) != 3 || len(vals) == 0 {
			continue
		}
		sec, ok := portfolio.ParseSection(parts[0])
		if !ok {
			continue
		}
		i, err := strconv.Atoi(parts[1])
		if err != nil || i < 0 {
			continue
		}
		if out[sec] == nil {
			out[sec] = make(map[int]map[string]string)
		}
		if out[sec][i] == nil {
			out[sec][i] = make(map[string]string)
		}
		out[sec][i][parts[2]] = vals[0]
	}
	return out
}

func sortedIndices(rows map[int]map[string]string) []int {
	idx := make([]int, 0, len(rows))
	for i := range rows {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

func decodeSkill(f map[string]string) portfolio.Skill {
	return portfolio.Skill{
		Name:    f["name"],
		Fluency: portfolio.Fluency(f["fluency"]),
	}
}

// Editor actions
const (
	actionSubmit = "submit"
	actionAdd    = "add"
	actionRemove = "remove"
)

var errBadAction = errors.New("unknown editor action")

// editorAction is a parsed "action" button value: "submit", "add:<section>"
// or "remove:<section>:<index>".
type editorAction struct {
	kind    string
	section portfolio.Section
	index   int
}

func parseAction(raw string) (editorAction, error) {
	if raw == "" || raw == actionSubmit {
		return editorAction{kind: actionSubmit}, nil
	}
	parts := strings.Split(raw, ":")
	sec, ok := portfolio.ParseSection(parts[min(1, len(parts)-1)])
	switch {
	case parts[0] == actionAdd && len(parts) == 2 && ok:
		return editorAction{kind: actionAdd, section: sec}, nil
	case parts[0] == actionRemove && len(parts) == 3 && ok:
		i, err := strconv.Atoi(parts[2])
		if err != nil {
			return editorAction{}, fmt.Errorf("%w: %q", errBadAction, raw)
		}
		return editorAction{kind: actionRemove, section: sec, index: i}, nil
	}
	return editorAction{}, fmt.Errorf("%w: %q", errBadAction, raw)
}

func (a editorAction) apply(p *portfolio.Portfolio) error {
	switch a.kind {
	case actionAdd:
		return p.Append(a.section)
	case actionRemove:
		return p.Remove(a.section, a.index)
	}
	return nil
}
