package portfolio

import (
	"errors"
	"fmt"
	"strings"
)

// Fluency is a proficiency label attached to a skill entry.
// The four levels are labels only; no ordering is defined between them.
type Fluency string

// Fluency levels
const (
	FluencyBeginner     Fluency = "Beginner"
	FluencyIntermediate Fluency = "Intermediate"
	FluencyAdvanced     Fluency = "Advanced"
	FluencyExpert       Fluency = "Expert"
)

// FluencyLevels lists every valid level in display order.
var FluencyLevels = []Fluency{FluencyBeginner, FluencyIntermediate, FluencyAdvanced, FluencyExpert}

// DefaultFluency is assigned to newly appended skill rows.
const DefaultFluency = FluencyBeginner

// IsValid reports whether f is one of the four fixed levels.
func (f Fluency) IsValid() bool {
	for _, lvl := range FluencyLevels {
		if f == lvl {
			return true
		}
	}
	return false
}

// Section names a repeating part of the portfolio form.
type Section string

// Sections
const (
	SectionLanguages  Section = "programmingLanguages"
	SectionLibraries  Section = "libraries"
	SectionFrameworks Section = "frameworks"
	SectionProjects   Section = "projects"
)

// Sections lists the dynamic sections in form order.
var Sections = []Section{SectionLanguages, SectionLibraries, SectionFrameworks, SectionProjects}

// ParseSection converts a form value to a Section.
func ParseSection(s string) (Section, bool) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, true
		}
	}
	return "", false
}

// Domain errors
var (
	ErrUnknownSection = errors.New("unknown portfolio section")
	ErrRowOutOfRange  = errors.New("row index out of range")
)

// Skill is a programming language, library or framework with a fluency level.
type Skill struct {
	Name    string  `json:"name" validate:"required"`
	Fluency Fluency `json:"fluency" validate:"required,oneof=Beginner Intermediate Advanced Expert"`
}

// Project describes one student project.
type Project struct {
	ProjectName        string `json:"projectName" validate:"min=2"`
	ProjectDescription string `json:"projectDescription" validate:"min=10"`
	TechnologiesUsed   string `json:"technologiesUsed"`
	ProjectLink        string `json:"projectLink,omitempty" validate:"omitempty,url"`
	ProjectDuration    string `json:"projectDuration" validate:"min=2"`
}

// Portfolio is the full structured profile record for one student.
// It is always replaced as a whole on submit.
type Portfolio struct {
	Name                 string    `json:"name" validate:"min=2"`
	Email                string    `json:"email" validate:"required,email"`
	GithubProfile        string    `json:"githubProfile" validate:"min=2"`
	ProgrammingLanguages []Skill   `json:"programmingLanguages" validate:"dive"`
	Libraries            []Skill   `json:"libraries" validate:"dive"`
	Frameworks           []Skill   `json:"frameworks" validate:"dive"`
	Projects             []Project `json:"projects" validate:"dive"`
}

// Student is a directory listing record.
type Student struct {
	ID                   string  `json:"_id"`
	Name                 string  `json:"name"`
	Email                string  `json:"email"`
	ProgrammingLanguages []Skill `json:"programmingLanguages"`
	Libraries            []Skill `json:"libraries"`
	Frameworks           []Skill `json:"frameworks"`
}

// New returns an empty portfolio with non-nil sections.
// POST: every section has length 0
func New() Portfolio {
	return Portfolio{
		ProgrammingLanguages: []Skill{},
		Libraries:            []Skill{},
		Frameworks:           []Skill{},
		Projects:             []Project{},
	}
}

// NewSkill returns a blank skill row.
func NewSkill() Skill {
	return Skill{Fluency: DefaultFluency}
}

// Normalize replaces nil sections with empty ones so the record serialises as arrays.
// POST: no section is nil
func (p *Portfolio) Normalize() {
	if p.ProgrammingLanguages == nil {
		p.ProgrammingLanguages = []Skill{}
	}
	if p.Libraries == nil {
		p.Libraries = []Skill{}
	}
	if p.Frameworks == nil {
		p.Frameworks = []Skill{}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
}

// Rows returns the number of rows in a section.
func (p *Portfolio) Rows(section Section) int {
	switch section {
	case SectionLanguages:
		return len(p.ProgrammingLanguages)
	case SectionLibraries:
		return len(p.Libraries)
	case SectionFrameworks:
		return len(p.Frameworks)
	case SectionProjects:
		return len(p.Projects)
	}
	return 0
}

// Append adds a blank row with defaults to the given section.
// PRE: section is one of Sections
// POST: Rows(section) grows by one; other sections are unchanged
func (p *Portfolio) Append(section Section) error {
	switch section {
	case SectionLanguages:
		p.ProgrammingLanguages = append(p.ProgrammingLanguages, NewSkill())
	case SectionLibraries:
		p.Libraries = append(p.Libraries, NewSkill())
	case SectionFrameworks:
		p.Frameworks = append(p.Frameworks, NewSkill())
	case SectionProjects:
		p.Projects = append(p.Projects, Project{})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	return nil
}

// Remove deletes the row at index from the given section.
// PRE: 0 <= index < Rows(section)
// POST: Rows(section) shrinks by one; other sections are unchanged
// INVARIANT: on error nothing is modified
func (p *Portfolio) Remove(section Section, index int) error {
	if _, ok := ParseSection(string(section)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if index < 0 || index >= p.Rows(section) {
		return fmt.Errorf("%w: %s[%d]", ErrRowOutOfRange, section, index)
	}
	switch section {
	case SectionLanguages:
		p.ProgrammingLanguages = removeAt(p.ProgrammingLanguages, index)
	case SectionLibraries:
		p.Libraries = removeAt(p.Libraries, index)
	case SectionFrameworks:
		p.Frameworks = removeAt(p.Frameworks, index)
	case SectionProjects:
		p.Projects = removeAt(p.Projects, index)
	}
	return nil
}

func removeAt[T any](rows []T, i int) []T {
	out := make([]T, 0, len(rows)-1)
	out = append(out, rows[:i]...)
	return append(out, rows[i+1:]...)
}

// Matches reports whether the search term occurs, case-insensitively, in the
// student's name, email, or any language, library or framework name.
// An empty term matches every student.
func (s Student) Matches(term string) bool {
	t := strings.ToLower(term)
	if strings.Contains(strings.ToLower(s.Name), t) || strings.Contains(strings.ToLower(s.Email), t) {
		return true
	}
	for _, group := range [][]Skill{s.ProgrammingLanguages, s.Libraries, s.Frameworks} {
		for _, sk := range group {
			if strings.Contains(strings.ToLower(sk.Name), t) {
				return true
			}
		}
	}
	return false
}

// SkillNames joins the names of a skill list for display.
func SkillNames(skills []Skill) string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}
