// Package skills holds the skill relevance table used for related-skill credit.
//
// A Table is built once and is read-only afterwards, so a single instance can
// be shared by concurrent scorers without locking.
package skills

import (
	"fmt"

	"github.com/okian/skillmatch/internal/domain/model"
)

// ExactCredit is the credit an exact skill match earns. Related credit must
// stay strictly below it.
const ExactCredit = 100

// Relation is one directed "related skill" edge with its partial credit.
type Relation struct {
	Skill  string `koanf:"skill" json:"skill" yaml:"skill"`
	Credit int    `koanf:"credit" json:"credit" yaml:"credit"`
}

// Entry lists the skills related to Skill. Relations are directional: an entry
// for "react" says nothing about what "javascript" relates to.
type Entry struct {
	Skill   string     `koanf:"skill" json:"skill" yaml:"skill"`
	Related []Relation `koanf:"related" json:"related" yaml:"related"`
}

// Table is an immutable lookup from required skill to related skills.
type Table struct {
	credits map[model.SkillName]map[model.SkillName]int
	ordered map[model.SkillName][]Relation
}

// NewTable validates entries and builds a Table. Entries naming the same skill
// are merged in order; a related skill listed twice under one skill is an error.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		credits: make(map[model.SkillName]map[model.SkillName]int, len(entries)),
		ordered: make(map[model.SkillName][]Relation, len(entries)),
	}
	for i, e := range entries {
		from := model.NormalizeSkill(e.Skill)
		if from == "" {
			return nil, fmt.Errorf("%w: entry %d has a blank skill", ErrInvalidRelation, i)
		}
		row := t.credits[from]
		for _, r := range e.Related {
			to := model.NormalizeSkill(r.Skill)
			switch {
			case to == "":
				return nil, fmt.Errorf("%w: %q lists a blank related skill", ErrInvalidRelation, from)
			case to == from:
				return nil, fmt.Errorf("%w: %q relates to itself", ErrInvalidRelation, from)
			case r.Credit < 0 || r.Credit >= ExactCredit:
				return nil, fmt.Errorf("%w: %q -> %q credit %d outside [0,%d)", ErrInvalidRelation, from, to, r.Credit, ExactCredit)
			}
			if _, dup := row[to]; dup {
				return nil, fmt.Errorf("%w: %q -> %q", ErrDuplicateRelation, from, to)
			}
			if row == nil {
				row = make(map[model.SkillName]int, len(e.Related))
				t.credits[from] = row
			}
			row[to] = r.Credit
			t.ordered[from] = append(t.ordered[from], Relation{Skill: string(to), Credit: r.Credit})
		}
	}
	return t, nil
}

// Empty returns a table with no relations.
func Empty() *Table {
	t, _ := NewTable(nil)
	return t
}

// RelatedCreditFor returns the credit configured for possessing `possessed`
// when `required` is asked for, or 0 when no relation exists.
func (t *Table) RelatedCreditFor(required, possessed string) int {
	return t.credit(model.NormalizeSkill(required), model.NormalizeSkill(possessed))
}

// Credit is RelatedCreditFor for already-normalized names.
func (t *Table) Credit(required, possessed model.SkillName) int {
	return t.credit(required, possessed)
}

func (t *Table) credit(required, possessed model.SkillName) int {
	if t == nil {
		return 0
	}
	return t.credits[required][possessed]
}

// Related returns a copy of the relations configured for skill, in load order.
func (t *Table) Related(skill string) []Relation {
	if t == nil {
		return nil
	}
	rel := t.ordered[model.NormalizeSkill(skill)]
	out := make([]Relation, len(rel))
	copy(out, rel)
	return out
}

// Len returns the number of skills that have at least one relation entry.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.credits)
}
