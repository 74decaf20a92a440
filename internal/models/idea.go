package models

// Difficulty grades how demanding an idea is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Idea is one art suggestion shown to the user.
type Idea struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
	Materials   []string   `json:"materials"`
	Inspiration string     `json:"inspiration"`
}

// Clone returns a copy that does not share the materials slice.
func (i Idea) Clone() Idea {
	c := i
	if i.Materials != nil {
		c.Materials = append([]string(nil), i.Materials...)
	}
	return c
}

// CloneIdeas deep-copies a list of ideas, preserving nil.
func CloneIdeas(ideas []Idea) []Idea {
	if ideas == nil {
		return nil
	}
	out := make([]Idea, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.Clone()
	}
	return out
}
