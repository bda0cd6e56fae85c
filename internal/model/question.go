package model

import (
	"strings"
	"time"
)

// Question is stored once per category table. Category is not a column; the
// repository fills it from the table the row was read from.
type Question struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Question   string    `gorm:"type:text;not null" json:"question"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	Example    *string   `gorm:"type:text" json:"example,omitempty"`
	Difficulty int       `gorm:"not null;default:1" json:"difficulty"`
	Keywords   string    `gorm:"size:255" json:"keywords"`
	Category   Category  `gorm:"-" json:"category"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (q *Question) ExampleText() string {
	if q.Example == nil {
		return ""
	}
	return *q.Example
}

// KeywordList splits the stored comma-separated keywords, dropping blanks.
func (q *Question) KeywordList() []string {
	return SplitKeywords(q.Keywords)
}

func SplitKeywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
