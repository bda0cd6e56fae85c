package model

import (
	"fmt"
	"strings"
)

// Category is one of the nine fixed question banks. Each bank lives in its own table
// sharing the Question schema.
type Category string

const (
	CategoryOS        Category = "os"
	CategoryDB        Category = "db"
	CategoryNetwork   Category = "network"
	CategoryAlgorithm Category = "algorithm"
	CategoryProgram   Category = "program"
	CategoryAppTest   Category = "app_test"
	CategoryAppDefect Category = "app_defect"
	CategoryBaseSQL   Category = "base_sql"
	CategoryHardSQL   Category = "hard_sql"
)

// Categories is the declaration order used for even splits and remainder placement.
var Categories = []Category{
	CategoryOS,
	CategoryDB,
	CategoryNetwork,
	CategoryAlgorithm,
	CategoryProgram,
	CategoryAppTest,
	CategoryAppDefect,
	CategoryBaseSQL,
	CategoryHardSQL,
}

var categoryTables = map[Category]string{
	CategoryOS:        "os_questions",
	CategoryDB:        "db_questions",
	CategoryNetwork:   "network_questions",
	CategoryAlgorithm: "algorithm_questions",
	CategoryProgram:   "program_questions",
	CategoryAppTest:   "app_test_questions",
	CategoryAppDefect: "app_defect_questions",
	CategoryBaseSQL:   "base_sql_questions",
	CategoryHardSQL:   "hard_sql_questions",
}

func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unsupported category: %q", raw)
	}
	return c, nil
}

func (c Category) Valid() bool {
	_, ok := categoryTables[c]
	return ok
}

// Table is the backing table name. It panics on an invalid category, which callers
// rule out by parsing first.
func (c Category) Table() string {
	t, ok := categoryTables[c]
	if !ok {
		panic(fmt.Sprintf("model: no table for category %q", string(c)))
	}
	return t
}

func (c Category) String() string { return string(c) }

// CategoryFromID infers the category from the conventional "<category>-<n>" id prefix.
func CategoryFromID(id string) (Category, bool) {
	prefix, _, found := strings.Cut(id, "-")
	if !found || prefix == "" {
		return "", false
	}
	c := Category(prefix)
	return c, c.Valid()
}

func CategoryStrings() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = string(c)
	}
	return out
}
