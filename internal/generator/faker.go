package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

// ColumnSpec declares one generated column of a model file entity.
type ColumnSpec struct {
	Name string `yaml:"name"`
	// Type is a SQL-ish type name (int, varchar(40), timestamp, ...).
	Type string `yaml:"type"`
	// Faker forces a value kind (email, name, ...) regardless of Name.
	Faker string `yaml:"faker"`
	// Values, when set, are picked uniformly.
	Values   []any    `yaml:"values"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	Nullable bool     `yaml:"nullable"`
}

var fakerKinds = []string{
	"email", "name", "title", "sentence", "word", "url", "phone", "address",
	"uuid", "int", "float", "bool", "timestamp", "date",
}

// Faker produces rows of plausible values from column names and types.
type Faker struct {
	columns []ColumnSpec
	counter int
}

func NewFaker(cols []ColumnSpec) (*Faker, error) {
	if len(cols) == 0 {
		return nil, apperrors.Configf("columns must not be empty")
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c.Name == "" {
			return nil, apperrors.Configf("column name is required")
		}
		if seen[c.Name] {
			return nil, apperrors.Configf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if c.Faker != "" && !isFakerKind(c.Faker) {
			return nil, apperrors.Configf("column %q: unknown faker %q", c.Name, c.Faker)
		}
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			return nil, apperrors.Configf("column %q: min %v is greater than max %v", c.Name, *c.Min, *c.Max)
		}
	}
	return &Faker{columns: cols}, nil
}

// Columns returns the declared column names in order.
func (f *Faker) Columns() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

// Row is a naive generator function.
func (f *Faker) Row(rc *RowContext) (types.Row, error) {
	row := make(types.Row, len(f.columns))
	for _, c := range f.columns {
		row[c.Name] = f.value(rc.Rand, c)
	}
	return row, nil
}

func (f *Faker) value(rng *rand.Rand, c ColumnSpec) any {
	if c.Nullable && rng.Intn(10) < 2 {
		return nil
	}
	if len(c.Values) > 0 {
		return c.Values[rng.Intn(len(c.Values))]
	}
	if c.Faker != "" {
		return f.byKind(rng, strings.ToLower(c.Faker), c)
	}

	// Check column name first for context-aware generation
	colLower := strings.ToLower(c.Name)
	switch {
	case strings.Contains(colLower, "email"):
		return f.email(rng)
	case strings.Contains(colLower, "name") && !strings.Contains(colLower, "file") && !strings.Contains(colLower, "user"):
		return fullName(rng)
	case strings.Contains(colLower, "title"):
		return pick(rng, titles)
	case strings.Contains(colLower, "description") || strings.Contains(colLower, "content"):
		return pick(rng, sentences)
	case strings.Contains(colLower, "url") || strings.Contains(colLower, "link"):
		return fmt.Sprintf("https://example.com/page/%d", rng.Intn(1000))
	case strings.Contains(colLower, "phone"):
		return phone(rng)
	case strings.Contains(colLower, "address"):
		return address(rng)
	}

	return f.byType(rng, c)
}

func (f *Faker) byKind(rng *rand.Rand, kind string, c ColumnSpec) any {
	switch kind {
	case "email":
		return f.email(rng)
	case "name":
		return fullName(rng)
	case "title":
		return pick(rng, titles)
	case "sentence":
		return pick(rng, sentences)
	case "word":
		return pick(rng, words)
	case "url":
		return fmt.Sprintf("https://example.com/page/%d", rng.Intn(1000))
	case "phone":
		return phone(rng)
	case "address":
		return address(rng)
	case "uuid":
		return uuidString(rng)
	case "int":
		return intBetween(rng, c, 1, 1000000)
	case "float":
		return floatBetween(rng, c, 0, 10000)
	case "bool":
		return rng.Intn(2) == 1
	case "timestamp":
		return timestamp(rng)
	default: // date
		return timestamp(rng).Format("2006-01-02")
	}
}

func (f *Faker) byType(rng *rand.Rand, c ColumnSpec) any {
	typeUpper := strings.ToUpper(c.Type)

	// Extract base type (e.g., VARCHAR(255) -> VARCHAR)
	if idx := strings.Index(typeUpper, "("); idx > 0 {
		typeUpper = typeUpper[:idx]
	}

	switch {
	case strings.Contains(typeUpper, "INT") || strings.Contains(typeUpper, "SERIAL"):
		return intBetween(rng, c, 1, 1000000)
	case strings.Contains(typeUpper, "BOOL"):
		return rng.Intn(2) == 1
	case strings.Contains(typeUpper, "TIMESTAMP") || strings.Contains(typeUpper, "DATETIME"):
		return timestamp(rng)
	case strings.Contains(typeUpper, "DATE"):
		return timestamp(rng).Format("2006-01-02")
	case strings.Contains(typeUpper, "DECIMAL") || strings.Contains(typeUpper, "NUMERIC") ||
		strings.Contains(typeUpper, "FLOAT") || strings.Contains(typeUpper, "DOUBLE") ||
		strings.Contains(typeUpper, "REAL"):
		return floatBetween(rng, c, 0, 10000)
	case strings.Contains(typeUpper, "UUID"):
		return uuidString(rng)
	case strings.Contains(typeUpper, "JSON"):
		return `{"generated": true}`
	default:
		return pick(rng, words)
	}
}

func (f *Faker) email(rng *rand.Rand) string {
	f.counter++
	domains := []string{"example.com", "test.com", "demo.com", "mail.com"}
	return fmt.Sprintf("user%d_%d@%s", f.counter, rng.Intn(100000), pick(rng, domains))
}

var (
	firstNames = []string{"John", "Jane", "Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}
	titles     = []string{
		"Getting Started with Go",
		"Understanding Databases",
		"Introduction to APIs",
		"Modern Software Architecture",
		"Cloud Computing Basics",
		"Data Structures and Algorithms",
	}
	sentences = []string{
		"This is a sample text generated for testing purposes.",
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
		"The quick brown fox jumps over the lazy dog.",
		"Database design is crucial for application performance.",
	}
	words = []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
)

func pick[T any](rng *rand.Rand, xs []T) T {
	return xs[rng.Intn(len(xs))]
}

func fullName(rng *rand.Rand) string {
	return pick(rng, firstNames) + " " + pick(rng, lastNames)
}

func phone(rng *rand.Rand) string {
	return fmt.Sprintf("+1-%03d-%03d-%04d", rng.Intn(1000), rng.Intn(1000), rng.Intn(10000))
}

func address(rng *rand.Rand) string {
	return fmt.Sprintf("%d Main Street, City, State %05d", rng.Intn(9999)+1, rng.Intn(100000))
}

// timestamp stays within 2015-2020 so seeded runs do not depend on the clock.
func timestamp(rng *rand.Rand) time.Time {
	span := DefaultMaxValidFrom.Sub(DefaultMinValidFrom)
	return DefaultMinValidFrom.Add(time.Duration(rng.Int63n(int64(span)))).Truncate(time.Second)
}

// uuidString draws a version 4 UUID from rng so seeded runs repeat.
func uuidString(rng *rand.Rand) string {
	return uuid.Must(uuid.NewRandomFromReader(rng)).String()
}

func intBetween(rng *rand.Rand, c ColumnSpec, lo, hi int) int {
	if c.Min != nil {
		lo = int(*c.Min)
	}
	if c.Max != nil {
		hi = int(*c.Max)
	}
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

func floatBetween(rng *rand.Rand, c ColumnSpec, lo, hi float64) float64 {
	if c.Min != nil {
		lo = *c.Min
	}
	if c.Max != nil {
		hi = *c.Max
	}
	return lo + rng.Float64()*(hi-lo)
}

func isFakerKind(k string) bool {
	k = strings.ToLower(k)
	for _, known := range fakerKinds {
		if k == known {
			return true
		}
	}
	return false
}
