package commit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Person is the author or committer (or tagger) line of an object.
//
// Example: "John Doe <john@example.com> 1609459200 +0000"
type Person struct {
	Name  string
	Email string
	When  time.Time
}

var personPattern = regexp.MustCompile(`^(.*) <([^>]*)> (\d+) ([+-]\d{4})$`)

// NewPerson creates a Person with validation
func NewPerson(name, email string, when time.Time) (*Person, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email format: %q", email)
	}
	return &Person{Name: name, Email: email, When: when}, nil
}

// FormatForGit formats person information as "Name <email> timestamp timezone"
func (p *Person) FormatForGit() string {
	_, offset := p.When.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("%s <%s> %d %c%02d%02d",
		p.Name, p.Email, p.When.Unix(), sign, offset/3600, (offset%3600)/60)
}

// ParsePerson parses person information from Git's format.
// Real repositories contain odd names and emails, so only the shape is checked.
func ParsePerson(gitFormat string) (*Person, error) {
	m := personPattern.FindStringSubmatch(gitFormat)
	if m == nil {
		return nil, fmt.Errorf("invalid person format: %q", gitFormat)
	}

	ts, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}
	loc, err := parseTimezone(m[4])
	if err != nil {
		return nil, err
	}

	return &Person{Name: m[1], Email: m[2], When: time.Unix(ts, 0).In(loc)}, nil
}

func (p *Person) String() string {
	return fmt.Sprintf("%s <%s> at %s", p.Name, p.Email, p.When.Format(time.RFC3339))
}

// parseTimezone parses "+0530" or "-0800".
func parseTimezone(tz string) (*time.Location, error) {
	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q", tz)
	}
	minutes, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q", tz)
	}

	offset := hours*3600 + minutes*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset), nil
}
