package jobsearch

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/michaelprosario/career-catalyst/internal/models"
)

var (
	remotePattern = regexp.MustCompile(`(?i)\b(remote|wfh|work[- ]from[- ]home)\b`)
	salaryPattern = regexp.MustCompile(`\$(\d+(?:,\d{3})*(?:\.\d+)?)([kK])?\s*(?:-|to|\x{2013}|\x{2014})\s*\$?(\d+(?:,\d{3})*(?:\.\d+)?)([kK])?`)
	skillsPattern = regexp.MustCompile(`(?i)(?:tech stack|technologies|skills)\s*:\s*([^|\n]+)`)
	blankLines    = regexp.MustCompile(`\n\s*\n+`)
	spaces        = regexp.MustCompile(`[ \t]+`)
	dashes        = regexp.MustCompile(`[\x{2013}\x{2014}\x{2015}]`)
)

type skill struct {
	name    string
	pattern *regexp.Regexp
}

// knownSkills are picked out of free text as whole words.
var knownSkills = compileSkills(
	"python", "javascript", "typescript", "java", "golang", "ruby", "php", "rust",
	"react", "angular", "vue", "node", "django", "flask", "spring",
	"aws", "azure", "gcp", "kubernetes", "docker", "terraform",
	"sql", "mongodb", "postgresql", "mysql", "redis",
)

func compileSkills(names ...string) []skill {
	out := make([]skill, 0, len(names))
	for _, n := range names {
		out = append(out, skill{name: n, pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(n) + `\b`)})
	}
	return out
}

func normalizeText(text string) string {
	text = blankLines.ReplaceAllString(text, "\n\n")
	text = spaces.ReplaceAllString(text, " ")
	text = dashes.ReplaceAllString(text, "-")
	return strings.TrimSpace(text)
}

// looksRemote reports whether the location or description advertises remote
// work.
func looksRemote(p Posting) bool {
	return remotePattern.MatchString(p.Location) || remotePattern.MatchString(p.Description)
}

// extractSalary reads the first "$min - $max" range from text. Amounts with a
// k suffix are thousands; ranges are assumed yearly USD.
func extractSalary(text string) *models.SalaryRange {
	m := salaryPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	lo, ok := amount(m[1], m[2])
	if !ok {
		return nil
	}
	hi, ok := amount(m[3], m[4])
	if !ok {
		return nil
	}
	sr, err := models.NewSalaryRange(lo, hi, "USD", models.SalaryPeriodYearly)
	if err != nil {
		return nil
	}
	return &sr
}

func amount(digits, suffix string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if suffix != "" {
		f *= 1000
	}
	return f, true
}

// extractSkills returns the lowercased, de-duplicated skills named in text,
// explicit "skills:" entries first.
func extractSkills(text string) []string {
	var found []string
	if m := skillsPattern.FindStringSubmatch(text); m != nil {
		found = append(found, strings.Split(m[1], ",")...)
	}
	lower := strings.ToLower(text)
	for _, sk := range knownSkills {
		if sk.pattern.MatchString(lower) {
			found = append(found, sk.name)
		}
	}

	seen := make(map[string]bool)
	out := []string{}
	for _, s := range found {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
