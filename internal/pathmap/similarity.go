package pathmap

import (
	"path"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	productWeight      = 0.3
	featureWeight      = 0.15
	modelWeight        = 0.2
	editWeight         = 0.2
	highEditSimilarity = 0.7
)

var digitsPattern = regexp.MustCompile(`\d+`)

// Similarity is a composite filename score in [0, 1] with the signals that produced it.
type Similarity struct {
	Score   float64
	Reasons []string
}

// Scorer compares a missing filename against an existing one.
type Scorer func(target, existing string) Similarity

// KeywordScorer builds the default scorer. Each shared signal adds weight:
// the first shared product keyword 0.3, every shared feature keyword 0.15,
// every shared model number 0.2, plus 0.2 times the normalized edit
// similarity of the bare names. Identical filenames score exactly 1.
func KeywordScorer(products, features []string) Scorer {
	products = lowerAll(products)
	features = lowerAll(features)

	return func(target, existing string) Similarity {
		target = strings.ToLower(target)
		existing = strings.ToLower(existing)
		if target == existing {
			return Similarity{Score: 1, Reasons: []string{"exact_match"}}
		}

		a, b := bareName(target), bareName(existing)
		var (
			score   float64
			reasons []string
		)

		for _, k := range products {
			if strings.Contains(a, k) && strings.Contains(b, k) {
				score += productWeight
				reasons = append(reasons, "product_match_"+k)
				break
			}
		}

		for _, k := range features {
			if strings.Contains(a, k) && strings.Contains(b, k) {
				score += featureWeight
				reasons = append(reasons, "feature_match_"+k)
			}
		}

		if common := commonNumbers(a, b); len(common) > 0 {
			score += modelWeight * float64(len(common))
			reasons = append(reasons, "model_match_"+strings.Join(common, "_"))
		}

		if sim := editSimilarity(a, b); sim > 0 {
			score += sim * editWeight
			if sim > highEditSimilarity {
				reasons = append(reasons, "high_string_similarity")
			}
		}

		return Similarity{Score: min(score, 1), Reasons: reasons}
	}
}

// commonNumbers lists the digit runs of a, in order, that also occur in b.
func commonNumbers(a, b string) []string {
	theirs := make(map[string]bool)
	for _, n := range digitsPattern.FindAllString(b, -1) {
		theirs[n] = true
	}

	var out []string
	for _, n := range digitsPattern.FindAllString(a, -1) {
		if theirs[n] {
			out = append(out, n)
		}
	}
	return out
}

func editSimilarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func bareName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
