package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// ExpandICD10Range expands an ICD-10 range expression such as "A00-A09",
// "H01.021-H01.029", or "H02.121-129" into its enumerated constituent
// codes plus the three-character parent category.
//
// The range's right-hand side may omit the shared prefix (e.g.
// "H02.121-129" means H02.121 through H02.129): the expression is split on
// '-', and if the right side does not look like a full code it is treated
// as the tail of the left side of matching width.
func ExpandICD10Range(rangeExpr string) ([]string, error) {
	parts := strings.SplitN(rangeExpr, "-", 2)
	if len(parts) != 2 {
		// Not a range at all; treat as a single literal code.
		return []string{rangeExpr}, nil
	}
	lo, hiRaw := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	hi := hiRaw
	if len(hiRaw) < len(lo) {
		// "H02.121-129" style: hi is the tail, reuse lo's prefix.
		hi = lo[:len(lo)-len(hiRaw)] + hiRaw
	}

	codes, err := enumerateICD10(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("expand ICD-10 range %q: %w", rangeExpr, err)
	}

	parent := icd10Parent(lo)
	if parent != "" && !containsCode(codes, parent) {
		codes = append(codes, parent)
	}
	return codes, nil
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// AliasICD10 expands an ICD-10 code or range expression and aliases every
// constituent onto an already-interned entity; for a range expression the
// three-character parent is aliased as well, while a single code is aliased
// as written. Ranges are pre-normalized here at ingest so later lookups only
// ever see enumerated codes.
func (r *Registry) AliasICD10(expr string, idx EntityIndex) error {
	codes, err := ExpandICD10Range(expr)
	if err != nil {
		return err
	}
	for _, code := range codes {
		if err := r.Alias(NamespaceICD10, code, idx); err != nil {
			return err
		}
	}
	return nil
}

// icd10Parent returns the three-character category parent of a code, e.g.
// "H01.021" -> "H01", "A05" -> "A05" (already a parent), "" if malformed.
func icd10Parent(code string) string {
	if len(code) < 3 {
		return ""
	}
	return code[:3]
}

// icd10Split splits a code into its letter+2-digit category and an
// optional numeric subdivision after '.', e.g. "H01.021" -> ("H01", 21, 3).
func icd10Split(code string) (category string, frac int, fracWidth int, ok bool) {
	if len(code) < 3 {
		return "", 0, 0, false
	}
	category = code[:3]
	if len(code) == 3 {
		return category, -1, 0, true
	}
	if code[3] != '.' {
		return "", 0, 0, false
	}
	fracStr := code[4:]
	if fracStr == "" {
		return category, -1, 0, true
	}
	n, err := strconv.Atoi(fracStr)
	if err != nil {
		return "", 0, 0, false
	}
	return category, n, len(fracStr), true
}

// enumerateICD10 enumerates codes from lo to hi inclusive. It supports two
// shapes: same three-character category with numeric subdivisions
// (H01.021-H01.029), or a span of bare categories (A00-A09) where the
// middle two digits are incremented.
func enumerateICD10(lo, hi string) ([]string, error) {
	loCat, loFrac, loWidth, loOK := icd10Split(lo)
	hiCat, hiFrac, _, hiOK := icd10Split(hi)
	if !loOK || !hiOK {
		return nil, fmt.Errorf("malformed ICD-10 code in range %q-%q", lo, hi)
	}

	if loCat == hiCat {
		if loFrac < 0 || hiFrac < 0 {
			return []string{lo}, nil
		}
		var codes []string
		for n := loFrac; n <= hiFrac; n++ {
			codes = append(codes, fmt.Sprintf("%s.%0*d", loCat, loWidth, n))
		}
		return codes, nil
	}

	// Bare category span, e.g. A00-A09: increment the numeric suffix of
	// the category letter+digits.
	if len(loCat) != 3 || len(hiCat) != 3 || loCat[0] != hiCat[0] {
		return nil, fmt.Errorf("unsupported ICD-10 range shape %q-%q", lo, hi)
	}
	letter := loCat[0]
	loNum, err1 := strconv.Atoi(loCat[1:])
	hiNum, err2 := strconv.Atoi(hiCat[1:])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("unsupported ICD-10 range shape %q-%q", lo, hi)
	}
	var codes []string
	for n := loNum; n <= hiNum; n++ {
		codes = append(codes, fmt.Sprintf("%c%02d", letter, n))
	}
	return codes, nil
}
