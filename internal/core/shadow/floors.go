package shadow

// The cadastre encodes above-ground floor counts as Roman numerals inside
// the construction-type string: "III" is three floors, "-I+IV" is one
// basement level plus four floors. Tokens prefixed with '-' are below grade
// and do not occlude sky, so they are ignored. Floor encodings never exceed
// a few tens, so only the digits I, V and X are recognized; this keeps
// incidental letters in non-numeric codes ("SUELO", "CO") from misparsing.

var floorDigits = map[rune]int{'I': 1, 'V': 5, 'X': 10}

// ParseFloorCount extracts the above-ground floor count from a cadastral
// construction-type string. Records with a missing or unparsable encoding
// default to a single floor rather than failing the building.
func ParseFloorCount(constru string) int {
	best := 0
	token := make([]rune, 0, 8)
	belowGrade := false

	flush := func() {
		if len(token) > 0 && !belowGrade {
			if v, ok := parseRoman(token); ok && v > best {
				best = v
			}
		}
		token = token[:0]
		belowGrade = false
	}

	for _, r := range constru {
		if _, ok := floorDigits[r]; ok {
			token = append(token, r)
			continue
		}
		flush()
		belowGrade = r == '-'
	}
	flush()

	if best == 0 {
		return 1
	}
	return best
}

// parseRoman evaluates a Roman numeral with the usual subtractive rule.
func parseRoman(token []rune) (int, bool) {
	total := 0
	for i, r := range token {
		v := floorDigits[r]
		if i+1 < len(token) && floorDigits[token[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}
