package network

import (
	"regexp"
	"strconv"
)

var digitRun = regexp.MustCompile(`\d+`)

// ExtractCableNumbers returns every run of decimal digits in a free-text
// cable ID, in order. "8 P-3 3M" yields [8 3 3]. Runs too large for an int
// are skipped.
func ExtractCableNumbers(cableID string) []int {
	runs := digitRun.FindAllString(cableID, -1)
	nums := make([]int, 0, len(runs))
	for _, r := range runs {
		n, err := strconv.Atoi(r)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

// nextCableNumber is one above the largest number found in ids, or 1.
func nextCableNumber(ids []*string) int {
	highest := 0
	for _, id := range ids {
		if id == nil {
			continue
		}
		for _, n := range ExtractCableNumbers(*id) {
			if n > highest {
				highest = n
			}
		}
	}
	return highest + 1
}
