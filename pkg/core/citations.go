package core

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var extensionRe = regexp.MustCompile(`\.[^/.]+$`)

// GroupCitations reshapes the semicolon-delimited citation string the LLM
// endpoints return ("[LO.txt, 12]; [LO.txt, 5]; [DAC.md, 3]") into a
// per-source listing ("LO: 5, 12 ; DAC: 3"): file extensions stripped,
// pages deduplicated and ascending within a source, sources kept in
// first-seen order. Malformed entries degrade to page 0; the function
// never fails.
func GroupCitations(raw string) string {
	cleaned := strings.NewReplacer("[", "", "]", "").Replace(raw)
	if strings.TrimSpace(cleaned) == "" {
		return ""
	}

	var order []string
	pages := make(map[string]map[int]struct{})

	for _, pair := range strings.Split(cleaned, ";") {
		source, pageStr, _ := strings.Cut(pair, ",")
		source = extensionRe.ReplaceAllString(strings.TrimSpace(source), "")
		if source == "" {
			continue
		}
		page := 0
		if n, err := strconv.Atoi(strings.TrimSpace(pageStr)); err == nil {
			page = n
		}
		if _, seen := pages[source]; !seen {
			pages[source] = make(map[int]struct{})
			order = append(order, source)
		}
		pages[source][page] = struct{}{}
	}

	parts := make([]string, 0, len(order))
	for _, source := range order {
		nums := make([]int, 0, len(pages[source]))
		for p := range pages[source] {
			nums = append(nums, p)
		}
		sort.Ints(nums)
		strs := make([]string, len(nums))
		for i, p := range nums {
			strs[i] = strconv.Itoa(p)
		}
		parts = append(parts, source+": "+strings.Join(strs, ", "))
	}
	return strings.Join(parts, " ; ")
}
