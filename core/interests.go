// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"slices"
	"strings"
)

// Scraped listings separate interests with bullets, and some files carry the
// bullets double-encoded as the sequences below.
var interestMojibake = strings.NewReplacer("‚óè", ",", "‚Ä¢", ",")

const interestDelimiters = "●•,|"

func isInterestDelimiter(r rune) bool {
	return strings.ContainsRune(interestDelimiters, r)
}

// SplitInterests splits a research interest string into its items.
// Empty fragments are discarded and delimiter characters left on fragment
// edges are trimmed along with whitespace.
func SplitInterests(s string) []string {
	s = interestMojibake.Replace(s)
	parts := strings.FieldsFunc(s, isInterestDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), interestDelimiters))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MergeInterests unions the items of both interest strings and returns them
// sorted and joined with ", ". Duplicate detection is case-sensitive.
func MergeInterests(a, b string) string {
	items := append(SplitInterests(a), SplitInterests(b)...)
	return joinSortedUnique(items, ", ")
}

// DepartmentSeparator joins the departments of a cross-listed person.
const DepartmentSeparator = " | "

// SplitDepartments splits a " | " separated department list, dropping empties.
func SplitDepartments(s string) []string {
	var out []string
	for _, p := range strings.Split(s, DepartmentSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MergeDepartments unions both department lists, sorted and joined with " | ".
func MergeDepartments(a, b string) string {
	items := append(SplitDepartments(a), SplitDepartments(b)...)
	return joinSortedUnique(items, DepartmentSeparator)
}

// NormalizeInterest returns the text used to group records under one tag.
// Escaped commas are unescaped and empty interests map to NoInterestsSentinel.
func NormalizeInterest(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, `\,`, ","))
	if s == "" {
		return NoInterestsSentinel
	}
	return s
}

func joinSortedUnique(items []string, sep string) string {
	slices.Sort(items)
	return strings.Join(slices.Compact(items), sep)
}
