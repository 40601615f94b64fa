package datasets

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	tablePrefix  = "tb"
	columnPrefix = "cl"
)

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	disallowed = regexp.MustCompile(`[^a-zA-Z0-9 _]+`)
)

// sqliteKeywords holds the identifiers that need renaming when used as
// table or column names. Source: https://sqlite.org/lang_keywords.html
var sqliteKeywords = func() map[string]struct{} {
	const words = `abort action add after all alter always analyze and as asc attach
		autoincrement before begin between by cascade case cast check collate column
		commit conflict constraint create cross current current_date current_time
		current_timestamp database default deferrable deferred delete desc detach
		distinct do drop each else end escape except exclude exclusive exists explain
		fail filter first following for foreign from full generated glob group groups
		having if ignore immediate in index indexed initially inner insert instead
		intersect into is isnull join key last left like limit match materialized
		natural no not nothing notnull null nulls of offset on or order others outer
		over partition plan pragma preceding primary query raise range recursive
		references regexp reindex release rename replace restrict returning right
		rollback row rows savepoint select set table temp temporary then ties to
		transaction trigger unbounded union unique update using vacuum values view
		virtual when where window with without`
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}()

// CompliantNames turns raw headers or sheet names into identifiers SQLite
// accepts: lower snake case, disallowed characters stripped, keywords and
// leading digits dodged, duplicates suffixed. A name that sanitizes to
// nothing becomes {prefix}{idx}.
func CompliantNames(rawnames []string, prefix string) []string {
	out := make([]string, len(rawnames))
	counter := map[string]int{}
	for idx, item := range rawnames {
		item = strings.TrimSpace(item)
		item = disallowed.ReplaceAllString(item, "")
		item = spaceRun.ReplaceAllString(item, "_")
		item = strings.ToLower(item)

		if _, kw := sqliteKeywords[item]; kw {
			item = fmt.Sprintf("%s%d", prefix, idx)
		}
		if len(item) == 0 {
			out[idx] = fmt.Sprintf("%s%d", prefix, idx)
			continue
		}
		if item[0] >= '0' && item[0] <= '9' {
			item = fmt.Sprintf("%s%d%s", prefix, idx, item)
		}

		counter[item]++
		if counter[item] == 1 {
			out[idx] = item
		} else {
			out[idx] = fmt.Sprintf("%s%d", item, counter[item])
		}
	}
	return out
}

// ColumnNames sanitizes raw headers into SQL column names.
// Junk headers come back as cl0, cl1, cl2, ...
func ColumnNames(rawheaders []string) []string {
	return CompliantNames(rawheaders, columnPrefix)
}

// TableNames sanitizes raw table names. Junk names come back as tb0, tb1, ...
func TableNames(rawtables []string) []string {
	return CompliantNames(rawtables, tablePrefix)
}
