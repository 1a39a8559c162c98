package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kolah/specir/internal/ir"
	"github.com/kolah/specir/internal/naming"
)

// enumUsage records one place an enum value set appears in the document.
type enumUsage struct {
	fieldName string
	owner     string
	values    []any
	valuesKey string
	desc      string
}

// buildEnumCatalog collects every enum value set reachable from the schema
// components and assigns each distinct set a canonical name. Naming uses the
// most common field name across usages; when two different value sets would
// take the same name, the later one gets a suffix derived from its values.
func buildEnumCatalog(doc *ir.Document) []ir.EnumEntry {
	var usages []enumUsage

	for _, sc := range doc.SchemaComponents() {
		walkEnums(sc.Schema, sc.Name, sc.Name, func(u enumUsage) {
			usages = append(usages, u)
		})
	}

	groups := make(map[string][]enumUsage)
	for _, u := range usages {
		groups[u.valuesKey] = append(groups[u.valuesKey], u)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	nameToKey := make(map[string]string)
	var entries []ir.EnumEntry
	for _, key := range keys {
		group := groups[key]
		name := canonicalEnumName(group, key, nameToKey)
		nameToKey[name] = key

		first := group[0]
		desc := first.desc
		for _, u := range group {
			if u.desc != "" {
				desc = u.desc
				break
			}
		}
		entries = append(entries, ir.EnumEntry{
			Name:        name,
			Values:      first.values,
			Description: desc,
			Schema:      first.owner,
		})
	}

	return entries
}

// walkEnums visits s and its inline subschemas. Ref nodes stop the walk; the
// referenced component is walked under its own name.
func walkEnums(s *ir.Schema, fieldName, owner string, visit func(enumUsage)) {
	if s == nil || s.Ref != "" {
		return
	}
	if len(s.Enum) > 0 {
		visit(enumUsage{
			fieldName: fieldName,
			owner:     owner,
			values:    s.Enum,
			valuesKey: enumValuesKey(s.Enum),
			desc:      s.Description,
		})
	}
	for _, p := range s.Properties {
		walkEnums(p.Schema, p.Name, owner, visit)
	}
	walkEnums(s.Items, fieldName, owner, visit)
	for _, t := range s.TupleItems {
		walkEnums(t, fieldName, owner, visit)
	}
	walkEnums(s.AdditionalProperties, fieldName, owner, visit)
	for _, b := range s.AllOf {
		walkEnums(b, fieldName, owner, visit)
	}
	for _, b := range s.OneOf {
		walkEnums(b, fieldName, owner, visit)
	}
	for _, b := range s.AnyOf {
		walkEnums(b, fieldName, owner, visit)
	}
	walkEnums(s.Not, fieldName, owner, visit)
}

func canonicalEnumName(group []enumUsage, valuesKey string, nameToKey map[string]string) string {
	fieldCounts := make(map[string]int)
	for _, u := range group {
		fieldCounts[u.fieldName]++
	}

	var bestField string
	var bestCount int
	for field, count := range fieldCounts {
		if count > bestCount || (count == bestCount && field < bestField) {
			bestField = field
			bestCount = count
		}
	}

	base := naming.PascalCase(bestField)
	if existing, taken := nameToKey[base]; !taken || existing == valuesKey {
		return base
	}
	return base + enumValueSuffix(group[0].values)
}

func enumValuesKey(values []any) string {
	strs := make([]string, 0, len(values))
	for _, v := range values {
		strs = append(strs, fmt.Sprintf("%v", v))
	}
	sort.Strings(strs)
	return strings.Join(strs, "|")
}

func enumValueSuffix(values []any) string {
	if len(values) == 0 {
		return ""
	}
	strs := make([]string, 0, len(values))
	for _, v := range values {
		strs = append(strs, fmt.Sprintf("%v", v))
	}
	sort.Strings(strs)
	if len(strs) >= 2 {
		return naming.PascalCase(strs[0]) + naming.PascalCase(strs[1])
	}
	return naming.PascalCase(strs[0])
}
