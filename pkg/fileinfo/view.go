package fileinfo

import "sort"

// Flatten reduces records to the sorted values of one field.
func Flatten(field string, records []PathRecord) []string {
	values := make([]string, 0, len(records))
	for _, record := range records {
		values = append(values, record.Field(field))
	}
	sort.Strings(values)
	return values
}

// ReduceBy groups records by keyField and collects each group's valueField
// values, deduplicated, in first-seen order.
func ReduceBy(keyField, valueField string, records []PathRecord) map[string][]string {
	grouped := make(map[string][]string)
	for _, record := range records {
		key := record.Field(keyField)
		value := record.Field(valueField)
		if contains(grouped[key], value) {
			continue
		}
		grouped[key] = append(grouped[key], value)
	}
	return grouped
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
