package document

import (
	"encoding/json"
	"fmt"
)

// Validate checks the structure of a raw plan document without building a
// plan from it. It accepts both the unified items shape and the legacy
// locations/notes shape; an item with an unknown type rejects the whole
// document. The returned error wraps ErrInvalidDocument and names the first
// offending path.
func Validate(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := validatePlan(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

func validatePlan(raw any) error {
	obj, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("document must be an object")
	}
	days, ok := obj["days"].([]any)
	if !ok {
		return fmt.Errorf("days must be an array")
	}
	for i, d := range days {
		if err := validateDay(d); err != nil {
			return fmt.Errorf("days[%d]: %v", i, err)
		}
	}
	return nil
}

func validateDay(raw any) error {
	day, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("day must be an object")
	}
	for _, key := range []string{"id", "number", "date"} {
		if _, ok := day[key]; !ok {
			return fmt.Errorf("missing %s", key)
		}
	}

	rawLocations, hasLegacy := day["locations"]
	rawItems, hasItems := day["items"]
	if !hasLegacy && !hasItems {
		return fmt.Errorf("missing items")
	}

	if hasLegacy {
		locations, ok := rawLocations.([]any)
		if !ok {
			return fmt.Errorf("locations must be an array")
		}
		for i, l := range locations {
			if err := validateLocation(l); err != nil {
				return fmt.Errorf("locations[%d]: %v", i, err)
			}
		}
		if rawNotes, ok := day["notes"]; ok {
			notes, ok := rawNotes.([]any)
			if !ok {
				return fmt.Errorf("notes must be an array")
			}
			for i, n := range notes {
				if err := validateNote(n); err != nil {
					return fmt.Errorf("notes[%d]: %v", i, err)
				}
			}
		}
	}

	if hasItems {
		items, ok := rawItems.([]any)
		if !ok {
			return fmt.Errorf("items must be an array")
		}
		for i, it := range items {
			if err := validateItem(it); err != nil {
				return fmt.Errorf("items[%d]: %v", i, err)
			}
		}
	}
	return nil
}

func validateItem(raw any) error {
	item, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("item must be an object")
	}
	if err := requireKeys(item, "type", "id"); err != nil {
		return err
	}
	switch item["type"] {
	case "location":
		return validateLocation(item)
	case "note":
		return validateNote(item)
	case "travel":
		return requireKeys(item, "id", "transport")
	default:
		return fmt.Errorf("unknown item type %v", item["type"])
	}
}

func validateLocation(raw any) error {
	loc, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("location must be an object")
	}
	if err := requireKeys(loc, "id", "name", "lat", "lng"); err != nil {
		return err
	}
	if _, ok := loc["lat"].(float64); !ok {
		return fmt.Errorf("lat must be a number")
	}
	if _, ok := loc["lng"].(float64); !ok {
		return fmt.Errorf("lng must be a number")
	}
	return nil
}

func validateNote(raw any) error {
	note, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("note must be an object")
	}
	return requireKeys(note, "id", "content", "timestamp")
}

func requireKeys(obj map[string]any, keys ...string) error {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return fmt.Errorf("missing %s", k)
		}
	}
	return nil
}
