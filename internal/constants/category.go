package constants

import "strings"

type Category string

const (
	CategoryPlumbing   Category = "plumbing"
	CategoryElectrical Category = "electrical"
	CategoryCleaning   Category = "cleaning"
	CategoryDelivery   Category = "delivery"
	CategoryShifting   Category = "shifting"
	CategoryMedical    Category = "medical"
	CategoryGardening  Category = "gardening"
	CategoryTeaching   Category = "teaching"
	CategoryTech       Category = "tech"
	CategoryCooking    Category = "cooking"
	CategoryPainting   Category = "painting"
	CategoryOther      Category = "other"
)

var categories = []Category{
	CategoryPlumbing,
	CategoryElectrical,
	CategoryCleaning,
	CategoryDelivery,
	CategoryShifting,
	CategoryMedical,
	CategoryGardening,
	CategoryTeaching,
	CategoryTech,
	CategoryCooking,
	CategoryPainting,
	CategoryOther,
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}
