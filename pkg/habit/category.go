package habit

type Category string

const (
	CategoryHealth       Category = "health"
	CategoryFitness      Category = "fitness"
	CategoryProductivity Category = "productivity"
	CategoryMindfulness  Category = "mindfulness"
	CategoryMusic        Category = "music"
	CategoryEducation    Category = "education"
)

// Style is presentational metadata shown next to a habit.
type Style struct {
	Icon            string `json:"icon"`
	Color           string `json:"color"`
	BackgroundColor string `json:"background_color"`
}

var categoryStyles = map[Category]Style{
	CategoryHealth:       {Icon: "heart", Color: "#FF6B6B", BackgroundColor: "#FFEAEA"},
	CategoryFitness:      {Icon: "dumbbell", Color: "#4D96FF", BackgroundColor: "#EAF4FF"},
	CategoryProductivity: {Icon: "briefcase", Color: "#6BCB77", BackgroundColor: "#EAFBEC"},
	CategoryMindfulness:  {Icon: "brain", Color: "#9D65C9", BackgroundColor: "#F5EAFF"},
	CategoryMusic:        {Icon: "guitar", Color: "#FF5A5F", BackgroundColor: "#FFEBEC"},
	CategoryEducation:    {Icon: "book", Color: "#2AB3C0", BackgroundColor: "#E6F7F9"},
}

func Categories() []Category {
	return []Category{
		CategoryHealth,
		CategoryFitness,
		CategoryProductivity,
		CategoryMindfulness,
		CategoryMusic,
		CategoryEducation,
	}
}

func (c Category) Valid() bool {
	_, ok := categoryStyles[c]
	return ok
}

// Style falls back to the health style for unknown categories.
func (c Category) Style() Style {
	if s, ok := categoryStyles[c]; ok {
		return s
	}
	return categoryStyles[CategoryHealth]
}
