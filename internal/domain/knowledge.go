package domain

// KnowledgeCategories is the fixed set of knowledge base categories. Every
// knowledge mapping in the system carries exactly these keys; a category
// without stored content maps to the empty string, never to a missing key.
var KnowledgeCategories = []string{
	"about-me",
	"tech-stack",
	"projects",
	"contacts",
	"miscellaneous",
}

// ValidCategory reports whether category is one of the fixed categories.
func ValidCategory(category string) bool {
	for _, c := range KnowledgeCategories {
		if c == category {
			return true
		}
	}
	return false
}

// EmptyKnowledge returns a knowledge mapping with all categories present and
// empty.
func EmptyKnowledge() map[string]string {
	m := make(map[string]string, len(KnowledgeCategories))
	for _, c := range KnowledgeCategories {
		m[c] = ""
	}
	return m
}

// Instructions is the behavioral instruction document for the chatbot,
// versioned on every save.
type Instructions struct {
	Content   string `json:"content"`
	Version   int    `json:"version"`
	UpdatedBy string `json:"updated_by,omitempty"`
	UpdatedAt int64  `json:"updated_at,omitempty"`
}
