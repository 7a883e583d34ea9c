package model

import (
	"encoding/json"

	"github.com/recetario/backend/internal/store"
)

// Difficulty is the closed set of recipe difficulty levels. The symbolic
// name is what gets persisted; the label is display-only.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Label returns the user-facing name for the difficulty.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	default:
		return "Easy"
	}
}

// ParseDifficulty maps a stored name back to a Difficulty. Unknown names
// fall back to Easy rather than failing.
func ParseDifficulty(name string) Difficulty {
	switch Difficulty(name) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(name)
	default:
		return DifficultyEasy
	}
}

// Recipe is the central entity. ID is empty until the recipe is first
// persisted; UserID, CreatedAt and UpdatedAt are stamped by the repository,
// never trusted from caller input. Timestamps are milliseconds since epoch.
type Recipe struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Ingredients        []string   `json:"ingredients"`
	Instructions       []string   `json:"instructions"`
	CookingTimeMinutes int        `json:"cookingTimeMinutes"`
	Servings           int        `json:"servings"`
	Difficulty         Difficulty `json:"difficulty"`
	ImageURL           string     `json:"imageUrl"`
	IsFavorite         bool       `json:"isFavorite"`
	UserID             string     `json:"userId"`
	CreatedAt          int64      `json:"createdAt"`
	UpdatedAt          int64      `json:"updatedAt"`
}

// ToDocument converts the recipe into its stored field map.
func (r *Recipe) ToDocument() store.Document {
	return store.Document{
		"id":                 r.ID,
		"name":               r.Name,
		"description":        r.Description,
		"ingredients":        r.Ingredients,
		"instructions":       r.Instructions,
		"cookingTimeMinutes": r.CookingTimeMinutes,
		"servings":           r.Servings,
		"difficulty":         string(r.Difficulty),
		"imageUrl":           r.ImageURL,
		"isFavorite":         r.IsFavorite,
		"userId":             r.UserID,
		"createdAt":          r.CreatedAt,
		"updatedAt":          r.UpdatedAt,
	}
}

// RecipeFromDocument rebuilds a recipe from a stored field map. Missing or
// wrongly-typed fields take their defaults instead of failing, so a recipe
// written by an older client still decodes.
func RecipeFromDocument(doc store.Document) *Recipe {
	return &Recipe{
		ID:                 asString(doc["id"], ""),
		Name:               asString(doc["name"], ""),
		Description:        asString(doc["description"], ""),
		Ingredients:        asStringSlice(doc["ingredients"]),
		Instructions:       asStringSlice(doc["instructions"]),
		CookingTimeMinutes: asInt(doc["cookingTimeMinutes"], 0),
		Servings:           asInt(doc["servings"], 1),
		Difficulty:         ParseDifficulty(asString(doc["difficulty"], "")),
		ImageURL:           asString(doc["imageUrl"], ""),
		IsFavorite:         asBool(doc["isFavorite"], false),
		UserID:             asString(doc["userId"], ""),
		CreatedAt:          asInt64(doc["createdAt"], 0),
		UpdatedAt:          asInt64(doc["updatedAt"], 0),
	}
}

func asString(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func asBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// asInt64 tolerates the numeric representations a document can come back
// with: native ints, float64 from a JSON decode, or json.Number.
func asInt64(v any, def int64) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	return def
}

func asInt(v any, def int) int {
	return int(asInt64(v, int64(def)))
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		out := make([]string, len(s))
		copy(out, s)
		return out
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return []string{}
	}
}
