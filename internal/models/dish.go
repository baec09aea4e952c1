package models

// Dish is a menu entry offered as a recommendation.
type Dish struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Price       float64  `json:"price" yaml:"price"`
	Rating      float64  `json:"rating" yaml:"rating"`
	Tags        []string `json:"tags" yaml:"tags"`
}
