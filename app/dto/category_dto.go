package dto

import "github.com/amirphl/leadboard/models"

type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CategoryResponse struct {
	Category *models.Category `json:"category"`
}

type CategoriesResponse struct {
	Categories []*models.Category `json:"categories"`
}

// ChartEntry is one slice of the category chart
type ChartEntry struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
	Color string `json:"color"`
}

type ChartResponse struct {
	ChartData []ChartEntry `json:"chartData"`
}
