package services

import (
	"math/rand/v2"

	"wastewatch-backend/internal/models"
)

// Classifier tags an uploaded waste photo with a category. Implementations
// must return a value from models.WasteCategories; the scoring layer treats
// anything else as an audit case.
type Classifier interface {
	Classify(image []byte) string
}

// MockClassifier stands in for the real vision model until it ships. It
// ignores the image bytes and picks a catalog value uniformly at random,
// which is enough to exercise the full scoring and alert pipeline.
type MockClassifier struct{}

func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

func (c *MockClassifier) Classify(image []byte) string {
	return models.WasteCategories[rand.IntN(len(models.WasteCategories))]
}
