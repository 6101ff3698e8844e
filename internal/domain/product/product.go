package product

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConcurrentUpdate  = errors.New("product was modified concurrently")
)

const (
	MinRating = 1
	MaxRating = 5
)

type Category string

const (
	CategoryAcademics    Category = "Academics"
	CategoryComic        Category = "Comic"
	CategoryFiction      Category = "Fiction"
	CategoryNovel        Category = "Novel"
	CategoryCollectibles Category = "Collectibles"
)

// Categories is the closed set products may belong to. Analytics reports on exactly these.
var Categories = []Category{
	CategoryAcademics,
	CategoryComic,
	CategoryFiction,
	CategoryNovel,
	CategoryCollectibles,
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Rating struct {
	UserID string  `json:"userId" bson:"userId"`
	Rating float64 `json:"rating" bson:"rating"`
}

type Product struct {
	ID          string    `json:"id" bson:"_id"`
	SellerID    string    `json:"sellerId,omitempty" bson:"sellerId,omitempty"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Images      []string  `json:"images" bson:"images"`
	Quantity    int       `json:"quantity" bson:"quantity"`
	Price       float64   `json:"price" bson:"price"`
	Category    Category  `json:"category" bson:"category"`
	Ratings     []Rating  `json:"ratings" bson:"ratings"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=200"`
	Description string   `json:"description" binding:"max=5000"`
	Images      []string `json:"images" binding:"omitempty,dive,required"`
	Quantity    int      `json:"quantity" binding:"min=0"`
	Price       float64  `json:"price" binding:"gt=0"`
	Category    Category `json:"category" binding:"required,oneof=Academics Comic Fiction Novel Collectibles"`
}

type RateRequest struct {
	ID     string  `json:"id" binding:"required"`
	Rating float64 `json:"rating" binding:"required"`
}

type DeleteRequest struct {
	ID string `json:"id" binding:"required"`
}

// ListFilter is a plain field match. Zero values match everything.
type ListFilter struct {
	Category Category
	Name     string
}

func (f ListFilter) Matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
		return false
	}
	return true
}

func NewFromCreateRequest(req CreateProductRequest, sellerID string) Product {
	images := req.Images
	if images == nil {
		images = []string{}
	}

	return Product{
		ID:          uuid.NewString(),
		SellerID:    sellerID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Images:      images,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Category:    req.Category,
		Ratings:     []Rating{},
		CreatedAt:   time.Now().UTC(),
	}
}

func ValidateRating(value float64) error {
	if value < MinRating || value > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// Rate upserts the caller's rating: any previous entry for userID is removed and the
// new one appended, so each user holds at most one entry.
func Rate(p *Product, userID string, value float64) error {
	if err := ValidateRating(value); err != nil {
		return err
	}

	kept := make([]Rating, 0, len(p.Ratings)+1)
	for _, r := range p.Ratings {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}

	p.Ratings = append(kept, Rating{UserID: userID, Rating: value})
	return nil
}

func (p Product) RatingSum() float64 {
	var sum float64
	for _, r := range p.Ratings {
		sum += r.Rating
	}
	return sum
}

// DealOfDay picks the product with the highest rating sum. Ties keep the first one seen.
func DealOfDay(products []Product) (Product, error) {
	if len(products) == 0 {
		return Product{}, ErrNotFound
	}

	best := products[0]
	bestSum := best.RatingSum()

	for _, p := range products[1:] {
		if sum := p.RatingSum(); sum > bestSum {
			best, bestSum = p, sum
		}
	}
	return best, nil
}
