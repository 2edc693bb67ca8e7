package seed

import (
	"context"
	"fmt"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/google/uuid"
)

// ProductWriter persists catalogue products.
type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	Slug        string
	Name        string
	Description string
	Price       float64
	Category    string
	ImageURL    string
	Brand       string
	Condition   string
	Sizes       []string
	Stock       int
}

var catalogue = []productSeed{
	{
		Slug:        "classic-comfort-runner",
		Name:        "Classic Comfort Runner",
		Description: "Premium leather sneakers with cushioned sole. Street-ready comfort meets timeless aesthetics.",
		Price:       189.99,
		Category:    "sneakers",
		ImageURL:    "https://images.unsplash.com/photo-1757343432297-9ed369786199?w=800",
		Brand:       "Nike",
		Condition:   "new",
		Sizes:       []string{"8", "9", "10", "11", "12"},
		Stock:       15,
	},
	{
		Slug:        "checkerboard-lux",
		Name:        "Checkerboard Lux",
		Description: "Limited edition checkered pattern. Urban legend status.",
		Price:       159.99,
		Category:    "sneakers",
		ImageURL:    "https://images.unsplash.com/photo-1629439612315-b69e9236c8e1?w=800",
		Brand:       "Vans",
		Condition:   "new",
		Sizes:       []string{"7", "8", "9", "10", "11"},
		Stock:       8,
	},
	{
		Slug:        "street-pastel-runner",
		Name:        "Street Pastel Runner",
		Description: "Soft pink colorway with premium materials. Stand out from the crowd.",
		Price:       149.99,
		Category:    "sneakers",
		ImageURL:    "https://images.unsplash.com/photo-1620114884004-0406e8e0d476?w=800",
		Brand:       "Adidas",
		Condition:   "new",
		Sizes:       []string{"7", "8", "9", "10"},
		Stock:       12,
	},
	{
		Slug:        "urban-high-top-black",
		Name:        "Urban High-Top Black",
		Description: "Classic black high-top sneakers. Never goes out of style.",
		Price:       129.99,
		Category:    "sneakers",
		ImageURL:    "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=800",
		Brand:       "Converse",
		Condition:   "new",
		Sizes:       []string{"8", "9", "10", "11", "12"},
		Stock:       20,
	},
	{
		Slug:        "pro-max-obsidian",
		Name:        "Pro Max Obsidian",
		Description: "iPhone 14 Pro Max in pristine condition. 256GB storage, flawless display.",
		Price:       899.99,
		Category:    "phones",
		ImageURL:    "https://images.unsplash.com/photo-1759588071847-6ba0f3dbd16e?w=800",
		Brand:       "Apple",
		Condition:   "used",
		Stock:       3,
	},
	{
		Slug:        "galaxy-s23-ultra",
		Name:        "Galaxy S23 Ultra",
		Description: "Samsung flagship in excellent condition. 512GB, night mode camera beast.",
		Price:       799.99,
		Category:    "phones",
		ImageURL:    "https://images.unsplash.com/photo-1636462060335-a0e53fcba38f?w=800",
		Brand:       "Samsung",
		Condition:   "used",
		Stock:       5,
	},
	{
		Slug:        "iphone-13-pro",
		Name:        "iPhone 13 Pro",
		Description: "Like new condition. 128GB, includes original box and accessories.",
		Price:       649.99,
		Category:    "phones",
		ImageURL:    "https://images.unsplash.com/photo-1632661674596-df8be070a5c5?w=800",
		Brand:       "Apple",
		Condition:   "used",
		Stock:       4,
	},
	{
		Slug:        "pixel-8-pro",
		Name:        "Pixel 8 Pro",
		Description: "Google's finest. Excellent condition, best-in-class camera.",
		Price:       599.99,
		Category:    "phones",
		ImageURL:    "https://images.unsplash.com/photo-1598327105666-5b89351aff97?w=800",
		Brand:       "Google",
		Condition:   "used",
		Stock:       6,
	},
}

// Apply upserts the demo catalogue. Product ids are derived from the slug so
// reruns overwrite the same rows instead of duplicating them.
func Apply(ctx context.Context, repo ProductWriter) (int, error) {
	for _, s := range catalogue {
		if _, err := repo.Upsert(ctx, s.product()); err != nil {
			return 0, fmt.Errorf("upsert product %s: %w", s.Slug, err)
		}
	}
	return len(catalogue), nil
}

// ProductID is the stable id of a seeded product.
func ProductID(slug string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("odysseyfinds:product:"+slug)).String()
}

func (s productSeed) product() domain.Product {
	return domain.Product{
		ID:          ProductID(s.Slug),
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		Category:    s.Category,
		ImageURL:    s.ImageURL,
		Brand:       s.Brand,
		Condition:   s.Condition,
		Sizes:       s.Sizes,
		Stock:       s.Stock,
	}
}
