package catalog

// Product is one catalog entry as projected by the storefront query.
// Field tags mirror the catalog API's document shape.
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Colors      []string `json:"colors"`
}
