package product

// QueryProductsModel represents filter parameters for querying the catalog.
type QueryProductsModel struct {
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
