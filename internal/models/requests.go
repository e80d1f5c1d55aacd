package models

// ListProductsQuery carries the listing filters after defaulting. PageNum and
// PageSize fall back to 1/10 when the raw query values are absent or not
// numeric.
type ListProductsQuery struct {
	ProductName string `query:"productname" validate:"omitempty,max=100"`
	Username    string `query:"username" validate:"omitempty,max=100"`
	Shop        string `query:"shop" validate:"omitempty,max=100"`
	PageNum     int64  `json:"-"`
	PageSize    int64  `json:"-"`
}

// UpdateProductRequest binds the PATCH body. Absent fields stay nil and are
// ignored by the store layer.
type UpdateProductRequest struct {
	Name  *string  `json:"name" validate:"omitnil,min=1,max=255"`
	Price *float64 `json:"price" validate:"omitnil,gte=0"`
	Stock *int     `json:"stock" validate:"omitnil,gte=0"`
}
