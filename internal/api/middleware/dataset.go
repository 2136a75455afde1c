package middleware

import (
	"context"
	"net/http"

	"github.com/clipqa/annotation-service/internal/catalog"
)

// DatasetCookie holds the user's catalog variant selection.
const DatasetCookie = "current_dataset"

const variantKey contextKey = "dataset_variant"

// Dataset resolves the current_dataset cookie to a catalog variant. A missing
// or unknown value selects the default variant.
func Dataset(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var name string
		if c, err := r.Cookie(DatasetCookie); err == nil {
			name = c.Value
		}
		ctx := context.WithValue(r.Context(), variantKey, catalog.VariantOrDefault(name))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetVariant returns the variant chosen by Dataset, or the default.
func GetVariant(ctx context.Context) catalog.Variant {
	if v, ok := ctx.Value(variantKey).(catalog.Variant); ok {
		return v
	}
	return catalog.DefaultVariant
}
