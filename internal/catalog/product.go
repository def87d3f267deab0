package catalog

// Product is a resolved catalog entry. Name is never empty and is the
// identity used when merging into the cart.
type Product struct {
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

// ImageURL returns the image or "" when absent.
func (p Product) ImageURL() string {
	if p.Image == nil {
		return ""
	}
	return *p.Image
}

// Sentinels are the synthesized names standing in for unnamed, missing and
// failed lookups.
type Sentinels struct {
	Unknown     string
	NotFound    string
	LookupError string
}

var sentinelsByLocale = map[string]Sentinels{
	"en": {
		Unknown:     "unknown product",
		NotFound:    "product not found",
		LookupError: "lookup error",
	},
	"fr": {
		Unknown:     "Produit inconnu",
		NotFound:    "Produit non trouvé",
		LookupError: "Erreur API",
	},
}

// SentinelsFor returns the sentinel names for locale, defaulting to English.
func SentinelsFor(locale string) Sentinels {
	if s, ok := sentinelsByLocale[locale]; ok {
		return s
	}
	return sentinelsByLocale["en"]
}
