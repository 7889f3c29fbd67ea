package core

import "time"

// Category is the expense category key stored on a transaction.
type Category string

const (
	CategoryKost      Category = "kost"
	CategoryKebutuhan Category = "kebutuhan"
	CategoryHarian    Category = "harian"
	CategoryOrtu      Category = "ortu"
	CategoryZakat     Category = "zakat"
	CategoryLainnya   Category = "lainnya"

	// Budget-linked sentinels: "budget" for spending recorded through a budget
	// item, "custom" for a plain expense whose description matched one.
	CategoryBudget Category = "budget"
	CategoryCustom Category = "custom"

	// CategoryFallback groups expenses with a missing or unknown category.
	CategoryFallback = CategoryLainnya
)

var categoryLabels = map[Category]string{
	CategoryKost:      "Kost",
	CategoryKebutuhan: "Kebutuhan",
	CategoryHarian:    "Harian",
	CategoryOrtu:      "Ortu",
	CategoryZakat:     "Zakat",
	CategoryLainnya:   "Lainnya",
	CategoryBudget:    "Budget",
	CategoryCustom:    "Custom",
}

// IsKnown reports whether c is one of the fixed categories or a budget sentinel.
func (c Category) IsKnown() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display label, or the raw key for unknown categories.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Categories lists the user-selectable categories in display order.
func Categories() []Category {
	return []Category{CategoryKost, CategoryKebutuhan, CategoryHarian, CategoryOrtu, CategoryZakat, CategoryLainnya}
}

// UnknownWalletName is shown for references to wallets that no longer exist.
const UnknownWalletName = "Unknown"

// LegacyWallet describes the fixed wallets used before wallets became editable.
type LegacyWallet struct {
	ID    string
	Label string
	Type  WalletType
}

var legacyWallets = []LegacyWallet{
	{ID: "bca", Label: "BCA", Type: WalletBank},
	{ID: "mandiri", Label: "Mandiri", Type: WalletBank},
	{ID: "shopeepay", Label: "SPay", Type: WalletEWallet},
	{ID: "emoney", Label: "E-Money", Type: WalletEWallet},
}

// LegacyWallets returns the pre-registry wallet ids and their labels.
func LegacyWallets() []LegacyWallet {
	return append([]LegacyWallet(nil), legacyWallets...)
}

// LegacyWalletLabel returns the label of a pre-registry wallet id.
func LegacyWalletLabel(id string) (string, bool) {
	for _, w := range legacyWallets {
		if w.ID == id {
			return w.Label, true
		}
	}
	return "", false
}

var shortMonths = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// ShortMonthName returns the Indonesian short month name ("Mei", "Agu", ...).
func ShortMonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return shortMonths[m-1]
}
