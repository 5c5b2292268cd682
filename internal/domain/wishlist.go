package domain

import "time"

// WishlistItem is a saved product reference. Wishlists carry no
// quantity or rental terms; those are chosen when the item moves to a
// cart or order.
type WishlistItem struct {
	ProductRef string    `json:"productRef" bson:"productRef"`
	Name       string    `json:"name" bson:"name"`
	Image      string    `json:"image,omitempty" bson:"image,omitempty"`
	AddedAt    time.Time `json:"addedAt" bson:"addedAt"`
}

// Wishlist is a per-user singleton, deduplicated by product.
type Wishlist struct {
	UserRef   string         `json:"userRef" bson:"userRef"`
	Items     []WishlistItem `json:"items" bson:"items"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// NewWishlist returns an empty wishlist for the user.
func NewWishlist(userRef string) Wishlist {
	now := time.Now().UTC()
	return Wishlist{UserRef: userRef, Items: []WishlistItem{}, CreatedAt: now, UpdatedAt: now}
}

// Add appends the item unless the product is already saved. It reports
// whether the wishlist changed.
func (w *Wishlist) Add(item WishlistItem) bool {
	for _, existing := range w.Items {
		if existing.ProductRef == item.ProductRef {
			return false
		}
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	w.Items = append(w.Items, item)
	return true
}

// Remove deletes the saved product. Removing an absent item is a no-op.
func (w *Wishlist) Remove(productRef string) bool {
	for i := range w.Items {
		if w.Items[i].ProductRef == productRef {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the product is saved.
func (w Wishlist) Contains(productRef string) bool {
	for _, item := range w.Items {
		if item.ProductRef == productRef {
			return true
		}
	}
	return false
}
