package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ErrNotInCart is returned when a cart mutation targets a product that has no
// entry in the cart.
var ErrNotInCart = errors.New("product not in cart")

// Address represents a user's address for delivery
type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipcode" json:"zipcode"`
	Country string `bson:"country" json:"country"`
}

// CartItem is an embedded cart entry. The cart holds at most one entry per
// product; quantity is always >= 1.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	AddedAt   time.Time          `bson:"added_at" json:"added_at"`
}

type User struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Identity mirrored from the external provider
	AuthProviderID string `bson:"auth_provider_id" json:"-"`
	Email          string `bson:"email" json:"email"`

	// Profile
	Name           string  `bson:"name" json:"name"`
	ProfilePicture string  `bson:"profile_picture" json:"profile_picture"`
	Address        Address `bson:"address" json:"address"`

	// Role & Status
	Role string `bson:"role" json:"role"` // user, admin

	// Embedded aggregates
	Cart      []CartItem           `bson:"cart" json:"cart"`
	Favorites []primitive.ObjectID `bson:"favorites" json:"favorites"`
	Listings  []primitive.ObjectID `bson:"listings" json:"listings"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AddToCart inserts a new entry or increments the existing entry's quantity.
// A quantity below 1 counts as 1.
func (u *User) AddToCart(productID primitive.ObjectID, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range u.Cart {
		if u.Cart[i].ProductID == productID {
			u.Cart[i].Quantity += quantity
			return
		}
	}
	u.Cart = append(u.Cart, CartItem{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	})
}

// UpdateCartItem sets an existing entry's quantity to an exact value.
func (u *User) UpdateCartItem(productID primitive.ObjectID, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	for i := range u.Cart {
		if u.Cart[i].ProductID == productID {
			u.Cart[i].Quantity = quantity
			return nil
		}
	}
	return ErrNotInCart
}

// RemoveFromCart deletes the entry for the product. No-op when absent.
func (u *User) RemoveFromCart(productID primitive.ObjectID) {
	for i := range u.Cart {
		if u.Cart[i].ProductID == productID {
			u.Cart = append(u.Cart[:i], u.Cart[i+1:]...)
			return
		}
	}
}

func (u *User) ClearCart() {
	u.Cart = []CartItem{}
}

// AddFavorite adds the product to the favorites set. No-op when already
// present.
func (u *User) AddFavorite(productID primitive.ObjectID) {
	for _, id := range u.Favorites {
		if id == productID {
			return
		}
	}
	u.Favorites = append(u.Favorites, productID)
}

// RemoveFavorite removes the product from the favorites set. No-op when
// absent.
func (u *User) RemoveFavorite(productID primitive.ObjectID) {
	for i, id := range u.Favorites {
		if id == productID {
			u.Favorites = append(u.Favorites[:i], u.Favorites[i+1:]...)
			return
		}
	}
}

func (u *User) AddListing(productID primitive.ObjectID) {
	for _, id := range u.Listings {
		if id == productID {
			return
		}
	}
	u.Listings = append(u.Listings, productID)
}

func (u *User) RemoveListing(productID primitive.ObjectID) {
	for i, id := range u.Listings {
		if id == productID {
			u.Listings = append(u.Listings[:i], u.Listings[i+1:]...)
			return
		}
	}
}

// UserSummary is the public subset embedded in offer and review responses.
type UserSummary struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	ProfilePicture string             `json:"profile_picture"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}
