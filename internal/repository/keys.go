package repository

import "github.com/abrezinsky/dinnerroulette/internal/models"

const (
	keyCounter          = "restaurants:counter"
	keyActiveIndex      = "restaurants:index"
	keyAllRestaurants   = "restaurants:all"
	keyCustomCategories = "custom_categories"
	keyHistory          = "spin_history"
)

func keyRestaurant(id string) string {
	return "restaurants:" + id
}

func keyByCategory(category string) string {
	return "restaurants:by_category:" + category
}

func keyByDistance(d models.Distance) string {
	return "restaurants:by_distance:" + string(d)
}

func keyRemovedBy(id string) string {
	return "restaurants:" + id + ":removed_by"
}

func keyRemovedAt(id string) string {
	return "restaurants:" + id + ":removed_at"
}

func keyUserAdded(username string) string {
	return "user:" + username + ":added"
}

func keyUserRemoved(username string) string {
	return "user:" + username + ":removed"
}

func keyLastSpin(username string) string {
	return "user:" + username + ":last_spin"
}
