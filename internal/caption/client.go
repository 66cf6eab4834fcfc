// Package caption talks to the external text-generation service. Both front
// ends use it through the Client interface and fall back to Fallback when the
// service is slow or unavailable, so recipe creation never blocks on it.
package caption

import "context"

// Client produces descriptive text for recipes.
type Client interface {
	// Caption returns a short caption for a recipe from its title and
	// description.
	Caption(ctx context.Context, title, description string) (string, error)
	// SuggestRecipes inspects a food photo by URL and suggests what could be
	// cooked from it.
	SuggestRecipes(ctx context.Context, photoURL string) (string, error)
}
