/*
Package slider keeps the slides of every slider instance and runs the
instance lifecycle.

A slide is one image with an optional link, title and description. Slides
belong to exactly one slider and are listed by their order field, ties
broken by id. Each slide owns one image in the asset binding, stored under
the slide id:

	store := slider.NewStore(db, assets)
	s, err := store.CreateSlide(ctx, sliderID, slider.Fields{Title: "Beach"}, asset.File{...})

Creating, updating and deleting a slide keeps the record and its image in
step. A failing image write never leaves a record behind, and a failing
record write removes the image it just stored.

Lifecycle bundles the hooks the host calls when a slider instance is
created, deleted or copied. Instances is the host side registry of slider
instances that calls those hooks.
*/
package slider
