// Package main is the entry point of GoSlider, a web application serving
// image carousel blocks. Each slider instance keeps an ordered list of
// image slides with an optional link, title and description, and is
// rendered with SlidesJS or bxSlider. Users with the manage capability add,
// edit and delete slides; administrators create, copy and delete sliders.
package main
