// Package page models the live page: the layout document the user landed
// on, held in memory and mutated in place as navigation swaps its content.
//
// A Document wraps a goquery document and adds the pieces of browser state
// the navigation needs: the current location and origin, the vertical scroll
// position, the viewport width, inline styles, head metadata and the
// loading indicator. Layout values a browser would compute (element offsets,
// navbar height) are read from data-offset-top and data-height attributes.
//
// A Document is not safe for concurrent use. The navigator serializes all
// access to the document it owns.
package page
