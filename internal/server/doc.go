// Package server implements `sitenav serve`: a development server for the
// static site.
//
// Besides the site files it exposes a small JSON API under /api:
//
//	POST   /api/contact          validate and relay a contact form submission
//	GET    /api/consent          read the visitor's cookie consent
//	POST   /api/consent          save cookie consent (cookie and store)
//	DELETE /api/consent          forget cookie consent
//	GET    /api/fragment/{page}  the processed main region of a page
//
// The API is guarded by CORS so pages opened from another local port can use
// it.
package server
