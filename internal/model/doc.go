// Package model defines the data structures shared by sitenav's packages.
//
// This package contains the following main types:
//   - Visit: one Load of the navigator, as written to the visit journal
//   - TourReport: the result of touring a site page by page
//   - SimpleReport: a summarized, human-readable view of a TourReport
//   - ConsentSettings: the cookie-consent choice of a visitor
//   - Submission: a contact form submission and how it was delivered
//
// Keeping these types in their own package lets the navigator, the
// collaborators, the database and the report writers share them without
// import cycles. All of them serialize to JSON.
package model
