// Package config provides configuration structures and utilities for sitenav.
// It defines where pages are fetched from, how the content swap is animated,
// how the contact form is delivered, and where session data is persisted.
package config
