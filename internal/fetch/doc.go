// Package fetch is the boundary through which page documents are retrieved.
//
// Two implementations are provided:
//   - HTTPFetcher requests pages relative to a base URL, optionally through
//     a SOCKS5 proxy, with per-site headers and cookies
//   - DirFetcher reads pages from a local directory (any fs.FS), answering
//     404 for missing files the way a static file server would
//
// A non-2xx status is not an error at this layer: it is reported in
// Response.Status and interpreted by the caller. Errors are reserved for
// transport failures.
package fetch
