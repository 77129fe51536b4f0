// Package clientip resolves the originating client address of an HTTP
// request, honouring the usual reverse proxy headers.
//
//	ip := clientip.FromRequest(r)
//
// Header precedence can be narrowed with FromRequestHeaders when the
// deployment only trusts a specific proxy header.
package clientip
