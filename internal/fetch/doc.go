// Package fetch retrieves pages and assets over HTTP.
//
// The Client issues a single unauthenticated GET per call using the default
// transport settings of net/http. There is no retry, no custom header and no
// timeout beyond what the transport provides; any transport failure or
// non-2xx response is reported as ErrHTTPClient.
//
// # Usage
//
//	client := fetch.NewClient(fetch.WithLogger(logger))
//	text, err := client.Text(ctx, pageURL)
//	data, err := client.Bytes(ctx, imageURL)
//
// Text decodes the response body using the charset announced in the
// Content-Type header, falling back to UTF-8.
package fetch
