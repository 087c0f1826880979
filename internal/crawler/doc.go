// Package crawler walks the directory site: it fetches the index page,
// follows every user link to the user's profile page and yields one row per
// titled link found there.
//
// # Components
//
//   - Document: a parsed page with the fixed selector queries the site
//     layout supports
//   - Snapshotter: mirrors a page and its stylesheet and images to disk
//   - Walker: drives the two-level walk and yields rows as an iterator
//
// # Usage
//
//	walker := crawler.NewWalker(client,
//		crawler.WithLogger(logger),
//		crawler.WithSnapshotter(crawler.NewSnapshotter(client)),
//	)
//	for row, err := range walker.Walk(ctx, base, crawler.RunDir("snapshot", start)) {
//		if err != nil {
//			return err
//		}
//		// use row
//	}
//
// The walk is strictly sequential. The first error ends it; there are no
// retries and no partial recovery.
package crawler
