// Package flipbooks implements paged catalogues.
//
// Pages are kept as an ordered JSON list on the flipbook row. Every write
// renumbers them 1..n and stores total_pages alongside, so the two never
// disagree. Page images can be uploaded directly; they land in the
// "flipbooks/" folder and are removed from the bucket when their page or
// flipbook is deleted.
package flipbooks
