// Package sitemap persists discovery inventories as CSV files.
//
// The file format is fixed: a UTF-8 byte order mark, a header row, then
// one row per discovery with URL, Title, Description, Depth, and Type
// columns. The byte order mark keeps spreadsheet applications from
// mangling non-ASCII titles.
package sitemap
