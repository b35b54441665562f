// Package pdf reads the embedded title of remote PDF documents.
//
// Extraction is deliberately shallow: the raw bytes are scanned for the
// /Title entry of the Info dictionary rather than parsed as a full PDF
// object graph. That covers the documents ordinary sites publish, and a
// document this trick cannot read simply gets the sentinel title.
package pdf
