// Package extract turns fetched bytes into parsed documents, candidate
// links, and scope decisions.
//
// ParseDocument is the markup-parser capability: it decodes the byte
// stream using the declared or sniffed charset and exposes the document as
// anchors plus stripped visible text, so the rest of the crawler never
// touches raw markup. The Extractor resolves anchors into absolute
// http/https URLs, expands robots-declared sitemaps for domain roots, and
// applies the composite in-scope predicate (allow-listed domain suffix,
// banned extension, robots rules).
package extract
