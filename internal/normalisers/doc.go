// Package normalisers turns fetched label material into text the chunk
// pipeline can consume.
//
//   - pdf: extracts text per physical page from a label PDF
//   - html: finds PDF links on a landing page returned by discovery
package normalisers
