// Package assemble holds the pieces shared by every output-generator
// variant: slug/anchor normalization, size-aware chunking, and HTML
// sanitization for the composed document the PDF and HTML variants render.
//
// The variants themselves live in subpackages (mdgen, pdfgen, htmlgen) so
// that none of the three needs to import the other two; each imports this
// package for the shared building blocks. This package never imports a
// variant subpackage.
package assemble
