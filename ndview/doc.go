// Package ndview provides strided views over flat row-major buffers and the
// projection of an N-dimensional dataset onto the axes of a visualization.
//
// Views share the buffer they were built from. Project always materializes
// its result into a compact buffer holding only the displayed elements, so
// the renderer never keeps a large fetched buffer alive through a small
// slice.
package ndview
