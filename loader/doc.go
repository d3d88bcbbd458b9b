// Package loader turns Valve Texture Format containers into RGBA rasters:
// a still image (the last stored frame plus display attributes) or a looping
// animation of every frame from the start frame on.
//
// Input is taken either whole, via Decode and DecodeAnimated, or in chunks of
// arbitrary size through a Session, which defers all decoding until Finalize
// and then reports the result through the Prepared callback.
//
// The container parser in package vtf reports failures through process-wide
// state. Every entry point in this package therefore holds a single
// package-level lock for its whole duration; concurrent callers are
// serialized, and Format does not advertise itself as thread safe.
//
// Importing this package registers "vtf" with the standard library's image
// package, so image.Decode recognizes VTF streams.
package loader
