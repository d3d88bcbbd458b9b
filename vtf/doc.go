// Package vtf implements a reader for Valve Texture Format (.vtf) files.
//
// A vtf file holds a texture as a chain of mipmaps, each containing one or
// more animation frames, cubemap faces and volume slices, plus an optional
// low resolution thumbnail. Load parses the container; Data locates the raw
// encoded bytes of one image and ConvertToRGBA8888 decodes them.
//
// Versions 7.0 through 7.5 are supported, including the resource directory
// introduced in 7.3.
//
// Load records the message of its latest failure in a process-wide slot
// readable with LastError. Callers that report that message must not run
// loads concurrently.
package vtf
