package version

// Pre-built binaries will have version set correctly during build time.
var Version = "v0.1.1-HEAD"
