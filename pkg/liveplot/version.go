package liveplot

// Version is the release of the liveplot module. Binaries built from a
// tagged module report the tag instead.
const Version = "1.0.0"
