package version

// Version and VersionGitRef are overwritten at build time with -ldflags.
var Version = "v0.1.0-dev"

var VersionGitRef = "HEAD"
